package notifications

import (
	"testing"

	"github.com/JJulme/manito/internal/constants"
	"github.com/JJulme/manito/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVariants = []Variant{
	VariantFriendRequest,
	VariantMissionPropose,
	VariantComment,
	VariantMissionAccepted,
	VariantMissionReadyToGuess,
	VariantMissionGuessSubmitted,
	VariantMissionCompleted,
}

func TestBuild_AlwaysTagsTypeAndClickAction(t *testing.T) {
	for _, v := range allVariants {
		for _, d := range []VariantData{{}, {MissionID: "m1", SenderID: "u1", SenderName: "철수", Comment: "hi"}} {
			p := Build(v, d)
			require.NotNil(t, p.Data)
			assert.Equal(t, v.Type(), p.Data[constants.PushDataType])
			assert.Equal(t, constants.PushClickAction, p.Data[constants.PushDataClickAction])
		}
	}
}

func TestBuild_ExactlyOneStyle(t *testing.T) {
	for _, v := range allVariants {
		p := Build(v, VariantData{MissionID: "m1", SenderName: "철수", Comment: "hi"})
		plain := p.Title != "" || p.Body != ""
		assert.NotEqual(t, plain, p.Localized(), "variant %s mixes styles", v.Type())
	}
}

func TestBuild_FriendRequest(t *testing.T) {
	p := Build(VariantFriendRequest, VariantData{SenderID: "u9", SenderName: "영희"})

	assert.Equal(t, "u9", p.Data[constants.PushDataSenderID])
	require.NotNil(t, p.Android)
	require.NotNil(t, p.APNS)
	assert.Equal(t, constants.PushLocKeyFriendRequestTitle, p.Android.TitleLocKey)
	assert.Equal(t, constants.PushLocKeyFriendRequestBody, p.Android.BodyLocKey)
	assert.Equal(t, []string{"영희"}, p.Android.BodyLocArgs)
	assert.Equal(t, constants.PushAndroidIcon, p.Android.Icon)
	assert.Equal(t, constants.PushAndroidImage, p.Android.Image)
	assert.Equal(t, constants.PushLocKeyFriendRequestTitle, p.APNS.TitleLocKey)
	assert.Equal(t, constants.PushLocKeyFriendRequestBody, p.APNS.LocKey)
	assert.Equal(t, []string{"영희"}, p.APNS.LocArgs)

	// missing nickname drops the args entirely
	p = Build(VariantFriendRequest, VariantData{SenderID: "u9"})
	assert.Nil(t, p.Android.BodyLocArgs)
	assert.Nil(t, p.APNS.LocArgs)
}

func TestBuild_MissionPropose(t *testing.T) {
	p := Build(VariantMissionPropose, VariantData{MissionID: "m7"})

	assert.Equal(t, "m7", p.Data[constants.PushDataMissionID])
	assert.Equal(t, constants.PushLocKeyMissionProposeTitle, p.APNS.TitleLocKey)
	assert.Equal(t, constants.PushLocKeyMissionProposeBody, p.APNS.LocKey)
	assert.Empty(t, p.APNS.LocArgs)
	assert.Empty(t, p.Title)
}

func TestBuild_Comment(t *testing.T) {
	p := Build(VariantComment, VariantData{MissionID: "m1", SenderID: "u1", SenderName: "철수", Comment: "잘했어"})

	assert.Equal(t, "철수", p.Title)
	assert.Equal(t, "잘했어", p.Body)
	assert.Equal(t, map[string]string{
		"type":         constants.PushTypeComment,
		"click_action": constants.PushClickAction,
		"mission_id":   "m1",
		"sender_id":    "u1",
	}, p.Data)
	assert.False(t, p.Localized())
}

func TestVariantForTransition(t *testing.T) {
	v, ok := VariantForTransition(models.TransitionAccepted)
	require.True(t, ok)
	assert.Equal(t, constants.PushTypeMissionProgress, v.Type())

	v, ok = VariantForTransition(models.TransitionCompleted)
	require.True(t, ok)
	assert.Equal(t, constants.PushTypeMissionComplete, v.Type())

	_, ok = VariantForTransition(models.TransitionUnsupported)
	assert.False(t, ok)
}
