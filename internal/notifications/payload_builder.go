package notifications

import (
	"github.com/JJulme/manito/internal/constants"
	"github.com/JJulme/manito/internal/models"
)

// Variant is one of the fixed notification shapes the client knows how to render.
type Variant int

const (
	VariantFriendRequest Variant = iota
	VariantMissionPropose
	VariantComment
	VariantMissionAccepted
	VariantMissionReadyToGuess
	VariantMissionGuessSubmitted
	VariantMissionCompleted
)

// Type returns the data.type tag for the variant.
func (v Variant) Type() string {
	switch v {
	case VariantFriendRequest:
		return constants.PushTypeFriendRequest
	case VariantMissionPropose:
		return constants.PushTypeMissionPropose
	case VariantComment:
		return constants.PushTypeComment
	case VariantMissionAccepted:
		return constants.PushTypeMissionProgress
	case VariantMissionReadyToGuess:
		return constants.PushTypeMissionGuess
	case VariantMissionGuessSubmitted:
		return constants.PushTypeMissionGuessSubmitted
	case VariantMissionCompleted:
		return constants.PushTypeMissionComplete
	}
	panic("notifications: unknown variant")
}

// VariantForTransition maps a mission transition to its variant.
// ok is false for TransitionUnsupported.
func VariantForTransition(t models.MissionTransition) (v Variant, ok bool) {
	switch t {
	case models.TransitionAccepted:
		return VariantMissionAccepted, true
	case models.TransitionReadyToGuess:
		return VariantMissionReadyToGuess, true
	case models.TransitionGuessSubmitted:
		return VariantMissionGuessSubmitted, true
	case models.TransitionCompleted:
		return VariantMissionCompleted, true
	}
	return 0, false
}

// VariantData holds the event values a variant may reference. Empty fields are omitted.
type VariantData struct {
	MissionID  string
	SenderID   string
	SenderName string
	Comment    string
}

// fixed titles for the plain mission status variants
var missionTexts = map[Variant][2]string{
	VariantMissionAccepted:       {"마니또 미션 수락!", "마니또를 추측 해보세요."},
	VariantMissionReadyToGuess:   {"마니또 미션 완료!", "마니또를 추측 해보세요."},
	VariantMissionGuessSubmitted: {"추리 도착!", "친구가 마니또를 추리했어요."},
	VariantMissionCompleted:      {"미션 종료!", "친구가 추리한 내용을 확인해보세요."},
}

// Build creates the payload for variant. It never fails.
func Build(variant Variant, d VariantData) *models.NotificationPayload {
	payload := &models.NotificationPayload{Data: baseData(variant, d)}

	switch variant {
	case VariantFriendRequest:
		localize(payload, constants.PushLocKeyFriendRequestTitle, constants.PushLocKeyFriendRequestBody, argsOf(d.SenderName))
	case VariantMissionPropose:
		localize(payload, constants.PushLocKeyMissionProposeTitle, constants.PushLocKeyMissionProposeBody, nil)
	case VariantComment:
		payload.Title = d.SenderName
		payload.Body = d.Comment
	case VariantMissionAccepted, VariantMissionReadyToGuess, VariantMissionGuessSubmitted, VariantMissionCompleted:
		texts := missionTexts[variant]
		payload.Title = texts[0]
		payload.Body = texts[1]
	}
	return payload
}

func baseData(variant Variant, d VariantData) map[string]string {
	data := map[string]string{
		constants.PushDataType:        variant.Type(),
		constants.PushDataClickAction: constants.PushClickAction,
	}
	if d.MissionID != "" {
		data[constants.PushDataMissionID] = d.MissionID
	}
	if d.SenderID != "" {
		data[constants.PushDataSenderID] = d.SenderID
	}
	return data
}

func localize(p *models.NotificationPayload, titleKey, bodyKey string, args []string) {
	p.Android = &models.AndroidOverride{
		TitleLocKey: titleKey,
		BodyLocKey:  bodyKey,
		BodyLocArgs: args,
		Icon:        constants.PushAndroidIcon,
		Image:       constants.PushAndroidImage,
	}
	p.APNS = &models.APNSOverride{
		TitleLocKey: titleKey,
		LocKey:      bodyKey,
		LocArgs:     args,
	}
}

func argsOf(values ...string) []string {
	var args []string
	for _, v := range values {
		if v != "" {
			args = append(args, v)
		}
	}
	return args
}
