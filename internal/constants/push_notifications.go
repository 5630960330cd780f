package constants

// Client-side routing hint expected by the Flutter app.
const PushClickAction = "FLUTTER_NOTIFICATION_CLICK"

// Keys used in the data payload.
const (
	PushDataType        = "type"
	PushDataClickAction = "click_action"
	PushDataMissionID   = "mission_id"
	PushDataSenderID    = "sender_id"
)

// Event types (data.type) understood by the client.
const (
	PushTypeFriendRequest         = "friend_request"
	PushTypeMissionPropose        = "mission_propose"
	PushTypeComment               = "insert_comment"
	PushTypeMissionProgress       = "update_mission_progress"
	PushTypeMissionGuess          = "update_mission_guess"
	PushTypeMissionGuessSubmitted = "update_mission_guess_submitted"
	PushTypeMissionComplete       = "update_mission_complete"
)

// Localization keys resolved by the app's string resources.
const (
	PushLocKeyFriendRequestTitle  = "FRIEND_REQUEST_TITLE"
	PushLocKeyFriendRequestBody   = "FRIEND_REQUEST_BODY"
	PushLocKeyMissionProposeTitle = "MISSION_PROPOSE_TITLE"
	PushLocKeyMissionProposeBody  = "MISSION_PROPOSE_BODY"
)

// Android drawable resources.
const (
	PushAndroidIcon  = "ic_notification"
	PushAndroidImage = "ic_notification_large"
)
