package models

// MissionStatus mirrors missions.status. The database stores the Korean labels.
type MissionStatus string

const (
	MissionStatusInProgress MissionStatus = "진행중"
	MissionStatusGuessing   MissionStatus = "추측중"
	MissionStatusComplete   MissionStatus = "완료"
	MissionStatusUnknown    MissionStatus = ""
)

// ParseMissionStatus returns MissionStatusUnknown for any value outside the known set.
func ParseMissionStatus(s string) MissionStatus {
	switch MissionStatus(s) {
	case MissionStatusInProgress, MissionStatusGuessing, MissionStatusComplete:
		return MissionStatus(s)
	default:
		return MissionStatusUnknown
	}
}

// MissionTransition is the real-world change a missions UPDATE stands for.
type MissionTransition int

const (
	TransitionUnsupported MissionTransition = iota
	// Manito accepted the mission; creator is told to start guessing soon.
	TransitionAccepted
	// Manito finished the mission write-up; creator can guess.
	TransitionReadyToGuess
	// Creator submitted a guess; manito is told.
	TransitionGuessSubmitted
	// Mission closed; manito can read the guess.
	TransitionCompleted
)

func (t MissionTransition) String() string {
	switch t {
	case TransitionAccepted:
		return "accepted"
	case TransitionReadyToGuess:
		return "ready_to_guess"
	case TransitionGuessSubmitted:
		return "guess_submitted"
	case TransitionCompleted:
		return "completed"
	default:
		return "unsupported"
	}
}

// Classify derives the transition from status and the optional authoring fields.
// Order matters: completion wins over any populated field, and a guess wins over a description.
func (r MissionRecord) Classify() MissionTransition {
	switch {
	case r.Status == MissionStatusComplete:
		return TransitionCompleted
	case r.Guess != nil && r.Status != MissionStatusUnknown:
		return TransitionGuessSubmitted
	case r.Status == MissionStatusGuessing:
		return TransitionReadyToGuess
	// fires again on every later description edit while in progress
	case r.Status == MissionStatusInProgress && r.Description != nil:
		return TransitionReadyToGuess
	case r.Status == MissionStatusInProgress:
		return TransitionAccepted
	default:
		return TransitionUnsupported
	}
}

// Recipient returns the participant to notify for the transition, or "" when nobody is.
func (r MissionRecord) Recipient(t MissionTransition) string {
	switch t {
	case TransitionAccepted, TransitionReadyToGuess:
		return r.CreatorID
	case TransitionGuessSubmitted, TransitionCompleted:
		return r.AssigneeID
	default:
		return ""
	}
}

// MissionParticipants are the two users attached to a mission.
type MissionParticipants struct {
	CreatorID  string `db:"creator_id"`
	AssigneeID string `db:"manito_id"`
}
