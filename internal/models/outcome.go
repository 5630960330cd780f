package models

// OutcomeStatus is the terminal state of handling one event.
type OutcomeStatus int

const (
	OutcomeFailed OutcomeStatus = iota
	OutcomeDelivered
	// OutcomeSuppressed means the event was valid but maps to no notification.
	OutcomeSuppressed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeSuppressed:
		return "suppressed"
	default:
		return "failed"
	}
}

// DeliveryOutcome is what the router reports for one event.
type DeliveryOutcome struct {
	Status      OutcomeStatus
	Kind        EventKind
	Variant     string
	RecipientID string
	Receipt     *DeliveryReceipt
	Err         error
}

func Delivered(kind EventKind, variant, recipientID string, receipt *DeliveryReceipt) DeliveryOutcome {
	return DeliveryOutcome{Status: OutcomeDelivered, Kind: kind, Variant: variant, RecipientID: recipientID, Receipt: receipt}
}

func Suppressed(kind EventKind) DeliveryOutcome {
	return DeliveryOutcome{Status: OutcomeSuppressed, Kind: kind}
}

func Failed(kind EventKind, err error) DeliveryOutcome {
	return DeliveryOutcome{Status: OutcomeFailed, Kind: kind, Err: err}
}
