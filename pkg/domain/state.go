package domain

// EventState is the activation state of an event.
type EventState string

const (
	// EventActive events evaluate their trigger every pass.
	EventActive EventState = "ACTIVE"
	// EventDeactivated events skip their trigger until ACTIVATE holds.
	EventDeactivated EventState = "DEACTIVATED"
)
