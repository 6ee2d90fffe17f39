package incidents

import "errors"

// Incident store errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrInvalidStatus    = errors.New("invalid incident status")
	ErrInvalidSeverity  = errors.New("invalid incident severity")

	// ErrMessageRequired is returned when an incident update carries an
	// empty message. Every update, including resolution, must say what
	// happened.
	ErrMessageRequired = errors.New("update message is required")
)
