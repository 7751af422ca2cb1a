package booking

import (
	"errors"
	"strings"
)

var (
	ErrNoPreviousStage   = errors.New("already at the first step")
	ErrBookingConfirmed  = errors.New("booking is confirmed; start a new appointment instead")
	ErrWrongStage        = errors.New("action is not available at the current step")
	ErrSpecialtyMismatch = errors.New("doctor does not practise the selected specialty")
	ErrSessionNotFound   = errors.New("booking session not found")
	ErrSessionIDRequired = errors.New("booking session id is required")
	ErrInvalidSnapshot   = errors.New("booking snapshot is incomplete or has an unknown stage")
)

// ValidationError is a rejected step. The wizard stays where it was and the
// message is what the patient sees.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}
