package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentIDRequired   = errors.New("appointment id is required")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrInvalidDate             = errors.New("appointment date must be formatted YYYY-MM-DD")
)
