package patient

import "errors"

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrInvalidDateOfBirth = errors.New("date of birth must be a past date formatted YYYY-MM-DD")
)
