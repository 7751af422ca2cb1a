package doctor

import "errors"

var (
	ErrSpecialtyNotFound      = errors.New("specialty not found")
	ErrDoctorNotFound         = errors.New("doctor not found")
	ErrUnparsableAvailability = errors.New("doctor availability has no recognizable working days")
)
