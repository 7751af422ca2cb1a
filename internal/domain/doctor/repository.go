package doctor

import "context"

type Repository interface {
	// Specialties lists every specialty.
	Specialties(ctx context.Context) ([]Specialty, error)

	// Doctors lists doctors, restricted to one specialty when specialtyID is set.
	Doctors(ctx context.Context, specialtyID *int) ([]Doctor, error)
}
