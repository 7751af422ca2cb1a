package patient

import "context"

type Repository interface {
	// Patients returns every patient matching q, each with its full history.
	Patients(ctx context.Context, q ListQuery) ([]Patient, error)
}
