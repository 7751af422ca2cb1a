package appointment

import "context"

type Repository interface {
	// Appointments returns every appointment matching q.
	Appointments(ctx context.Context, q ListQuery) ([]Appointment, error)

	// UpdateAppointment sets the status of one appointment. Returns
	// ErrAppointmentNotFound for an unknown id.
	UpdateAppointment(ctx context.Context, cmd UpdateStatusCommand) error

	// CreateAppointment records a booking made through the wizard.
	CreateAppointment(ctx context.Context, a *Appointment) error
}
