package booking

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
)

// Snapshot is the serialisable form of a wizard, used by session stores and
// as the HTTP view of a session.
type Snapshot struct {
	Stage       Stage                    `json:"stage"`
	Specialty   *doctor.Specialty        `json:"specialty,omitempty"`
	Doctor      *doctor.Doctor           `json:"doctor,omitempty"`
	Appointment *appointment.Appointment `json:"appointment,omitempty"`
	Message     string                   `json:"message,omitempty"`
}

func (w *Wizard) Snapshot() Snapshot {
	snap := Snapshot{Stage: w.state.Stage(), Message: w.message}
	switch s := w.state.(type) {
	case SelectingDoctor:
		snap.Specialty = &s.Specialty
	case EnteringDetails:
		snap.Specialty, snap.Doctor = &s.Specialty, &s.Doctor
	case Confirmed:
		snap.Specialty, snap.Doctor, snap.Appointment = &s.Specialty, &s.Doctor, &s.Appointment
	}
	return snap
}

// Restore replaces the wizard state with snap. A snapshot missing a
// selection its stage depends on is rejected and the wizard is unchanged.
func (w *Wizard) Restore(snap Snapshot) error {
	var st State
	switch snap.Stage {
	case StageSpecialty:
		st = SelectingSpecialty{}
	case StageDoctor:
		if snap.Specialty == nil {
			return ErrInvalidSnapshot
		}
		st = SelectingDoctor{Specialty: *snap.Specialty}
	case StageBooking:
		if snap.Specialty == nil || snap.Doctor == nil {
			return ErrInvalidSnapshot
		}
		st = EnteringDetails{Specialty: *snap.Specialty, Doctor: *snap.Doctor}
	case StageConfirmation:
		if snap.Specialty == nil || snap.Doctor == nil || snap.Appointment == nil {
			return ErrInvalidSnapshot
		}
		st = Confirmed{Specialty: *snap.Specialty, Doctor: *snap.Doctor, Appointment: *snap.Appointment}
	default:
		return ErrInvalidSnapshot
	}
	w.state = st
	w.message = snap.Message
	return nil
}
