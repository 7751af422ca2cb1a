// Package booking implements the patient booking wizard: specialty, then
// doctor, then appointment details, then confirmation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
)

// Creator is the write path a confirmed booking goes through.
type Creator interface {
	CreateAppointment(ctx context.Context, a *appointment.Appointment) error
}

// Wizard holds one patient's booking draft. It is not safe for concurrent
// use; a session owns exactly one wizard.
type Wizard struct {
	state   State
	message string

	policy  Policy
	creator Creator
	now     func() time.Time
	newID   func() (string, error)
}

type Option func(*Wizard)

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(w *Wizard) { w.newID = gen }
}

func New(policy Policy, creator Creator, opts ...Option) *Wizard {
	w := &Wizard{
		state:   SelectingSpecialty{},
		policy:  policy,
		creator: creator,
		now:     time.Now,
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) State() State { return w.state }

func (w *Wizard) Stage() Stage { return w.state.Stage() }

// Message is the last rejection shown to the patient, cleared on every
// successful step.
func (w *Wizard) Message() string { return w.message }

func (w *Wizard) TimeSlots() []string {
	return append([]string(nil), w.policy.slots()...)
}

func (w *Wizard) reject(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		w.message = vErr.Message
	} else {
		w.message = err.Error()
	}
	return err
}

func (w *Wizard) advance(s State) {
	w.state = s
	w.message = ""
}

// SelectSpecialty commits the specialty with the given id from catalog.
func (w *Wizard) SelectSpecialty(catalog []doctor.Specialty, id int) error {
	if _, ok := w.state.(SelectingSpecialty); !ok {
		return w.reject(ErrWrongStage)
	}
	if id == 0 {
		return w.reject(&ValidationError{Message: "Please select a specialty", Fields: []string{"specialtyId"}})
	}
	s, ok := doctor.FindSpecialty(catalog, id)
	if !ok {
		return w.reject(&ValidationError{Message: doctor.ErrSpecialtyNotFound.Error(), Fields: []string{"specialtyId"}})
	}
	w.advance(SelectingDoctor{Specialty: s})
	return nil
}

// SelectDoctor commits the doctor, who must practise the chosen specialty.
func (w *Wizard) SelectDoctor(d doctor.Doctor) error {
	cur, ok := w.state.(SelectingDoctor)
	if !ok {
		return w.reject(ErrWrongStage)
	}
	if d.ID == 0 {
		return w.reject(&ValidationError{Message: "Please select a doctor", Fields: []string{"doctorId"}})
	}
	if d.SpecialtyID != cur.Specialty.ID {
		return w.reject(ErrSpecialtyMismatch)
	}
	w.advance(EnteringDetails{Specialty: cur.Specialty, Doctor: d})
	return nil
}

// SelectDoctorFrom commits the doctor with the given id from roster, the
// doctors offered for the chosen specialty.
func (w *Wizard) SelectDoctorFrom(roster []doctor.Doctor, id int) error {
	if _, ok := w.state.(SelectingDoctor); !ok || id == 0 {
		return w.SelectDoctor(doctor.Doctor{})
	}
	for _, d := range roster {
		if d.ID == id {
			return w.SelectDoctor(d)
		}
	}
	return w.reject(doctor.ErrDoctorNotFound)
}

// Submit validates the details and books the appointment. A rejected or
// failed submit leaves the wizard at the details step so it can be retried.
func (w *Wizard) Submit(ctx context.Context, d Details) (appointment.Appointment, error) {
	cur, ok := w.state.(EnteringDetails)
	if !ok {
		return appointment.Appointment{}, w.reject(ErrWrongStage)
	}

	now := w.now()
	if err := w.policy.Check(d, cur.Doctor, now); err != nil {
		return appointment.Appointment{}, w.reject(err)
	}

	id, err := w.newID()
	if err != nil {
		return appointment.Appointment{}, w.reject(err)
	}
	typ := d.Type
	if typ == "" {
		typ = appointment.TypeConsultation
	}
	a := appointment.Appointment{
		ID:           id,
		DoctorID:     cur.Doctor.ID,
		PatientName:  strings.TrimSpace(d.Name),
		PatientEmail: strings.TrimSpace(d.Email),
		PatientPhone: strings.TrimSpace(d.Phone),
		Date:         strings.TrimSpace(d.Date),
		Time:         strings.TrimSpace(d.Time),
		Reason:       strings.TrimSpace(d.Reason),
		Status:       appointment.StatusConfirmed,
		Type:         typ,
		CreatedAt:    now.UTC(),
	}

	if err := w.creator.CreateAppointment(ctx, &a); err != nil {
		w.message = "We could not complete your booking. Please try again."
		return appointment.Appointment{}, fmt.Errorf("creating appointment: %w", err)
	}

	w.advance(Confirmed{Specialty: cur.Specialty, Doctor: cur.Doctor, Appointment: a})
	return a, nil
}

// Back returns to the previous step, dropping the current step's selection
// and keeping the earlier ones.
func (w *Wizard) Back() error {
	switch cur := w.state.(type) {
	case SelectingDoctor:
		w.advance(SelectingSpecialty{})
	case EnteringDetails:
		w.advance(SelectingDoctor{Specialty: cur.Specialty})
	case Confirmed:
		return w.reject(ErrBookingConfirmed)
	default:
		return w.reject(ErrNoPreviousStage)
	}
	return nil
}

// Reset discards the draft and starts over.
func (w *Wizard) Reset() {
	w.advance(SelectingSpecialty{})
}
