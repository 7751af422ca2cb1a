package dataservice

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"go.uber.org/zap"
)

// Memory serves a Dataset from process memory with a fixed simulated latency.
// Every read returns copies, so callers may mutate results freely.
type Memory struct {
	mu           sync.RWMutex
	specialties  []doctor.Specialty
	doctors      []doctor.Doctor
	appointments []appointment.Appointment
	patients     []patient.Patient

	latency         time.Duration
	persistBookings bool
	log             *zap.Logger
}

type MemoryOption func(*Memory)

// WithLatency delays every call by d, honouring context cancellation.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) { m.latency = d }
}

// WithPersistedBookings makes CreateAppointment append to the appointment
// list instead of acknowledging the write without storing it.
func WithPersistedBookings(persist bool) MemoryOption {
	return func(m *Memory) { m.persistBookings = persist }
}

func WithLogger(log *zap.Logger) MemoryOption {
	return func(m *Memory) { m.log = log }
}

func NewMemory(ds Dataset, opts ...MemoryOption) *Memory {
	m := &Memory{
		specialties:  append([]doctor.Specialty(nil), ds.Specialties...),
		doctors:      append([]doctor.Doctor(nil), ds.Doctors...),
		appointments: append([]appointment.Appointment(nil), ds.Appointments...),
		patients:     make([]patient.Patient, 0, len(ds.Patients)),
		log:          zap.NewNop(),
	}
	for _, p := range ds.Patients {
		m.patients = append(m.patients, clonePatient(p))
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Memory) Specialties(ctx context.Context) ([]doctor.Specialty, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]doctor.Specialty(nil), m.specialties...), nil
}

func (m *Memory) Doctors(ctx context.Context, specialtyID *int) ([]doctor.Doctor, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]doctor.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		if specialtyID != nil && d.SpecialtyID != *specialtyID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *Memory) Appointments(ctx context.Context, q appointment.ListQuery) ([]appointment.Appointment, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]appointment.Appointment, 0, len(m.appointments))
	for i := range m.appointments {
		if q.Matches(&m.appointments[i]) {
			out = append(out, m.appointments[i])
		}
	}
	return out, nil
}

// UpdateAppointment sets the status without checking the current one. The
// same visit in any patient history is kept in step.
func (m *Memory) UpdateAppointment(ctx context.Context, cmd appointment.UpdateStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for i := range m.appointments {
		if m.appointments[i].ID == cmd.AppointmentID {
			m.appointments[i].Status = cmd.Status
			found = true
		}
	}
	for pi := range m.patients {
		recs := m.patients[pi].Appointments
		for ri := range recs {
			if recs[ri].ID == cmd.AppointmentID {
				recs[ri].Status = cmd.Status
				found = true
			}
		}
	}
	if !found {
		return appointment.ErrAppointmentNotFound
	}

	m.log.Debug("appointment status updated",
		zap.String("appointment_id", cmd.AppointmentID),
		zap.String("status", string(cmd.Status)),
	)
	return nil
}

func (m *Memory) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	if !m.persistBookings {
		m.log.Info("appointment booking acknowledged without storing",
			zap.String("appointment_id", a.ID),
			zap.Int("doctor_id", a.DoctorID),
		)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments = append(m.appointments, *a)
	return nil
}

func (m *Memory) Patients(ctx context.Context, q patient.ListQuery) ([]patient.Patient, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]patient.Patient, 0, len(m.patients))
	for i := range m.patients {
		if q.Matches(&m.patients[i]) {
			out = append(out, clonePatient(m.patients[i]))
		}
	}
	return out, nil
}

func clonePatient(p patient.Patient) patient.Patient {
	c := p
	c.MedicalInfo.Allergies = cloneStrings(p.MedicalInfo.Allergies)
	c.MedicalInfo.ChronicConditions = cloneStrings(p.MedicalInfo.ChronicConditions)
	c.MedicalInfo.CurrentMedications = cloneStrings(p.MedicalInfo.CurrentMedications)
	c.Appointments = append([]patient.AppointmentRecord(nil), p.Appointments...)
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
