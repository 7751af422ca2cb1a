package dataservice

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func statusPtr(s appointment.Status) *appointment.Status { return &s }

func TestSeedIsConsistent(t *testing.T) {
	ds := Seed()
	require.NoError(t, ds.Validate())
	assert.Len(t, ds.Specialties, 10)
	assert.Len(t, ds.Doctors, 10)
	assert.Len(t, ds.Appointments, 6)
	assert.Len(t, ds.Patients, 3)
}

func TestDatasetValidateRejectsDanglingDoctor(t *testing.T) {
	ds := Seed()
	ds.Appointments[0].DoctorID = 99
	assert.Error(t, ds.Validate())
}

func TestMemoryDoctorsBySpecialty(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	all, err := m.Doctors(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	cardio, err := m.Doctors(ctx, intPtr(1))
	require.NoError(t, err)
	require.Len(t, cardio, 2)
	for _, d := range cardio {
		assert.Equal(t, 1, d.SpecialtyID)
	}

	none, err := m.Doctors(ctx, intPtr(10))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryAppointmentFilters(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	tests := []struct {
		name string
		q    appointment.ListQuery
		want []string
	}{
		{"doctor", appointment.ListQuery{DoctorID: intPtr(2)}, []string{"APT006"}},
		{"status", appointment.ListQuery{DoctorID: intPtr(1), Status: statusPtr(appointment.StatusPending)}, []string{"APT003"}},
		{"date", appointment.ListQuery{Date: "2024-01-15"}, []string{"APT001", "APT002", "APT006"}},
		{"no match", appointment.ListQuery{DoctorID: intPtr(7)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Appointments(ctx, tt.q)
			require.NoError(t, err)
			var ids []string
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemoryUpdateAppointmentKeepsHistoryInStep(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	err := m.UpdateAppointment(ctx, appointment.UpdateStatusCommand{
		AppointmentID: "APT003",
		Status:        appointment.StatusCompleted,
		Date:          "2030-01-01",
	})
	require.NoError(t, err)

	before := make(map[string]appointment.Status)
	for _, a := range Seed().Appointments {
		before[a.ID] = a.Status
	}
	appts, err := m.Appointments(ctx, appointment.ListQuery{})
	require.NoError(t, err)
	for _, a := range appts {
		if a.ID == "APT003" {
			assert.Equal(t, appointment.StatusCompleted, a.Status)
			assert.Equal(t, "2024-01-16", a.Date, "date is accepted and ignored")
		} else {
			assert.Equal(t, before[a.ID], a.Status, a.ID)
		}
	}

	ps, err := m.Patients(ctx, patient.ListQuery{PatientID: "PAT003"})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, appointment.StatusCompleted, ps[0].Appointments[0].Status)
}

func TestMemoryUpdateAppointmentErrors(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	err := m.UpdateAppointment(ctx, appointment.UpdateStatusCommand{AppointmentID: "APT999", Status: appointment.StatusConfirmed})
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)

	err = m.UpdateAppointment(ctx, appointment.UpdateStatusCommand{AppointmentID: "APT001", Status: "archived"})
	assert.ErrorIs(t, err, appointment.ErrInvalidStatus)
}

func TestMemoryAcceptsAnyStatusChange(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	// completed → pending is not an offered transition but the store allows it.
	err := m.UpdateAppointment(ctx, appointment.UpdateStatusCommand{AppointmentID: "APT005", Status: appointment.StatusPending})
	require.NoError(t, err)
}

func TestMemoryPatientsFilters(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	got, err := m.Patients(ctx, patient.ListQuery{Search: "SARAH"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PAT002", got[0].ID)

	got, err = m.Patients(ctx, patient.ListQuery{DoctorID: intPtr(1)})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = m.Patients(ctx, patient.ListQuery{DoctorID: intPtr(2)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = m.Patients(ctx, patient.ListQuery{Search: "555) 456"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PAT003", got[0].ID)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory(Seed())
	ctx := context.Background()

	got, err := m.Patients(ctx, patient.ListQuery{PatientID: "PAT001"})
	require.NoError(t, err)
	got[0].MedicalInfo.Allergies[0] = "changed"
	got[0].Appointments[0].Status = appointment.StatusCancelled

	again, err := m.Patients(ctx, patient.ListQuery{PatientID: "PAT001"})
	require.NoError(t, err)
	assert.Equal(t, "Penicillin", again[0].MedicalInfo.Allergies[0])
	assert.Equal(t, appointment.StatusConfirmed, again[0].Appointments[0].Status)
}

func TestMemoryCreateAppointment(t *testing.T) {
	ctx := context.Background()
	a := &appointment.Appointment{ID: "abc123xyz", DoctorID: 3, Date: "2030-05-06", Status: appointment.StatusConfirmed}

	simulated := NewMemory(Seed())
	require.NoError(t, simulated.CreateAppointment(ctx, a))
	got, err := simulated.Appointments(ctx, appointment.ListQuery{DoctorID: intPtr(3)})
	require.NoError(t, err)
	assert.Empty(t, got, "simulated writes are not stored")

	persisted := NewMemory(Seed(), WithPersistedBookings(true))
	require.NoError(t, persisted.CreateAppointment(ctx, a))
	got, err = persisted.Appointments(ctx, appointment.ListQuery{DoctorID: intPtr(3)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "abc123xyz", got[0].ID)
}

func TestMemoryLatencyHonoursCancellation(t *testing.T) {
	m := NewMemory(Seed(), WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Specialties(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
