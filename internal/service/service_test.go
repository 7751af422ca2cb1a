package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/booking"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dashboard"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *recordingAudit) Create(_ context.Context, e *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingAudit) all() []*domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AuditLog(nil), r.entries...)
}

// failingWrites serves the seed data but rejects every status write.
type failingWrites struct {
	*dataservice.Memory
}

func (failingWrites) UpdateAppointment(context.Context, appointment.UpdateStatusCommand) error {
	return errors.New("write refused")
}

type fixture struct {
	data      dataservice.Service
	publisher *recordingPublisher
	auditRepo *recordingAudit
	audit     *AuditService
}

func newFixture(t *testing.T, data dataservice.Service) *fixture {
	t.Helper()
	if data == nil {
		data = dataservice.NewMemory(dataservice.Seed())
	}
	repo := &recordingAudit{}
	return &fixture{
		data:      data,
		publisher: &recordingPublisher{},
		auditRepo: repo,
		audit:     NewAuditService(repo, nil, zap.NewNop()),
	}
}

// flushAudit drains the audit worker and returns what it persisted.
func (f *fixture) flushAudit() []*domain.AuditLog {
	f.audit.Shutdown()
	return f.auditRepo.all()
}

func (f *fixture) bookingService() *BookingService {
	policy := booking.DefaultPolicy()
	policy.Location = time.UTC
	svc := NewBookingService(f.data, booking.NewMemorySessionStore(time.Hour), policy, f.publisher, f.audit, nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (f *fixture) appointmentService(strict bool) *AppointmentService {
	svc := NewAppointmentService(f.data, dashboard.BoardConfig{StrictTransitions: strict, RecentActivity: 5, Location: time.UTC},
		f.publisher, f.audit, nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validDetails() booking.Details {
	return booking.Details{
		Date:  "2030-05-06",
		Time:  "9:00 AM",
		Name:  "Ada Patient",
		Email: "ada@example.com",
		Phone: "+1 555 0100",
		Type:  appointment.TypeConsultation,
	}
}

func TestBookingServiceHappyPath(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.bookingService()
	ctx := context.Background()
	caller := Caller{Actor: domain.ActorPatient, RequestID: "req-1"}

	sess, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, booking.StageSpecialty, sess.Stage)

	sess, err = svc.SelectSpecialty(ctx, sess.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, booking.StageDoctor, sess.Stage)

	docs, err := svc.Doctors(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	sess, err = svc.SelectDoctor(ctx, sess.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, booking.StageBooking, sess.Stage)

	sess, err = svc.Submit(ctx, sess.ID, validDetails(), caller)
	require.NoError(t, err)
	assert.Equal(t, booking.StageConfirmation, sess.Stage)
	require.NotNil(t, sess.Appointment)
	assert.Equal(t, 1, sess.Appointment.DoctorID)
	assert.Equal(t, appointment.StatusConfirmed, sess.Appointment.Status)

	evs := f.publisher.all()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeAppointmentBooked, evs[0].Type)
	assert.Equal(t, sess.Appointment.ID, evs[0].AppointmentID)
	assert.Equal(t, "req-1", evs[0].RequestID)

	entries := f.flushAudit()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreate, entries[0].Action)
	assert.Equal(t, domain.ActorPatient, entries[0].Actor)
	assert.Equal(t, sess.Appointment.ID, entries[0].ResourceID)
}

func TestBookingServiceRejectedSubmitKeepsSession(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.bookingService()
	ctx := context.Background()

	sess, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SelectSpecialty(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.SelectDoctor(ctx, sess.ID, 1)
	require.NoError(t, err)

	d := validDetails()
	d.Phone = ""
	sess, err = svc.Submit(ctx, sess.ID, d, Caller{})
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, booking.StageBooking, sess.Stage)
	assert.Equal(t, "Please fill in all required fields", sess.Message)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StageBooking, stored.Stage)
	assert.Equal(t, sess.Message, stored.Message)
	assert.Empty(t, f.publisher.all())
	assert.Empty(t, f.flushAudit())
}

func TestBookingServiceStepErrors(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.bookingService()
	ctx := context.Background()

	_, err := svc.SelectSpecialty(ctx, "", 1)
	assert.ErrorIs(t, err, booking.ErrSessionIDRequired)

	_, err = svc.SelectSpecialty(ctx, "missing", 1)
	assert.ErrorIs(t, err, booking.ErrSessionNotFound)

	sess, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Doctors(ctx, sess.ID)
	assert.ErrorIs(t, err, booking.ErrWrongStage)

	_, err = svc.SelectDoctor(ctx, sess.ID, 1)
	assert.ErrorIs(t, err, booking.ErrWrongStage)

	_, err = svc.Back(ctx, sess.ID)
	assert.ErrorIs(t, err, booking.ErrNoPreviousStage)

	_, err = svc.SelectSpecialty(ctx, sess.ID, 1)
	require.NoError(t, err)
	rejected, err := svc.SelectDoctor(ctx, sess.ID, 3)
	assert.ErrorIs(t, err, doctor.ErrDoctorNotFound)
	assert.Equal(t, booking.StageDoctor, rejected.Stage)
	assert.Equal(t, doctor.ErrDoctorNotFound.Error(), rejected.Message)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ErrDoctorNotFound.Error(), stored.Message)
}

func TestBookingServiceBackAndReset(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.bookingService()
	ctx := context.Background()

	sess, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SelectSpecialty(ctx, sess.ID, 2)
	require.NoError(t, err)
	_, err = svc.SelectDoctor(ctx, sess.ID, 3)
	require.NoError(t, err)

	back, err := svc.Back(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StageDoctor, back.Stage)
	require.NotNil(t, back.Specialty)
	assert.Equal(t, 2, back.Specialty.ID)

	reset, err := svc.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StageSpecialty, reset.Stage)
	assert.Nil(t, reset.Specialty)
}

func TestBookingServiceTimeSlots(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, booking.DefaultTimeSlots, f.bookingService().TimeSlots())
}

func TestAppointmentServiceDashboard(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.appointmentService(false)
	ctx := context.Background()

	view, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.DoctorID)
	assert.Equal(t, dashboard.PhaseReady, view.State.Phase)
	assert.Equal(t, 5, view.Views.Stats.Total)
	assert.Len(t, view.Views.RecentActivity, 5)
	assert.Equal(t, []appointment.Status{appointment.StatusConfirmed, appointment.StatusCancelled},
		view.AllowedActions[appointment.StatusPending])

	_, err = svc.Dashboard(ctx, 42)
	assert.ErrorIs(t, err, doctor.ErrDoctorNotFound)
}

func TestAppointmentServiceUpdateStatusApplied(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.appointmentService(false)
	ctx := context.Background()

	res, err := svc.UpdateStatus(ctx, 1, "APT003", appointment.StatusConfirmed, Caller{Actor: domain.ActorDoctor})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, appointment.StatusPending, res.Previous)

	view, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Views.Stats.Pending)

	evs := f.publisher.all()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeAppointmentStatusChanged, evs[0].Type)
	assert.Equal(t, appointment.StatusPending, evs[0].PreviousStatus)

	entries := f.flushAudit()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionStatusChange, entries[0].Action)
	assert.Equal(t, "APT003", entries[0].ResourceID)
}

func TestAppointmentServiceUpdateStatusReverted(t *testing.T) {
	f := newFixture(t, failingWrites{dataservice.NewMemory(dataservice.Seed())})
	svc := f.appointmentService(false)
	ctx := context.Background()

	res, err := svc.UpdateStatus(ctx, 1, "APT003", appointment.StatusConfirmed, Caller{Actor: domain.ActorDoctor})
	require.Error(t, err)
	assert.True(t, res.Reverted)

	view, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Views.Stats.Pending)
	assert.Empty(t, f.publisher.all())

	entries := f.flushAudit()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionRevert, entries[0].Action)
}

func TestAppointmentServiceStrictTransitions(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.appointmentService(true)

	res, err := svc.UpdateStatus(context.Background(), 1, "APT005", appointment.StatusPending, Caller{})
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)
	assert.False(t, res.Applied)
	assert.False(t, res.Reverted)
	assert.Empty(t, f.flushAudit())
}

func TestPatientServiceSearchAndProfile(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewPatientService(f.data, f.audit, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	res, err := svc.Search(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	res, err = svc.Search(ctx, 1, "sarah")
	require.NoError(t, err)
	require.Len(t, res.Patients, 1)
	assert.Equal(t, "PAT002", res.Patients[0].ID)

	prof, err := svc.Profile(ctx, "PAT001", Caller{Actor: domain.ActorDoctor})
	require.NoError(t, err)
	assert.Equal(t, "PAT001", prof.Patient.ID)
	assert.Equal(t, 3, prof.TotalAppointments)

	_, err = svc.Profile(ctx, "PAT404", Caller{})
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)

	entries := f.flushAudit()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionRead, entries[0].Action)
	assert.Equal(t, "patient", entries[0].ResourceType)
}
