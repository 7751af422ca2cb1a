package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/booking"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/events"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionLockStripes = 64

// BookingService drives booking wizards stored in a SessionStore, one per
// session id.
type BookingService struct {
	data      dataservice.Service
	sessions  booking.SessionStore
	policy    booking.Policy
	publisher events.Publisher
	auditSvc  *AuditService
	metrics   *metrics.Collector
	log       *zap.Logger
	now       func() time.Time

	locks [sessionLockStripes]sync.Mutex
}

func NewBookingService(
	data dataservice.Service,
	sessions booking.SessionStore,
	policy booking.Policy,
	publisher events.Publisher,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		data:      data,
		sessions:  sessions,
		policy:    policy,
		publisher: publisher,
		auditSvc:  auditSvc,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// Session is the response shape of every wizard step.
type Session struct {
	ID string `json:"id"`
	booking.Snapshot
}

func (s *BookingService) TimeSlots() []string {
	return s.newWizard().TimeSlots()
}

func (s *BookingService) Start(ctx context.Context) (Session, error) {
	id := uuid.NewString()
	w := s.newWizard()
	if err := s.sessions.Put(ctx, id, w.Snapshot()); err != nil {
		return Session{}, fmt.Errorf("starting booking session: %w", err)
	}
	return Session{ID: id, Snapshot: w.Snapshot()}, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (Session, error) {
	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	return Session{ID: id, Snapshot: snap}, nil
}

func (s *BookingService) SelectSpecialty(ctx context.Context, id string, specialtyID int) (Session, error) {
	return s.step(ctx, id, func(w *booking.Wizard) error {
		catalog, err := s.data.Specialties(ctx)
		if err != nil {
			return fmt.Errorf("loading specialties: %w", err)
		}
		return w.SelectSpecialty(catalog, specialtyID)
	})
}

// Doctors lists the doctors for the session's chosen specialty.
func (s *BookingService) Doctors(ctx context.Context, id string) ([]doctor.Doctor, error) {
	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.Stage != booking.StageDoctor || snap.Specialty == nil {
		return nil, booking.ErrWrongStage
	}
	specialtyID := snap.Specialty.ID
	return s.data.Doctors(ctx, &specialtyID)
}

func (s *BookingService) SelectDoctor(ctx context.Context, id string, doctorID int) (Session, error) {
	return s.step(ctx, id, func(w *booking.Wizard) error {
		cur, ok := w.State().(booking.SelectingDoctor)
		if !ok {
			return w.SelectDoctor(doctor.Doctor{})
		}
		specialtyID := cur.Specialty.ID
		docs, err := s.data.Doctors(ctx, &specialtyID)
		if err != nil {
			return fmt.Errorf("loading doctors: %w", err)
		}
		return w.SelectDoctorFrom(docs, doctorID)
	})
}

// Submit books the appointment. On success the booking is announced and
// audited; a rejected submit leaves the session at the details step.
func (s *BookingService) Submit(ctx context.Context, id string, details booking.Details, caller Caller) (Session, error) {
	sess, err := s.step(ctx, id, func(w *booking.Wizard) error {
		_, err := w.Submit(ctx, details)
		return err
	})

	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &vErr):
		s.metrics.ObserveBooking("rejected")
		return sess, err
	case err != nil:
		s.metrics.ObserveBooking("failed")
		return sess, err
	}
	s.metrics.ObserveBooking("confirmed")

	a := sess.Appointment
	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.Int("doctor_id", a.DoctorID),
		zap.String("date", a.Date),
		zap.String("time", a.Time),
	)
	if err := s.publisher.Publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          events.TypeAppointmentBooked,
		OccurredAt:    a.CreatedAt,
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		Status:        a.Status,
		Date:          a.Date,
		Time:          a.Time,
		RequestID:     caller.RequestID,
	}); err != nil {
		s.log.Warn("booking event not published", zap.String("appointment_id", a.ID), zap.Error(err))
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID,
		Changes:      map[string]any{"doctorId": a.DoctorID, "date": a.Date, "time": a.Time, "status": a.Status},
	})
	return sess, nil
}

func (s *BookingService) Back(ctx context.Context, id string) (Session, error) {
	return s.step(ctx, id, func(w *booking.Wizard) error { return w.Back() })
}

func (s *BookingService) Reset(ctx context.Context, id string) (Session, error) {
	return s.step(ctx, id, func(w *booking.Wizard) error {
		w.Reset()
		return nil
	})
}

func (s *BookingService) newWizard() *booking.Wizard {
	return booking.New(s.policy, s.data, booking.WithClock(s.now))
}

// step loads the session, applies fn and saves the result. The session is
// saved even when fn fails, so the rejection message is kept with it.
func (s *BookingService) step(ctx context.Context, id string, fn func(*booking.Wizard) error) (Session, error) {
	if id == "" {
		return Session{}, booking.ErrSessionIDRequired
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	w := s.newWizard()
	if err := w.Restore(snap); err != nil {
		return Session{}, fmt.Errorf("restoring session %s: %w", id, err)
	}

	stepErr := fn(w)
	after := w.Snapshot()
	if err := s.sessions.Put(ctx, id, after); err != nil {
		return Session{}, fmt.Errorf("saving session %s: %w", id, err)
	}
	return Session{ID: id, Snapshot: after}, stepErr
}

func (s *BookingService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%sessionLockStripes]
}
