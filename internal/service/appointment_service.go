package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dashboard"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/events"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/fetch"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentService serves doctor dashboards. It keeps one board per
// doctor so refreshes and status changes for that doctor share state.
type AppointmentService struct {
	data      dataservice.Service
	cfg       dashboard.BoardConfig
	publisher events.Publisher
	auditSvc  *AuditService
	metrics   *metrics.Collector
	log       *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	boards map[int]*dashboard.Board
}

func NewAppointmentService(
	data dataservice.Service,
	cfg dashboard.BoardConfig,
	publisher events.Publisher,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		data:      data,
		cfg:       cfg,
		publisher: publisher,
		auditSvc:  auditSvc,
		metrics:   m,
		log:       log,
		now:       time.Now,
		boards:    make(map[int]*dashboard.Board),
	}
}

type DashboardView struct {
	DoctorID       int                                         `json:"doctorId"`
	State          dashboard.LoadState                         `json:"state"`
	Views          dashboard.Views                             `json:"views"`
	AllowedActions map[appointment.Status][]appointment.Status `json:"allowedActions"`
}

func (s *AppointmentService) board(ctx context.Context, doctorID int) (*dashboard.Board, error) {
	s.mu.Lock()
	b, ok := s.boards[doctorID]
	s.mu.Unlock()
	if ok {
		return b, nil
	}

	docs, err := s.data.Doctors(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("loading doctors: %w", err)
	}
	found := false
	for _, d := range docs {
		if d.ID == doctorID {
			found = true
			break
		}
	}
	if !found {
		return nil, doctor.ErrDoctorNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[doctorID]; ok {
		return b, nil
	}
	b = dashboard.NewBoard(doctorID, s.data, s.cfg, s.log.With(zap.Int("doctor_id", doctorID)))
	s.boards[doctorID] = b
	return b, nil
}

func (s *AppointmentService) view(b *dashboard.Board) DashboardView {
	actions := make(map[appointment.Status][]appointment.Status, 4)
	for _, st := range []appointment.Status{
		appointment.StatusPending, appointment.StatusConfirmed,
		appointment.StatusCompleted, appointment.StatusCancelled,
	} {
		actions[st] = appointment.AllowedActions(st)
	}
	return DashboardView{
		DoctorID:       b.DoctorID(),
		State:          b.State(),
		Views:          b.Views(s.now()),
		AllowedActions: actions,
	}
}

// Dashboard returns the doctor's views, loading them on first use.
func (s *AppointmentService) Dashboard(ctx context.Context, doctorID int) (DashboardView, error) {
	b, err := s.board(ctx, doctorID)
	if err != nil {
		return DashboardView{}, err
	}
	if b.State().Phase == dashboard.PhaseIdle {
		return s.Refresh(ctx, doctorID)
	}
	return s.view(b), nil
}

// Refresh reloads the doctor's appointments. A refresh overtaken by a newer
// one returns fetch.ErrStale.
func (s *AppointmentService) Refresh(ctx context.Context, doctorID int) (DashboardView, error) {
	b, err := s.board(ctx, doctorID)
	if err != nil {
		return DashboardView{}, err
	}
	if err := b.Refresh(ctx); err != nil {
		if errors.Is(err, fetch.ErrStale) {
			s.metrics.ObserveStale("dashboard")
		}
		return s.view(b), err
	}
	return s.view(b), nil
}

// UpdateStatus changes an appointment on the doctor's board. The returned
// result is meaningful even when err is set: it says whether the change
// was rolled back.
func (s *AppointmentService) UpdateStatus(ctx context.Context, doctorID int, appointmentID string, status appointment.Status, caller Caller) (dashboard.UpdateResult, error) {
	b, err := s.board(ctx, doctorID)
	if err != nil {
		return dashboard.UpdateResult{AppointmentID: appointmentID, Requested: status, Err: err}, err
	}
	if b.State().Phase == dashboard.PhaseIdle {
		if err := b.Refresh(ctx); err != nil && !errors.Is(err, fetch.ErrStale) {
			return dashboard.UpdateResult{AppointmentID: appointmentID, Requested: status, Err: err}, err
		}
	}

	res := b.UpdateStatus(ctx, appointmentID, status)
	switch {
	case res.Applied:
		s.metrics.ObserveStatusUpdate(string(status), "applied")
	case res.Reverted:
		s.metrics.ObserveStatusUpdate(string(status), "reverted")
	default:
		s.metrics.ObserveStatusUpdate(string(status), "rejected")
	}

	if res.Applied {
		if err := s.publisher.Publish(ctx, events.Event{
			ID:             uuid.NewString(),
			Type:           events.TypeAppointmentStatusChanged,
			OccurredAt:     s.now().UTC(),
			AppointmentID:  appointmentID,
			DoctorID:       doctorID,
			Status:         status,
			PreviousStatus: res.Previous,
			RequestID:      caller.RequestID,
		}); err != nil {
			s.log.Warn("status event not published", zap.String("appointment_id", appointmentID), zap.Error(err))
		}
	}
	if res.Applied || res.Reverted {
		action := domain.ActionStatusChange
		if res.Reverted {
			action = domain.ActionRevert
		}
		s.auditSvc.LogAsync(ctx, AuditEntry{
			Caller:       caller,
			Action:       action,
			ResourceType: "appointment",
			ResourceID:   appointmentID,
			Changes:      map[string]any{"from": res.Previous, "to": status},
		})
	}

	return res, res.Err
}
