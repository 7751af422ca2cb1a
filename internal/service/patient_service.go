package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/directory"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/fetch"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"go.uber.org/zap"
)

type PatientService struct {
	data     dataservice.Service
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	dirs map[int]*directory.Directory
}

func NewPatientService(data dataservice.Service, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		data:     data,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
		now:      time.Now,
		dirs:     make(map[int]*directory.Directory),
	}
}

func (s *PatientService) directoryFor(doctorID int) *directory.Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dirs[doctorID]
	if !ok {
		d = directory.New(doctorID, s.data, s.log.With(zap.Int("doctor_id", doctorID)))
		s.dirs[doctorID] = d
	}
	return d
}

// Search lists the doctor's patients matching term.
func (s *PatientService) Search(ctx context.Context, doctorID int, term string) (directory.Result, error) {
	res, err := s.directoryFor(doctorID).Search(ctx, term, s.now())
	if errors.Is(err, fetch.ErrStale) {
		s.metrics.ObserveStale("directory")
	}
	return res, err
}

func (s *PatientService) Profile(ctx context.Context, patientID string, caller Caller) (directory.Profile, error) {
	prof, err := directory.LoadProfile(ctx, s.data, patientID, s.now())
	if err != nil {
		return directory.Profile{}, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionRead,
		ResourceType: "patient",
		ResourceID:   prof.Patient.ID,
	})
	return prof, nil
}
