package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/fetch"
	"go.uber.org/zap"
)

// Source is the slice of the data service the directory reads.
type Source interface {
	Patients(ctx context.Context, q patient.ListQuery) ([]patient.Patient, error)
}

// Result is one directory listing.
type Result struct {
	Search   string    `json:"search"`
	Patients []Summary `json:"patients"`
	Total    int       `json:"total"`

	WithUpcoming int `json:"withUpcoming"`
	WithAlerts   int `json:"withAlerts"`
}

// Directory lists one doctor's patients. Filtering happens once, in the
// data service; results are never refiltered here. Each search supersedes
// the ones before it.
type Directory struct {
	doctorID int
	source   Source
	log      *zap.Logger
	tracker  fetch.Tracker
}

func New(doctorID int, source Source, log *zap.Logger) *Directory {
	return &Directory{doctorID: doctorID, source: source, log: log}
}

// Search lists the doctor's patients matching term. It returns
// fetch.ErrStale when a newer Search was issued before this one resolved.
func (d *Directory) Search(ctx context.Context, term string, now time.Time) (Result, error) {
	tok := d.tracker.Next()
	term = strings.TrimSpace(term)

	doctorID := d.doctorID
	patients, err := d.source.Patients(ctx, patient.ListQuery{DoctorID: &doctorID, Search: term})
	if err := d.tracker.Check(tok); err != nil {
		return Result{}, err
	}
	if err != nil {
		return Result{}, fmt.Errorf("searching patients of doctor %d: %w", d.doctorID, err)
	}

	res := Result{Search: term, Patients: make([]Summary, 0, len(patients)), Total: len(patients)}
	for i := range patients {
		s := Summarize(&patients[i], now)
		if s.Age == nil {
			d.log.Warn("patient has an unreadable date of birth", zap.String("patient_id", s.ID))
		}
		if s.UpcomingCount > 0 {
			res.WithUpcoming++
		}
		if s.HasAlerts {
			res.WithAlerts++
		}
		res.Patients = append(res.Patients, s)
	}
	return res, nil
}

// LoadProfile fetches one patient by exact id and builds the profile.
func LoadProfile(ctx context.Context, src Source, patientID string, now time.Time) (Profile, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Profile{}, patient.ErrPatientNotFound
	}
	ps, err := src.Patients(ctx, patient.ListQuery{PatientID: patientID})
	if err != nil {
		return Profile{}, fmt.Errorf("loading patient %s: %w", patientID, err)
	}
	for i := range ps {
		if ps[i].ID == patientID {
			return BuildProfile(&ps[i], now), nil
		}
	}
	return Profile{}, patient.ErrPatientNotFound
}
