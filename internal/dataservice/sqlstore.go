package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore is the Postgres-backed Service. Patient histories live in a jsonb
// column so the doctor filter runs as a containment query.
type SQLStore struct {
	db              *gorm.DB
	persistBookings bool
	log             *zap.Logger
}

func NewSQLStore(db *gorm.DB, persistBookings bool, log *zap.Logger) *SQLStore {
	return &SQLStore{db: db, persistBookings: persistBookings, log: log}
}

func (s *SQLStore) Specialties(ctx context.Context) ([]doctor.Specialty, error) {
	var out []doctor.Specialty
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing specialties: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Doctors(ctx context.Context, specialtyID *int) ([]doctor.Doctor, error) {
	q := s.db.WithContext(ctx).Order("id")
	if specialtyID != nil {
		q = q.Where("specialty_id = ?", *specialtyID)
	}
	var out []doctor.Doctor
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Appointments(ctx context.Context, lq appointment.ListQuery) ([]appointment.Appointment, error) {
	q := s.db.WithContext(ctx).Order("created_at")
	if lq.DoctorID != nil {
		q = q.Where("doctor_id = ?", *lq.DoctorID)
	}
	if lq.Status != nil {
		q = q.Where("status = ?", string(*lq.Status))
	}
	if lq.Date != "" {
		q = q.Where("date = ?", lq.Date)
	}
	var out []appointment.Appointment
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

// UpdateAppointment changes the status row and the matching patient history
// entries in one transaction.
func (s *SQLStore) UpdateAppointment(ctx context.Context, cmd appointment.UpdateStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&appointment.Appointment{}).
			Where("id = ?", cmd.AppointmentID).
			Update("status", string(cmd.Status))
		if res.Error != nil {
			return fmt.Errorf("updating appointment status: %w", res.Error)
		}
		updated := res.RowsAffected > 0

		filter, err := json.Marshal([]map[string]string{{"id": cmd.AppointmentID}})
		if err != nil {
			return err
		}
		var patients []patient.Patient
		if err := tx.Where("appointments @> ?", string(filter)).Find(&patients).Error; err != nil {
			return fmt.Errorf("loading patient histories: %w", err)
		}
		for i := range patients {
			for j := range patients[i].Appointments {
				if patients[i].Appointments[j].ID == cmd.AppointmentID {
					patients[i].Appointments[j].Status = cmd.Status
				}
			}
			if err := tx.Model(&patients[i]).Select("appointments").Updates(&patients[i]).Error; err != nil {
				return fmt.Errorf("updating patient %s history: %w", patients[i].ID, err)
			}
			updated = true
		}

		if !updated {
			return appointment.ErrAppointmentNotFound
		}
		return nil
	})
}

func (s *SQLStore) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	if !s.persistBookings {
		s.log.Info("appointment booking acknowledged without storing", zap.String("appointment_id", a.ID))
		return nil
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (s *SQLStore) Patients(ctx context.Context, lq patient.ListQuery) ([]patient.Patient, error) {
	q := s.db.WithContext(ctx).Order("id")
	if lq.PatientID != "" {
		q = q.Where("id = ?", lq.PatientID)
	}
	if lq.DoctorID != nil {
		filter, err := json.Marshal([]map[string]int{{"doctorId": *lq.DoctorID}})
		if err != nil {
			return nil, err
		}
		q = q.Where("appointments @> ?", string(filter))
	}
	if term := strings.TrimSpace(lq.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", like, like, like)
	}

	var out []patient.Patient
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return out, nil
}

// Load inserts a Dataset, skipping rows whose primary key already exists.
func (s *SQLStore) Load(ctx context.Context, ds Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validating dataset: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := clause.OnConflict{DoNothing: true}
		batches := []struct {
			name string
			rows any
			n    int
		}{
			{"specialties", &ds.Specialties, len(ds.Specialties)},
			{"doctors", &ds.Doctors, len(ds.Doctors)},
			{"appointments", &ds.Appointments, len(ds.Appointments)},
			{"patients", &ds.Patients, len(ds.Patients)},
		}
		for _, b := range batches {
			if b.n == 0 {
				continue
			}
			if err := tx.Clauses(ignore).Create(b.rows).Error; err != nil {
				return fmt.Errorf("seeding %s: %w", b.name, err)
			}
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
