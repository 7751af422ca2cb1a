package appointment

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for Appointment.Date.
const DateLayout = "2006-01-02"

type Type string

const (
	TypeConsultation Type = "consultation"
	TypeFollowUp     Type = "follow-up"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp:
		return true
	}
	return false
}

// Offered transitions:
//
//	pending → confirmed → completed
//	pending → cancelled
//	confirmed → cancelled
//
// The data service itself accepts any valid status; see CanTransition.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the appointment still lies ahead of the patient.
func (s Status) IsOpen() bool {
	return s == StatusConfirmed || s == StatusPending
}

var offered = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// AllowedActions lists the statuses a dashboard offers from the given status.
func AllowedActions(from Status) []Status {
	return append([]Status(nil), offered[from]...)
}

// CanTransition reports whether from → to is one of the offered transitions.
func CanTransition(from, to Status) bool {
	for _, s := range offered[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(32)"`
	DoctorID     int    `json:"doctorId" gorm:"column:doctor_id;not null;index"`
	PatientName  string `json:"patientName" gorm:"column:patient_name;type:varchar(150);not null"`
	PatientEmail string `json:"patientEmail" gorm:"column:patient_email;type:varchar(255);not null"`
	PatientPhone string `json:"patientPhone" gorm:"column:patient_phone;type:varchar(30);not null"`

	// Date is a calendar date (DateLayout); Time is a 12-hour slot label
	// such as "2:30 PM" and does not sort lexically.
	Date   string `json:"date" gorm:"column:date;type:varchar(10);not null;index"`
	Time   string `json:"time" gorm:"column:time;type:varchar(10);not null"`
	Reason string `json:"reason" gorm:"column:reason;type:text"`
	Status Status `json:"status" gorm:"column:status;type:varchar(20);not null;index"`
	Type   Type   `json:"type" gorm:"column:type;type:varchar(20);not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null;index"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// Day returns the appointment date at midnight in loc.
func (a *Appointment) Day(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// IsOn reports whether the appointment falls on t's calendar date.
func (a *Appointment) IsOn(t time.Time) bool {
	return a.Date == t.Format(DateLayout)
}

// ListQuery filters appointments. Zero fields do not filter.
type ListQuery struct {
	DoctorID *int
	Status   *Status
	Date     string
}

func (q ListQuery) Matches(a *Appointment) bool {
	if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
		return false
	}
	if q.Status != nil && a.Status != *q.Status {
		return false
	}
	if q.Date != "" && a.Date != q.Date {
		return false
	}
	return true
}

// UpdateStatusCommand changes an appointment's status. Date and Time are
// accepted for wire compatibility and ignored: rescheduling is not supported.
type UpdateStatusCommand struct {
	AppointmentID string `json:"appointmentId"`
	Status        Status `json:"status"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
}

func (c *UpdateStatusCommand) Validate() error {
	if strings.TrimSpace(c.AppointmentID) == "" {
		return ErrAppointmentIDRequired
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
