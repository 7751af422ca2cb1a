package patient

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
)

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type MedicalInfo struct {
	BloodType          string   `json:"bloodType"`
	Allergies          []string `json:"allergies"`
	ChronicConditions  []string `json:"chronicConditions"`
	CurrentMedications []string `json:"currentMedications"`
}

type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
	GroupNumber  string `json:"groupNumber"`
}

// AppointmentRecord is a visit in a patient's history. The clinical fields
// are only populated once the visit is completed.
type AppointmentRecord struct {
	ID       string             `json:"id"`
	DoctorID int                `json:"doctorId,omitempty"`
	Date     string             `json:"date"`
	Time     string             `json:"time"`
	Reason   string             `json:"reason"`
	Status   appointment.Status `json:"status"`
	Type     appointment.Type   `json:"type"`

	Notes     string `json:"notes"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	FollowUp  string `json:"followUp"`
}

type Patient struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(32)"`
	Name        string `json:"name" gorm:"column:name;type:varchar(150);not null;index"`
	Email       string `json:"email" gorm:"column:email;type:varchar(255)"`
	Phone       string `json:"phone" gorm:"column:phone;type:varchar(30)"`
	DateOfBirth string `json:"dateOfBirth" gorm:"column:date_of_birth;type:varchar(10);not null"`
	Gender      string `json:"gender" gorm:"column:gender;type:varchar(20)"`
	Address     string `json:"address" gorm:"column:address;type:text"`

	EmergencyContact EmergencyContact `json:"emergencyContact" gorm:"column:emergency_contact;type:jsonb;serializer:json"`
	MedicalInfo      MedicalInfo      `json:"medicalInfo" gorm:"column:medical_info;type:jsonb;serializer:json"`
	Insurance        Insurance        `json:"insurance" gorm:"column:insurance;type:jsonb;serializer:json"`

	Appointments []AppointmentRecord `json:"appointments" gorm:"column:appointments;type:jsonb;serializer:json"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

// Age returns whole years between DateOfBirth and now's calendar date. The
// year only counts once the birthday itself has been reached.
func (p *Patient) Age(now time.Time) (int, error) {
	dob, err := time.Parse(appointment.DateLayout, p.DateOfBirth)
	if err != nil {
		return 0, ErrInvalidDateOfBirth
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0, ErrInvalidDateOfBirth
	}
	return years, nil
}

// UpcomingCount counts visits still confirmed or pending.
func (p *Patient) UpcomingCount() int {
	n := 0
	for _, a := range p.Appointments {
		if a.Status.IsOpen() {
			n++
		}
	}
	return n
}

func (p *Patient) CompletedCount() int {
	n := 0
	for _, a := range p.Appointments {
		if a.Status == appointment.StatusCompleted {
			n++
		}
	}
	return n
}

func (p *Patient) HasAlerts() bool {
	return len(p.MedicalInfo.Allergies) > 0 || len(p.MedicalInfo.ChronicConditions) > 0
}

// SeenBy reports whether any visit in the history is with the doctor.
func (p *Patient) SeenBy(doctorID int) bool {
	for _, a := range p.Appointments {
		if a.DoctorID == doctorID {
			return true
		}
	}
	return false
}

// MatchesSearch is a case-insensitive substring match over name, email and
// phone. An empty term matches everyone.
func (p *Patient) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Email), term) ||
		strings.Contains(strings.ToLower(p.Phone), term)
}

// ListQuery filters patients. This is the single filter pass; callers do
// not refilter results.
type ListQuery struct {
	DoctorID  *int
	PatientID string
	Search    string
}

func (q ListQuery) Matches(p *Patient) bool {
	if q.PatientID != "" && p.ID != q.PatientID {
		return false
	}
	if q.DoctorID != nil && !p.SeenBy(*q.DoctorID) {
		return false
	}
	return p.MatchesSearch(q.Search)
}
