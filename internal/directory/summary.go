// Package directory builds the patient list and patient profile views.
package directory

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
)

const (
	badgesPerKind = 2
	badgeCapacity = 2 * badgesPerKind
)

// Badges are the alert chips shown beside a patient: at most two allergies
// and two chronic conditions, with a count of the rest once the total
// passes four.
type Badges struct {
	Allergies  []string `json:"allergies"`
	Conditions []string `json:"conditions"`
	Overflow   int      `json:"overflow"`
}

// OverflowLabel is "+N more", or empty when nothing overflows.
func (b Badges) OverflowLabel() string {
	if b.Overflow <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", b.Overflow)
}

func AlertBadges(info patient.MedicalInfo) Badges {
	b := Badges{
		Allergies:  headOf(info.Allergies, badgesPerKind),
		Conditions: headOf(info.ChronicConditions, badgesPerKind),
	}
	if total := len(info.Allergies) + len(info.ChronicConditions); total > badgeCapacity {
		b.Overflow = total - badgeCapacity
	}
	return b
}

func headOf(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}

// Summary is one row of the patient directory.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// Age is nil when the date of birth is unreadable or in the future.
	Age           *int   `json:"age"`
	UpcomingCount int    `json:"upcomingCount"`
	TotalVisits   int    `json:"totalVisits"`
	HasAlerts     bool   `json:"hasAlerts"`
	Alerts        Badges `json:"alerts"`
	OverflowLabel string `json:"overflowLabel,omitempty"`
}

func Summarize(p *patient.Patient, now time.Time) Summary {
	s := Summary{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		UpcomingCount: p.UpcomingCount(),
		TotalVisits:   len(p.Appointments),
		HasAlerts:     p.HasAlerts(),
	}
	if age, err := p.Age(now); err == nil {
		s.Age = &age
	}
	if s.HasAlerts {
		s.Alerts = AlertBadges(p.MedicalInfo)
		s.OverflowLabel = s.Alerts.OverflowLabel()
	} else {
		s.Alerts = Badges{Allergies: []string{}, Conditions: []string{}}
	}
	return s
}
