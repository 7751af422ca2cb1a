package directory

import (
	"cmp"
	"slices"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
)

const recentVisits = 3

// ClinicalNotes are only present on completed visits.
type ClinicalNotes struct {
	Notes     string `json:"notes,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
	Treatment string `json:"treatment,omitempty"`
	FollowUp  string `json:"followUp,omitempty"`
}

type Visit struct {
	ID       string             `json:"id"`
	DoctorID int                `json:"doctorId,omitempty"`
	Date     string             `json:"date"`
	Time     string             `json:"time"`
	Reason   string             `json:"reason"`
	Status   appointment.Status `json:"status"`
	Type     appointment.Type   `json:"type"`
	Clinical *ClinicalNotes     `json:"clinical,omitempty"`
}

func toVisit(r patient.AppointmentRecord) Visit {
	v := Visit{
		ID: r.ID, DoctorID: r.DoctorID, Date: r.Date, Time: r.Time,
		Reason: r.Reason, Status: r.Status, Type: r.Type,
	}
	if r.Status != appointment.StatusCompleted {
		return v
	}
	notes := ClinicalNotes{Notes: r.Notes, Diagnosis: r.Diagnosis, Treatment: r.Treatment, FollowUp: r.FollowUp}
	if notes != (ClinicalNotes{}) {
		v.Clinical = &notes
	}
	return v
}

type Profile struct {
	Patient patient.Patient `json:"patient"`
	Summary Summary         `json:"summary"`

	TotalAppointments int `json:"totalAppointments"`
	CompletedCount    int `json:"completedCount"`
	UpcomingCount     int `json:"upcomingCount"`

	// Recent is the first three entries of History.
	Recent  []Visit `json:"recent"`
	History []Visit `json:"history"`
}

// BuildProfile assembles the profile view. History is newest date first;
// visits on the same date keep their recorded order.
func BuildProfile(p *patient.Patient, now time.Time) Profile {
	history := make([]Visit, 0, len(p.Appointments))
	for _, r := range p.Appointments {
		history = append(history, toVisit(r))
	}
	slices.SortStableFunc(history, func(a, b Visit) int {
		return cmp.Compare(b.Date, a.Date)
	})

	recent := history
	if len(recent) > recentVisits {
		recent = recent[:recentVisits]
	}

	return Profile{
		Patient:           *p,
		Summary:           Summarize(p, now),
		TotalAppointments: len(p.Appointments),
		CompletedCount:    p.CompletedCount(),
		UpcomingCount:     p.UpcomingCount(),
		Recent:            slices.Clone(recent),
		History:           history,
	}
}
