// Package dashboard derives a doctor's schedule views from their appointments
// and applies status changes to them.
package dashboard

import (
	"slices"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
)

const DefaultRecentActivity = 5

type Stats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

// Views are derived from a collection and never stored.
type Views struct {
	Today          []appointment.Appointment `json:"today"`
	Upcoming       []appointment.Appointment `json:"upcoming"`
	Completed      []appointment.Appointment `json:"completed"`
	Pending        []appointment.Appointment `json:"pending"`
	RecentActivity []appointment.Appointment `json:"recentActivity"`
	Stats          Stats                     `json:"stats"`
}

// Compute builds the views for appts as seen at now in loc. Today matches
// the calendar date; Upcoming holds non-cancelled appointments whose date
// begins after now, so today's visits are never upcoming. Appointments with
// an unreadable date only appear in the status-based views.
func Compute(appts []appointment.Appointment, now time.Time, loc *time.Location, recentLimit int) Views {
	if loc == nil {
		loc = time.Local
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentActivity
	}
	now = now.In(loc)

	v := Views{
		Today:     []appointment.Appointment{},
		Upcoming:  []appointment.Appointment{},
		Completed: []appointment.Appointment{},
		Pending:   []appointment.Appointment{},
	}
	for i := range appts {
		a := appts[i]
		switch a.Status {
		case appointment.StatusCompleted:
			v.Completed = append(v.Completed, a)
		case appointment.StatusPending:
			v.Pending = append(v.Pending, a)
		case appointment.StatusCancelled:
			v.Stats.Cancelled++
		}

		if a.IsOn(now) {
			v.Today = append(v.Today, a)
		}
		if day, err := a.Day(loc); err == nil && day.After(now) && a.Status != appointment.StatusCancelled {
			v.Upcoming = append(v.Upcoming, a)
		}
	}

	recent := slices.Clone(appts)
	slices.SortStableFunc(recent, func(a, b appointment.Appointment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	if recent == nil {
		recent = []appointment.Appointment{}
	}
	v.RecentActivity = recent

	v.Stats.Total = len(appts)
	v.Stats.Today = len(v.Today)
	v.Stats.Upcoming = len(v.Upcoming)
	v.Stats.Completed = len(v.Completed)
	v.Stats.Pending = len(v.Pending)
	return v
}
