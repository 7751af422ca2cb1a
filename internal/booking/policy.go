package booking

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
)

// DefaultTimeSlots are the bookable slot labels offered for every doctor.
var DefaultTimeSlots = []string{
	"9:00 AM", "9:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"2:00 PM", "2:30 PM", "3:00 PM", "3:30 PM", "4:00 PM", "4:30 PM", "5:00 PM",
}

// Policy decides which dates and slots a patient may book.
type Policy struct {
	// UnavailableDays are closed for every doctor.
	UnavailableDays []time.Weekday

	// EnforceDoctorDays also rejects dates outside the doctor's stated
	// working days. Doctors whose availability cannot be parsed are not
	// restricted.
	EnforceDoctorDays bool

	TimeSlots []string

	// Location defines "today" and the weekday of a date.
	Location *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		UnavailableDays: []time.Weekday{time.Sunday},
		TimeSlots:       DefaultTimeSlots,
		Location:        time.Local,
	}
}

// Details is what the patient enters at the booking step.
type Details struct {
	Date   string           `json:"date"`
	Time   string           `json:"time"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Phone  string           `json:"phone"`
	Reason string           `json:"reason,omitempty"`
	Type   appointment.Type `json:"type,omitempty"`
}

func (d Details) missing() []string {
	var fields []string
	for _, f := range []struct{ name, val string }{
		{"date", d.Date},
		{"time", d.Time},
		{"name", d.Name},
		{"email", d.Email},
		{"phone", d.Phone},
	} {
		if strings.TrimSpace(f.val) == "" {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// Check validates details for a booking with doc at now.
func (p Policy) Check(d Details, doc doctor.Doctor, now time.Time) error {
	if fields := d.missing(); len(fields) > 0 {
		return &ValidationError{Message: "Please fill in all required fields", Fields: fields}
	}

	loc := p.location()
	day, err := time.ParseInLocation(appointment.DateLayout, strings.TrimSpace(d.Date), loc)
	if err != nil {
		return &ValidationError{Message: "Please choose a valid date", Fields: []string{"date"}}
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return &ValidationError{Message: "Appointments cannot be booked in the past", Fields: []string{"date"}}
	}
	if p.isClosed(day.Weekday()) {
		return &ValidationError{Message: "The clinic is closed on " + day.Weekday().String() + "s", Fields: []string{"date"}}
	}
	if p.EnforceDoctorDays {
		if days, err := doc.WorkingDays(); err == nil && !days[day.Weekday()] {
			return &ValidationError{Message: doc.Name + " does not see patients on " + day.Weekday().String() + "s", Fields: []string{"date"}}
		}
	}

	if !p.offersSlot(strings.TrimSpace(d.Time)) {
		return &ValidationError{Message: "Please choose one of the available time slots", Fields: []string{"time"}}
	}
	if d.Type != "" && !d.Type.IsValid() {
		return &ValidationError{Message: "Unknown appointment type", Fields: []string{"type"}}
	}
	return nil
}

func (p Policy) isClosed(wd time.Weekday) bool {
	for _, d := range p.UnavailableDays {
		if d == wd {
			return true
		}
	}
	return false
}

func (p Policy) offersSlot(label string) bool {
	for _, s := range p.slots() {
		if s == label {
			return true
		}
	}
	return false
}

func (p Policy) slots() []string {
	if len(p.TimeSlots) == 0 {
		return DefaultTimeSlots
	}
	return p.TimeSlots
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}
