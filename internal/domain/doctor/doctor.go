package doctor

import (
	"strings"
	"time"
)

// Specialty is immutable reference data grouping doctors by discipline.
type Specialty struct {
	ID          int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string `json:"name" gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Description string `json:"description" gorm:"column:description;type:text"`
}

func (Specialty) TableName() string {
	return "clinical.specialties"
}

type Doctor struct {
	ID          int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string `json:"name" gorm:"column:name;type:varchar(100);not null"`
	SpecialtyID int    `json:"specialtyId" gorm:"column:specialty_id;not null;index"`

	// Specialty is the denormalized specialty name.
	Specialty    string  `json:"specialty" gorm:"column:specialty;type:varchar(100)"`
	Experience   string  `json:"experience" gorm:"column:experience;type:varchar(50)"`
	Rating       float64 `json:"rating" gorm:"column:rating"`
	Availability string  `json:"availability" gorm:"column:availability;type:varchar(100)"`
	Image        string  `json:"image" gorm:"column:image;type:text"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

// FindSpecialty returns the specialty with the given id from a catalog.
func FindSpecialty(catalog []Specialty, id int) (Specialty, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Specialty{}, false
}

// WorkingDays parses the weekday part of Availability. "Mon-Fri 9AM-5PM"
// is an inclusive range (wrapping past Sunday when needed), "Mon-Wed-Fri"
// with three or more names is a list, and a single name is that day.
func (d *Doctor) WorkingDays() (map[time.Weekday]bool, error) {
	fields := strings.Fields(d.Availability)
	if len(fields) == 0 {
		return nil, ErrUnparsableAvailability
	}

	names := strings.Split(fields[0], "-")
	days := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		wd, ok := parseDay(n)
		if !ok {
			return nil, ErrUnparsableAvailability
		}
		days = append(days, wd)
	}

	working := make(map[time.Weekday]bool, 7)
	if len(days) == 2 {
		for wd := days[0]; ; wd = (wd + 1) % 7 {
			working[wd] = true
			if wd == days[1] {
				break
			}
		}
		return working, nil
	}
	for _, wd := range days {
		working[wd] = true
	}
	return working, nil
}

func parseDay(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, true
		}
	}
	return 0, false
}
