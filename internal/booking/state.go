package booking

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
)

type Stage string

const (
	StageSpecialty    Stage = "specialty"
	StageDoctor       Stage = "doctor"
	StageBooking      Stage = "booking"
	StageConfirmation Stage = "confirmation"
)

// State is one step of the wizard. Each variant carries exactly the
// selections committed so far, so a step can never lack what it depends on.
type State interface {
	Stage() Stage
	sealed()
}

type SelectingSpecialty struct{}

type SelectingDoctor struct {
	Specialty doctor.Specialty
}

type EnteringDetails struct {
	Specialty doctor.Specialty
	Doctor    doctor.Doctor
}

// Confirmed is terminal for the draft; Reset starts a new one.
type Confirmed struct {
	Specialty   doctor.Specialty
	Doctor      doctor.Doctor
	Appointment appointment.Appointment
}

func (SelectingSpecialty) Stage() Stage { return StageSpecialty }
func (SelectingDoctor) Stage() Stage    { return StageDoctor }
func (EnteringDetails) Stage() Stage    { return StageBooking }
func (Confirmed) Stage() Stage          { return StageConfirmation }

func (SelectingSpecialty) sealed() {}
func (SelectingDoctor) sealed()    {}
func (EnteringDetails) sealed()    {}
func (Confirmed) sealed()          {}
