package patient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
)

func TestAgeTurnsOnBirthday(t *testing.T) {
	p := &Patient{DateOfBirth: "1990-07-22"}

	age, err := p.Age(time.Date(2024, 7, 21, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 33, age)

	age, err = p.Age(time.Date(2024, 7, 22, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 34, age)
}

func TestAgeIsMonotonic(t *testing.T) {
	p := &Patient{DateOfBirth: "1985-03-15"}
	prev := -1
	for day := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC); day.Year() < 2026; day = day.AddDate(0, 0, 7) {
		age, err := p.Age(day)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, age, prev)
		prev = age
	}
}

func TestAgeRejectsBadDates(t *testing.T) {
	_, err := (&Patient{DateOfBirth: "July 22"}).Age(time.Now())
	assert.ErrorIs(t, err, ErrInvalidDateOfBirth)

	_, err = (&Patient{DateOfBirth: "2030-01-01"}).Age(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidDateOfBirth)
}

func TestMatchesSearch(t *testing.T) {
	sarah := &Patient{Name: "Sarah Johnson", Email: "sarah.j@email.com", Phone: "+1 (555) 987-6543"}
	michael := &Patient{Name: "Michael Brown", Email: "m.brown@email.com", Phone: "+1 (555) 456-7890"}

	assert.True(t, sarah.MatchesSearch("sarah"))
	assert.True(t, sarah.MatchesSearch("  SARAH "))
	assert.False(t, michael.MatchesSearch("sarah"))
	assert.True(t, michael.MatchesSearch("456-78"))
	assert.True(t, michael.MatchesSearch(""))
}

func TestHasAlerts(t *testing.T) {
	assert.False(t, (&Patient{}).HasAlerts())
	assert.True(t, (&Patient{MedicalInfo: MedicalInfo{Allergies: []string{"Latex"}}}).HasAlerts())
	assert.True(t, (&Patient{MedicalInfo: MedicalInfo{ChronicConditions: []string{"Asthma"}}}).HasAlerts())
}

func TestCountsAndQuery(t *testing.T) {
	p := &Patient{
		ID: "PAT001",
		Appointments: []AppointmentRecord{
			{ID: "A", DoctorID: 1, Status: appointment.StatusConfirmed},
			{ID: "B", DoctorID: 1, Status: appointment.StatusPending},
			{ID: "C", DoctorID: 2, Status: appointment.StatusCompleted},
			{ID: "D", DoctorID: 2, Status: appointment.StatusCancelled},
		},
	}
	assert.Equal(t, 2, p.UpcomingCount())
	assert.Equal(t, 1, p.CompletedCount())

	one, three := 1, 3
	assert.True(t, ListQuery{DoctorID: &one}.Matches(p))
	assert.False(t, ListQuery{DoctorID: &three}.Matches(p))
	assert.True(t, ListQuery{PatientID: "PAT001"}.Matches(p))
	assert.False(t, ListQuery{PatientID: "PAT0"}.Matches(p))
}
