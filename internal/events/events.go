// Package events publishes appointment lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
)

type Type string

const (
	TypeAppointmentBooked        Type = "appointment.booked"
	TypeAppointmentStatusChanged Type = "appointment.status_changed"
)

type Event struct {
	ID            string             `json:"id"`
	Type          Type               `json:"type"`
	OccurredAt    time.Time          `json:"occurredAt"`
	AppointmentID string             `json:"appointmentId"`
	DoctorID      int                `json:"doctorId"`
	Status        appointment.Status `json:"status"`

	// PreviousStatus is set on status changes only.
	PreviousStatus appointment.Status `json:"previousStatus,omitempty"`
	Date           string             `json:"date,omitempty"`
	Time           string             `json:"time,omitempty"`
	RequestID      string             `json:"requestId,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}
