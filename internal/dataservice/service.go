// Package dataservice is the read/write boundary supplying reference and
// appointment data to the booking wizard and the dashboards.
package dataservice

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
)

// Service is implemented by Memory, SQLStore and Client, and decorated by
// Cached and Instrumented. All implementations share the filter semantics
// of the domain ListQuery types.
type Service interface {
	doctor.Repository
	appointment.Repository
	patient.Repository
}

// Envelope is the wire shape of every data API response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
