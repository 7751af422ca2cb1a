package dataservice

import (
	"context"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumented records a span and a latency observation around every call.
type Instrumented struct {
	inner   Service
	metrics *metrics.Collector
	tracer  trace.Tracer
}

func NewInstrumented(inner Service, m *metrics.Collector, tracer trace.Tracer) *Instrumented {
	return &Instrumented{inner: inner, metrics: m, tracer: tracer}
}

func (s *Instrumented) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "dataservice."+op, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		s.metrics.ObserveDataCall(op, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (s *Instrumented) Specialties(ctx context.Context) (out []doctor.Specialty, err error) {
	ctx, done := s.observe(ctx, "specialties")
	defer func() { done(err) }()
	return s.inner.Specialties(ctx)
}

func (s *Instrumented) Doctors(ctx context.Context, specialtyID *int) (out []doctor.Doctor, err error) {
	var attrs []attribute.KeyValue
	if specialtyID != nil {
		attrs = append(attrs, attribute.Int("specialty.id", *specialtyID))
	}
	ctx, done := s.observe(ctx, "doctors", attrs...)
	defer func() { done(err) }()
	return s.inner.Doctors(ctx, specialtyID)
}

func (s *Instrumented) Appointments(ctx context.Context, q appointment.ListQuery) (out []appointment.Appointment, err error) {
	var attrs []attribute.KeyValue
	if q.DoctorID != nil {
		attrs = append(attrs, attribute.Int("doctor.id", *q.DoctorID))
	}
	ctx, done := s.observe(ctx, "appointments", attrs...)
	defer func() { done(err) }()
	return s.inner.Appointments(ctx, q)
}

func (s *Instrumented) UpdateAppointment(ctx context.Context, cmd appointment.UpdateStatusCommand) (err error) {
	ctx, done := s.observe(ctx, "update_appointment",
		attribute.String("appointment.id", cmd.AppointmentID),
		attribute.String("appointment.status", string(cmd.Status)),
	)
	defer func() { done(err) }()
	return s.inner.UpdateAppointment(ctx, cmd)
}

func (s *Instrumented) CreateAppointment(ctx context.Context, a *appointment.Appointment) (err error) {
	ctx, done := s.observe(ctx, "create_appointment",
		attribute.String("appointment.id", a.ID),
		attribute.String("doctor.id", strconv.Itoa(a.DoctorID)),
	)
	defer func() { done(err) }()
	return s.inner.CreateAppointment(ctx, a)
}

func (s *Instrumented) Patients(ctx context.Context, q patient.ListQuery) (out []patient.Patient, err error) {
	ctx, done := s.observe(ctx, "patients")
	defer func() { done(err) }()
	return s.inner.Patients(ctx, q)
}
