package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DataHandler exposes a dataservice.Service as the envelope-shaped data API
// that dataservice.Client consumes.
type DataHandler struct {
	data dataservice.Service
	log  *zap.Logger
}

func NewDataHandler(data dataservice.Service, log *zap.Logger) *DataHandler {
	return &DataHandler{data: data, log: log}
}

func (h *DataHandler) Register(r gin.IRouter) {
	r.GET("/specialties", h.specialties)
	r.GET("/doctors", h.doctors)
	r.GET("/appointments", h.appointments)
	r.PATCH("/appointments", h.updateAppointment)
	r.POST("/appointments", h.createAppointment)
	r.GET("/patients", h.patients)
}

func envelopeOK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, dataservice.Envelope[T]{Success: true, Data: data})
}

func envelopeError(c *gin.Context, status int, msg string) {
	c.JSON(status, dataservice.Envelope[any]{Error: msg})
}

// optionalInt reads a positive integer query parameter. ok is false when a
// value was given but is not one; the response has then been written.
func optionalInt(c *gin.Context, key string) (v *int, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		envelopeError(c, http.StatusBadRequest, "Invalid "+key)
		return nil, false
	}
	return &n, true
}

func (h *DataHandler) specialties(c *gin.Context) {
	out, err := h.data.Specialties(c.Request.Context())
	if err != nil {
		h.log.Error("listing specialties", zap.Error(err))
		envelopeError(c, http.StatusInternalServerError, "Failed to fetch specialties")
		return
	}
	envelopeOK(c, out)
}

func (h *DataHandler) doctors(c *gin.Context) {
	specialtyID, ok := optionalInt(c, "specialtyId")
	if !ok {
		return
	}
	out, err := h.data.Doctors(c.Request.Context(), specialtyID)
	if err != nil {
		h.log.Error("listing doctors", zap.Error(err))
		envelopeError(c, http.StatusInternalServerError, "Failed to fetch doctors")
		return
	}
	envelopeOK(c, out)
}

func (h *DataHandler) appointments(c *gin.Context) {
	doctorID, ok := optionalInt(c, "doctorId")
	if !ok {
		return
	}
	q := appointment.ListQuery{DoctorID: doctorID, Date: c.Query("date")}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		if !st.IsValid() {
			envelopeError(c, http.StatusBadRequest, "Invalid status")
			return
		}
		q.Status = &st
	}

	out, err := h.data.Appointments(c.Request.Context(), q)
	if err != nil {
		h.log.Error("listing appointments", zap.Error(err))
		envelopeError(c, http.StatusInternalServerError, "Failed to fetch appointments")
		return
	}
	envelopeOK(c, out)
}

func (h *DataHandler) updateAppointment(c *gin.Context) {
	var cmd appointment.UpdateStatusCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		envelopeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.data.UpdateAppointment(c.Request.Context(), cmd)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dataservice.Envelope[any]{Success: true, Message: "Appointment updated successfully"})
	case errors.Is(err, appointment.ErrAppointmentIDRequired),
		errors.Is(err, appointment.ErrInvalidStatus):
		envelopeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		envelopeError(c, http.StatusNotFound, "Appointment not found")
	default:
		h.log.Error("updating appointment", zap.String("appointment_id", cmd.AppointmentID), zap.Error(err))
		envelopeError(c, http.StatusInternalServerError, "Failed to update appointment")
	}
}

func (h *DataHandler) createAppointment(c *gin.Context) {
	var a appointment.Appointment
	if err := c.ShouldBindJSON(&a); err != nil {
		envelopeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if a.ID == "" || a.DoctorID <= 0 || !a.Status.IsValid() {
		envelopeError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := h.data.CreateAppointment(c.Request.Context(), &a); err != nil {
		h.log.Error("creating appointment", zap.String("appointment_id", a.ID), zap.Error(err))
		envelopeError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}
	c.JSON(http.StatusCreated, dataservice.Envelope[appointment.Appointment]{Success: true, Data: a, Message: "Appointment created successfully"})
}

func (h *DataHandler) patients(c *gin.Context) {
	doctorID, ok := optionalInt(c, "doctorId")
	if !ok {
		return
	}
	q := patient.ListQuery{
		DoctorID:  doctorID,
		PatientID: c.Query("patientId"),
		Search:    c.Query("search"),
	}

	out, err := h.data.Patients(c.Request.Context(), q)
	if err != nil {
		h.log.Error("listing patients", zap.Error(err))
		envelopeError(c, http.StatusInternalServerError, "Failed to fetch patients")
		return
	}
	envelopeOK(c, out)
}
