package v1

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/booking"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/gin-gonic/gin"
)

// BookingHandler drives booking wizard sessions.
type BookingHandler struct {
	svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) Register(r gin.IRouter) {
	g := r.Group("/booking")
	g.GET("/timeslots", h.timeSlots)
	g.POST("/sessions", h.start)
	g.GET("/sessions/:sessionId", h.get)
	g.POST("/sessions/:sessionId/specialty", h.selectSpecialty)
	g.GET("/sessions/:sessionId/doctors", h.doctors)
	g.POST("/sessions/:sessionId/doctor", h.selectDoctor)
	g.POST("/sessions/:sessionId/submit", h.submit)
	g.POST("/sessions/:sessionId/back", h.back)
	g.POST("/sessions/:sessionId/reset", h.reset)
}

type selectSpecialtyRequest struct {
	SpecialtyID int `json:"specialtyId"`
}

type selectDoctorRequest struct {
	DoctorID int `json:"doctorId"`
}

func (h *BookingHandler) timeSlots(c *gin.Context) {
	respondOK(c, h.svc.TimeSlots())
}

func (h *BookingHandler) start(c *gin.Context) {
	sess, err := h.svc.Start(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, sess)
}

func (h *BookingHandler) get(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sess)
}

func (h *BookingHandler) selectSpecialty(c *gin.Context) {
	var req selectSpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondStep(c)(h.svc.SelectSpecialty(c.Request.Context(), c.Param("sessionId"), req.SpecialtyID))
}

func (h *BookingHandler) doctors(c *gin.Context) {
	docs, err := h.svc.Doctors(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, docs)
}

func (h *BookingHandler) selectDoctor(c *gin.Context) {
	var req selectDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondStep(c)(h.svc.SelectDoctor(c.Request.Context(), c.Param("sessionId"), req.DoctorID))
}

func (h *BookingHandler) submit(c *gin.Context) {
	var req booking.Details
	if !bindJSON(c, &req) {
		return
	}
	h.respondStep(c)(h.svc.Submit(c.Request.Context(), c.Param("sessionId"), req, caller(c, domain.ActorPatient)))
}

func (h *BookingHandler) back(c *gin.Context) {
	h.respondStep(c)(h.svc.Back(c.Request.Context(), c.Param("sessionId")))
}

func (h *BookingHandler) reset(c *gin.Context) {
	h.respondStep(c)(h.svc.Reset(c.Request.Context(), c.Param("sessionId")))
}

func (h *BookingHandler) respondStep(c *gin.Context) func(service.Session, error) {
	return func(sess service.Session, err error) {
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, sess)
	}
}
