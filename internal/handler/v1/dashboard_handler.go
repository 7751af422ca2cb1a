package v1

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *service.AppointmentService
}

func NewDashboardHandler(svc *service.AppointmentService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Register(r gin.IRouter) {
	g := r.Group("/dashboard/:doctorId")
	g.GET("", h.get)
	g.POST("/refresh", h.refresh)
	g.PATCH("/appointments/:appointmentId", h.updateStatus)
}

type updateStatusRequest struct {
	Status appointment.Status `json:"status" binding:"required"`
}

func (h *DashboardHandler) get(c *gin.Context) {
	doctorID, ok := parseIntParam(c, "doctorId")
	if !ok {
		return
	}
	view, err := h.svc.Dashboard(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *DashboardHandler) refresh(c *gin.Context) {
	doctorID, ok := parseIntParam(c, "doctorId")
	if !ok {
		return
	}
	view, err := h.svc.Refresh(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *DashboardHandler) updateStatus(c *gin.Context) {
	doctorID, ok := parseIntParam(c, "doctorId")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.UpdateStatus(c.Request.Context(), doctorID, c.Param("appointmentId"), req.Status, caller(c, domain.ActorDoctor))
	if err != nil {
		if res.Reverted {
			respondServiceErrorWith(c, err, res)
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}
