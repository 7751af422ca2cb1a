package v1

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	svc *service.PatientService
}

func NewDirectoryHandler(svc *service.PatientService) *DirectoryHandler {
	return &DirectoryHandler{svc: svc}
}

func (h *DirectoryHandler) Register(r gin.IRouter) {
	r.GET("/directory/:doctorId", h.search)
	r.GET("/patients/:patientId/profile", h.profile)
}

func (h *DirectoryHandler) search(c *gin.Context) {
	doctorID, ok := parseIntParam(c, "doctorId")
	if !ok {
		return
	}
	res, err := h.svc.Search(c.Request.Context(), doctorID, c.Query("search"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

func (h *DirectoryHandler) profile(c *gin.Context) {
	prof, err := h.svc.Profile(c.Request.Context(), c.Param("patientId"), caller(c, domain.ActorDoctor))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, prof)
}
