package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/booking"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/fetch"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	status, body := serviceError(err)
	c.JSON(status, body)
}

// respondServiceErrorWith reports err alongside the partial result the
// caller still needs, such as a reverted status update.
func respondServiceErrorWith(c *gin.Context, err error, data any) {
	status, body := serviceError(err)
	if resp, ok := body.(ErrorResponse); ok {
		resp.Data = data
		body = resp
	}
	c.JSON(status, body)
}

func serviceError(err error) (int, any) {
	var validErr *booking.ValidationError
	if errors.As(err, &validErr) {
		return http.StatusBadRequest, ValidationErrorResponse{
			Error:  validErr.Message,
			Fields: validErr.Fields,
		}
	}

	var netErr *dataservice.NetworkError
	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, doctor.ErrSpecialtyNotFound),
		errors.Is(err, booking.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}

	case errors.Is(err, booking.ErrWrongStage),
		errors.Is(err, booking.ErrBookingConfirmed),
		errors.Is(err, booking.ErrNoPreviousStage),
		errors.Is(err, appointment.ErrInvalidStatusTransition):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}

	case errors.Is(err, fetch.ErrStale):
		return http.StatusConflict, ErrorResponse{
			Error:     "a newer request replaced this one",
			Code:      "STALE",
			Retryable: true,
		}

	case errors.Is(err, booking.ErrSpecialtyMismatch),
		errors.Is(err, booking.ErrSessionIDRequired),
		errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrAppointmentIDRequired):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}

	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:     "data service temporarily unavailable",
			Code:      "CIRCUIT_OPEN",
			Retryable: true,
		}

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "data service timed out", Retryable: true}

	case errors.As(err, &netErr),
		errors.Is(err, dataservice.ErrEmptyResponse):
		return http.StatusBadGateway, ErrorResponse{Error: err.Error(), Retryable: true}

	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseIntParam(c *gin.Context, param string) (int, bool) {
	v, err := strconv.Atoi(c.Param(param))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a positive integer"})
		return 0, false
	}
	return v, true
}

// caller builds the audit identity for a request. actor is implied by the
// route group since there is no authentication.
func caller(c *gin.Context, actor domain.Actor) service.Caller {
	return service.Caller{
		Actor:     actor,
		IPAddress: c.ClientIP(),
		RequestID: requestID(c),
	}
}
