package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/booking"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dashboard"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/events"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/fetch"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "carebook", Version: "test"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST", "PATCH"}},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, dataservice.NewMemory(dataservice.Seed()))
}

func newTestRouterWith(t *testing.T, data dataservice.Service) *gin.Engine {
	t.Helper()
	log := zap.NewNop()
	audit := service.NewAuditService(service.NewLogAuditRepository(log), nil, log)
	t.Cleanup(audit.Shutdown)
	pub := events.NewLogPublisher(nil, log)

	policy := booking.DefaultPolicy()
	policy.Location = time.UTC

	return NewRouter(RouterDeps{
		Config:       testConfig(),
		Data:         data,
		Bookings:     service.NewBookingService(data, booking.NewMemorySessionStore(time.Hour), policy, pub, audit, nil, log),
		Appointments: service.NewAppointmentService(data, dashboard.BoardConfig{RecentActivity: 5, Location: time.UTC}, pub, audit, nil, log),
		Patients:     service.NewPatientService(data, audit, nil, log),
		Log:          log,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestDataAPISpecialtiesAndDoctors(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/specialties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	specs := decodeBody[dataservice.Envelope[[]doctor.Specialty]](t, w)
	assert.True(t, specs.Success)
	assert.Len(t, specs.Data, 10)

	w = do(t, r, http.MethodGet, "/api/doctors?specialtyId=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs := decodeBody[dataservice.Envelope[[]doctor.Doctor]](t, w)
	require.Len(t, docs.Data, 2)
	assert.Equal(t, "Dermatology", docs.Data[0].Specialty)

	w = do(t, r, http.MethodGet, "/api/doctors?specialtyId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	bad := decodeBody[dataservice.Envelope[any]](t, w)
	assert.False(t, bad.Success)
	assert.NotEmpty(t, bad.Error)
}

func TestDataAPIAppointmentsAndPatch(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/appointments?doctorId=1&status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decodeBody[dataservice.Envelope[[]appointment.Appointment]](t, w)
	require.Len(t, pending.Data, 1)
	assert.Equal(t, "APT003", pending.Data[0].ID)

	w = do(t, r, http.MethodPatch, "/api/appointments", appointment.UpdateStatusCommand{AppointmentID: "APT003", Status: appointment.StatusConfirmed})
	require.Equal(t, http.StatusOK, w.Code)
	ok := decodeBody[dataservice.Envelope[any]](t, w)
	assert.True(t, ok.Success)
	assert.Equal(t, "Appointment updated successfully", ok.Message)

	w = do(t, r, http.MethodGet, "/api/appointments?doctorId=1&status=pending", nil)
	pending = decodeBody[dataservice.Envelope[[]appointment.Appointment]](t, w)
	assert.Empty(t, pending.Data)

	tests := []struct {
		name string
		cmd  appointment.UpdateStatusCommand
		want int
	}{
		{"unknown id", appointment.UpdateStatusCommand{AppointmentID: "APT999", Status: appointment.StatusConfirmed}, http.StatusNotFound},
		{"unknown status", appointment.UpdateStatusCommand{AppointmentID: "APT001", Status: "archived"}, http.StatusBadRequest},
		{"missing id", appointment.UpdateStatusCommand{Status: appointment.StatusConfirmed}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPatch, "/api/appointments", tt.cmd)
			assert.Equal(t, tt.want, w.Code)
			assert.False(t, decodeBody[dataservice.Envelope[any]](t, w).Success)
		})
	}
}

func TestDataAPIPatients(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/patients?doctorId=1&search=BROWN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeBody[dataservice.Envelope[[]patient.Patient]](t, w)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "PAT003", env.Data[0].ID)

	w = do(t, r, http.MethodGet, "/api/patients?doctorId=2", nil)
	env = decodeBody[dataservice.Envelope[[]patient.Patient]](t, w)
	assert.Empty(t, env.Data)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/booking/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decodeBody[APIResponse[service.Session]](t, w).Data
	require.NotEmpty(t, sess.ID)
	base := "/api/v1/booking/sessions/" + sess.ID

	w = do(t, r, http.MethodGet, base+"/doctors", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, base+"/specialty", selectSpecialtyRequest{SpecialtyID: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select a specialty", decodeBody[ValidationErrorResponse](t, w).Error)

	w = do(t, r, http.MethodPost, base+"/specialty", selectSpecialtyRequest{SpecialtyID: 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StageDoctor, decodeBody[APIResponse[service.Session]](t, w).Data.Stage)

	w = do(t, r, http.MethodGet, base+"/doctors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[APIResponse[[]doctor.Doctor]](t, w).Data, 2)

	w = do(t, r, http.MethodPost, base+"/doctor", selectDoctorRequest{DoctorID: 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/submit", booking.Details{Name: "Ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please fill in all required fields", decodeBody[ValidationErrorResponse](t, w).Error)

	w = do(t, r, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StageDoctor, decodeBody[APIResponse[service.Session]](t, w).Data.Stage)

	w = do(t, r, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StageSpecialty, decodeBody[APIResponse[service.Session]](t, w).Data.Stage)

	w = do(t, r, http.MethodGet, "/api/v1/booking/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/booking/timeslots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.DefaultTimeSlots, decodeBody[APIResponse[[]string]](t, w).Data)
}

func TestDashboardOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/dashboard/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[APIResponse[service.DashboardView]](t, w).Data
	assert.Equal(t, dashboard.PhaseReady, view.State.Phase)
	assert.Equal(t, 5, view.Views.Stats.Total)

	w = do(t, r, http.MethodPatch, "/api/v1/dashboard/1/appointments/APT003", updateStatusRequest{Status: appointment.StatusConfirmed})
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody[APIResponse[dashboard.UpdateResult]](t, w).Data
	assert.True(t, res.Applied)
	assert.Equal(t, appointment.StatusPending, res.Previous)

	w = do(t, r, http.MethodPost, "/api/v1/dashboard/1/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeBody[APIResponse[service.DashboardView]](t, w).Data.Views.Stats.Pending)

	w = do(t, r, http.MethodPatch, "/api/v1/dashboard/1/appointments/APT003", updateStatusRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/api/v1/dashboard/1/appointments/APT404", updateStatusRequest{Status: appointment.StatusCancelled})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/dashboard/77", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/dashboard/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectoryOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/directory/1?search=john", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody[APIResponse[struct {
		Search string `json:"search"`
		Total  int    `json:"total"`
	}]](t, w).Data
	assert.Equal(t, "john", res.Search)
	assert.Equal(t, 2, res.Total)

	w = do(t, r, http.MethodGet, "/api/v1/patients/PAT002/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/patients/PAT404/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRateLimitRejectsBurst(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, do(t, r, http.MethodGet, "/ping", nil).Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(t, r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody[ErrorResponse](t, w).Error)
}

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"stale", fetch.ErrStale, http.StatusConflict},
		{"circuit open", gobreaker.ErrOpenState, http.StatusServiceUnavailable},
		{"upstream 500", &dataservice.NetworkError{StatusCode: 500}, http.StatusBadGateway},
		{"empty body", dataservice.ErrEmptyResponse, http.StatusBadGateway},
		{"wrapped not found", errors.Join(errors.New("ctx"), patient.ErrPatientNotFound), http.StatusNotFound},
		{"confirmed", booking.ErrBookingConfirmed, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondServiceError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

// rejectingWrites serves the seeded data but fails every status write.
type rejectingWrites struct {
	*dataservice.Memory
}

func (rejectingWrites) UpdateAppointment(context.Context, appointment.UpdateStatusCommand) error {
	return &dataservice.NetworkError{StatusCode: http.StatusServiceUnavailable}
}

func TestDashboardRevertedUpdateReportsResult(t *testing.T) {
	r := newTestRouterWith(t, rejectingWrites{dataservice.NewMemory(dataservice.Seed())})

	w := do(t, r, http.MethodPatch, "/api/v1/dashboard/1/appointments/APT003", map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())

	body := decodeBody[struct {
		Error     string                 `json:"error"`
		Retryable bool                   `json:"retryable"`
		Data      dashboard.UpdateResult `json:"data"`
	}](t, w)
	assert.True(t, body.Retryable)
	assert.NotEmpty(t, body.Error)
	assert.True(t, body.Data.Reverted)
	assert.False(t, body.Data.Applied)
	assert.Equal(t, "APT003", body.Data.AppointmentID)
	assert.Equal(t, appointment.StatusPending, body.Data.Previous)
	assert.Equal(t, appointment.StatusConfirmed, body.Data.Requested)

	w = do(t, r, http.MethodGet, "/api/v1/dashboard/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[APIResponse[service.DashboardView]](t, w).Data
	assert.Equal(t, 1, view.Views.Stats.Pending)
	require.Len(t, view.Views.Pending, 1)
	assert.Equal(t, "APT003", view.Views.Pending[0].ID)
}
