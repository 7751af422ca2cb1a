package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config       *config.Config
	Data         dataservice.Service
	Bookings     *service.BookingService
	Appointments *service.AppointmentService
	Patients     *service.PatientService
	Metrics      *metrics.Collector
	Tracer       trace.Tracer
	Log          *zap.Logger
}

// NewRouter mounts the data API under /api and the application flows under
// /api/v1.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		Recovery(d.Log),
		RequestID(),
		Logger(d.Log),
		Metrics(d.Metrics),
	)
	if d.Tracer != nil {
		r.Use(Tracing(d.Tracer))
	}
	r.Use(CORS(d.Config.CORS), RateLimit(d.Config.RateLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": d.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api")
	NewDataHandler(d.Data, logger.Component(d.Log, "data_api")).Register(api)

	v1 := api.Group("/v1")
	NewBookingHandler(d.Bookings).Register(v1)
	NewDashboardHandler(d.Appointments).Register(v1)
	NewDirectoryHandler(d.Patients).Register(v1)

	return r
}
