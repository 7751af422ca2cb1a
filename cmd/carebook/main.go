package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/booking"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dashboard"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/dataservice"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/events"
	v1 "github.com/dmehra2102/prod-golang-projects/carebook/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	var envFile string
	rootCmd := &cobra.Command{
		Use:           "carebook",
		Short:         "Clinic booking and doctor dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before configuration")

	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrapDB()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			return database.Migrate(db, log)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the clinic reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrapDB()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			if err := database.Migrate(db, log); err != nil {
				return err
			}
			store := dataservice.NewSQLStore(db, cfg.Booking.PersistAppointments, logger.Component(log, "sqlstore"))
			if err := store.Load(cmd.Context(), dataservice.Seed()); err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			log.Info("seed data loaded")
			return nil
		},
	}
}

func bootstrapDB() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	m := metrics.NewCollector(cfg.App.Name, nil)

	data, db, err := buildDataService(ctx, cfg, log)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		data = dataservice.NewCached(data, rdb, cfg.Redis.CacheTTL, logger.Component(log, "cache"))
	}
	data = dataservice.NewInstrumented(data, m, tracer.Tracer())

	var sessions booking.SessionStore = booking.NewMemorySessionStore(cfg.Booking.SessionTTL)
	if rdb != nil {
		sessions = booking.NewRedisSessionStore(rdb, cfg.Booking.SessionTTL)
	}

	var publisher events.Publisher = events.NewLogPublisher(m, logger.Component(log, "events"))
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), m, logger.Component(log, "events"))
	}
	defer publisher.Close()

	var auditRepo service.AuditRepository = service.NewLogAuditRepository(logger.Component(log, "audit"))
	if db != nil {
		auditRepo = service.NewGormAuditRepository(db)
	}
	auditSvc := service.NewAuditService(auditRepo, m, logger.Component(log, "audit"))
	defer auditSvc.Shutdown()

	loc := cfg.Booking.Location()
	policy := booking.Policy{
		UnavailableDays:   cfg.Booking.UnavailableDays,
		EnforceDoctorDays: cfg.Booking.EnforceDoctorDays,
		TimeSlots:         booking.DefaultTimeSlots,
		Location:          loc,
	}
	boardCfg := dashboard.BoardConfig{
		StrictTransitions: cfg.Dashboard.StrictTransitions,
		RecentActivity:    cfg.Dashboard.RecentActivity,
		Location:          loc,
	}

	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Data:         data,
		Bookings:     service.NewBookingService(data, sessions, policy, publisher, auditSvc, m, logger.Component(log, "booking")),
		Appointments: service.NewAppointmentService(data, boardCfg, publisher, auditSvc, m, logger.Component(log, "dashboard")),
		Patients:     service.NewPatientService(data, auditSvc, m, logger.Component(log, "directory")),
		Metrics:      m,
		Tracer:       tracer.Tracer(),
		Log:          logger.Component(log, "http"),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("data_source", cfg.DataSource.Kind),
			zap.Bool("redis", rdb != nil),
			zap.Bool("kafka", cfg.Kafka.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildDataService selects the backing store. The *gorm.DB is non-nil only
// for the postgres source.
func buildDataService(ctx context.Context, cfg *config.Config, log *zap.Logger) (dataservice.Service, *gorm.DB, error) {
	switch cfg.DataSource.Kind {
	case config.SourcePostgres:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db, log); err != nil {
			return nil, nil, err
		}
		store := dataservice.NewSQLStore(db, cfg.Booking.PersistAppointments, logger.Component(log, "sqlstore"))
		if err := store.Load(ctx, dataservice.Seed()); err != nil {
			return nil, nil, fmt.Errorf("seeding: %w", err)
		}
		return store, db, nil

	case config.SourceRemote:
		return dataservice.NewClient(dataservice.ClientConfig{
			BaseURL:         cfg.DataSource.RemoteURL,
			Timeout:         cfg.DataSource.RemoteTimeout,
			BreakerFailures: cfg.DataSource.BreakerFailures,
			BreakerCooldown: cfg.DataSource.BreakerCooldown,
			PersistBookings: cfg.Booking.PersistAppointments,
		}, logger.Component(log, "dataclient")), nil, nil

	default:
		return dataservice.NewMemory(dataservice.Seed(),
			dataservice.WithLatency(cfg.DataSource.SimulatedLatency),
			dataservice.WithPersistedBookings(cfg.Booking.PersistAppointments),
			dataservice.WithLogger(logger.Component(log, "memory")),
		), nil, nil
	}
}
