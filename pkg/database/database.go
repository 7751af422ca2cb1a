package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Schemas lists the logical namespaces the models live in.
var Schemas = []string{"clinical", "audit"}

// Models lists every table managed by Migrate, parents first.
func Models() []any {
	return []any{
		&doctor.Specialty{},
		&doctor.Doctor{},
		&appointment.Appointment{},
		&patient.Patient{},
		&domain.AuditLog{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	for _, schema := range Schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

type index struct {
	name  string
	query string
}

var indexes = []index{
	// Dashboard reads: one doctor's appointments, optionally for one day.
	{
		name:  "idx_appointments_doctor_date",
		query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date ON clinical.appointments (doctor_id, date, status)`,
	},
	// Doctor filter on patients uses jsonb containment.
	{
		name:  "idx_patients_appointments",
		query: `CREATE INDEX IF NOT EXISTS idx_patients_appointments ON clinical.patients USING gin (appointments jsonb_path_ops)`,
	},
	{
		name:  "idx_audit_logs_resource",
		query: `CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit.logs (resource_type, resource_id, occurred_at)`,
	},
}

// createIndexes is best-effort; a missing index only costs query speed.
func createIndexes(db *gorm.DB, log *zap.Logger) error {
	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			log.Warn("index creation failed", zap.String("index", idx.name), zap.Error(err))
		}
	}
	return nil
}
