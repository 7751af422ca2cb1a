package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	DataSource DataSourceConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Booking    BookingConfig
	Dashboard  DashboardConfig
	Log        LogConfig
	Tracing    TracingConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// Data source kinds backing the data service.
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
	SourceRemote   = "remote"
)

type DataSourceConfig struct {
	Kind             string
	RemoteURL        string
	RemoteTimeout    time.Duration
	SimulatedLatency time.Duration
	// Consecutive remote failures before the circuit opens.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type BookingConfig struct {
	UnavailableDays     []time.Weekday
	EnforceDoctorDays   bool
	Timezone            string
	SessionTTL          time.Duration
	PersistAppointments bool
}

// Location resolves the booking timezone, falling back to the process local zone.
func (b BookingConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type DashboardConfig struct {
	StrictTransitions bool
	RecentActivity    int
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	Enabled bool

	// Per client IP
	RequestsPerSecond float64
	BurstSize         int
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "carebook"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "carebook"),
			User:            getEnv("DB_USER", "carebook"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		DataSource: DataSourceConfig{
			Kind:             strings.ToLower(getEnv("DATA_SOURCE", SourceMemory)),
			RemoteURL:        getEnv("DATA_REMOTE_URL", ""),
			RemoteTimeout:    getEnvDuration("DATA_REMOTE_TIMEOUT", 10*time.Second),
			SimulatedLatency: getEnvDuration("DATA_SIMULATED_LATENCY", 300*time.Millisecond),
			BreakerFailures:  uint32(getEnvInt("DATA_BREAKER_FAILURES", 5)),
			BreakerCooldown:  getEnvDuration("DATA_BREAKER_COOLDOWN", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "carebook.appointments"),
		},
		Booking: BookingConfig{
			UnavailableDays:     getEnvWeekdays("BOOKING_UNAVAILABLE_DAYS", []time.Weekday{time.Sunday}),
			EnforceDoctorDays:   getEnvBool("BOOKING_ENFORCE_DOCTOR_DAYS", false),
			Timezone:            getEnv("BOOKING_TIMEZONE", ""),
			SessionTTL:          getEnvDuration("BOOKING_SESSION_TTL", 30*time.Minute),
			PersistAppointments: getEnvBool("BOOKING_PERSIST", false),
		},
		Dashboard: DashboardConfig{
			StrictTransitions: getEnvBool("DASHBOARD_STRICT_TRANSITIONS", false),
			RecentActivity:    getEnvInt("DASHBOARD_RECENT_ACTIVITY", 5),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "carebook"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "otel-collector:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Request-ID", "X-Booking-Session"}),
			MaxAge:         getEnvDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 50),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST", 100),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	switch cfg.DataSource.Kind {
	case SourceMemory:
	case SourcePostgres:
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	case SourceRemote:
		if cfg.DataSource.RemoteURL == "" {
			errs = append(errs, "DATA_REMOTE_URL is required when DATA_SOURCE=remote")
		}
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE must be one of memory, postgres, remote (got %q)", cfg.DataSource.Kind))
	}

	if cfg.DataSource.SimulatedLatency < 0 {
		errs = append(errs, "DATA_SIMULATED_LATENCY cannot be negative")
	}
	if len(cfg.Booking.UnavailableDays) == 7 {
		errs = append(errs, "BOOKING_UNAVAILABLE_DAYS cannot exclude every day of the week")
	}
	if cfg.Booking.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Booking.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("BOOKING_TIMEZONE %q is not a known location", cfg.Booking.Timezone))
		}
	}
	if cfg.Dashboard.RecentActivity <= 0 {
		errs = append(errs, "DASHBOARD_RECENT_ACTIVITY must be positive")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.BurstSize <= 0) {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// getEnvWeekdays parses a comma separated list of weekday names ("sunday", "sat").
// An explicitly empty value means no weekday is excluded.
func getEnvWeekdays(key string, fallback []time.Weekday) []time.Weekday {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if strings.TrimSpace(v) == "" {
		return []time.Weekday{}
	}
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, p := range strings.Split(v, ",") {
		d, ok := ParseWeekday(p)
		if !ok {
			return fallback
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days
}

// ParseWeekday accepts full or three-letter English weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}
