package common

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Ingest     IngestConfig
	Export     ExportConfig
	Filter     FilterConfig
	Server     ServerConfig
	Resilience ResilienceConfig
	Log        LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// IngestConfig holds batch cleaning configuration
type IngestConfig struct {
	RawDir       string
	CleanDir     string
	ManifestPath string
	DedupScope   string
	Workers      int
	QueueWorkers int
	QueueSize    int
	JobTimeout   time.Duration
}

// ExportConfig holds export sink configuration
type ExportConfig struct {
	TableDir    string
	ReportDir   string
	TableFormat string
}

// FilterConfig holds filter boundary handling
type FilterConfig struct {
	BoundPolicy string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string
	MetricsAddr string
}

// ResilienceConfig holds repository retry settings
type ResilienceConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:              databaseURL(),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Ingest: IngestConfig{
			RawDir:       getEnv("RAW_DIR", "data/raw"),
			CleanDir:     getEnv("CLEAN_DIR", "data/clean"),
			ManifestPath: getEnv("SOURCE_MANIFEST", ""),
			DedupScope:   getEnv("DEDUP_SCOPE", "per_file"),
			Workers:      getEnvAsInt("INGEST_WORKERS", 4),
			QueueWorkers: getEnvAsInt("INGEST_QUEUE_WORKERS", 2),
			QueueSize:    getEnvAsInt("INGEST_QUEUE_SIZE", 64),
			JobTimeout:   getEnvAsDuration("INGEST_JOB_TIMEOUT", 10*time.Minute),
		},
		Export: ExportConfig{
			TableDir:    getEnv("EXPORT_TABLE_DIR", "exports/tables"),
			ReportDir:   getEnv("EXPORT_REPORT_DIR", "exports/reports"),
			TableFormat: strings.ToLower(getEnv("EXPORT_TABLE_FORMAT", "csv")),
		},
		Filter: FilterConfig{
			BoundPolicy: strings.ToLower(getEnv("FILTER_BOUND_POLICY", "open")),
		},
		Server: ServerConfig{
			GRPCAddr:    getEnv("GRPC_ADDR", ":8080"),
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		},
		Resilience: ResilienceConfig{
			MaxRetries:     getEnvAsInt("REPO_MAX_RETRIES", 2),
			InitialBackoff: getEnvAsDuration("REPO_INITIAL_BACKOFF", 100*time.Millisecond),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// databaseURL prefers DB_URL and otherwise assembles a Postgres URL from the
// DB_USER / DB_PASSWORD / DB_HOST / DB_NAME parts.
func databaseURL() string {
	if dsn := getEnv("DB_URL", ""); dsn != "" {
		return dsn
	}
	host := getEnv("DB_HOST", "")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     host,
		Path:     "/" + getEnv("DB_NAME", "invoices"),
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	if user := getEnv("DB_USER", ""); user != "" {
		if pass := os.Getenv("DB_PASSWORD"); pass != "" {
			u.User = url.UserPassword(user, pass)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			problems = append(problems, "DB_URL (or DB_HOST) is required for the postgres driver")
		}
	case "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER %q: must be postgres or sqlite", c.Database.Driver))
	}

	if c.Ingest.Workers < 1 {
		problems = append(problems, fmt.Sprintf("invalid INGEST_WORKERS %d: must be at least 1", c.Ingest.Workers))
	}
	if c.Ingest.QueueWorkers < 0 || c.Ingest.QueueSize < 0 {
		problems = append(problems, "INGEST_QUEUE_WORKERS and INGEST_QUEUE_SIZE must not be negative")
	}
	switch strings.ToLower(c.Ingest.DedupScope) {
	case "per_file", "global":
	default:
		problems = append(problems, fmt.Sprintf("invalid DEDUP_SCOPE %q: must be per_file or global", c.Ingest.DedupScope))
	}

	switch c.Export.TableFormat {
	case "csv", "xlsx":
	default:
		problems = append(problems, fmt.Sprintf("invalid EXPORT_TABLE_FORMAT %q: must be csv or xlsx", c.Export.TableFormat))
	}
	if c.Export.TableDir == "" || c.Export.ReportDir == "" {
		problems = append(problems, "EXPORT_TABLE_DIR and EXPORT_REPORT_DIR are required")
	}

	switch c.Filter.BoundPolicy {
	case "open", "required":
	default:
		problems = append(problems, fmt.Sprintf("invalid FILTER_BOUND_POLICY %q: must be open or required", c.Filter.BoundPolicy))
	}

	if c.Server.GRPCAddr == "" {
		problems = append(problems, "GRPC_ADDR is required")
	}
	if c.Resilience.MaxRetries < 0 {
		problems = append(problems, "REPO_MAX_RETRIES must not be negative")
	}

	if len(problems) > 0 {
		return NewAppError("CONFIG_ERROR", strings.Join(problems, "; "), ErrInvalidInput)
	}
	return nil
}
