package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	NodeID      int64

	Observability ObservabilityConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Storage StorageConfig
	Redis   RedisConfig
	Events  EventsConfig
	Invoice InvoiceConfig
}

// StorageConfig selects and configures the object store holding rendered documents.
type StorageConfig struct {
	Driver    string
	KeyPrefix string

	S3Region          string
	S3Bucket          string
	S3PublicBaseURL   string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool

	LocalDir       string
	LocalURLPrefix string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type EventsConfig struct {
	Enabled bool
	Channel string
	Workers int
}

// ObservabilityConfig carries logging and OpenTelemetry settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string

	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64
}

type InvoiceConfig struct {
	ListConcurrency   int
	ListTimeout       time.Duration
	DedupeTTL         time.Duration
	DocumentConfigDir string
}

const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	redisAddr := strings.TrimSpace(getenv("REDIS_ADDR", ""))

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "invoicer"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		NodeID:      getenvInt64("NODE_ID", 1),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "medusa"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Observability: ObservabilityConfig{
			LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:         strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:       getenvBool("OTEL_ENABLED", true),
			OtelEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OtelProtocol:      otlpProtocol(),
			OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Storage: StorageConfig{
			Driver:            strings.ToLower(getenv("STORAGE_DRIVER", StorageDriverS3)),
			KeyPrefix:         strings.Trim(getenv("INVOICE_KEY_PREFIX", ""), "/"),
			S3Region:          getenv("AWS_REGION", ""),
			S3Bucket:          getenv("AWS_S3_BUCKET", ""),
			S3PublicBaseURL:   strings.TrimRight(getenv("S3_PUBLIC_BASE_URL", ""), "/"),
			S3Endpoint:        strings.TrimSpace(getenv("S3_ENDPOINT", "")),
			S3AccessKeyID:     strings.TrimSpace(getenv("AWS_ACCESS_KEY_ID", "")),
			S3SecretAccessKey: strings.TrimSpace(getenv("AWS_SECRET_ACCESS_KEY", "")),
			S3UsePathStyle:    getenvBool("S3_USE_PATH_STYLE", false),
			LocalDir:          getenv("LOCAL_UPLOAD_DIR", "./storage/invoices"),
			LocalURLPrefix:    getenv("LOCAL_UPLOAD_URL_PREFIX", "http://localhost:8080/invoices"),
		},
		Redis: RedisConfig{
			Enabled:  getenvBool("REDIS_ENABLED", redisAddr != ""),
			Addr:     redisAddr,
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Events: EventsConfig{
			Enabled: getenvBool("EVENTS_ENABLED", true),
			Channel: getenv("EVENTS_CHANNEL", "payment.captured"),
			Workers: getenvInt("EVENTS_WORKERS", 4),
		},
		Invoice: InvoiceConfig{
			ListConcurrency:   getenvInt("INVOICE_LIST_CONCURRENCY", 8),
			ListTimeout:       getenvDuration("INVOICE_LIST_TIMEOUT", 30*time.Second),
			DedupeTTL:         getenvDuration("INVOICE_DEDUPE_TTL", 24*time.Hour),
			DocumentConfigDir: getenv("INVOICE_DOCUMENT_CONFIG_DIR", "/etc/invoicer"),
		},
	}

	return cfg
}

// IsProduction reports whether the service runs in a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// otlpProtocol prefers the traces specific protocol over the generic one.
func otlpProtocol() string {
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); v != "" {
		return strings.ToLower(v)
	}
	return strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 || parsed > 1 {
		return def
	}
	return parsed
}
