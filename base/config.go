package base

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// JenaConfig locates the triplestore dataset.
type JenaConfig struct {
	Protocol string
	Host     string
	Port     int
	Dataset  string
	User     string
	Password string
	Timeout  time.Duration
}

// Endpoint returns the dataset base URL, e.g. http://localhost:3030/knowledge.
func (c JenaConfig) Endpoint() string {
	return fmt.Sprintf("%s://%s:%d/%s", c.Protocol, c.Host, c.Port, strings.Trim(c.Dataset, "/"))
}

// DigestEnabled reports whether both digest credentials are present.
func (c JenaConfig) DigestEnabled() bool {
	return c.User != "" && c.Password != ""
}

// AuthConfig holds the token validation settings.
type AuthConfig struct {
	Header       string
	JWKSURL      string
	PublicKeyURL string
	Algorithms   []string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level          string
	Format         string
	FilePath       string
	FileMaxSizeMB  int
	FileMaxFiles   int
	FileMaxAgeDays int
}

// Config is the process configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Port                string
	Debug               bool
	RootPath            string
	OpenAPIPath         string
	BackendURL          string
	AllowedOrigins      []string
	OntologyFiles       []string
	HealthCheckSchedule string
	BootstrapServers    string
	OTLPEndpoint        string
	Jena                JenaConfig
	Auth                AuthConfig
	Log                 LogConfig
}

// LoadDotEnv loads variables from a .env file when one exists.
// Variables already present in the environment win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, filename := range filenames {
		if err := godotenv.Load(filename); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed loading %s: %w", filename, err)
		}
		slog.Debug("loaded environment file", "file", filename)
	}
	return nil
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() Config {
	port := EnvVar("PORT", "4001")
	cfg := Config{
		Port:                port,
		Debug:               EnvVarAsBool("DEBUG", false),
		RootPath:            strings.TrimSuffix(EnvVar("API_ROOT_PATH", ""), "/"),
		OpenAPIPath:         EnvVar("API_OPENAPI_PATH", "/openapi.json"),
		BackendURL:          EnvVar("BACKEND_URL", "http://localhost:"+port),
		AllowedOrigins:      EnvVarAsStringSlice("ALLOWED_ORIGINS"),
		OntologyFiles:       EnvVarAsStringSlice("ONTOLOGY_FILES"),
		HealthCheckSchedule: EnvVar("HEALTH_CHECK_SCHEDULE", "@every 30s"),
		BootstrapServers:    EnvVar("BOOTSTRAP_SERVERS", "localhost:9092"),
		OTLPEndpoint:        EnvVar("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Jena: JenaConfig{
			Protocol: EnvVar("JENA_PROTOCOL", "http"),
			Host:     EnvVarFirst("localhost", "JENA_HOST", "JENA_URL"),
			Port:     EnvVarAsInt("JENA_PORT", 3030),
			Dataset:  EnvVar("JENA_DATASET", "knowledge"),
			User:     EnvVar("JENA_USER", ""),
			Password: EnvVarFirst("", "JENA_PASSWORD", "JENA_PWD"),
			Timeout:  EnvVarAsDuration("JENA_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			Header:       EnvVar("JWT_HEADER", ""),
			JWKSURL:      EnvVarFirst("", "JWKS_URL", "JWK_URL"),
			PublicKeyURL: EnvVar("PUBLIC_KEY_URL", ""),
			Algorithms:   EnvVarAsStringSlice("JWT_ALGORITHMS"),
		},
		Log: LogConfig{
			Level:          EnvVar("API_LOG_LEVEL", "INFO"),
			Format:         EnvVar("API_LOG_FORMAT", "json"),
			FilePath:       EnvVar("API_LOG_FILE_PATH", ""),
			FileMaxSizeMB:  EnvVarAsInt("API_LOG_FILE_MAX_SIZE_MB", 100),
			FileMaxFiles:   EnvVarAsInt("API_LOG_FILE_MAX_FILES", 5),
			FileMaxAgeDays: EnvVarAsInt("API_LOG_FILE_MAX_AGE_DAYS", 30),
		},
	}
	if len(cfg.OntologyFiles) == 0 {
		cfg.OntologyFiles = []string{"ont/ies4.ttl", "ont/iesExtensions.ttl"}
	}
	if cfg.Debug {
		cfg.Log.Level = "DEBUG"
	}
	return cfg
}
