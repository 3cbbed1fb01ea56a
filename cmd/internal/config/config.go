package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultProfessionalNetworkTTLDays = 60
	DefaultHTTPClientTimeout          = 30 * time.Second
)

// Config is built once at startup and handed to every constructor.
// Connectors never read the environment themselves.
type Config struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error off"`

	Database  Database
	SEC       SEC
	ZoomInfo  ZoomInfo
	Proxycurl Proxycurl
	Archive   Archive
	Retention Retention

	HTTPClientTimeout time.Duration `validate:"gt=0"`

	// APIAuthSecret enables HS256 bearer authentication on /api routes when set.
	APIAuthSecret string
}

type Database struct {
	Driver   string `validate:"oneof=sqlite postgres memory"`
	Path     string `validate:"required_if=Driver sqlite"`
	Host     string `validate:"required_if=Driver postgres"`
	Port     string `validate:"omitempty,numeric"`
	User     string `validate:"required_if=Driver postgres"`
	Password string
	Name     string `validate:"required_if=Driver postgres"`
	SSLMode  string
}

type SEC struct {
	Enabled  bool
	APIKey   string `validate:"required_if=Enabled true"`
	BaseURL  string `validate:"required,url"`
	FormType string `validate:"required"`
}

type ZoomInfo struct {
	Enabled  bool
	Username string `validate:"required_if=Enabled true"`
	Password string `validate:"required_if=Enabled true"`
	BaseURL  string `validate:"required,url"`
}

type Proxycurl struct {
	Enabled bool
	APIKey  string `validate:"required_if=Enabled true"`
	BaseURL string `validate:"required,url"`
	TTLDays int    `validate:"gt=0"`
}

type Archive struct {
	Bucket string
	Region string `validate:"required_with=Bucket"`
}

type Retention struct {
	// Days is the age after which cached rows are swept. Zero disables the sweep.
	Days          int           `validate:"gte=0"`
	SweepInterval time.Duration `validate:"gt=0"`
}

// Load reads the process environment into a Config and validates it.
// Any missing credential for an enabled provider is reported here so the
// process refuses to start instead of failing on the first request.
func Load(validate *validator.Validate) (*Config, error) {
	var errs []error
	cfg := &Config{
		Port:     GetEnv("PORT", "7070"),
		LogLevel: strings.ToLower(GetEnv("LOG_LEVEL", "info")),
		Database: Database{
			Driver:   strings.ToLower(GetEnv("DB_DRIVER", "sqlite")),
			Path:     GetEnv("DB_PATH", "database.db"),
			Host:     GetEnv("DB_HOST", ""),
			Port:     GetEnv("DB_PORT", "5432"),
			User:     GetEnv("DB_USER", ""),
			Password: GetEnv("DB_PASS", ""),
			Name:     GetEnv("DB_NAME", ""),
			SSLMode:  GetEnv("DB_SSL_MODE", "disable"),
		},
		SEC: SEC{
			Enabled:  getBool("ENABLE_SEC_API_CALLS", true, &errs),
			APIKey:   GetEnv("SEC_API_KEY", ""),
			BaseURL:  GetEnv("SEC_API_BASE_URL", "https://api.sec-api.io"),
			FormType: GetEnv("SEC_FORM_TYPE", "10-K"),
		},
		ZoomInfo: ZoomInfo{
			Enabled:  getBool("ENABLE_ZOOMINFO_API_CALLS", true, &errs),
			Username: GetEnv("ZOOMINFO_USERNAME", ""),
			Password: GetEnv("ZOOMINFO_PASSWORD", ""),
			BaseURL:  GetEnv("ZOOMINFO_BASE_URL", "https://api.zoominfo.com"),
		},
		Proxycurl: Proxycurl{
			Enabled: getBool("ENABLE_NUBELA_API_CALLS", false, &errs),
			APIKey:  GetEnv("PROXYCURL_API_KEY", ""),
			BaseURL: GetEnv("PROXYCURL_BASE_URL", "https://nubela.co"),
			TTLDays: getInt("NUBELA_ENRICHMENT_DATA_TIMELIMIT", DefaultProfessionalNetworkTTLDays, &errs),
		},
		Archive: Archive{
			Bucket: GetEnv("FILING_ARCHIVE_BUCKET", ""),
			Region: GetEnv("AWS_S3_REGION", ""),
		},
		Retention: Retention{
			Days:          getInt("CACHE_RETENTION_DAYS", 0, &errs),
			SweepInterval: getDuration("CACHE_SWEEP_INTERVAL", time.Hour, &errs),
		},
		HTTPClientTimeout: getDuration("HTTP_CLIENT_TIMEOUT", DefaultHTTPClientTimeout, &errs),
		APIAuthSecret:     GetEnv("API_AUTH_SECRET", ""),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}
	return cfg, nil
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getBool(key string, fallback bool, errs *[]error) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	val, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a boolean, got %q", key, raw))
		return fallback
	}
	return val
}

func getInt(key string, fallback int, errs *[]error) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, raw))
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	val, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration, got %q", key, raw))
		return fallback
	}
	return val
}

func describe(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	problems := make([]error, 0, len(ve))
	for _, fe := range ve {
		problems = append(problems, fmt.Errorf("config %s failed on '%s' (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return errors.Join(problems...)
}
