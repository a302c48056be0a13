package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/DevishMittal/eljay-console/internal/model"
)

const (
	defaultPollInterval  = 60 * time.Second
	defaultSignalTimeout = 10 * time.Second
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	ServerPort string `mapstructure:"server_port"`

	// OpenTelemetry settings
	OTLPEndpoint string `mapstructure:"otel_exporter_otlp_endpoint"`
	ServiceName  string `mapstructure:"otel_service_name"`
	Environment  string `mapstructure:"environment"`

	// Clinic API used by the signal collaborators
	ClinicAPIBaseURL string `mapstructure:"clinic_api_base_url"`
	ClinicAPIToken   string `mapstructure:"clinic_api_token"`
	Timezone         string `mapstructure:"clinic_timezone"`

	// Notification polling
	PollInterval  time.Duration `mapstructure:"-"`
	SignalTimeout time.Duration `mapstructure:"-"`

	// SignalPaths maps a notification type to its REST path, relative to
	// ClinicAPIBaseURL. An empty path disables the REST source.
	SignalPaths map[model.NotificationType]string `mapstructure:"-"`
}

// signalPathKey returns the viper key, and env var once upper-cased, for
// a signal's REST path.
func signalPathKey(t model.NotificationType) string {
	return "signal_" + string(t) + "_path"
}

var defaultSignalPaths = map[model.NotificationType]string{
	model.NotificationPendingTasks:           "",
	model.NotificationLowStock:               "inventory/low-stock",
	model.NotificationOverduePayment:         "billing/invoices/overdue",
	model.NotificationTodaysAppointments:     "appointments/today",
	model.NotificationExpiredItems:           "inventory/expiring",
	model.NotificationNewPatientRegistration: "patients/recent",
}

// Load returns configuration from environment variables, optionally
// layered over the YAML file named by CONFIG_FILE, with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Set defaults so every key is known to AutomaticEnv.
	v.SetDefault("server_port", "8080")
	v.SetDefault("otel_exporter_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_service_name", "eljay-console")
	v.SetDefault("environment", "development")
	v.SetDefault("clinic_api_base_url", "")
	v.SetDefault("clinic_api_token", "")
	v.SetDefault("clinic_timezone", "Local")
	v.SetDefault("notification_poll_interval", defaultPollInterval.String())
	v.SetDefault("signal_timeout", defaultSignalTimeout.String())
	for _, t := range model.NotificationTypes {
		v.SetDefault(signalPathKey(t), defaultSignalPaths[t])
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.PollInterval = parseDuration(v.GetString("notification_poll_interval"), defaultPollInterval)
	cfg.SignalTimeout = parseDuration(v.GetString("signal_timeout"), defaultSignalTimeout)

	cfg.SignalPaths = make(map[model.NotificationType]string, len(model.NotificationTypes))
	for _, t := range model.NotificationTypes {
		cfg.SignalPaths[t] = strings.TrimSpace(v.GetString(signalPathKey(t)))
	}

	return cfg, nil
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// parseDuration accepts a Go duration or a whole number of seconds.
// Anything else, or a non-positive value, yields def.
func parseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return def
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
