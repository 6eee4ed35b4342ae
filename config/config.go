package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	HTTP          HTTPConfig          `yaml:"http"`
	Sheets        SheetsConfig        `yaml:"sheets"`
	Storage       StorageConfig       `yaml:"storage"`
	Email         EmailConfig         `yaml:"email"`
	Queue         QueueConfig         `yaml:"queue"`
	Analytics     AnalyticsConfig     `yaml:"analytics"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr                 string   `yaml:"addr"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
	CheckinRatePerSecond float64  `yaml:"checkin_rate_per_second"`
	CheckinBurst         int      `yaml:"checkin_burst"`
}

// SheetsConfig holds Google Sheets configuration.
type SheetsConfig struct {
	Driver string `yaml:"driver"` // google|memory
	// CredentialsFile is a service account JSON file. Empty falls back to
	// application default credentials.
	CredentialsFile string `yaml:"credentials_file"`
	// IdentityColumn is the roster column holding the person's email.
	IdentityColumn string `yaml:"identity_column"`
	CheckinMarker  string `yaml:"checkin_marker"`
}

// StorageConfig holds object storage configuration for event cover images.
type StorageConfig struct {
	Driver            string `yaml:"driver"` // gcs|memory
	Bucket            string `yaml:"bucket"`
	CredentialsFile   string `yaml:"credentials_file"`
	EnvironmentPrefix string `yaml:"environment_prefix"`
	PublicBaseURL     string `yaml:"public_base_url"`
}

// EmailConfig holds outbound email configuration.
type EmailConfig struct {
	Driver         string `yaml:"driver"` // sendgrid|console
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromName       string `yaml:"from_name"`
	FromAddress    string `yaml:"from_address"`
}

// QueueConfig holds River background job configuration.
type QueueConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxWorkers int  `yaml:"max_workers"`
}

// AnalyticsConfig holds the rush attendance threshold rule.
type AnalyticsConfig struct {
	MandatoryEvents []string `yaml:"mandatory_events"`
	RemainingEvents []string `yaml:"remaining_events"`
	// RemainingMin is nil when unset; zero is a valid rule.
	RemainingMin    *int     `yaml:"remaining_min"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name"`
	Environment    string `yaml:"environment"`
	MetricsAddress string `yaml:"metrics_address"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CHECKIN_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CHECKIN_RATE_PER_SECOND value: %w", err)
		}
		cfg.HTTP.CheckinRatePerSecond = f
	}
	if v := os.Getenv("CHECKIN_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CHECKIN_BURST value: %w", err)
		}
		cfg.HTTP.CheckinBurst = n
	}
	if v := os.Getenv("SHEETS_DRIVER"); v != "" {
		cfg.Sheets.Driver = v
	}
	if v := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE"); v != "" {
		cfg.Sheets.CredentialsFile = v
	}
	if v := os.Getenv("SHEETS_IDENTITY_COLUMN"); v != "" {
		cfg.Sheets.IdentityColumn = v
	}
	if v := os.Getenv("SHEETS_CHECKIN_MARKER"); v != "" {
		cfg.Sheets.CheckinMarker = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_CREDENTIALS_FILE"); v != "" {
		cfg.Storage.CredentialsFile = v
	}
	if v := os.Getenv("STORAGE_ENVIRONMENT_PREFIX"); v != "" {
		cfg.Storage.EnvironmentPrefix = v
	}
	if v := os.Getenv("STORAGE_PUBLIC_BASE_URL"); v != "" {
		cfg.Storage.PublicBaseURL = v
	}
	if v := os.Getenv("EMAIL_DRIVER"); v != "" {
		cfg.Email.Driver = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.Email.SendGridAPIKey = v
	}
	if v := os.Getenv("EMAIL_FROM_NAME"); v != "" {
		cfg.Email.FromName = v
	}
	if v := os.Getenv("EMAIL_FROM_ADDRESS"); v != "" {
		cfg.Email.FromAddress = v
	}
	if v := os.Getenv("QUEUE_ENABLED"); v != "" {
		cfg.Queue.Enabled = v == "true"
	}
	if v := os.Getenv("QUEUE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_MAX_WORKERS value: %w", err)
		}
		cfg.Queue.MaxWorkers = n
	}
	if v := os.Getenv("RUSH_MANDATORY_EVENTS"); v != "" {
		cfg.Analytics.MandatoryEvents = splitList(v)
	}
	if v := os.Getenv("RUSH_REMAINING_EVENTS"); v != "" {
		cfg.Analytics.RemainingEvents = splitList(v)
	}
	if v := os.Getenv("RUSH_REMAINING_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RUSH_REMAINING_MIN value: %w", err)
		}
		cfg.Analytics.RemainingMin = &n
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "clubhouse"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.CheckinRatePerSecond == 0 {
		c.HTTP.CheckinRatePerSecond = 5
	}
	if c.HTTP.CheckinBurst == 0 {
		c.HTTP.CheckinBurst = 10
	}
	if c.Sheets.Driver == "" {
		c.Sheets.Driver = "memory"
	}
	if c.Sheets.IdentityColumn == "" {
		c.Sheets.IdentityColumn = "A"
	}
	if c.Sheets.CheckinMarker == "" {
		c.Sheets.CheckinMarker = "x"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.EnvironmentPrefix == "" {
		c.Storage.EnvironmentPrefix = c.Observability.Environment
	}
	if c.Email.Driver == "" {
		c.Email.Driver = "console"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Clubhouse"
	}
	if c.Email.FromAddress == "" {
		c.Email.FromAddress = "noreply@localhost"
	}
	if c.Queue.MaxWorkers == 0 {
		c.Queue.MaxWorkers = 10
	}
	if len(c.Analytics.MandatoryEvents) == 0 {
		c.Analytics.MandatoryEvents = []string{"Info Session 1", "Info Session 2"}
	}
	if len(c.Analytics.RemainingEvents) == 0 {
		c.Analytics.RemainingEvents = []string{"Professional Panel", "Resume Night", "Social Event"}
	}
	if c.Analytics.RemainingMin == nil {
		n := 2
		c.Analytics.RemainingMin = &n
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
