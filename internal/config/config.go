package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Device   DeviceConfig   `yaml:"device"`
	API      APIConfig      `yaml:"api"`
	JWT      JWTConfig      `yaml:"jwt"`
	NATS     NATSConfig     `yaml:"nats"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// DeviceConfig represents the Spotter device configuration
type DeviceConfig struct {
	DeviceID         string        `yaml:"device_id"`
	TransmissionMode string        `yaml:"transmission_mode"` // satellite | cellular | hybrid | local
	SampleInterval   time.Duration `yaml:"sample_interval"`
	TransmitInterval time.Duration `yaml:"transmit_interval"`
	MaxQueueSize     int           `yaml:"max_queue_size"`
	Sensors          SensorsConfig `yaml:"sensors"`
}

// SensorsConfig enables sensors and overrides their valid ranges.
type SensorsConfig struct {
	Temperature SensorConfig `yaml:"temperature"`
	Pressure    SensorConfig `yaml:"pressure"`
	Salinity    SensorConfig `yaml:"salinity"`
	Current     SensorConfig `yaml:"current"`
	Turbidity   SensorConfig `yaml:"turbidity"`
}

// SensorConfig represents one sensor entry. Min and Max fall back to the
// sensor's default range when absent.
type SensorConfig struct {
	ID       string   `yaml:"id"`
	Disabled bool     `yaml:"disabled"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
}

// APIConfig represents REST API configuration
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Management API credentials; PasswordHash is a bcrypt hash.
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	Secret          string        `yaml:"secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// NATSConfig represents NATS configuration. An empty URL disables the
// integration forwarder.
type NATSConfig struct {
	URL               string        `yaml:"url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	SubjectPrefix     string        `yaml:"subject_prefix"`
	MaxReconnects     int           `yaml:"max_reconnects"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

// DatabaseConfig represents the readings archive database. An empty DSN
// disables archiving.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if deviceID := os.Getenv("SPOTTER_DEVICE_ID"); deviceID != "" {
		c.Device.DeviceID = deviceID
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		c.NATS.URL = natsURL
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		c.JWT.Secret = jwtSecret
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Log.Level = logLevel
	}
}

// setDefaults fills in defaults for absent values
func (c *Config) setDefaults() {
	if c.Device.TransmissionMode == "" {
		c.Device.TransmissionMode = "hybrid"
	}
	if c.Device.SampleInterval == 0 {
		c.Device.SampleInterval = 60 * time.Second
	}
	if c.Device.TransmitInterval == 0 {
		c.Device.TransmitInterval = time.Hour
	}
	if c.Device.MaxQueueSize == 0 {
		c.Device.MaxQueueSize = 1000
	}

	if c.API.Host == "" {
		c.API.Host = "0.0.0.0"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}

	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTokenTTL == 0 {
		c.JWT.RefreshTokenTTL = 24 * time.Hour
	}

	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "spotter"
	}
	if c.NATS.MaxReconnects == 0 {
		c.NATS.MaxReconnects = 10
	}
	if c.NATS.ReconnectInterval == 0 {
		c.NATS.ReconnectInterval = 5 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// validate checks required fields and cross-field consistency
func (c *Config) validate() error {
	if c.Device.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	switch c.Device.TransmissionMode {
	case "satellite", "cellular", "hybrid", "local":
	default:
		return fmt.Errorf("invalid transmission mode: %s", c.Device.TransmissionMode)
	}

	if c.Device.MaxQueueSize < 1 {
		return fmt.Errorf("max_queue_size must be positive")
	}

	if c.JWT.Secret == "" && c.API.Username != "" {
		return fmt.Errorf("jwt secret is required when API credentials are set")
	}

	return nil
}
