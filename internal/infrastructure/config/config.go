package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for HomeDeck.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Database DatabaseConfig `yaml:"database"`
	Hubs     HubsConfig     `yaml:"hubs"`
	Poller   PollerConfig   `yaml:"poller"`
	Offline  OfflineConfig  `yaml:"offline"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// GatewayConfig contains HTTP API server settings.
type GatewayConfig struct {
	Host     string               `yaml:"host"`
	Port     int                  `yaml:"port"`
	Timeouts GatewayTimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig           `yaml:"cors"`
}

// GatewayTimeoutConfig contains HTTP timeout settings in seconds.
type GatewayTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// HubsConfig contains settings for outbound hub connections.
type HubsConfig struct {
	// LocalURL is the base URL of the always-present local hub.
	LocalURL string `yaml:"local_url"`

	// LocalName is the display name seeded for the local hub.
	LocalName string `yaml:"local_name"`

	// RequestTimeout is the per-call timeout for hub REST requests,
	// in seconds. Applies to every outbound call; there are no
	// untimed requests.
	RequestTimeout int `yaml:"request_timeout"`

	// ScanGraceSeconds is how long a device scan is given before the
	// directory re-fetches. The hub offers no completion signal, so
	// this is a heuristic wait.
	ScanGraceSeconds int `yaml:"scan_grace_seconds"`
}

// PollerConfig contains status polling settings.
type PollerConfig struct {
	// Interval between poll cycles, in seconds.
	Interval int `yaml:"interval"`
}

// OfflineConfig contains offline cache settings.
type OfflineConfig struct {
	// TTL for cacheable API responses, in seconds.
	TTL int `yaml:"ttl"`

	// Generation names the current cache generation. Entries from
	// other generations are purged on activation.
	Generation string `yaml:"generation"`
}

// MQTTConfig contains MQTT broker connection settings for the
// optional device-state push channel.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for poll metrics.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt"`
	Password  string          `yaml:"password"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// SecretsKey encrypts stored credentials (Spotify tokens, Wi-Fi
	// passwords) at rest. Must be exactly 32 characters (AES-256).
	SecretsKey string `yaml:"secrets_key"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// RateLimitConfig contains API rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// Loading order:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern HOMEDECK_SECTION_KEY,
// for example HOMEDECK_DATABASE_PATH or HOMEDECK_JWT_SECRET.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: GatewayTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/homedeck.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Hubs: HubsConfig{
			LocalURL:         "http://127.0.0.1:8000",
			LocalName:        "Local Hub",
			RequestTimeout:   10,
			ScanGraceSeconds: 3,
		},
		Poller: PollerConfig{
			Interval: 30,
		},
		Offline: OfflineConfig{
			TTL:        30,
			Generation: "v1",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homedeck-gateway",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOMEDECK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HOMEDECK_GATEWAY_HOST"); v != "" {
		cfg.Gateway.Host = v
	}
	if v := os.Getenv("HOMEDECK_LOCAL_HUB_URL"); v != "" {
		cfg.Hubs.LocalURL = v
	}
	if v := os.Getenv("HOMEDECK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMEDECK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMEDECK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("HOMEDECK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("HOMEDECK_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("HOMEDECK_PASSWORD"); v != "" {
		cfg.Security.Password = v
	}
	if v := os.Getenv("HOMEDECK_SECRETS_KEY"); v != "" {
		cfg.Security.SecretsKey = v
	}
}

// minJWTSecretLength guards against trivially forgeable tokens.
const minJWTSecretLength = 32

// secretsKeyLength is required by AES-256.
const secretsKeyLength = 32

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		errs = append(errs, "gateway.port must be between 1 and 65535")
	}
	if c.Hubs.LocalURL == "" {
		errs = append(errs, "hubs.local_url is required")
	}
	if c.Hubs.RequestTimeout < 1 {
		errs = append(errs, "hubs.request_timeout must be at least 1 second")
	}
	if c.Poller.Interval < 1 {
		errs = append(errs, "poller.interval must be at least 1 second")
	}
	if c.Offline.TTL < 1 {
		errs = append(errs, "offline.ttl must be at least 1 second")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set HOMEDECK_JWT_SECRET)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}
	if c.Security.SecretsKey != "" && len(c.Security.SecretsKey) != secretsKeyLength {
		errs = append(errs, "security.secrets_key must be exactly 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetReadTimeout returns the gateway read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Gateway.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the gateway write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Gateway.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the gateway idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Gateway.Timeouts.Idle) * time.Second
}

// HubRequestTimeout returns the per-call hub request timeout.
func (c *Config) HubRequestTimeout() time.Duration {
	return time.Duration(c.Hubs.RequestTimeout) * time.Second
}

// ScanGrace returns the post-scan grace window.
func (c *Config) ScanGrace() time.Duration {
	return time.Duration(c.Hubs.ScanGraceSeconds) * time.Second
}

// PollInterval returns the poller interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poller.Interval) * time.Second
}

// OfflineTTL returns the API cache TTL as a Duration.
func (c *Config) OfflineTTL() time.Duration {
	return time.Duration(c.Offline.TTL) * time.Second
}
