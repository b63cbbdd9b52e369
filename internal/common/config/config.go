// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig            `mapstructure:"app"`
	Dispatch      DispatchConfig       `mapstructure:"dispatch"`
	Server        ServerConfig         `mapstructure:"server"`
	Bots          map[string]BotConfig `mapstructure:"bots"`
	Redis         RedisConfig          `mapstructure:"redis"`
	Notifications NotificationConfig   `mapstructure:"notifications"`
	Logging       LoggingConfig        `mapstructure:"logging"`
	ManifestPath  string               `mapstructure:"manifest_path"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DispatchConfig holds settings for the parallel dispatch core.
type DispatchConfig struct {
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	QueueSize      int    `mapstructure:"queue_size"`
	ArtifactDir    string `mapstructure:"artifact_dir"`
	AuditLogPath   string `mapstructure:"audit_log_path"`
}

// ServerConfig holds settings for the inbound webhook/API listener and the
// ops (metrics/pprof) listener.
type ServerConfig struct {
	BindAddress string `mapstructure:"bind_address"`
	Port        int    `mapstructure:"port"`
	WebhookPath string `mapstructure:"webhook_path"`
	OpsPort     int    `mapstructure:"ops_port"`
}

// ListenAddr returns the webhook/API listen address.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// OpsAddr returns the metrics/pprof listen address.
func (s ServerConfig) OpsAddr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.OpsPort)
}

// BotConfig holds the core settings applicable to every bot adapter.
type BotConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BaseURL     string `mapstructure:"base_url"`
	Timeout     int    `mapstructure:"timeout"`     // milliseconds
	MaxRetries  int    `mapstructure:"max_retries"` // per-step submit retries
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NotificationConfig holds settings for the outbound notification sinks.
// Every sink is optional; an unconfigured sink degrades to a no-op.
type NotificationConfig struct {
	Dashboard struct {
		URLs    []string `mapstructure:"urls"`
		Timeout int      `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"dashboard"`

	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		Provider  string   `mapstructure:"provider"` // "ses" or "smtp"
		FromEmail string   `mapstructure:"from_email"`
		Alerts    []string `mapstructure:"alerts"` // recipient addresses
	} `mapstructure:"email"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`

	SMS struct {
		Enabled      bool     `mapstructure:"enabled"`
		PhoneNumbers []string `mapstructure:"phone_numbers"`
	} `mapstructure:"sms"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
