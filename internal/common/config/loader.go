// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DASHBOARD_URLS or REDIS_ADDRESS
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills remaining gaps from well-known env variables.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Dispatch.ArtifactDir == "" {
		if val := os.Getenv("ARTIFACT_DIR"); val != "" {
			cfg.Dispatch.ArtifactDir = val
		}
	}
	if cfg.Logging.Level == "" {
		if val := os.Getenv("BOT_LOG_LEVEL"); val != "" {
			cfg.Logging.Level = strings.ToLower(val)
		}
	}
	if cfg.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Redis.Address = val
		}
	}
	if cfg.Notifications.SMTP.Username == "" {
		if val := os.Getenv("SMTP_USERNAME"); val != "" {
			cfg.Notifications.SMTP.Username = val
		}
	}
	if cfg.Notifications.SMTP.Password == "" {
		if val := os.Getenv("SMTP_PASSWORD"); val != "" {
			cfg.Notifications.SMTP.Password = val
		}
	}
	if len(cfg.Notifications.Dashboard.URLs) == 0 {
		if val := os.Getenv("DASHBOARD_URLS"); val != "" {
			for _, u := range strings.Split(val, ",") {
				if u = strings.TrimSpace(u); u != "" {
					cfg.Notifications.Dashboard.URLs = append(cfg.Notifications.Dashboard.URLs, u)
				}
			}
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Dispatch defaults: the pool is small because every unit of work holds a
	// live portal session.
	if cfg.Dispatch.MaxConcurrency == 0 {
		cfg.Dispatch.MaxConcurrency = 3
	}
	if cfg.Dispatch.QueueSize == 0 {
		cfg.Dispatch.QueueSize = 32
	}
	if cfg.Dispatch.ArtifactDir == "" {
		cfg.Dispatch.ArtifactDir = "artifacts"
	}
	if cfg.Dispatch.AuditLogPath == "" {
		cfg.Dispatch.AuditLogPath = filepath.Join(cfg.Dispatch.ArtifactDir, "audit.ndjson")
	}

	// Server defaults
	if cfg.Server.BindAddress == "" {
		cfg.Server.BindAddress = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.WebhookPath == "" {
		cfg.Server.WebhookPath = "/webhook/application"
	}
	if cfg.Server.OpsPort == 0 {
		cfg.Server.OpsPort = 9090
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Notification defaults
	if cfg.Notifications.Dashboard.Timeout == 0 {
		cfg.Notifications.Dashboard.Timeout = 5000
	}
	if cfg.Notifications.Email.Provider == "" {
		cfg.Notifications.Email.Provider = "smtp"
	}

	// Bot defaults
	for key, bot := range cfg.Bots {
		if bot.Timeout == 0 {
			bot.Timeout = 120000
		}
		if bot.MaxRetries == 0 {
			bot.MaxRetries = 3
		}
		if bot.SnapshotDir == "" {
			bot.SnapshotDir = filepath.Join("snapshots", key)
		}
		cfg.Bots[key] = bot
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "configs/bots.json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Dispatch.MaxConcurrency < 1 {
		return fmt.Errorf("dispatch.max_concurrency must be positive")
	}
	if cfg.Server.Port == cfg.Server.OpsPort {
		return fmt.Errorf("server.port and server.ops_port must differ")
	}
	if cfg.Notifications.Email.Enabled {
		if cfg.Notifications.Email.FromEmail == "" {
			return fmt.Errorf("notifications.email.from_email is required when email is enabled")
		}
		switch cfg.Notifications.Email.Provider {
		case "ses":
			if cfg.Notifications.AWS.Region == "" {
				return fmt.Errorf("notifications.aws.region is required for the ses provider")
			}
		case "smtp":
			if cfg.Notifications.SMTP.Host == "" {
				return fmt.Errorf("notifications.smtp.host is required for the smtp provider")
			}
		default:
			return fmt.Errorf("notifications.email.provider must be ses or smtp")
		}
	}
	if cfg.Notifications.SMS.Enabled && cfg.Notifications.AWS.Region == "" {
		return fmt.Errorf("notifications.aws.region is required when sms is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetBotConfig retrieves bot-specific configuration with fallback to defaults
func GetBotConfig(cfg *Config, botID string) BotConfig {
	if bot, exists := cfg.Bots[botID]; exists {
		return bot
	}

	return BotConfig{
		Enabled:     true,
		Timeout:     120000,
		MaxRetries:  3,
		SnapshotDir: filepath.Join("snapshots", botID),
	}
}

// IsBotEnabled checks if a specific bot is enabled
func IsBotEnabled(cfg *Config, botID string) bool {
	if bot, exists := cfg.Bots[botID]; exists {
		return bot.Enabled
	}
	return true
}
