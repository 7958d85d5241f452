package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"gpu-stock-alerts/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	API      APIConfig      `mapstructure:"api"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Email    EmailConfig    `mapstructure:"email"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Database DatabaseConfig `mapstructure:"database"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// APIConfig covers marketplace search API access. BaseURL may contain a
// {locale} placeholder which is substituted with Locale.
type APIConfig struct {
	BaseURL        string            `mapstructure:"base_url"`
	Locale         string            `mapstructure:"locale"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	UserAgent      string            `mapstructure:"user_agent"`
	Headers        map[string]string `mapstructure:"headers"`
}

// URL returns the search endpoint with the locale substituted.
func (a APIConfig) URL() string {
	return strings.ReplaceAll(a.BaseURL, "{locale}", a.Locale)
}

// MonitorConfig governs the poll/evaluate/notify cycle.
type MonitorConfig struct {
	CheckInterval  time.Duration `mapstructure:"check_interval"`
	MaxFailures    int           `mapstructure:"max_failures"`
	GPUs           []string      `mapstructure:"gpus"`
	Manufacturer   string        `mapstructure:"manufacturer"`
	MatchSubstring bool          `mapstructure:"match_substring"`
	StartupDelay   time.Duration `mapstructure:"startup_delay"`
}

// EmailConfig encapsulates SMTP delivery and alert subjects.
type EmailConfig struct {
	SMTPHost         string `mapstructure:"smtp_host"`
	SMTPPort         int    `mapstructure:"smtp_port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	From             string `mapstructure:"from"`
	Recipient        string `mapstructure:"recipient"`
	ProductSubject   string `mapstructure:"product_subject"`
	DownSubject      string `mapstructure:"down_subject"`
	RecoveredSubject string `mapstructure:"recovered_subject"`
	ChangedSubject   string `mapstructure:"changed_subject"`
}

// AlertingConfig selects the active alert sink.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channel  string         `mapstructure:"channel"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram alert channel.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// DatabaseConfig encapsulates optional PostgreSQL audit connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GPUWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gpuwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("api.base_url", "https://api.nvidia.partners/edge/product/search?page=1&limit=100&locale={locale}")
	v.SetDefault("api.locale", "en-us")
	v.SetDefault("api.request_timeout", "10s")
	v.SetDefault("api.user_agent", "")

	v.SetDefault("monitor.check_interval", "60s")
	v.SetDefault("monitor.max_failures", 3)
	v.SetDefault("monitor.manufacturer", "NVIDIA")
	v.SetDefault("monitor.match_substring", false)
	v.SetDefault("monitor.startup_delay", "0s")

	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.product_subject", "GPU in stock")
	v.SetDefault("email.down_subject", "GPU monitor: API down")
	v.SetDefault("email.recovered_subject", "GPU monitor: API recovered")
	v.SetDefault("email.changed_subject", "GPU monitor: SKU set changed")

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.channel", "email")
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.advisory_lock_key", int64(0x67707577))

	v.SetDefault("export.max_data_points", 100000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be greater than zero")
	}
	if c.Monitor.CheckInterval <= 0 {
		return fmt.Errorf("monitor.check_interval must be greater than zero")
	}
	if c.Monitor.MaxFailures < 1 {
		return fmt.Errorf("monitor.max_failures must be at least 1")
	}
	if len(c.Monitor.GPUs) == 0 {
		return fmt.Errorf("monitor.gpus must list at least one product name")
	}
	if c.Monitor.Manufacturer == "" {
		return fmt.Errorf("monitor.manufacturer is required")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Enabled {
		switch c.Alerting.Channel {
		case "email":
			if c.Email.Username == "" || c.Email.Password == "" || c.Email.Recipient == "" {
				return fmt.Errorf("email.username, email.password, and email.recipient must be configured")
			}
		case "telegram":
			if c.Alerting.Telegram.BotToken == "" {
				return fmt.Errorf("alerting.telegram.bot_token must be configured")
			}
			if c.Alerting.Telegram.ChatID == "" {
				return fmt.Errorf("alerting.telegram.chat_id must be configured")
			}
		default:
			return fmt.Errorf("alerting.channel must be email or telegram, got %q", c.Alerting.Channel)
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
