package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Templates     TemplateConfig      `mapstructure:"templates"`
	Channels      ChannelConfig       `mapstructure:"channels"`
	Deduplication DeduplicationConfig `mapstructure:"deduplication"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type TemplateConfig struct {
	Dir             string `mapstructure:"dir"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type ChannelConfig struct {
	Email EmailChannelConfig `mapstructure:"email"`
	Slack SlackChannelConfig `mapstructure:"slack"`
}

type EmailChannelConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`

	// SMTP delivery is optional; when Host is empty the channel writes
	// one file per notification under OutputDir instead.
	SMTP SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SlackChannelConfig struct {
	DefaultChannel string `mapstructure:"default_channel"`
}

type DeduplicationConfig struct {
	WindowSeconds     int `mapstructure:"window_seconds"`
	LogRetentionHours int `mapstructure:"log_retention_hours"`
}

type SchedulerConfig struct {
	Workers            int `mapstructure:"workers"`
	MisfireGraceSecond int `mapstructure:"misfire_grace_seconds"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "notifications")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("templates.dir", "templates")
	viper.SetDefault("templates.cache_ttl_seconds", 300)
	viper.SetDefault("channels.email.output_dir", "outputs/email")
	viper.SetDefault("channels.email.from_email", "noreply@example.com")
	viper.SetDefault("channels.email.from_name", "Notification Service")
	viper.SetDefault("channels.slack.default_channel", "#notifications")
	viper.SetDefault("deduplication.window_seconds", 60)
	viper.SetDefault("deduplication.log_retention_hours", 168)
	viper.SetDefault("scheduler.workers", 20)
	viper.SetDefault("scheduler.misfire_grace_seconds", 30)
}
