package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"

	"ledger-gateway/internal/model"
)

type Config struct {
	Server     ServerConfig           `mapstructure:"server"`
	DataSource model.DataSourceConfig `mapstructure:"datasource"`
	Tally      model.TallyConfig      `mapstructure:"tally"`
	Sink       model.SinkConfig       `mapstructure:"sink"`
	Fallback   FallbackConfig         `mapstructure:"fallback"`
	Security   SecurityConfig         `mapstructure:"security"`
	Logging    LoggingConfig          `mapstructure:"logging"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	Host string `mapstructure:"host"`
}

// FallbackConfig locates the optional plan generator.
type FallbackConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	Timeout  int    `mapstructure:"timeout"` // seconds
}

type SecurityConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTExpiration      time.Duration `mapstructure:"jwt_expiration"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
	EnableAuth         bool          `mapstructure:"enable_auth"`
	EnableRateLimit    bool          `mapstructure:"enable_rate_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults and environment
			log.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.host", "0.0.0.0")

	// Data source defaults
	viper.SetDefault("datasource.kind", "relational")
	viper.SetDefault("datasource.type", "postgresql")
	viper.SetDefault("datasource.host", "localhost")
	viper.SetDefault("datasource.port", 5432)
	viper.SetDefault("datasource.database", "ledger_db")
	viper.SetDefault("datasource.username", "ledger_user")
	viper.SetDefault("datasource.ssl", false)
	viper.SetDefault("datasource.format", "csv")

	// Tally gateway defaults
	viper.SetDefault("tally.host", "localhost")
	viper.SetDefault("tally.port", 9000)
	viper.SetDefault("tally.timeout", 10)

	// Sink defaults
	viper.SetDefault("sink.enabled", false)
	viper.SetDefault("sink.type", "postgresql")
	viper.SetDefault("sink.host", "localhost")
	viper.SetDefault("sink.port", 5432)
	viper.SetDefault("sink.database", "ledger_db")
	viper.SetDefault("sink.username", "ledger_user")
	viper.SetDefault("sink.auto_refresh_interval", 60)

	// Fallback generator defaults
	viper.SetDefault("fallback.enabled", false)
	viper.SetDefault("fallback.endpoint", "http://localhost:11434")
	viper.SetDefault("fallback.model", "llama3.2")
	viper.SetDefault("fallback.timeout", 30)

	// Security defaults
	viper.SetDefault("security.jwt_secret", "your-secret-key")
	viper.SetDefault("security.jwt_expiration", "24h")
	viper.SetDefault("security.rate_limit_per_minute", 60)
	viper.SetDefault("security.rate_limit_burst", 10)
	viper.SetDefault("security.enable_auth", false)
	viper.SetDefault("security.enable_rate_limit", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
