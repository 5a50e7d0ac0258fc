package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OpenAI   OpenAIConfig
	Email    EmailConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds unified Redis connection settings.
// Supported modes: single, sentinel, cluster.
type RedisConfig struct {
	Mode            string   `mapstructure:"mode"`
	Addrs           []string `mapstructure:"addrs"`
	Addr            string   `mapstructure:"addr"`
	Password        string   `mapstructure:"password"`
	DB              int      `mapstructure:"db"`
	MasterName      string   `mapstructure:"master_name"`
	MaxRetries      int      `mapstructure:"max_retries"`
	MinRetryBackoff int      `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int      `mapstructure:"max_retry_backoff"`
}

// JWTConfig holds access-token settings.
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// OpenAIConfig holds settings for the AI feedback integration.
// Feedback endpoints return an integration error when APIKey is empty.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

// EmailConfig holds transactional email settings. Email sending becomes a
// no-op when ResendAPIKey is empty.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// AdminConfig describes the default admin account seeded at startup.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
}

// PostgresConnectionString builds the PostgreSQL DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads the configuration from an optional YAML file plus explicitly
// bound environment variables. Env vars win over file values.
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("openai.model", "gpt-4o-mini")
	vip.SetDefault("openai.temperature", 0.4)
	vip.SetDefault("admin.email", "admin@testhub.local")
	vip.SetDefault("admin.full_name", "TestHub Admin")

	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	vip.BindEnv("openai.api_key", "OPENAI_API_KEY")
	vip.BindEnv("openai.model", "OPENAI_MODEL")
	vip.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	vip.BindEnv("openai.temperature", "OPENAI_TEMPERATURE")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("admin.email", "ADMIN_EMAIL")
	vip.BindEnv("admin.password", "ADMIN_PASSWORD")
	vip.BindEnv("admin.full_name", "ADMIN_FULL_NAME")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("[Config] file %q not found, relying on environment variables", configPath)
			} else if os.IsNotExist(err) {
				log.Printf("[Config] file %q not found, relying on environment variables", configPath)
			} else {
				log.Printf("[Config] warning: failed to read %q: %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Admin.Password == "" {
		return nil, fmt.Errorf("default admin password is required (check ADMIN_PASSWORD env var)")
	}

	return &cfg, nil
}
