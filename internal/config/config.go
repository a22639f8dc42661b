// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort         string
	AppEnv          string
	DBDriver        string
	DatabaseDSN     string
	JWTSecret       string
	JWTTTL          time.Duration
	CORSOrigins     []string
	RedisURL        string
	CacheTTL        time.Duration
	RabbitMQURL     string
	MongoURI        string
	MongoDB         string
	LogLevel        string
	LoginRatePerMin int
}

const devJWTSecret = "change-me-in-production"

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "storefront")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOGIN_RATE_PER_MIN", 10)
}

// Load reads envFile (if it exists) into the process environment and then
// resolves every key from the environment, falling back to defaults.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		AppEnv:          v.GetString("APP_ENV"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		RedisURL:        v.GetString("REDIS_URL"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDB:         v.GetString("MONGO_DB"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LoginRatePerMin: v.GetInt("LOGIN_RATE_PER_MIN"),
	}
	if !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTSecret == devJWTSecret && c.IsProduction() {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTSecret == devJWTSecret {
		log.Warn("Using the development JWT secret; set JWT_SECRET")
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
