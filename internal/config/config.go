package config

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest JWT_SECRET accepted, in bytes.
const MinSecretLength = 32

// Config holds the runtime settings of the server.
type Config struct {
	AppPort          string
	DBDriver         string
	DatabaseDSN      string
	JWTTTL           time.Duration
	BcryptCost       int
	AuthRateLimitRPM int
	RabbitMQURL      string
	LogLevel         string
	LogFormat        string

	// SigningKey is JWT_SECRET, or a random key when it is unset.
	SigningKey []byte
	// SigningKeyGenerated is true when SigningKey was generated at startup;
	// tokens then do not survive a restart.
	SigningKeyGenerated bool
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "sns.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "1h")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("AUTH_RATE_LIMIT_RPM", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTTTL:           v.GetDuration("JWT_TTL"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		AuthRateLimitRPM: v.GetInt("AUTH_RATE_LIMIT_RPM"),
		RabbitMQURL:      strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}

	if secret := v.GetString("JWT_SECRET"); secret != "" {
		cfg.SigningKey = []byte(secret)
	} else {
		key, err := randomKey()
		if err != nil {
			return nil, err
		}
		cfg.SigningKey = key
		cfg.SigningKeyGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, sqlite, memory; got %q", c.DBDriver)
	}
	if c.DBDriver != "memory" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %s", c.DBDriver)
	}
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT cannot be empty")
	}
	if len(c.SigningKey) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	if c.JWTTTL < time.Second {
		return fmt.Errorf("JWT_TTL must be at least 1s")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// WarnInsecureDefaults logs settings that are fine for development only.
func (c *Config) WarnInsecureDefaults() {
	if c.SigningKeyGenerated {
		log.Warn("JWT_SECRET is not set; using a random signing key, issued tokens will not survive a restart")
	}
}

func randomKey() ([]byte, error) {
	key := make([]byte, MinSecretLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return key, nil
}
