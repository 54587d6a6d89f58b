package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"alumni"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"alumni_dev_password"`
	DBName     string `envconfig:"DB_NAME" default:"alumni"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@alumniconnect.local"`
	SMTPUsername string `envconfig:"SMTP_USERNAME" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`

	// WSAllowAnonymous tolerates credential-less websocket handshakes as
	// muted sessions instead of refusing the upgrade.
	WSAllowAnonymous bool `envconfig:"WS_ALLOW_ANONYMOUS" default:"false"`
}

func Load() (*Config, error) {
	// .env is a local-dev convenience; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
