package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string   `env:"HTTP_PORT" envDefault:"5000"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	StoreDriver         string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL         string `env:"DATABASE_URL"`
	DatabaseMaxConns    int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`
	MongoURI            string `env:"MONGODB_URI"`
	MongoDatabase       string `env:"MONGODB_DATABASE" envDefault:"devport"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"720h"`
	OTPTTL       time.Duration `env:"OTP_TTL" envDefault:"5m"`
	ResetCodeTTL time.Duration `env:"RESET_CODE_TTL" envDefault:"10m"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`

	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPass      string `env:"SMTP_PASS"`
	SMTPUseTLS    bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	BrevoAPIKey   string `env:"BREVO_API_KEY"`
	BrevoBaseURL  string `env:"BREVO_BASE_URL" envDefault:"https://api.brevo.com/v3"`
	EmailFrom     string `env:"EMAIL_FROM"`
	EmailFromName string `env:"EMAIL_FROM_NAME" envDefault:"DevPort"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa las combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTTTL <= 0 || c.OTPTTL <= 0 || c.ResetCodeTTL <= 0 {
		return errors.New("JWT_TTL, OTP_TTL and RESET_CODE_TTL must be positive")
	}
	return nil
}
