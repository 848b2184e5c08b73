package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port      string `env:"PORT" env-default:"3001" validate:"required,numeric"`
	DBEnabled bool   `env:"DB_ENABLED" env-default:"true"`

	DB    DB    `env-prefix:"DB_"`
	Redis Redis `env-prefix:"REDIS_"`

	WebOrigin  string        `env:"WEB_ORIGIN" env-default:"http://localhost:5173" validate:"required,url"`
	RPID       string        `env:"RP_ID" env-default:"localhost" validate:"required"`
	RPOrigins  []string      `env:"RP_ORIGINS" env-default:"http://localhost:5173" env-separator:"," validate:"min=1,dive,url"`
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"10m" validate:"gte=1m,lte=1h"`

	AppSessionTTL time.Duration `env:"APP_SESSION_TTL" env-default:"24h" validate:"gte=1m,lte=720h"`
	SubmitGateTTL time.Duration `env:"SUBMIT_GATE_TTL" env-default:"30s" validate:"gte=1s,lte=10m"`

	AdminEmails    []string `env:"ADMIN_EMAILS" env-separator:","`
	BootstrapEmail string   `env:"BOOTSTRAP_ADMIN_EMAIL" validate:"omitempty,email"`

	Log Log `env-prefix:"LOG_"`
}

type DB struct {
	Host     string `env:"HOST" env-default:"127.0.0.1" validate:"required"`
	Port     string `env:"PORT" env-default:"5432" validate:"numeric"`
	User     string `env:"USER" env-default:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" env-default:"shop_returns"`
	SSLMode  string `env:"SSLMODE" env-default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// DSN renders the key/value connection string the postgres driver expects.
func (d DB) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type Redis struct {
	Addr     string `env:"ADDR" env-default:"127.0.0.1:6379" validate:"required,hostname_port"`
	Password string `env:"PASSWORD"`
}

type Log struct {
	Level  string `env:"LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	Format string `env:"FORMAT" env-default:"json" validate:"oneof=json console"`
	File   string `env:"FILE"`
}

// LoadEnv reads .env into the process environment when the file exists.
func LoadEnv() {
	_ = godotenv.Load()
}

func Load() (*Config, error) {
	LoadEnv()
	return read()
}

func read() (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: read env: %w", op, err)
	}
	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)
	cfg.BootstrapEmail = strings.ToLower(strings.TrimSpace(cfg.BootstrapEmail))

	if err := validator.New().Struct(&cfg); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			msgs := make([]string, 0, len(ves))
			for _, ve := range ves {
				msgs = append(msgs, fmt.Sprintf("%s=%v must satisfy '%s'", ve.Namespace(), ve.Value(), ve.Tag()))
			}
			return nil, fmt.Errorf("%s: config validation: %s", op, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("%s: config validation: %w", op, err)
	}
	return &cfg, nil
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// IsAdminEmail reports whether the address is in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(email)
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

// SecureCookies is true when the web origin is served over https.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.WebOrigin, "https://")
}
