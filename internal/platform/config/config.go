package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAdminEmails es la allow-list histórica de editores del sitio.
var DefaultAdminEmails = []string{
	"bcasco.maryland@gmail.com",
	"bwiseman84@hotmail.com",
	"rosiehaft@gmail.com",
	"leahmberlin@gmail.com",
}

// Config agrupa todo lo que el proceso lee de env.
// Los valores vacíos significan "no configurado" (p.ej. sin DB_DSN => in-memory).
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Storage: DB_DSN (Postgres) tiene prioridad sobre SQLITE_PATH.
	DBDSN      string `env:"DB_DSN"`
	SQLitePath string `env:"SQLITE_PATH"`

	AdminEmails []string `env:"BCASCO_ADMIN_EMAILS" envSeparator:","`

	// Identity provider: JWT local o verify remoto. Sin ninguno => modo dev (X-Debug-User-*).
	JWTSecret   string `env:"AUTH_JWT_SECRET"`
	JWTIssuer   string `env:"AUTH_JWT_ISSUER"`
	JWTAudience string `env:"AUTH_JWT_AUDIENCE"`
	IDPBaseURL  string `env:"IDP_BASE_URL"`
	IDPAPIKey   string `env:"IDP_API_KEY"`

	RelayURL         string        `env:"BCASCO_RELAY_URL"`
	RelayInterval    time.Duration `env:"RELAY_INTERVAL" envDefault:"1m"`
	RelayMaxAttempts int           `env:"RELAY_MAX_ATTEMPTS" envDefault:"5"`

	ResendAPIKey string   `env:"RESEND_API_KEY"`
	ResendFrom   string   `env:"RESEND_FROM" envDefault:"BCASCO <bcasco.maryland@gmail.com>"`
	NotifyEmails []string `env:"NOTIFY_EMAILS" envSeparator:"," envDefault:"bwiseman84@hotmail.com"`

	SavedIndicatorTTL time.Duration `env:"SAVED_INDICATOR_TTL" envDefault:"3s"`
	WorkspaceIdleTTL  time.Duration `env:"WORKSPACE_IDLE_TTL" envDefault:"2h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"bcasco-site"`
}

// Load lee la configuración desde env y aplica defaults que env no cubre.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.AdminEmails = trimAll(c.AdminEmails)
	if len(c.AdminEmails) == 0 {
		c.AdminEmails = append([]string(nil), DefaultAdminEmails...)
	}
	c.NotifyEmails = trimAll(c.NotifyEmails)
	if c.RelayMaxAttempts <= 0 {
		c.RelayMaxAttempts = 5
	}
	if c.RelayInterval <= 0 {
		c.RelayInterval = time.Minute
	}
	if c.SavedIndicatorTTL <= 0 {
		c.SavedIndicatorTTL = 3 * time.Second
	}
	if c.WorkspaceIdleTTL <= 0 {
		c.WorkspaceIdleTTL = 2 * time.Hour
	}
	c.RelayURL = strings.TrimSpace(c.RelayURL)
}

// Addr devuelve ":<port>" para http.Server.
func (c Config) Addr() string {
	p := strings.TrimSpace(c.Port)
	if p == "" {
		p = "8080"
	}
	return ":" + strings.TrimPrefix(p, ":")
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
