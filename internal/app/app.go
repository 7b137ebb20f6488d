package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rahaft/bcasco-site/internal/adapters/auth/idp"
	"github.com/rahaft/bcasco-site/internal/adapters/auth/jwt"
	"github.com/rahaft/bcasco-site/internal/adapters/email"
	"github.com/rahaft/bcasco-site/internal/adapters/relay/sheets"
	"github.com/rahaft/bcasco-site/internal/adapters/storage/documents"
	mem "github.com/rahaft/bcasco-site/internal/adapters/storage/memory"
	pg "github.com/rahaft/bcasco-site/internal/adapters/storage/postgres"
	"github.com/rahaft/bcasco-site/internal/adapters/storage/sqlite"
	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/domain/content"
	"github.com/rahaft/bcasco-site/internal/domain/events"
	"github.com/rahaft/bcasco-site/internal/domain/forms"
	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/platform/config"
	"github.com/rahaft/bcasco-site/internal/platform/httpclient"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"
	"github.com/rahaft/bcasco-site/internal/ports/auth"
	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

// Options: lo que no venga se arma desde Config (store en memoria, sender noop).
type Options struct {
	Config      config.Config
	Log         logger.Logger
	Metrics     *metrics.Metrics
	Store       docstore.Store
	EmailSender email.Sender
	HTTPClient  *httpclient.Client
}

// Services es el grafo de dependencias compartido por la API y el CLI.
// Hay una sola Policy y la reciben todos los consumidores.
type Services struct {
	Config   config.Config
	Log      logger.Logger
	Metrics  *metrics.Metrics
	Store    docstore.Store
	Policy   *authz.Policy
	Settings *documents.SettingsRepo

	Workspaces *content.Workspaces
	Events     *events.Service
	Forms      *forms.Service
	Relay      *relay.Service
}

func New(opts Options) *Services {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}
	client := opts.HTTPClient
	if client == nil {
		client = httpclient.New(10 * time.Second)
	}
	sender := opts.EmailSender
	if sender == nil {
		sender = email.NewNoopSender(log)
	}

	admins := cfg.AdminEmails
	if len(admins) == 0 {
		admins = config.DefaultAdminEmails
	}
	policy := authz.NewPolicy(admins)
	settings := documents.NewSettingsRepo(store)

	relaySvc := relay.NewService(
		documents.NewRelayRepo(store),
		map[relay.Action]relay.Executor{
			relay.ActionSheets: sheets.NewExecutor(client, settings, cfg.RelayURL),
			relay.ActionEmail:  email.NewExecutor(sender),
		},
		relay.Options{MaxAttempts: cfg.RelayMaxAttempts},
		log.With(map[string]any{"component": "relay"}),
		opts.Metrics,
	)

	workspaces := content.NewWorkspaces(documents.NewContentRepo(store), policy, log.With(map[string]any{"component": "content"}), opts.Metrics)
	if cfg.SavedIndicatorTTL > 0 {
		workspaces.SavedIndicatorTTL = cfg.SavedIndicatorTTL
	}
	if cfg.WorkspaceIdleTTL > 0 {
		workspaces.IdleTTL = cfg.WorkspaceIdleTTL
	}

	eventsSvc := events.NewService(documents.NewEventsRepo(store), policy, log.With(map[string]any{"component": "events"}), opts.Metrics)
	formsSvc := forms.NewService(documents.NewFormsRepo(store), eventsSvc, relaySvc, cfg.NotifyEmails, log.With(map[string]any{"component": "forms"}), opts.Metrics)

	return &Services{
		Config:     cfg,
		Log:        log,
		Metrics:    opts.Metrics,
		Store:      store,
		Policy:     policy,
		Settings:   settings,
		Workspaces: workspaces,
		Events:     eventsSvc,
		Forms:      formsSvc,
		Relay:      relaySvc,
	}
}

// OpenStore elige el backend: DB_DSN (Postgres), SQLITE_PATH, o memoria.
// El close devuelto nunca es nil.
func OpenStore(ctx context.Context, cfg config.Config, log logger.Logger) (docstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch {
	case cfg.DBDSN != "":
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("ensure postgres schema: %w", err)
		}
		log.Info("storage ready", map[string]any{"backend": "postgres"})
		return pg.NewStore(db), db.Close, nil

	case cfg.SQLitePath != "":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("storage ready", map[string]any{"backend": "sqlite", "path": cfg.SQLitePath})
		return sqlite.NewStore(db), db.Close, nil

	default:
		log.Warn("storage ready", map[string]any{"backend": "memory", "note": "data is lost on restart"})
		return mem.NewStore(), noop, nil
	}
}

// NewVerifier: AUTH_JWT_SECRET gana sobre IDP_BASE_URL. Sin ninguno devuelve nil (modo dev).
func NewVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	if cfg.JWTSecret != "" {
		v, err := jwt.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if cfg.IDPBaseURL != "" {
		c, err := idp.NewClient(idp.Config{BaseURL: cfg.IDPBaseURL, APIKey: cfg.IDPAPIKey})
		if err != nil {
			return nil, err
		}
		return idp.NewVerifier(c), nil
	}
	return nil, nil
}

// NewEmailSender: Resend con RESEND_API_KEY, noop si no.
func NewEmailSender(cfg config.Config, log logger.Logger) email.Sender {
	if cfg.ResendAPIKey == "" {
		return email.NewNoopSender(log)
	}
	return email.NewResendSender(cfg.ResendAPIKey, cfg.ResendFrom, log)
}

// NewLogger arma el logger desde config.
func NewLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}
