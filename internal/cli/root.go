package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rahaft/bcasco-site/internal/app"
	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/platform/config"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"

	"github.com/spf13/cobra"
)

// App es el estado compartido por los subcomandos.
// Si Services viene seteado (tests), no se lee config ni se abre storage.
type App struct {
	Actor    string
	Pretty   bool
	Services *app.Services

	closeStore func() error
}

func NewRootCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sitectl",
		Short:        "Mantenimiento del sitio BCASCO (eventos, relay, settings)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Cargar el calendario por defecto (idempotente)
  sitectl seed-events

  # Cargar eventos desde un archivo
  sitectl seed-events --file events.yaml

  # Quitar "and Refreshments" de las notas
  sitectl strip-refreshments --as bcasco.maryland@gmail.com

  # Reintentar entregas pendientes a Sheets/email
  sitectl relay process
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.open(cmd.Context())
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if a.closeStore == nil {
			return nil
		}
		return a.closeStore()
	}

	cmd.PersistentFlags().StringVar(&a.Actor, "as", envOr("BCASCO_ACTOR", ""), "Email del editor que ejecuta el comando (default: primer admin)")
	cmd.PersistentFlags().BoolVar(&a.Pretty, "pretty", false, "JSON indentado")

	cmd.AddCommand(newSeedEventsCmd(a))
	cmd.AddCommand(newStripRefreshmentsCmd(a))
	cmd.AddCommand(newRelayCmd(a))
	cmd.AddCommand(newSettingsCmd(a))

	return cmd
}

func (a *App) open(ctx context.Context) error {
	if a.Services != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := app.NewLogger(cfg)

	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.closeStore = closeStore
	a.Services = app.New(app.Options{
		Config:      cfg,
		Log:         log,
		Metrics:     metrics.New(),
		Store:       store,
		EmailSender: app.NewEmailSender(cfg, log),
	})
	return nil
}

// actor arma la identidad del operador. Los scripts corren con privilegios de editor,
// así que el email debe estar en la allow-list.
func (a *App) actor() (*identity.Identity, error) {
	email := strings.TrimSpace(a.Actor)
	if email == "" {
		admins := a.Services.Config.AdminEmails
		if len(admins) == 0 {
			admins = config.DefaultAdminEmails
		}
		email = admins[0]
	}
	id := &identity.Identity{UserID: "sitectl", Email: email}
	if !a.Services.Policy.IsEditor(id) {
		return nil, fmt.Errorf("%s is not an editor", email)
	}
	return id, nil
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if a.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

var errMissingArg = errors.New("missing argument")
