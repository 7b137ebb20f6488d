package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

type sheetsURLView struct {
	WebAppURL string `json:"web_app_url"`
}

func newSettingsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Configuración guardada en el document store",
	}
	cmd.AddCommand(newSheetsURLCmd(a))
	return cmd
}

// Sin argumento muestra la URL actual.
func newSheetsURLCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets-url [url]",
		Short: "Ver o cambiar la URL del Apps Script que recibe los formularios",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				if _, err := a.actor(); err != nil {
					return err
				}
				raw := strings.TrimSpace(args[0])
				if raw == "" {
					return fmt.Errorf("sheets url: %w", errMissingArg)
				}
				u, err := url.Parse(raw)
				if err != nil || u.Scheme != "https" || u.Host == "" {
					return fmt.Errorf("sheets url must be an absolute https URL: %q", raw)
				}
				if err := a.Services.Settings.SetWebAppURL(ctx, raw); err != nil {
					return err
				}
			}

			current, err := a.Services.Settings.WebAppURL(ctx)
			if err != nil {
				return err
			}
			return writeOut(cmd, a, sheetsURLView{WebAppURL: current})
		},
	}
}
