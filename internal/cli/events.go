package cli

import (
	"fmt"
	"os"

	"github.com/rahaft/bcasco-site/internal/domain/events"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSeedEventsCmd(a *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-events",
		Short: "Crear eventos que no existan todavía (por título + fecha)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := a.actor()
			if err != nil {
				return err
			}

			inputs := events.DefaultCalendar()
			if file != "" {
				inputs, err = loadEventsFile(file)
				if err != nil {
					return err
				}
			}

			rep, err := a.Services.Events.Seed(cmd.Context(), actor, inputs)
			if err != nil {
				return err
			}
			return writeOut(cmd, a, rep)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML con una lista de eventos (title, date, time, location, notes, flyer_url)")
	return cmd
}

func newStripRefreshmentsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "strip-refreshments",
		Short: `Quitar "and Refreshments" de las notas de todos los eventos`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := a.actor()
			if err != nil {
				return err
			}
			rep, err := a.Services.Events.StripRefreshments(cmd.Context(), actor)
			if err != nil {
				return err
			}
			return writeOut(cmd, a, rep)
		},
	}
}

func loadEventsFile(path string) ([]events.CreateInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var out []events.CreateInput
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
