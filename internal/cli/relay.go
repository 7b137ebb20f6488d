package cli

import (
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/relay"

	"github.com/spf13/cobra"
)

type entryView struct {
	ID              string       `json:"id"`
	Action          relay.Action `json:"action"`
	Status          string       `json:"status"`
	Attempts        int          `json:"attempts"`
	MaxAttempts     int          `json:"max_attempts"`
	LastAttemptedAt *time.Time   `json:"last_attempted_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	ErrorMessage    string       `json:"error_message,omitempty"`
}

func toEntryView(e relay.Entry) entryView {
	v := entryView{
		ID:           e.ID,
		Action:       e.Action,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		t := e.LastAttemptedAt
		v.LastAttemptedAt = &t
	}
	return v
}

func newRelayCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Cola de entregas a Google Sheets / email",
	}
	cmd.AddCommand(newRelayProcessCmd(a))
	cmd.AddCommand(newRelayListCmd(a))
	cmd.AddCommand(newRelayRetryCmd(a))
	cmd.AddCommand(newRelayAbandonCmd(a))
	return cmd
}

func newRelayProcessCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Procesar un lote de entradas pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := a.Services.Relay.ProcessPending(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, a, rep)
		},
	}
}

func newRelayListCmd(a *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Listar entradas (más nuevas primero)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.Services.Relay.List(cmd.Context(), status)
			if err != nil {
				return err
			}
			out := make([]entryView, 0, len(items))
			for _, e := range items {
				out = append(out, toEntryView(e))
			}
			return writeOut(cmd, a, out)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending | retrying | done | failed | abandoned")
	return cmd
}

func newRelayRetryCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <entry-id>",
		Short: "Volver a poner en cola una entrada fallida",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.Services.Relay.Retry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, a, toEntryView(e))
		},
	}
}

func newRelayAbandonCmd(a *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "abandon <entry-id>",
		Short: "Marcar una entrada como abandonada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.Services.Relay.Abandon(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return writeOut(cmd, a, toEntryView(e))
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Motivo (queda en error_message)")
	return cmd
}
