package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/platform/httpclient"
)

// URLSource resuelve la URL del web app de la planilla (settings/googleSheets).
type URLSource interface {
	WebAppURL(ctx context.Context) (string, error)
}

// Executor postea el payload de un formulario al web app de la planilla.
// La URL sale de settings; si no hay, se usa el fallback de config.
type Executor struct {
	client   *httpclient.Client
	settings URLSource
	fallback string
}

func NewExecutor(client *httpclient.Client, settings URLSource, fallbackURL string) *Executor {
	return &Executor{
		client:   client,
		settings: settings,
		fallback: strings.TrimSpace(fallbackURL),
	}
}

var _ relay.Executor = (*Executor)(nil)

func (x *Executor) Execute(ctx context.Context, payload string) error {
	url, err := x.resolveURL(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: no web app url configured", relay.ErrPermanent)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return fmt.Errorf("%w: decode payload: %v", relay.ErrPermanent, err)
	}
	switch body["type"] {
	case "question", "feedback":
	default:
		return fmt.Errorf("%w: unknown form type %v", relay.ErrPermanent, body["type"])
	}

	if _, err := x.client.PostJSON(ctx, url, body); err != nil {
		return fmt.Errorf("post to sheets: %w", err)
	}
	return nil
}

func (x *Executor) resolveURL(ctx context.Context) (string, error) {
	if x.settings != nil {
		url, err := x.settings.WebAppURL(ctx)
		if err != nil {
			return "", fmt.Errorf("load sheets settings: %w", err)
		}
		if url != "" {
			return url, nil
		}
	}
	return x.fallback, nil
}
