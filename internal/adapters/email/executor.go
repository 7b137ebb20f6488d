package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahaft/bcasco-site/internal/domain/relay"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// El HTML crudo dentro del markdown se escapa (sin WithUnsafe).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Executor entrega entradas relay.ActionEmail con el Sender configurado.
type Executor struct {
	sender Sender
}

func NewExecutor(sender Sender) *Executor {
	return &Executor{sender: sender}
}

var _ relay.Executor = (*Executor)(nil)

func (x *Executor) Execute(ctx context.Context, payload string) error {
	var p relay.EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return fmt.Errorf("%w: decode email payload: %v", relay.ErrPermanent, err)
	}
	if len(p.To) == 0 {
		return fmt.Errorf("%w: email has no recipients", relay.ErrPermanent)
	}

	html, err := RenderMarkdown(p.Markdown)
	if err != nil {
		return fmt.Errorf("%w: %v", relay.ErrPermanent, err)
	}

	_, err = x.sender.Send(ctx, SendRequest{To: p.To, Subject: p.Subject, HTML: html})
	return err
}

func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
