package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
)

func TestExecutor_RendersMarkdownAndSends(t *testing.T) {
	sender := NewNoopSender(logger.Nop())
	x := NewExecutor(sender)

	payload := `{"to":["bwiseman84@hotmail.com"],"subject":"New question: Annual Luncheon","markdown":"## New question\n\n- **Name:** Ann\n\n<script>alert(1)</script>"}`
	if err := x.Execute(context.Background(), payload); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	html := sent[0].HTML
	if !strings.Contains(html, "<h2>New question</h2>") || !strings.Contains(html, "<strong>Name:</strong>") {
		t.Fatalf("unexpected html %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html must not pass through: %q", html)
	}
}

func TestExecutor_BadPayloadIsPermanent(t *testing.T) {
	x := NewExecutor(NewNoopSender(nil))

	for _, payload := range []string{"not json", `{"to":[],"subject":"x"}`} {
		if err := x.Execute(context.Background(), payload); !errors.Is(err, relay.ErrPermanent) {
			t.Fatalf("payload %q: expected ErrPermanent, got %v", payload, err)
		}
	}
}
