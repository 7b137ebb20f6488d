package email

import (
	"context"
	"sync"
	"time"

	"github.com/rahaft/bcasco-site/internal/platform/logger"
)

// NoopSender no manda nada: loguea y guarda los requests (dev y tests).
type NoopSender struct {
	log logger.Logger

	mu   sync.Mutex
	sent []SendRequest
}

func NewNoopSender(log logger.Logger) *NoopSender {
	if log == nil {
		log = logger.Nop()
	}
	return &NoopSender{log: log}
}

func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, req)
	s.mu.Unlock()

	s.log.Debug("email_noop", map[string]any{"to": req.To, "subject": req.Subject})
	return SendResult{MessageID: "noop", SentAt: time.Now()}, nil
}

// Sent devuelve una copia de lo enviado.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
