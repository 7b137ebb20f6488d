package relay

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Action es el destino de una entrada del outbox.
type Action string

const (
	ActionSheets Action = "sheets"
	ActionEmail  Action = "email"
)

// DefaultMaxAttempts aplica cuando la entrada no trae MaxAttempts.
const DefaultMaxAttempts = 5

var (
	ErrEmptyAction  = errors.New("action is required")
	ErrEmptyPayload = errors.New("payload is required")
	ErrNotFound     = errors.New("relay entry not found")
	ErrTerminal     = errors.New("relay entry is in a terminal state")
	ErrNoExecutor   = errors.New("no executor registered for action")

	// ErrPermanent lo devuelve un Executor cuando reintentar no tiene sentido
	// (p.ej. no hay URL configurada). La entrada pasa a abandoned.
	ErrPermanent = errors.New("permanent relay failure")
)

// Entry es una acción pendiente hacia un sistema externo.
type Entry struct {
	ID              string
	Action          Action
	Payload         string // JSON
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ErrorMessage    string
}

func (e *Entry) Validate() error {
	if strings.TrimSpace(string(e.Action)) == "" {
		return ErrEmptyAction
	}
	if strings.TrimSpace(e.Payload) == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry: pending/retrying/failed con intentos disponibles.
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying || e.Status == StatusFailed) &&
		e.Attempts < e.MaxAttempts
}

func (e *Entry) IsTerminal() bool {
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return true
	}
	return e.Status == StatusFailed && e.Attempts >= e.MaxAttempts
}

func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

func (e *Entry) MarkSuccess() {
	e.Status = StatusDone
	e.ErrorMessage = ""
}

// MarkFailed deja la entrada en retrying mientras queden intentos.
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

func (e *Entry) MarkAbandoned(reason string) {
	e.Status = StatusAbandoned
	if reason != "" {
		e.ErrorMessage = reason
	}
}

// NextRetryDelay: base * 2^attempts, con tope en maxDelay.
func (e *Entry) NextRetryDelay(base, maxDelay time.Duration) time.Duration {
	if e.Attempts >= 30 {
		return maxDelay
	}
	delay := base * (1 << e.Attempts)
	if delay > maxDelay || delay <= 0 {
		return maxDelay
	}
	return delay
}

// ReadyAt es el primer instante en que se puede volver a intentar.
func (e *Entry) ReadyAt(base, maxDelay time.Duration) time.Time {
	if e.LastAttemptedAt.IsZero() {
		return e.CreatedAt
	}
	return e.LastAttemptedAt.Add(e.NextRetryDelay(base, maxDelay))
}

// EmailPayload es el payload de ActionEmail. Markdown se renderiza a HTML al enviar.
type EmailPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Markdown string   `json:"markdown"`
}
