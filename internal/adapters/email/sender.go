package email

import (
	"context"
	"time"
)

type SendRequest struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender es el proveedor de email saliente.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
