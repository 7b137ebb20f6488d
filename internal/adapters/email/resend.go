package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rahaft/bcasco-site/internal/platform/logger"

	"github.com/resend/resend-go/v2"
)

// ResendSender manda emails por la API de Resend.
type ResendSender struct {
	client *resend.Client
	from   string
	log    logger.Logger
}

func NewResendSender(apiKey, from string, log logger.Logger) *ResendSender {
	if log == nil {
		log = logger.Nop()
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    log,
	}
}

func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.log.Info("resend_sent", map[string]any{"message_id": sent.Id, "to": req.To, "subject": req.Subject})
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}
