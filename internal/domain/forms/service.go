package forms

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/events"
	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"
)

// EventLookup resuelve el evento al que apunta un formulario.
type EventLookup interface {
	Get(ctx context.Context, id string) (events.Event, error)
}

// Enqueuer es la cola saliente (planilla / email).
type Enqueuer interface {
	Enqueue(ctx context.Context, action relay.Action, payload any) (relay.Entry, error)
	Handles(action relay.Action) bool
}

type Service struct {
	repo    Repository
	events  EventLookup
	relay   Enqueuer
	notify  []string
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService: relay puede ser nil (sin side channel); notify son los destinatarios del aviso por email.
func NewService(repo Repository, ev EventLookup, relayQ Enqueuer, notify []string, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		events:  ev,
		relay:   relayQ,
		notify:  notify,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

type QuestionInput struct {
	EventID  string
	Name     string
	Email    string
	Question string
	Comments string
}

type FeedbackInput struct {
	EventID string
	Rating  int
	Notes   string
	Name    string
	Email   string
}

// SubmitQuestion guarda la pregunta (escritura primaria, su error se devuelve)
// y después encola el envío a la planilla y el aviso por email (best-effort).
func (s *Service) SubmitQuestion(ctx context.Context, in QuestionInput) (Question, error) {
	q := Question{
		EventID:  strings.TrimSpace(in.EventID),
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Question: strings.TrimSpace(in.Question),
		Comments: strings.TrimSpace(in.Comments),
	}
	if err := requireContact(q.Name, q.Email); err != nil {
		return Question{}, err
	}
	if q.Question == "" {
		return Question{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	ev, err := s.event(ctx, q.EventID)
	if err != nil {
		return Question{}, err
	}
	q.EventTitle = ev.Title
	q.SubmittedAt = s.now().UTC()

	id, err := s.repo.AddQuestion(ctx, q)
	if err != nil {
		return Question{}, fmt.Errorf("save question: %w", err)
	}
	q.ID = id
	s.metrics.FormSubmitted(string(KindQuestion))
	s.log.Info("question submitted", map[string]any{"question_id": id, "event_id": q.EventID})

	s.enqueue(ctx, KindQuestion, id, map[string]any{
		"eventId":    q.EventID,
		"eventTitle": q.EventTitle,
		"name":       q.Name,
		"email":      q.Email,
		"question":   q.Question,
		"comments":   q.Comments,
	}, q.SubmittedAt, questionEmail(q))
	return q, nil
}

// SubmitFeedback exige rating 1..5 y que el evento ya haya empezado.
func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackInput) (Feedback, error) {
	f := Feedback{
		EventID: strings.TrimSpace(in.EventID),
		Rating:  in.Rating,
		Notes:   strings.TrimSpace(in.Notes),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
	}
	if err := requireContact(f.Name, f.Email); err != nil {
		return Feedback{}, err
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return Feedback{}, ErrInvalidRating
	}

	ev, err := s.event(ctx, f.EventID)
	if err != nil {
		return Feedback{}, err
	}
	now := s.now()
	if !ev.HasStarted(events.DateOf(now)) {
		return Feedback{}, ErrEventNotStarted
	}
	f.EventTitle = ev.Title
	f.SubmittedAt = now.UTC()

	id, err := s.repo.AddFeedback(ctx, f)
	if err != nil {
		return Feedback{}, fmt.Errorf("save feedback: %w", err)
	}
	f.ID = id
	s.metrics.FormSubmitted(string(KindFeedback))
	s.log.Info("feedback submitted", map[string]any{"feedback_id": id, "event_id": f.EventID, "rating": f.Rating})

	s.enqueue(ctx, KindFeedback, id, map[string]any{
		"eventId":    f.EventID,
		"eventTitle": f.EventTitle,
		"rating":     f.Rating,
		"notes":      f.Notes,
		"name":       f.Name,
		"email":      f.Email,
	}, f.SubmittedAt, feedbackEmail(f))
	return f, nil
}

func (s *Service) ListQuestions(ctx context.Context, eventID string) ([]Question, error) {
	return s.repo.ListQuestions(ctx, strings.TrimSpace(eventID))
}

func (s *Service) ListFeedback(ctx context.Context, eventID string) ([]Feedback, error) {
	return s.repo.ListFeedback(ctx, strings.TrimSpace(eventID))
}

func (s *Service) event(ctx context.Context, id string) (events.Event, error) {
	if id == "" {
		return events.Event{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	return s.events.Get(ctx, id)
}

// enqueue nunca falla hacia el caller: la escritura primaria ya se hizo.
func (s *Service) enqueue(ctx context.Context, kind Kind, id string, fields map[string]any, at time.Time, notice relay.EmailPayload) {
	if s.relay == nil {
		return
	}

	payload := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["type"] = string(kind)
	payload["submittedAt"] = map[string]int64{"seconds": at.Unix()}

	if _, err := s.relay.Enqueue(ctx, relay.ActionSheets, payload); err != nil {
		s.log.Warn("relay enqueue failed", map[string]any{"kind": string(kind), "id": id, "error": err})
	}

	if len(s.notify) == 0 || !s.relay.Handles(relay.ActionEmail) {
		return
	}
	notice.To = s.notify
	if _, err := s.relay.Enqueue(ctx, relay.ActionEmail, notice); err != nil {
		s.log.Warn("notification enqueue failed", map[string]any{"kind": string(kind), "id": id, "error": err})
	}
}

func requireContact(name, email string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

func questionEmail(q Question) relay.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "## New question for %s\n\n", q.EventTitle)
	fmt.Fprintf(&b, "- **Name:** %s\n- **Email:** %s\n- **Submitted:** %s\n\n", q.Name, q.Email, q.SubmittedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "> %s\n", q.Question)
	if q.Comments != "" {
		fmt.Fprintf(&b, "\n**Comments:** %s\n", q.Comments)
	}
	return relay.EmailPayload{Subject: "New question: " + q.EventTitle, Markdown: b.String()}
}

func feedbackEmail(f Feedback) relay.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "## New feedback for %s\n\n", f.EventTitle)
	fmt.Fprintf(&b, "- **Rating:** %s (%d/5)\n", strings.Repeat("★", f.Rating), f.Rating)
	fmt.Fprintf(&b, "- **Name:** %s\n- **Email:** %s\n- **Submitted:** %s\n", f.Name, f.Email, f.SubmittedAt.Format(time.RFC1123))
	if f.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", f.Notes)
	}
	return relay.EmailPayload{Subject: fmt.Sprintf("New feedback (%d/5): %s", f.Rating, f.EventTitle), Markdown: b.String()}
}
