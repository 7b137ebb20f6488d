package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"

	"github.com/google/uuid"
)

type Service struct {
	repo    Repository
	policy  *authz.Policy
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(repo Repository, policy *authz.Policy, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		policy:   policy,
		log:      log,
		metrics:  m,
		now:      time.Now,
		newID:    uuid.NewString,
		inFlight: make(map[string]bool),
	}
}

// Policy expone la política para los handlers de este dominio.
func (s *Service) Policy() *authz.Policy { return s.policy }

type CreateInput struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Time     string `yaml:"time"`
	Location string `yaml:"location"`
	Notes    string `yaml:"notes"`
	FlyerURL string `yaml:"flyer_url"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return ValidateDate(in.Date)
}

func (s *Service) Create(ctx context.Context, actor *identity.Identity, in CreateInput) (Event, error) {
	if err := s.policy.Require(actor); err != nil {
		return Event{}, err
	}
	if err := in.validate(); err != nil {
		return Event{}, err
	}

	now := s.now()
	e := Event{
		ID:        s.newID(),
		Title:     strings.TrimSpace(in.Title),
		Date:      strings.TrimSpace(in.Date),
		Time:      strings.TrimSpace(in.Time),
		Location:  strings.TrimSpace(in.Location),
		Notes:     strings.TrimSpace(in.Notes),
		FlyerURL:  strings.TrimSpace(in.FlyerURL),
		CreatedAt: now,
		UpdatedAt: now,
		UpdatedBy: actor.NormalizedEmail(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List devuelve todos los eventos ordenados por fecha ascendente.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	return items, nil
}

// Today es la fecha de hoy (UTC) en formato Event.Date.
func (s *Service) Today() string {
	return DateOf(s.now())
}

// Partition separa próximos (fecha > today, ascendente) de pasados
// (fecha <= today, descendente: ya empezaron).
func (s *Service) Partition(ctx context.Context, today string) (upcoming, past []Event, err error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	upcoming = make([]Event, 0)
	past = make([]Event, 0)
	for _, e := range items {
		if e.HasStarted(today) {
			past = append(past, e)
		} else {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(past, func(i, j int) bool { return past[i].Date > past[j].Date })
	return upcoming, past, nil
}

// FieldEdit es un intento de edición vía prompt. Prompted nil = prompt descartado.
type FieldEdit struct {
	EventID  string
	Field    Field
	Prompted *string
	Actor    *identity.Identity
}

type EditResult string

const (
	EditCancelled EditResult = "cancelled"
	EditSaved     EditResult = "saved"
)

type EditOutcome struct {
	Result EditResult
	Event  Event
}

// EditField aplica el contrato baseline/compare/commit sobre un campo del evento.
// Prompt descartado o valor igual al actual => cancelled sin escritura.
// El string vacío es un valor válido.
func (s *Service) EditField(ctx context.Context, in FieldEdit) (EditOutcome, error) {
	if err := s.policy.Require(in.Actor); err != nil {
		return EditOutcome{}, err
	}
	field, err := ParseField(string(in.Field))
	if err != nil {
		return EditOutcome{}, err
	}
	in.Field = field

	if !s.acquire(in.EventID) {
		return EditOutcome{}, ErrEditInFlight
	}
	defer s.release(in.EventID)

	current, err := s.Get(ctx, in.EventID)
	if err != nil {
		return EditOutcome{}, err
	}

	if in.Prompted == nil {
		s.metrics.EventEdit(string(in.Field), string(EditCancelled))
		return EditOutcome{Result: EditCancelled, Event: current}, nil
	}
	value := strings.TrimSpace(*in.Prompted)
	if value == current.Value(in.Field) {
		s.metrics.EventEdit(string(in.Field), string(EditCancelled))
		return EditOutcome{Result: EditCancelled, Event: current}, nil
	}

	patch := Patch{EventID: current.ID, Field: in.Field, Value: value, UpdatedBy: in.Actor.NormalizedEmail()}
	if err := s.repo.ApplyPatches(ctx, []Patch{patch}); err != nil {
		s.metrics.EventEdit(string(in.Field), "error")
		s.log.Error("event field update failed", map[string]any{
			"event_id": current.ID,
			"field":    string(in.Field),
			"error":    err,
		})
		return EditOutcome{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	updated, err := s.repo.Get(ctx, current.ID)
	if err != nil {
		// la escritura ya se hizo; devolvemos lo que sabemos
		updated = current
		applyPatch(&updated, patch)
		updated.UpdatedAt = s.now()
	}

	s.metrics.EventEdit(string(in.Field), string(EditSaved))
	s.log.Info("event field updated", map[string]any{
		"event_id":   current.ID,
		"field":      string(in.Field),
		"updated_by": patch.UpdatedBy,
	})
	return EditOutcome{Result: EditSaved, Event: updated}, nil
}

func (s *Service) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

func applyPatch(e *Event, p Patch) {
	switch p.Field {
	case FieldTitle:
		e.Title = p.Value
	case FieldNotes:
		e.Notes = p.Value
	}
	e.UpdatedBy = p.UpdatedBy
}
