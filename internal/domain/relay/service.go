package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"

	"github.com/google/uuid"
)

// Executor entrega el payload de una entrada a su destino.
type Executor interface {
	Execute(ctx context.Context, payload string) error
}

// ExecutorFunc adapta una función a Executor.
type ExecutorFunc func(ctx context.Context, payload string) error

func (f ExecutorFunc) Execute(ctx context.Context, payload string) error { return f(ctx, payload) }

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	BatchSize   int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 30 * time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = time.Hour
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	return o
}

// Service es la cola saliente: encola después de la escritura primaria y
// entrega en segundo plano con backoff exponencial.
type Service struct {
	repo      Repository
	executors map[Action]Executor
	opts      Options
	log       logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

func NewService(repo Repository, executors map[Action]Executor, opts Options, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if executors == nil {
		executors = map[Action]Executor{}
	}
	return &Service{
		repo:      repo,
		executors: executors,
		opts:      opts.withDefaults(),
		log:       log,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Handles indica si hay executor para la acción.
func (s *Service) Handles(action Action) bool {
	_, ok := s.executors[action]
	return ok
}

// Enqueue serializa payload y guarda una entrada pending.
func (s *Service) Enqueue(ctx context.Context, action Action, payload any) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("encode relay payload: %w", err)
	}

	e := Entry{
		ID:          s.newID(),
		Action:      action,
		Payload:     string(raw),
		Status:      StatusPending,
		MaxAttempts: s.opts.MaxAttempts,
		CreatedAt:   s.now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("save relay entry: %w", err)
	}

	s.metrics.RelayEnqueued(string(action))
	s.log.Debug("relay_enqueued", map[string]any{"entry_id": e.ID, "action": string(action)})
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List devuelve las entradas (más nuevas primero); status vacío = todas.
func (s *Service) List(ctx context.Context, status string) ([]Entry, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	out := make([]Entry, 0, len(items))
	for _, e := range items {
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ProcessReport resume una pasada del procesador.
type ProcessReport struct {
	Scanned   int `json:"scanned"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Abandoned int `json:"abandoned"`
	Deferred  int `json:"deferred"`
}

// ProcessPending intenta las entradas listas más viejas, hasta BatchSize.
// Las que siguen en backoff se cuentan como deferred y no ocupan lugar en el lote.
func (s *Service) ProcessPending(ctx context.Context) (ProcessReport, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return ProcessReport{}, fmt.Errorf("list relay entries: %w", err)
	}

	var rep ProcessReport
	now := s.now()
	ready := make([]Entry, 0)
	for _, e := range items {
		if !e.CanRetry() {
			continue
		}
		rep.Scanned++
		if now.Before(e.ReadyAt(s.opts.BaseDelay, s.opts.MaxDelay)) {
			rep.Deferred++
			continue
		}
		ready = append(ready, e)
	}
	sort.SliceStable(ready, func(i, j int) bool { return ready[i].CreatedAt.Before(ready[j].CreatedAt) })
	if len(ready) > s.opts.BatchSize {
		ready = ready[:s.opts.BatchSize]
	}

	for _, e := range ready {
		out, err := s.deliver(ctx, e)
		if err != nil {
			s.log.Error("relay_save_failed", map[string]any{"entry_id": e.ID, "error": err})
		}
		switch out.Status {
		case StatusDone:
			rep.Delivered++
		case StatusAbandoned:
			rep.Abandoned++
		default:
			rep.Failed++
		}
	}

	if rep.Scanned > 0 {
		s.log.Info("relay_process_complete", map[string]any{
			"scanned":   rep.Scanned,
			"delivered": rep.Delivered,
			"failed":    rep.Failed,
			"abandoned": rep.Abandoned,
			"deferred":  rep.Deferred,
		})
	}
	return rep, nil
}

// Retry entrega una entrada ya mismo, sin esperar el backoff.
// Sirve también para una entrada failed que agotó sus intentos (se le da uno más).
func (s *Service) Retry(ctx context.Context, id string) (Entry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return e, fmt.Errorf("%w: %s", ErrTerminal, e.Status)
	}
	if e.Attempts >= e.MaxAttempts {
		e.MaxAttempts = e.Attempts + 1
	}
	return s.deliver(ctx, e)
}

func (s *Service) Abandon(ctx context.Context, id, reason string) (Entry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Status == StatusDone {
		return e, fmt.Errorf("%w: %s", ErrTerminal, e.Status)
	}
	if strings.TrimSpace(reason) == "" {
		reason = "abandoned by admin"
	}
	e.MarkAbandoned(reason)
	if err := s.repo.Save(ctx, e); err != nil {
		return Entry{}, err
	}
	s.metrics.RelayAttempt(string(e.Action), StatusAbandoned)
	s.log.Info("relay_abandoned", map[string]any{"entry_id": e.ID, "reason": reason})
	return e, nil
}

// deliver hace un intento y guarda el resultado. Los errores del destino
// quedan en la entrada; sólo se devuelve el error de guardado.
func (s *Service) deliver(ctx context.Context, e Entry) (Entry, error) {
	exec, ok := s.executors[e.Action]
	if !ok {
		e.MarkAbandoned(fmt.Sprintf("%v: %s", ErrNoExecutor, e.Action))
		s.metrics.RelayAttempt(string(e.Action), StatusAbandoned)
		s.log.Warn("relay_no_executor", map[string]any{"entry_id": e.ID, "action": string(e.Action)})
		return e, s.repo.Save(ctx, e)
	}

	e.MarkAttempt(s.now().UTC())
	err := exec.Execute(ctx, e.Payload)
	switch {
	case err == nil:
		e.MarkSuccess()
		s.log.Info("relay_delivered", map[string]any{"entry_id": e.ID, "action": string(e.Action), "attempt": e.Attempts})
	case errors.Is(err, ErrPermanent):
		e.MarkAbandoned(err.Error())
		s.log.Warn("relay_abandoned", map[string]any{"entry_id": e.ID, "action": string(e.Action), "reason": err.Error()})
	default:
		e.MarkFailed(err)
		s.log.Warn("relay_attempt_failed", map[string]any{
			"entry_id": e.ID,
			"action":   string(e.Action),
			"attempt":  e.Attempts,
			"error":    err.Error(),
		})
	}
	s.metrics.RelayAttempt(string(e.Action), e.Status)

	return e, s.repo.Save(ctx, e)
}

// StartWorker corre ProcessPending cada interval. Devuelve la función para frenarlo.
func (s *Service) StartWorker(ctx context.Context, interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.ProcessPending(ctx); err != nil {
					s.log.Error("relay_worker_error", map[string]any{"error": err})
				}
			}
		}
	}()

	return cancel
}
