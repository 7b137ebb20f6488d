package documents

import (
	"context"
	"errors"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

const CollectionRelayOutbox = "relayOutbox"

type RelayRepo struct {
	store docstore.Store
}

func NewRelayRepo(store docstore.Store) *RelayRepo {
	return &RelayRepo{store: store}
}

var _ relay.Repository = (*RelayRepo)(nil)

type relayDoc struct {
	ActionType      string     `json:"actionType"`
	Payload         string     `json:"payload"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"maxAttempts"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	ErrorMessage    string     `json:"errorMessage"`
}

func (r *RelayRepo) Save(ctx context.Context, e relay.Entry) error {
	var last any
	if !e.LastAttemptedAt.IsZero() {
		last = e.LastAttemptedAt.UTC()
	}
	return r.store.Set(ctx, CollectionRelayOutbox, e.ID, map[string]any{
		"actionType":      string(e.Action),
		"payload":         e.Payload,
		"status":          e.Status,
		"attempts":        e.Attempts,
		"maxAttempts":     e.MaxAttempts,
		"lastAttemptedAt": last,
		"createdAt":       e.CreatedAt.UTC(),
		"errorMessage":    e.ErrorMessage,
	}, false)
}

func (r *RelayRepo) Get(ctx context.Context, id string) (relay.Entry, error) {
	doc, err := r.store.Get(ctx, CollectionRelayOutbox, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return relay.Entry{}, relay.ErrNotFound
		}
		return relay.Entry{}, err
	}
	return decodeRelay(doc)
}

func (r *RelayRepo) List(ctx context.Context) ([]relay.Entry, error) {
	docs, err := r.store.List(ctx, CollectionRelayOutbox)
	if err != nil {
		return nil, err
	}
	out := make([]relay.Entry, 0, len(docs))
	for _, doc := range docs {
		e, err := decodeRelay(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeRelay(doc docstore.Document) (relay.Entry, error) {
	var d relayDoc
	if err := doc.Decode(&d); err != nil {
		return relay.Entry{}, err
	}
	e := relay.Entry{
		ID:           doc.Key,
		Action:       relay.Action(d.ActionType),
		Payload:      d.Payload,
		Status:       d.Status,
		Attempts:     d.Attempts,
		MaxAttempts:  d.MaxAttempts,
		CreatedAt:    d.CreatedAt,
		ErrorMessage: d.ErrorMessage,
	}
	if d.LastAttemptedAt != nil {
		e.LastAttemptedAt = *d.LastAttemptedAt
	}
	return e, nil
}
