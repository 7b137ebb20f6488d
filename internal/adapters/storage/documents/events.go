package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/events"
	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

const CollectionEvents = "events"

type EventsRepo struct {
	store docstore.Store
}

func NewEventsRepo(store docstore.Store) *EventsRepo {
	return &EventsRepo{store: store}
}

var _ events.Repository = (*EventsRepo)(nil)

type eventDoc struct {
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	FlyerURL  string    `json:"flyerUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, err := r.store.Get(ctx, CollectionEvents, e.ID); err == nil {
		return errors.New("event already exists")
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return err
	}

	fields := map[string]any{
		"title":     e.Title,
		"date":      e.Date,
		"time":      e.Time,
		"location":  e.Location,
		"notes":     e.Notes,
		"createdAt": docstore.ServerTimestamp,
		"updatedAt": docstore.ServerTimestamp,
	}
	if e.FlyerURL != "" {
		fields["flyerUrl"] = e.FlyerURL
	}
	if e.UpdatedBy != "" {
		fields["updatedBy"] = e.UpdatedBy
	}
	return r.store.Set(ctx, CollectionEvents, e.ID, fields, false)
}

func (r *EventsRepo) Get(ctx context.Context, id string) (events.Event, error) {
	doc, err := r.store.Get(ctx, CollectionEvents, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return decodeEvent(doc)
}

func (r *EventsRepo) List(ctx context.Context) ([]events.Event, error) {
	docs, err := r.store.List(ctx, CollectionEvents)
	if err != nil {
		return nil, err
	}
	out := make([]events.Event, 0, len(docs))
	for _, doc := range docs {
		e, err := decodeEvent(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ApplyPatches escribe todos los patches en un único Batch (todo o nada).
func (r *EventsRepo) ApplyPatches(ctx context.Context, patches []events.Patch) error {
	if len(patches) == 0 {
		return nil
	}
	writes := make([]docstore.Write, 0, len(patches))
	for _, p := range patches {
		writes = append(writes, docstore.Write{
			Op:         docstore.OpUpdate,
			Collection: CollectionEvents,
			Key:        p.EventID,
			Fields: map[string]any{
				string(p.Field): p.Value,
				"updatedAt":     docstore.ServerTimestamp,
				"updatedBy":     p.UpdatedBy,
			},
		})
	}
	if err := r.store.Batch(ctx, writes); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %v", events.ErrNotFound, err)
		}
		return err
	}
	return nil
}

func decodeEvent(doc docstore.Document) (events.Event, error) {
	var d eventDoc
	if err := doc.Decode(&d); err != nil {
		return events.Event{}, err
	}
	return events.Event{
		ID:        doc.Key,
		Title:     d.Title,
		Date:      d.Date,
		Time:      d.Time,
		Location:  d.Location,
		Notes:     d.Notes,
		FlyerURL:  d.FlyerURL,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		UpdatedBy: d.UpdatedBy,
	}, nil
}
