package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rahaft/bcasco-site/internal/ports/docstore"

	"github.com/google/uuid"
)

// Store es el docstore en memoria (dev y tests). Un único RWMutex protege todas las colecciones.
type Store struct {
	mu    sync.RWMutex
	clock *docstore.Clock
	newID func() string
	data  map[string]map[string]map[string]any
}

func NewStore() *Store {
	return NewStoreWithClock(docstore.NewClock(time.Now))
}

func NewStoreWithClock(clock *docstore.Clock) *Store {
	return &Store{
		clock: clock,
		newID: uuid.NewString,
		data:  make(map[string]map[string]map[string]any),
	}
}

var _ docstore.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, collection, key string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.data[collection][key]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{Collection: collection, Key: key, Fields: copyFields(fields)}, nil
}

func (s *Store) Set(ctx context.Context, collection, key string, fields map[string]any, merge bool) error {
	return s.Batch(ctx, []docstore.Write{{Op: docstore.OpSet, Collection: collection, Key: key, Fields: fields, Merge: merge}})
}

func (s *Store) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	return s.Batch(ctx, []docstore.Write{{Op: docstore.OpUpdate, Collection: collection, Key: key, Fields: fields}})
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	return s.Batch(ctx, []docstore.Write{{Op: docstore.OpDelete, Collection: collection, Key: key}})
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	key := s.newID()
	if err := s.Set(ctx, collection, key, fields, false); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docstore.Document, 0, len(s.data[collection]))
	for key, fields := range s.data[collection] {
		out = append(out, docstore.Document{Collection: collection, Key: key, Fields: copyFields(fields)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Batch valida y prepara todo antes de mutar, así un error deja el store intacto.
func (s *Store) Batch(ctx context.Context, writes []docstore.Write) error {
	if err := docstore.ValidateBatch(writes); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ts := s.clock.Now()
	prepared := make([]map[string]any, len(writes))
	for i, w := range writes {
		if w.Op == docstore.OpDelete {
			continue
		}
		p, err := docstore.Prepare(w.Fields, ts)
		if err != nil {
			return err
		}
		prepared[i] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range writes {
		if w.Op == docstore.OpUpdate {
			if _, ok := s.data[w.Collection][w.Key]; !ok {
				return docstore.ErrNotFound
			}
		}
	}

	for i, w := range writes {
		coll := s.data[w.Collection]
		if coll == nil {
			coll = make(map[string]map[string]any)
			s.data[w.Collection] = coll
		}
		switch w.Op {
		case docstore.OpDelete:
			delete(coll, w.Key)
		case docstore.OpUpdate:
			coll[w.Key] = docstore.Merge(coll[w.Key], prepared[i])
		case docstore.OpSet:
			if w.Merge {
				coll[w.Key] = docstore.Merge(coll[w.Key], prepared[i])
			} else {
				coll[w.Key] = prepared[i]
			}
		}
	}
	return nil
}

func copyFields(in map[string]any) map[string]any {
	return docstore.Merge(nil, in)
}
