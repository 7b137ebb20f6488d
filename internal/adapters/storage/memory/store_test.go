package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rahaft/bcasco-site/internal/ports/docstore"
	"github.com/rahaft/bcasco-site/internal/ports/docstore/docstoretest"
)

func TestStore_SetMergeKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.Set(ctx, "pageContent", "home_intro", map[string]any{"content": "Welcome.", "page": "home"}, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "pageContent", "home_intro", map[string]any{"content": "Welcome to BCASCO.", "updatedAt": docstore.ServerTimestamp}, true); err != nil {
		t.Fatalf("Set merge: %v", err)
	}

	doc, err := s.Get(ctx, "pageContent", "home_intro")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Fields["content"] != "Welcome to BCASCO." || doc.Fields["page"] != "home" {
		t.Fatalf("unexpected fields %#v", doc.Fields)
	}
	if _, ok := doc.Fields["updatedAt"].(string); !ok {
		t.Fatalf("expected resolved timestamp, got %#v", doc.Fields["updatedAt"])
	}
}

func TestStore_UpdateMissingIsNotFound(t *testing.T) {
	s := NewStore()
	err := s.Update(context.Background(), "events", "nope", map[string]any{"notes": ""})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_BatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_ = s.Set(ctx, "events", "a", map[string]any{"notes": "x"}, false)

	err := s.Batch(ctx, []docstore.Write{
		{Op: docstore.OpUpdate, Collection: "events", Key: "a", Fields: map[string]any{"notes": "y"}},
		{Op: docstore.OpUpdate, Collection: "events", Key: "missing", Fields: map[string]any{"notes": "z"}},
	})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	doc, _ := s.Get(ctx, "events", "a")
	if doc.Fields["notes"] != "x" {
		t.Fatalf("batch partially applied: %#v", doc.Fields)
	}
}

func TestStore_ServerTimestampsIncrease(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC)
	s := NewStoreWithClock(docstore.NewClock(func() time.Time { return fixed }))

	_ = s.Set(ctx, "c", "k", map[string]any{"updatedAt": docstore.ServerTimestamp}, true)
	first, _ := s.Get(ctx, "c", "k")
	_ = s.Set(ctx, "c", "k", map[string]any{"updatedAt": docstore.ServerTimestamp}, true)
	second, _ := s.Get(ctx, "c", "k")

	a, _ := time.Parse(time.RFC3339Nano, first.Fields["updatedAt"].(string))
	b, _ := time.Parse(time.RFC3339Nano, second.Fields["updatedAt"].(string))
	if !b.After(a) {
		t.Fatalf("expected increasing timestamps: %s then %s", a, b)
	}
}

func TestStore_AddAndList(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key, err := s.Add(ctx, "eventQuestions", map[string]any{"name": "Ana"})
	if err != nil || key == "" {
		t.Fatalf("Add: key=%q err=%v", key, err)
	}
	docs, _ := s.List(ctx, "eventQuestions")
	if len(docs) != 1 || docs[0].Key != key {
		t.Fatalf("unexpected list %#v", docs)
	}
}

func TestStore_Conformance(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store { return NewStore() })
}
