// Package docstoretest tiene el set de checks que todo adapter de docstore debe pasar.
package docstoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

// Run ejecuta los checks contra un store vacío por subtest.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(ctx, "pageContent", "home_intro"); !errors.Is(err, docstore.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set merge", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "pageContent", "home_intro", map[string]any{"content": "Welcome.", "page": "home"}, true); err != nil {
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
		if ts, _ := doc.Fields["updatedAt"].(string); ts == "" {
			t.Fatalf("expected server timestamp, got %#v", doc.Fields["updatedAt"])
		}
	})

	t.Run("set replace", func(t *testing.T) {
		s := newStore(t)
		_ = s.Set(ctx, "settings", "googleSheets", map[string]any{"webAppUrl": "https://a", "old": true}, false)
		_ = s.Set(ctx, "settings", "googleSheets", map[string]any{"webAppUrl": "https://b"}, false)
		doc, _ := s.Get(ctx, "settings", "googleSheets")
		if _, ok := doc.Fields["old"]; ok || doc.Fields["webAppUrl"] != "https://b" {
			t.Fatalf("expected replaced document, got %#v", doc.Fields)
		}
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		if err := s.Update(ctx, "events", "missing", map[string]any{"notes": ""}); !errors.Is(err, docstore.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("batch rollback", func(t *testing.T) {
		s := newStore(t)
		_ = s.Set(ctx, "events", "a", map[string]any{"notes": "Networking and Refreshments at 9:30 AM"}, false)
		err := s.Batch(ctx, []docstore.Write{
			{Op: docstore.OpUpdate, Collection: "events", Key: "a", Fields: map[string]any{"notes": "Networking at 9:30 AM"}},
			{Op: docstore.OpUpdate, Collection: "events", Key: "missing", Fields: map[string]any{"notes": "x"}},
		})
		if !errors.Is(err, docstore.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		doc, _ := s.Get(ctx, "events", "a")
		if doc.Fields["notes"] != "Networking and Refreshments at 9:30 AM" {
			t.Fatalf("batch partially applied: %#v", doc.Fields)
		}
	})

	t.Run("add list delete", func(t *testing.T) {
		s := newStore(t)
		k1, err := s.Add(ctx, "eventQuestions", map[string]any{"name": "Ana", "rating": 4})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if _, err := s.Add(ctx, "eventQuestions", map[string]any{"name": "Luis"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
		docs, err := s.List(ctx, "eventQuestions")
		if err != nil || len(docs) != 2 {
			t.Fatalf("List: %d docs, err=%v", len(docs), err)
		}
		if err := s.Delete(ctx, "eventQuestions", k1); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		docs, _ = s.List(ctx, "eventQuestions")
		if len(docs) != 1 {
			t.Fatalf("expected 1 doc after delete, got %d", len(docs))
		}
	})

	t.Run("batch too large", func(t *testing.T) {
		s := newStore(t)
		writes := make([]docstore.Write, docstore.MaxBatchSize+1)
		for i := range writes {
			writes[i] = docstore.Write{Op: docstore.OpSet, Collection: "events", Key: "k", Fields: map[string]any{}}
		}
		if err := s.Batch(ctx, writes); !errors.Is(err, docstore.ErrBatchTooLarge) {
			t.Fatalf("expected ErrBatchTooLarge, got %v", err)
		}
	})
}
