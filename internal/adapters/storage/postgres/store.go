package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rahaft/bcasco-site/internal/ports/docstore"

	"github.com/google/uuid"
)

// Store guarda cada documento como una fila JSONB en la tabla documents.
// El merge usa el operador || de jsonb (shallow, igual que docstore.Merge).
type Store struct {
	db    *sql.DB
	clock *docstore.Clock
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: docstore.NewClock(time.Now)}
}

var _ docstore.Store = (*Store)(nil)

// execer es lo común entre *sql.DB y *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) Get(ctx context.Context, collection, key string) (docstore.Document, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return docstore.Document{}, docstore.ErrNotFound
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT fields FROM documents
		WHERE collection = $1 AND key = $2
	`, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return decodeRow(collection, key, raw)
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
	key := uuid.NewString()
	if err := s.Set(ctx, collection, key, fields, false); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, fields FROM documents
		WHERE collection = $1
		ORDER BY key ASC
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]docstore.Document, 0)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeRow(collection, key, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Store) Batch(ctx context.Context, writes []docstore.Write) error {
	if err := docstore.ValidateBatch(writes); err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	ts := s.clock.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range writes {
		if err := apply(ctx, tx, w, ts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func apply(ctx context.Context, ex execer, w docstore.Write, ts time.Time) error {
	if w.Op == docstore.OpDelete {
		_, err := ex.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND key = $2`, w.Collection, w.Key)
		return err
	}

	fields, err := docstore.Prepare(w.Fields, ts)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("postgres: encode fields: %w", err)
	}

	switch {
	case w.Op == docstore.OpUpdate:
		res, err := ex.ExecContext(ctx, `
			UPDATE documents
			SET fields = fields || $3::jsonb, updated_at = $4
			WHERE collection = $1 AND key = $2
		`, w.Collection, w.Key, raw, ts)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return docstore.ErrNotFound
		}
		return nil

	case w.Merge:
		_, err = ex.ExecContext(ctx, `
			INSERT INTO documents (collection, key, fields, created_at, updated_at)
			VALUES ($1, $2, $3::jsonb, $4, $4)
			ON CONFLICT (collection, key)
			DO UPDATE SET fields = documents.fields || EXCLUDED.fields, updated_at = EXCLUDED.updated_at
		`, w.Collection, w.Key, raw, ts)
		return err

	default:
		_, err = ex.ExecContext(ctx, `
			INSERT INTO documents (collection, key, fields, created_at, updated_at)
			VALUES ($1, $2, $3::jsonb, $4, $4)
			ON CONFLICT (collection, key)
			DO UPDATE SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at
		`, w.Collection, w.Key, raw, ts)
		return err
	}
}

func decodeRow(collection, key string, raw []byte) (docstore.Document, error) {
	fields := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return docstore.Document{}, fmt.Errorf("postgres: decode %s/%s: %w", collection, key, err)
		}
	}
	return docstore.Document{Collection: collection, Key: key, Fields: fields}, nil
}
