package sqlite

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
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT NOT NULL,
	key         TEXT NOT NULL,
	fields      TEXT NOT NULL DEFAULT '{}',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	PRIMARY KEY (collection, key)
)`

// Open abre (o crea) el archivo SQLite y asegura el schema.
// Un solo writer: SQLite serializa escrituras de todos modos.
func Open(path string) (*sql.DB, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		return nil, errors.New("sqlite: empty path")
	}
	if !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return db, nil
}

// Store guarda documentos como JSON en TEXT; el merge se hace en Go dentro de la transacción.
type Store struct {
	db    *sql.DB
	clock *docstore.Clock
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: docstore.NewClock(time.Now)}
}

var _ docstore.Store = (*Store)(nil)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) Get(ctx context.Context, collection, key string) (docstore.Document, error) {
	fields, err := load(ctx, s.db, collection, key)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{Collection: collection, Key: key, Fields: fields}, nil
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
		WHERE collection = ?
		ORDER BY key ASC
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]docstore.Document, 0)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		fields, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decode %s/%s: %w", collection, key, err)
		}
		out = append(out, docstore.Document{Collection: collection, Key: key, Fields: fields})
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
	stamp := ts.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range writes {
		if err := apply(ctx, tx, w, ts, stamp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func apply(ctx context.Context, q querier, w docstore.Write, ts time.Time, stamp string) error {
	if w.Op == docstore.OpDelete {
		_, err := q.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND key = ?`, w.Collection, w.Key)
		return err
	}

	fields, err := docstore.Prepare(w.Fields, ts)
	if err != nil {
		return err
	}

	if w.Op == docstore.OpUpdate || w.Merge {
		existing, err := load(ctx, q, w.Collection, w.Key)
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			if w.Op == docstore.OpUpdate {
				return err
			}
		case err != nil:
			return err
		default:
			fields = docstore.Merge(existing, fields)
		}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("sqlite: encode fields: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (collection, key, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, key)
		DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at
	`, w.Collection, w.Key, string(raw), stamp, stamp)
	return err
}

func load(ctx context.Context, q querier, collection, key string) (map[string]any, error) {
	if strings.TrimSpace(key) == "" {
		return nil, docstore.ErrNotFound
	}
	var raw string
	err := q.QueryRowContext(ctx, `
		SELECT fields FROM documents WHERE collection = ? AND key = ?
	`, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	fields, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("sqlite: decode %s/%s: %w", collection, key, err)
	}
	return fields, nil
}

func decode(raw string) (map[string]any, error) {
	fields := map[string]any{}
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
