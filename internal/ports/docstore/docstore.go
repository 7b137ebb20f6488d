package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MaxBatchSize es el máximo de escrituras por Batch.
const MaxBatchSize = 500

var (
	ErrNotFound      = errors.New("document not found")
	ErrBatchTooLarge = errors.New("batch exceeds max size")
	ErrInvalidKey    = errors.New("invalid collection or key")
)

// Sentinel marca valores que resuelve el store al escribir.
type Sentinel string

// ServerTimestamp se reemplaza por la hora del store (no la del cliente).
const ServerTimestamp Sentinel = "__server_timestamp__"

// Document es un registro key/value dentro de una colección.
// Fields siempre viene normalizado como JSON decodificado (números float64, tiempos como string RFC3339).
type Document struct {
	Collection string
	Key        string
	Fields     map[string]any
}

// Decode copia Fields dentro de out (struct con tags json).
func (d Document) Decode(out any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("docstore: encode %s/%s: %w", d.Collection, d.Key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", d.Collection, d.Key, err)
	}
	return nil
}

type WriteOp string

const (
	OpSet    WriteOp = "set"
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

// Write es una operación dentro de un Batch.
type Write struct {
	Op         WriteOp
	Collection string
	Key        string
	Fields     map[string]any
	Merge      bool // sólo OpSet
}

// Store es la frontera con el almacenamiento de documentos.
type Store interface {
	// Get devuelve ErrNotFound si el documento no existe.
	Get(ctx context.Context, collection, key string) (Document, error)
	// Set crea o reemplaza; con merge=true sólo pisa los campos dados.
	Set(ctx context.Context, collection, key string, fields map[string]any, merge bool) error
	// Update mergea campos en un documento existente (ErrNotFound si no existe).
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	// Add crea un documento con key generada y la devuelve.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	// List devuelve los documentos ordenados por key.
	List(ctx context.Context, collection string) ([]Document, error)
	Delete(ctx context.Context, collection, key string) error
	// Batch aplica todas las escrituras o ninguna. Máximo MaxBatchSize.
	Batch(ctx context.Context, writes []Write) error
}

// Clock entrega timestamps estrictamente crecientes (UTC, precisión de microsegundo).
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// Prepare resuelve sentinels con ts y normaliza los valores vía JSON,
// así todos los adapters devuelven los mismos tipos.
func Prepare(fields map[string]any, ts time.Time) (map[string]any, error) {
	resolved := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(Sentinel); ok && s == ServerTimestamp {
			resolved[k] = ts
			continue
		}
		resolved[k] = v
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode fields: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("docstore: normalize fields: %w", err)
	}
	return out, nil
}

// Merge devuelve base con los campos de patch encima (shallow).
func Merge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// ValidateBatch chequea tamaño y claves antes de tocar el store.
func ValidateBatch(writes []Write) error {
	if len(writes) > MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(writes), MaxBatchSize)
	}
	for _, w := range writes {
		if w.Collection == "" || w.Key == "" {
			return ErrInvalidKey
		}
		switch w.Op {
		case OpSet, OpUpdate, OpDelete:
		default:
			return fmt.Errorf("docstore: unknown write op %q", w.Op)
		}
	}
	return nil
}
