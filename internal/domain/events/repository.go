package events

import "context"

type Repository interface {
	Create(ctx context.Context, e Event) error
	// Get devuelve ErrNotFound si no existe.
	Get(ctx context.Context, id string) (Event, error)
	List(ctx context.Context) ([]Event, error)
	// ApplyPatches escribe todos los patches juntos (máximo MaxBatch); updatedAt lo pone el store.
	ApplyPatches(ctx context.Context, patches []Patch) error
}
