package relay

import "context"

type Repository interface {
	// Save crea o reemplaza la entrada completa.
	Save(ctx context.Context, e Entry) error
	// Get devuelve ErrNotFound si no existe.
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
}
