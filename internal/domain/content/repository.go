package content

import "context"

// Repository es el acceso al contenido persistido (colección pageContent).
type Repository interface {
	// Get devuelve ErrRecordNotFound si la región nunca se guardó.
	Get(ctx context.Context, key RegionKey) (Record, error)
	// Save hace merge sobre el documento; UpdatedAt lo asigna el store.
	Save(ctx context.Context, rec Record) error
	ListPage(ctx context.Context, page string) ([]Record, error)
}
