package content

import (
	"context"
	"errors"
	"sync"

	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"
)

// Registry lleva las regiones editables registradas en un workspace.
// Su mutex también protege el estado del Controller.
type Registry struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	regions   map[RegionKey]*Region
	order     []RegionKey
	listeners []func(*Region)
}

func NewRegistry(repo Repository, log logger.Logger, m *metrics.Metrics) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		repo:    repo,
		log:     log,
		metrics: m,
		regions: make(map[RegionKey]*Region),
	}
}

// OnRegistered agrega un listener que corre (con el lock tomado) por cada región nueva.
func (r *Registry) OnRegistered(fn func(*Region)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Register es idempotente por key: si la región ya existe se devuelve tal cual.
// Un fallo al leer el store no se propaga: queda el contenido authored como baseline.
func (r *Registry) Register(ctx context.Context, spec RegionSpec) (Region, error) {
	key, err := NewRegionKey(spec.Page, spec.RegionID)
	if err != nil {
		return Region{}, err
	}

	if existing, ok := r.Get(key); ok {
		return existing, nil
	}

	baseline, source := r.load(ctx, key, spec.Authored)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.regions[key]; ok {
		return *existing, nil
	}

	region := &Region{
		Key:       key,
		Authored:  spec.Authored,
		Current:   baseline,
		Baseline:  baseline,
		Multiline: spec.Multiline,
		Source:    source,
		Status:    StatusIdle,
	}
	r.regions[key] = region
	r.order = append(r.order, key)
	for _, fn := range r.listeners {
		fn(region)
	}
	return *region, nil
}

// RegisterPage registra varias regiones en orden; corta en la primera spec inválida.
func (r *Registry) RegisterPage(ctx context.Context, specs []RegionSpec) ([]Region, error) {
	out := make([]Region, 0, len(specs))
	for _, s := range specs {
		region, err := r.Register(ctx, s)
		if err != nil {
			return out, err
		}
		out = append(out, region)
	}
	return out, nil
}

func (r *Registry) load(ctx context.Context, key RegionKey, authored string) (string, Source) {
	rec, err := r.repo.Get(ctx, key)
	switch {
	case err == nil:
		r.metrics.RegionLoad(string(SourcePersisted))
		return rec.Content, SourcePersisted
	case errors.Is(err, ErrRecordNotFound):
		r.metrics.RegionLoad(string(SourceAuthored))
		return authored, SourceAuthored
	default:
		r.metrics.RegionLoad(string(SourceFetchFailed))
		r.log.Warn("region content fetch failed, using authored content", map[string]any{
			"page":      key.Page,
			"region_id": key.RegionID,
			"error":     err,
		})
		return authored, SourceFetchFailed
	}
}

func (r *Registry) Get(key RegionKey) (Region, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	region, ok := r.regions[key]
	if !ok {
		return Region{}, false
	}
	return *region, true
}

// List devuelve las regiones de page en orden de registro ("" = todas).
func (r *Registry) List(page string) []Region {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Region, 0, len(r.order))
	for _, k := range r.order {
		if page != "" && k.Page != page {
			continue
		}
		out = append(out, *r.regions[k])
	}
	return out
}

// Detach suelta las regiones de page ("" = todas), como al descargar la página.
func (r *Registry) Detach(page string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	removed := 0
	for _, k := range r.order {
		if page == "" || k.Page == page {
			delete(r.regions, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	r.order = kept
	return removed
}

// each recorre las regiones con el lock ya tomado.
func (r *Registry) each(fn func(*Region)) {
	for _, k := range r.order {
		fn(r.regions[k])
	}
}
