package content

import (
	"context"

	"github.com/rahaft/bcasco-site/internal/domain/identity"
)

// Controller maneja foco, input, commit y cancel sobre las regiones del registry.
// Sólo opera mientras el Gate lo tiene activado.
type Controller struct {
	reg  *Registry
	sync *SyncClient

	// protegidos por reg.mu
	active   bool
	actor    *identity.Identity
	inFlight map[RegionKey]bool
}

func NewController(reg *Registry, sync *SyncClient) *Controller {
	c := &Controller{
		reg:      reg,
		sync:     sync,
		inFlight: make(map[RegionKey]bool),
	}
	// regiones que aparecen con la edición ya activa
	reg.OnRegistered(func(r *Region) {
		if c.active {
			r.Editable = true
		}
	})
	return c
}

func (c *Controller) Activate(id *identity.Identity) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	c.active = true
	c.actor = id
	c.reg.each(func(r *Region) { r.Editable = true })
}

// Deactivate quita editabilidad y foco; el contenido queda como está.
func (c *Controller) Deactivate() {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	c.active = false
	c.actor = nil
	c.reg.each(func(r *Region) {
		r.Editable = false
		r.Focused = false
	})
}

func (c *Controller) Active() bool {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	return c.active
}

// Focus no captura nada (el baseline ya está). Devuelve true sólo la primera vez
// por región, para mostrar el hint.
func (c *Controller) Focus(key RegionKey) (bool, error) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	r, err := c.editableLocked(key)
	if err != nil {
		return false, err
	}
	r.Focused = true
	clearError(r)
	if r.HintShown {
		return false, nil
	}
	r.HintShown = true
	return true, nil
}

// Input cambia el contenido visible. Nunca escribe en el store.
func (c *Controller) Input(key RegionKey, value string) (Region, error) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	r, err := c.editableLocked(key)
	if err != nil {
		return Region{}, err
	}
	r.Current = value
	clearError(r)
	return *r, nil
}

// Commit es el límite de confirmación (blur). Sin cambios respecto al baseline no escribe.
func (c *Controller) Commit(ctx context.Context, key RegionKey) (Outcome, error) {
	c.reg.mu.Lock()
	r, err := c.editableLocked(key)
	if err != nil {
		c.reg.mu.Unlock()
		return Outcome{}, err
	}
	r.Focused = false
	if c.inFlight[key] {
		c.reg.mu.Unlock()
		return Outcome{}, ErrCommitInFlight
	}
	if !r.Dirty() {
		snap := *r
		c.reg.mu.Unlock()
		c.sync.metrics.Commit(string(ResultUnchanged))
		return Outcome{Result: ResultUnchanged, Region: snap}, nil
	}

	written := r.Current
	actor := c.actor
	c.inFlight[key] = true
	r.Status = StatusSaving
	c.reg.mu.Unlock()

	result, commitErr := c.sync.Commit(ctx, key, written, actor)

	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	delete(c.inFlight, key)

	r, ok := c.reg.regions[key]
	if !ok {
		// la región se soltó mientras se guardaba
		return Outcome{Result: result, Err: commitErr}, nil
	}
	c.sync.reconcile(r, written, result, commitErr)
	return Outcome{Result: result, Region: *r, Err: commitErr}, nil
}

// Cancel restaura el baseline textual y sale del foco sin escribir.
// Con un commit en vuelo el baseline todavía no está decidido: ErrCommitInFlight.
func (c *Controller) Cancel(key RegionKey) (Outcome, error) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	r, err := c.editableLocked(key)
	if err != nil {
		return Outcome{}, err
	}
	if c.inFlight[key] {
		return Outcome{}, ErrCommitInFlight
	}
	r.Current = r.Baseline
	r.Focused = false
	return Outcome{Result: ResultCancelled, Region: *r}, nil
}

// Key: Enter (sin shift) confirma regiones de una línea, Escape cancela.
func (c *Controller) Key(ctx context.Context, key RegionKey, kp KeyPress) (Outcome, error) {
	switch kp.Key {
	case KeyEscape:
		return c.Cancel(key)
	case KeyEnter:
		c.reg.mu.Lock()
		r, err := c.editableLocked(key)
		if err != nil {
			c.reg.mu.Unlock()
			return Outcome{}, err
		}
		multiline := r.Multiline
		snap := *r
		c.reg.mu.Unlock()

		if kp.Shift || multiline {
			return Outcome{Result: ResultIgnored, Region: snap}, nil
		}
		return c.Commit(ctx, key)
	default:
		c.reg.mu.Lock()
		defer c.reg.mu.Unlock()
		r, err := c.editableLocked(key)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Result: ResultIgnored, Region: *r}, nil
	}
}

func (c *Controller) editableLocked(key RegionKey) (*Region, error) {
	r, ok := c.reg.regions[key]
	if !ok {
		return nil, ErrRegionNotFound
	}
	if !c.active || !r.Editable {
		return nil, ErrNotEditable
	}
	return r, nil
}

// el error bloqueante se limpia con la siguiente operación de edición
func clearError(r *Region) {
	if r.Status == StatusError {
		r.Status = StatusIdle
		r.LastError = ""
	}
}
