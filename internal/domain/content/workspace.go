package content

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNotWorkspaceOwner = errors.New("workspace belongs to another identity")
)

// DefaultIdleTTL: un workspace sin requests por más de esto se cierra.
// El servidor no ve el unload de la página; el TTL hace ese papel.
const DefaultIdleTTL = 2 * time.Hour

const sweepEvery = time.Minute

// Workspace es una superficie de edición (una pestaña abierta): su propio hub de
// identidad, registry y controller, con el Gate suscripto mientras viva.
type Workspace struct {
	ID         string
	CreatedAt  time.Time
	LastSeenAt time.Time // protegido por Workspaces.mu
	Hub        *identity.Hub
	Registry   *Registry
	Controller *Controller

	detach func()
}

// OwnedBy reporta si caller puede operar el workspace. Con una identidad publicada,
// solo ese mismo usuario; sin identidad (visitante o logout) cualquiera.
func (w *Workspace) OwnedBy(caller *identity.Identity) bool {
	cur := w.Hub.Current()
	if cur == nil {
		return true
	}
	return caller != nil && caller.UserID == cur.UserID
}

// Close corta la suscripción del Gate y suelta todas las regiones.
func (w *Workspace) Close() {
	w.detach()
	w.Controller.Deactivate()
	w.Registry.Detach("")
}

// Workspaces administra los workspaces vivos por id.
type Workspaces struct {
	repo    Repository
	gate    *authz.Gate
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	SavedIndicatorTTL time.Duration
	IdleTTL           time.Duration

	mu        sync.RWMutex
	byID      map[string]*Workspace
	lastSweep time.Time
}

func NewWorkspaces(repo Repository, policy *authz.Policy, log logger.Logger, m *metrics.Metrics) *Workspaces {
	if log == nil {
		log = logger.Nop()
	}
	return &Workspaces{
		repo:              repo,
		gate:              authz.NewGate(policy),
		log:               log,
		metrics:           m,
		now:               time.Now,
		newID:             uuid.NewString,
		SavedIndicatorTTL: 3 * time.Second,
		IdleTTL:           DefaultIdleTTL,
		byID:              make(map[string]*Workspace),
	}
}

// Open crea un workspace; id puede ser nil (visitante anónimo).
func (ws *Workspaces) Open(id *identity.Identity) *Workspace {
	now := ws.now()
	ws.sweepIfDue(now)

	reg := NewRegistry(ws.repo, ws.log, ws.metrics)
	syncClient := NewSyncClient(ws.repo, ws.log, ws.metrics)
	syncClient.now = ws.now

	w := &Workspace{
		ID:         ws.newID(),
		CreatedAt:  now,
		LastSeenAt: now,
		Hub:        identity.NewHub(),
		Registry:   reg,
		Controller: NewController(reg, syncClient),
	}
	w.detach = ws.gate.Attach(w.Hub, w.Controller)
	if id != nil {
		w.Hub.Publish(id)
	}

	ws.mu.Lock()
	ws.byID[w.ID] = w
	ws.mu.Unlock()

	ws.log.Info("workspace opened", map[string]any{"workspace_id": w.ID, "editor": w.Controller.Active()})
	return w
}

// Get devuelve el workspace y renueva su LastSeenAt. Un workspace ocioso
// cuenta como cerrado aunque el sweep todavía no haya pasado.
// Si la identidad publicada venció, publica nil antes.
func (ws *Workspaces) Get(id string) (*Workspace, error) {
	now := ws.now()

	ws.mu.Lock()
	w, ok := ws.byID[id]
	if ok && ws.idle(w, now) {
		delete(ws.byID, id)
		ws.mu.Unlock()
		w.Close()
		ws.log.Info("workspace expired", map[string]any{"workspace_id": id})
		return nil, ErrWorkspaceNotFound
	}
	if ok {
		w.LastSeenAt = now
	}
	ws.mu.Unlock()
	if !ok {
		return nil, ErrWorkspaceNotFound
	}

	if cur := w.Hub.Current(); cur != nil && cur.Expired(now) {
		ws.log.Info("identity expired, editing disabled", map[string]any{"workspace_id": w.ID})
		w.Hub.Publish(nil)
	}
	return w, nil
}

// SetIdentity publica login (id != nil) o logout (nil) en el hub del workspace.
func (ws *Workspaces) SetIdentity(workspaceID string, id *identity.Identity) (*Workspace, error) {
	w, err := ws.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	w.Hub.Publish(id)
	return w, nil
}

func (ws *Workspaces) Close(id string) error {
	ws.mu.Lock()
	w, ok := ws.byID[id]
	delete(ws.byID, id)
	ws.mu.Unlock()
	if !ok {
		return ErrWorkspaceNotFound
	}
	w.Close()
	ws.log.Info("workspace closed", map[string]any{"workspace_id": id})
	return nil
}

// Reap cierra los workspaces sin actividad desde hace más de IdleTTL.
func (ws *Workspaces) Reap(now time.Time) int {
	ws.mu.Lock()
	ws.lastSweep = now
	expired := make([]*Workspace, 0)
	for id, w := range ws.byID {
		if ws.idle(w, now) {
			expired = append(expired, w)
			delete(ws.byID, id)
		}
	}
	ws.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	if len(expired) > 0 {
		ws.log.Info("idle workspaces reaped", map[string]any{"count": len(expired), "remaining": ws.Len()})
	}
	return len(expired)
}

// StartReaper corre Reap en un ticker hasta que se cancele ctx o se llame al cancel devuelto.
func (ws *Workspaces) StartReaper(ctx context.Context, interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ws.Reap(ws.now())
			}
		}
	}()

	return cancel
}

func (ws *Workspaces) sweepIfDue(now time.Time) {
	ws.mu.RLock()
	due := now.Sub(ws.lastSweep) >= sweepEvery
	ws.mu.RUnlock()
	if due {
		ws.Reap(now)
	}
}

// idle requiere ws.mu tomado.
func (ws *Workspaces) idle(w *Workspace, now time.Time) bool {
	return ws.IdleTTL > 0 && now.Sub(w.LastSeenAt) > ws.IdleTTL
}

func (ws *Workspaces) Len() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.byID)
}

// PageContent devuelve el contenido persistido de una página por region id
// (lo que ve un visitante sin sesión).
func (ws *Workspaces) PageContent(ctx context.Context, page string) (map[string]string, error) {
	recs, err := ws.repo.ListPage(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(recs))
	for _, rec := range recs {
		out[rec.RegionID] = rec.Content
	}
	return out, nil
}
