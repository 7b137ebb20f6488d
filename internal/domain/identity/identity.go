package identity

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Identity es el usuario autenticado según el identity provider. Transitorio.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time // zero = sin vencimiento conocido
}

// Expired reporta si el token ya venció en now.
func (i *Identity) Expired(now time.Time) bool {
	if i == nil || i.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(i.ExpiresAt)
}

// NormalizedEmail devuelve el email en minúsculas y sin espacios.
func (i *Identity) NormalizedEmail() string {
	if i == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(i.Email))
}

// Hub publica cambios de identidad a sus suscriptores.
// nil significa "sin sesión" (logout o vencimiento).
type Hub struct {
	// pubMu serializa las entregas: cada suscriptor ve las publicaciones en el
	// mismo orden en que cambió current. Un callback no puede publicar.
	pubMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	subs    map[int]func(*Identity)
	current *Identity
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(*Identity))}
}

// Subscribe registra fn y la invoca de inmediato con la identidad actual.
// Devuelve la función para desuscribirse.
func (h *Hub) Subscribe(fn func(*Identity)) func() {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	current := h.current
	h.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish cambia la identidad actual y notifica en orden de suscripción.
// Los callbacks corren fuera de mu (pueden leer Current) pero dentro de pubMu.
func (h *Hub) Publish(id *Identity) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	h.mu.Lock()
	h.current = id
	ids := make([]int, 0, len(h.subs))
	for k := range h.subs {
		ids = append(ids, k)
	}
	fns := make([]func(*Identity), 0, len(ids))
	sort.Ints(ids)
	for _, k := range ids {
		fns = append(fns, h.subs[k])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// Current devuelve la última identidad publicada.
func (h *Hub) Current() *Identity {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}
