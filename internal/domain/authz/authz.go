package authz

import (
	"errors"
	"strings"

	"github.com/rahaft/bcasco-site/internal/domain/identity"
)

// ErrNotEditor se devuelve cuando la identidad no está en la allow-list.
var ErrNotEditor = errors.New("not an editor")

// Policy decide quién puede editar contenido. Hay una sola instancia por proceso.
type Policy struct {
	editors map[string]struct{}
}

func NewPolicy(emails []string) *Policy {
	p := &Policy{editors: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		p.editors[e] = struct{}{}
	}
	return p
}

// IsEditor: comparación case-insensitive del email contra la allow-list.
func (p *Policy) IsEditor(id *identity.Identity) bool {
	if p == nil || id == nil {
		return false
	}
	email := id.NormalizedEmail()
	if email == "" {
		return false
	}
	_, ok := p.editors[email]
	return ok
}

// Require devuelve ErrNotEditor si la identidad no puede editar.
func (p *Policy) Require(id *identity.Identity) error {
	if !p.IsEditor(id) {
		return ErrNotEditor
	}
	return nil
}

// Activator es lo que el Gate prende y apaga según la identidad.
type Activator interface {
	Activate(id *identity.Identity)
	Deactivate()
}

// Gate reevalúa la política en cada cambio de identidad publicado en el hub.
type Gate struct {
	policy *Policy
}

func NewGate(policy *Policy) *Gate {
	return &Gate{policy: policy}
}

// Attach deja una suscripción permanente: editor => Activate, cualquier otro caso => Deactivate.
// Devuelve la función que corta la suscripción.
func (g *Gate) Attach(hub *identity.Hub, a Activator) func() {
	return hub.Subscribe(func(id *identity.Identity) {
		if g.policy.IsEditor(id) {
			a.Activate(id)
			return
		}
		a.Deactivate()
	})
}
