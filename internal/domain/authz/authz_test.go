package authz

import (
	"errors"
	"testing"

	"github.com/rahaft/bcasco-site/internal/domain/identity"
)

var siteEditors = []string{
	"bcasco.maryland@gmail.com",
	"bwiseman84@hotmail.com",
	"rosiehaft@gmail.com",
	"leahmberlin@gmail.com",
}

func TestPolicy_IsEditor(t *testing.T) {
	p := NewPolicy(siteEditors)

	cases := []struct {
		name string
		id   *identity.Identity
		want bool
	}{
		{"nil identity", nil, false},
		{"empty email", &identity.Identity{UserID: "u1"}, false},
		{"listed", &identity.Identity{Email: "rosiehaft@gmail.com"}, true},
		{"mixed case", &identity.Identity{Email: "BWiseman84@Hotmail.com"}, true},
		{"not listed", &identity.Identity{Email: "stranger@example.com"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.IsEditor(tc.id); got != tc.want {
				t.Fatalf("IsEditor=%v want %v", got, tc.want)
			}
		})
	}

	if err := p.Require(&identity.Identity{Email: "stranger@example.com"}); !errors.Is(err, ErrNotEditor) {
		t.Fatalf("expected ErrNotEditor, got %v", err)
	}
}

type recordingActivator struct {
	calls []string
}

func (r *recordingActivator) Activate(id *identity.Identity) { r.calls = append(r.calls, "on:"+id.Email) }
func (r *recordingActivator) Deactivate()                    { r.calls = append(r.calls, "off") }

func TestGate_FollowsIdentityChanges(t *testing.T) {
	hub := identity.NewHub()
	act := &recordingActivator{}
	detach := NewGate(NewPolicy(siteEditors)).Attach(hub, act)

	hub.Publish(&identity.Identity{Email: "leahmberlin@gmail.com"})
	hub.Publish(&identity.Identity{Email: "stranger@example.com"})
	hub.Publish(&identity.Identity{Email: "bcasco.maryland@gmail.com"})
	hub.Publish(nil)
	detach()
	hub.Publish(&identity.Identity{Email: "rosiehaft@gmail.com"})

	want := []string{"off", "on:leahmberlin@gmail.com", "off", "on:bcasco.maryland@gmail.com", "off"}
	if len(act.calls) != len(want) {
		t.Fatalf("calls=%v want %v", act.calls, want)
	}
	for i := range want {
		if act.calls[i] != want[i] {
			t.Fatalf("calls=%v want %v", act.calls, want)
		}
	}
}
