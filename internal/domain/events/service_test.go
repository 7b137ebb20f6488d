package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
)

type testRepo struct {
	mu        sync.Mutex
	byID      map[string]Event
	batches   [][]Patch
	failPatch error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: make(map[string]Event)}
}

func (r *testRepo) Create(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; ok {
		return errors.New("event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) Get(_ context.Context, id string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (r *testRepo) List(_ context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) ApplyPatches(_ context.Context, patches []Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(patches) > MaxBatch {
		return fmt.Errorf("batch too large: %d", len(patches))
	}
	r.batches = append(r.batches, patches)
	if r.failPatch != nil {
		return r.failPatch
	}
	for _, p := range patches {
		e, ok := r.byID[p.EventID]
		if !ok {
			return ErrNotFound
		}
		applyPatch(&e, p)
		r.byID[p.EventID] = e
	}
	return nil
}

func (r *testRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

var (
	fixedNow = time.Date(2026, 1, 9, 15, 0, 0, 0, time.UTC)
	admin    = &identity.Identity{UserID: "u-1", Email: "BCASCO.Maryland@gmail.com"}
	visitor  = &identity.Identity{UserID: "u-2", Email: "visitor@example.com"}
)

func newTestService(repo Repository) *Service {
	s := NewService(repo, authz.NewPolicy([]string{"bcasco.maryland@gmail.com", "rosiehaft@gmail.com"}), logger.Nop(), nil)
	s.now = func() time.Time { return fixedNow }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("evt-%03d", n)
	}
	return s
}

func strPtr(s string) *string { return &s }

func TestCreate_ValidatesAndRequiresEditor(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newTestRepo())

	if _, err := s.Create(ctx, visitor, CreateInput{Title: "x", Date: "2026-01-09"}); !errors.Is(err, authz.ErrNotEditor) {
		t.Fatalf("expected ErrNotEditor, got %v", err)
	}
	if _, err := s.Create(ctx, admin, CreateInput{Title: " ", Date: "2026-01-09"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.Create(ctx, admin, CreateInput{Title: "x", Date: "01/09/2026"}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	e, err := s.Create(ctx, admin, CreateInput{Title: "  Senior State Legislative Roundup ", Date: "2026-05-08"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Title != "Senior State Legislative Roundup" || e.UpdatedBy != "bcasco.maryland@gmail.com" || !e.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected event %#v", e)
	}
}

func TestPartition_UpcomingVsStarted(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newTestRepo())
	for _, in := range DefaultCalendar() {
		if _, err := s.Create(ctx, admin, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	upcoming, past, err := s.Partition(ctx, "2026-01-09")
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(past) != 3 || past[0].Date != "2026-01-09" || past[2].Date != "2025-09-12" {
		t.Fatalf("unexpected past %#v", past)
	}
	if len(upcoming) != 3 || upcoming[0].Date != "2026-03-13" || upcoming[2].Date != "2026-06-12" {
		t.Fatalf("unexpected upcoming %#v", upcoming)
	}
}

func TestEditField_CancelWhenDismissedOrUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)
	e, _ := s.Create(ctx, admin, CreateInput{Title: "Annual Luncheon", Date: "2026-06-12", Notes: "Networking at 9:30 AM"})

	out, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: FieldNotes, Prompted: nil, Actor: admin})
	if err != nil || out.Result != EditCancelled {
		t.Fatalf("dismissed prompt should cancel, got %v err=%v", out.Result, err)
	}
	out, err = s.EditField(ctx, FieldEdit{EventID: e.ID, Field: FieldNotes, Prompted: strPtr("Networking at 9:30 AM "), Actor: admin})
	if err != nil || out.Result != EditCancelled {
		t.Fatalf("unchanged value should cancel, got %v err=%v", out.Result, err)
	}
	if repo.writes() != 0 {
		t.Fatalf("expected no writes, got %d", repo.writes())
	}
}

// notes "Networking at 9:30 AM" -> "": el vacío es válido y se persiste.
func TestEditField_EmptyNotesPersist(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)
	e, _ := s.Create(ctx, admin, CreateInput{Title: "The Unmet Needs of Senior Veterans", Date: "2025-11-21", Notes: "Networking at 9:30 AM"})

	out, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: FieldNotes, Prompted: strPtr(""), Actor: admin})
	if err != nil {
		t.Fatalf("EditField: %v", err)
	}
	if out.Result != EditSaved || out.Event.Notes != "" {
		t.Fatalf("unexpected outcome %#v", out)
	}

	reloaded, _ := s.Get(ctx, e.ID)
	if reloaded.Notes != "" || reloaded.Title != e.Title {
		t.Fatalf("expected empty notes after reload, got %#v", reloaded)
	}
}

func TestEditField_TrimsTitle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newTestRepo())
	e, _ := s.Create(ctx, admin, CreateInput{Title: "Old", Date: "2025-09-12"})

	out, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: FieldTitle, Prompted: strPtr("  New Title  "), Actor: admin})
	if err != nil || out.Event.Title != "New Title" {
		t.Fatalf("expected trimmed title, got %#v err=%v", out.Event, err)
	}
}

// el campo llega tal como vino en la URL; se guarda con su nombre canónico
func TestEditField_NormalizesFieldName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)
	e, _ := s.Create(ctx, admin, CreateInput{Title: "Old", Date: "2025-09-12", Notes: "keep"})

	out, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: " Title ", Prompted: strPtr("New"), Actor: admin})
	if err != nil || out.Result != EditSaved {
		t.Fatalf("EditField: %#v err=%v", out, err)
	}
	got, _ := s.Get(ctx, e.ID)
	if got.Title != "New" || got.Notes != "keep" {
		t.Fatalf("expected title updated, got %#v", got)
	}

	// igual al actual con otra capitalización del campo => cancelled
	out, err = s.EditField(ctx, FieldEdit{EventID: e.ID, Field: "NOTES", Prompted: strPtr("keep"), Actor: admin})
	if err != nil || out.Result != EditCancelled {
		t.Fatalf("expected cancelled, got %#v err=%v", out, err)
	}
	if repo.writes() != 1 {
		t.Fatalf("expected one write, got %d", repo.writes())
	}
}

func TestToday_UsesUTCDate(t *testing.T) {
	s := newTestService(newTestRepo())
	// 21:30 del 8 de enero en UTC-5 ya es 9 de enero en UTC
	s.now = func() time.Time { return time.Date(2026, 1, 8, 21, 30, 0, 0, time.FixedZone("EST", -5*3600)) }
	if got := s.Today(); got != "2026-01-09" {
		t.Fatalf("expected UTC date, got %s", got)
	}
	if got := DateOf(time.Date(2026, 1, 9, 0, 30, 0, 0, time.FixedZone("CET", 3600))); got != "2026-01-08" {
		t.Fatalf("expected UTC date, got %s", got)
	}
}

func TestEditField_FailureLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)
	e, _ := s.Create(ctx, admin, CreateInput{Title: "Old", Date: "2025-09-12", Notes: "keep"})
	repo.failPatch = errors.New("unavailable")

	_, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: FieldNotes, Prompted: strPtr("new"), Actor: admin})
	if !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("expected ErrCommitFailed, got %v", err)
	}
	got, _ := s.Get(ctx, e.ID)
	if got.Notes != "keep" {
		t.Fatalf("record changed after failed update: %#v", got)
	}
}

func TestEditField_RejectsNonEditorsAndBadFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)
	e, _ := s.Create(ctx, admin, CreateInput{Title: "Old", Date: "2025-09-12"})

	if _, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: FieldTitle, Prompted: strPtr("x"), Actor: visitor}); !errors.Is(err, authz.ErrNotEditor) {
		t.Fatalf("expected ErrNotEditor, got %v", err)
	}
	if _, err := s.EditField(ctx, FieldEdit{EventID: e.ID, Field: "location", Prompted: strPtr("x"), Actor: admin}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if _, err := s.EditField(ctx, FieldEdit{EventID: "missing", Field: FieldTitle, Prompted: strPtr("x"), Actor: admin}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.writes() != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestEditField_InFlightIsRejected(t *testing.T) {
	s := newTestService(newTestRepo())
	if !s.acquire("evt-001") {
		t.Fatalf("acquire failed")
	}
	_, err := s.EditField(context.Background(), FieldEdit{EventID: "evt-001", Field: FieldTitle, Prompted: strPtr("x"), Actor: admin})
	if !errors.Is(err, ErrEditInFlight) {
		t.Fatalf("expected ErrEditInFlight, got %v", err)
	}
	s.release("evt-001")
}

func TestStripRefreshments_IdempotentAndBatched(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)

	for i := 0; i < 520; i++ {
		notes := "Networking and Refreshments at 9:30 AM"
		if i%2 == 1 {
			notes = "networking and REFRESHMENTS"
		}
		if i >= 510 {
			notes = "Networking at 9:30 AM"
		}
		if _, err := s.Create(ctx, admin, CreateInput{Title: fmt.Sprintf("Event %d", i), Date: "2025-09-12", Notes: notes}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rep, err := s.StripRefreshments(ctx, admin)
	if err != nil {
		t.Fatalf("StripRefreshments: %v", err)
	}
	if rep.Scanned != 520 || rep.Applied != 510 || rep.Skipped != 10 || rep.Failed != 0 {
		t.Fatalf("unexpected report %#v", rep)
	}
	if len(repo.batches) != 2 || len(repo.batches[0]) != 500 || len(repo.batches[1]) != 10 {
		t.Fatalf("unexpected batching: %d batches", len(repo.batches))
	}

	e, _ := s.Get(ctx, "evt-001")
	if e.Notes != "Networking at 9:30 AM" {
		t.Fatalf("unexpected cleaned notes %q", e.Notes)
	}
	e, _ = s.Get(ctx, "evt-002")
	if e.Notes != "Networking" {
		t.Fatalf("unexpected cleaned notes %q", e.Notes)
	}

	rep, _ = s.StripRefreshments(ctx, admin)
	if rep.Applied != 0 || rep.Skipped != 520 {
		t.Fatalf("second run should be a no-op, got %#v", rep)
	}
}

func TestStripRefreshments_BatchFailureIsCounted(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	s := newTestService(repo)
	_, _ = s.Create(ctx, admin, CreateInput{Title: "A", Date: "2025-09-12", Notes: "Networking and refreshments"})
	repo.failPatch = errors.New("quota exceeded")

	rep, err := s.StripRefreshments(ctx, admin)
	if err != nil {
		t.Fatalf("item failures must not fail the task: %v", err)
	}
	if rep.Failed != 1 || rep.Applied != 0 || len(rep.Errors) != 1 {
		t.Fatalf("unexpected report %#v", rep)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newTestRepo())

	rep, err := s.Seed(ctx, admin, DefaultCalendar())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if rep.Applied != 6 || rep.Skipped != 0 {
		t.Fatalf("unexpected first seed %#v", rep)
	}

	rep, _ = s.Seed(ctx, admin, DefaultCalendar())
	if rep.Applied != 0 || rep.Skipped != 6 {
		t.Fatalf("unexpected second seed %#v", rep)
	}

	all, _ := s.List(ctx)
	luncheon := all[len(all)-1]
	if luncheon.Title != "Annual Luncheon" || luncheon.Location != "TBA" {
		t.Fatalf("unexpected last event %#v", luncheon)
	}
}
