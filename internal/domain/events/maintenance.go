package events

import (
	"context"
	"regexp"
	"strings"

	"github.com/rahaft/bcasco-site/internal/domain/identity"
)

// Report cuenta el resultado por ítem de una tarea de mantenimiento.
// Los fallos por ítem no abortan la tarea.
type Report struct {
	Scanned int      `json:"scanned"`
	Applied int      `json:"applied"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

var refreshmentsRE = regexp.MustCompile(`(?i)Networking and Refreshments`)

// StripRefreshmentsText reemplaza "Networking and Refreshments" por "Networking".
func StripRefreshmentsText(notes string) string {
	return refreshmentsRE.ReplaceAllString(notes, "Networking")
}

// StripRefreshments limpia las notas de todos los eventos. Es idempotente:
// los eventos ya limpios se cuentan como skipped. Escribe en lotes de MaxBatch.
func (s *Service) StripRefreshments(ctx context.Context, actor *identity.Identity) (Report, error) {
	if err := s.policy.Require(actor); err != nil {
		return Report{}, err
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	patches := make([]Patch, 0)
	for _, e := range items {
		rep.Scanned++
		cleaned := StripRefreshmentsText(e.Notes)
		if cleaned == e.Notes {
			rep.Skipped++
			continue
		}
		patches = append(patches, Patch{EventID: e.ID, Field: FieldNotes, Value: cleaned, UpdatedBy: actor.NormalizedEmail()})
	}

	for start := 0; start < len(patches); start += MaxBatch {
		end := min(start+MaxBatch, len(patches))
		chunk := patches[start:end]
		if err := s.repo.ApplyPatches(ctx, chunk); err != nil {
			rep.Failed += len(chunk)
			rep.Errors = append(rep.Errors, err.Error())
			s.log.Error("strip refreshments batch failed", map[string]any{"size": len(chunk), "error": err})
			continue
		}
		rep.Applied += len(chunk)
	}

	s.log.Info("strip refreshments done", map[string]any{
		"scanned": rep.Scanned,
		"updated": rep.Applied,
		"skipped": rep.Skipped,
		"failed":  rep.Failed,
	})
	return rep, nil
}

// Seed crea los eventos que falten. Un evento ya existe si coincide título y fecha.
func (s *Service) Seed(ctx context.Context, actor *identity.Identity, inputs []CreateInput) (Report, error) {
	if err := s.policy.Require(actor); err != nil {
		return Report{}, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return Report{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[seedKey(e.Title, e.Date)] = true
	}

	var rep Report
	for _, in := range inputs {
		rep.Scanned++
		k := seedKey(in.Title, in.Date)
		if seen[k] {
			rep.Skipped++
			continue
		}
		if _, err := s.Create(ctx, actor, in); err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, in.Title+": "+err.Error())
			s.log.Warn("seed event failed", map[string]any{"title": in.Title, "date": in.Date, "error": err})
			continue
		}
		seen[k] = true
		rep.Applied++
	}

	s.log.Info("seed events done", map[string]any{
		"scanned": rep.Scanned,
		"created": rep.Applied,
		"skipped": rep.Skipped,
		"failed":  rep.Failed,
	})
	return rep, nil
}

func seedKey(title, date string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.TrimSpace(date)
}

const (
	randallstown = "Randallstown Community Center, 3505 Resource Drive, Randallstown, 21133"
	morningSlot  = "10:00 AM - 12:00 Noon"
	networking   = "Networking at 9:30 AM"
)

// DefaultCalendar es el calendario 2025-2026.
func DefaultCalendar() []CreateInput {
	return []CreateInput{
		{Title: "Let's Get Started Improving the Lives of Seniors", Date: "2025-09-12", Time: morningSlot, Location: randallstown, Notes: networking},
		{Title: "The Unmet Needs of Senior Veterans", Date: "2025-11-21", Time: morningSlot, Location: randallstown, Notes: networking},
		{Title: "Medicaid Waiver Home and Community Based Services, The Good and the Bad", Date: "2026-01-09", Time: morningSlot, Location: randallstown, Notes: networking},
		{Title: "Annual Senior Educational Resource Event", Date: "2026-03-13", Time: morningSlot, Location: randallstown, Notes: networking},
		{Title: "Senior State Legislative Roundup", Date: "2026-05-08", Time: morningSlot, Location: randallstown, Notes: networking},
		{Title: "Annual Luncheon", Date: "2026-06-12", Time: "Time/Location TBA", Location: "TBA", Notes: "Annual Luncheon – Time/Location TBA"},
	}
}
