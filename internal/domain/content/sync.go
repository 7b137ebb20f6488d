package content

import (
	"context"
	"fmt"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"
)

// SyncClient persiste el contenido de una región. No reintenta.
type SyncClient struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewSyncClient(repo Repository, log logger.Logger, m *metrics.Metrics) *SyncClient {
	if log == nil {
		log = logger.Nop()
	}
	return &SyncClient{repo: repo, log: log, metrics: m, now: time.Now}
}

// Commit escribe newContent con merge y firma del actor. El resultado se aplica
// a la región con reconcile.
func (s *SyncClient) Commit(ctx context.Context, key RegionKey, newContent string, actor *identity.Identity) (Result, error) {
	rec := Record{
		Page:      key.Page,
		RegionID:  key.RegionID,
		Content:   newContent,
		UpdatedBy: actor.NormalizedEmail(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.metrics.Commit(string(ResultError))
		s.log.Error("content commit failed", map[string]any{
			"page":       key.Page,
			"region_id":  key.RegionID,
			"updated_by": rec.UpdatedBy,
			"error":      err,
		})
		return ResultError, fmt.Errorf("commit %s: %w", key, err)
	}

	s.metrics.Commit(string(ResultSaved))
	s.log.Info("content committed", map[string]any{
		"page":       key.Page,
		"region_id":  key.RegionID,
		"updated_by": rec.UpdatedBy,
	})
	return ResultSaved, nil
}

// reconcile aplica el desenlace del commit sobre la región.
// Éxito: el baseline pasa a ser lo escrito. Fallo: se descarta la edición.
func (s *SyncClient) reconcile(r *Region, written string, result Result, err error) {
	switch result {
	case ResultSaved:
		r.Baseline = written
		r.Status = StatusSaved
		r.SavedAt = s.now()
		r.LastError = ""
	case ResultError:
		r.Current = r.Baseline
		r.Status = StatusError
		if err != nil {
			r.LastError = err.Error()
		}
	}
}
