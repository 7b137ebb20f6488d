package documents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/content"
	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

const CollectionPageContent = "pageContent"

// ErrKeyCollision: "<page>_<regionId>" ya pertenece a otra región
// (por ejemplo home/a_b y home_a/b comparten key).
var ErrKeyCollision = errors.New("page content key belongs to another region")

// ContentRepo guarda cada región en pageContent/<page>_<regionId>.
type ContentRepo struct {
	store docstore.Store
}

func NewContentRepo(store docstore.Store) *ContentRepo {
	return &ContentRepo{store: store}
}

var _ content.Repository = (*ContentRepo)(nil)

type contentDoc struct {
	Content   string    `json:"content"`
	Page      string    `json:"page"`
	ContentID string    `json:"contentId"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

func (r *ContentRepo) Get(ctx context.Context, key content.RegionKey) (content.Record, error) {
	doc, err := r.store.Get(ctx, CollectionPageContent, key.RecordKey())
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return content.Record{}, content.ErrRecordNotFound
		}
		return content.Record{}, err
	}
	return decodeContent(doc, key)
}

// Save hace merge: sólo pisa los campos del registro y deja el resto del documento.
// Un documento de otra región bajo la misma key no se pisa.
func (r *ContentRepo) Save(ctx context.Context, rec content.Record) error {
	key := rec.Key()
	doc, err := r.store.Get(ctx, CollectionPageContent, key.RecordKey())
	switch {
	case errors.Is(err, docstore.ErrNotFound):
	case err != nil:
		return err
	default:
		var d contentDoc
		if err := doc.Decode(&d); err != nil {
			return fmt.Errorf("decode page content %s: %w", key, err)
		}
		if !d.belongsTo(key) {
			return fmt.Errorf("%w: %s is %s/%s", ErrKeyCollision, key.RecordKey(), d.Page, d.ContentID)
		}
	}
	return r.store.Set(ctx, CollectionPageContent, key.RecordKey(), map[string]any{
		"content":   rec.Content,
		"page":      rec.Page,
		"contentId": rec.RegionID,
		"updatedAt": docstore.ServerTimestamp,
		"updatedBy": rec.UpdatedBy,
	}, true)
}

func (r *ContentRepo) ListPage(ctx context.Context, page string) ([]content.Record, error) {
	docs, err := r.store.List(ctx, CollectionPageContent)
	if err != nil {
		return nil, err
	}
	out := make([]content.Record, 0)
	for _, doc := range docs {
		var d contentDoc
		if err := doc.Decode(&d); err != nil {
			return nil, err
		}
		if d.Page != page {
			continue
		}
		out = append(out, content.Record{
			Page:      d.Page,
			RegionID:  d.ContentID,
			Content:   d.Content,
			UpdatedAt: d.UpdatedAt,
			UpdatedBy: d.UpdatedBy,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegionID < out[j].RegionID })
	return out, nil
}

// belongsTo: un documento sin page ni contentId (cargado a mano) se acepta.
func (d contentDoc) belongsTo(key content.RegionKey) bool {
	if d.Page == "" && d.ContentID == "" {
		return true
	}
	return d.Page == key.Page && d.ContentID == key.RegionID
}

func decodeContent(doc docstore.Document, key content.RegionKey) (content.Record, error) {
	var d contentDoc
	if err := doc.Decode(&d); err != nil {
		return content.Record{}, fmt.Errorf("decode page content %s: %w", key, err)
	}
	if !d.belongsTo(key) {
		return content.Record{}, content.ErrRecordNotFound
	}
	return content.Record{
		Page:      key.Page,
		RegionID:  key.RegionID,
		Content:   d.Content,
		UpdatedAt: d.UpdatedAt,
		UpdatedBy: d.UpdatedBy,
	}, nil
}
