package documents

import (
	"context"
	"errors"
	"strings"

	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

const (
	CollectionSettings = "settings"
	KeyGoogleSheets    = "googleSheets"
)

// SettingsRepo lee y escribe settings/googleSheets.
type SettingsRepo struct {
	store docstore.Store
}

func NewSettingsRepo(store docstore.Store) *SettingsRepo {
	return &SettingsRepo{store: store}
}

// WebAppURL devuelve la URL del relay de la planilla, o "" si no está configurada.
func (r *SettingsRepo) WebAppURL(ctx context.Context) (string, error) {
	doc, err := r.store.Get(ctx, CollectionSettings, KeyGoogleSheets)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	v, _ := doc.Fields["webAppUrl"].(string)
	return strings.TrimSpace(v), nil
}

func (r *SettingsRepo) SetWebAppURL(ctx context.Context, url string) error {
	return r.store.Set(ctx, CollectionSettings, KeyGoogleSheets, map[string]any{
		"webAppUrl": strings.TrimSpace(url),
		"updatedAt": docstore.ServerTimestamp,
	}, true)
}
