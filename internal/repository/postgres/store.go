package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	"github.com/softmaker-io/spree-searchkick/internal/store"
	"github.com/softmaker-io/spree-searchkick/pkg/database"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

// StoreProvider implements repository.StoreProvider using PostgreSQL. The
// default store row holds the locale configuration the index schema derives
// from.
type StoreProvider struct {
	pool database.DBTX
}

// NewStoreProvider creates a new PostgreSQL-backed store provider.
func NewStoreProvider(pool database.DBTX) *StoreProvider {
	return &StoreProvider{pool: pool}
}

// Current returns the configuration of the default store. Supported locales
// are stored as a comma-separated list.
func (p *StoreProvider) Current(ctx context.Context) (domain.StoreConfig, error) {
	query := `
		SELECT default_locale, COALESCE(supported_locales, '')
		FROM stores
		WHERE is_default
		ORDER BY created_at
		LIMIT 1`

	var (
		cfg              domain.StoreConfig
		supportedLocales string
	)
	err := p.pool.QueryRow(ctx, query).Scan(&cfg.DefaultLocale, &supportedLocales)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoreConfig{}, apperrors.DataUnavailable(errors.New("no default store configured"))
	}
	if err != nil {
		return domain.StoreConfig{}, apperrors.DataUnavailable(fmt.Errorf("load store config: %w", err))
	}

	cfg.SupportedLocales = store.ParseSupportedLocales(supportedLocales)
	return cfg, nil
}
