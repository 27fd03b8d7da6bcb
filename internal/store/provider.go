package store

import (
	"context"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
)

// StaticProvider serves a fixed store configuration, for development and
// tests where no store database exists.
type StaticProvider struct {
	cfg domain.StoreConfig
}

// NewStaticProvider creates a provider that always returns cfg.
func NewStaticProvider(cfg domain.StoreConfig) *StaticProvider {
	return &StaticProvider{cfg: cfg}
}

// Current returns the fixed configuration.
func (p *StaticProvider) Current(context.Context) (domain.StoreConfig, error) {
	return p.cfg, nil
}
