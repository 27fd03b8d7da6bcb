// Package repository defines the read-side contracts against the catalog
// source of truth and their PostgreSQL implementations.
package repository

import (
	"context"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
)

// CatalogRepository loads product graphs for document synthesis. LoadProduct
// is all-or-nothing: either the full association graph is returned or an
// error, never a partial snapshot.
type CatalogRepository interface {
	// LoadProduct returns the product and every association synthesis reads.
	// ErrNotFound when the product does not exist, ErrDataUnavailable when
	// any part of the graph cannot be read.
	LoadProduct(ctx context.Context, id string) (*domain.ProductGraph, error)

	// ListProductIDs returns the ids of all products, for full reindexing.
	ListProductIDs(ctx context.Context) ([]string, error)
}

// StoreProvider exposes the current store configuration. The locale set it
// yields must match the one the index schema was built with.
type StoreProvider interface {
	Current(ctx context.Context) (domain.StoreConfig, error)
}
