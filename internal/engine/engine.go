// Package engine defines the interface to the full-text index. Implementations
// normalize their backend's failures into the shared error taxonomy:
// ErrIndexUnavailable for transient faults, ErrIndexRejected for requests the
// index refuses permanently.
package engine

import (
	"context"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
)

// Query describes one search against the index, independent of the backend.
type Query struct {
	// Keywords is the raw search input. Empty means match-all.
	Keywords string

	// Fields are the document fields to match against. For text fields the
	// engine uses their word-start variant so matches anchor at word
	// boundaries.
	Fields []string

	// Fuzziness is the maximum edit distance tolerated per term. 0 disables
	// fuzzy matching.
	Fuzziness int

	// Filters are conjunctive exact-match constraints.
	Filters []Filter

	// Limit caps the number of hits returned.
	Limit int

	// Source restricts which document fields each hit carries. Nil returns
	// the full document.
	Source []string
}

// Filter is one exact-match constraint. Exactly one of Equals or Exists is
// set: Equals requires the field to hold that value, Exists requires the
// field to be present and non-null (or absent/null when false).
type Filter struct {
	Field  string
	Equals any
	Exists *bool
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Equals: value}
}

// NotNull builds a presence filter.
func NotNull(field string) Filter {
	t := true
	return Filter{Field: field, Exists: &t}
}

// Hit is one search result: the document id plus the requested source fields.
// Results are never hydrated from the relational store.
type Hit struct {
	ID     string
	Fields map[string]any
}

// Result is the outcome of a search, hits in relevance order.
type Result struct {
	Hits   []Hit
	Total  int
	TookMs int64
}

// Engine indexes and searches product documents.
type Engine interface {
	// Upsert writes the document keyed by id, replacing any previous version.
	Upsert(ctx context.Context, id string, doc *domain.Document) error

	// Delete removes the document. Deleting an absent document is not an error.
	Delete(ctx context.Context, id string) error

	// Search executes the query and returns hits in relevance order.
	Search(ctx context.Context, query *Query) (*Result, error)

	// CreateOrReprovision makes the index exist with exactly the given
	// configuration. An existing index cannot be redefined in place, so
	// implementations provision a fresh index and switch over atomically;
	// the caller is responsible for re-populating documents afterwards.
	CreateOrReprovision(ctx context.Context, config map[string]any) error

	// EnsureIndex provisions the index with the given configuration only if
	// it does not exist yet. Safe to call on every boot.
	EnsureIndex(ctx context.Context, config map[string]any) error

	// Ping reports whether the index backend is reachable.
	Ping(ctx context.Context) error
}
