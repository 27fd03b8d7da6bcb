// Package synth turns a product graph into the flat, denormalized document
// the search index stores. Synthesis is deterministic: the same graph and
// locale set always produce the same document.
package synth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	"github.com/softmaker-io/spree-searchkick/internal/index"
	"github.com/softmaker-io/spree-searchkick/internal/repository"
	"github.com/softmaker-io/spree-searchkick/internal/store"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

// ExtensionHook contributes additional document fields for a product. Hook
// fields are merged last and win over everything else. The default hook
// contributes nothing.
type ExtensionHook func(ctx context.Context, graph *domain.ProductGraph) (map[string]any, error)

// Synthesizer builds index documents from product graphs. It captures the
// locale set the index schema was provisioned with and refuses to synthesize
// if the store configuration has since diverged, because a document carrying
// fields the schema never declared would silently corrupt the index mapping.
type Synthesizer struct {
	repo          repository.CatalogRepository
	stores        repository.StoreProvider
	schemaLocales []string
	hook          ExtensionHook
	log           *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithExtensionHook installs a hook contributing extra document fields.
func WithExtensionHook(hook ExtensionHook) Option {
	return func(s *Synthesizer) { s.hook = hook }
}

// NewSynthesizer creates a synthesizer bound to the locale set the schema was
// built with.
func NewSynthesizer(
	repo repository.CatalogRepository,
	stores repository.StoreProvider,
	schemaLocales []string,
	log *slog.Logger,
	opts ...Option,
) *Synthesizer {
	s := &Synthesizer{
		repo:          repo,
		stores:        stores,
		schemaLocales: append([]string(nil), schemaLocales...),
		log:           log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SynthesizeByID loads the product graph and synthesizes its document.
// ErrNotFound propagates unchanged so the caller can remove the document.
func (s *Synthesizer) SynthesizeByID(ctx context.Context, id string) (*domain.Document, error) {
	graph, err := s.repo.LoadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Synthesize(ctx, graph)
}

// Synthesize builds the document for an already-loaded graph. It re-resolves
// the active locale set from the store provider and fails with
// ErrConfigInconsistent if it no longer matches the schema's locale set.
func (s *Synthesizer) Synthesize(ctx context.Context, graph *domain.ProductGraph) (*domain.Document, error) {
	if err := s.checkLocales(ctx); err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:          graph.Product.ID,
		Slug:        graph.Product.Slug,
		Active:      graph.Product.Available,
		InStock:     graph.Product.InStock,
		CreatedAt:   graph.Product.CreatedAt,
		UpdatedAt:   graph.Product.UpdatedAt,
		Price:       graph.Product.Price,
		Currency:    graph.Product.Currency,
		Conversions: graph.Conversions,
		TotalOnHand: graph.TotalOnHand,
		SKUs:        collectSKUs(graph.Variants),
	}
	doc.TaxonIDs, doc.TaxonNames = collectTaxons(graph.TaxonLineage)

	for _, locale := range s.schemaLocales {
		tr := graph.Translation(locale)
		doc.Set(index.FieldName("name", locale), translated(tr, func(t *domain.Translation) string { return t.Name }))
		doc.Set(index.FieldName("description", locale), translated(tr, func(t *domain.Translation) string { return t.Description }))
		doc.Set(index.FieldName("short_description", locale), translated(tr, func(t *domain.Translation) string { return t.ShortDescription }))
	}

	doc.Merge(expandOptionTypes(graph, s.log))
	doc.Merge(expandProperties(graph, s.log))

	if s.hook != nil {
		extra, err := s.hook(ctx, graph)
		if err != nil {
			return nil, fmt.Errorf("extension hook for product %s: %w", graph.Product.ID, err)
		}
		doc.Merge(extra)
	}

	return doc, nil
}

func (s *Synthesizer) checkLocales(ctx context.Context) error {
	cfg, err := s.stores.Current(ctx)
	if err != nil {
		return apperrors.DataUnavailable(err)
	}
	current := store.ActiveLocales(cfg)
	if !store.SameLocales(current, s.schemaLocales) {
		return fmt.Errorf("%w: schema built for %v, store now configured for %v",
			apperrors.ErrConfigInconsistent, s.schemaLocales, current)
	}
	return nil
}

// collectSKUs returns the SKUs of all variants, master included, in variant
// order with empties dropped.
func collectSKUs(variants []domain.Variant) []string {
	skus := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.SKU != "" {
			skus = append(skus, v.SKU)
		}
	}
	return skus
}

// collectTaxons deduplicates the lineage by taxon id, keeping first
// occurrence so ids and names stay index-paired.
func collectTaxons(lineage []domain.Taxon) (ids, names []string) {
	ids = make([]string, 0, len(lineage))
	names = make([]string, 0, len(lineage))
	seen := make(map[string]bool, len(lineage))
	for _, t := range lineage {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
		names = append(names, t.Name)
	}
	return ids, names
}

// translated extracts one attribute from a translation, or nil when the
// locale has no translation. The nil keeps the field present as an explicit
// null in the document.
func translated(tr *domain.Translation, get func(*domain.Translation) string) any {
	if tr == nil {
		return nil
	}
	return get(tr)
}
