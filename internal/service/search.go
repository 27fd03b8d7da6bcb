// Package service implements the query façade and the administrative
// operations over the index: autocomplete, full reindexing, and settings
// patches.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/softmaker-io/spree-searchkick/internal/engine"
	"github.com/softmaker-io/spree-searchkick/internal/index"
	"github.com/softmaker-io/spree-searchkick/internal/repository"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
	"github.com/softmaker-io/spree-searchkick/pkg/logger"
)

const (
	// AutocompleteLimit caps suggestion lists regardless of caller input.
	AutocompleteLimit = 10

	// autocompleteFuzziness is the maximum edit distance tolerated per term.
	autocompleteFuzziness = 2
)

// Resyncer is the slice of the sync coordinator the service uses.
type Resyncer interface {
	OnMutate(entityID string)
	ResyncAll(ids []string)
}

// SearchService answers autocomplete queries and drives reindexing.
type SearchService struct {
	eng      engine.Engine
	repo     repository.CatalogRepository
	registry *index.Registry
	resyncer Resyncer
	logger   *slog.Logger

	fields  []string
	filters []engine.Filter
}

// ServiceOption configures a SearchService.
type ServiceOption func(*SearchService)

// WithAutocompleteFields overrides which document fields autocomplete
// matches and extracts suggestions from.
func WithAutocompleteFields(fields []string) ServiceOption {
	return func(s *SearchService) { s.fields = fields }
}

// WithAutocompleteFilters overrides the fixed filter set applied to every
// autocomplete query.
func WithAutocompleteFilters(filters []engine.Filter) ServiceOption {
	return func(s *SearchService) { s.filters = filters }
}

// NewSearchService creates the service. By default autocomplete matches the
// localized name fields of the given locale set and only surfaces active,
// priced products.
func NewSearchService(
	eng engine.Engine,
	repo repository.CatalogRepository,
	registry *index.Registry,
	resyncer Resyncer,
	locales []string,
	log *slog.Logger,
	opts ...ServiceOption,
) *SearchService {
	s := &SearchService{
		eng:      eng,
		repo:     repo,
		registry: registry,
		resyncer: resyncer,
		logger:   log,
		fields:   index.AutocompleteFields(locales),
		filters: []engine.Filter{
			engine.Eq("active", true),
			engine.NotNull("price"),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Autocomplete returns up to AutocompleteLimit suggestion strings in
// relevance order. Empty keywords browse the full catalog (match-all);
// otherwise terms match at word starts with bounded fuzziness. Results are
// raw index values, never hydrated from storage. On index failure the slice
// is empty, never partial.
func (s *SearchService) Autocomplete(ctx context.Context, keywords string) ([]string, error) {
	keywords = strings.TrimSpace(keywords)

	query := &engine.Query{
		Keywords: keywords,
		Fields:   s.fields,
		Filters:  s.filters,
		Limit:    AutocompleteLimit,
		Source:   s.fields,
	}
	if keywords != "" {
		query.Fuzziness = autocompleteFuzziness
	}

	res, err := s.eng.Search(ctx, query)
	if err != nil {
		logger.WithContext(ctx, s.logger).Error("autocomplete query failed",
			slog.String("keywords", keywords),
			slog.String("error", err.Error()),
		)
		return []string{}, err
	}

	return extractSuggestions(res.Hits, s.fields), nil
}

// extractSuggestions pulls field values out of the hits in relevance order,
// trims them, and drops empties and duplicates.
func extractSuggestions(hits []engine.Hit, fields []string) []string {
	suggestions := make([]string, 0, len(hits))
	seen := make(map[string]bool, len(hits))

	for _, hit := range hits {
		for _, field := range fields {
			value, ok := hit.Fields[field].(string)
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			suggestions = append(suggestions, value)
		}
	}

	if len(suggestions) > AutocompleteLimit {
		suggestions = suggestions[:AutocompleteLimit]
	}
	return suggestions
}

// Reindex schedules a resync of every product and returns how many were
// enqueued. Jobs run asynchronously through the coordinator.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	ids, err := s.repo.ListProductIDs(ctx)
	if err != nil {
		return 0, apperrors.DataUnavailable(err)
	}
	s.resyncer.ResyncAll(ids)

	logger.WithContext(ctx, s.logger).Info("full reindex scheduled", slog.Int("count", len(ids)))
	return len(ids), nil
}

// ApplySettings deep-merges the patch into the held index configuration,
// reprovisions the index with the merged result, and schedules a full
// reindex to repopulate it. Returns the merged configuration.
func (s *SearchService) ApplySettings(ctx context.Context, patch map[string]any) (map[string]any, error) {
	merged, err := s.registry.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}

	if err := s.eng.CreateOrReprovision(ctx, merged); err != nil {
		return nil, err
	}

	if _, err := s.Reindex(ctx); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.logger).Info("index settings applied")
	return merged, nil
}
