// Package memory implements the index engine on an in-process map. It mimics
// the word-start matching and filter semantics of the real backend closely
// enough for tests and local development.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	"github.com/softmaker-io/spree-searchkick/internal/engine"
)

// Engine is an in-memory implementation of engine.Engine. Thread-safe.
type Engine struct {
	mu     sync.RWMutex
	docs   map[string]map[string]any
	order  []string // insertion order, stands in for relevance
	config map[string]any
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{docs: make(map[string]map[string]any)}
}

// Upsert stores the flattened document fields keyed by id.
func (e *Engine) Upsert(_ context.Context, id string, doc *domain.Document) error {
	fields, err := doc.Fields()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.docs[id]; !exists {
		e.order = append(e.order, id)
	}
	e.docs[id] = fields
	return nil
}

// Delete removes the document. Absent documents are ignored.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.docs[id]; !exists {
		return nil
	}
	delete(e.docs, id)
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Search matches documents in insertion order.
func (e *Engine) Search(_ context.Context, query *engine.Query) (*engine.Result, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query.Keywords))

	hits := make([]engine.Hit, 0)
	total := 0
	for _, id := range e.order {
		fields := e.docs[id]
		if !matchesFilters(fields, query.Filters) {
			continue
		}
		if !matchesTerms(fields, query.Fields, terms) {
			continue
		}
		total++
		if query.Limit > 0 && len(hits) >= query.Limit {
			continue
		}
		hits = append(hits, engine.Hit{ID: id, Fields: projectFields(fields, query.Source)})
	}

	return &engine.Result{
		Hits:   hits,
		Total:  total,
		TookMs: time.Since(start).Milliseconds(),
	}, nil
}

// CreateOrReprovision resets the engine to an empty index with the given
// configuration, matching the real backend where a reprovision starts from an
// unpopulated index.
func (e *Engine) CreateOrReprovision(_ context.Context, config map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs = make(map[string]map[string]any)
	e.order = nil
	e.config = config
	return nil
}

// EnsureIndex stores the configuration if none is held yet.
func (e *Engine) EnsureIndex(ctx context.Context, config map[string]any) error {
	e.mu.RLock()
	provisioned := e.config != nil
	e.mu.RUnlock()
	if provisioned {
		return nil
	}
	return e.CreateOrReprovision(ctx, config)
}

// Config returns the configuration of the last provisioning, for tests.
func (e *Engine) Config() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// Ping always succeeds.
func (e *Engine) Ping(context.Context) error { return nil }

// Document returns the stored field map for id, for tests.
func (e *Engine) Document(id string) (map[string]any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fields, ok := e.docs[id]
	return fields, ok
}

// matchesTerms reports whether every query term prefix-matches a word in at
// least one of the given fields. No terms means match-all.
func matchesTerms(fields map[string]any, searchFields, terms []string) bool {
	if len(terms) == 0 {
		return true
	}

	words := make([]string, 0, 8)
	for _, f := range searchFields {
		s, ok := fields[f].(string)
		if !ok {
			continue
		}
		words = append(words, strings.Fields(strings.ToLower(s))...)
	}

	for _, term := range terms {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesFilters(fields map[string]any, filters []engine.Filter) bool {
	for _, f := range filters {
		v, present := fields[f.Field]
		switch {
		case f.Equals != nil:
			if !present || !jsonEqual(v, f.Equals) {
				return false
			}
		case f.Exists != nil && *f.Exists:
			if !present || v == nil {
				return false
			}
		case f.Exists != nil:
			if present && v != nil {
				return false
			}
		}
	}
	return true
}

// jsonEqual compares a stored field value (JSON types after a round trip)
// against a filter value given as a Go literal.
func jsonEqual(stored, want any) bool {
	if sn, ok := asFloat(stored); ok {
		if wn, ok := asFloat(want); ok {
			return sn == wn
		}
		return false
	}
	return stored == want
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func projectFields(fields map[string]any, source []string) map[string]any {
	if source == nil {
		out := make(map[string]any, len(fields))
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	out := make(map[string]any, len(source))
	for _, f := range source {
		if v, ok := fields[f]; ok {
			out[f] = v
		}
	}
	return out
}
