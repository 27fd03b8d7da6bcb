// Package elasticsearch implements the index engine on Elasticsearch. The
// index lives behind an alias; reprovisioning creates a fresh timestamped
// physical index and swaps the alias atomically, because settings and
// mappings cannot be redefined on a live index.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sony/gobreaker/v2"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	"github.com/softmaker-io/spree-searchkick/internal/engine"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

// Engine is the Elasticsearch-backed implementation of engine.Engine. All
// calls run through a circuit breaker so a struggling cluster sheds load
// instead of queueing it.
type Engine struct {
	client  *elasticsearch.Client
	alias   string
	breaker *gobreaker.CircuitBreaker[*esapi.Response]
	logger  *slog.Logger
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// New creates an Elasticsearch engine for the given alias.
func New(esURL, alias string, logger *slog.Logger) (*Engine, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	settings := gobreaker.Settings{
		Name:        "elasticsearch",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Engine{
		client:  client,
		alias:   alias,
		breaker: gobreaker.NewCircuitBreaker[*esapi.Response](settings),
		logger:  logger,
	}, nil
}

// do runs one Elasticsearch call through the circuit breaker. Transport
// failures, 5xx and 429 responses count against the breaker and come back
// normalized as ErrIndexUnavailable; any other response is returned for the
// caller to classify.
func (e *Engine) do(op string, call func() (*esapi.Response, error)) (*esapi.Response, error) {
	res, err := e.breaker.Execute(func() (*esapi.Response, error) {
		res, err := call()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if res.StatusCode >= 500 || res.StatusCode == 429 {
			reason := errorReason(res)
			_ = res.Body.Close()
			return nil, fmt.Errorf("%s: %s", op, reason)
		}
		return res, nil
	})
	if err != nil {
		return nil, apperrors.IndexUnavailable(err)
	}
	return res, nil
}

// errorReason extracts a human-readable reason from an error response body.
func errorReason(res *esapi.Response) string {
	var errResp esErrorResponse
	if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		return fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Sprintf("unexpected status %s", res.Status())
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.do("ping", func() (*esapi.Response, error) {
		return e.client.Ping(e.client.Ping.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return apperrors.IndexUnavailable(fmt.Errorf("ping: %s", errorReason(res)))
	}
	return nil
}

// Upsert writes the document under the alias, keyed by id.
func (e *Engine) Upsert(ctx context.Context, id string, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", id, err)
	}

	res, err := e.do("index document", func() (*esapi.Response, error) {
		return e.client.Index(
			e.alias,
			bytes.NewReader(data),
			e.client.Index.WithDocumentID(id),
			e.client.Index.WithContext(ctx),
		)
	})
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return apperrors.IndexRejected(fmt.Sprintf("index document %s: %s", id, errorReason(res)))
	}

	e.logger.Debug("indexed document", slog.String("id", id))
	return nil
}

// Delete removes the document by id. A 404 is not an error.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.do("delete document", func() (*esapi.Response, error) {
		return e.client.Delete(e.alias, id, e.client.Delete.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return apperrors.IndexRejected(fmt.Sprintf("delete document %s: %s", id, errorReason(res)))
	}

	e.logger.Debug("deleted document", slog.String("id", id))
	return nil
}

// Search executes the query and returns hits in relevance order.
func (e *Engine) Search(ctx context.Context, query *engine.Query) (*engine.Result, error) {
	body, err := json.Marshal(buildSearchBody(query))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := e.do("search", func() (*esapi.Response, error) {
		return e.client.Search(
			e.client.Search.WithIndex(e.alias),
			e.client.Search.WithBody(bytes.NewReader(body)),
			e.client.Search.WithContext(ctx),
			e.client.Search.WithTrackTotalHits(true),
		)
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, apperrors.IndexRejected(fmt.Sprintf("search: %s", errorReason(res)))
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, apperrors.IndexUnavailable(fmt.Errorf("decode search response: %w", err))
	}

	hits := make([]engine.Hit, 0, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		hits = append(hits, engine.Hit{ID: h.ID, Fields: h.Source})
	}

	return &engine.Result{
		Hits:   hits,
		Total:  esResp.Hits.Total.Value,
		TookMs: int64(esResp.Took),
	}, nil
}

// CreateOrReprovision provisions a fresh timestamped physical index with the
// given configuration and swaps the alias to it in one atomic aliases call,
// then drops the superseded physical indices. Documents are not carried over;
// the caller re-enqueues every entity after a reprovision.
func (e *Engine) CreateOrReprovision(ctx context.Context, config map[string]any) error {
	physical := fmt.Sprintf("%s_%s", e.alias, time.Now().UTC().Format("20060102150405.000000"))

	body, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal index config: %w", err)
	}

	res, err := e.do("create index", func() (*esapi.Response, error) {
		return e.client.Indices.Create(
			physical,
			e.client.Indices.Create.WithBody(bytes.NewReader(body)),
			e.client.Indices.Create.WithContext(ctx),
		)
	})
	if err != nil {
		return err
	}
	if res.IsError() {
		reason := errorReason(res)
		_ = res.Body.Close()
		return apperrors.IndexRejected(fmt.Sprintf("create index %s: %s", physical, reason))
	}
	_ = res.Body.Close()

	previous, err := e.aliasedIndices(ctx)
	if err != nil {
		return err
	}

	if err := e.swapAlias(ctx, previous, physical); err != nil {
		return err
	}

	if len(previous) > 0 {
		if err := e.dropIndices(ctx, previous); err != nil {
			// The alias already points at the new index; stale physical
			// indices only cost disk. Log and carry on.
			e.logger.Warn("could not drop superseded indices",
				slog.Any("indices", previous), slog.String("error", err.Error()))
		}
	}

	e.logger.Info("index provisioned",
		slog.String("alias", e.alias), slog.String("physical", physical))
	return nil
}

// EnsureIndex provisions the alias only when nothing is behind it yet, so
// restarts do not wipe a populated index.
func (e *Engine) EnsureIndex(ctx context.Context, config map[string]any) error {
	existing, err := e.aliasedIndices(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		e.logger.Info("index already provisioned",
			slog.String("alias", e.alias), slog.Any("physical", existing))
		return nil
	}
	return e.CreateOrReprovision(ctx, config)
}

// aliasedIndices returns the physical indices the alias currently points at.
func (e *Engine) aliasedIndices(ctx context.Context) ([]string, error) {
	res, err := e.do("get alias", func() (*esapi.Response, error) {
		return e.client.Indices.GetAlias(
			e.client.Indices.GetAlias.WithName(e.alias),
			e.client.Indices.GetAlias.WithContext(ctx),
		)
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, apperrors.IndexRejected(fmt.Sprintf("get alias %s: %s", e.alias, errorReason(res)))
	}

	var byIndex map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&byIndex); err != nil {
		return nil, apperrors.IndexUnavailable(fmt.Errorf("decode alias response: %w", err))
	}
	indices := make([]string, 0, len(byIndex))
	for name := range byIndex {
		indices = append(indices, name)
	}
	return indices, nil
}

// swapAlias removes the alias from every previous index and adds it to next
// in a single _aliases call, so readers never observe the alias missing.
func (e *Engine) swapAlias(ctx context.Context, previous []string, next string) error {
	actions := make([]any, 0, len(previous)+1)
	for _, idx := range previous {
		actions = append(actions, map[string]any{
			"remove": map[string]any{"index": idx, "alias": e.alias},
		})
	}
	actions = append(actions, map[string]any{
		"add": map[string]any{"index": next, "alias": e.alias},
	})

	body, err := json.Marshal(map[string]any{"actions": actions})
	if err != nil {
		return fmt.Errorf("marshal alias actions: %w", err)
	}

	res, err := e.do("update aliases", func() (*esapi.Response, error) {
		return e.client.Indices.UpdateAliases(
			bytes.NewReader(body),
			e.client.Indices.UpdateAliases.WithContext(ctx),
		)
	})
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return apperrors.IndexRejected(fmt.Sprintf("update aliases: %s", errorReason(res)))
	}
	return nil
}

func (e *Engine) dropIndices(ctx context.Context, indices []string) error {
	res, err := e.do("delete indices", func() (*esapi.Response, error) {
		return e.client.Indices.Delete(indices, e.client.Indices.Delete.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return apperrors.IndexRejected(fmt.Sprintf("delete indices: %s", errorReason(res)))
	}
	return nil
}
