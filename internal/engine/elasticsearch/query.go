package elasticsearch

import (
	"github.com/softmaker-io/spree-searchkick/internal/engine"
)

// buildSearchBody translates a backend-neutral query into the Elasticsearch
// query DSL. Text matching runs against the word_start subfield of each
// requested field so terms match at word boundaries rather than anywhere in
// the token.
func buildSearchBody(q *engine.Query) map[string]any {
	var must any
	if q.Keywords == "" {
		must = map[string]any{"match_all": map[string]any{}}
	} else {
		fields := make([]string, 0, len(q.Fields)*2)
		for _, f := range q.Fields {
			// The exact field outranks its word-start variant so full-word
			// matches sort first.
			fields = append(fields, f+"^2", f+".word_start")
		}
		match := map[string]any{
			"query":    q.Keywords,
			"fields":   fields,
			"type":     "best_fields",
			"operator": "and",
		}
		if q.Fuzziness > 0 {
			match["fuzziness"] = q.Fuzziness
			match["prefix_length"] = 1
		}
		must = map[string]any{"multi_match": match}
	}

	boolQuery := map[string]any{"must": []any{must}}
	if filters := buildFilters(q.Filters); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  q.Limit,
	}
	if q.Source != nil {
		body["_source"] = q.Source
	}
	return body
}

func buildFilters(filters []engine.Filter) []any {
	out := make([]any, 0, len(filters))
	for _, f := range filters {
		switch {
		case f.Equals != nil:
			out = append(out, map[string]any{
				"term": map[string]any{f.Field: f.Equals},
			})
		case f.Exists != nil && *f.Exists:
			out = append(out, map[string]any{
				"exists": map[string]any{"field": f.Field},
			})
		case f.Exists != nil:
			out = append(out, map[string]any{
				"bool": map[string]any{
					"must_not": []any{
						map[string]any{"exists": map[string]any{"field": f.Field}},
					},
				},
			})
		}
	}
	return out
}
