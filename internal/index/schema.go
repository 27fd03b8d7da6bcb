// Package index owns the index schema: the per-locale field set derived from
// store configuration, the base index configuration, and the registry through
// which that configuration evolves by deep-merged patches.
package index

import "fmt"

// DefaultIndexName is the default alias under which product documents live.
const DefaultIndexName = "catalog_products"

// ContentAttributes are the localized text attributes of a product. One
// search field exists per attribute per active locale.
var ContentAttributes = []string{"name", "description", "short_description"}

// FieldName returns the document field for a content attribute in a locale,
// e.g. FieldName("name", "en") == "name_en".
func FieldName(attribute, locale string) string {
	return fmt.Sprintf("%s_%s", attribute, locale)
}

// SearchFields returns every localized text-search field for the given
// locale set, grouped by locale in locale-set order. These fields must exist
// in the index schema before any document referencing them is written.
func SearchFields(locales []string) []string {
	fields := make([]string, 0, len(locales)*len(ContentAttributes))
	for _, locale := range locales {
		for _, attr := range ContentAttributes {
			fields = append(fields, FieldName(attr, locale))
		}
	}
	return fields
}

// AutocompleteFields returns the default field selection for autocomplete:
// the localized name field of each active locale.
func AutocompleteFields(locales []string) []string {
	fields := make([]string, 0, len(locales))
	for _, locale := range locales {
		fields = append(fields, FieldName("name", locale))
	}
	return fields
}

// BaseConfig builds the baseline index configuration for the given locale
// set: settings (replicas, word-start analysis chain) and mappings (typed
// fixed fields, per-locale text fields with a word_start subfield, nested
// properties, keyword dynamic template for facet fields).
//
// The result is a plain map so the Registry can deep-merge patches into it;
// the engine client consumes it verbatim at provisioning time.
func BaseConfig(locales []string) map[string]any {
	props := map[string]any{
		"id":       map[string]any{"type": "keyword"},
		"slug":     map[string]any{"type": "keyword"},
		"active":   map[string]any{"type": "boolean"},
		"in_stock": map[string]any{"type": "boolean"},
		"price":    map[string]any{"type": "double"},
		"currency": map[string]any{"type": "keyword"},

		"conversions":   map[string]any{"type": "integer"},
		"total_on_hand": map[string]any{"type": "integer"},

		"created_at": map[string]any{"type": "date"},
		"updated_at": map[string]any{"type": "date"},

		"taxon_ids":   map[string]any{"type": "keyword"},
		"taxon_names": map[string]any{"type": "keyword"},
		"skus":        map[string]any{"type": "keyword"},

		"option_type_ids":   map[string]any{"type": "keyword"},
		"option_type_names": map[string]any{"type": "keyword"},
		"option_value_ids":  map[string]any{"type": "keyword"},

		"property_ids":   map[string]any{"type": "keyword"},
		"property_names": map[string]any{"type": "keyword"},

		// Nested so each {id, name, value} entry keeps its pairing instead
		// of collapsing into parallel arrays.
		"properties": map[string]any{
			"type": "nested",
			"properties": map[string]any{
				"id":    map[string]any{"type": "keyword"},
				"name":  map[string]any{"type": "keyword"},
				"value": map[string]any{"type": "keyword"},
			},
		},
	}

	for _, field := range SearchFields(locales) {
		props[field] = map[string]any{
			"type": "text",
			"fields": map[string]any{
				"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
				"word_start": map[string]any{
					"type":            "text",
					"analyzer":        "word_start_index",
					"search_analyzer": "word_start_search",
				},
			},
		}
	}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"word_start_index": map[string]any{
						"type":      "custom",
						"tokenizer": "word_start_tokenizer",
						"filter":    []any{"lowercase"},
					},
					"word_start_search": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []any{"lowercase"},
					},
				},
				"tokenizer": map[string]any{
					"word_start_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    1,
						"max_gram":    50,
						"token_chars": []any{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			// Dynamically named facet fields (option/property expansion)
			// index as keywords for exact-match filtering.
			"dynamic_templates": []any{
				map[string]any{
					"facet_strings": map[string]any{
						"match_mapping_type": "string",
						"mapping":            map[string]any{"type": "keyword"},
					},
				},
			},
			"properties": props,
		},
	}
}
