package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is the flat, index-ready representation of a product. The fixed
// fields are typed; everything whose name is data-dependent (per-locale text,
// option/property facets, extension fields) lives in Extra and is flattened
// into the same top-level JSON object on marshal.
type Document struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Active      bool      `json:"active"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Price       *float64  `json:"price"`
	Currency    string    `json:"currency"`
	Conversions int       `json:"conversions"`
	TaxonIDs    []string  `json:"taxon_ids"`
	TaxonNames  []string  `json:"taxon_names"`
	SKUs        []string  `json:"skus"`
	TotalOnHand int       `json:"total_on_hand"`

	// Extra holds the dynamically named fields. A nil value is marshaled as
	// an explicit JSON null, which is how "declared but untranslated" locale
	// fields keep their keys in every document.
	Extra map[string]any `json:"-"`
}

// PropertyEntry is one element of the nested "properties" field. Keeping the
// id/name/value triple in one record preserves per-entry pairing even when
// several properties share a value.
type PropertyEntry struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// Set stores a dynamically named field, initializing Extra on first use.
func (d *Document) Set(key string, value any) {
	if d.Extra == nil {
		d.Extra = make(map[string]any)
	}
	d.Extra[key] = value
}

// Merge copies all entries of m into the document's dynamic fields.
// Later writes win on key collision.
func (d *Document) Merge(m map[string]any) {
	for k, v := range m {
		d.Set(k, v)
	}
}

// MarshalJSON flattens the fixed fields and Extra into a single JSON object.
// Extra entries win on collision, mirroring the merge order of synthesis.
func (d *Document) MarshalJSON() ([]byte, error) {
	type fixed Document
	base, err := json.Marshal((*fixed)(d))
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	flat := make(map[string]any, len(d.Extra)+16)
	if err := json.Unmarshal(base, &flat); err != nil {
		return nil, fmt.Errorf("flatten document: %w", err)
	}
	for k, v := range d.Extra {
		flat[k] = v
	}

	return json.Marshal(flat)
}

// Fields returns the document as a flat field map, exactly as it is sent to
// the index (JSON types: numbers are float64, timestamps are RFC 3339
// strings, missing values are nil).
func (d *Document) Fields() (map[string]any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
