package domain

import (
	"time"
)

// StoreConfig is the slice of store configuration the indexing pipeline needs:
// which locales must be represented in the schema and in every document.
type StoreConfig struct {
	DefaultLocale    string   `json:"default_locale"`
	SupportedLocales []string `json:"supported_locales"`
}

// Product is the catalog entity that forms the unit of indexing.
type Product struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Available bool       `json:"available"`
	InStock   bool       `json:"in_stock"`
	Price     *float64   `json:"price,omitempty"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Variant is a sellable variation of a product. The master variant carries
// the product-level defaults and is included wherever "all variants" is meant.
type Variant struct {
	ID             string   `json:"id"`
	SKU            string   `json:"sku"`
	IsMaster       bool     `json:"is_master"`
	OptionValueIDs []string `json:"option_value_ids,omitempty"`
}

// OptionType is a named axis of variation (e.g. "Color"). Only filterable
// option types contribute dynamic facet fields to the document.
type OptionType struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Filterable bool   `json:"filterable"`
}

// OptionValue is one value of an option type (e.g. "Red").
type OptionValue struct {
	ID           string `json:"id"`
	OptionTypeID string `json:"option_type_id"`
	Name         string `json:"name"`
}

// Property is a named product attribute (e.g. "Material"). Only filterable
// properties contribute facet fields.
type Property struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Filterable bool   `json:"filterable"`
}

// PropertyValue binds a property to a product with a single value.
type PropertyValue struct {
	PropertyID string `json:"property_id"`
	Value      string `json:"value"`
}

// Taxon is one node of the category tree, reduced to the identity/name pair
// the document needs.
type Taxon struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Translation holds the localized text of a product for one locale.
type Translation struct {
	Locale           string `json:"locale"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
}

// ProductGraph is the snapshot of a product and every association document
// synthesis reads. It is assembled in one pass by the repository so that a
// synthesis run never observes a half-updated entity.
type ProductGraph struct {
	Product        Product
	Variants       []Variant // master included
	OptionTypes    []OptionType
	OptionValues   []OptionValue
	Properties     []Property
	PropertyValues []PropertyValue
	// TaxonLineage is the concatenation, across all taxon memberships, of
	// each taxon's self-plus-ancestors chain. Duplicates are possible when
	// memberships share ancestors; synthesis deduplicates.
	TaxonLineage []Taxon
	Translations []Translation
	// Conversions is the number of completed orders referencing the product.
	Conversions int
	// TotalOnHand is the aggregate on-hand stock across all variants.
	TotalOnHand int
}

// Translation returns the translation for the given locale, or nil.
func (g *ProductGraph) Translation(locale string) *Translation {
	for i := range g.Translations {
		if g.Translations[i].Locale == locale {
			return &g.Translations[i]
		}
	}
	return nil
}
