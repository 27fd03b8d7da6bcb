package synth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

type stubStores struct {
	cfg domain.StoreConfig
	err error
}

func (s *stubStores) Current(context.Context) (domain.StoreConfig, error) {
	return s.cfg, s.err
}

type stubRepo struct {
	graphs map[string]*domain.ProductGraph
	err    error
}

func (r *stubRepo) LoadProduct(_ context.Context, id string) (*domain.ProductGraph, error) {
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.graphs[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return g, nil
}

func (r *stubRepo) ListProductIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.graphs))
	for id := range r.graphs {
		ids = append(ids, id)
	}
	return ids, nil
}

func price(v float64) *float64 { return &v }

func fullGraph() *domain.ProductGraph {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.ProductGraph{
		Product: domain.Product{
			ID:        "prod-1",
			Slug:      "linen-shirt",
			Available: true,
			InStock:   true,
			Price:     price(39.99),
			Currency:  "EUR",
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		Variants: []domain.Variant{
			{ID: "v0", SKU: "LS", IsMaster: true},
			{ID: "v1", SKU: "LS-WHITE-M", OptionValueIDs: []string{"ov-white"}},
		},
		OptionTypes:  []domain.OptionType{{ID: "ot-color", Name: "Color", Filterable: true}},
		OptionValues: []domain.OptionValue{{ID: "ov-white", OptionTypeID: "ot-color", Name: "White"}},
		Properties:   []domain.Property{{ID: "p-mat", Name: "Material", Filterable: true}},
		PropertyValues: []domain.PropertyValue{
			{PropertyID: "p-mat", Value: "Linen"},
		},
		TaxonLineage: []domain.Taxon{
			{ID: "t-clothing", Name: "Clothing"},
			{ID: "t-shirts", Name: "Shirts"},
			{ID: "t-clothing", Name: "Clothing"}, // shared ancestor of a second membership
			{ID: "t-summer", Name: "Summer"},
		},
		Translations: []domain.Translation{
			{Locale: "en", Name: "Linen Shirt", Description: "A shirt.", ShortDescription: "Shirt"},
		},
		Conversions: 7,
		TotalOnHand: 42,
	}
}

func newTestSynthesizer(t *testing.T, opts ...Option) (*Synthesizer, *stubRepo) {
	t.Helper()
	repo := &stubRepo{graphs: map[string]*domain.ProductGraph{"prod-1": fullGraph()}}
	stores := &stubStores{cfg: domain.StoreConfig{DefaultLocale: "en", SupportedLocales: []string{"en", "fr"}}}
	return NewSynthesizer(repo, stores, []string{"en", "fr"}, nil, opts...), repo
}

func TestSynthesize_FixedFields(t *testing.T) {
	s, _ := newTestSynthesizer(t)

	doc, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, "prod-1", doc.ID)
	assert.Equal(t, "linen-shirt", doc.Slug)
	assert.True(t, doc.Active)
	assert.True(t, doc.InStock)
	assert.Equal(t, 39.99, *doc.Price)
	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, 7, doc.Conversions)
	assert.Equal(t, 42, doc.TotalOnHand)
	assert.Equal(t, []string{"LS", "LS-WHITE-M"}, doc.SKUs, "master variant SKU included")
}

func TestSynthesize_TaxonsDedupedAndPaired(t *testing.T) {
	s, _ := newTestSynthesizer(t)

	doc, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"t-clothing", "t-shirts", "t-summer"}, doc.TaxonIDs)
	assert.Equal(t, []string{"Clothing", "Shirts", "Summer"}, doc.TaxonNames)
}

func TestSynthesize_LocaleFieldsWithNulls(t *testing.T) {
	s, _ := newTestSynthesizer(t)

	doc, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, "Linen Shirt", doc.Extra["name_en"])
	assert.Equal(t, "A shirt.", doc.Extra["description_en"])
	assert.Equal(t, "Shirt", doc.Extra["short_description_en"])

	for _, field := range []string{"name_fr", "description_fr", "short_description_fr"} {
		v, present := doc.Extra[field]
		assert.True(t, present, "untranslated locale field %s must be declared", field)
		assert.Nil(t, v, "untranslated locale field %s must be null", field)
	}
}

func TestSynthesize_FacetFieldsMerged(t *testing.T) {
	s, _ := newTestSynthesizer(t)

	doc, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"ot-color"}, doc.Extra["option_type_ids"])
	assert.Equal(t, []string{"white"}, doc.Extra["color"])
	assert.Equal(t, "linen", doc.Extra["material"])
	entries := doc.Extra["properties"].([]domain.PropertyEntry)
	require.Len(t, entries, 1)
	assert.Equal(t, "Linen", *entries[0].Value)
}

func TestSynthesize_Deterministic(t *testing.T) {
	s, _ := newTestSynthesizer(t)

	first, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.SynthesizeByID(context.Background(), "prod-1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSynthesize_ExtensionHookWinsCollisions(t *testing.T) {
	hook := func(_ context.Context, g *domain.ProductGraph) (map[string]any, error) {
		return map[string]any{
			"popularity": 0.9,
			"color":      []string{"overridden"},
		}, nil
	}
	s, _ := newTestSynthesizer(t, WithExtensionHook(hook))

	doc, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, 0.9, doc.Extra["popularity"])
	assert.Equal(t, []string{"overridden"}, doc.Extra["color"])
}

func TestSynthesize_LocaleDivergenceFails(t *testing.T) {
	repo := &stubRepo{graphs: map[string]*domain.ProductGraph{"prod-1": fullGraph()}}
	stores := &stubStores{cfg: domain.StoreConfig{DefaultLocale: "en", SupportedLocales: []string{"en", "fr", "de"}}}
	s := NewSynthesizer(repo, stores, []string{"en", "fr"}, nil)

	_, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.ErrorIs(t, err, apperrors.ErrConfigInconsistent)
}

func TestSynthesizeByID_NotFoundPropagates(t *testing.T) {
	s, _ := newTestSynthesizer(t)

	_, err := s.SynthesizeByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSynthesizeByID_LoadFailureIsDataUnavailable(t *testing.T) {
	repo := &stubRepo{err: apperrors.DataUnavailable(assert.AnError)}
	stores := &stubStores{cfg: domain.StoreConfig{DefaultLocale: "en"}}
	s := NewSynthesizer(repo, stores, []string{"en"}, nil)

	_, err := s.SynthesizeByID(context.Background(), "prod-1")
	require.ErrorIs(t, err, apperrors.ErrDataUnavailable)
}
