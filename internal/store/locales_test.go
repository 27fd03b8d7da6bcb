package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
)

func TestActiveLocales(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.StoreConfig
		want []string
	}{
		{
			name: "default appended after supported",
			cfg:  domain.StoreConfig{DefaultLocale: "en", SupportedLocales: []string{"fr", "de"}},
			want: []string{"fr", "de", "en"},
		},
		{
			name: "default already supported is not duplicated",
			cfg:  domain.StoreConfig{DefaultLocale: "en", SupportedLocales: []string{"en", "fr"}},
			want: []string{"en", "fr"},
		},
		{
			name: "duplicate supported locales collapse, order preserved",
			cfg:  domain.StoreConfig{DefaultLocale: "de", SupportedLocales: []string{"fr", "en", "fr"}},
			want: []string{"fr", "en", "de"},
		},
		{
			name: "only default",
			cfg:  domain.StoreConfig{DefaultLocale: "en"},
			want: []string{"en"},
		},
		{
			name: "whitespace trimmed, empties dropped",
			cfg:  domain.StoreConfig{DefaultLocale: "en", SupportedLocales: []string{" fr ", "", "en"}},
			want: []string{"fr", "en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveLocales(tt.cfg))
		})
	}
}

func TestActiveLocales_Deterministic(t *testing.T) {
	cfg := domain.StoreConfig{DefaultLocale: "en", SupportedLocales: []string{"fr", "es", "de"}}
	first := ActiveLocales(cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ActiveLocales(cfg))
	}
}

func TestSameLocales(t *testing.T) {
	assert.True(t, SameLocales([]string{"en", "fr"}, []string{"en", "fr"}))
	assert.False(t, SameLocales([]string{"en", "fr"}, []string{"fr", "en"}))
	assert.False(t, SameLocales([]string{"en"}, []string{"en", "fr"}))
	assert.True(t, SameLocales(nil, nil))
}

func TestParseSupportedLocales(t *testing.T) {
	assert.Equal(t, []string{"en", "fr"}, ParseSupportedLocales("en, fr"))
	assert.Equal(t, []string{"en"}, ParseSupportedLocales("en,,"))
	assert.Nil(t, ParseSupportedLocales(""))
}
