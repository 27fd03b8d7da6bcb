package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFields(t *testing.T) {
	fields := SearchFields([]string{"en", "fr"})

	assert.Equal(t, []string{
		"name_en", "description_en", "short_description_en",
		"name_fr", "description_fr", "short_description_fr",
	}, fields)
}

func TestAutocompleteFields(t *testing.T) {
	assert.Equal(t, []string{"name_en", "name_de"}, AutocompleteFields([]string{"en", "de"}))
}

func TestBaseConfig_LocaleFieldsDeclared(t *testing.T) {
	cfg := BaseConfig([]string{"en", "fr"})

	mappings, ok := cfg["mappings"].(map[string]any)
	require.True(t, ok)
	props, ok := mappings["properties"].(map[string]any)
	require.True(t, ok)

	for _, field := range SearchFields([]string{"en", "fr"}) {
		fieldMapping, ok := props[field].(map[string]any)
		require.True(t, ok, "field %s must be mapped", field)
		assert.Equal(t, "text", fieldMapping["type"])

		subfields, ok := fieldMapping["fields"].(map[string]any)
		require.True(t, ok)
		_, hasWordStart := subfields["word_start"]
		assert.True(t, hasWordStart, "field %s must declare a word_start subfield", field)
	}
}

func TestBaseConfig_NestedProperties(t *testing.T) {
	cfg := BaseConfig([]string{"en"})

	props := cfg["mappings"].(map[string]any)["properties"].(map[string]any)
	propertiesMapping, ok := props["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "nested", propertiesMapping["type"],
		"repeatable property entries must keep per-entry pairing")
}

func TestBaseConfig_ZeroReplicas(t *testing.T) {
	cfg := BaseConfig([]string{"en"})
	settings := cfg["settings"].(map[string]any)
	assert.Equal(t, 0, settings["number_of_replicas"])
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "short_description_pt-BR", FieldName("short_description", "pt-BR"))
}
