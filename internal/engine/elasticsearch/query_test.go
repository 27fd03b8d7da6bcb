package elasticsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softmaker-io/spree-searchkick/internal/engine"
)

func TestBuildSearchBody_MatchAllWhenNoKeywords(t *testing.T) {
	body := buildSearchBody(&engine.Query{Limit: 10})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]any)
	require.Len(t, must, 1)
	_, isMatchAll := must[0].(map[string]any)["match_all"]
	assert.True(t, isMatchAll)
	assert.Equal(t, 10, body["size"])
}

func TestBuildSearchBody_WordStartFields(t *testing.T) {
	body := buildSearchBody(&engine.Query{
		Keywords:  "shir",
		Fields:    []string{"name_en"},
		Fuzziness: 2,
		Limit:     10,
	})

	must := body["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	match := must[0].(map[string]any)["multi_match"].(map[string]any)

	assert.Equal(t, "shir", match["query"])
	assert.Equal(t, []string{"name_en^2", "name_en.word_start"}, match["fields"])
	assert.Equal(t, 2, match["fuzziness"])
	assert.Equal(t, 1, match["prefix_length"])
}

func TestBuildSearchBody_NoFuzzinessWhenZero(t *testing.T) {
	body := buildSearchBody(&engine.Query{Keywords: "shirt", Fields: []string{"name_en"}})

	must := body["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	match := must[0].(map[string]any)["multi_match"].(map[string]any)
	_, hasFuzziness := match["fuzziness"]
	assert.False(t, hasFuzziness)
}

func TestBuildSearchBody_Filters(t *testing.T) {
	body := buildSearchBody(&engine.Query{
		Keywords: "shirt",
		Fields:   []string{"name_en"},
		Filters: []engine.Filter{
			engine.Eq("active", true),
			engine.NotNull("price"),
		},
		Limit:  10,
		Source: []string{"name_en"},
	})

	filters := body["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, filters, 2)
	assert.Equal(t, map[string]any{"term": map[string]any{"active": true}}, filters[0])
	assert.Equal(t, map[string]any{"exists": map[string]any{"field": "price"}}, filters[1])
	assert.Equal(t, []string{"name_en"}, body["_source"])
}

func TestBuildSearchBody_MustNotExists(t *testing.T) {
	f := false
	body := buildSearchBody(&engine.Query{
		Filters: []engine.Filter{{Field: "discontinued_at", Exists: &f}},
		Limit:   5,
	})

	filters := body["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, filters, 1)
	mustNot := filters[0].(map[string]any)["bool"].(map[string]any)["must_not"].([]any)
	assert.Equal(t, map[string]any{"exists": map[string]any{"field": "discontinued_at"}}, mustNot[0])
}
