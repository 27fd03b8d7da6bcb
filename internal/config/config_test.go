package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "elasticsearch", cfg.SearchEngine)
	assert.Equal(t, "catalog_products", cfg.IndexName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "postgres", cfg.StoreSource)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, 8, cfg.SyncWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "memory")
	t.Setenv("SEARCH_HTTP_PORT", "9100")
	t.Setenv("SUPPORTED_LOCALES", "en,fr,de")
	t.Setenv("STORE_SOURCE", "static")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.SearchEngine)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, []string{"en", "fr", "de"}, cfg.SupportedLocales)

	store := cfg.StaticStoreConfig()
	assert.Equal(t, "en", store.DefaultLocale)
	assert.Equal(t, []string{"en", "fr", "de"}, store.SupportedLocales)
}

func TestLoad_InvalidEngineRejected(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "solr")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	t.Setenv("SEARCH_HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestPostgresConfig(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.PostgresConfig()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, 5433, pg.Port)
	assert.Equal(t, "catalog", pg.DBName)
}
