package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults apply when nothing is set", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE", "")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, StorePostgres, cfg.DocumentStore)
		assert.Equal(t, 30*time.Second, cfg.ClamAVTimeout)
		assert.Equal(t, 50, cfg.UploadRateLimitPerDay)
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE", "Mongo")
		t.Setenv("JOBS_CACHE_TTL", "90s")
		t.Setenv("PENDING_COMPANIES_CACHE_TTL", "120")
		t.Setenv("ENTITY_CACHE_TTL", "garbage")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example/, https://b.example")
		t.Setenv("CLAMAV_ADDRESS", "clamd:3310")
		t.Setenv("UPLOAD_RATE_LIMIT_PER_DAY", "5")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, StoreMongo, cfg.DocumentStore)
		assert.Equal(t, 90*time.Second, cfg.JobsCacheTTL)
		assert.Equal(t, 2*time.Minute, cfg.PendingCompaniesCacheTTL)
		assert.Equal(t, 10*time.Minute, cfg.EntityCacheTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
		assert.Equal(t, "clamd:3310", cfg.ClamAVAddress)
		assert.Equal(t, 5, cfg.UploadRateLimitPerDay)
	})
}
