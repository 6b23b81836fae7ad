package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredentialFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAPIKey(t *testing.T) {
	path := writeCredentialFile(t, "serpapi:\n  api_key: abc123\n")

	key, err := loadAPIKey(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)
}

func TestLoadAPIKeyMissingFile(t *testing.T) {
	_, err := loadAPIKey(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadAPIKeyMalformedYAML(t *testing.T) {
	path := writeCredentialFile(t, "serpapi:\n  api_key: [unterminated\n")
	_, err := loadAPIKey(path)
	require.Error(t, err)
}

func TestLoadAPIKeyEmptyKey(t *testing.T) {
	path := writeCredentialFile(t, "serpapi:\n  api_key: \"\"\n")
	_, err := loadAPIKey(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeCredentialFile(t, "serpapi:\n  api_key: abc123\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.APIKey)
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, defaultMaxPages, cfg.MaxPages)
	assert.Equal(t, defaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, defaultRetryBaseDelay, cfg.RetryBaseDelay)
	assert.Equal(t, defaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, defaultWebsiteTimeout, cfg.WebsiteTimeout)
	assert.Equal(t, defaultWebsiteDelay, cfg.WebsiteDelay)
	assert.Equal(t, defaultPageDelay, cfg.PageDelay)
	assert.True(t, cfg.DumpPages)
	assert.Equal(t, ".", cfg.DumpDir)
	assert.False(t, cfg.VerifyMX)
	assert.Equal(t, defaultEmailRejectList, cfg.EmailRejectList)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeCredentialFile(t, "serpapi:\n  api_key: abc123\n")

	t.Setenv("SERPAPI_BASE_URL", "http://localhost:9999/search.json")
	t.Setenv("MAX_PAGES", "5")
	t.Setenv("RETRY_BASE_DELAY_MS", "250")
	t.Setenv("DUMP_PAGES", "false")
	t.Setenv("VERIFY_MX", "true")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/search.json", cfg.BaseURL)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.False(t, cfg.DumpPages)
	assert.True(t, cfg.VerifyMX)
}

func TestLoadConfigIgnoresInvalidEnvValues(t *testing.T) {
	path := writeCredentialFile(t, "serpapi:\n  api_key: abc123\n")

	t.Setenv("MAX_PAGES", "not-a-number")
	t.Setenv("RETRY_BASE_DELAY_MS", "-5")
	t.Setenv("DUMP_PAGES", "maybe")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, defaultMaxPages, cfg.MaxPages)
	assert.Equal(t, defaultRetryBaseDelay, cfg.RetryBaseDelay)
	assert.True(t, cfg.DumpPages)
}

func TestSearchQueryJoinsKeywordAndLocation(t *testing.T) {
	cfg := config{Query: "suspension", Location: "North Lakes, Queensland, 4509, Australia"}
	assert.Equal(t, "suspension North Lakes, Queensland, 4509, Australia", cfg.searchQuery())

	cfg.Location = "  "
	assert.Equal(t, "suspension", cfg.searchQuery())
}

func TestValueOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", valueOrDefault("  ", "fallback"))
	assert.Equal(t, "set", valueOrDefault(" set ", "fallback"))
}
