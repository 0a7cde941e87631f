//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saudadez21/novel-downloader-sub001/internal/config"
	"github.com/saudadez21/novel-downloader-sub001/tests/helpers/testutil"
)

// TestRESTSurfaceIntegration drives the public REST surface of a fully
// booted server: registry reads, overlay seeding, the chapter outcome
// envelope, search gating, and the observability endpoints.
func TestRESTSurfaceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	base := testutil.StartServer(t)

	t.Run("root banner", func(t *testing.T) {
		code, body := testutil.GetJSON(t, base, "/")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "online", body["status"])
		assert.Equal(t, "novel-downloader", body["service"])
		assert.NotEmpty(t, body["version"])
	})

	t.Run("health", func(t *testing.T) {
		code, body := testutil.GetJSON(t, base, "/health")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", body["status"])
		assert.Greater(t, body["sites"], float64(0))
	})

	t.Run("site listing includes overlay records", func(t *testing.T) {
		code, body := testutil.GetJSON(t, base, "/sites")
		require.Equal(t, http.StatusOK, code)

		list, ok := body["sites"].([]any)
		require.True(t, ok)
		assert.EqualValues(t, len(list), body["count"])

		found := false
		for _, raw := range list {
			rec := raw.(map[string]any)
			if rec["site_id"] == "example-overlay" {
				found = true
				break
			}
		}
		assert.True(t, found, "overlay-defined site should be listed")
	})

	t.Run("overlay record replaces builtin vector", func(t *testing.T) {
		code, body := testutil.GetJSON(t, base, "/sites/aaatxt")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "none", body["search_support"])
	})

	t.Run("unknown site lookup", func(t *testing.T) {
		code, _ := testutil.GetJSON(t, base, "/sites/owl-books")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("chapter envelope carries site errors", func(t *testing.T) {
		// biquyuedu has a capability row but no registered parser, so
		// the fetch resolves without touching the network.
		code, body := testutil.PostJSON(t, base, "/chapters/fetch", map[string]any{
			"site_id":     "biquyuedu",
			"chapter_ref": "1234",
		})
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "site_error", body["status"])
		assert.Contains(t, body["error"], "no source registered")
		assert.Nil(t, body["content"])
	})

	t.Run("chapter fetch validation", func(t *testing.T) {
		code, _ := testutil.PostJSON(t, base, "/chapters/fetch", map[string]any{
			"site_id": "biquge",
		})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("chapter fetch unknown site", func(t *testing.T) {
		code, body := testutil.PostJSON(t, base, "/chapters/fetch", map[string]any{
			"site_id":     "owl-books",
			"chapter_ref": "1",
		})
		require.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "site_error", body["status"])
	})

	t.Run("search gated by capability vector", func(t *testing.T) {
		// The overlay turned aaatxt's search off, so the gate rejects
		// it even though the builtin table said otherwise.
		code, _ := testutil.PostJSON(t, base, "/search", map[string]any{
			"site_id": "aaatxt",
			"query":   "诡秘",
		})
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = testutil.PostJSON(t, base, "/search", map[string]any{
			"site_id": "b520",
			"query":   "诡秘",
		})
		assert.Equal(t, http.StatusBadRequest, code)

		// Search-capable site with no parser registered.
		code, _ = testutil.PostJSON(t, base, "/search", map[string]any{
			"site_id": "xiaoshuowu",
			"query":   "诡秘",
		})
		assert.Equal(t, http.StatusBadGateway, code)

		code, _ = testutil.PostJSON(t, base, "/search", map[string]any{
			"site_id": "owl-books",
			"query":   "诡秘",
		})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("job listing and unknown jobs", func(t *testing.T) {
		code, body := testutil.GetJSON(t, base, "/jobs")
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "count")

		code, _ = testutil.GetJSON(t, base, "/jobs/no-such-job")
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = testutil.Delete(t, base, "/jobs/no-such-job")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("book fetch unknown site", func(t *testing.T) {
		code, _ := testutil.PostJSON(t, base, "/books/fetch", map[string]any{
			"site_id":  "owl-books",
			"book_ref": "1",
		})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("stats snapshot", func(t *testing.T) {
		code, body := testutil.GetJSON(t, base, "/stats")
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "timestamp")
		assert.Contains(t, body, "summary")
		assert.Contains(t, body, "decrypt")
		assert.Contains(t, body, "fetch")
		assert.Contains(t, body, "jobs")
	})

	t.Run("prometheus exposition", func(t *testing.T) {
		code, body := testutil.GetBody(t, base, "/metrics")
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "# HELP")
	})
}

// TestConfigDefaults pins the defaults deployments lean on when no
// environment is set.
func TestConfigDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := config.Default()

	assert.NotEmpty(t, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Server.Host)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Greater(t, cfg.RateLimit.GlobalRPS, cfg.RateLimit.RequestsPerSecond,
		"global budget must exceed a single client's")
	assert.Greater(t, cfg.Fetch.Timeout, time.Duration(0))
	assert.Equal(t, 5*time.Second, cfg.Decrypt.Deadline)
	assert.Equal(t, 4096, cfg.Decrypt.MaxStackSize)
	assert.Empty(t, cfg.Decrypt.ModulePath, "vendor module must be opt-in")
	assert.Greater(t, cfg.Jobs.Workers, 0)
}
