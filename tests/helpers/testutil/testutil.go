// Package testutil provides shared helpers for the service-level test
// suites: a boot-once server harness, canned vendor module fixtures,
// and JSON request plumbing.
package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saudadez21/novel-downloader-sub001/internal/config"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/server"
)

// VendorModule is a stand-in unlocking module honoring the vendor
// calling convention: a global with a key setup entry and an unlock
// entry reporting through a (code, result) callback. The key packet
// decides its behavior, as it does on real chapter pages.
const VendorModule = `
var Fock = {
	userKey: "",
	setupUserKey: function(uid) { Fock.userKey = uid; },
	unlock: function(content, chapterId, cb) {
		if (typeof Fock.transform !== "function") {
			cb(3, null);
			return;
		}
		setTimeout(function() { cb(0, Fock.transform(content)); }, 0);
	}
};`

// ReversePacket makes the module answer with the reversed ciphertext.
const ReversePacket = `Fock.transform = function(s) { return s.split("").reverse().join(""); };`

// RejectPacket makes the module refuse the unlock with vendor code 7.
const RejectPacket = `Fock.unlock = function(content, chapterId, cb) { cb(7, null); };`

// KeyPacket encodes packet source the way chapter pages embed it.
func KeyPacket(src string) string {
	return base64.StdEncoding.EncodeToString([]byte(src))
}

var (
	bootOnce sync.Once
	bootURL  string
	bootErr  error
)

// StartServer boots the full service once per test binary and returns
// its base URL. The vendor module and a site overlay directory are
// materialized on disk first, so module loading and overlay seeding
// run the same way they do in production. The server lives for the
// rest of the binary; metrics collectors register globally, so a
// second boot in one process is not possible anyway.
func StartServer(t *testing.T) string {
	t.Helper()
	bootOnce.Do(func() { bootURL, bootErr = boot() })
	require.NoError(t, bootErr, "boot test server")
	return bootURL
}

func boot() (string, error) {
	dir, err := os.MkdirTemp("", "noveld-test-")
	if err != nil {
		return "", err
	}

	modPath := filepath.Join(dir, "unlock.js")
	if err := os.WriteFile(modPath, []byte(VendorModule), 0o644); err != nil {
		return "", err
	}

	overlayDir := filepath.Join(dir, "sites")
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		return "", err
	}
	overlays := map[string]string{
		// A site the builtin table does not know.
		"example-overlay.yaml": "site_id: example-overlay\n" +
			"supports_volumes: none\n" +
			"supports_images: none\n" +
			"login_requirement: none\n" +
			"search_support: none\n" +
			"requires_decryption: false\n",
		// Replaces the builtin aaatxt row, turning its search off.
		"aaatxt.json": `{"site_id":"aaatxt","supports_volumes":"none","supports_images":"none","login_requirement":"none","search_support":"none","requires_decryption":false}`,
	}
	for name, body := range overlays {
		if err := os.WriteFile(filepath.Join(overlayDir, name), []byte(body), 0o644); err != nil {
			return "", err
		}
	}

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.Decrypt.ModulePath = modPath
	cfg.Sites.OverlayDir = overlayDir
	cfg.Jobs.Workers = 2

	srv, err := server.New(cfg, logging.NewNop())
	if err != nil {
		return "", err
	}
	return httptest.NewServer(srv.Router()).URL, nil
}

// PostJSON sends body to path and returns the status plus the decoded
// response.
func PostJSON(t *testing.T, base, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(base+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp.StatusCode, decode(t, resp)
}

// GetJSON fetches path and returns the status plus the decoded
// response.
func GetJSON(t *testing.T, base, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(base + path)
	require.NoError(t, err)
	return resp.StatusCode, decode(t, resp)
}

// GetBody fetches path and returns the status plus the raw body, for
// non-JSON surfaces like the metrics exposition.
func GetBody(t *testing.T, base, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(base + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

// Delete issues a DELETE to path and returns the status plus the
// decoded response.
func Delete(t *testing.T, base, path string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, base+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp.StatusCode, decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return nil
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
