package sites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOverlay(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSeedOverlayFormats(t *testing.T) {
	dir := t.TempDir()

	writeOverlay(t, dir, "one.yaml", `
site_id: yamlsite
supports_volumes: native
supports_images: none
login_requirement: none
search_support: internal
requires_decryption: false
`)
	writeOverlay(t, dir, "two.json", `{
  "site_id": "jsonsite",
  "supports_volumes": "none",
  "supports_images": "external-only",
  "login_requirement": "optional",
  "search_support": "none",
  "requires_decryption": false
}`)
	writeOverlay(t, dir, "three.toml", `
site_id = "tomlsite"
supports_volumes = "none"
supports_images = "none"
login_requirement = "none"
search_support = "native-redirect"
requires_decryption = false
`)

	seeder := NewSeeder(dir, nil)
	reg, err := seeder.Seed(builtinSites)
	require.NoError(t, err)

	assert.Equal(t, len(builtinSites)+3, reg.Len())

	y, err := reg.Lookup("yamlsite")
	require.NoError(t, err)
	assert.Equal(t, VolumesNative, y.Volumes)

	j, err := reg.Lookup("jsonsite")
	require.NoError(t, err)
	assert.Equal(t, ImagesExternalOnly, j.Images)
	assert.Equal(t, LoginOptional, j.Login)

	tm, err := reg.Lookup("tomlsite")
	require.NoError(t, err)
	assert.Equal(t, SearchNativeRedirect, tm.Search)
}

func TestSeedOverlayReplacesBuiltin(t *testing.T) {
	dir := t.TempDir()

	writeOverlay(t, dir, "biquge.yaml", `
site_id: biquge
supports_volumes: none
supports_images: external-only
login_requirement: optional
search_support: none
requires_decryption: false
`)

	reg, err := NewSeeder(dir, nil).Seed(builtinSites)
	require.NoError(t, err)

	// Count unchanged: replacement, not addition.
	assert.Equal(t, len(builtinSites), reg.Len())

	rec, err := reg.Lookup("biquge")
	require.NoError(t, err)
	assert.Equal(t, ImagesExternalOnly, rec.Images)
	assert.Equal(t, LoginOptional, rec.Login)
}

func TestSeedSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()

	writeOverlay(t, dir, "broken.yaml", "site_id: [not a string")
	writeOverlay(t, dir, "invalid.json", `{"site_id": "badenum", "supports_volumes": "sometimes", "supports_images": "none", "login_requirement": "none", "search_support": "none"}`)
	writeOverlay(t, dir, "notes.txt", "ignored entirely")
	writeOverlay(t, dir, "good.yaml", `
site_id: goodsite
supports_volumes: none
supports_images: none
login_requirement: none
search_support: none
requires_decryption: false
`)

	reg, err := NewSeeder(dir, nil).Seed(builtinSites)
	require.NoError(t, err)

	assert.Equal(t, len(builtinSites)+1, reg.Len())
	assert.True(t, reg.Has("goodsite"))
	assert.False(t, reg.Has("badenum"))
}

func TestSeedDuplicateOverlayIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "extra"), 0o755))

	writeOverlay(t, dir, "a.yaml", `
site_id: twice
supports_volumes: none
supports_images: none
login_requirement: none
search_support: none
requires_decryption: false
`)
	writeOverlay(t, filepath.Join(dir, "extra"), "b.yaml", `
site_id: twice
supports_volumes: native
supports_images: native
login_requirement: required
search_support: internal
requires_decryption: false
`)

	reg, err := NewSeeder(dir, nil).Seed(nil)
	require.NoError(t, err)

	// Exactly one definition survives; the walk is concurrent so which
	// one wins is not specified.
	require.Equal(t, 1, reg.Len())
	rec, err := reg.Lookup("twice")
	require.NoError(t, err)
	assert.Contains(t, []LoginRequirement{LoginNone, LoginRequired}, rec.Login)
}

func TestSeedMissingDir(t *testing.T) {
	reg, err := NewSeeder(filepath.Join(t.TempDir(), "absent"), nil).Seed(builtinSites)
	require.NoError(t, err)
	assert.Equal(t, len(builtinSites), reg.Len())
}

func TestSeedEmptyDirConfig(t *testing.T) {
	reg, err := NewSeeder("", nil).Seed(builtinSites)
	require.NoError(t, err)
	assert.Equal(t, len(builtinSites), reg.Len())
}
