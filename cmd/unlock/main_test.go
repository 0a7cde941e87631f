package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModule honors the vendor calling convention; the key packet
// decides its behavior, as on real chapter pages.
const stubModule = `
var Fock = {
	setupUserKey: function(uid) { Fock.userKey = uid; },
	unlock: function(content, chapterId, cb) {
		if (typeof Fock.transform !== "function") {
			cb(3, null);
			return;
		}
		setTimeout(function() { cb(0, Fock.transform(content)); }, 0);
	}
};`

const reversePacket = `Fock.transform = function(s) { return s.split("").reverse().join(""); };`

func keyPacket(src string) string {
	return base64.StdEncoding.EncodeToString([]byte(src))
}

func requestJSON(packet string) string {
	return fmt.Sprintf(`{"encrypted_content":"ABC123","chapter_id":"42","key_packet":%q,"user_id":"u1"}`, keyPacket(packet))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runUnlock invokes run with a fresh flag set; run registers its flags
// on flag.CommandLine, so every call needs a clean one.
func runUnlock(t *testing.T, args ...string) int {
	t.Helper()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	flag.CommandLine = flag.NewFlagSet("unlock", flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = append([]string{"unlock"}, args...)
	return run()
}

func TestRunUnlocksToFile(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "request.json", requestJSON(reversePacket))
	mod := writeFile(t, dir, "unlock.js", stubModule)
	out := filepath.Join(dir, "plain.txt")

	code := runUnlock(t, "-in", req, "-module", mod, "-o", out)
	require.Equal(t, 0, code)

	plaintext, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "321CBA", string(plaintext))
}

func TestRunReadsStdin(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "request.json", requestJSON(reversePacket))
	mod := writeFile(t, dir, "unlock.js", stubModule)
	out := filepath.Join(dir, "plain.txt")

	f, err := os.Open(req)
	require.NoError(t, err)
	defer f.Close()
	oldStdin := os.Stdin
	os.Stdin = f
	defer func() { os.Stdin = oldStdin }()

	code := runUnlock(t, "-in", "-", "-module", mod, "-o", out)
	require.Equal(t, 0, code)

	plaintext, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "321CBA", string(plaintext))
}

func TestRunCustomEntryPoints(t *testing.T) {
	module := `
		var Vault = {
			prime: function(uid) { this.u = uid; },
			open: function(content, chapterId, cb) { cb(0, this.u + "/" + content); }
		};`
	dir := t.TempDir()
	req := writeFile(t, dir, "request.json", requestJSON("var seeded = true;"))
	mod := writeFile(t, dir, "vault.js", module)
	out := filepath.Join(dir, "plain.txt")

	code := runUnlock(t, "-in", req, "-module", mod,
		"-global", "Vault", "-setup", "prime", "-unlock", "open", "-o", out)
	require.Equal(t, 0, code)

	plaintext, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "u1/ABC123", string(plaintext))
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	mod := writeFile(t, dir, "unlock.js", stubModule)

	t.Run("missing flags", func(t *testing.T) {
		assert.Equal(t, exitUsage, runUnlock(t))
	})

	t.Run("unreadable input", func(t *testing.T) {
		code := runUnlock(t, "-in", filepath.Join(dir, "no-such.json"), "-module", mod)
		assert.Equal(t, exitInput, code)
	})

	t.Run("unreadable module", func(t *testing.T) {
		req := writeFile(t, dir, "ok.json", requestJSON(reversePacket))
		code := runUnlock(t, "-in", req, "-module", filepath.Join(dir, "no-such.js"))
		assert.Equal(t, exitInput, code)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := writeFile(t, dir, "broken.json", `{"encrypted_content": "ABC`)
		code := runUnlock(t, "-in", req, "-module", mod)
		assert.Equal(t, exitInput, code)
	})

	t.Run("missing request field", func(t *testing.T) {
		req := writeFile(t, dir, "partial.json",
			`{"encrypted_content":"ABC123","chapter_id":"42","user_id":"u1"}`)
		code := runUnlock(t, "-in", req, "-module", mod)
		assert.Equal(t, exitMalformed, code)
	})

	t.Run("vendor rejection", func(t *testing.T) {
		packet := `Fock.unlock = function(content, chapterId, cb) { cb(7, null); };`
		req := writeFile(t, dir, "reject.json", requestJSON(packet))
		out := filepath.Join(dir, "reject.txt")

		code := runUnlock(t, "-in", req, "-module", mod, "-o", out)
		assert.Equal(t, exitRejected, code)

		// Failures never touch the output file.
		_, err := os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("deadline", func(t *testing.T) {
		packet := `Fock.unlock = function(content, chapterId, cb) {};`
		req := writeFile(t, dir, "stall.json", requestJSON(packet))
		code := runUnlock(t, "-in", req, "-module", mod, "-deadline", "100ms")
		assert.Equal(t, exitTimeout, code)
	})

	t.Run("vendor runtime fault", func(t *testing.T) {
		req := writeFile(t, dir, "throw.json", requestJSON(`throw new Error("packet corrupt");`))
		code := runUnlock(t, "-in", req, "-module", mod)
		assert.Equal(t, exitRuntime, code)
	})

	t.Run("unwritable output", func(t *testing.T) {
		req := writeFile(t, dir, "write.json", requestJSON(reversePacket))
		out := filepath.Join(dir, "missing-dir", "plain.txt")
		code := runUnlock(t, "-in", req, "-module", mod, "-o", out)
		assert.Equal(t, exitWrite, code)
	})
}
