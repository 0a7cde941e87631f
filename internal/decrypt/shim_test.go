package decrypt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
)

// probe wraps a JS expression list in a module whose unlock reports the
// joined results.
func probe(exprs string) string {
	return `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				cb(0, [` + exprs + `].join("|"));
			}
		};
	`
}

func TestShimEnvironmentProbes(t *testing.T) {
	module := probe(`
		location.protocol,
		String(window === self),
		String(top === window),
		navigator.platform,
		String(navigator.webdriver === undefined),
		String(performance.navigation.type),
		typeof require,
		typeof process,
		document.domain,
		document.currentScript.src
	`)
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t,
		"https:|true|true|Win32|true|0|undefined|undefined|"+
			"vipreader.example.com|https://vipreader.example.com/js/unlock.js",
		plaintext)
}

func TestShimBrowserSniff(t *testing.T) {
	module := probe(`/Chrome\/\d+/.test(navigator.userAgent) ? "desktop" : "bot"`)
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "desktop", plaintext)
}

func TestShimBase64Helpers(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				var packed = btoa(content);
				cb(0, atob(packed) + ":" + packed);
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "ABC123:QUJDMTIz", plaintext)
}

func TestShimAtobRejectsBadInput(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				try {
					atob("%%%");
					cb(2, null);
				} catch (e) {
					cb(0, e instanceof TypeError ? "typeerror" : "other");
				}
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "typeerror", plaintext)
}

func TestShimTimerOrdering(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				var parts = [];
				setTimeout(function() { parts.push("late"); }, 10);
				setTimeout(function() { parts.push("early"); }, 0);
				var dead = setTimeout(function() { parts.push("cleared"); }, 5);
				clearTimeout(dead);
				setTimeout(function() { cb(0, parts.join(",")); }, 20);
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "early,late", plaintext)
}

func TestShimNestedTimers(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				setTimeout(function() {
					setTimeout(function() { cb(0, "nested"); }, 0);
				}, 0);
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "nested", plaintext)
}

func TestShimSelfSchedulingTimerBounded(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				var tick = function() { setTimeout(tick, 0); };
				tick();
			}
		};
	`
	bridge := New(WithDeadline(200 * time.Millisecond))
	start := time.Now()
	_, err := bridge.Decrypt(testEnv(module), validRequest("var seeded = true;"))

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestShimIntervalStaysInert(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				var ticks = 0;
				var id = setInterval(function() { ticks++; }, 10);
				setTimeout(function() {
					cb(0, "ticks:" + ticks + ":" + typeof id);
				}, 0);
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "ticks:0:number", plaintext)
}

func TestShimIframeEval(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				var frame = document.createElement("iframe");
				document.body.appendChild(frame);
				var w = frame.contentWindow;
				w.eval("function __frameRev(s) { return s.split('').reverse().join(''); }");
				cb(0, String(w.window === window) + ":" + __frameRev(content));
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "true:321CBA", plaintext)
}

func TestShimInertDocument(t *testing.T) {
	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				var ev = document.createEvent("HTMLEvents");
				ev.initEvent("load", true, true);
				var div = document.createElement("div");
				div.setAttribute("data-key", "v1");
				cb(0, [
					div.tagName,
					div.getAttribute("data-key"),
					String(div.getAttribute("missing") === null),
					String(document.getElementById("anything") === null),
					String(document.querySelector(".anything") === null)
				].join("|"));
			}
		};
	`
	plaintext, err := New().Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "DIV|v1|true|true|true", plaintext)
}

func TestShimConsoleForwarding(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	module := `
		var Fock = {
			setupUserKey: function(userId) {},
			unlock: function(content, chapterId, cb) {
				console.log("probe", 42);
				cb(0, "done");
			}
		};
	`
	bridge := New(WithLogger(logger))
	plaintext, err := bridge.Decrypt(testEnv(module), validRequest("var seeded = true;"))
	require.NoError(t, err)
	assert.Equal(t, "done", plaintext)

	entries := logs.FilterMessage("vendor console").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "probe 42", entries[0].ContextMap()["message"])
}
