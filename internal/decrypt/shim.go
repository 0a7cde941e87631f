package decrypt

import (
	"encoding/base64"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
)

const (
	// shimUserAgent is what navigator.userAgent reports; vendor code
	// sniffing for a desktop browser must take the browser path.
	shimUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// maxTimerPasses bounds how many rounds of nested enqueues one drain
	// will run before abandoning self-scheduling vendor loops.
	maxTimerPasses = 64

	// maxConsoleArg caps each stringified console argument before it is
	// forwarded to the service logger.
	maxConsoleArg = 512
)

// execContext is the disposable execution context one unlock attempt
// runs in. All JavaScript executes on the single goroutine the bridge
// spawned for the attempt; the only cross-goroutine access is
// vm.Interrupt, which goja allows.
type execContext struct {
	vm     *goja.Runtime
	logger *logging.Logger
	epoch  time.Time

	timers   []*timerTask
	cleared  map[int64]struct{}
	timerID  int64
	timerSeq int64
}

// timerTask is one pending setTimeout callback on the virtual queue.
type timerTask struct {
	id    int64
	fn    goja.Callable
	delay float64
	seq   int64
	args  []goja.Value
}

// newContext builds a fresh shim for the given hostname. Deterministic,
// no I/O; every attempt gets its own context and nothing is ever pooled
// or reused, so vendor globals cannot leak across requests.
func newContext(hostname string, maxStack int, logger *logging.Logger) (*execContext, error) {
	vm := goja.New()
	if maxStack > 0 {
		vm.SetMaxCallStackSize(maxStack)
	}

	ec := &execContext{
		vm:      vm,
		logger:  logger,
		epoch:   time.Now(),
		cleared: make(map[int64]struct{}),
	}

	ec.setupWindow(hostname)
	ec.setupDocument(hostname)
	ec.setupNavigator()
	ec.setupTimers()
	ec.setupPerformance()
	ec.setupEncoding()
	ec.setupConsole()

	// Environment-sniffing code must not find a Node.js runtime.
	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())
	vm.Set("global", goja.Undefined())

	return ec, nil
}

// interrupt aborts any JavaScript currently executing in the context.
// Safe to call from another goroutine.
func (ec *execContext) interrupt(reason string) {
	ec.vm.Interrupt(reason)
}

func (ec *execContext) setupWindow(hostname string) {
	global := ec.vm.GlobalObject()
	ec.vm.Set("window", global)
	ec.vm.Set("self", global)
	ec.vm.Set("top", global)

	loc := ec.vm.NewObject()
	loc.Set("protocol", "https:")
	loc.Set("hostname", hostname)
	loc.Set("host", hostname)
	loc.Set("origin", "https://"+hostname)
	loc.Set("href", "https://"+hostname+"/")
	loc.Set("pathname", "/")
	loc.Set("port", "")
	loc.Set("search", "")
	loc.Set("hash", "")
	ec.vm.Set("location", loc)
}

func (ec *execContext) setupDocument(hostname string) {
	doc := ec.vm.NewObject()
	doc.Set("domain", hostname)
	doc.Set("cookie", "")
	doc.Set("body", ec.newElement("body"))
	doc.Set("head", ec.newElement("head"))

	current := ec.vm.NewObject()
	current.Set("src", "https://"+hostname+"/js/unlock.js")
	doc.Set("currentScript", current)

	doc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		tag := call.Argument(0).String()
		elem := ec.newElement(tag)
		if strings.EqualFold(tag, "iframe") {
			// Key-setup fragments evaluated through a constructed iframe
			// land in this same runtime: contentWindow.eval is the real
			// eval, called indirectly, so it runs at global scope.
			cw := ec.vm.NewObject()
			cw.Set("window", ec.vm.GlobalObject())
			cw.Set("document", doc)
			cw.Set("eval", ec.vm.Get("eval"))
			elem.Set("contentWindow", cw)
		}
		return elem
	})
	doc.Set("createEvent", func(call goja.FunctionCall) goja.Value {
		ev := ec.vm.NewObject()
		ev.Set("initEvent", noop)
		return ev
	})
	doc.Set("getElementById", nullFunc)
	doc.Set("querySelector", nullFunc)
	doc.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return ec.vm.NewArray()
	})
	doc.Set("addEventListener", noop)
	doc.Set("removeEventListener", noop)

	ec.vm.Set("document", doc)
}

// newElement returns an inert element: enough surface for
// feature-detection paths, no real DOM semantics.
func (ec *execContext) newElement(tag string) *goja.Object {
	elem := ec.vm.NewObject()
	attrs := map[string]goja.Value{}
	elem.Set("tagName", strings.ToUpper(tag))
	elem.Set("style", ec.vm.NewObject())
	elem.Set("innerHTML", "")
	elem.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		attrs[call.Argument(0).String()] = call.Argument(1)
		return goja.Undefined()
	})
	elem.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := attrs[call.Argument(0).String()]; ok {
			return v
		}
		return goja.Null()
	})
	elem.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		return call.Argument(0)
	})
	elem.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		return call.Argument(0)
	})
	elem.Set("addEventListener", noop)
	elem.Set("removeEventListener", noop)
	return elem
}

func (ec *execContext) setupNavigator() {
	nav := ec.vm.NewObject()
	nav.Set("userAgent", shimUserAgent)
	nav.Set("platform", "Win32")
	nav.Set("language", "en-US")
	nav.Set("languages", ec.vm.NewArray("en-US", "en"))
	nav.Set("cookieEnabled", true)
	// navigator.webdriver stays absent: typeof must report "undefined".
	ec.vm.Set("navigator", nav)
}

// setupTimers installs the virtual timer queue. setTimeout enqueues;
// the invoker drains the queue after the unlock entry point returns, so
// callback-delivery timers fire while setInterval bookkeeping stays
// inert.
func (ec *execContext) setupTimers() {
	ec.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		ec.timerID++
		id := ec.timerID
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			// String bodies are never evaluated.
			return ec.vm.ToValue(id)
		}
		delay := call.Argument(1).ToFloat()
		if math.IsNaN(delay) || delay < 0 {
			delay = 0
		}
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}
		ec.timerSeq++
		ec.timers = append(ec.timers, &timerTask{
			id:    id,
			fn:    fn,
			delay: delay,
			seq:   ec.timerSeq,
			args:  args,
		})
		return ec.vm.ToValue(id)
	})
	ec.vm.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		ec.cleared[call.Argument(0).ToInteger()] = struct{}{}
		return goja.Undefined()
	})
	ec.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		ec.timerID++
		return ec.vm.ToValue(ec.timerID)
	})
	ec.vm.Set("clearInterval", noop)
}

// drainTimers runs queued setTimeout callbacks in virtual-clock order:
// by delay, then by enqueue sequence. Callbacks may enqueue further
// timers; those run in later passes up to maxTimerPasses, after which
// whatever is still rescheduling itself is abandoned.
func (ec *execContext) drainTimers() error {
	for pass := 0; pass < maxTimerPasses && len(ec.timers) > 0; pass++ {
		batch := ec.timers
		ec.timers = nil
		sort.SliceStable(batch, func(i, j int) bool {
			if batch[i].delay != batch[j].delay {
				return batch[i].delay < batch[j].delay
			}
			return batch[i].seq < batch[j].seq
		})
		for _, t := range batch {
			if _, dead := ec.cleared[t.id]; dead {
				continue
			}
			if _, err := t.fn(goja.Undefined(), t.args...); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ec *execContext) setupPerformance() {
	perf := ec.vm.NewObject()
	nav := ec.vm.NewObject()
	nav.Set("type", 0)
	perf.Set("navigation", nav)
	perf.Set("timing", ec.vm.NewObject())
	perf.Set("now", func(call goja.FunctionCall) goja.Value {
		ms := float64(time.Since(ec.epoch).Microseconds()) / 1000.0
		return ec.vm.ToValue(ms)
	})
	ec.vm.Set("performance", perf)
}

func (ec *execContext) setupEncoding() {
	ec.vm.Set("atob", func(call goja.FunctionCall) goja.Value {
		encoded := strings.TrimSpace(call.Argument(0).String())
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(encoded)
		}
		if err != nil {
			panic(ec.vm.NewTypeError("atob: invalid base64"))
		}
		return ec.vm.ToValue(string(decoded))
	})
	ec.vm.Set("btoa", func(call goja.FunctionCall) goja.Value {
		raw := call.Argument(0).String()
		return ec.vm.ToValue(base64.StdEncoding.EncodeToString([]byte(raw)))
	})
}

func (ec *execContext) setupConsole() {
	console := ec.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(level, ec.makeConsoleFunc(level))
	}
	ec.vm.Set("console", console)
}

// makeConsoleFunc forwards vendor console output to the service logger
// at debug level.
func (ec *execContext) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var b strings.Builder
		for i, arg := range call.Arguments {
			if i > 0 {
				b.WriteByte(' ')
			}
			s := arg.String()
			if len(s) > maxConsoleArg {
				s = s[:maxConsoleArg] + "..."
			}
			b.WriteString(s)
		}
		ec.logger.Debug("vendor console",
			zap.String("level", level),
			zap.String("message", b.String()),
		)
		return goja.Undefined()
	}
}

func noop(call goja.FunctionCall) goja.Value {
	return goja.Undefined()
}

func nullFunc(call goja.FunctionCall) goja.Value {
	return goja.Null()
}
