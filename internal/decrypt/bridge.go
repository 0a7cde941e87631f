package decrypt

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
)

const (
	// DefaultDeadline matches the reference behavior: 5000 ms per
	// attempt.
	DefaultDeadline = 5000 * time.Millisecond

	// DefaultMaxStackSize caps vendor recursion depth.
	DefaultMaxStackSize = 4096
)

// Bridge owns the lifecycle of decrypt attempts. It is stateless
// between calls and safe for concurrent use; every attempt gets a fresh
// execution context.
type Bridge struct {
	deadline time.Duration
	maxStack int
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithDeadline overrides the per-attempt deadline.
func WithDeadline(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.deadline = d
		}
	}
}

// WithMaxStackSize overrides the vendor call stack cap.
func WithMaxStackSize(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.maxStack = n
		}
	}
}

// WithLogger attaches a logger for per-attempt debug logs and vendor
// console forwarding.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics attaches outcome counters and duration histograms.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// New builds a Bridge with the 5 s default deadline unless overridden.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		deadline: DefaultDeadline,
		maxStack: DefaultMaxStackSize,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Deadline reports the per-attempt deadline.
func (b *Bridge) Deadline() time.Duration {
	return b.deadline
}

// result is the attempt's terminal outcome.
type result struct {
	plaintext string
	err       error
}

// Decrypt runs one unlock attempt to a terminal outcome: plaintext,
// *RejectError, *RuntimeError, ErrTimeout, or *MalformedRequestError.
// Malformed requests fail before any context is built. The call blocks
// until completion or deadline, whichever fires first; the losing
// signal is discarded so exactly one outcome is ever observed.
// Cancellation is deadline-only: vendor code cannot be safely stopped
// mid-execution by an external signal, so there is no context
// parameter.
func (b *Bridge) Decrypt(env Env, req Request) (string, error) {
	site := env.label()
	start := time.Now()

	if err := req.Validate(); err != nil {
		return b.finish(site, req, start, "", err)
	}
	mod := env.Module.withDefaults()
	if err := mod.Validate(); err != nil {
		return b.finish(site, req, start, "", &RuntimeError{Stage: StageModule, Message: err.Error()})
	}

	if b.metrics != nil {
		b.metrics.DecryptInFlight.Inc()
		defer b.metrics.DecryptInFlight.Dec()
	}

	ec, err := newContext(env.Hostname, b.maxStack, b.logger)
	if err != nil {
		return b.finish(site, req, start, "", &RuntimeError{Stage: StageShim, Message: err.Error()})
	}

	done := make(chan result, 1)
	var once sync.Once
	resolve := func(plaintext string, err error) {
		once.Do(func() {
			done <- result{plaintext: plaintext, err: err}
		})
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resolve("", &RuntimeError{Stage: StageRuntime, Message: fmt.Sprint(r)})
			}
		}()
		if err := invoke(ec, mod, req, resolve); err != nil {
			resolve("", err)
		}
	}()

	timer := time.NewTimer(b.deadline)
	defer timer.Stop()

	select {
	case res := <-done:
		return b.finish(site, req, start, res.plaintext, res.err)
	case <-timer.C:
		// Completion may have landed in the same instant; prefer it.
		select {
		case res := <-done:
			return b.finish(site, req, start, res.plaintext, res.err)
		default:
		}
		resolve("", ErrTimeout)
		ec.interrupt("decrypt deadline exceeded")
		return b.finish(site, req, start, "", ErrTimeout)
	}
}

// finish records telemetry and hands the outcome to the caller.
func (b *Bridge) finish(site string, req Request, start time.Time, plaintext string, err error) (string, error) {
	duration := time.Since(start)
	outcome := Outcome(err)
	if b.metrics != nil {
		b.metrics.RecordDecrypt(site, outcome, duration)
	}
	b.logger.Debug("decrypt attempt finished",
		logging.Site(site),
		logging.Chapter(req.ChapterID),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
	if err != nil {
		return "", err
	}
	return plaintext, nil
}
