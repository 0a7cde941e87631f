package decrypt

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when the deadline elapses before the vendor
// callback fires. The bridge returns it unwrapped.
var ErrTimeout = errors.New("decrypt deadline exceeded")

// Stages at which a vendor runtime fault can occur.
const (
	StageShim      = "shim"
	StageModule    = "module"
	StageSetup     = "setup"
	StageKeyPacket = "key_packet"
	StageUnlock    = "unlock"
	StageCallback  = "callback"
	StageTimers    = "timers"
	StageRuntime   = "runtime"
)

// RejectError reports that the vendor unlock routine called back with a
// non-zero code. Code values are vendor-defined and opaque; only
// zero/non-zero carries meaning here.
type RejectError struct {
	Code int64
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("unlock rejected with code %d", e.Code)
}

// RuntimeError reports an unexpected fault while constructing the
// execution context or evaluating vendor code.
type RuntimeError struct {
	Stage   string
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("vendor runtime failure at %s: %s", e.Stage, e.Message)
}

// MalformedRequestError reports a request field that is missing or could
// not be coerced to a usable string. Malformed requests fail before any
// execution context is built.
type MalformedRequestError struct {
	Field  string
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed decrypt request: %s %s", e.Field, e.Reason)
}

// IsTimeout reports whether err is the deadline failure.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsRejected reports whether err is a vendor rejection, and if so the
// rejection code.
func IsRejected(err error) (int64, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}

// IsRuntime reports whether err is a vendor runtime fault.
func IsRuntime(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

// IsMalformed reports whether err is a request contract violation.
func IsMalformed(err error) bool {
	var me *MalformedRequestError
	return errors.As(err, &me)
}

// Outcome maps a decrypt result to its metrics label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if IsTimeout(err) {
		return "timeout"
	}
	if _, ok := IsRejected(err); ok {
		return "rejected"
	}
	if IsMalformed(err) {
		return "malformed"
	}
	if IsRuntime(err) {
		return "runtime_error"
	}
	return "error"
}
