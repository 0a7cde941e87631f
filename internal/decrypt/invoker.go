package decrypt

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// resolveFunc delivers the attempt's terminal outcome. The bridge
// guards it so only the first call lands; later calls are discarded.
type resolveFunc func(plaintext string, err error)

// invoke runs the full unlock sequence inside ec: evaluate the vendor
// module, initialize it with the user id, evaluate the key packet, call
// the unlock entry point, then drain the timer queue so callback-style
// completion lands. The completion callback reports through resolve; an
// error return covers faults outside the callback path. When neither
// happens the attempt stays pending and the bridge deadline decides.
func invoke(ec *execContext, mod VendorModule, req Request, resolve resolveFunc) error {
	if _, err := ec.vm.RunString(mod.Source); err != nil {
		return stageError(StageModule, err)
	}

	modVal := ec.vm.Get(mod.GlobalName)
	if modVal == nil || goja.IsUndefined(modVal) || goja.IsNull(modVal) {
		return &RuntimeError{
			Stage:   StageModule,
			Message: fmt.Sprintf("global %q not defined after module eval", mod.GlobalName),
		}
	}
	modObj := modVal.ToObject(ec.vm)

	if setupFn, ok := goja.AssertFunction(modObj.Get(mod.SetupFn)); ok {
		if _, err := setupFn(modObj, ec.vm.ToValue(req.UserID)); err != nil {
			return stageError(StageSetup, err)
		}
	}

	packet, err := decodeKeyPacket(req.KeyPacket)
	if err != nil {
		return &RuntimeError{Stage: StageKeyPacket, Message: "key packet is not base64"}
	}
	if _, err := ec.vm.RunString(string(packet)); err != nil {
		return stageError(StageKeyPacket, err)
	}

	unlockFn, ok := goja.AssertFunction(modObj.Get(mod.UnlockFn))
	if !ok {
		return &RuntimeError{
			Stage:   StageUnlock,
			Message: fmt.Sprintf("%s.%s is not a function", mod.GlobalName, mod.UnlockFn),
		}
	}

	cb := ec.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		code := call.Argument(0).ToInteger()
		payload := call.Argument(1)
		switch {
		case code != 0:
			resolve("", &RejectError{Code: code})
		case goja.IsUndefined(payload) || goja.IsNull(payload):
			resolve("", &RuntimeError{
				Stage:   StageCallback,
				Message: "unlock reported success without a payload",
			})
		default:
			resolve(payload.String(), nil)
		}
		return goja.Undefined()
	})

	if _, err := unlockFn(modObj,
		ec.vm.ToValue(req.EncryptedContent),
		ec.vm.ToValue(req.ChapterID),
		cb,
	); err != nil {
		return stageError(StageUnlock, err)
	}

	if err := ec.drainTimers(); err != nil {
		return stageError(StageTimers, err)
	}
	return nil
}

// stageError converts a goja evaluation failure into the runtime fault
// for the stage it happened at.
func stageError(stage string, err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		return &RuntimeError{Stage: stage, Message: fmt.Sprintf("interrupted: %v", ie.Value())}
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return &RuntimeError{Stage: stage, Message: ex.Error()}
	}
	return &RuntimeError{Stage: stage, Message: err.Error()}
}
