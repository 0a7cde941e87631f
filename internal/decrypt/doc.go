/*
Package decrypt runs site-supplied chapter unlocking code inside a
disposable JavaScript execution context and turns its callback-style
completion into a synchronous result.

# Overview

Some sites ship chapter bodies cipher-wrapped and unlock them in the
reader with an obfuscated vendor module. This package reproduces just
enough browser environment for that module to run: window and location
for the expected hostname, an inert document with the iframe eval path
some key-setup fragments use, a desktop navigator, virtual timers, and
atob/btoa. Vendor code executes in-process via goja; no real browser,
network, or filesystem is involved.

# Lifecycle

One call to Bridge.Decrypt is one attempt:

	bridge := decrypt.New(decrypt.WithLogger(logger))
	plaintext, err := bridge.Decrypt(env, decrypt.Request{
		EncryptedContent: payload.Body,
		ChapterID:        payload.ChapterID,
		KeyPacket:        payload.KeyPacket,
		UserID:           payload.UserID,
	})

The bridge builds a fresh context, evaluates the vendor module, calls
its setup entry point with the user id, evaluates the base64 key packet
(its global mutations stay confined to this one context), then invokes
unlock(content, chapterID, cb) and races the callback against the
deadline. Whichever signal fires first is the terminal outcome; the
loser is discarded. Contexts are never pooled or shared.

# Failure Taxonomy

	ErrTimeout             deadline elapsed before the callback fired
	*RejectError           vendor called back with a non-zero code
	*RuntimeError          context construction or vendor eval fault
	*MalformedRequestError request contract violation, checked first

Expected failures come back as these values, never as panics. The
bridge holds no state between calls, so identical requests are
idempotent and retry policy belongs to the caller.
*/
package decrypt
