// Package main is the command line harness for the decryption bridge.
//
// It runs one unlock attempt against a vendor module: read a request
// from a JSON file, execute the module, and write the recovered
// plaintext to stdout or a file. Nothing is written on failure.
//
// Usage:
//
//	# Decrypt a captured request
//	./unlock -in request.json -module unlock.js
//
//	# Read the request from stdin, write plaintext to a file
//	cat request.json | ./unlock -in - -module unlock.js -o chapter.txt
//
//	# Nonstandard entry points
//	./unlock -in request.json -module unlock.js -global Vendor -unlock open
//
// The request file carries the four fields of an unlock attempt:
// encrypted_content, chapter_id, key_packet, and user_id.
//
// Exit codes:
//   - 0: plaintext recovered
//   - 1: usage error
//   - 2: unreadable input or module
//   - 3: malformed request
//   - 4: vendor module rejected the unlock
//   - 5: deadline exceeded
//   - 6: vendor module runtime failure
//   - 7: output write failure
package main
