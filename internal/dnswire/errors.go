// Package dnswire implements the wire codec for the single-domain DNS
// protocol spec.md §4.2 and §6 describe: every message concerns exactly one
// name, video.cs.cmu.edu, and comes in one of three fixed-length shapes
// (query, valid response, invalid response). It is grounded on the teacher's
// internal/dns package (offset-pointer Marshal/Parse style, sentinel error
// wrapping) narrowed to the spec's single-domain wire format, with the exact
// byte lengths taken from original_source/src/common/mydnsparse.h.
package dnswire

import "errors"

var (
	// ErrDNSWire is the sentinel DNS wire-format error. Wrap it with
	// fmt.Errorf("context: %w", ErrDNSWire) to add detail.
	ErrDNSWire = errors.New("dns wire error")

	// ErrLengthMismatch is returned when a Marshal or Parse cursor does not
	// land exactly on the expected fixed length for the message's variant.
	ErrLengthMismatch = errors.New("dns wire error: length mismatch")
)
