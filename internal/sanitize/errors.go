package sanitize

import "errors"

// Failure classes. None of them reach the caller of a Scanner; they are
// wrapped for logging and degrade to "leave unchanged".
var (
	// ErrTokenization means a native or external tokenizer rejected the input.
	ErrTokenization = errors.New("tokenization failure")
	// ErrRegionMatch means a regex pass reported an engine error (timeout).
	ErrRegionMatch = errors.New("region match failure")
	// ErrDelegateUnavailable means an external tokenizer process could not start.
	ErrDelegateUnavailable = errors.New("delegate unavailable")
)
