package migrate

import "errors"

// ErrInvalidTransition is returned for protocol errors such as pausing a run
// that is not running. Nothing is mutated when it is returned.
var ErrInvalidTransition = errors.New("invalid run transition")
