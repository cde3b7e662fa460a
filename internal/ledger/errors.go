package ledger

import "errors"

// ErrRunConflict indicates a version-checked run record write lost a race.
// Callers re-read the run and decide whether their transition still applies.
var ErrRunConflict = errors.New("migration run modified concurrently")
