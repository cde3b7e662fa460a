package ledger

import (
	"strings"
	"time"
)

// Status represents the migration lifecycle of a single photo.
type Status string

const (
	StatusPending Status = "pending"
	StatusClaimed Status = "claimed"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusClaimed,
	StatusDone,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Photo is one row of the migration ledger. Rows are created when an asset is
// discovered as needing migration and are never deleted, only transitioned.
type Photo struct {
	ID           int64
	SourceRef    string
	FileName     string
	TargetRef    string
	Status       Status
	ErrorMessage string
	ClaimedBy    string
	ClaimedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Counts aggregates ledger rows per status. Pending+Claimed+Done+Error always
// equals Total.
type Counts struct {
	Total   int
	Pending int
	Claimed int
	Done    int
	Error   int
}

// Remaining reports how many items still need a terminal status.
func (c Counts) Remaining() int {
	return c.Pending + c.Claimed
}

// RunStatus represents the lifecycle of the singleton migration run.
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunPaused    RunStatus = "paused"
	RunCompleted RunStatus = "completed"
	RunError     RunStatus = "error"
)

// RunConfig is the knob snapshot captured at the most recent start.
type RunConfig struct {
	BatchSize   int
	Concurrency int
	Quality     int
	MaxWidth    int
}

// Run is the singleton run record. Version supports optimistic-concurrency
// writes so a second process cannot silently take over an active run.
type Run struct {
	Status        RunStatus
	Config        RunConfig
	StartedAt     *time.Time
	CompletedAt   *time.Time
	LastUpdatedAt *time.Time
	Version       int64
}

// Active reports whether the run currently owns the worker pool lifecycle.
func (r Run) Active() bool {
	return r.Status == RunRunning || r.Status == RunPaused
}
