package migrate

import (
	"context"
	"fmt"
	"time"

	"darkroom/internal/ledger"
)

// Snapshot is the read-only aggregate served to polling clients. It is built
// from indexed counts and a single run-record read, never a content scan, and
// reflects all writes committed before the read began.
type Snapshot struct {
	Total     int
	Processed int
	Pending   int
	Claimed   int
	Errors    int

	RunStatus     ledger.RunStatus
	Config        ledger.RunConfig
	StartedAt     *time.Time
	LastUpdatedAt *time.Time
	CompletedAt   *time.Time
}

// Snapshot computes the current progress snapshot.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	counts, err := m.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger counts: %w", err)
	}
	run, err := m.store.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	return &Snapshot{
		Total:         counts.Total,
		Processed:     counts.Done,
		Pending:       counts.Pending,
		Claimed:       counts.Claimed,
		Errors:        counts.Error,
		RunStatus:     run.Status,
		Config:        run.Config,
		StartedAt:     run.StartedAt,
		LastUpdatedAt: run.LastUpdatedAt,
		CompletedAt:   run.CompletedAt,
	}, nil
}
