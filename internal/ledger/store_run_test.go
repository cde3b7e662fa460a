package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"darkroom/internal/ledger"
	"darkroom/internal/testsupport"
)

func TestRunRecordCreatedLazilyAsIdle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	run, err := store.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run.Status != ledger.RunIdle {
		t.Fatalf("expected idle, got %s", run.Status)
	}
	if run.StartedAt != nil || run.CompletedAt != nil {
		t.Fatal("expected empty timestamps on a fresh run record")
	}
}

func TestUpdateRunPersistsConfigSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	run, err := store.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	now := time.Now().UTC()
	run.Status = ledger.RunRunning
	run.Config = ledger.RunConfig{BatchSize: 10, Concurrency: 2, Quality: 80, MaxWidth: 1600}
	run.StartedAt = &now
	if err := store.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	stored, err := store.Run(ctx)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if stored.Status != ledger.RunRunning {
		t.Fatalf("expected running, got %s", stored.Status)
	}
	if stored.Config != run.Config {
		t.Fatalf("config snapshot mismatch: %+v", stored.Config)
	}
	if stored.StartedAt == nil {
		t.Fatal("expected started_at persisted")
	}
	if stored.Version != run.Version {
		t.Fatalf("expected version %d, got %d", run.Version, stored.Version)
	}
}

func TestUpdateRunDetectsVersionConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := store.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := store.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	first.Status = ledger.RunRunning
	if err := store.UpdateRun(ctx, first); err != nil {
		t.Fatalf("first UpdateRun failed: %v", err)
	}

	second.Status = ledger.RunError
	err = store.UpdateRun(ctx, second)
	if !errors.Is(err, ledger.ErrRunConflict) {
		t.Fatalf("expected ErrRunConflict, got %v", err)
	}

	stored, err := store.Run(ctx)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if stored.Status != ledger.RunRunning {
		t.Fatalf("conflicting write must not mutate, got %s", stored.Status)
	}
}
