package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"darkroom/internal/ledger"
	"darkroom/internal/testsupport"
)

func TestAddIsIdempotentOnSourceRef(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, created, err := store.Add(ctx, "photos/a.jpg", "a.jpg")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !created {
		t.Fatal("expected first add to create a row")
	}
	if first.Status != ledger.StatusPending {
		t.Fatalf("expected pending status, got %s", first.Status)
	}

	second, created, err := store.Add(ctx, "photos/a.jpg", "a.jpg")
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if created {
		t.Fatal("expected second add to reuse the existing row")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}
}

func TestCountsPartitionAlwaysSumsToTotal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedPhotos(t, store, 6)

	claimed, err := store.ClaimBatch(ctx, "run-1", 3, time.Minute)
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("expected 3 claimed, got %d", len(claimed))
	}
	if _, err := store.MarkDone(ctx, claimed[0].ID, "run-1", "target/0.jpg"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if _, err := store.MarkError(ctx, claimed[1].ID, "run-1", "fetch: boom"); err != nil {
		t.Fatalf("MarkError failed: %v", err)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Total != 6 {
		t.Fatalf("expected total 6, got %d", counts.Total)
	}
	if sum := counts.Pending + counts.Claimed + counts.Done + counts.Error; sum != counts.Total {
		t.Fatalf("status partition broken: %+v", counts)
	}
	if counts.Pending != 3 || counts.Claimed != 1 || counts.Done != 1 || counts.Error != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestClaimBatchSingleWinnerUnderConcurrency(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedPhotos(t, store, 20)

	const claimers = 4
	results := make([][]*ledger.Photo, claimers)
	var wg sync.WaitGroup
	wg.Add(claimers)
	for i := 0; i < claimers; i++ {
		go func(n int) {
			defer wg.Done()
			claimed, err := store.ClaimBatch(ctx, fmt.Sprintf("claimer-%d", n), 20, time.Minute)
			if err != nil {
				t.Errorf("claimer %d failed: %v", n, err)
				return
			}
			results[n] = claimed
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]int)
	total := 0
	for _, claimed := range results {
		for _, photo := range claimed {
			seen[photo.ID]++
			total++
		}
	}
	if total != 20 {
		t.Fatalf("expected 20 claims overall, got %d", total)
	}
	for id, winners := range seen {
		if winners != 1 {
			t.Fatalf("photo %d claimed by %d claimers", id, winners)
		}
	}
}

func TestClaimBatchReclaimsExpiredLeases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	photo := testsupport.SeedPhoto(t, store, "photos/stale.jpg")

	claimed, err := store.ClaimBatch(ctx, "dead-run", 1, time.Minute)
	if err != nil {
		t.Fatalf("initial claim failed: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("expected 1 claimed, got %d", len(claimed))
	}

	// A fresh lease is not reclaimable.
	blocked, err := store.ClaimBatch(ctx, "new-run", 1, time.Minute)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if len(blocked) != 0 {
		t.Fatalf("expected no claims against a live lease, got %d", len(blocked))
	}

	// A negative lease timeout puts the cutoff in the future, making every
	// outstanding claim look expired.
	reclaimed, err := store.ClaimBatch(ctx, "new-run", 1, -time.Hour)
	if err != nil {
		t.Fatalf("reclaim failed: %v", err)
	}
	if len(reclaimed) != 1 || reclaimed[0].ID != photo.ID {
		t.Fatalf("expected to reclaim photo %d, got %#v", photo.ID, reclaimed)
	}
	if reclaimed[0].ClaimedBy != "new-run" {
		t.Fatalf("expected new owner, got %q", reclaimed[0].ClaimedBy)
	}
}

func TestMarkDoneRequiresClaimOwnership(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedPhoto(t, store, "photos/owned.jpg")

	claimed, err := store.ClaimBatch(ctx, "run-a", 1, time.Minute)
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	id := claimed[0].ID

	ok, err := store.MarkDone(ctx, id, "run-b", "target/owned.jpg")
	if err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if ok {
		t.Fatal("expected foreign owner to lose the writeback")
	}

	ok, err = store.MarkDone(ctx, id, "run-a", "target/owned.jpg")
	if err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if !ok {
		t.Fatal("expected owning run to complete the writeback")
	}

	photo, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if photo.Status != ledger.StatusDone {
		t.Fatalf("expected done, got %s", photo.Status)
	}
	if photo.TargetRef != "target/owned.jpg" {
		t.Fatalf("unexpected target ref %q", photo.TargetRef)
	}
	if photo.ClaimedBy != "" || photo.ClaimedAt != nil {
		t.Fatal("expected claim fields cleared on success")
	}
}

func TestRetryErrorsRequeuesOnlyErrorRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedPhotos(t, store, 4)

	claimed, err := store.ClaimBatch(ctx, "run-1", 4, time.Minute)
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if _, err := store.MarkError(ctx, claimed[0].ID, "run-1", "fetch: timeout"); err != nil {
		t.Fatalf("MarkError failed: %v", err)
	}
	if _, err := store.MarkError(ctx, claimed[1].ID, "run-1", "transform: corrupt"); err != nil {
		t.Fatalf("MarkError failed: %v", err)
	}
	if _, err := store.MarkDone(ctx, claimed[2].ID, "run-1", "target/2.jpg"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	count, err := store.RetryErrors(ctx)
	if err != nil {
		t.Fatalf("RetryErrors failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 requeued, got %d", count)
	}

	requeued, err := store.GetByID(ctx, claimed[0].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if requeued.Status != ledger.StatusPending {
		t.Fatalf("expected pending after retry, got %s", requeued.Status)
	}
	if requeued.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", requeued.ErrorMessage)
	}

	done, err := store.GetByID(ctx, claimed[2].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if done.Status != ledger.StatusDone {
		t.Fatalf("retry must not touch done rows, got %s", done.Status)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedPhotos(t, store, 3)
	claimed, err := store.ClaimBatch(ctx, "run-1", 1, time.Minute)
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if _, err := store.MarkError(ctx, claimed[0].ID, "run-1", "store: denied"); err != nil {
		t.Fatalf("MarkError failed: %v", err)
	}

	errored, err := store.List(ctx, ledger.StatusError)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(errored) != 1 || errored[0].ErrorMessage != "store: denied" {
		t.Fatalf("unexpected error rows: %#v", errored)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
}
