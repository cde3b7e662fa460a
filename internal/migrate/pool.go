package migrate

import (
	"context"
	"log/slog"
	"sync"

	"darkroom/internal/ledger"
	"darkroom/internal/logging"
	"darkroom/internal/pipeline"
	"darkroom/internal/transform"
)

// runBatch distributes claimed photos to a fixed pool of executors. Each
// executor processes one photo end to end before taking another, so the pool
// size bounds simultaneous source/target requests. The returned error is a
// ledger write failure, never an item failure.
func (m *Manager) runBatch(ctx context.Context, batch []*ledger.Photo, runCfg ledger.RunConfig, token string, logger *slog.Logger) error {
	workers := runCfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	jobs := make(chan *ledger.Photo)
	storeErrs := make(chan error, len(batch))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for photo := range jobs {
				if err := m.processPhoto(ctx, photo, runCfg, token, logger); err != nil {
					storeErrs <- err
				}
			}
		}()
	}

	for _, photo := range batch {
		jobs <- photo
	}
	close(jobs)
	wg.Wait()
	close(storeErrs)

	return <-storeErrs
}

func (m *Manager) processPhoto(ctx context.Context, photo *ledger.Photo, runCfg ledger.RunConfig, token string, logger *slog.Logger) error {
	opts := transform.Options{MaxWidth: runCfg.MaxWidth, Quality: runCfg.Quality}

	targetRef, procErr := m.pipe.Process(ctx, photo.ID, photo.SourceRef, opts)
	if ctx.Err() != nil {
		// Shutdown mid-item: leave the row claimed so the lease timeout
		// returns it to circulation on a later run.
		return nil
	}

	if procErr != nil {
		message := pipeline.Classify(procErr)
		ok, err := m.store.MarkError(ctx, photo.ID, token, message)
		if err != nil {
			return err
		}
		if !ok {
			logger.Debug("stale claim lost error writeback", logging.Int64("photo_id", photo.ID))
			return nil
		}
		logger.Warn("photo migration failed",
			logging.Int64("photo_id", photo.ID),
			logging.String("source_ref", photo.SourceRef),
			logging.String("reason", message),
		)
		return nil
	}

	ok, err := m.store.MarkDone(ctx, photo.ID, token, targetRef)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug("stale claim lost done writeback", logging.Int64("photo_id", photo.ID))
	}
	return nil
}
