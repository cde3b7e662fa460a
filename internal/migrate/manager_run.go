package migrate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"darkroom/internal/ledger"
	"darkroom/internal/logging"
)

func (m *Manager) runLoop(ctx context.Context, runCfg ledger.RunConfig, token string) {
	defer m.finishLoop()

	logger := m.logger.With(logging.String("run_token", token))

	// A single ledger hiccup gets one backoff and retry; a second consecutive
	// failure means the ledger is unreachable and the run escalates.
	ledgerFailures := 0
	retryAfterFailure := func(err error) bool {
		ledgerFailures++
		if ledgerFailures > 1 {
			return false
		}
		logger.Warn("ledger error, backing off",
			logging.Duration("backoff", m.errorRetryInterval),
			logging.Error(err),
		)
		select {
		case <-ctx.Done():
		case <-time.After(m.errorRetryInterval):
		}
		return true
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if m.paused.Load() {
			logger.Info("claiming stopped after pause")
			return
		}

		batch, err := m.store.ClaimBatch(ctx, token, runCfg.BatchSize, m.leaseTimeout)
		if err != nil {
			if retryAfterFailure(err) {
				continue
			}
			m.escalate(ctx, logger, err)
			return
		}

		if len(batch) > 0 {
			if err := m.runBatch(ctx, batch, runCfg, token, logger); err != nil {
				if retryAfterFailure(err) {
					continue
				}
				m.escalate(ctx, logger, err)
				return
			}
			if err := m.store.TouchRun(ctx); err != nil {
				if retryAfterFailure(err) {
					continue
				}
				m.escalate(ctx, logger, err)
				return
			}
			ledgerFailures = 0
			continue
		}

		counts, err := m.store.Counts(ctx)
		if err != nil {
			if retryAfterFailure(err) {
				continue
			}
			m.escalate(ctx, logger, err)
			return
		}
		ledgerFailures = 0
		if counts.Remaining() == 0 {
			m.complete(ctx, logger, counts)
			return
		}

		// Nothing claimable but unexpired foreign leases remain; wait for
		// them to finish or expire.
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

// complete transitions running to completed once no pending or claimed photos
// remain. A version conflict means someone else moved the run (for example a
// pause that raced the final batch); the transition is retried only while the
// run is still running.
func (m *Manager) complete(ctx context.Context, logger *slog.Logger, counts ledger.Counts) {
	for attempt := 0; attempt < 3; attempt++ {
		run, err := m.store.Run(ctx)
		if err != nil {
			logger.Error("read run for completion", logging.Error(err))
			return
		}
		if run.Status != ledger.RunRunning {
			return
		}
		now := time.Now().UTC()
		run.Status = ledger.RunCompleted
		run.CompletedAt = &now
		err = m.store.UpdateRun(ctx, run)
		if err == nil {
			logger.Info("migration run completed",
				logging.Int("done", counts.Done),
				logging.Int("errors", counts.Error),
			)
			return
		}
		if !errors.Is(err, ledger.ErrRunConflict) {
			logger.Error("complete run", logging.Error(err))
			return
		}
	}
}

// escalate handles ledger unreachability. Item failures never land here; they
// are contained by the pipeline and recorded on the item itself.
func (m *Manager) escalate(ctx context.Context, logger *slog.Logger, cause error) {
	logger.Error("migration run halted by ledger failure", logging.Error(cause))

	// Best effort: the ledger that just failed may refuse this write too.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	run, err := m.store.Run(writeCtx)
	if err != nil {
		logger.Warn("run record unreachable during escalation", logging.Error(err))
		return
	}
	if !run.Active() {
		return
	}
	run.Status = ledger.RunError
	if err := m.store.UpdateRun(writeCtx, run); err != nil {
		logger.Warn("record run error status", logging.Error(err))
	}
}
