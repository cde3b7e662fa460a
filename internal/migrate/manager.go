package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"darkroom/internal/config"
	"darkroom/internal/ledger"
	"darkroom/internal/logging"
	"darkroom/internal/pipeline"
)

// Manager owns the run record state machine and drives the worker pool. It is
// the only writer of run status; item status writes happen through the claim
// protocol in the ledger.
type Manager struct {
	cfg    *config.Config
	store  *ledger.Store
	pipe   *pipeline.Pipeline
	logger *slog.Logger

	pollInterval       time.Duration
	errorRetryInterval time.Duration
	leaseTimeout       time.Duration

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	paused   atomic.Bool
	runToken string
}

// Overrides optionally replaces config defaults in the run snapshot captured
// at start. Zero fields keep the configured default.
type Overrides struct {
	BatchSize   int
	Concurrency int
	Quality     int
	MaxWidth    int
}

// NewManager constructs a migration manager.
func NewManager(cfg *config.Config, store *ledger.Store, pipe *pipeline.Pipeline, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:                cfg,
		store:              store,
		pipe:               pipe,
		logger:             logger,
		pollInterval:       time.Duration(cfg.Migration.PollInterval) * time.Second,
		errorRetryInterval: time.Duration(cfg.Migration.ErrorRetryInterval) * time.Second,
		leaseTimeout:       time.Duration(cfg.Migration.LeaseTimeout) * time.Second,
	}
}

// Running reports whether this process currently drives the worker pool.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Start transitions the run to running and activates the worker pool. Legal
// from every run status; calling it while the pool is already active and the
// run is running is a no-op success returning the current run, so a
// double-click or retried request can never spawn a second pool.
func (m *Manager) Start(ctx context.Context, over Overrides) (*ledger.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, err := m.store.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	for m.running {
		if run.Status == ledger.RunRunning {
			return run, nil
		}
		// The previous pool is still draining its in-flight batch after a
		// pause or escalation. Wait for it to exit so the pool activated
		// below is the only claimer, then re-read the run it left behind.
		// The re-check catches a concurrent Start that won the race while
		// the lock was released.
		m.mu.Unlock()
		m.wg.Wait()
		m.mu.Lock()
		run, err = m.store.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("re-read run: %w", err)
		}
	}

	snapshot := m.configSnapshot(over)
	for attempt := 0; ; attempt++ {
		run.Status = ledger.RunRunning
		run.Config = snapshot
		if run.StartedAt == nil {
			now := time.Now().UTC()
			run.StartedAt = &now
		}
		run.CompletedAt = nil

		err := m.store.UpdateRun(ctx, run)
		if err == nil {
			break
		}
		if !errors.Is(err, ledger.ErrRunConflict) || attempt >= 2 {
			return nil, fmt.Errorf("start run: %w", err)
		}
		// Lost a version race; re-read and re-apply. Another process having
		// moved the run to running means start is already satisfied.
		run, err = m.store.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("re-read run: %w", err)
		}
		if run.Status == ledger.RunRunning {
			return run, nil
		}
	}

	token := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.runToken = token
	m.paused.Store(false)

	m.wg.Add(1)
	go m.runLoop(runCtx, run.Config, token)

	m.logger.Info("migration run started",
		logging.String("run_token", token),
		logging.Int("batch_size", run.Config.BatchSize),
		logging.Int("concurrency", run.Config.Concurrency),
	)
	return run, nil
}

// Pause stops the pool from claiming new photos. In-flight photos finish to a
// terminal status; the loop exits at the next batch boundary. Legal only
// while the run is running.
func (m *Manager) Pause(ctx context.Context) (*ledger.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, err := m.store.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	if run.Status != ledger.RunRunning {
		return nil, fmt.Errorf("%w: cannot pause while %s", ErrInvalidTransition, run.Status)
	}

	run.Status = ledger.RunPaused
	if err := m.store.UpdateRun(ctx, run); err != nil {
		if errors.Is(err, ledger.ErrRunConflict) {
			return nil, fmt.Errorf("%w: run changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("pause run: %w", err)
	}

	m.paused.Store(true)
	m.logger.Info("migration run paused")
	return run, nil
}

// RetryErrors requeues every error photo back to pending and returns the
// count. It does not resume the run; a subsequent Start reprocesses them.
func (m *Manager) RetryErrors(ctx context.Context) (int64, error) {
	count, err := m.store.RetryErrors(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		m.logger.Info("error photos requeued", logging.Int64("count", count))
	}
	return count, nil
}

// Stop cancels the run loop and waits for in-flight work. Used at daemon
// shutdown; the run record keeps its last status so a restart can resume.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) configSnapshot(over Overrides) ledger.RunConfig {
	snapshot := ledger.RunConfig{
		BatchSize:   m.cfg.Migration.BatchSize,
		Concurrency: m.cfg.Migration.Concurrency,
		Quality:     m.cfg.Migration.Quality,
		MaxWidth:    m.cfg.Migration.MaxWidth,
	}
	if over.BatchSize > 0 {
		snapshot.BatchSize = over.BatchSize
	}
	if over.Concurrency > 0 {
		snapshot.Concurrency = over.Concurrency
	}
	if over.Quality > 0 {
		snapshot.Quality = over.Quality
	}
	if over.MaxWidth > 0 {
		snapshot.MaxWidth = over.MaxWidth
	}
	return snapshot
}

func (m *Manager) finishLoop() {
	m.mu.Lock()
	m.running = false
	m.cancel = nil
	m.runToken = ""
	m.mu.Unlock()
	m.wg.Done()
}
