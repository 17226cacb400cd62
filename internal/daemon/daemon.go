package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"procwatch/internal/config"
	"procwatch/internal/logging"
	"procwatch/internal/monitor"
	"procwatch/internal/notify"
	"procwatch/internal/report"
	"procwatch/internal/store"
)

// Daemon coordinates the background scheduler and the HTTP API, and
// enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *store.Store
	scheduler  *monitor.Scheduler
	aggregator *report.Aggregator
	notifier   notify.Service
	api        *apiServer

	lockPath string
	pidPath  string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status is the daemon's runtime information, served over the API.
type Status struct {
	Running          bool      `json:"running"`
	PID              int       `json:"pid"`
	SchedulerRunning bool      `json:"scheduler_running"`
	LastCycle        time.Time `json:"last_cycle,omitzero"`
	LastCycleError   string    `json:"last_cycle_error,omitempty"`
	DBPath           string    `json:"db_path"`
	LockFilePath     string    `json:"lock_file_path"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	engine := monitor.NewEngine(cfg, st, logger)
	interval := time.Duration(cfg.Monitor.CycleInterval) * time.Second

	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      st,
		scheduler:  monitor.NewScheduler(interval, engine.RunCycle, logger),
		aggregator: report.NewAggregator(st),
		notifier:   notify.NewService(cfg),
		lockPath:   filepath.Join(cfg.Paths.DataDir, "procwatch.lock"),
		pidPath:    filepath.Join(cfg.Paths.DataDir, "procwatch.pid"),
	}
	d.lock = flock.New(d.lockPath)

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the instance lock, launches the scheduler loop, and
// begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another procwatch instance is already running")
	}

	if err := os.WriteFile(d.pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("write pid file: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.scheduler.Start(runCtx)
	if err := d.api.start(runCtx); err != nil {
		d.scheduler.Stop()
		cancel()
		d.cancel = nil
		_ = os.Remove(d.pidPath)
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("procwatch daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the scheduler and API and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.scheduler.Stop()
	d.api.stop()

	if err := os.Remove(d.pidPath); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("failed to remove pid file", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("procwatch daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status() Status {
	lastCycle, lastErr := d.scheduler.LastCycle()
	status := Status{
		Running:          d.running.Load(),
		PID:              os.Getpid(),
		SchedulerRunning: d.scheduler.Running(),
		LastCycle:        lastCycle,
		DBPath:           d.store.Path(),
		LockFilePath:     d.lockPath,
	}
	if lastErr != nil {
		status.LastCycleError = lastErr.Error()
	}
	return status
}

// APIAddr returns the bound API listener address, or empty when the API
// is disabled or not started.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}
