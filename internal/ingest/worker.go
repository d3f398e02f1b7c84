package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WorkerConfig contains scheduler configuration.
type WorkerConfig struct {
	Interval time.Duration
}

// Runner executes one ingestion pass.
type Runner interface {
	Run(ctx context.Context) (*RunReport, error)
}

// Worker runs ingestion on a fixed schedule.
type Worker struct {
	config  WorkerConfig
	service Runner

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates a new ingestion worker.
func NewWorker(config WorkerConfig, service Runner) *Worker {
	return &Worker{
		config:  config,
		service: service,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the scheduler goroutine. The first run happens immediately,
// later runs every configured interval.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("starting ingestion worker", "interval", w.config.Interval)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	slog.Info("ingestion worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	w.runOnce(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if _, err := w.service.Run(ctx); err != nil {
		slog.Error("scheduled ingestion run failed", "error", err)
	}
}
