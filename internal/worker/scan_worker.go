package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/service"
)

// ScanWorker runs periodic breach scans. Scans serialize on the breach
// tracker's lock, so an overlapping manual scan cannot race a timed one.
type ScanWorker struct {
	service  *service.SLAService
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

// NewScanWorker constructs the worker.
func NewScanWorker(slaService *service.SLAService, interval, timeout time.Duration, logger *zap.Logger) *ScanWorker {
	return &ScanWorker{
		service:  slaService,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the scan loop. It returns immediately; the loop stops when
// ctx is cancelled or Stop is called.
func (w *ScanWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop terminates the loop.
func (w *ScanWorker) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *ScanWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-ticker.C:
			w.scanOnce(ctx)
		}
	}
}

// scanOnce bounds a single run so an unbounded ticket set cannot wedge the
// loop.
func (w *ScanWorker) scanOnce(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.service.ScanOnce(scanCtx); err != nil {
		w.logger.Warn("scheduled sla scan failed", zap.Error(err))
	}
}
