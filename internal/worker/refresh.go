package worker

import (
	"context"
	"time"

	"github.com/bcdservices/dashboard-api/pkg/logger"
)

// Refresher reloads the selected week from the backend.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshWorker keeps the board in step with changes made outside the
// dashboard by reloading it on a fixed interval.
type RefreshWorker struct {
	target   Refresher
	interval time.Duration
	log      *logger.Logger
}

func NewRefreshWorker(target Refresher, interval time.Duration, log *logger.Logger) *RefreshWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &RefreshWorker{
		target:   target,
		interval: interval,
		log:      log.With("refresh_worker"),
	}
}

// Start blocks until ctx is done. A non-positive interval disables the
// worker and Start returns immediately.
func (w *RefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("periodic refresh disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("starting periodic refresh", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("stopping periodic refresh")
			return
		case <-ticker.C:
			if err := w.target.Refresh(ctx); err != nil {
				w.log.Warn("refresh finished with errors", "error", err.Error())
			}
		}
	}
}
