package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredCodeDeleter removes reset codes that expired before cutoff.
type ExpiredCodeDeleter interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetCodePurgeWorker periodically deletes reset codes that have been
// expired for longer than the retention window.
type ResetCodePurgeWorker struct {
	codes     ExpiredCodeDeleter
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewResetCodePurgeWorker creates a new ResetCodePurgeWorker.
func NewResetCodePurgeWorker(codes ExpiredCodeDeleter, retention, interval time.Duration, log zerolog.Logger) *ResetCodePurgeWorker {
	return &ResetCodePurgeWorker{
		codes:     codes,
		retention: retention,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("component", "reset_code_purge_worker").Logger(),
	}
}

// Start purges once immediately and then on every tick until ctx is done.
func (w *ResetCodePurgeWorker) Start(ctx context.Context) {
	w.log.Info().Dur("retention", w.retention).Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *ResetCodePurgeWorker) purge(ctx context.Context) {
	cutoff := w.now().Add(-w.retention)
	n, err := w.codes.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Purge failed")
		}
		return
	}
	if n > 0 {
		w.log.Info().Int64("count", n).Time("cutoff", cutoff).Msg("Purged expired reset codes")
	}
}
