package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/admin-auth/internal/model"
)

const mailPollTimeout = time.Second

// ResetCodeSender delivers a reset code to an admin's inbox.
type ResetCodeSender interface {
	SendResetCode(ctx context.Context, email, code string, expiresAt time.Time) error
}

// ResetMailWorker consumes the mail queue and sends reset codes.
// Delivery failures are logged and dropped; the code itself stays valid.
// Jobs whose code has already expired are skipped.
type ResetMailWorker struct {
	queue  MailQueue
	sender ResetCodeSender
	now    func() time.Time
	log    zerolog.Logger
}

// NewResetMailWorker creates a new ResetMailWorker.
func NewResetMailWorker(queue MailQueue, sender ResetCodeSender, log zerolog.Logger) *ResetMailWorker {
	return &ResetMailWorker{
		queue:  queue,
		sender: sender,
		now:    time.Now,
		log:    log.With().Str("component", "reset_mail_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *ResetMailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ResetMailWorker) processNext(ctx context.Context) {
	job, err := w.queue.Dequeue(ctx, mailPollTimeout)
	if err != nil {
		if !errors.Is(err, ErrQueueEmpty) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Dequeue error")
			time.Sleep(mailPollTimeout)
		}
		return
	}

	if err := w.deliver(ctx, job); err != nil {
		w.log.Error().Err(err).Str("email", job.Email).Msg("Reset mail delivery failed")
	}
}

// deliver sends one job. An expired job is dropped with a warning and reports success.
func (w *ResetMailWorker) deliver(ctx context.Context, job model.ResetMailJob) error {
	if !w.now().Before(job.ExpiresAt) {
		w.log.Warn().
			Str("email", job.Email).
			Time("expires_at", job.ExpiresAt).
			Msg("Reset mail skipped: code expired while queued")
		return nil
	}
	return w.sender.SendResetCode(ctx, job.Email, job.Code, job.ExpiresAt)
}

// drain sends whatever is still queued before shutdown.
func (w *ResetMailWorker) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	drained := 0
	for ctx.Err() == nil {
		job, err := w.queue.TryDequeue(ctx)
		if err != nil {
			if !errors.Is(err, ErrQueueEmpty) {
				w.log.Error().Err(err).Msg("Drain dequeue error")
			}
			break
		}
		if err := w.deliver(ctx, job); err != nil {
			w.log.Error().Err(err).Str("email", job.Email).Msg("Drain delivery failed")
			continue
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
