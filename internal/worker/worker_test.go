package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admin-auth/internal/model"
)

type fakeSender struct {
	mu        sync.Mutex
	delivered []model.ResetMailJob
	failFor   string
	notify    chan struct{}
}

func (s *fakeSender) SendResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if email == s.failFor {
		return errors.New("smtp: 550 mailbox unavailable")
	}
	s.delivered = append(s.delivered, model.ResetMailJob{Email: email, Code: code, ExpiresAt: expiresAt})
	if s.notify != nil {
		s.notify <- struct{}{}
	}
	return nil
}

func (s *fakeSender) jobs() []model.ResetMailJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ResetMailJob(nil), s.delivered...)
}

func testJob(email string) model.ResetMailJob {
	return model.ResetMailJob{
		Email:     email,
		Code:      "123456",
		ExpiresAt: time.Date(2026, 5, 4, 10, 15, 0, 0, time.UTC),
	}
}

// newTestMailWorker pins the clock before testJob's expiry.
func newTestMailWorker(q MailQueue, sender ResetCodeSender) *ResetMailWorker {
	w := NewResetMailWorker(q, sender, zerolog.Nop())
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	return w
}

func TestLocalMailQueue(t *testing.T) {
	q := NewLocalMailQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testJob("a@x.com")))
	assert.ErrorIs(t, q.Enqueue(ctx, testJob("b@x.com")), ErrQueueFull)

	job, err := q.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", job.Email)

	_, err = q.Dequeue(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrQueueEmpty)

	_, err = q.TryDequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = q.Dequeue(canceled, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJobCodec(t *testing.T) {
	job := testJob("a@x.com")
	data, err := encodeJob(job)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@x.com","code":"123456","expires_at":"2026-05-04T10:15:00Z"}`, data)

	_, err = decodeJob("{not json")
	assert.Error(t, err)
}

func TestResetMailWorkerDelivers(t *testing.T) {
	q := NewLocalMailQueue(8)
	sender := &fakeSender{failFor: "bounce@x.com", notify: make(chan struct{}, 8)}
	w := newTestMailWorker(q, sender)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.NoError(t, q.Enqueue(ctx, testJob("bounce@x.com")))
	require.NoError(t, q.Enqueue(ctx, testJob("a@x.com")))

	select {
	case <-sender.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	jobs := sender.jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, testJob("a@x.com"), jobs[0])
}

func TestResetMailWorkerDrainsOnStop(t *testing.T) {
	q := NewLocalMailQueue(8)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, q.Enqueue(context.Background(), testJob(email)))
	}
	sender := &fakeSender{}
	w := newTestMailWorker(q, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	jobs := sender.jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, "a@x.com", jobs[0].Email)
	assert.Equal(t, "c@x.com", jobs[2].Email)
}

func TestResetMailWorkerSkipsExpiredJobs(t *testing.T) {
	q := NewLocalMailQueue(8)
	expired := testJob("late@x.com")
	expired.ExpiresAt = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, q.Enqueue(context.Background(), expired))
	require.NoError(t, q.Enqueue(context.Background(), testJob("a@x.com")))

	sender := &fakeSender{}
	w := newTestMailWorker(q, sender)

	w.processNext(context.Background())
	assert.Empty(t, sender.jobs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, q.Enqueue(context.Background(), expired))
	w.Start(ctx)

	jobs := sender.jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a@x.com", jobs[0].Email)
}

type fakeDeleter struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (d *fakeDeleter) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cutoffs = append(d.cutoffs, cutoff)
	return 2, d.err
}

func TestResetCodePurgeWorkerCutoff(t *testing.T) {
	d := &fakeDeleter{}
	w := NewResetCodePurgeWorker(d, 24*time.Hour, time.Hour, zerolog.Nop())
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	w.purge(context.Background())

	require.Len(t, d.cutoffs, 1)
	assert.Equal(t, now.Add(-24*time.Hour), d.cutoffs[0])
}

func TestResetCodePurgeWorkerRunsOnStartAndStops(t *testing.T) {
	d := &fakeDeleter{err: errors.New("store down")}
	w := NewResetCodePurgeWorker(d, 0, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Len(t, d.cutoffs, 1)
}

// TestRedisMailQueue runs against a real Redis when REDIS_TEST_URL is set.
func TestRedisMailQueue(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	key := "test_reset_mail_queue"
	require.NoError(t, rdb.Del(ctx, key).Err())

	q := NewRedisMailQueue(rdb, key)
	for _, email := range []string{"a@x.com", "b@x.com"} {
		job := testJob(email)
		job.ExpiresAt = time.Now().Add(15 * time.Minute)
		require.NoError(t, q.Enqueue(ctx, job))
	}

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	first, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.Email)

	second, err := q.TryDequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", second.Email)

	_, err = q.TryDequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}
