package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stemsi/admin-auth/internal/model"
	"github.com/stemsi/admin-auth/internal/repository"
)

type fakeAdminStore struct {
	mu     sync.Mutex
	admins map[string]*model.Admin

	getErr    error
	findErr   error
	updateErr error

	getCalls    []string
	updateCalls []string
}

func newFakeAdminStore(admins ...*model.Admin) *fakeAdminStore {
	f := &fakeAdminStore{admins: map[string]*model.Admin{}}
	for _, a := range admins {
		clone := *a
		f.admins[a.Email] = &clone
	}
	return f
}

func (f *fakeAdminStore) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, email)
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.admins[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAdminStore) FindActiveAdmin(ctx context.Context, email string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.admins[email]
	if !ok || !a.IsActive || a.Role != model.RoleAdmin {
		return nil, repository.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAdminStore) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, email)
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.admins[email]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = updatedAt
	return nil
}

func (f *fakeAdminStore) SetActive(ctx context.Context, email string, active bool, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[email]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsActive = active
	a.UpdatedAt = updatedAt
	return nil
}

func (f *fakeAdminStore) Create(ctx context.Context, a *model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.admins[a.Email]; ok {
		return repository.ErrDuplicate
	}
	a.ID = fmt.Sprintf("admin-%d", len(f.admins)+1)
	clone := *a
	f.admins[a.Email] = &clone
	return nil
}

func (f *fakeAdminStore) delete(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.admins, email)
}

type fakeResetCodeStore struct {
	mu    sync.Mutex
	codes []*model.ResetCode

	createErr  error
	findErr    error
	consumeErr error

	consumeCalls int
}

func (f *fakeResetCodeStore) Create(ctx context.Context, rc *model.ResetCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	rc.ID = fmt.Sprintf("rc-%d", len(f.codes)+1)
	clone := *rc
	f.codes = append(f.codes, &clone)
	return nil
}

func (f *fakeResetCodeStore) match(email, code string, now time.Time) *model.ResetCode {
	for i := len(f.codes) - 1; i >= 0; i-- {
		rc := f.codes[i]
		if rc.Email == email && rc.Code == code && !rc.Used && rc.ExpiresAt.After(now) {
			return rc
		}
	}
	return nil
}

func (f *fakeResetCodeStore) FindRedeemable(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rc := f.match(email, code, now)
	if rc == nil {
		return nil, repository.ErrNotFound
	}
	clone := *rc
	return &clone, nil
}

func (f *fakeResetCodeStore) Consume(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumeCalls++
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	rc := f.match(email, code, now)
	if rc == nil {
		return nil, repository.ErrNotFound
	}
	rc.Used = true
	usedAt := now
	rc.UsedAt = &usedAt
	clone := *rc
	return &clone, nil
}

func (f *fakeResetCodeStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.codes[:0]
	var n int64
	for _, rc := range f.codes {
		if rc.ExpiresAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, rc)
	}
	f.codes = kept
	return n, nil
}

func (f *fakeResetCodeStore) all() []model.ResetCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ResetCode, 0, len(f.codes))
	for _, rc := range f.codes {
		out = append(out, *rc)
	}
	return out
}

type fakeMailQueue struct {
	mu   sync.Mutex
	jobs []model.ResetMailJob
	err  error
}

func (f *fakeMailQueue) Enqueue(ctx context.Context, job model.ResetMailJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return f.err
}

func (f *fakeMailQueue) sent() []model.ResetMailJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ResetMailJob(nil), f.jobs...)
}

// fakeClock is a settable time source shared by AuthService and TokenService.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
