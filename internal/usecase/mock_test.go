//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/adapter"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/worker"
	"medstaff-dashboard/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// =============================
// Adapters
// =============================

// ---- MockAccount ----

type MockAccount struct {
	mu       sync.Mutex
	Payloads []model.CombinedPayload // every UpdateForm payload, in call order
	Calls    map[string]int

	GetFormFunc        func(ctx context.Context, userID string) (*model.FormData, error)
	UpdateFormFunc     func(ctx context.Context, userID string, p model.CombinedPayload) (*model.UpdateFormResponse, error)
	GetUserDetailsFunc func(ctx context.Context, userID string) (*model.UserDetails, error)
	ListCategoriesFunc func(ctx context.Context) ([]model.Category, error)
	ListServicesFunc   func(ctx context.Context) ([]model.Service, error)
}

var _ adapter.AccountService = (*MockAccount)(nil)

func (m *MockAccount) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[op]++
}

func (m *MockAccount) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

func (m *MockAccount) GetForm(ctx context.Context, userID string) (*model.FormData, error) {
	m.count("GetForm")
	if m.GetFormFunc != nil {
		return m.GetFormFunc(ctx, userID)
	}
	return &model.FormData{}, nil
}

func (m *MockAccount) UpdateForm(ctx context.Context, userID string, p model.CombinedPayload) (*model.UpdateFormResponse, error) {
	m.count("UpdateForm")
	m.mu.Lock()
	m.Payloads = append(m.Payloads, p)
	m.mu.Unlock()
	if m.UpdateFormFunc != nil {
		return m.UpdateFormFunc(ctx, userID, p)
	}
	return &model.UpdateFormResponse{Status: true}, nil
}

func (m *MockAccount) GetUserDetails(ctx context.Context, userID string) (*model.UserDetails, error) {
	m.count("GetUserDetails")
	if m.GetUserDetailsFunc != nil {
		return m.GetUserDetailsFunc(ctx, userID)
	}
	return &model.UserDetails{ID: userID}, nil
}

func (m *MockAccount) ListCategories(ctx context.Context) ([]model.Category, error) {
	m.count("ListCategories")
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccount) ListServices(ctx context.Context) ([]model.Service, error) {
	m.count("ListServices")
	if m.ListServicesFunc != nil {
		return m.ListServicesFunc(ctx)
	}
	return nil, nil
}

// ---- MockRoles ----

type MockRoles struct {
	Role  string
	Err   error
	mu    sync.Mutex
	Calls int
}

var _ adapter.RoleProvider = (*MockRoles)(nil)

func (m *MockRoles) SignedUpAs(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return m.Role, m.Err
}

// =============================
// Repositories
// =============================

// ---- MockSnapshots ----

type MockSnapshots struct {
	mu      sync.Mutex
	Saved   []model.WizardSnapshot
	Stored  map[string]*model.WizardSnapshot
	Cleared []string
}

var _ repository.SnapshotStore = (*MockSnapshots)(nil)

func newMockSnapshots() *MockSnapshots {
	return &MockSnapshots{Stored: map[string]*model.WizardSnapshot{}}
}

func (m *MockSnapshots) Save(ctx context.Context, userID string, snap *model.WizardSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.Saved = append(m.Saved, cp)
	m.Stored[userID] = &cp
}

func (m *MockSnapshots) Restore(ctx context.Context, userID string) *model.WizardSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Stored[userID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (m *MockSnapshots) Clear(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Stored, userID)
	m.Cleared = append(m.Cleared, userID)
}

func (m *MockSnapshots) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

func (m *MockSnapshots) Last() model.WizardSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saved[len(m.Saved)-1]
}

// ---- MockReferenceCache ----

type MockReferenceCache struct {
	mu         sync.Mutex
	categories []model.Category
	services   []model.Service
	Removed    int
}

var _ repository.ReferenceCache = (*MockReferenceCache)(nil)

func (m *MockReferenceCache) GetCategories(ctx context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.categories == nil {
		return nil, domain.ErrNotFound
	}
	return m.categories, nil
}

func (m *MockReferenceCache) SaveCategories(ctx context.Context, items []model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = items
	return nil
}

func (m *MockReferenceCache) GetServices(ctx context.Context) ([]model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.services == nil {
		return nil, domain.ErrNotFound
	}
	return m.services, nil
}

func (m *MockReferenceCache) SaveServices(ctx context.Context, items []model.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = items
	return nil
}

func (m *MockReferenceCache) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories, m.services = nil, nil
	m.Removed++
	return nil
}

// ---- MockSubmissionLog ----

type MockSubmissionLog struct {
	mu      sync.Mutex
	Records []*model.SubmissionRecord

	ListFunc func(ctx context.Context, f repository.SubmissionLogFilter) ([]*model.SubmissionRecord, int, error)
}

var _ repository.SubmissionLogRepository = (*MockSubmissionLog)(nil)

func (m *MockSubmissionLog) Save(ctx context.Context, rec *model.SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return nil
}

func (m *MockSubmissionLog) List(ctx context.Context, f repository.SubmissionLogFilter) ([]*model.SubmissionRecord, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Records, len(m.Records), nil
}

// =============================
// Infra
// =============================

// ---- MockLocker ----

type MockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	Unlocked []string

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var _ usecase.Locker = (*MockLocker)(nil)

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = map[string]string{}
	}
	if _, ok := m.held[key]; ok {
		return "", domain.ErrSubmissionInFlight
	}
	m.held[key] = "token-" + key
	return m.held[key], nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	m.Unlocked = append(m.Unlocked, key)
	return nil
}

// ---- MockRecorder ----

type MockRecorder struct {
	mu      sync.Mutex
	Records []*model.SubmissionRecord
}

var _ usecase.SubmissionRecorder = (*MockRecorder)(nil)

func (m *MockRecorder) Record(ctx context.Context, rec *model.SubmissionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
}

// ---- syncPool runs tasks inline ----

type syncPool struct{ err error }

func (p syncPool) Submit(task worker.Task) error {
	if p.err != nil {
		return p.err
	}
	return task(context.Background())
}
