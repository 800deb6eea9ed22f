//go:build !integration

package api_test

import (
	"context"
	"sync"
	"time"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/usecase"
)

// ---- mockKYC ----

type mockKYC struct {
	mu    sync.Mutex
	calls []string

	OpenFunc   func(ctx context.Context, userID string) (*usecase.StepOutcome, error)
	SubmitFunc func(ctx context.Context, userID string, step model.StepName, values model.StepValues) (*usecase.StepOutcome, error)
	BackFunc   func(ctx context.Context, userID string) (*usecase.WizardState, error)
	StateFunc  func(ctx context.Context, userID string) (*usecase.WizardState, error)
}

var _ usecase.KYCUseCase = (*mockKYC)(nil)

func (m *mockKYC) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockKYC) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockKYC) Open(ctx context.Context, userID string) (*usecase.StepOutcome, error) {
	m.record("Open:" + userID)
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, userID)
	}
	return &usecase.StepOutcome{State: usecase.WizardState{UserID: userID}}, nil
}

func (m *mockKYC) State(ctx context.Context, userID string) (*usecase.WizardState, error) {
	m.record("State:" + userID)
	if m.StateFunc != nil {
		return m.StateFunc(ctx, userID)
	}
	return nil, domain.ErrNoActiveSession
}

func (m *mockKYC) Submit(ctx context.Context, userID string, step model.StepName, values model.StepValues) (*usecase.StepOutcome, error) {
	m.record("Submit:" + string(step))
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, userID, step, values)
	}
	return &usecase.StepOutcome{State: usecase.WizardState{UserID: userID}}, nil
}

func (m *mockKYC) Back(ctx context.Context, userID string) (*usecase.WizardState, error) {
	m.record("Back:" + userID)
	if m.BackFunc != nil {
		return m.BackFunc(ctx, userID)
	}
	return &usecase.WizardState{UserID: userID}, nil
}

func (m *mockKYC) Close(ctx context.Context, userID string) error {
	m.record("Close:" + userID)
	return nil
}

func (m *mockKYC) ClearProgress(ctx context.Context, userID string) (*usecase.WizardState, error) {
	m.record("ClearProgress:" + userID)
	return &usecase.WizardState{UserID: userID}, nil
}

func (m *mockKYC) Form(ctx context.Context, userID string) (*model.FormData, error) {
	m.record("Form:" + userID)
	return &model.FormData{PersonalInformation: &model.PersonalInformation{FirstName: "Ada"}}, nil
}

func (m *mockKYC) ReapIdle(ctx context.Context) int { return 0 }

func (m *mockKYC) Shutdown() {}

// ---- mockReference ----

type mockReference struct {
	gotQ       string
	gotPage    int
	gotPerPage int
}

var _ usecase.ReferenceUseCase = (*mockReference)(nil)

func (m *mockReference) Categories(ctx context.Context, q string, page, perPage int) (model.Page[model.Category], error) {
	m.gotQ, m.gotPage, m.gotPerPage = q, page, perPage
	return model.Paginate([]model.Category{{ID: "c1", Name: "Nursing"}}, page, perPage), nil
}

func (m *mockReference) Services(ctx context.Context, q string, page, perPage int) (model.Page[model.Service], error) {
	m.gotQ, m.gotPage, m.gotPerPage = q, page, perPage
	return model.Paginate([]model.Service{}, page, perPage), nil
}

func (m *mockReference) Refresh(ctx context.Context) error { return nil }

// ---- mockAudit ----

type mockAudit struct {
	gotUser string
}

var _ usecase.AuditUseCase = (*mockAudit)(nil)

func (m *mockAudit) Record(ctx context.Context, rec *model.SubmissionRecord) {}

func (m *mockAudit) List(ctx context.Context, userID string, page, perPage int) (model.Page[*model.SubmissionRecord], error) {
	m.gotUser = userID
	return model.Paginate([]*model.SubmissionRecord{{ID: "r1", UserID: userID}}, page, perPage), nil
}

// ---- mockLimiter ----

type mockLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[key]++
	return m.counts[key] <= limit, nil
}
