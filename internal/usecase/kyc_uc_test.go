//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/usecase"
)

type kycFixture struct {
	account   *MockAccount
	roles     *MockRoles
	snapshots *MockSnapshots
	now       time.Time
}

func newKYC(t *testing.T, role string) (usecase.KYCUseCase, *kycFixture) {
	t.Helper()
	f := &kycFixture{
		account:   &MockAccount{},
		roles:     &MockRoles{Role: role},
		snapshots: newMockSnapshots(),
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	uc := usecase.NewKYCUseCase(f.account, f.roles, f.snapshots, usecase.KYCConfig{
		RemoteTimeout:  time.Second,
		SessionIdleTTL: 10 * time.Minute,
	}, newTestLogger(), usecase.WithClock(func() time.Time { return f.now }))
	return uc, f
}

func stateOf(out *usecase.StepOutcome) *usecase.WizardState {
	if out == nil {
		return nil
	}
	return &out.State
}

func TestKYCUseCase_OpenSeedsFromAccountService(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	f.account.GetFormFunc = func(ctx context.Context, userID string) (*model.FormData, error) {
		return &model.FormData{PersonalInformation: &model.PersonalInformation{FirstName: "Grace"}}, nil
	}

	// --- Act ---
	out, err := uc.Open(ctx, "u1")
	st := stateOf(out)

	// --- Assert ---
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st.CurrentStep != 0 || st.IsBusiness || len(st.Steps) != 4 {
		t.Errorf("unexpected fresh state %+v", st)
	}
	if st.FormData.PersonalInformation == nil || st.FormData.PersonalInformation.FirstName != "Grace" {
		t.Errorf("form not prefilled: %+v", st.FormData)
	}

	// second Open reuses the live session
	if _, err := uc.Open(ctx, "u1"); err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if f.roles.Calls != 1 {
		t.Errorf("role provider should be asked once per wizard, got %d", f.roles.Calls)
	}
}

func TestKYCUseCase_OpenRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	f.snapshots.Stored["u1"] = &model.WizardSnapshot{
		CurrentStep: 2,
		StepStatus:  model.Ledger{0: {Status: model.StatusComplete}, 1: {Status: model.StatusComplete}, 2: {Status: model.StatusCurrent}},
		Timestamp:   f.now.UnixMilli(),
	}

	out, err := uc.Open(ctx, "u1")
	st := stateOf(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st.CurrentStep != 2 || st.CurrentStepName != model.StepIdentification {
		t.Errorf("expected restored step 2, got %+v", st)
	}
	if f.account.CallCount("GetForm") != 0 {
		t.Error("restored session must not be reseeded")
	}
}

func TestKYCUseCase_OpenSurvivesPrefillFailure(t *testing.T) {
	uc, f := newKYC(t, "business")
	f.account.GetFormFunc = func(ctx context.Context, userID string) (*model.FormData, error) {
		return nil, errors.New("account service down")
	}
	out, err := uc.Open(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Open should tolerate a failed prefill: %v", err)
	}
	st := stateOf(out)
	if !st.IsBusiness || len(st.Steps) != 2 {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestKYCUseCase_RequiresOpenSession(t *testing.T) {
	ctx := context.Background()
	uc, _ := newKYC(t, "individual")

	if _, err := uc.State(ctx, "ghost"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("State: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := uc.Submit(ctx, "ghost", model.StepPersonalInformation, personalValues()); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("Submit: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := uc.Back(ctx, "ghost"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("Back: expected ErrNoActiveSession, got %v", err)
	}
	if err := uc.Close(ctx, "ghost"); err != nil {
		t.Errorf("Close of a missing session should succeed, got %v", err)
	}
}

func TestKYCUseCase_SubmitBackAndClose(t *testing.T) {
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	if _, err := uc.Open(ctx, "u1"); err != nil {
		t.Fatalf("Open: %v", err)
	}

	out, err := uc.Submit(ctx, "u1", model.StepPersonalInformation, personalValues())
	if err != nil || out.State.CurrentStep != 1 {
		t.Fatalf("Submit: %+v %v", out, err)
	}
	st, err := uc.Back(ctx, "u1")
	if err != nil || st.CurrentStep != 0 {
		t.Fatalf("Back: %+v %v", st, err)
	}

	if err := uc.Close(ctx, "u1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := uc.State(ctx, "u1"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("expected closed session, got %v", err)
	}
	if got := f.snapshots.Last(); got.CurrentStep != 0 {
		t.Errorf("last snapshot should reflect the back navigation, got %+v", got)
	}

	// reopening restores from the snapshot, but the buffer is gone
	out, err = uc.Open(ctx, "u1")
	st = stateOf(out)
	if err != nil || st.CurrentStep != 0 {
		t.Fatalf("reopen: %+v %v", st, err)
	}
}

func TestKYCUseCase_ReloadMidFlowLosesBuffer(t *testing.T) {
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	_, _ = uc.Open(ctx, "u1")
	_, _ = uc.Submit(ctx, "u1", model.StepPersonalInformation, personalValues())
	_ = uc.Close(ctx, "u1")

	out, err := uc.Open(ctx, "u1")
	st := stateOf(out)
	if err != nil || st.CurrentStep != 1 {
		t.Fatalf("reopen: %+v %v", st, err)
	}
	if _, err := uc.Submit(ctx, "u1", model.StepAddressInformation, addressValues()); !errors.Is(err, domain.ErrMissingPriorStepData) {
		t.Fatalf("expected ErrMissingPriorStepData, got %v", err)
	}
	if f.account.CallCount("UpdateForm") != 0 {
		t.Error("no remote call expected")
	}
}

func TestKYCUseCase_ClearProgress(t *testing.T) {
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	_, _ = uc.Open(ctx, "u1")
	_, _ = uc.Submit(ctx, "u1", model.StepPersonalInformation, personalValues())

	st, err := uc.ClearProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("ClearProgress: %v", err)
	}
	if st.CurrentStep != 0 {
		t.Errorf("expected a fresh wizard, got step %d", st.CurrentStep)
	}
	if len(f.snapshots.Cleared) != 1 || f.snapshots.Cleared[0] != "u1" {
		t.Errorf("snapshot not cleared: %v", f.snapshots.Cleared)
	}
	if _, ok := f.snapshots.Stored["u1"]; ok {
		t.Error("stored snapshot should be gone")
	}
}

func TestKYCUseCase_ReapIdle(t *testing.T) {
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	_, _ = uc.Open(ctx, "stale")
	f.now = f.now.Add(9 * time.Minute)
	_, _ = uc.Open(ctx, "fresh")
	f.now = f.now.Add(2 * time.Minute)

	if n := uc.ReapIdle(ctx); n != 1 {
		t.Fatalf("expected one reaped session, got %d", n)
	}
	if _, err := uc.State(ctx, "stale"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("stale session should be gone, got %v", err)
	}
	if _, err := uc.State(ctx, "fresh"); err != nil {
		t.Errorf("fresh session should survive, got %v", err)
	}
}

func TestKYCUseCase_ShutdownDisposesSessions(t *testing.T) {
	ctx := context.Background()
	uc, _ := newKYC(t, "individual")
	_, _ = uc.Open(ctx, "a")
	_, _ = uc.Open(ctx, "b")

	uc.Shutdown()

	for _, id := range []string{"a", "b"} {
		if _, err := uc.State(ctx, id); !errors.Is(err, domain.ErrNoActiveSession) {
			t.Errorf("%s: expected ErrNoActiveSession after shutdown, got %v", id, err)
		}
	}
}

func TestKYCUseCase_ReviewHookAndRecorder(t *testing.T) {
	ctx := context.Background()
	var reviewed []string
	rec := &MockRecorder{}
	acc := &MockAccount{}
	gate := &MockLocker{}
	uc := usecase.NewKYCUseCase(acc, &MockRoles{Role: "business"}, newMockSnapshots(), usecase.KYCConfig{}, newTestLogger(),
		usecase.WithRecorder(rec),
		usecase.WithSubmitGate(gate),
		usecase.WithReviewHook(func(ctx context.Context, userID string) { reviewed = append(reviewed, userID) }),
	)
	_, _ = uc.Open(ctx, "biz")
	_, _ = uc.Submit(ctx, "biz", model.StepPersonalInformation, personalValues())
	out, err := uc.Submit(ctx, "biz", model.StepAddressInformation, addressValues())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Navigate || len(reviewed) != 1 || reviewed[0] != "biz" {
		t.Errorf("review hook not fired once: navigate=%v hooks=%v", out.Navigate, reviewed)
	}
	if len(rec.Records) != 1 || rec.Records[0].Step != model.StepAddressInformation {
		t.Errorf("expected an audit record for the address step, got %+v", rec.Records)
	}
	if len(gate.Unlocked) != 1 || gate.Unlocked[0] != "kyc_submit:biz:addressInformation" {
		t.Errorf("submit gate keyed by user and step expected, got %v", gate.Unlocked)
	}
}

func TestKYCUseCase_OpenOfCompletedSnapshotNavigatesOnce(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	uc, f := newKYC(t, "business")
	f.snapshots.Stored["u1"] = &model.WizardSnapshot{
		CurrentStep: 1,
		IsBusiness:  true,
		StepStatus:  model.Ledger{0: {Status: model.StatusComplete}, 1: {Status: model.StatusComplete}},
		Timestamp:   f.now.Add(-time.Hour).UnixMilli(),
	}

	// --- Act ---
	first, err := uc.Open(ctx, "u1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	second, err := uc.Open(ctx, "u1")
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}

	// --- Assert ---
	if !first.Navigate {
		t.Error("opening a completed snapshot should route to review")
	}
	if second.Navigate {
		t.Error("the live session must not route to review again")
	}
	if !first.State.ReviewReady || second.State.CurrentStep != 1 {
		t.Errorf("restored wizard should stay complete: %+v", second.State)
	}
}

func TestKYCUseCase_RestoreAgeFollowsInjectedClock(t *testing.T) {
	ctx := context.Background()
	uc, f := newKYC(t, "individual")
	// far from wall time, so only the injected clock can judge it fresh
	f.now = time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	f.snapshots.Stored["fresh"] = &model.WizardSnapshot{
		CurrentStep: 1,
		StepStatus:  model.Ledger{0: {Status: model.StatusComplete}, 1: {Status: model.StatusCurrent}},
		Timestamp:   f.now.Add(-23 * time.Hour).UnixMilli(),
	}
	f.snapshots.Stored["stale"] = &model.WizardSnapshot{
		CurrentStep: 1,
		StepStatus:  model.Ledger{0: {Status: model.StatusComplete}, 1: {Status: model.StatusCurrent}},
		Timestamp:   f.now.Add(-25 * time.Hour).UnixMilli(),
	}

	fresh, err := uc.Open(ctx, "fresh")
	if err != nil || fresh.State.CurrentStep != 1 {
		t.Fatalf("fresh snapshot not restored: %+v %v", fresh, err)
	}
	stale, err := uc.Open(ctx, "stale")
	if err != nil || stale.State.CurrentStep != 0 {
		t.Fatalf("stale snapshot restored: %+v %v", stale, err)
	}
	if _, err := uc.Submit(ctx, "stale", model.StepPersonalInformation, personalValues()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := f.snapshots.Last(); got.Timestamp != f.now.UnixMilli() {
		t.Errorf("snapshot stamped %d, want %d", got.Timestamp, f.now.UnixMilli())
	}
}
