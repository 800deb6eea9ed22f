package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/adapter"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/logging"
	"medstaff-dashboard/internal/infra/metrics"
)

// Compile-time check
var _ KYCUseCase = (*kycUC)(nil)

// KYCUseCase keeps one wizard per user in memory, mirroring how a dashboard tab mounts
// the onboarding screen: Open on mount, Close on unmount.
type KYCUseCase interface {
	Open(ctx context.Context, userID string) (*StepOutcome, error)
	State(ctx context.Context, userID string) (*WizardState, error)
	Submit(ctx context.Context, userID string, step model.StepName, values model.StepValues) (*StepOutcome, error)
	Back(ctx context.Context, userID string) (*WizardState, error)
	Close(ctx context.Context, userID string) error
	ClearProgress(ctx context.Context, userID string) (*WizardState, error)
	Form(ctx context.Context, userID string) (*model.FormData, error)
	ReapIdle(ctx context.Context) int
	Shutdown()
}

type KYCConfig struct {
	RemoteTimeout  time.Duration
	SessionIdleTTL time.Duration
	GateTTL        time.Duration
}

type session struct {
	wizard   *Wizard
	lastSeen time.Time
}

type kycUC struct {
	mu       sync.Mutex
	sessions map[string]*session

	account   adapter.AccountService
	roles     adapter.RoleProvider
	snapshots repository.SnapshotStore
	gate      Locker
	recorder  SubmissionRecorder
	onReview  func(ctx context.Context, userID string)
	cfg       KYCConfig
	now       func() time.Time
	root      *zerolog.Logger
	log       *zerolog.Logger
}

// KYCOption customises optional collaborators of the KYC use case.
type KYCOption func(*kycUC)

func WithSubmitGate(l Locker) KYCOption { return func(u *kycUC) { u.gate = l } }

func WithRecorder(r SubmissionRecorder) KYCOption { return func(u *kycUC) { u.recorder = r } }

func WithReviewHook(fn func(ctx context.Context, userID string)) KYCOption {
	return func(u *kycUC) { u.onReview = fn }
}

// WithClock overrides time.Now for idle tracking and snapshot age.
func WithClock(now func() time.Time) KYCOption { return func(u *kycUC) { u.now = now } }

func NewKYCUseCase(account adapter.AccountService, roles adapter.RoleProvider, snapshots repository.SnapshotStore, cfg KYCConfig, logger *zerolog.Logger, opts ...KYCOption) *kycUC {
	l := logger.With().Str("component", "KYCUseCase").Logger()
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = 30 * time.Minute
	}
	u := &kycUC{
		sessions:  make(map[string]*session),
		account:   account,
		roles:     roles,
		snapshots: snapshots,
		cfg:       cfg,
		now:       time.Now,
		root:      logger,
		log:       &l,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Open returns the user's live wizard, or builds one from the saved snapshot. Without
// a usable snapshot the form is seeded from the account service. Navigate is set when
// a restored snapshot was already complete.
func (u *kycUC) Open(ctx context.Context, userID string) (*StepOutcome, error) {
	defer logging.TraceDuration(u.log, "KYCUseCase.Open")()
	ctx = logging.WithUserID(ctx, userID)

	if s := u.touch(userID); s != nil {
		return &StepOutcome{State: s.wizard.State()}, nil
	}

	w, err := u.newWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	restored, navigate := w.Restore(ctx, u.restoreSnapshot(ctx, userID))
	if !restored {
		u.seed(ctx, w)
	}
	st, installed := u.install(userID, w)
	return &StepOutcome{State: *st, Navigate: navigate && installed}, nil
}

func (u *kycUC) State(ctx context.Context, userID string) (*WizardState, error) {
	s := u.touch(userID)
	if s == nil {
		return nil, domain.ErrNoActiveSession
	}
	st := s.wizard.State()
	return &st, nil
}

func (u *kycUC) Submit(ctx context.Context, userID string, step model.StepName, values model.StepValues) (*StepOutcome, error) {
	defer logging.TraceDuration(u.log, "KYCUseCase.Submit")()
	s := u.touch(userID)
	if s == nil {
		return nil, domain.ErrNoActiveSession
	}
	out, err := s.wizard.SubmitStep(ctx, step, values)
	u.touch(userID)
	return out, err
}

func (u *kycUC) Back(ctx context.Context, userID string) (*WizardState, error) {
	s := u.touch(userID)
	if s == nil {
		return nil, domain.ErrNoActiveSession
	}
	return s.wizard.GoBack(ctx)
}

// Close disposes the user's wizard. Closing a missing session is not an error.
func (u *kycUC) Close(ctx context.Context, userID string) error {
	u.mu.Lock()
	s, ok := u.sessions[userID]
	delete(u.sessions, userID)
	n := len(u.sessions)
	u.mu.Unlock()

	if ok {
		s.wizard.Dispose()
		metrics.SetActiveSessions(n)
		logging.With(logging.WithUserID(ctx, userID), u.log).Debug().Msg("wizard session closed")
	}
	return nil
}

// ClearProgress drops the saved snapshot and restarts the user's wizard from step 0.
func (u *kycUC) ClearProgress(ctx context.Context, userID string) (*WizardState, error) {
	ctx = logging.WithUserID(ctx, userID)
	_ = u.Close(ctx, userID)
	if u.snapshots != nil {
		u.snapshots.Clear(ctx, userID)
	}

	w, err := u.newWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.seed(ctx, w)
	st, _ := u.install(userID, w)
	return st, nil
}

func (u *kycUC) Form(ctx context.Context, userID string) (*model.FormData, error) {
	defer logging.TraceDuration(u.log, "KYCUseCase.Form")()
	start := time.Now()
	form, err := u.account.GetForm(ctx, userID)
	metrics.ObserveRemoteCall("get_form", time.Since(start), err == nil)
	return form, err
}

// ReapIdle disposes sessions that have not been used for the configured idle TTL.
func (u *kycUC) ReapIdle(ctx context.Context) int {
	cutoff := u.now().Add(-u.cfg.SessionIdleTTL)

	u.mu.Lock()
	var stale []*session
	for id, s := range u.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(u.sessions, id)
		}
	}
	n := len(u.sessions)
	u.mu.Unlock()

	for _, s := range stale {
		s.wizard.Dispose()
	}
	if len(stale) > 0 {
		metrics.SetActiveSessions(n)
		u.log.Info().Int("count", len(stale)).Msg("idle wizard sessions reaped")
	}
	return len(stale)
}

// Shutdown disposes every session.
func (u *kycUC) Shutdown() {
	u.mu.Lock()
	all := u.sessions
	u.sessions = make(map[string]*session)
	u.mu.Unlock()

	for _, s := range all {
		s.wizard.Dispose()
	}
	metrics.SetActiveSessions(0)
}

func (u *kycUC) newWizard(ctx context.Context, userID string) (*Wizard, error) {
	return NewWizard(ctx, userID, WizardDeps{
		Account:       u.account,
		Roles:         u.roles,
		Snapshots:     u.snapshots,
		Gate:          u.gate,
		Recorder:      u.recorder,
		OnReview:      u.onReview,
		RemoteTimeout: u.cfg.RemoteTimeout,
		GateTTL:       u.cfg.GateTTL,
		Now:           u.now,
		Logger:        u.root,
	})
}

func (u *kycUC) restoreSnapshot(ctx context.Context, userID string) *model.WizardSnapshot {
	if u.snapshots == nil {
		return nil
	}
	return u.snapshots.Restore(ctx, userID)
}

// seed is best effort: a failing GetForm leaves an empty form.
func (u *kycUC) seed(ctx context.Context, w *Wizard) {
	form, err := u.Form(ctx, w.UserID())
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("could not prefill onboarding form")
		return
	}
	w.Seed(form)
}

// install registers w unless a concurrent Open won the race, in which case w is
// discarded in favour of the existing session. It reports whether w was installed.
func (u *kycUC) install(userID string, w *Wizard) (*WizardState, bool) {
	u.mu.Lock()
	s, ok := u.sessions[userID]
	if !ok {
		s = &session{wizard: w}
		u.sessions[userID] = s
	}
	s.lastSeen = u.now()
	n := len(u.sessions)
	u.mu.Unlock()

	if ok {
		w.Dispose()
	}
	metrics.SetActiveSessions(n)
	st := s.wizard.State()
	return &st, !ok
}

func (u *kycUC) touch(userID string) *session {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[userID]
	if !ok {
		return nil
	}
	s.lastSeen = u.now()
	return s
}
