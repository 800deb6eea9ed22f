package usecase

import (
	"context"
	"errors"
	"fmt"
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

// Locker is a cross-instance mutual exclusion, typically backed by Redis SET NX.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

// SubmissionRecorder receives every UpdateForm attempt for auditing. It must not block.
type SubmissionRecorder interface {
	Record(ctx context.Context, rec *model.SubmissionRecord)
}

// StepView is one entry of the visible step sequence.
type StepView struct {
	Index  int              `json:"index"`
	Name   model.StepName   `json:"name"`
	Status model.StepStatus `json:"status"`
}

// WizardState is a read-only copy of a wizard's progress.
type WizardState struct {
	UserID          string         `json:"userId"`
	Role            model.RoleKind `json:"role"`
	IsBusiness      bool           `json:"isBusiness"`
	CurrentStep     int            `json:"currentStep"`
	CurrentStepName model.StepName `json:"currentStepName"`
	Steps           []StepView     `json:"steps"`
	StepStatus      model.Ledger   `json:"stepStatus"`
	FormData        model.FormData `json:"formData"`
	ReviewReady     bool           `json:"reviewReady"`
}

// StepOutcome is the result of a successful SubmitStep or session open. Navigate is
// true only for the call that first found the wizard complete, so the client routes to
// review exactly once.
type StepOutcome struct {
	State    WizardState `json:"state"`
	Navigate bool        `json:"navigate"`
}

// WizardDeps are the collaborators of a Wizard. Snapshots, Gate and Recorder are
// optional.
type WizardDeps struct {
	Account   adapter.AccountService
	Roles     adapter.RoleProvider
	Snapshots repository.SnapshotStore
	Gate      Locker
	Recorder  SubmissionRecorder
	// OnReview runs once, when the wizard first becomes complete.
	OnReview      func(ctx context.Context, userID string)
	RemoteTimeout time.Duration
	GateTTL       time.Duration
	// Now stamps snapshots and judges their age. Defaults to time.Now.
	Now    func() time.Time
	Logger *zerolog.Logger
}

// Wizard drives one user's onboarding session: step navigation, the personal-info
// buffer, the status ledger and snapshot persistence. It is safe for concurrent use;
// while a remote submission is in flight the wizard's position is frozen.
type Wizard struct {
	mu sync.Mutex

	userID  string
	variant model.RoleVariant
	current int
	ledger  model.Ledger
	form    model.FormData
	buffer  model.PersonalInfoBuffer

	inFlight    map[model.StepName]bool
	reviewFired bool
	disposed    bool

	deps WizardDeps
	log  *zerolog.Logger
}

// NewWizard asks the role provider once which step sequence applies and returns a
// wizard at its fresh-start state.
func NewWizard(ctx context.Context, userID string, deps WizardDeps) (*Wizard, error) {
	if userID == "" || deps.Account == nil || deps.Roles == nil || deps.Logger == nil {
		return nil, domain.ErrInvalidArgument
	}
	signedUpAs, err := deps.Roles.SignedUpAs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve onboarding role: %w", err)
	}
	if deps.RemoteTimeout <= 0 {
		deps.RemoteTimeout = 15 * time.Second
	}
	if deps.GateTTL <= 0 {
		deps.GateTTL = deps.RemoteTimeout + 5*time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	l := deps.Logger.With().Str("component", "Wizard").Logger()
	return &Wizard{
		userID:   userID,
		variant:  model.VariantFor(signedUpAs),
		ledger:   model.NewLedger(),
		inFlight: make(map[model.StepName]bool),
		deps:     deps,
		log:      &l,
	}, nil
}

func (w *Wizard) UserID() string { return w.userID }

func (w *Wizard) Variant() model.RoleVariant { return w.variant }

// SubmitStep applies one step's values. Only the current step can be submitted.
func (w *Wizard) SubmitStep(ctx context.Context, step model.StepName, values model.StepValues) (*StepOutcome, error) {
	defer logging.TraceDuration(w.log, "Wizard.SubmitStep")()
	ctx = logging.WithStep(logging.WithUserID(ctx, w.userID), string(step))
	log := logging.With(ctx, w.log)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.disposed {
		return nil, domain.ErrWizardDisposed
	}
	idx := w.variant.IndexOf(step)
	if idx < 0 {
		metrics.IncStepSubmission(string(step), "invalid")
		return nil, domain.ErrUnknownStep
	}
	if w.inFlight[step] {
		metrics.IncStepSubmission(string(step), "in_flight")
		return nil, domain.ErrSubmissionInFlight
	}
	if idx != w.current {
		metrics.IncStepSubmission(string(step), "invalid")
		return nil, domain.ErrStepNotCurrent
	}
	if !values.Matches(step) {
		metrics.IncStepSubmission(string(step), "invalid")
		return nil, fmt.Errorf("%w: payload does not match step %s", domain.ErrInvalidArgument, step)
	}

	def, _ := w.variant.Step(idx)
	var remoteData *model.FormData
	if def.RequiresRemoteSubmit {
		buffered := w.buffer.Get()
		if buffered == nil {
			metrics.IncStepSubmission(string(step), "missing_prior")
			log.Warn().Msg("address submitted without buffered personal information")
			return nil, domain.ErrMissingPriorStepData
		}
		data, err := w.submitRemote(ctx, step, model.BuildCombinedPayload(*buffered, *values.Address))
		if err != nil {
			return nil, err
		}
		remoteData = data
		w.buffer.Clear()
	}
	if def.CapturesPersonalInfo {
		w.buffer.Set(values.Personal.Temp())
	}

	values.Record(&w.form)
	w.form.Overlay(remoteData)

	w.ledger.Merge(map[int]model.StepStatus{idx: model.StatusComplete})
	result := "review"
	if !w.variant.IsLast(idx) {
		w.ledger.Merge(map[int]model.StepStatus{idx + 1: model.StatusCurrent})
		w.current = idx + 1
		result = "advanced"
	}
	metrics.IncStepSubmission(string(step), result)
	log.Info().Int("current_step", w.current).Str("result", result).Msg("step submitted")

	w.persistLocked(ctx)
	navigate := w.checkCompleteLocked(ctx)
	return &StepOutcome{State: w.stateLocked(), Navigate: navigate}, nil
}

// submitRemote sends the combined payload without holding the lock. It is called with
// w.mu held and returns with w.mu held.
func (w *Wizard) submitRemote(ctx context.Context, step model.StepName, payload model.CombinedPayload) (*model.FormData, error) {
	log := logging.With(ctx, w.log)
	w.inFlight[step] = true
	w.mu.Unlock()

	resp, err := w.callUpdateForm(ctx, step, payload)

	w.mu.Lock()
	delete(w.inFlight, step)
	if w.disposed {
		log.Debug().Msg("response arrived after dispose; dropped")
		return nil, domain.ErrWizardDisposed
	}
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionInFlight) {
			metrics.IncStepSubmission(string(step), "in_flight")
			return nil, err
		}
		metrics.IncStepSubmission(string(step), "remote_failed")
		log.Warn().Err(err).Msg("remote submission failed")
		return nil, &domain.RemoteSubmissionError{Step: string(step), Err: err}
	}
	if resp == nil || !resp.Status {
		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		metrics.IncStepSubmission(string(step), "rejected")
		log.Warn().Str("message", msg).Msg("remote submission rejected")
		return nil, &domain.RemoteSubmissionError{Step: string(step), Message: msg}
	}
	return resp.Data, nil
}

func (w *Wizard) callUpdateForm(ctx context.Context, step model.StepName, payload model.CombinedPayload) (*model.UpdateFormResponse, error) {
	if w.deps.Gate != nil {
		key := submitGateKey(w.userID, step)
		token, err := w.deps.Gate.TryLock(ctx, key, w.deps.GateTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := w.deps.Gate.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				w.log.Warn().Err(err).Str("key", key).Msg("failed to release submit gate")
			}
		}()
	}

	rctx, cancel := context.WithTimeout(ctx, w.deps.RemoteTimeout)
	defer cancel()

	start := time.Now()
	resp, err := w.deps.Account.UpdateForm(rctx, w.userID, payload)
	ok := err == nil && resp != nil && resp.Status
	metrics.ObserveRemoteCall("update_form", time.Since(start), ok)

	if w.deps.Recorder != nil {
		msg := ""
		switch {
		case err != nil:
			msg = err.Error()
		case resp != nil:
			msg = resp.Message
		}
		w.deps.Recorder.Record(ctx, model.NewSubmissionRecord(w.userID, step, ok, msg))
	}
	return resp, err
}

// GoBack moves one step back. At step 0 it is a no-op.
func (w *Wizard) GoBack(ctx context.Context) (*WizardState, error) {
	ctx = logging.WithUserID(ctx, w.userID)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.disposed {
		return nil, domain.ErrWizardDisposed
	}
	if len(w.inFlight) > 0 {
		return nil, domain.ErrSubmissionInFlight
	}
	if w.current > 0 {
		w.ledger.Merge(map[int]model.StepStatus{w.current - 1: model.StatusCurrent})
		if w.ledger.Status(w.current) == model.StatusCurrent {
			w.ledger.Merge(map[int]model.StepStatus{w.current: model.StatusPending})
		}
		w.current--
		w.persistLocked(ctx)
	}
	st := w.stateLocked()
	return &st, nil
}

// Restore adopts a snapshot younger than model.SnapshotMaxAge that was taken on the
// same onboarding path. It reports whether anything was applied and whether the
// restored progress fired the review navigation.
func (w *Wizard) Restore(ctx context.Context, snap *model.WizardSnapshot) (applied, navigate bool) {
	if snap == nil {
		return false, false
	}
	ctx = logging.WithUserID(ctx, w.userID)
	log := logging.With(ctx, w.log)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.disposed || len(w.inFlight) > 0 {
		return false, false
	}
	if snap.Expired(w.deps.Now()) {
		log.Debug().Msg("snapshot expired; starting fresh")
		return false, false
	}
	if snap.IsBusiness != w.variant.IsBusiness() {
		log.Info().Bool("snapshot_business", snap.IsBusiness).Msg("snapshot taken on another onboarding path; ignored")
		return false, false
	}

	w.current = w.variant.Clamp(snap.CurrentStep)
	w.ledger = snap.StepStatus.Clone()
	if len(w.ledger) == 0 {
		w.ledger = model.NewLedger()
	}
	w.form = snap.FormData.Clone()
	w.buffer.Clear()
	navigate = w.checkCompleteLocked(ctx)
	log.Info().Int("current_step", w.current).Msg("progress restored")
	return true, navigate
}

// Seed fills the form with server-side values without touching navigation.
func (w *Wizard) Seed(data *model.FormData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Overlay(data)
}

// PendingPersonalInfo returns the buffered personal fields awaiting the address step.
func (w *Wizard) PendingPersonalInfo() *model.TempPersonalInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.Get()
}

// IsComplete reports whether every step of the wizard's path is complete.
func (w *Wizard) IsComplete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.variant.IsComplete(w.ledger)
}

// ReviewSignalled reports whether the review navigation has already fired.
func (w *Wizard) ReviewSignalled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reviewFired
}

func (w *Wizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// Dispose stops the wizard. Pending remote responses are discarded when they arrive.
func (w *Wizard) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disposed = true
	w.buffer.Clear()
}

func (w *Wizard) persistLocked(ctx context.Context) {
	if w.deps.Snapshots == nil {
		return
	}
	w.deps.Snapshots.Save(ctx, w.userID, &model.WizardSnapshot{
		CurrentStep: w.current,
		StepStatus:  w.ledger.Clone(),
		FormData:    w.form.Clone(),
		IsBusiness:  w.variant.IsBusiness(),
		Timestamp:   w.deps.Now().UnixMilli(),
	})
}

// checkCompleteLocked fires the review signal the first time the ledger is complete.
func (w *Wizard) checkCompleteLocked(ctx context.Context) bool {
	if w.reviewFired || !w.variant.IsComplete(w.ledger) {
		return false
	}
	w.reviewFired = true
	metrics.IncReviewNavigation()
	logging.With(ctx, w.log).Info().Msg("onboarding complete; review navigation signalled")
	if w.deps.OnReview != nil {
		w.deps.OnReview(ctx, w.userID)
	}
	return true
}

func (w *Wizard) stateLocked() WizardState {
	defs := w.variant.Steps()
	steps := make([]StepView, len(defs))
	for i, d := range defs {
		steps[i] = StepView{Index: i, Name: d.Name, Status: w.ledger.Status(i)}
	}
	cur, _ := w.variant.Step(w.current)
	return WizardState{
		UserID:          w.userID,
		Role:            w.variant.Kind(),
		IsBusiness:      w.variant.IsBusiness(),
		CurrentStep:     w.current,
		CurrentStepName: cur.Name,
		Steps:           steps,
		StepStatus:      w.ledger.Clone(),
		FormData:        w.form.Clone(),
		ReviewReady:     w.variant.IsComplete(w.ledger),
	}
}

// submitGateKey guards one user's remote submission of one step across instances.
func submitGateKey(userID string, step model.StepName) string {
	return fmt.Sprintf("kyc_submit:%s:%s", userID, step)
}
