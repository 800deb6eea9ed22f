package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/logging"
	"medstaff-dashboard/internal/infra/metrics"
)

// SnapshotKeyPrefix is followed by the user ID.
const SnapshotKeyPrefix = "kycFormProgress:"

func SnapshotKey(userID string) string { return SnapshotKeyPrefix + userID }

// Encrypter seals snapshot payloads at rest.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

var _ repository.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore serializes wizard snapshots into a KeyValueStore. It never surfaces
// errors: a failed save is logged and counted, a broken or stale entry restores as nil.
type SnapshotStore struct {
	kv     repository.KeyValueStore
	enc    Encrypter
	ttl    time.Duration
	now    func() time.Time
	logger *zerolog.Logger
}

type Option func(*SnapshotStore)

// WithEncrypter enables encryption at rest. A nil Encrypter keeps plaintext JSON.
func WithEncrypter(e Encrypter) Option {
	return func(s *SnapshotStore) {
		if e != nil {
			s.enc = e
		}
	}
}

// WithClock overrides time.Now for timestamps and the age check.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) { s.now = now }
}

// WithTTL sets a store-level expiry on saved entries; zero keeps them until cleared.
func WithTTL(ttl time.Duration) Option {
	return func(s *SnapshotStore) { s.ttl = ttl }
}

func NewSnapshotStore(kv repository.KeyValueStore, logger *zerolog.Logger, opts ...Option) *SnapshotStore {
	l := logger.With().Str("component", "SnapshotStore").Logger()
	s := &SnapshotStore{kv: kv, now: time.Now, ttl: model.SnapshotMaxAge, logger: &l}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save stamps the snapshot with the current time and overwrites the stored entry.
func (s *SnapshotStore) Save(ctx context.Context, userID string, snap *model.WizardSnapshot) {
	if snap == nil {
		return
	}
	log := logging.With(ctx, s.logger)

	cp := *snap
	cp.Timestamp = s.now().UnixMilli()
	b, err := json.Marshal(&cp)
	if err != nil {
		metrics.IncSnapshotOp("save", "error")
		log.Error().Err(err).Msg("marshal snapshot")
		return
	}
	payload := string(b)
	if s.enc != nil {
		if payload, err = s.enc.Encrypt(payload); err != nil {
			metrics.IncSnapshotOp("save", "error")
			log.Error().Err(err).Msg("encrypt snapshot")
			return
		}
	}
	if err := s.kv.Set(ctx, SnapshotKey(userID), payload, s.ttl); err != nil {
		metrics.IncSnapshotOp("save", "error")
		log.Warn().Err(err).Msg("snapshot save failed; progress will not survive a reload")
		return
	}
	snap.Timestamp = cp.Timestamp
	metrics.IncSnapshotOp("save", "ok")
}

// Restore returns the stored snapshot while it is younger than model.SnapshotMaxAge.
func (s *SnapshotStore) Restore(ctx context.Context, userID string) *model.WizardSnapshot {
	log := logging.With(ctx, s.logger)

	raw, err := s.kv.Get(ctx, SnapshotKey(userID))
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncSnapshotOp("restore", "miss")
		return nil
	}
	if err != nil {
		metrics.IncSnapshotOp("restore", "error")
		log.Warn().Err(err).Msg("snapshot read failed")
		return nil
	}
	if s.enc != nil {
		if raw, err = s.enc.Decrypt(raw); err != nil {
			metrics.IncSnapshotOp("restore", "malformed")
			log.Warn().Err(err).Msg("snapshot could not be decrypted")
			return nil
		}
	}

	var snap model.WizardSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		metrics.IncSnapshotOp("restore", "malformed")
		log.Warn().Err(err).Msg("malformed snapshot ignored")
		return nil
	}
	if !validLedger(snap.StepStatus) {
		metrics.IncSnapshotOp("restore", "malformed")
		log.Warn().Msg("snapshot with unknown step status ignored")
		return nil
	}
	if snap.Expired(s.now()) {
		metrics.IncSnapshotOp("restore", "expired")
		log.Debug().Time("saved_at", snap.SavedAt()).Msg("snapshot expired")
		return nil
	}
	metrics.IncSnapshotOp("restore", "ok")
	return &snap
}

func (s *SnapshotStore) Clear(ctx context.Context, userID string) {
	if err := s.kv.Delete(ctx, SnapshotKey(userID)); err != nil {
		metrics.IncSnapshotOp("clear", "error")
		logging.With(ctx, s.logger).Warn().Err(err).Msg("snapshot clear failed")
		return
	}
	metrics.IncSnapshotOp("clear", "ok")
}

func validLedger(l model.Ledger) bool {
	for i, st := range l {
		if i < 0 || !st.Status.Valid() {
			return false
		}
	}
	return true
}
