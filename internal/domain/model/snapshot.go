package model

import "time"

// SnapshotMaxAge bounds how long saved wizard progress stays restorable.
const SnapshotMaxAge = 24 * time.Hour

// WizardSnapshot is the persisted form of a wizard session. The personal-info buffer
// is intentionally absent.
type WizardSnapshot struct {
	CurrentStep int      `json:"currentStep"`
	StepStatus  Ledger   `json:"stepStatus"`
	FormData    FormData `json:"formData"`
	IsBusiness  bool     `json:"isBusiness"`
	// Timestamp is epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

func (s *WizardSnapshot) SavedAt() time.Time { return time.UnixMilli(s.Timestamp) }

// Expired reports whether the snapshot is at least SnapshotMaxAge old at now.
func (s *WizardSnapshot) Expired(now time.Time) bool {
	return now.Sub(s.SavedAt()) >= SnapshotMaxAge
}
