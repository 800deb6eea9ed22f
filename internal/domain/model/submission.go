package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// SubmissionRecord is one audited UpdateForm attempt.
type SubmissionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Step      StepName  `json:"step"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewSubmissionRecord(userID string, step StepName, success bool, message string) *SubmissionRecord {
	now := time.Now().UTC()
	return &SubmissionRecord{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:    userID,
		Step:      step,
		Success:   success,
		Message:   message,
		CreatedAt: now,
	}
}
