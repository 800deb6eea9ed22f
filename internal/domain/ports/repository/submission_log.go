package repository

import (
	"context"

	"medstaff-dashboard/internal/domain/model"
)

// SubmissionLogFilter narrows ListSubmissions. Empty UserID lists everyone.
type SubmissionLogFilter struct {
	UserID string
	Limit  int
	Offset int
}

// SubmissionLogRepository is the audit trail of UpdateForm attempts.
type SubmissionLogRepository interface {
	Save(ctx context.Context, rec *model.SubmissionRecord) error
	List(ctx context.Context, f SubmissionLogFilter) ([]*model.SubmissionRecord, int, error)
}
