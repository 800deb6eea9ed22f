package repository

import (
	"context"

	"medstaff-dashboard/internal/domain/model"
)

// SnapshotStore persists wizard progress per user. None of its methods report errors:
// a failed write only loses recovery data and a broken read means "no saved progress".
type SnapshotStore interface {
	Save(ctx context.Context, userID string, snap *model.WizardSnapshot)
	// Restore returns nil when nothing restorable is stored.
	Restore(ctx context.Context, userID string) *model.WizardSnapshot
	Clear(ctx context.Context, userID string)
}
