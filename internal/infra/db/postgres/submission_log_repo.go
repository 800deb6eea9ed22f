package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/repository"
)

var _ repository.SubmissionLogRepository = (*submissionLogRepo)(nil)

type submissionLogRepo struct {
	pool *pgxpool.Pool
	tm   *TxManager
}

func NewSubmissionLogRepo(pool *pgxpool.Pool) repository.SubmissionLogRepository {
	return &submissionLogRepo{pool: pool, tm: NewTxManager(pool)}
}

func (r *submissionLogRepo) Save(ctx context.Context, rec *model.SubmissionRecord) error {
	const q = `
INSERT INTO kyc_submissions (id, user_id, step, success, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, q, rec.ID, rec.UserID, string(rec.Step), rec.Success, rec.Message, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("save submission %s: %w", rec.ID, err)
	}
	return nil
}

func (r *submissionLogRepo) List(ctx context.Context, f repository.SubmissionLogFilter) ([]*model.SubmissionRecord, int, error) {
	const countQ = `
SELECT count(*) FROM kyc_submissions
WHERE ($1 = '' OR user_id = $1)`
	const listQ = `
SELECT id, user_id, step, success, message, created_at
FROM kyc_submissions
WHERE ($1 = '' OR user_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	limit := f.Limit
	if limit <= 0 || limit > model.MaxPerPage {
		limit = model.DefaultPerPage
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		out   []*model.SubmissionRecord
		total int
	)
	err := r.tm.WithTx(ctx, readOnly, func(ctx context.Context, q querier) error {
		if err := q.QueryRow(ctx, countQ, f.UserID).Scan(&total); err != nil {
			return err
		}
		rows, err := q.Query(ctx, listQ, f.UserID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				rec  model.SubmissionRecord
				step string
			)
			if err := rows.Scan(&rec.ID, &rec.UserID, &step, &rec.Success, &rec.Message, &rec.CreatedAt); err != nil {
				return err
			}
			rec.Step = model.StepName(step)
			out = append(out, &rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return out, total, nil
}
