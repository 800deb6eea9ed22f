package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/logging"
	"medstaff-dashboard/internal/infra/metrics"
	"medstaff-dashboard/internal/infra/worker"
)

// Compile-time checks
var (
	_ AuditUseCase       = (*auditUC)(nil)
	_ SubmissionRecorder = (*auditUC)(nil)
)

// AuditUseCase records and lists UpdateForm attempts. Without a repository both
// operations are no-ops.
type AuditUseCase interface {
	Record(ctx context.Context, rec *model.SubmissionRecord)
	List(ctx context.Context, userID string, page, perPage int) (model.Page[*model.SubmissionRecord], error)
}

// TaskSubmitter is the part of worker.Pool the audit log needs.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

type auditUC struct {
	repo repository.SubmissionLogRepository
	pool TaskSubmitter
	log  *zerolog.Logger
}

func NewAuditUseCase(repo repository.SubmissionLogRepository, pool TaskSubmitter, logger *zerolog.Logger) *auditUC {
	l := logger.With().Str("component", "AuditUseCase").Logger()
	return &auditUC{repo: repo, pool: pool, log: &l}
}

// Record hands the write to the worker pool so the request path never waits on it.
func (a *auditUC) Record(ctx context.Context, rec *model.SubmissionRecord) {
	if a.repo == nil || rec == nil {
		return
	}
	log := logging.With(ctx, a.log)
	save := func(ctx context.Context) error {
		if err := a.repo.Save(ctx, rec); err != nil {
			metrics.IncAuditDropped()
			return err
		}
		return nil
	}
	if a.pool == nil {
		if err := save(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Msg("failed to write submission audit record")
		}
		return
	}
	if err := a.pool.Submit(save); err != nil {
		metrics.IncAuditDropped()
		log.Warn().Err(err).Str("record_id", rec.ID).Msg("submission audit record dropped")
	}
}

func (a *auditUC) List(ctx context.Context, userID string, page, perPage int) (model.Page[*model.SubmissionRecord], error) {
	defer logging.TraceDuration(a.log, "AuditUseCase.List")()
	empty := model.Paginate[*model.SubmissionRecord](nil, page, perPage)
	if a.repo == nil {
		return empty, nil
	}
	recs, total, err := a.repo.List(ctx, repository.SubmissionLogFilter{
		UserID: userID,
		Limit:  empty.PerPage,
		Offset: model.Offset(empty.Page, empty.PerPage),
	})
	if err != nil {
		return empty, err
	}
	if recs == nil {
		recs = []*model.SubmissionRecord{}
	}
	return model.Page[*model.SubmissionRecord]{
		Items:      recs,
		Page:       empty.Page,
		PerPage:    empty.PerPage,
		Total:      total,
		TotalPages: (total + empty.PerPage - 1) / empty.PerPage,
	}, nil
}
