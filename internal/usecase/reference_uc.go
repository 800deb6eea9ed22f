package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/adapter"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/logging"
)

// Compile-time check
var _ ReferenceUseCase = (*referenceUC)(nil)

// ReferenceUseCase serves categories and services from the cache, falling back to the
// account service. Filtering and pagination happen over the fetched list.
type ReferenceUseCase interface {
	Categories(ctx context.Context, q string, page, perPage int) (model.Page[model.Category], error)
	Services(ctx context.Context, q string, page, perPage int) (model.Page[model.Service], error)
	Refresh(ctx context.Context) error
}

type referenceUC struct {
	account adapter.AccountService
	cache   repository.ReferenceCache
	group   singleflight.Group
	log     *zerolog.Logger
}

// NewReferenceUseCase accepts a nil cache; every call then goes to the account service.
func NewReferenceUseCase(account adapter.AccountService, cache repository.ReferenceCache, logger *zerolog.Logger) *referenceUC {
	l := logger.With().Str("component", "ReferenceUseCase").Logger()
	return &referenceUC{account: account, cache: cache, log: &l}
}

func (r *referenceUC) Categories(ctx context.Context, q string, page, perPage int) (model.Page[model.Category], error) {
	defer logging.TraceDuration(r.log, "ReferenceUseCase.Categories")()
	items, err := r.categories(ctx)
	if err != nil {
		return model.Page[model.Category]{}, err
	}
	return model.Paginate(model.Filter(items, q), page, perPage), nil
}

func (r *referenceUC) Services(ctx context.Context, q string, page, perPage int) (model.Page[model.Service], error) {
	defer logging.TraceDuration(r.log, "ReferenceUseCase.Services")()
	items, err := r.services(ctx)
	if err != nil {
		return model.Page[model.Service]{}, err
	}
	return model.Paginate(model.Filter(items, q), page, perPage), nil
}

// Refresh drops the cached lists and fetches them again.
func (r *referenceUC) Refresh(ctx context.Context) error {
	if r.cache != nil {
		if err := r.cache.Remove(ctx); err != nil {
			return err
		}
	}
	if _, err := r.categories(ctx); err != nil {
		return err
	}
	_, err := r.services(ctx)
	return err
}

func (r *referenceUC) categories(ctx context.Context) ([]model.Category, error) {
	if r.cache != nil {
		items, err := r.cache.GetCategories(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, r.log).Warn().Err(err).Msg("category cache read failed")
		}
	}
	v, err, _ := r.group.Do("categories", func() (interface{}, error) {
		items, err := r.account.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if err := r.cache.SaveCategories(ctx, items); err != nil {
				logging.With(ctx, r.log).Warn().Err(err).Msg("category cache write failed")
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Category), nil
}

func (r *referenceUC) services(ctx context.Context) ([]model.Service, error) {
	if r.cache != nil {
		items, err := r.cache.GetServices(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, r.log).Warn().Err(err).Msg("service cache read failed")
		}
	}
	v, err, _ := r.group.Do("services", func() (interface{}, error) {
		items, err := r.account.ListServices(ctx)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if err := r.cache.SaveServices(ctx, items); err != nil {
				logging.With(ctx, r.log).Warn().Err(err).Msg("service cache write failed")
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Service), nil
}
