package repository

import (
	"context"

	"medstaff-dashboard/internal/domain/model"
)

// ReferenceCache stores fetched reference lists. Get* return domain.ErrNotFound on a
// miss; Save* overwrite whatever was cached before.
type ReferenceCache interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	SaveCategories(ctx context.Context, items []model.Category) error
	GetServices(ctx context.Context) ([]model.Service, error)
	SaveServices(ctx context.Context, items []model.Service) error
	Remove(ctx context.Context) error
}
