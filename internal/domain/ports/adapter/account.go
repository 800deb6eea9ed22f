package adapter

import (
	"context"

	"medstaff-dashboard/internal/domain/model"
)

// AccountService is the remote data collaborator: the platform's account/CRM REST API.
type AccountService interface {
	GetForm(ctx context.Context, userID string) (*model.FormData, error)
	// UpdateForm returns a non-nil response whenever the service answered; callers
	// must check Status themselves.
	UpdateForm(ctx context.Context, userID string, payload model.CombinedPayload) (*model.UpdateFormResponse, error)
	GetUserDetails(ctx context.Context, userID string) (*model.UserDetails, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListServices(ctx context.Context) ([]model.Service, error)
}

// RoleProvider answers which onboarding path a user signed up for.
type RoleProvider interface {
	SignedUpAs(ctx context.Context, userID string) (string, error)
}
