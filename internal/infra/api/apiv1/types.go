package apiv1

import (
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/usecase"
)

// StateResponse wraps the wizard state returned by the session endpoints. RedirectTo
// is set when opening a session restored already complete progress.
type StateResponse struct {
	State      *usecase.WizardState `json:"state"`
	Message    string               `json:"message,omitempty"`
	RedirectTo string               `json:"redirectTo,omitempty"`
}

// StepResponse is the answer to a step submission. RedirectTo is set only on the
// submission that completed the wizard.
type StepResponse struct {
	State      usecase.WizardState `json:"state"`
	Message    string              `json:"message"`
	RedirectTo string              `json:"redirectTo,omitempty"`
}

type FormResponse struct {
	FormData *model.FormData `json:"formData"`
}

// ErrorBody is the error envelope of every non-2xx answer.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	TraceID string            `json:"traceId,omitempty"`
}

type CategoryPage = model.Page[model.Category]

type ServicePage = model.Page[model.Service]

type SubmissionPage = model.Page[*model.SubmissionRecord]
