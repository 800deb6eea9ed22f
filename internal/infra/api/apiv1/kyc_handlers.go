package apiv1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/infra/logging"
)

const maxStepBody = 64 << 10

func (s *Server) openSession(w http.ResponseWriter, r *http.Request, p Principal) {
	out, err := s.kyc.Open(r.Context(), p.UserID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	resp := StateResponse{State: &out.State}
	if out.Navigate {
		resp.RedirectTo = s.reviewPath
		resp.Message = s.tr.T("review_ready")
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, p Principal) {
	st, err := s.kyc.State(r.Context(), p.UserID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, StateResponse{State: st})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request, p Principal) {
	if err := s.kyc.Close(r.Context(), p.UserID); err != nil {
		s.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearProgress(w http.ResponseWriter, r *http.Request, p Principal) {
	st, err := s.kyc.ClearProgress(r.Context(), p.UserID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, StateResponse{State: st, Message: s.tr.T("progress_cleared")})
}

func (s *Server) back(w http.ResponseWriter, r *http.Request, p Principal) {
	st, err := s.kyc.Back(r.Context(), p.UserID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, StateResponse{State: st})
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request, p Principal) {
	form, err := s.kyc.Form(r.Context(), p.UserID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, FormResponse{FormData: form})
}

// submitStep validates the step body locally, then hands it to the wizard.
func (s *Server) submitStep(w http.ResponseWriter, r *http.Request, p Principal) {
	var step string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "step", runtime.ParamLocationPath, chi.URLParam(r, "step"), &step); err != nil {
		s.WriteError(w, r, fmt.Errorf("%w: step: %v", domain.ErrInvalidArgument, err))
		return
	}
	ctx := logging.WithStep(r.Context(), step)
	r = r.WithContext(ctx)

	values, err := decodeStepValues(model.StepName(step), io.LimitReader(r.Body, maxStepBody))
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	if err := values.Validate(); err != nil {
		s.WriteError(w, r, err)
		return
	}

	out, err := s.kyc.Submit(ctx, p.UserID, model.StepName(step), values)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	resp := StepResponse{State: out.State, Message: s.tr.T("step_saved", stepLabel(model.StepName(step)))}
	if out.Navigate {
		resp.RedirectTo = s.reviewPath
		resp.Message = s.tr.T("review_ready")
	}
	WriteJSON(w, http.StatusOK, resp)
}

// decodeStepValues reads the JSON body into the section that belongs to step.
func decodeStepValues(step model.StepName, body io.Reader) (model.StepValues, error) {
	var (
		v   model.StepValues
		dst any
	)
	switch step {
	case model.StepPersonalInformation:
		v.Personal = &model.PersonalInformation{}
		dst = v.Personal
	case model.StepAddressInformation:
		v.Address = &model.AddressInformation{}
		dst = v.Address
	case model.StepIdentification:
		v.Identification = &model.Identification{}
		dst = v.Identification
	case model.StepFinancialInformation:
		v.Financial = &model.FinancialInformation{}
		dst = v.Financial
	default:
		return v, domain.ErrUnknownStep
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return v, &domain.ValidationError{Fields: map[string]string{"body": "is required"}}
		}
		return v, &domain.ValidationError{Fields: map[string]string{"body": "must be a JSON object"}}
	}
	return v, nil
}

func stepLabel(step model.StepName) string {
	switch step {
	case model.StepPersonalInformation:
		return "Personal information"
	case model.StepAddressInformation:
		return "Address information"
	case model.StepIdentification:
		return "Identification"
	case model.StepFinancialInformation:
		return "Financial information"
	}
	return string(step)
}
