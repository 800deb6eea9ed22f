package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/usecase"
)

// Translator renders user-facing notification texts.
type Translator interface {
	T(key string, args ...interface{}) string
}

// ServerDeps are the collaborators of the v1 API. Audit and SubmitMiddleware are
// optional.
type ServerDeps struct {
	KYC        usecase.KYCUseCase
	Reference  usecase.ReferenceUseCase
	Audit      usecase.AuditUseCase
	Translator Translator
	// ReviewPath is returned as redirectTo once the wizard is complete.
	ReviewPath string
	// SubmitMiddleware wraps the step submission route, e.g. a rate limiter.
	SubmitMiddleware func(http.Handler) http.Handler
	Logger           *zerolog.Logger
}

// Server implements the /api/v1 routes.
type Server struct {
	kyc        usecase.KYCUseCase
	ref        usecase.ReferenceUseCase
	audit      usecase.AuditUseCase
	tr         Translator
	reviewPath string
	submitMW   func(http.Handler) http.Handler
	errs       *ErrorWriter
	log        *zerolog.Logger
}

func NewServer(deps ServerDeps) *Server {
	l := deps.Logger.With().Str("component", "APIv1").Logger()
	if deps.ReviewPath == "" {
		deps.ReviewPath = "/onboarding/review"
	}
	if deps.SubmitMiddleware == nil {
		deps.SubmitMiddleware = func(next http.Handler) http.Handler { return next }
	}
	return &Server{
		kyc:        deps.KYC,
		ref:        deps.Reference,
		audit:      deps.Audit,
		tr:         deps.Translator,
		reviewPath: deps.ReviewPath,
		submitMW:   deps.SubmitMiddleware,
		errs:       NewErrorWriter(deps.Translator, &l),
		log:        &l,
	}
}

// RegisterAPIV1 mounts every v1 route on r under /api/v1. Authentication is the
// caller's concern; handlers expect a Principal in the request context.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/kyc", func(r chi.Router) {
			r.Post("/session", s.user(s.openSession))
			r.Get("/session", s.user(s.getSession))
			r.Delete("/session", s.user(s.closeSession))
			r.Delete("/progress", s.user(s.clearProgress))
			r.Post("/back", s.user(s.back))
			r.Get("/form", s.user(s.getForm))
			r.With(s.submitMW).Post("/steps/{step}", s.user(s.submitStep))
		})
		r.Route("/reference", func(r chi.Router) {
			r.Get("/categories", s.user(s.listCategories))
			r.Get("/services", s.user(s.listServices))
		})
		r.Get("/admin/kyc/submissions", s.admin(s.listSubmissions))
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, p Principal)

func (s *Server) user(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			s.WriteError(w, r, domain.ErrUnauthorized)
			return
		}
		h(w, r, p)
	}
}

func (s *Server) admin(h userHandler) http.HandlerFunc {
	return s.user(func(w http.ResponseWriter, r *http.Request, p Principal) {
		if p.Role != RoleAdmin {
			WriteJSON(w, http.StatusForbidden, ErrorBody{Error: ErrorDetail{Code: "forbidden", Message: s.tr.T("unauthorized")}})
			return
		}
		h(w, r, p)
	})
}

// pageParams binds the optional q, page and per_page query parameters.
type pageParams struct {
	Q       string
	Page    int
	PerPage int
}

func bindPageParams(r *http.Request) (pageParams, error) {
	var (
		p       pageParams
		q       *string
		page    *int
		perPage *int
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &q); err != nil {
		return p, &domain.ValidationError{Fields: map[string]string{"q": err.Error()}}
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &page); err != nil {
		return p, &domain.ValidationError{Fields: map[string]string{"page": "must be an integer"}}
	}
	if err := runtime.BindQueryParameter("form", true, false, "per_page", query, &perPage); err != nil {
		return p, &domain.ValidationError{Fields: map[string]string{"per_page": "must be an integer"}}
	}
	if q != nil {
		p.Q = *q
	}
	if page != nil {
		p.Page = *page
	}
	if perPage != nil {
		p.PerPage = *perPage
	}
	return p, nil
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request, _ Principal) {
	p, err := bindPageParams(r)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	page, err := s.ref.Categories(r.Context(), p.Q, p.Page, p.PerPage)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request, _ Principal) {
	p, err := bindPageParams(r)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	page, err := s.ref.Services(r.Context(), p.Q, p.Page, p.PerPage)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request, _ Principal) {
	p, err := bindPageParams(r)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	var userID *string
	if err := runtime.BindQueryParameter("form", true, false, "user_id", r.URL.Query(), &userID); err != nil {
		s.WriteError(w, r, &domain.ValidationError{Fields: map[string]string{"user_id": err.Error()}})
		return
	}
	filter := ""
	if userID != nil {
		filter = *userID
	}
	if s.audit == nil {
		WriteJSON(w, http.StatusOK, model.Paginate[*model.SubmissionRecord](nil, p.Page, p.PerPage))
		return
	}
	page, err := s.audit.List(r.Context(), filter, p.Page, p.PerPage)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}
