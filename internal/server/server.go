package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trace_validation_gateway/internal/auth"
	"trace_validation_gateway/internal/service"
	"trace_validation_gateway/internal/validation"
	"trace_validation_gateway/internal/whitelist"

	"go.uber.org/zap"
)

const SessionHeader = "X-Form-Session"

type Server struct {
	forms  service.FormService
	gate   auth.Gate
	store  *whitelist.Store
	logger *zap.Logger
	mux    *http.ServeMux
}

func New(forms service.FormService, gate auth.Gate, store *whitelist.Store, logger *zap.Logger) *Server {
	s := &Server{
		forms:  forms,
		gate:   gate,
		store:  store,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /validate/{field}", s.handleValidateField)
	s.mux.HandleFunc("POST /forms/validate", s.handleValidateForm)
	s.mux.HandleFunc("POST /forms/submit", s.handleSubmit)
	s.mux.HandleFunc("POST /authorize", s.handleAuthorize)
	s.mux.HandleFunc("GET /tokens", s.handleTokens)
	s.mux.HandleFunc("GET /currencies", s.handleCurrencies)
	s.mux.HandleFunc("GET /reviewers", s.handleReviewers)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("user_agent", r.UserAgent()),
		zap.String("remote_addr", r.RemoteAddr))
	s.mux.ServeHTTP(w, r)
}

type fieldBody struct {
	Value         string `json:"value"`
	Event         string `json:"event,omitempty"`
	AllowAnyToken bool   `json:"allow_any_token,omitempty"`
	Required      bool   `json:"required,omitempty"`
}

type submitBody struct {
	User   *auth.User        `json:"user"`
	Strict bool              `json:"strict"`
	Form   service.TraceForm `json:"form"`
}

type authorizeBody struct {
	User   *auth.User `json:"user"`
	Strict bool       `json:"strict"`
}

type authorizeResponse struct {
	Authorized bool `json:"authorized"`
}

type reviewerOption struct {
	validation.Reviewer
	Label string `json:"label"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleValidateField(w http.ResponseWriter, r *http.Request) {
	var body fieldBody
	if !s.decode(w, r, &body) {
		return
	}

	result, err := s.forms.ValidateField(r.Context(), r.Header.Get(SessionHeader), service.FieldRequest{
		Field:         r.PathValue("field"),
		Value:         body.Value,
		Event:         body.Event,
		AllowAnyToken: body.AllowAnyToken,
		Required:      body.Required,
	})
	if errors.Is(err, service.ErrUnknownField) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("failed to validate field", zap.Error(err), zap.String("field", r.PathValue("field")))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "validation failed"})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	var form service.TraceForm
	if !s.decode(w, r, &form) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.forms.ValidateForm(r.Context(), form))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if !s.decode(w, r, &body) {
		return
	}

	result, err := s.forms.Submit(r.Context(), body.User, body.Strict, body.Form)
	if err != nil {
		s.logger.Error("failed to submit trace", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "submission failed"})
		return
	}

	switch {
	case !result.Authorized:
		s.writeJSON(w, http.StatusUnauthorized, result)
	case result.SubmissionID == "":
		s.writeJSON(w, http.StatusUnprocessableEntity, result)
	default:
		s.writeJSON(w, http.StatusAccepted, result)
	}
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	var body authorizeBody
	if !s.decode(w, r, &body) {
		return
	}
	s.writeJSON(w, http.StatusOK, authorizeResponse{Authorized: s.gate.Authenticate(r.Context(), body.User, body.Strict)})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	includeAny := false
	if raw := r.URL.Query().Get("anyToken"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid anyToken parameter"})
			return
		}
		includeAny = parsed
	}

	tokens := validation.FilterTokens(r.URL.Query().Get("q"), s.store.Snapshot().Tokens, includeAny)
	s.writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	fiat := s.store.Snapshot().Fiat
	if fiat == nil {
		fiat = []string{}
	}
	s.writeJSON(w, http.StatusOK, fiat)
}

func (s *Server) handleReviewers(w http.ResponseWriter, r *http.Request) {
	matched := validation.FilterReviewers(r.URL.Query().Get("q"), s.store.Snapshot().Reviewers)
	options := make([]reviewerOption, 0, len(matched))
	for _, reviewer := range matched {
		options = append(options, reviewerOption{Reviewer: reviewer, Label: reviewer.Label()})
	}
	s.writeJSON(w, http.StatusOK, options)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Debug("failed to decode request body", zap.Error(err), zap.String("path", r.URL.Path))
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
