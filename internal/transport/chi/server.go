package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/contentiq/internal/domain"
	answeruc "github.com/kailas-cloud/contentiq/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/contentiq/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/contentiq/internal/usecase/ingest"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// SchemaCache is the transport's view of the schema cache: explicit
// invalidation only.
type SchemaCache interface {
	Clear(tenantID string)
	ClearAll()
}

// Server is the HTTP API server.
type Server struct {
	answers       *answeruc.Service
	ingest        *ingestuc.Service
	schemaCache   SchemaCache
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	answers *answeruc.Service,
	ingest *ingestuc.Service,
	schemaCache SchemaCache,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		answers:     answers,
		ingest:      ingest,
		schemaCache: schemaCache,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		unresolvedCategoryHandler,
		invalidContentHandler,
		sentinelHandler(domain.ErrTenantRequired, http.StatusBadRequest, codeTenantRequired),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrSchemaUnavailable, http.StatusServiceUnavailable, codeSchemaUnavailable),
		sentinelHandler(domain.ErrExtractionFallbackFailed, http.StatusBadGateway, codeExtractionFailed),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Post("/query", s.Query)
			r.Post("/query/parse", s.ParseQuery)
			r.Delete("/schema-cache", s.ClearSchemaCache)
			r.Put("/contents/{contentID}", s.UpsertContent)
			r.Delete("/contents/{contentID}", s.DeleteContent)
		})
		r.Delete("/schema-cache", s.ClearAllSchemaCaches)
	})
}

// Query handles POST /api/v1/tenants/{tenantID}/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Query text is required")
		return
	}

	resp, err := s.answers.Answer(r.Context(), tenantID, req.Query, req.UseFallback)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToResponse(resp))
}

// ParseQuery handles POST /api/v1/tenants/{tenantID}/query/parse. It
// returns the understanding and the plan without executing anything.
func (s *Server) ParseQuery(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Query text is required")
		return
	}

	parsed, p, suggestions, err := s.answers.Parse(r.Context(), tenantID, req.Query, req.UseFallback)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		OriginalQuery: req.Query,
		Parsed:        parsedToDTO(parsed),
		Plan:          planToDTO(p),
		Suggestions:   suggestions,
	})
}

// ClearSchemaCache handles DELETE /api/v1/tenants/{tenantID}/schema-cache.
func (s *Server) ClearSchemaCache(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, codeTenantRequired, domain.ErrTenantRequired.Error())
		return
	}
	s.schemaCache.Clear(tenantID)
	w.WriteHeader(http.StatusNoContent)
}

// ClearAllSchemaCaches handles DELETE /api/v1/schema-cache.
func (s *Server) ClearAllSchemaCaches(w http.ResponseWriter, _ *http.Request) {
	s.schemaCache.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

// UpsertContent handles PUT /api/v1/tenants/{tenantID}/contents/{contentID}.
func (s *Server) UpsertContent(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	contentID := chi.URLParam(r, "contentID")

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := recordFromRequest(contentID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.ingest.Upsert(r.Context(), tenantID, rec); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteContent handles DELETE /api/v1/tenants/{tenantID}/contents/{contentID}.
func (s *Server) DeleteContent(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	contentID := chi.URLParam(r, "contentID")

	if err := s.ingest.Delete(r.Context(), tenantID, contentID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrTenantRequired,
		domain.ErrSchemaUnavailable,
		domain.ErrUnresolvedCategory,
		domain.ErrExtractionFallbackFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidContentHandler handles content validation failures with the
// specific reason. Validation messages carry no internals.
func invalidContentHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidContent) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	return true
}

// unresolvedCategoryHandler handles ErrUnresolvedCategory with the
// offending category in the body.
func unresolvedCategoryHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrUnresolvedCategory) {
		return false
	}
	var uce *domain.UnresolvedCategoryError
	if errors.As(err, &uce) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":     codeUnresolvedCategory,
			"message":  msg,
			"category": uce.Category,
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, codeUnresolvedCategory, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
