// Package server exposes the routing engine over a JSON HTTP API.
//
// Endpoints:
//   - POST /v1/generate               - Dispatch one generation request
//   - GET  /v1/usage                  - Rolling usage totals for the caller
//   - GET  /v1/providers/health       - Provider availability snapshot
//   - POST /v1/providers/health/reset - Restore tripped providers
//
// All endpoints require a bearer token signed with the shared secret.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/engine"
	"github.com/everstacklabs/relay/internal/ledger"
	"github.com/everstacklabs/relay/internal/policy"
)

// MaxRequestBodySize bounds request payloads.
const MaxRequestBodySize = 1 << 20

// Server routes HTTP traffic to the engine.
type Server struct {
	engine *engine.Engine
	secret string
	mux    *http.ServeMux
}

// New creates a server over an engine. The secret signs tenant tokens.
func New(eng *engine.Engine, secret string) *Server {
	s := &Server{engine: eng, secret: secret, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /v1/generate", s.authed(s.handleGenerate))
	s.mux.HandleFunc("GET /v1/usage", s.authed(s.handleUsage))
	s.mux.HandleFunc("GET /v1/providers/health", s.authed(s.handleHealth))
	s.mux.HandleFunc("POST /v1/providers/health/reset", s.authed(s.handleHealthReset))

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

type authedHandler func(w http.ResponseWriter, r *http.Request, claims *Claims, requestID string)

// authed validates the bearer token and tags the request with an id before
// delegating.
func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		claims, err := parseBearer(r.Header.Get("Authorization"), s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", requestID)
			return
		}

		next(w, r, claims, requestID)
	}
}

type generateRequest struct {
	Capability string `json:"capability"`
	Prompt     string `json:"prompt"`
	Preference string `json:"preference,omitempty"`
}

type generateResponse struct {
	RequestID string `json:"request_id"`
	*engine.Result
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, claims *Claims, requestID string) {
	var req generateRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	capability := catalog.Capability(req.Capability)
	if !capability.Known() {
		writeError(w, http.StatusBadRequest, "unknown capability", requestID)
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required", requestID)
		return
	}

	result, err := s.engine.Dispatch(r.Context(), engine.Request{
		TenantID:   claims.Subject,
		Capability: capability,
		Prompt:     req.Prompt,
		Preference: policy.Preference(req.Preference),
		Tier:       claims.Tier,
	})
	if err != nil {
		s.writeDispatchError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{RequestID: requestID, Result: result})
}

type usageResponse struct {
	TenantID string          `json:"tenant_id"`
	Period   string          `json:"period"`
	Requests int64           `json:"requests"`
	Cost     float64         `json:"cost"`
	Recent   []ledger.Record `json:"recent,omitempty"`
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request, claims *Claims, requestID string) {
	period := ledger.PeriodDay
	switch r.URL.Query().Get("period") {
	case "", string(ledger.PeriodDay):
	case string(ledger.PeriodMonth):
		period = ledger.PeriodMonth
	default:
		writeError(w, http.StatusBadRequest, "period must be day or month", requestID)
		return
	}

	totals := s.engine.UsageSummary(claims.Subject, period)

	recent, err := s.engine.RecentRecords(claims.Subject, 20)
	if err != nil {
		slog.Warn("recent records unavailable", "tenant", claims.Subject, "error", err)
	}

	writeJSON(w, http.StatusOK, usageResponse{
		TenantID: claims.Subject,
		Period:   string(period),
		Requests: totals.Count,
		Cost:     totals.Cost,
		Recent:   recent,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ *Claims, _ string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.engine.ProviderHealth(),
	})
}

type healthResetRequest struct {
	// ProviderID selects one provider; empty resets all.
	ProviderID string `json:"provider_id,omitempty"`
}

func (s *Server) handleHealthReset(w http.ResponseWriter, r *http.Request, claims *Claims, requestID string) {
	var req healthResetRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodySize)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request payload", requestID)
			return
		}
	}

	s.engine.ResetProviderHealth(req.ProviderID)
	slog.Info("provider health reset", "tenant", claims.Subject, "provider", req.ProviderID)

	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.engine.ProviderHealth(),
	})
}

// writeDispatchError maps engine failures onto HTTP statuses. Quota limits
// are 429, the disallowed capability is 403, and provider outages are 503.
func (s *Server) writeDispatchError(w http.ResponseWriter, err error, requestID string) {
	var derr *engine.Error
	if !errors.As(err, &derr) {
		writeError(w, http.StatusInternalServerError, "internal error", requestID)
		return
	}

	status := http.StatusInternalServerError
	switch derr.Reason {
	case engine.ReasonCapabilityNotAllowed:
		status = http.StatusForbidden
	case engine.ReasonDailyRequestLimit, engine.ReasonMonthlyCostLimit:
		status = http.StatusTooManyRequests
	case engine.ReasonNoProviderAvailable, engine.ReasonAllProvidersExhausted:
		status = http.StatusServiceUnavailable
	}

	writeError(w, status, string(derr.Reason), requestID)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func writeError(w http.ResponseWriter, status int, msg, requestID string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}
