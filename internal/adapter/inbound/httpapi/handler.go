// Package httpapi provides the HTTP transport adapter for the decision
// and administration API: a thin JSON front end over access.Orchestrator
// and attribute.Registry. It is an external collaborator
// (spec.md section 1 Non-goals) with no domain logic of its own.
package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abac-gate/engine/internal/domain/access"
	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// maxRequestBodySize caps a decoded request body at 64KB; decision
// requests are small, fixed-width records.
const maxRequestBodySize = 64 << 10

// Handler wires the decision and administration HTTP surface onto an
// Orchestrator and Registry. Catalog mutation is intentionally not
// exposed here: policy authoring goes through the bootstrap seed or a
// direct Catalog caller, matching spec.md's CLI-first external surface.
type Handler struct {
	orchestrator access.Orchestrator
	registry     attribute.Registry
	logger       *slog.Logger
	mux          *http.ServeMux
}

// NewHandler builds the HTTP handler and registers its routes.
func NewHandler(orchestrator access.Orchestrator, registry attribute.Registry, logger *slog.Logger) *Handler {
	h := &Handler{orchestrator: orchestrator, registry: registry, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /v1/access/check", h.handleCheckAccess)
	h.mux.HandleFunc("POST /v1/access/request", h.handleRequestAccess)
	h.mux.HandleFunc("GET /v1/attributes/subject/{id}/{key}", h.handleGetSubjectAttr)
	h.mux.HandleFunc("GET /v1/attributes/object/{id}/{key}", h.handleGetObjectAttr)
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	return h
}

// ServeHTTP satisfies http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type environmentRequest struct {
	TimeWindow    uint8  `json:"time_window"`
	EmergencyMode bool   `json:"emergency_mode"`
	SystemLoad    uint64 `json:"system_load"`
}

type checkAccessRequest struct {
	Subject  string             `json:"subject"`
	Resource string             `json:"resource"`
	Action   string             `json:"action"`
	Env      environmentRequest `json:"env"`
}

type checkAccessResponse struct {
	Permit          bool   `json:"permit"`
	MatchedPolicyID uint64 `json:"matched_policy_id"`
}

type requestAccessRequest struct {
	checkAccessRequest
	Proof string `json:"proof"` // hex-encoded
}

type requestAccessResponse struct {
	Permit bool `json:"permit"`
}

func (h *Handler) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	var req checkAccessRequest
	if !h.decode(w, r, &req) {
		return
	}
	subject, resource, action, env, ok := h.parseCommon(w, req.Subject, req.Resource, req.Action, req.Env)
	if !ok {
		return
	}
	decision, err := h.orchestrator.CheckAccess(r.Context(), subject, resource, action, env)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, checkAccessResponse{Permit: decision.Permit, MatchedPolicyID: uint64(decision.MatchedPolicyID)})
}

func (h *Handler) handleRequestAccess(w http.ResponseWriter, r *http.Request) {
	var req requestAccessRequest
	if !h.decode(w, r, &req) {
		return
	}
	subject, resource, action, env, ok := h.parseCommon(w, req.Subject, req.Resource, req.Action, req.Env)
	if !ok {
		return
	}
	var proof []byte
	if req.Proof != "" {
		var err error
		proof, err = hex.DecodeString(req.Proof)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("proof: %w", err))
			return
		}
	}
	permit, err := h.orchestrator.RequestAccess(r.Context(), subject, resource, action, env, proof)
	if err != nil {
		h.writeAccessError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, requestAccessResponse{Permit: permit})
}

func (h *Handler) handleGetSubjectAttr(w http.ResponseWriter, r *http.Request) {
	id, key, ok := h.parseAttrPath(w, r)
	if !ok {
		return
	}
	value, err := h.registry.SubjectAttr(r.Context(), id, key)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"value": value.String()})
}

func (h *Handler) handleGetObjectAttr(w http.ResponseWriter, r *http.Request) {
	id, key, ok := h.parseAttrPath(w, r)
	if !ok {
		return
	}
	value, err := h.registry.ObjectAttr(r.Context(), id, key)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"value": value.String()})
}

func (h *Handler) parseAttrPath(w http.ResponseWriter, r *http.Request) (attribute.Identifier, attribute.Key, bool) {
	id, err := attribute.IdentifierFromHex(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("id: %w", err))
		return attribute.Identifier{}, attribute.Key{}, false
	}
	key, err := attribute.ValueFromHex(r.PathValue("key"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("key: %w", err))
		return attribute.Identifier{}, attribute.Key{}, false
	}
	return id, attribute.Key(key), true
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func (h *Handler) parseCommon(w http.ResponseWriter, subjectHex, resourceHex, actionStr string, envReq environmentRequest) (subject, resource attribute.Identifier, action policy.Action, env policy.Environment, ok bool) {
	subject, err := attribute.IdentifierFromHex(subjectHex)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("subject: %w", err))
		return
	}
	resource, err = attribute.IdentifierFromHex(resourceHex)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("resource: %w", err))
		return
	}
	action, err = parseAction(actionStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	env = policy.NewEnvironment(envReq.TimeWindow, envReq.EmergencyMode, envReq.SystemLoad)
	ok = true
	return
}

func parseAction(s string) (policy.Action, error) {
	switch s {
	case "read":
		return policy.ActionRead, nil
	case "write":
		return policy.ActionWrite, nil
	case "execute":
		return policy.ActionExecute, nil
	default:
		return 0, fmt.Errorf("action: unknown action %q", s)
	}
}

func (h *Handler) writeAccessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrEnvVerificationFailed):
		h.writeError(w, http.StatusForbidden, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Warn("httpapi: request failed", "status", status, "error", err)
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
