package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abac-gate/engine/internal/domain/access"
	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/audit"
	"github.com/abac-gate/engine/internal/domain/policy"
	"github.com/abac-gate/engine/internal/metrics"
	"github.com/abac-gate/engine/internal/tracing"
)

// AccessService implements access.Orchestrator: it coordinates optional
// environment verification, catalog lookup, rule evaluation in catalog
// order, and audit emission.
type AccessService struct {
	catalog   policy.Catalog
	evaluator policy.Evaluator
	audit     audit.Store
	admin     attribute.Identifier
	logger    *slog.Logger

	mu       sync.RWMutex
	verifier access.Verifier
}

// NewAccessService wires a Catalog, Evaluator, and audit sink behind the
// Orchestrator port. Returns access.ErrInvalidDependency if catalog or
// evaluator is nil.
func NewAccessService(catalog policy.Catalog, evaluator policy.Evaluator, auditStore audit.Store, admin attribute.Identifier, logger *slog.Logger) (*AccessService, error) {
	if catalog == nil || evaluator == nil {
		return nil, access.ErrInvalidDependency
	}
	return &AccessService{catalog: catalog, evaluator: evaluator, audit: auditStore, admin: admin, logger: logger}, nil
}

// CheckAccess is the read-only decision path: no environment
// verification, no audit emission.
func (s *AccessService) CheckAccess(ctx context.Context, subject, resource attribute.Identifier, action policy.Action, env policy.Environment) (access.Decision, error) {
	ids, err := s.catalog.GetPolicyIDs(ctx, resource, action)
	if err != nil {
		return access.Decision{}, err
	}
	for _, id := range ids {
		matched, err := s.evaluator.EvaluatePolicy(ctx, id, subject, resource, env)
		if err != nil {
			return access.Decision{}, err
		}
		if matched {
			return access.Decision{Permit: true, MatchedPolicyID: id}, nil
		}
	}
	return access.Decision{Permit: false, MatchedPolicyID: policy.NoRule}, nil
}

// RequestAccess is the authoritative decision path: verifies the
// environment (if a verifier is configured), evaluates candidate rules
// in catalog order, and emits exactly one audit record.
func (s *AccessService) RequestAccess(ctx context.Context, subject, resource attribute.Identifier, action policy.Action, env policy.Environment, proof []byte) (permit bool, err error) {
	ctx, span := tracing.StartRequestAccess(ctx)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.ObserveDecision(permit, time.Since(start).Seconds())
		tracing.RecordDecision(ctx, permit)
	}()

	if v := s.currentVerifier(); v != nil {
		ok, verifyErr := v.Verify(ctx, env, proof)
		if verifyErr != nil {
			return false, verifyErr
		}
		if !ok {
			return false, access.ErrEnvVerificationFailed
		}
	}

	decision, err := s.CheckAccess(ctx, subject, resource, action, env)
	if err != nil {
		return false, err
	}

	rec := audit.Record{
		RequestID:       uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		EventType:       audit.EventTypeAccessDecision,
		Subject:         subject,
		Resource:        resource,
		Action:          action,
		Permit:          decision.Permit,
		MatchedPolicyID: decision.MatchedPolicyID,
		LatencyMicros:   time.Since(start).Microseconds(),
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Warn("orchestrator: failed to append audit record", "error", err)
	}

	return decision.Permit, nil
}

// SetEnvOracle installs or clears the verifier. A nil verifier disables
// verification. caller must be the admin.
func (s *AccessService) SetEnvOracle(ctx context.Context, caller attribute.Identifier, verifier access.Verifier) error {
	if caller != s.admin {
		return access.ErrNotAuthorized
	}
	s.mu.Lock()
	s.verifier = verifier
	s.mu.Unlock()

	rec := audit.Record{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: audit.EventTypeVerifierInstall,
		Caller:    caller,
		Enabled:   verifier != nil,
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Warn("orchestrator: failed to append audit record", "error", err)
	}
	return nil
}

func (s *AccessService) currentVerifier() access.Verifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifier
}

// Compile-time interface verification.
var _ access.Orchestrator = (*AccessService)(nil)
