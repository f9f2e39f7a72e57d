// Package access contains the domain types for the Decision Orchestrator:
// the environment verifier port, the decision result, and the
// orchestrator port itself (spec.md section 4.4).
package access

import (
	"context"
	"errors"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// Orchestrator errors (spec.md section 7).
var (
	// ErrEnvVerificationFailed is returned by RequestAccess when a
	// configured verifier rejects the supplied proof. No decision is
	// emitted for this request.
	ErrEnvVerificationFailed = errors.New("abac: access manager: env verification failed")
	// ErrNotAuthorized is returned by SetEnvOracle when the caller is not
	// the admin.
	ErrNotAuthorized = errors.New("abac: access manager: not authorized")
	// ErrInvalidDependency is returned by constructors given a nil
	// Catalog or Evaluator.
	ErrInvalidDependency = errors.New("abac: access manager: invalid dependency")
)

// Verifier attests that a supplied Environment is authentic given a proof.
// It is called synchronously, exactly once per RequestAccess call, and
// must not mutate observable engine state (spec.md section 6). The
// verifier may hold its own state (e.g. a set of accepted proof digests).
type Verifier interface {
	Verify(ctx context.Context, env policy.Environment, proof []byte) (bool, error)
}

// Decision is the (permit, matched rule) tuple an orchestrator returns.
// MatchedPolicyID is policy.NoRule (0) when no rule matched.
type Decision struct {
	Permit          bool
	MatchedPolicyID policy.ID
}

// Orchestrator coordinates environment verification, catalog lookup, rule
// evaluation, and audit emission (spec.md section 4.4).
type Orchestrator interface {
	// CheckAccess is the read-only decision path: no environment
	// verification, no audit emission.
	CheckAccess(ctx context.Context, subject, resource attribute.Identifier, action policy.Action, env policy.Environment) (Decision, error)

	// RequestAccess is the authoritative decision path: verifies the
	// environment (if a verifier is configured), evaluates candidate
	// rules in catalog order, and emits exactly one audit record.
	RequestAccess(ctx context.Context, subject, resource attribute.Identifier, action policy.Action, env policy.Environment, proof []byte) (bool, error)

	// SetEnvOracle installs or clears the verifier. A nil verifier
	// disables verification.
	SetEnvOracle(ctx context.Context, caller attribute.Identifier, verifier Verifier) error
}
