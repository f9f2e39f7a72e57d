// Package audit contains domain types for the decision audit trail.
package audit

import (
	"time"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// Decision constants for audit records.
const (
	DecisionPermit = "permit"
	DecisionDeny   = "deny"
)

// EventType constants categorize audit records beyond plain decisions,
// covering the administrative writes spec.md section 4 describes.
const (
	EventTypeAccessDecision  = "access.decision"
	EventTypeAttributeSet    = "attribute.set"
	EventTypePolicyCreate    = "policy.create"
	EventTypePolicyToggle    = "policy.toggle"
	EventTypePolicyDelete    = "policy.delete"
	EventTypeVerifierInstall = "verifier.install"
)

// Record is a single auditable event. request_access emits exactly one
// Record of type EventTypeAccessDecision per call (spec.md section 4.4);
// check_access emits nothing. Registry and Catalog mutations emit their
// own event types for a complete administrative trail.
type Record struct {
	// RequestID correlates this record across logs/traces.
	RequestID string `json:"request_id"`
	// Timestamp is when the event occurred (UTC).
	Timestamp time.Time `json:"timestamp"`
	// EventType categorizes the record.
	EventType string `json:"event_type"`

	// Caller is who performed a mutating action (zero value for decisions).
	Caller attribute.Identifier `json:"caller,omitempty"`

	// Decision fields (EventTypeAccessDecision).
	Subject         attribute.Identifier `json:"subject,omitzero"`
	Resource        attribute.Identifier `json:"resource,omitzero"`
	Action          policy.Action        `json:"action,omitzero"`
	Permit          bool                 `json:"permit,omitzero"`
	MatchedPolicyID policy.ID            `json:"matched_policy_id,omitzero"`
	LatencyMicros   int64                `json:"latency_micros,omitzero"`

	// Attribute-write fields (EventTypeAttributeSet).
	AttrKey   attribute.Key   `json:"attr_key,omitzero"`
	AttrValue attribute.Value `json:"attr_value,omitzero"`

	// Policy-mutation fields (EventTypePolicyCreate/Toggle/Delete).
	PolicyID policy.ID `json:"policy_id,omitzero"`
	Enabled  bool      `json:"enabled,omitzero"`
}
