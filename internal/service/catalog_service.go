package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/audit"
	"github.com/abac-gate/engine/internal/domain/policy"
	"github.com/abac-gate/engine/internal/metrics"
)

// CatalogService implements policy.Catalog on top of a raw
// policy.CatalogStore, enforcing admin-only mutation, condition-shape
// validation, and audit emission for every create/toggle/delete.
type CatalogService struct {
	store  policy.CatalogStore
	audit  audit.Store
	admin  attribute.Identifier
	logger *slog.Logger
}

// NewCatalogService wires a raw catalog store and audit sink behind the
// authorized Catalog port.
func NewCatalogService(store policy.CatalogStore, auditStore audit.Store, admin attribute.Identifier, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, audit: auditStore, admin: admin, logger: logger}
}

// CreatePolicy validates shape, allocates an id, persists the rule
// enabled, and indexes it under (resource, action).
func (s *CatalogService) CreatePolicy(ctx context.Context, caller attribute.Identifier, resource attribute.Identifier, action policy.Action, conditions []policy.Condition) (policy.ID, error) {
	if caller != s.admin {
		return policy.NoRule, policy.ErrNotAuthorized
	}
	if err := validateShape(conditions); err != nil {
		return policy.NoRule, err
	}

	id, err := s.store.AllocateID(ctx)
	if err != nil {
		return policy.NoRule, err
	}

	rule := policy.Rule{
		ID:         id,
		Resource:   resource,
		Action:     action,
		Conditions: conditions,
		Enabled:    true,
	}
	if err := s.store.PutRule(ctx, rule); err != nil {
		return policy.NoRule, err
	}
	if err := s.store.AppendIndex(ctx, resource, action, id); err != nil {
		return policy.NoRule, err
	}

	s.emit(ctx, audit.EventTypePolicyCreate, caller, id, true)
	s.refreshEnabledCount(ctx)
	return id, nil
}

// SetPolicyEnabled toggles a rule's enabled flag.
func (s *CatalogService) SetPolicyEnabled(ctx context.Context, caller attribute.Identifier, id policy.ID, enabled bool) error {
	if caller != s.admin {
		return policy.ErrNotAuthorized
	}
	rule, ok, err := s.store.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return policy.ErrUnknownPolicy
	}
	rule.Enabled = enabled
	if err := s.store.PutRule(ctx, rule); err != nil {
		return err
	}
	s.emit(ctx, audit.EventTypePolicyToggle, caller, id, enabled)
	s.refreshEnabledCount(ctx)
	return nil
}

// DeletePolicy removes id from its (resource, action) index. The record
// remains retrievable via GetPolicy for audit replay; removing an id
// already absent from the index is a no-op success.
func (s *CatalogService) DeletePolicy(ctx context.Context, caller attribute.Identifier, id policy.ID) error {
	if caller != s.admin {
		return policy.ErrNotAuthorized
	}
	rule, ok, err := s.store.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return policy.ErrUnknownPolicy
	}
	if err := s.store.RemoveFromIndex(ctx, rule.Resource, rule.Action, id); err != nil {
		return err
	}
	rule.Enabled = false
	if err := s.store.PutRule(ctx, rule); err != nil {
		return err
	}
	s.emit(ctx, audit.EventTypePolicyDelete, caller, id, false)
	s.refreshEnabledCount(ctx)
	return nil
}

// refreshEnabledCount recomputes abac_policies_enabled after a mutation.
// Best-effort: a store error here does not fail the caller's operation.
func (s *CatalogService) refreshEnabledCount(ctx context.Context) {
	rules, err := s.store.AllRules(ctx)
	if err != nil {
		s.logger.Warn("catalog: failed to refresh enabled policy count", "error", err)
		return
	}
	count := 0
	for _, r := range rules {
		if r.Enabled {
			count++
		}
	}
	metrics.SetPoliciesEnabled(count)
}

// GetPolicy returns a rule by id, including deleted/disabled ones.
func (s *CatalogService) GetPolicy(ctx context.Context, id policy.ID) (policy.Rule, error) {
	rule, ok, err := s.store.GetRule(ctx, id)
	if err != nil {
		return policy.Rule{}, err
	}
	if !ok {
		return policy.Rule{}, policy.ErrUnknownPolicy
	}
	return rule, nil
}

// GetPolicyIDs returns the ids indexed under (resource, action).
func (s *CatalogService) GetPolicyIDs(ctx context.Context, resource attribute.Identifier, action policy.Action) ([]policy.ID, error) {
	return s.store.Index(ctx, resource, action)
}

// ListPolicies returns the full Rule records indexed under (resource, action).
func (s *CatalogService) ListPolicies(ctx context.Context, resource attribute.Identifier, action policy.Action) ([]policy.Rule, error) {
	ids, err := s.store.Index(ctx, resource, action)
	if err != nil {
		return nil, err
	}
	rules := make([]policy.Rule, 0, len(ids))
	for _, id := range ids {
		rule, ok, err := s.store.GetRule(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// ExportPolicies returns every retained rule, including deleted ones.
func (s *CatalogService) ExportPolicies(ctx context.Context) ([]policy.Rule, error) {
	return s.store.AllRules(ctx)
}

func (s *CatalogService) emit(ctx context.Context, eventType string, caller attribute.Identifier, id policy.ID, enabled bool) {
	rec := audit.Record{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Caller:    caller,
		PolicyID:  id,
		Enabled:   enabled,
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Warn("catalog: failed to append audit record", "error", err)
	}
}

// validateShape enforces the condition-count and set-size bounds a rule
// must satisfy to be stored.
func validateShape(conditions []policy.Condition) error {
	if len(conditions) < policy.MinConditions || len(conditions) > policy.MaxConditions {
		return policy.ErrBadPolicyShape
	}
	for _, c := range conditions {
		if c.Op == policy.OpInSet && len(c.SetValues) > policy.MaxSetValues {
			return policy.ErrBadPolicyShape
		}
	}
	return nil
}

// Compile-time interface verification.
var _ policy.Catalog = (*CatalogService)(nil)
