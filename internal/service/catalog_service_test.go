package service

import (
	"testing"

	"github.com/abac-gate/engine/internal/adapter/outbound/memory"
	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

func newTestCatalog(t *testing.T) (*CatalogService, *memAudit, attribute.Identifier) {
	t.Helper()
	admin := attribute.Identifier{0xAD}
	audit := newMemAudit()
	cat := NewCatalogService(memory.NewCatalogStore(), audit, admin, discardLogger())
	return cat, audit, admin
}

func oneCondition() []policy.Condition {
	return []policy.Condition{policy.EqCondition(policy.SourceSubject, attribute.KeySubRole, attribute.Value{0x01})}
}

func TestCatalogService_CreatePolicyRequiresAdmin(t *testing.T) {
	ctx := t.Context()
	cat, _, _ := newTestCatalog(t)
	notAdmin := attribute.Identifier{0x01}

	_, err := cat.CreatePolicy(ctx, notAdmin, attribute.Identifier{0x02}, policy.ActionRead, oneCondition())
	if err != policy.ErrNotAuthorized {
		t.Fatalf("CreatePolicy(notAdmin) = %v, want ErrNotAuthorized", err)
	}
}

func TestCatalogService_CreatePolicyRejectsEmptyConditions(t *testing.T) {
	ctx := t.Context()
	cat, _, admin := newTestCatalog(t)

	_, err := cat.CreatePolicy(ctx, admin, attribute.Identifier{0x02}, policy.ActionRead, nil)
	if err != policy.ErrBadPolicyShape {
		t.Fatalf("CreatePolicy(no conditions) = %v, want ErrBadPolicyShape", err)
	}
}

func TestCatalogService_CreatePolicyRejectsOversizedSet(t *testing.T) {
	ctx := t.Context()
	cat, _, admin := newTestCatalog(t)

	set := make([]attribute.Value, policy.MaxSetValues+1)
	conditions := []policy.Condition{policy.InSetCondition(policy.SourceSubject, attribute.KeySubRole, set)}
	_, err := cat.CreatePolicy(ctx, admin, attribute.Identifier{0x02}, policy.ActionRead, conditions)
	if err != policy.ErrBadPolicyShape {
		t.Fatalf("CreatePolicy(oversized set) = %v, want ErrBadPolicyShape", err)
	}
}

func TestCatalogService_CreateGetListExport(t *testing.T) {
	ctx := t.Context()
	cat, audit, admin := newTestCatalog(t)
	resource := attribute.Identifier{0x02}

	id, err := cat.CreatePolicy(ctx, admin, resource, policy.ActionRead, oneCondition())
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}

	rule, err := cat.GetPolicy(ctx, id)
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if !rule.Enabled || rule.Resource != resource {
		t.Fatalf("GetPolicy = %+v, want enabled rule on %x", rule, resource)
	}

	ids, err := cat.GetPolicyIDs(ctx, resource, policy.ActionRead)
	if err != nil || len(ids) != 1 || ids[0] != id {
		t.Fatalf("GetPolicyIDs = %v, %v; want [%d], nil", ids, err, id)
	}

	rules, err := cat.ListPolicies(ctx, resource, policy.ActionRead)
	if err != nil || len(rules) != 1 {
		t.Fatalf("ListPolicies = %v, %v; want 1 rule, nil", rules, err)
	}

	all, err := cat.ExportPolicies(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ExportPolicies = %v, %v; want 1 rule, nil", all, err)
	}

	if len(audit.Recent(10)) != 1 {
		t.Fatalf("expected 1 audit record after create, got %d", len(audit.Recent(10)))
	}
}

func TestCatalogService_SetPolicyEnabledUnknownID(t *testing.T) {
	ctx := t.Context()
	cat, _, admin := newTestCatalog(t)

	err := cat.SetPolicyEnabled(ctx, admin, policy.ID(999), false)
	if err != policy.ErrUnknownPolicy {
		t.Fatalf("SetPolicyEnabled(unknown) = %v, want ErrUnknownPolicy", err)
	}
}

func TestCatalogService_DeletePolicyRemovesFromIndexNotFromStore(t *testing.T) {
	ctx := t.Context()
	cat, _, admin := newTestCatalog(t)
	resource := attribute.Identifier{0x02}

	id, err := cat.CreatePolicy(ctx, admin, resource, policy.ActionRead, oneCondition())
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
	if err := cat.DeletePolicy(ctx, admin, id); err != nil {
		t.Fatalf("DeletePolicy: %v", err)
	}

	ids, err := cat.GetPolicyIDs(ctx, resource, policy.ActionRead)
	if err != nil || len(ids) != 0 {
		t.Fatalf("GetPolicyIDs after delete = %v, %v; want empty, nil", ids, err)
	}

	rule, err := cat.GetPolicy(ctx, id)
	if err != nil {
		t.Fatalf("GetPolicy after delete: %v", err)
	}
	if rule.Enabled {
		t.Fatal("deleted policy must be disabled, not absent")
	}
}

func TestCatalogService_DeletePolicyRequiresAdmin(t *testing.T) {
	ctx := t.Context()
	cat, _, admin := newTestCatalog(t)
	notAdmin := attribute.Identifier{0x01}

	id, err := cat.CreatePolicy(ctx, admin, attribute.Identifier{0x02}, policy.ActionRead, oneCondition())
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
	if err := cat.DeletePolicy(ctx, notAdmin, id); err != policy.ErrNotAuthorized {
		t.Fatalf("DeletePolicy(notAdmin) = %v, want ErrNotAuthorized", err)
	}
}
