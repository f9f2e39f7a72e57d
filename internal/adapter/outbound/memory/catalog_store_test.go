package memory

import (
	"context"
	"testing"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

func TestCatalogStore_CreateGetIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogStore()

	resource := attribute.Identifier{0x10}
	conditions := []policy.Condition{
		policy.LeCondition(policy.SourceEnv, attribute.KeyEnvSystemLoad, 80),
		policy.InSetCondition(policy.SourceSubject, attribute.KeySubRole, []attribute.Value{{0x01}, {0x02}}),
		policy.FieldEqCondition(policy.SourceSubject, attribute.KeySubDept, policy.SourceObject, attribute.KeyObjOwnerDept),
	}

	id, err := catalog.AllocateID(ctx)
	if err != nil {
		t.Fatalf("AllocateID: %v", err)
	}
	rule := policy.Rule{ID: id, Resource: resource, Action: policy.ActionRead, Conditions: conditions, Enabled: true}
	if err := catalog.PutRule(ctx, rule); err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	if err := catalog.AppendIndex(ctx, resource, policy.ActionRead, id); err != nil {
		t.Fatalf("AppendIndex: %v", err)
	}

	got, ok, err := catalog.GetRule(ctx, id)
	if err != nil || !ok {
		t.Fatalf("GetRule: ok=%v err=%v", ok, err)
	}
	if len(got.Conditions) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(got.Conditions))
	}

	ids, err := catalog.Index(ctx, resource, policy.ActionRead)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("Index = %v, want [%d]", ids, id)
	}

	if err := catalog.RemoveFromIndex(ctx, resource, policy.ActionRead, id); err != nil {
		t.Fatalf("RemoveFromIndex: %v", err)
	}
	ids, err = catalog.Index(ctx, resource, policy.ActionRead)
	if err != nil {
		t.Fatalf("Index after remove: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty index after remove, got %v", ids)
	}
}

func TestCatalogStore_RemoveFromIndexMissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogStore()

	resource := attribute.Identifier{0x11}
	if err := catalog.RemoveFromIndex(ctx, resource, policy.ActionRead, 999); err != nil {
		t.Fatalf("RemoveFromIndex on empty index: %v", err)
	}
}

func TestCatalogStore_AllocateIDMonotonic(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogStore()

	first, err := catalog.AllocateID(ctx)
	if err != nil {
		t.Fatalf("AllocateID: %v", err)
	}
	second, err := catalog.AllocateID(ctx)
	if err != nil {
		t.Fatalf("AllocateID: %v", err)
	}
	if second <= first {
		t.Fatalf("expected monotonically increasing ids, got %d then %d", first, second)
	}
}

func TestCatalogStore_AllRulesIncludesDisabled(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogStore()

	id, _ := catalog.AllocateID(ctx)
	rule := policy.Rule{ID: id, Resource: attribute.Identifier{0x20}, Action: policy.ActionWrite, Conditions: []policy.Condition{
		policy.EqCondition(policy.SourceSubject, attribute.KeySubRole, attribute.Value{0x01}),
	}, Enabled: false}
	if err := catalog.PutRule(ctx, rule); err != nil {
		t.Fatalf("PutRule: %v", err)
	}

	all, err := catalog.AllRules(ctx)
	if err != nil {
		t.Fatalf("AllRules: %v", err)
	}
	if len(all) != 1 || all[0].Enabled {
		t.Fatalf("expected one disabled rule, got %+v", all)
	}
}

func TestCatalogStore_AllRulesOrderedByID(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogStore()

	var ids []policy.ID
	for i := 0; i < 3; i++ {
		id, _ := catalog.AllocateID(ctx)
		ids = append(ids, id)
	}
	// Insert in reverse order; AllRules must still come back sorted by id.
	for i := len(ids) - 1; i >= 0; i-- {
		rule := policy.Rule{ID: ids[i], Resource: attribute.Identifier{byte(i)}, Action: policy.ActionRead, Conditions: []policy.Condition{
			policy.EqCondition(policy.SourceSubject, attribute.KeySubRole, attribute.Value{0x01}),
		}, Enabled: true}
		if err := catalog.PutRule(ctx, rule); err != nil {
			t.Fatalf("PutRule: %v", err)
		}
	}

	all, err := catalog.AllRules(ctx)
	if err != nil {
		t.Fatalf("AllRules: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Fatalf("AllRules not sorted by id: %+v", all)
		}
	}
}

func TestCatalogStore_PutRuleCopiesConditions(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogStore()

	id, _ := catalog.AllocateID(ctx)
	conditions := []policy.Condition{policy.EqCondition(policy.SourceSubject, attribute.KeySubRole, attribute.Value{0x01})}
	rule := policy.Rule{ID: id, Resource: attribute.Identifier{0x30}, Action: policy.ActionRead, Conditions: conditions, Enabled: true}
	if err := catalog.PutRule(ctx, rule); err != nil {
		t.Fatalf("PutRule: %v", err)
	}

	conditions[0] = policy.EqCondition(policy.SourceObject, attribute.KeyObjSensitivity, attribute.Value{0xff})

	got, ok, err := catalog.GetRule(ctx, id)
	if err != nil || !ok {
		t.Fatalf("GetRule: ok=%v err=%v", ok, err)
	}
	if got.Conditions[0].LeftSource != policy.SourceSubject {
		t.Fatal("PutRule must deep-copy the conditions slice, not alias the caller's")
	}
}
