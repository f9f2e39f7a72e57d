package service

import (
	"testing"

	"github.com/abac-gate/engine/internal/adapter/outbound/memory"
	"github.com/abac-gate/engine/internal/domain/attribute"
)

func newTestRegistry(t *testing.T) (*RegistryService, *memAudit, attribute.Identifier) {
	t.Helper()
	admin := attribute.Identifier{0xAD}
	audit := newMemAudit()
	reg := NewRegistryService(memory.NewAttributeStore(), audit, admin, discardLogger())
	return reg, audit, admin
}

func TestRegistryService_SubjectCanWriteOwnAttribute(t *testing.T) {
	ctx := t.Context()
	reg, audit, _ := newTestRegistry(t)
	subject := attribute.Identifier{0x01}

	if err := reg.SetSubjectAttribute(ctx, subject, subject, attribute.KeySubRole, attribute.Value{0x01}); err != nil {
		t.Fatalf("SetSubjectAttribute: %v", err)
	}
	got, err := reg.SubjectAttr(ctx, subject, attribute.KeySubRole)
	if err != nil || got != (attribute.Value{0x01}) {
		t.Fatalf("SubjectAttr = %x, %v; want {0x01}, nil", got, err)
	}
	if len(audit.Recent(10)) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(audit.Recent(10)))
	}
}

func TestRegistryService_SubjectCannotWriteAnotherSubject(t *testing.T) {
	ctx := t.Context()
	reg, _, _ := newTestRegistry(t)
	subject := attribute.Identifier{0x01}
	other := attribute.Identifier{0x02}

	err := reg.SetSubjectAttribute(ctx, subject, other, attribute.KeySubRole, attribute.Value{0x01})
	if err != attribute.ErrNotAuthorized {
		t.Fatalf("SetSubjectAttribute = %v, want ErrNotAuthorized", err)
	}
}

func TestRegistryService_AdminCanWriteAnySubject(t *testing.T) {
	ctx := t.Context()
	reg, _, admin := newTestRegistry(t)
	subject := attribute.Identifier{0x01}

	if err := reg.SetSubjectAttribute(ctx, admin, subject, attribute.KeySubRole, attribute.Value{0x01}); err != nil {
		t.Fatalf("SetSubjectAttribute: %v", err)
	}
}

func TestRegistryService_OnlyAdminCanWriteObject(t *testing.T) {
	ctx := t.Context()
	reg, _, admin := newTestRegistry(t)
	object := attribute.Identifier{0x03}
	notAdmin := attribute.Identifier{0x04}

	if err := reg.SetObjectAttribute(ctx, notAdmin, object, attribute.KeyObjSensitivity, attribute.Value{0x01}); err != attribute.ErrNotAuthorized {
		t.Fatalf("SetObjectAttribute(notAdmin) = %v, want ErrNotAuthorized", err)
	}
	if err := reg.SetObjectAttribute(ctx, admin, object, attribute.KeyObjSensitivity, attribute.Value{0x01}); err != nil {
		t.Fatalf("SetObjectAttribute(admin): %v", err)
	}
}

func TestRegistryService_SetSubjectAttributesLengthMismatch(t *testing.T) {
	ctx := t.Context()
	reg, _, admin := newTestRegistry(t)
	subject := attribute.Identifier{0x01}

	err := reg.SetSubjectAttributes(ctx, admin, subject, []attribute.Key{attribute.KeySubRole}, nil)
	if err != attribute.ErrLengthMismatch {
		t.Fatalf("SetSubjectAttributes = %v, want ErrLengthMismatch", err)
	}
}

func TestRegistryService_IsSubjectRegistered(t *testing.T) {
	ctx := t.Context()
	reg, _, admin := newTestRegistry(t)
	subject := attribute.Identifier{0x05}

	registered, err := reg.IsSubjectRegistered(ctx, subject)
	if err != nil || registered {
		t.Fatalf("IsSubjectRegistered before write = %v, %v; want false, nil", registered, err)
	}
	if err := reg.SetSubjectAttribute(ctx, admin, subject, attribute.KeySubRole, attribute.Value{0x01}); err != nil {
		t.Fatalf("SetSubjectAttribute: %v", err)
	}
	registered, err = reg.IsSubjectRegistered(ctx, subject)
	if err != nil || !registered {
		t.Fatalf("IsSubjectRegistered after write = %v, %v; want true, nil", registered, err)
	}
}
