// Package service implements the ABAC engine's authorization and
// orchestration logic on top of the raw outbound ports: attribute
// storage, policy catalog storage, and audit persistence.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/audit"
)

// RegistryService implements attribute.Registry on top of a raw
// attribute.Store, enforcing the subject/object write authorization rule
// and emitting an audit record for every write.
type RegistryService struct {
	store  attribute.Store
	audit  audit.Store
	admin  attribute.Identifier
	logger *slog.Logger
}

// NewRegistryService wires a raw attribute store and audit sink behind
// the authorized Registry port. admin is the identifier allowed to write
// any subject's or object's attributes.
func NewRegistryService(store attribute.Store, auditStore audit.Store, admin attribute.Identifier, logger *slog.Logger) *RegistryService {
	return &RegistryService{store: store, audit: auditStore, admin: admin, logger: logger}
}

// SetSubjectAttribute writes a single subject attribute. caller must be
// the subject itself or the admin.
func (s *RegistryService) SetSubjectAttribute(ctx context.Context, caller, subject attribute.Identifier, key attribute.Key, value attribute.Value) error {
	if !s.canWriteSubject(caller, subject) {
		return attribute.ErrNotAuthorized
	}
	if err := s.store.Set(ctx, subject, key, value); err != nil {
		return err
	}
	s.emitAttrSet(ctx, caller, key, value)
	return nil
}

// SetObjectAttribute writes a single object attribute. caller must be the admin.
func (s *RegistryService) SetObjectAttribute(ctx context.Context, caller, object attribute.Identifier, key attribute.Key, value attribute.Value) error {
	if caller != s.admin {
		return attribute.ErrNotAuthorized
	}
	if err := s.store.Set(ctx, object, key, value); err != nil {
		return err
	}
	s.emitAttrSet(ctx, caller, key, value)
	return nil
}

// SetSubjectAttributes writes a batch of subject attributes atomically.
func (s *RegistryService) SetSubjectAttributes(ctx context.Context, caller, subject attribute.Identifier, keys []attribute.Key, values []attribute.Value) error {
	if !s.canWriteSubject(caller, subject) {
		return attribute.ErrNotAuthorized
	}
	if len(keys) != len(values) {
		return attribute.ErrLengthMismatch
	}
	if err := s.store.SetBatch(ctx, subject, keys, values); err != nil {
		return err
	}
	for i, k := range keys {
		s.emitAttrSet(ctx, caller, k, values[i])
	}
	return nil
}

// SetObjectAttributes writes a batch of object attributes atomically.
func (s *RegistryService) SetObjectAttributes(ctx context.Context, caller, object attribute.Identifier, keys []attribute.Key, values []attribute.Value) error {
	if caller != s.admin {
		return attribute.ErrNotAuthorized
	}
	if len(keys) != len(values) {
		return attribute.ErrLengthMismatch
	}
	if err := s.store.SetBatch(ctx, object, keys, values); err != nil {
		return err
	}
	for i, k := range keys {
		s.emitAttrSet(ctx, caller, k, values[i])
	}
	return nil
}

// SubjectAttr reads a single subject attribute, zero value if unset.
func (s *RegistryService) SubjectAttr(ctx context.Context, subject attribute.Identifier, key attribute.Key) (attribute.Value, error) {
	return s.store.Get(ctx, subject, key)
}

// ObjectAttr reads a single object attribute, zero value if unset.
func (s *RegistryService) ObjectAttr(ctx context.Context, object attribute.Identifier, key attribute.Key) (attribute.Value, error) {
	return s.store.Get(ctx, object, key)
}

// SubjectAttrs returns every attribute written for a subject.
func (s *RegistryService) SubjectAttrs(ctx context.Context, subject attribute.Identifier) (map[attribute.Key]attribute.Value, error) {
	return s.store.GetAll(ctx, subject)
}

// ObjectAttrs returns every attribute written for an object.
func (s *RegistryService) ObjectAttrs(ctx context.Context, object attribute.Identifier) (map[attribute.Key]attribute.Value, error) {
	return s.store.GetAll(ctx, object)
}

// IsSubjectRegistered reports whether the subject has ever had an attribute written.
func (s *RegistryService) IsSubjectRegistered(ctx context.Context, subject attribute.Identifier) (bool, error) {
	return s.store.IsRegistered(ctx, subject)
}

// IsObjectRegistered reports whether the object has ever had an attribute written.
func (s *RegistryService) IsObjectRegistered(ctx context.Context, object attribute.Identifier) (bool, error) {
	return s.store.IsRegistered(ctx, object)
}

func (s *RegistryService) canWriteSubject(caller, subject attribute.Identifier) bool {
	return caller == subject || caller == s.admin
}

func (s *RegistryService) emitAttrSet(ctx context.Context, caller attribute.Identifier, key attribute.Key, value attribute.Value) {
	rec := audit.Record{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: audit.EventTypeAttributeSet,
		Caller:    caller,
		AttrKey:   key,
		AttrValue: value,
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Warn("registry: failed to append audit record", "error", err)
	}
}

// Compile-time interface verification.
var _ attribute.Registry = (*RegistryService)(nil)
