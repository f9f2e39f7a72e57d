package service

import (
	"testing"

	"github.com/abac-gate/engine/internal/domain/policy"
)

func TestDigestVerifier_RejectsUnknownProof(t *testing.T) {
	ctx := t.Context()
	v := NewDigestVerifier()

	ok, err := v.Verify(ctx, policy.Environment{}, []byte("never-allowed"))
	if err != nil || ok {
		t.Fatalf("Verify(unknown) = %v, %v; want false, nil", ok, err)
	}
}

func TestDigestVerifier_AcceptsAllowedProof(t *testing.T) {
	ctx := t.Context()
	v := NewDigestVerifier()
	proof := []byte("device-attestation-blob")

	if err := v.Allow(proof); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	ok, err := v.Verify(ctx, policy.Environment{}, proof)
	if err != nil || !ok {
		t.Fatalf("Verify(allowed) = %v, %v; want true, nil", ok, err)
	}
}

func TestDigestVerifier_MultipleWhitelistedProofs(t *testing.T) {
	ctx := t.Context()
	v := NewDigestVerifier()
	first := []byte("proof-one")
	second := []byte("proof-two")

	if err := v.Allow(first); err != nil {
		t.Fatalf("Allow(first): %v", err)
	}
	if err := v.Allow(second); err != nil {
		t.Fatalf("Allow(second): %v", err)
	}

	for _, proof := range [][]byte{first, second} {
		ok, err := v.Verify(ctx, policy.Environment{}, proof)
		if err != nil || !ok {
			t.Fatalf("Verify(%s) = %v, %v; want true, nil", proof, ok, err)
		}
	}
}
