package service

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/alexedwards/argon2id"

	"github.com/abac-gate/engine/internal/domain/access"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// DigestVerifier is a reference access.Verifier: it accepts a proof iff
// an Argon2id hash of it has been explicitly whitelisted, the same
// hash-don't-store approach the identity service uses for API keys. It
// holds its own state, as spec.md section 6 permits, and never inspects
// env.
type DigestVerifier struct {
	mu        sync.RWMutex
	whitelist []string // argon2id hashes
}

// NewDigestVerifier builds an empty whitelist; no proof is accepted until
// Allow is called.
func NewDigestVerifier() *DigestVerifier {
	return &DigestVerifier{}
}

// Allow whitelists proof so subsequent Verify calls with the same bytes
// succeed.
func (v *DigestVerifier) Allow(proof []byte) error {
	hash, err := argon2id.CreateHash(hex.EncodeToString(proof), argon2id.DefaultParams)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.whitelist = append(v.whitelist, hash)
	return nil
}

// Verify reports whether proof matches any whitelisted Argon2id hash.
// env is not inspected; this verifier only attests proof authenticity.
func (v *DigestVerifier) Verify(_ context.Context, _ policy.Environment, proof []byte) (bool, error) {
	encoded := hex.EncodeToString(proof)

	v.mu.RLock()
	hashes := make([]string, len(v.whitelist))
	copy(hashes, v.whitelist)
	v.mu.RUnlock()

	for _, hash := range hashes {
		match, err := argon2id.ComparePasswordAndHash(encoded, hash)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// Compile-time interface verification.
var _ access.Verifier = (*DigestVerifier)(nil)
