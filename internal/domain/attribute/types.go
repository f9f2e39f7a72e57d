// Package attribute contains domain types for the ABAC attribute stores:
// opaque identifiers, opaque 32-byte keys/values, and the well-known key
// table that gives policy conditions a stable vocabulary.
package attribute

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// IdentifierSize is the width of an opaque principal/resource identifier.
const IdentifierSize = 20

// KeySize and ValueSize are the width of opaque attribute keys and values.
const (
	KeySize   = 32
	ValueSize = 32
)

// Identifier is an opaque, fixed-width identifier for a subject or object.
// Equality is byte-exact; the engine never inspects or interprets it.
type Identifier [IdentifierSize]byte

// String renders the identifier as a 0x-prefixed hex string for logging.
func (id Identifier) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// IsZero reports whether id is the all-zero identifier.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// IdentifierFromHex parses a 0x-prefixed or bare hex string into an Identifier.
func IdentifierFromHex(s string) (Identifier, error) {
	var id Identifier
	b, err := decodeHexFixed(s, IdentifierSize)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

// Key is an opaque 32-byte attribute key. Keys are compared byte-exact;
// well-known names are hashed into keys once via Keccak256(name) and never
// compared as strings at evaluation time.
type Key [KeySize]byte

// String renders the key as a 0x-prefixed hex string.
func (k Key) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// Value is an opaque 32-byte attribute value. It is reinterpreted as an
// unsigned 256-bit integer only when an operator demands a numeric view;
// otherwise it is compared byte-exact.
type Value [ValueSize]byte

// String renders the value as a 0x-prefixed hex string.
func (v Value) String() string {
	return "0x" + hex.EncodeToString(v[:])
}

// IsZero reports whether v is the all-zero value (the reading for a
// missing attribute).
func (v Value) IsZero() bool {
	return v == Value{}
}

// ValueFromHex parses a 0x-prefixed or bare hex string into a Value.
func ValueFromHex(s string) (Value, error) {
	var v Value
	b, err := decodeHexFixed(s, ValueSize)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// HashKey derives a well-known attribute key by hashing its ASCII name
// under Keccak-256, per the reference encoding (spec.md section 6).
// Implementations that re-derive the key set must use the same names and
// hash to preserve policy portability across engines.
func HashKey(name string) Key {
	digest := sha3.NewLegacyKeccak256()
	digest.Write([]byte(name))
	var k Key
	copy(k[:], digest.Sum(nil))
	return k
}

// Well-known subject, object, and environment attribute keys. These are
// the only keys the reference deployment assigns meaning to; the ENV
// resolver table in the evaluator is keyed by the environment subset of
// these names, and everything else resolves to zero (an intentionally
// "open" extension slot, see spec.md section 9).
var (
	KeySubRole          = HashKey("SUB_ROLE")
	KeySubOrg           = HashKey("SUB_ORG")
	KeySubDept          = HashKey("SUB_DEPT")
	KeySubOffice        = HashKey("SUB_OFFICE")
	KeySubDevType       = HashKey("SUB_DEV_TYPE")
	KeySubLocation      = HashKey("SUB_LOCATION")
	KeyObjResourceType  = HashKey("OBJ_RESOURCE_TYPE")
	KeyObjOwnerDept     = HashKey("OBJ_OWNER_DEPT")
	KeyObjSensitivity   = HashKey("OBJ_SENSITIVITY")
	KeyObjLocation      = HashKey("OBJ_LOCATION")
	KeyEnvTimeWindow    = HashKey("timeWindow")
	KeyEnvEmergencyMode = HashKey("emergencyMode")
	KeyEnvSystemLoad    = HashKey("systemLoad")
)

func decodeHexFixed(s string, width int) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != width {
		return nil, errBadWidth(width, len(b))
	}
	return b, nil
}
