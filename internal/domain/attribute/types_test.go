package attribute

import "testing"

func TestIdentifierFromHex_RoundTrip(t *testing.T) {
	id := Identifier{0x01, 0x02, 0xff}
	parsed, err := IdentifierFromHex(id.String())
	if err != nil {
		t.Fatalf("IdentifierFromHex: %v", err)
	}
	if parsed != id {
		t.Fatalf("parsed = %x, want %x", parsed, id)
	}
}

func TestIdentifierFromHex_AcceptsBareHex(t *testing.T) {
	id := Identifier{0xaa}
	parsed, err := IdentifierFromHex(id.String()[2:])
	if err != nil {
		t.Fatalf("IdentifierFromHex(bare): %v", err)
	}
	if parsed != id {
		t.Fatalf("parsed = %x, want %x", parsed, id)
	}
}

func TestIdentifierFromHex_RejectsWrongWidth(t *testing.T) {
	if _, err := IdentifierFromHex("0xaabb"); err == nil {
		t.Fatal("expected error for short hex string")
	}
}

func TestIdentifierFromHex_RejectsInvalidHex(t *testing.T) {
	if _, err := IdentifierFromHex("0xzz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestIdentifier_IsZero(t *testing.T) {
	var zero Identifier
	if !zero.IsZero() {
		t.Fatal("zero-value Identifier must report IsZero() == true")
	}
	nonZero := Identifier{0x01}
	if nonZero.IsZero() {
		t.Fatal("non-zero Identifier must report IsZero() == false")
	}
}

func TestValueFromHex_RoundTrip(t *testing.T) {
	v := Value{0x10, 0x20, 0xff}
	parsed, err := ValueFromHex(v.String())
	if err != nil {
		t.Fatalf("ValueFromHex: %v", err)
	}
	if parsed != v {
		t.Fatalf("parsed = %x, want %x", parsed, v)
	}
}

func TestValue_IsZero(t *testing.T) {
	var zero Value
	if !zero.IsZero() {
		t.Fatal("zero-value Value must report IsZero() == true")
	}
}

func TestHashKey_DeterministicAndDistinct(t *testing.T) {
	a := HashKey("SUB_ROLE")
	b := HashKey("SUB_ROLE")
	if a != b {
		t.Fatal("HashKey must be deterministic for the same name")
	}
	c := HashKey("SUB_ORG")
	if a == c {
		t.Fatal("HashKey must produce distinct keys for distinct names")
	}
}

func TestWellKnownKeys_AreDistinct(t *testing.T) {
	keys := []Key{
		KeySubRole, KeySubOrg, KeySubDept, KeySubOffice, KeySubDevType, KeySubLocation,
		KeyObjResourceType, KeyObjOwnerDept, KeyObjSensitivity, KeyObjLocation,
		KeyEnvTimeWindow, KeyEnvEmergencyMode, KeyEnvSystemLoad,
	}
	seen := make(map[Key]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate well-known key: %x", k)
		}
		seen[k] = true
	}
}
