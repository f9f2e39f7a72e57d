package config

import (
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/abac-gate/engine/internal/adapter/outbound/celcompile"
	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// Seed describes the initial subjects, objects, and policies a fresh
// engine instance should be loaded with. It is parsed independently of
// viper because its identifiers and conditions need attribute-level
// parsing, not plain struct decoding.
type Seed struct {
	Subjects []SeedPrincipal `yaml:"subjects"`
	Objects  []SeedPrincipal `yaml:"objects"`
	Policies []SeedPolicy    `yaml:"policies"`
}

// SeedPrincipal is a subject or object and the well-known attributes to
// set on it. Attribute values are plain strings; they are hashed the
// same way Condition literals are (attribute.HashKey) unless the string
// parses as an unsigned integer, in which case it is stored as that
// integer's 32-byte big-endian encoding.
type SeedPrincipal struct {
	ID         string            `yaml:"id"`
	Attributes map[string]string `yaml:"attributes"`
}

// SeedPolicy is a resource/action rule whose conditions are written as
// celcompile expressions rather than raw Condition structs, so a seed
// file reads like the admin-authoring surface it emulates.
type SeedPolicy struct {
	Resource   string   `yaml:"resource"`
	Action     string   `yaml:"action"`
	Conditions []string `yaml:"conditions"`
}

// LoadSeed parses a bootstrap seed file from path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("config: parse seed file: %w", err)
	}
	return &seed, nil
}

// ResolvePolicyConditions compiles a SeedPolicy's textual conditions into
// policy.Condition values using a fresh celcompile.Compiler.
func ResolvePolicyConditions(sp SeedPolicy) ([]policy.Condition, error) {
	compiler, err := celcompile.New()
	if err != nil {
		return nil, fmt.Errorf("config: build condition compiler: %w", err)
	}
	conditions := make([]policy.Condition, 0, len(sp.Conditions))
	for i, expr := range sp.Conditions {
		cond, err := compiler.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("config: seed policy %s/%s condition %d: %w", sp.Resource, sp.Action, i, err)
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

// ParseAction maps a seed policy's textual action to policy.Action.
func ParseAction(s string) (policy.Action, error) {
	switch s {
	case "read":
		return policy.ActionRead, nil
	case "write":
		return policy.ActionWrite, nil
	case "execute":
		return policy.ActionExecute, nil
	default:
		return 0, fmt.Errorf("config: unknown action %q", s)
	}
}

// ParseAttributeValue renders a seed attribute's textual value as an
// attribute.Value: an unsigned decimal integer is stored as its 32-byte
// big-endian encoding, anything else is hashed like a Condition literal.
func ParseAttributeValue(s string) attribute.Value {
	if n, ok := parseUint(s); ok {
		return numericValue(n)
	}
	return attribute.Value(attribute.HashKey(s))
}

func numericValue(n uint64) attribute.Value {
	var num uint256.Int
	num.SetUint64(n)
	return attribute.Value(num.Bytes32())
}

func parseUint(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	var n uint64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + uint64(r-'0')
	}
	return n, true
}
