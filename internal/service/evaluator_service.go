package service

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// EvaluatorService implements policy.Evaluator: the pure, side-effect-free
// condition interpreter. It reads attributes from a Registry and, for
// EvaluatePolicy's id-based entry point, rule records from a Catalog. It
// never mutates state.
type EvaluatorService struct {
	registry attribute.Registry
	catalog  policy.Catalog
}

// NewEvaluatorService builds an Evaluator backed by the given Registry and
// Catalog. catalog may be nil if the caller only ever uses EvaluateRule.
func NewEvaluatorService(registry attribute.Registry, catalog policy.Catalog) *EvaluatorService {
	return &EvaluatorService{registry: registry, catalog: catalog}
}

// operand is the dual bytes/num view of a resolved condition operand.
type operand struct {
	bytes attribute.Value
	num   uint256.Int
}

// EvaluateCondition resolves both operands of cond against
// (subject, object, env) and applies cond.Op.
func (e *EvaluatorService) EvaluateCondition(ctx context.Context, cond policy.Condition, subject, object attribute.Identifier, env policy.Environment) (bool, error) {
	left, err := e.resolve(ctx, cond.LeftSource, cond.LeftKey, subject, object, env)
	if err != nil {
		return false, err
	}

	switch cond.Op {
	case policy.OpEQ:
		return left.bytes == cond.Value, nil
	case policy.OpNEQ:
		return left.bytes != cond.Value, nil
	case policy.OpLE:
		return left.num.Cmp(cond.NumValue) <= 0, nil
	case policy.OpLT:
		return left.num.Cmp(cond.NumValue) < 0, nil
	case policy.OpGE:
		return left.num.Cmp(cond.NumValue) >= 0, nil
	case policy.OpGT:
		return left.num.Cmp(cond.NumValue) > 0, nil
	case policy.OpInSet:
		for _, v := range cond.SetValues {
			if left.bytes == v {
				return true, nil
			}
		}
		return false, nil
	case policy.OpEQField:
		right, err := e.resolve(ctx, cond.RightSource, cond.RightKey, subject, object, env)
		if err != nil {
			return false, err
		}
		return left.bytes == right.bytes, nil
	default:
		return false, nil
	}
}

// EvaluatePolicy reports whether rule id matches (subject, object, env).
// An unknown id is never passed by the orchestrator; this method treats
// it as non-matching rather than erroring (spec.md section 4.3).
func (e *EvaluatorService) EvaluatePolicy(ctx context.Context, id policy.ID, subject, object attribute.Identifier, env policy.Environment) (bool, error) {
	if e.catalog == nil {
		return false, nil
	}
	rule, err := e.catalog.GetPolicy(ctx, id)
	if err != nil {
		return false, nil
	}
	return e.EvaluateRule(ctx, rule, subject, object, env)
}

// EvaluateRule is the id-free counterpart of EvaluatePolicy: enabled AND
// every condition true (conjunction), short-circuiting on first false.
func (e *EvaluatorService) EvaluateRule(ctx context.Context, rule policy.Rule, subject, object attribute.Identifier, env policy.Environment) (bool, error) {
	if !rule.Enabled {
		return false, nil
	}
	for _, cond := range rule.Conditions {
		ok, err := e.EvaluateCondition(ctx, cond, subject, object, env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// resolve produces the (bytes, num) dual view of an operand. ENV sources
// resolve against a small table keyed by the well-known environment
// keys; any other ENV key yields the all-zero view (spec.md section 9,
// "open" extension slot).
func (e *EvaluatorService) resolve(ctx context.Context, src policy.OperandSource, key attribute.Key, subject, object attribute.Identifier, env policy.Environment) (operand, error) {
	switch src {
	case policy.SourceSubject:
		v, err := e.registry.SubjectAttr(ctx, subject, key)
		if err != nil {
			return operand{}, err
		}
		return bytesOperand(v), nil
	case policy.SourceObject:
		v, err := e.registry.ObjectAttr(ctx, object, key)
		if err != nil {
			return operand{}, err
		}
		return bytesOperand(v), nil
	case policy.SourceEnv:
		return resolveEnv(key, env), nil
	default:
		return operand{}, nil
	}
}

// bytesOperand builds the dual view for a raw attribute value: bytes is
// the value itself, num is its big-endian unsigned integer interpretation.
func bytesOperand(v attribute.Value) operand {
	var num uint256.Int
	num.SetBytes32(v[:])
	return operand{bytes: v, num: num}
}

// resolveEnv implements the fixed ENV resolver table.
func resolveEnv(key attribute.Key, env policy.Environment) operand {
	switch key {
	case attribute.KeyEnvTimeWindow:
		var num uint256.Int
		num.SetUint64(uint64(env.TimeWindow))
		return operand{bytes: numToBytes(num), num: num}
	case attribute.KeyEnvEmergencyMode:
		var num uint256.Int
		if env.EmergencyMode {
			num.SetOne()
		}
		return operand{bytes: numToBytes(num), num: num}
	case attribute.KeyEnvSystemLoad:
		num := env.SystemLoad
		return operand{bytes: numToBytes(num), num: num}
	default:
		return operand{}
	}
}

// numToBytes renders a uint256 as its 32-byte big-endian attribute.Value.
func numToBytes(num uint256.Int) attribute.Value {
	return attribute.Value(num.Bytes32())
}

// Compile-time interface verification.
var _ policy.Evaluator = (*EvaluatorService)(nil)
