// Package policy contains the domain types for the ABAC rule language: the
// typed condition AST, the policy rule record, and the catalog and
// evaluator ports that operate on them.
package policy

import (
	"github.com/holiman/uint256"

	"github.com/abac-gate/engine/internal/domain/attribute"
)

// Action enumerates the actions a policy rule may target.
type Action uint8

const (
	ActionRead Action = iota
	ActionWrite
	ActionExecute
)

// String renders the action for logging and audit records.
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "READ"
	case ActionWrite:
		return "WRITE"
	case ActionExecute:
		return "EXECUTE"
	default:
		return "UNKNOWN"
	}
}

// OperandSource enumerates where a condition operand's bytes/num views
// are resolved from.
type OperandSource uint8

const (
	SourceSubject OperandSource = iota
	SourceObject
	SourceEnv
)

// String renders the source for logging.
func (s OperandSource) String() string {
	switch s {
	case SourceSubject:
		return "SUBJECT"
	case SourceObject:
		return "OBJECT"
	case SourceEnv:
		return "ENV"
	default:
		return "UNKNOWN"
	}
}

// Operator enumerates the condition comparison operators.
type Operator uint8

const (
	OpEQ Operator = iota
	OpNEQ
	OpLE
	OpLT
	OpGE
	OpGT
	OpInSet
	OpEQField
)

// String renders the operator for logging.
func (o Operator) String() string {
	switch o {
	case OpEQ:
		return "EQ"
	case OpNEQ:
		return "NEQ"
	case OpLE:
		return "LE"
	case OpLT:
		return "LT"
	case OpGE:
		return "GE"
	case OpGT:
		return "GT"
	case OpInSet:
		return "IN_SET"
	case OpEQField:
		return "EQ_FIELD"
	default:
		return "UNKNOWN"
	}
}

// MaxSetValues is the maximum number of members an IN_SET condition's set
// may hold (spec.md invariant 4).
const MaxSetValues = 8

// MinConditions and MaxConditions bound the number of conditions a rule
// may carry (spec.md invariant 4).
const (
	MinConditions = 1
	MaxConditions = 16
)

// Condition is a single predicate within a policy rule. It is a
// wire-compatible "wide" record — every operator reads only the subset of
// fields it needs — but is always built through the per-operator
// constructors below so call sites read as a tagged variant even though
// the storage is a flat struct (spec.md section 9 Design Notes).
type Condition struct {
	LeftSource OperandSource
	LeftKey    attribute.Key
	Op         Operator

	// RightSource/RightKey are used only by EQ_FIELD.
	RightSource OperandSource
	RightKey    attribute.Key

	// Value is the literal opaque right operand for EQ/NEQ.
	Value attribute.Value

	// NumValue is the literal numeric right operand for LE/LT/GE/GT.
	NumValue *uint256.Int

	// SetValues is the membership set for IN_SET, capped at MaxSetValues.
	SetValues []attribute.Value
}

// EqCondition builds an EQ condition: left.bytes == value.
func EqCondition(src OperandSource, key attribute.Key, value attribute.Value) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpEQ, Value: value}
}

// NeqCondition builds a NEQ condition: left.bytes != value.
func NeqCondition(src OperandSource, key attribute.Key, value attribute.Value) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpNEQ, Value: value}
}

// LeCondition builds a LE condition: left.num <= numValue.
func LeCondition(src OperandSource, key attribute.Key, numValue uint64) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpLE, NumValue: uint256.NewInt(numValue)}
}

// LtCondition builds a LT condition: left.num < numValue.
func LtCondition(src OperandSource, key attribute.Key, numValue uint64) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpLT, NumValue: uint256.NewInt(numValue)}
}

// GeCondition builds a GE condition: left.num >= numValue.
func GeCondition(src OperandSource, key attribute.Key, numValue uint64) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpGE, NumValue: uint256.NewInt(numValue)}
}

// GtCondition builds a GT condition: left.num > numValue.
func GtCondition(src OperandSource, key attribute.Key, numValue uint64) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpGT, NumValue: uint256.NewInt(numValue)}
}

// InSetCondition builds an IN_SET condition: left.bytes in setValues.
// Callers that need validation of the MaxSetValues cap should go through
// the catalog's create path, which rejects an oversized set rather than
// silently truncating it.
func InSetCondition(src OperandSource, key attribute.Key, setValues []attribute.Value) Condition {
	return Condition{LeftSource: src, LeftKey: key, Op: OpInSet, SetValues: setValues}
}

// FieldEqCondition builds an EQ_FIELD condition: left.bytes == right.bytes,
// both resolved from their respective (source, key) pairs.
func FieldEqCondition(leftSrc OperandSource, leftKey attribute.Key, rightSrc OperandSource, rightKey attribute.Key) Condition {
	return Condition{LeftSource: leftSrc, LeftKey: leftKey, Op: OpEQField, RightSource: rightSrc, RightKey: rightKey}
}
