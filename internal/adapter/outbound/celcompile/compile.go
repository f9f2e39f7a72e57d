// Package celcompile is an administrative convenience layer: it compiles a
// small, whitelisted subset of CEL comparison expressions into a
// policy.Condition at policy-authoring time. It never runs at decision
// time — once compiled, a Condition is evaluated the ordinary way by
// policy.Evaluator, exactly like a condition built by hand through the
// Catalog API.
//
// Supported grammar is deliberately narrow: a single binary comparison
// between two attribute references (subject.<field>, object.<field>,
// env.<field>) or between an attribute reference and a literal
// (string or int). Anything wider — boolean connectives, function
// calls, nested expressions — is rejected rather than partially
// supported.
package celcompile

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/types/ref"
	"github.com/holiman/uint256"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

var subjectFields = map[string]attribute.Key{
	"role":     attribute.KeySubRole,
	"org":      attribute.KeySubOrg,
	"dept":     attribute.KeySubDept,
	"office":   attribute.KeySubOffice,
	"devType":  attribute.KeySubDevType,
	"location": attribute.KeySubLocation,
}

var objectFields = map[string]attribute.Key{
	"resourceType": attribute.KeyObjResourceType,
	"ownerDept":    attribute.KeyObjOwnerDept,
	"sensitivity":  attribute.KeyObjSensitivity,
	"location":     attribute.KeyObjLocation,
}

var envFields = map[string]attribute.Key{
	"timeWindow":    attribute.KeyEnvTimeWindow,
	"emergencyMode": attribute.KeyEnvEmergencyMode,
	"systemLoad":    attribute.KeyEnvSystemLoad,
}

var sourceFields = map[string]map[string]attribute.Key{
	"subject": subjectFields,
	"object":  objectFields,
	"env":     envFields,
}

var sourceOf = map[string]policy.OperandSource{
	"subject": policy.SourceSubject,
	"object":  policy.SourceObject,
	"env":     policy.SourceEnv,
}

var comparisonOps = map[string]policy.Operator{
	"_==_": policy.OpEQ,
	"_!=_": policy.OpNEQ,
	"_<_":  policy.OpLT,
	"_<=_": policy.OpLE,
	"_>_":  policy.OpGT,
	"_>=_": policy.OpGE,
}

// Compiler holds the CEL environment used to parse and type-check
// whitelisted expressions.
type Compiler struct {
	env *cel.Env
}

// New builds a Compiler whose environment declares the subject/object/env
// vocabulary above as string-keyed dynamic maps. CEL's standard operators
// and functions remain declared, so an expression outside the supported
// grammar can type-check; Compile's AST walk rejects every shape it does
// not translate.
func New() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("subject", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("object", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("env", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("celcompile: build environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

// Compile parses and type-checks expr, then translates its single
// top-level comparison into a policy.Condition. expr must be exactly one
// of:
//
//	<side>.<field> <op> <side>.<field>   (produces an EQ_FIELD condition, op must be ==)
//	<side>.<field> <op> "<literal>"      (produces an EQ/NEQ condition against a hashed value)
//	<side>.<field> <op> <int literal>    (produces an LE/LT/GE/GT/EQ/NEQ condition against a numeric value)
func (c *Compiler) Compile(expr string) (policy.Condition, error) {
	checked, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return policy.Condition{}, fmt.Errorf("celcompile: %w", issues.Err())
	}

	root := ast.NavigateAST(checked.NativeRep())
	call, ok := root.AsCall()
	if !ok || root.Kind() != ast.CallKind {
		return policy.Condition{}, fmt.Errorf("celcompile: expression must be a single comparison")
	}
	op, ok := comparisonOps[call.FunctionName()]
	if !ok {
		return policy.Condition{}, fmt.Errorf("celcompile: unsupported operator %q", call.FunctionName())
	}
	args := call.Args()
	if len(args) != 2 {
		return policy.Condition{}, fmt.Errorf("celcompile: expected a binary comparison")
	}

	left, leftOK := attrRef(args[0])
	if !leftOK {
		return policy.Condition{}, fmt.Errorf("celcompile: left operand must be a subject/object/env field reference")
	}

	if right, ok := attrRef(args[1]); ok {
		if op != policy.OpEQ {
			return policy.Condition{}, fmt.Errorf("celcompile: field-to-field comparisons only support ==")
		}
		return policy.FieldEqCondition(left.source, left.key, right.source, right.key), nil
	}

	lit, ok := args[1].AsLiteral()
	if !ok {
		return policy.Condition{}, fmt.Errorf("celcompile: right operand must be a field reference or literal")
	}
	return conditionFromLiteral(left.source, left.key, op, lit)
}

type fieldRef struct {
	source policy.OperandSource
	key    attribute.Key
}

// attrRef recognizes a select expression of the shape <side>.<field>
// where side is one of subject/object/env and field is in that side's
// whitelisted field table.
func attrRef(n ast.NavigableExpr) (fieldRef, bool) {
	sel, ok := n.AsSelect()
	if !ok {
		return fieldRef{}, false
	}
	ident, ok := sel.Operand().AsIdent()
	if !ok {
		return fieldRef{}, false
	}
	fields, ok := sourceFields[ident]
	if !ok {
		return fieldRef{}, false
	}
	key, ok := fields[sel.FieldName()]
	if !ok {
		return fieldRef{}, false
	}
	return fieldRef{source: sourceOf[ident], key: key}, true
}

// conditionFromLiteral builds the EQ/NEQ/LE/LT/GE/GT condition comparing
// a resolved attribute field against a CEL literal. String literals
// produce a hashed-value comparison (attribute.HashKey, reused as a
// general-purpose 32-byte digest of arbitrary text); int literals
// produce a numeric comparison.
func conditionFromLiteral(source policy.OperandSource, key attribute.Key, op policy.Operator, lit ref.Val) (policy.Condition, error) {
	switch v := lit.Value().(type) {
	case string:
		if op != policy.OpEQ && op != policy.OpNEQ {
			return policy.Condition{}, fmt.Errorf("celcompile: string literals only support == and !=")
		}
		value := attribute.Value(attribute.HashKey(v))
		if op == policy.OpEQ {
			return policy.EqCondition(source, key, value), nil
		}
		return policy.NeqCondition(source, key, value), nil
	case int64:
		if v < 0 {
			return policy.Condition{}, fmt.Errorf("celcompile: negative literals are not supported")
		}
		num := uint64(v)
		switch op {
		case policy.OpEQ:
			return policy.EqCondition(source, key, numToValue(num)), nil
		case policy.OpNEQ:
			return policy.NeqCondition(source, key, numToValue(num)), nil
		case policy.OpLE:
			return policy.LeCondition(source, key, num), nil
		case policy.OpLT:
			return policy.LtCondition(source, key, num), nil
		case policy.OpGE:
			return policy.GeCondition(source, key, num), nil
		case policy.OpGT:
			return policy.GtCondition(source, key, num), nil
		}
		return policy.Condition{}, fmt.Errorf("celcompile: unsupported operator for int literal")
	case uint64:
		switch op {
		case policy.OpEQ:
			return policy.EqCondition(source, key, numToValue(v)), nil
		case policy.OpNEQ:
			return policy.NeqCondition(source, key, numToValue(v)), nil
		case policy.OpLE:
			return policy.LeCondition(source, key, v), nil
		case policy.OpLT:
			return policy.LtCondition(source, key, v), nil
		case policy.OpGE:
			return policy.GeCondition(source, key, v), nil
		case policy.OpGT:
			return policy.GtCondition(source, key, v), nil
		}
		return policy.Condition{}, fmt.Errorf("celcompile: unsupported operator for uint literal")
	default:
		return policy.Condition{}, fmt.Errorf("celcompile: unsupported literal type %T", v)
	}
}

// numToValue renders an unsigned literal as its 32-byte big-endian
// attribute.Value, the same encoding the evaluator uses for numeric
// operands (EvaluatorService.numToBytes).
func numToValue(num uint64) attribute.Value {
	var n uint256.Int
	n.SetUint64(num)
	return attribute.Value(n.Bytes32())
}
