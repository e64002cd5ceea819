// Package filter provides AIP-160 filter parsing for question listings,
// translated into SQL WHERE fragments.
package filter

import (
	"fmt"
	"strings"

	apperrors "examsim/internal/platform/errors"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Condition is a SQL WHERE clause fragment with positional parameters.
// The zero value means "no filtering".
type Condition struct {
	Clause string
	Params []any
}

// Empty reports whether the condition filters nothing.
func (c Condition) Empty() bool {
	return strings.TrimSpace(c.Clause) == ""
}

// questionColumns maps filter field names to question table columns.
var questionColumns = map[string]string{
	"domain":        "domain",
	"difficulty":    "difficulty",
	"question_type": "kind",
}

func questionDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("domain", filtering.TypeString),
		filtering.DeclareIdent("difficulty", filtering.TypeString),
		filtering.DeclareIdent("question_type", filtering.TypeString),
	)
}

// ParseQuestionFilter parses an AIP-160 expression over question fields.
// An empty filter string yields the empty condition.
func ParseQuestionFilter(filterStr string) (Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Condition{}, nil
	}

	decls, err := questionDeclarations()
	if err != nil {
		return Condition{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Condition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "parse question filter", err)
	}

	condition, err := translateExpr(parsed.CheckedExpr.Expr)
	if err != nil {
		return Condition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "translate question filter", err)
	}
	return condition, nil
}

func translateExpr(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, nil
	}

	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return Condition{}, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}

	switch call.CallExpr.Function {
	case "_&&_", "AND":
		return translateLogical(call.CallExpr.Args, "AND")
	case "_||_", "OR":
		return translateLogical(call.CallExpr.Args, "OR")
	case "_==_", "=":
		return translateComparison(call.CallExpr.Args, "=")
	case "_!=_", "!=":
		return translateComparison(call.CallExpr.Args, "!=")
	default:
		return Condition{}, fmt.Errorf("unsupported function: %s", call.CallExpr.Function)
	}
}

func translateLogical(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := translateExpr(args[0])
	if err != nil {
		return Condition{}, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return Condition{}, err
	}
	column, ok := questionColumns[field]
	if !ok {
		return Condition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := constant.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
