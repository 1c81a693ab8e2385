package reduce

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluator decides ifeval expressions. The expression text arrives with
// attribute references already substituted. Implementations must be safe to
// use from concurrent reductions only if the caller supplies one instance
// per call; the built-in CompareEvaluator is stateless and always safe.
type Evaluator interface {
	Eval(expr string) (bool, error)
}

// CompareEvaluator is the built-in evaluator: a single binary comparison
// between two operands. Operands may be quoted strings, numbers, or bare
// words; the comparison is numeric when both sides parse as numbers and
// lexicographic otherwise.
type CompareEvaluator struct{}

// cmpOps is ordered so two-character operators match before their prefixes.
var cmpOps = []string{"==", "!=", "<=", ">=", "<", ">"}

func (CompareEvaluator) Eval(expr string) (bool, error) {
	op, opIdx := findOperator(expr)
	if op == "" {
		return false, fmt.Errorf("malformed expression %q: no comparison operator", expr)
	}
	lhs, err := parseOperand(expr[:opIdx])
	if err != nil {
		return false, fmt.Errorf("malformed expression %q: %w", expr, err)
	}
	rhs, err := parseOperand(expr[opIdx+len(op):])
	if err != nil {
		return false, fmt.Errorf("malformed expression %q: %w", expr, err)
	}

	if lhs.numeric && rhs.numeric {
		return compareNumbers(lhs.num, rhs.num, op), nil
	}
	return compareStrings(lhs.str, rhs.str, op), nil
}

// findOperator locates the first comparison operator outside quotes.
func findOperator(expr string) (string, int) {
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		default:
			for _, op := range cmpOps {
				if strings.HasPrefix(expr[i:], op) {
					return op, i
				}
			}
		}
	}
	return "", -1
}

type operand struct {
	str     string
	num     float64
	numeric bool
}

func parseOperand(s string) (operand, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return operand{}, fmt.Errorf("empty operand")
	}
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		return operand{str: s[1 : len(s)-1]}, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return operand{str: s, num: n, numeric: true}, nil
	}
	// bare word, including an unresolved {attr} reference
	if strings.ContainsAny(s, "{}") {
		return operand{}, fmt.Errorf("unresolved attribute reference in operand %q", s)
	}
	return operand{str: s}, nil
}

func compareNumbers(a, b float64, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func compareStrings(a, b, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}
