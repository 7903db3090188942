package builtins

import (
	"fmt"
	"math"

	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
	"github.com/mistql-lang/mistql-go/internal/logging"
)

func binaryNumeric(name string, fn func(a, b float64) (value.Value, error)) value.Callable {
	return value.Pure(func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		a, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects a number, got %s", name, value.TypeName(args[0]))
		}
		b, ok := args[1].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects a number, got %s", name, value.TypeName(args[1]))
		}
		return fn(a, b)
	})
}

func plusFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("+ expects 2 arguments, got %d", len(args))
	}
	a, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	b, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return nil, fmt.Errorf("+ cannot add number and %s", value.TypeName(b))
		}
		return av + bv, nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return nil, fmt.Errorf("+ cannot add string and %s", value.TypeName(b))
		}
		return av + bv, nil
	case []value.Value:
		bv, ok := b.([]value.Value)
		if !ok {
			return nil, fmt.Errorf("+ cannot add array and %s", value.TypeName(b))
		}
		out := make([]value.Value, 0, len(av)+len(bv))
		out = append(out, av...)
		out = append(out, bv...)
		return out, nil
	default:
		return nil, fmt.Errorf("+ does not support operands of type %s", value.TypeName(a))
	}
}

func comparisonFn(name string, ok func(c int) bool) value.Callable {
	return value.Pure(func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		c, err := value.Compare(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return ok(c), nil
	})
}

func equalFn(negate bool) value.Callable {
	return value.Pure(func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("equality expects 2 arguments, got %d", len(args))
		}
		eq := value.Equal(args[0], args[1])
		if negate {
			return !eq, nil
		}
		return eq, nil
	})
}

func andFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("&& expects 2 arguments, got %d", len(args))
	}
	left, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	if !value.Truthy(left) {
		return left, nil
	}
	return eval(args[1], stack)
}

func orFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("|| expects 2 arguments, got %d", len(args))
	}
	left, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	if value.Truthy(left) {
		return left, nil
	}
	return eval(args[1], stack)
}

func unaryNegFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("unary - expects 1 argument, got %d", len(args))
	}
	v, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	f, ok := v.(float64)
	if !ok {
		return nil, fmt.Errorf("unary - expects a number, got %s", value.TypeName(v))
	}
	return -f, nil
}

func unaryNotFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("unary ! expects 1 argument, got %d", len(args))
	}
	v, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	return !value.Truthy(v), nil
}

// matchOperatorFn implements the infix form of match: the subject sits on
// the left of "=~" and the pattern on the right, mirrored from match(m, s).
func matchOperatorFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("=~ expects 2 arguments, got %d", len(args))
	}
	subject, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	pattern, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	s, ok := subject.(string)
	if !ok {
		return nil, fmt.Errorf("=~ expects a string on the left, got %s", value.TypeName(subject))
	}
	return matchValue(pattern, s)
}

func ifFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("if expects 3 arguments, got %d", len(args))
	}
	cond, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) {
		return eval(args[1], stack)
	}
	return eval(args[2], stack)
}

func applyFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("apply expects 2 arguments, got %d", len(args))
	}
	x, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	return eval(args[0], stack.PushContext(x))
}

func logFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("log expects 1 argument, got %d", len(args))
	}
	v, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	logging.Get().Debugw("log", "value", value.ToDisplayString(v))
	return v, nil
}

func indexFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	switch len(args) {
	case 2:
		key, err := eval(args[0], stack)
		if err != nil {
			return nil, err
		}
		src, err := eval(args[1], stack)
		if err != nil {
			return nil, err
		}
		return indexSingle(key, src)
	case 3:
		startVal, err := eval(args[0], stack)
		if err != nil {
			return nil, err
		}
		endVal, err := eval(args[1], stack)
		if err != nil {
			return nil, err
		}
		src, err := eval(args[2], stack)
		if err != nil {
			return nil, err
		}
		return indexRange(startVal, endVal, src)
	default:
		return nil, fmt.Errorf("index expects 2 or 3 arguments, got %d", len(args))
	}
}

func indexSingle(key, src value.Value) (value.Value, error) {
	switch s := src.(type) {
	case nil:
		switch key.(type) {
		case float64, string:
			return nil, nil
		default:
			return nil, fmt.Errorf("cannot index null with a value of type %s", value.TypeName(key))
		}
	case value.Object:
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("object indexing requires a string key, got %s", value.TypeName(key))
		}
		return s[k], nil
	case []value.Value:
		idx, err := asIntIndex(key)
		if err != nil {
			return nil, err
		}
		idx = normalizeIndex(idx, len(s))
		if idx < 0 || idx >= len(s) {
			return nil, nil
		}
		return s[idx], nil
	case string:
		runes := []rune(s)
		idx, err := asIntIndex(key)
		if err != nil {
			return nil, err
		}
		idx = normalizeIndex(idx, len(runes))
		if idx < 0 || idx >= len(runes) {
			return nil, nil
		}
		return string(runes[idx]), nil
	default:
		return nil, fmt.Errorf("cannot index a value of type %s", value.TypeName(src))
	}
}

func indexRange(startVal, endVal, src value.Value) (value.Value, error) {
	switch s := src.(type) {
	case nil:
		return nil, nil
	case []value.Value:
		start, end, err := resolveBounds(startVal, endVal, len(s))
		if err != nil {
			return nil, err
		}
		out := make([]value.Value, end-start)
		copy(out, s[start:end])
		return out, nil
	case string:
		runes := []rune(s)
		start, end, err := resolveBounds(startVal, endVal, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[start:end]), nil
	default:
		return nil, fmt.Errorf("cannot range-index a value of type %s", value.TypeName(src))
	}
}

func asIntIndex(key value.Value) (int, error) {
	f, ok := key.(float64)
	if !ok {
		return 0, fmt.Errorf("index expects a number, got %s", value.TypeName(key))
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("index expects an integer, got %v", f)
	}
	return int(f), nil
}

func normalizeIndex(idx, length int) int {
	if idx < 0 {
		return idx + length
	}
	return idx
}

func resolveBounds(startVal, endVal value.Value, length int) (int, int, error) {
	start := 0
	if startVal != nil {
		idx, err := asIntIndex(startVal)
		if err != nil {
			return 0, 0, err
		}
		start = clamp(normalizeIndex(idx, length), length)
	}
	end := length
	if endVal != nil {
		idx, err := asIntIndex(endVal)
		if err != nil {
			return 0, 0, err
		}
		end = clamp(normalizeIndex(idx, length), length)
	}
	if end < start {
		end = start
	}
	return start, end, nil
}

func clamp(idx, length int) int {
	if idx < 0 {
		return 0
	}
	if idx > length {
		return length
	}
	return idx
}
