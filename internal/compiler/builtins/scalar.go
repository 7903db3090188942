package builtins

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

func stringFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("string expects 1 argument, got %d", len(args))
	}
	v, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	return value.ToDisplayString(v), nil
}

func floatFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("float expects 1 argument, got %d", len(args))
	}
	v, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	f, err := value.ToFloat(v)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func regexFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, fmt.Errorf("regex expects 1 or 2 arguments, got %d", len(args))
	}
	patternVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	pattern, ok := patternVal.(string)
	if !ok {
		return nil, fmt.Errorf("regex expects a string pattern, got %s", value.TypeName(patternVal))
	}
	flags := ""
	if len(args) == 2 {
		flagsVal, err := eval(args[1], stack)
		if err != nil {
			return nil, err
		}
		flags, ok = flagsVal.(string)
		if !ok {
			return nil, fmt.Errorf("regex expects a string flag set, got %s", value.TypeName(flagsVal))
		}
	}
	return value.CompileRegex(pattern, flags)
}

func matchFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("match expects 2 arguments, got %d", len(args))
	}
	m, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	sVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	s, ok := sVal.(string)
	if !ok {
		return nil, fmt.Errorf("match expects a string subject, got %s", value.TypeName(sVal))
	}
	return matchValue(m, s)
}

func matchValue(m value.Value, s string) (value.Value, error) {
	switch t := m.(type) {
	case *value.Regex:
		return t.Compiled().MatchString(s), nil
	case string:
		return t == s, nil
	default:
		return nil, fmt.Errorf("match expects a regex or string pattern, got %s", value.TypeName(m))
	}
}

func replaceFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("replace expects 3 arguments, got %d", len(args))
	}
	m, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	rVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	r, ok := rVal.(string)
	if !ok {
		return nil, fmt.Errorf("replace expects a string replacement, got %s", value.TypeName(rVal))
	}
	sVal, err := eval(args[2], stack)
	if err != nil {
		return nil, err
	}
	s, ok := sVal.(string)
	if !ok {
		return nil, fmt.Errorf("replace expects a string subject, got %s", value.TypeName(sVal))
	}

	switch t := m.(type) {
	case string:
		return strings.Replace(s, t, r, 1), nil
	case *value.Regex:
		if t.Global() {
			return t.Compiled().ReplaceAllString(s, goReplacement(r)), nil
		}
		loc := t.Compiled().FindStringIndex(s)
		if loc == nil {
			return s, nil
		}
		return s[:loc[0]] + r + s[loc[1]:], nil
	default:
		return nil, fmt.Errorf("replace expects a regex or string pattern, got %s", value.TypeName(m))
	}
}

// goReplacement rewrites MistQL's literal replacement text (no backreference
// syntax) into Go's ReplaceAllString form, escaping any literal "$" so Go
// does not interpret it as a capture-group reference.
func goReplacement(r string) string {
	return strings.ReplaceAll(r, "$", "$$")
}

func splitFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("split expects 2 arguments, got %d", len(args))
	}
	sepVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	sep, ok := sepVal.(string)
	if !ok {
		return nil, fmt.Errorf("split expects a string separator, got %s", value.TypeName(sepVal))
	}
	sVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	s, ok := sVal.(string)
	if !ok {
		return nil, fmt.Errorf("split expects a string subject, got %s", value.TypeName(sVal))
	}
	parts := strings.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func joinFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("join expects 2 arguments, got %d", len(args))
	}
	sepVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	sep, ok := sepVal.(string)
	if !ok {
		return nil, fmt.Errorf("join expects a string separator, got %s", value.TypeName(sepVal))
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("join", xsVal)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(xs))
	for i, v := range xs {
		parts[i] = value.ToDisplayString(v)
	}
	return strings.Join(parts, sep), nil
}

func summarizeFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("summarize expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("summarize", xsVal)
	if err != nil {
		return nil, err
	}
	nums := make([]float64, len(xs))
	for i, v := range xs {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("summarize expects an array of numbers, got %s", value.TypeName(v))
		}
		nums[i] = f
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("summarize expects a non-empty array")
	}

	sorted := append([]float64{}, nums...)
	sort.Float64s(sorted)

	min := sorted[0]
	max := sorted[len(sorted)-1]
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	mean := sum / float64(len(nums))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	variance := 0.0
	for _, n := range nums {
		d := n - mean
		variance += d * d
	}
	variance /= float64(len(nums))
	stddev := math.Sqrt(variance)

	return value.Object{
		"min":      min,
		"max":      max,
		"mean":     mean,
		"median":   median,
		"variance": variance,
		"stddev":   stddev,
	}, nil
}
