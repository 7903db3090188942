package builtins

import (
	"fmt"
	"sort"

	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

func asArray(name string, v value.Value) ([]value.Value, error) {
	arr, ok := v.([]value.Value)
	if !ok {
		return nil, fmt.Errorf("%s expects an array, got %s", name, value.TypeName(v))
	}
	return arr, nil
}

func mapFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("map expects 2 arguments, got %d", len(args))
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("map", xsVal)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(xs))
	for i, item := range xs {
		v, err := eval(args[0], stack.PushContext(item))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func filterFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("filter expects 2 arguments, got %d", len(args))
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("filter", xsVal)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(xs))
	for _, item := range xs {
		v, err := eval(args[0], stack.PushContext(item))
		if err != nil {
			return nil, err
		}
		if value.Truthy(v) {
			out = append(out, item)
		}
	}
	return out, nil
}

func findFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("find expects 2 arguments, got %d", len(args))
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("find", xsVal)
	if err != nil {
		return nil, err
	}
	for _, item := range xs {
		v, err := eval(args[0], stack.PushContext(item))
		if err != nil {
			return nil, err
		}
		if value.Truthy(v) {
			return item, nil
		}
	}
	return nil, nil
}

func reduceFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("reduce expects 3 arguments, got %d", len(args))
	}
	init, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xsVal, err := eval(args[2], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("reduce", xsVal)
	if err != nil {
		return nil, err
	}
	acc := init
	for _, item := range xs {
		pushed := stack.Push(value.NewFrame(map[string]value.Value{"@": []value.Value{acc, item}}))
		v, err := eval(args[0], pushed)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func sortFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sort expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("sort", xsVal)
	if err != nil {
		return nil, err
	}
	out := append([]value.Value{}, xs...)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := value.Compare(out[i], out[j])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

func sortbyFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("sortby expects 2 arguments, got %d", len(args))
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("sortby", xsVal)
	if err != nil {
		return nil, err
	}
	type keyed struct {
		key  value.Value
		item value.Value
	}
	pairs := make([]keyed, len(xs))
	for i, item := range xs {
		k, err := eval(args[0], stack.PushContext(item))
		if err != nil {
			return nil, err
		}
		pairs[i] = keyed{key: k, item: item}
	}
	var sortErr error
	sort.SliceStable(pairs, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := value.Compare(pairs[i].key, pairs[j].key)
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	out := make([]value.Value, len(pairs))
	for i, p := range pairs {
		out[i] = p.item
	}
	return out, nil
}

func reverseFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("reverse expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("reverse", xsVal)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(xs))
	for i, v := range xs {
		out[len(xs)-1-i] = v
	}
	return out, nil
}

func intArg(name string, v value.Value) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s expects a number, got %s", name, value.TypeName(v))
	}
	return int(f), nil
}

func headFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	return takeFn("head", args, stack, eval, true)
}

func tailFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	return takeFn("tail", args, stack, eval, false)
}

func takeFn(name string, args []ast.Node, stack *value.Stack, eval value.EvalFunc, fromStart bool) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
	}
	nVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	n, err := intArg(name, nVal)
	if err != nil {
		return nil, err
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray(name, xsVal)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(xs) {
		n = len(xs)
	}
	if fromStart {
		out := make([]value.Value, n)
		copy(out, xs[:n])
		return out, nil
	}
	out := make([]value.Value, n)
	copy(out, xs[len(xs)-n:])
	return out, nil
}

func firstFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("first expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("first", xsVal)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, nil
	}
	return xs[0], nil
}

func lastFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("last expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("last", xsVal)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, nil
	}
	return xs[len(xs)-1], nil
}

func countFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("count expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("count", xsVal)
	if err != nil {
		return nil, err
	}
	return float64(len(xs)), nil
}

func sumFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sum expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("sum", xsVal)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, v := range xs {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("sum expects an array of numbers, got %s", value.TypeName(v))
		}
		total += f
	}
	return total, nil
}

func flattenFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("flatten expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("flatten", xsVal)
	if err != nil {
		return nil, err
	}
	out := []value.Value{}
	for _, v := range xs {
		inner, ok := v.([]value.Value)
		if !ok {
			return nil, fmt.Errorf("flatten expects every element to be an array, got %s", value.TypeName(v))
		}
		out = append(out, inner...)
	}
	return out, nil
}

func withindicesFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("withindices expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("withindices", xsVal)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(xs))
	for i, v := range xs {
		out[i] = []value.Value{float64(i), v}
	}
	return out, nil
}

func groupbyFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("groupby expects 2 arguments, got %d", len(args))
	}
	xsVal, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("groupby", xsVal)
	if err != nil {
		return nil, err
	}
	groups := value.Object{}
	for _, item := range xs {
		k, err := eval(args[0], stack.PushContext(item))
		if err != nil {
			return nil, err
		}
		key := value.ToDisplayString(k)
		existing, _ := groups[key].([]value.Value)
		groups[key] = append(existing, item)
	}
	return groups, nil
}

func sequenceFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("sequence expects at least 3 arguments, got %d", len(args))
	}
	predicates := args[:len(args)-1]
	xsVal, err := eval(args[len(args)-1], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("sequence", xsVal)
	if err != nil {
		return nil, err
	}

	matched := make([][]int, len(predicates))
	for j, pred := range predicates {
		for i, item := range xs {
			v, err := eval(pred, stack.PushContext(item))
			if err != nil {
				return nil, err
			}
			if value.Truthy(v) {
				matched[j] = append(matched[j], i)
			}
		}
	}

	var results []value.Value
	var walk func(level, prevIdx int, acc []value.Value)
	walk = func(level, prevIdx int, acc []value.Value) {
		if level == len(predicates) {
			out := make([]value.Value, len(acc))
			copy(out, acc)
			results = append(results, out)
			return
		}
		for _, idx := range matched[level] {
			if idx > prevIdx {
				next := make([]value.Value, len(acc), len(acc)+1)
				copy(next, acc)
				next = append(next, xs[idx])
				walk(level+1, idx, next)
			}
		}
	}
	walk(0, -1, nil)
	if results == nil {
		results = []value.Value{}
	}
	return results, nil
}
