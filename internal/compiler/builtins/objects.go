package builtins

import (
	"fmt"

	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

func asObject(name string, v value.Value) (value.Object, error) {
	o, ok := v.(value.Object)
	if !ok {
		return nil, fmt.Errorf("%s expects an object, got %s", name, value.TypeName(v))
	}
	return o, nil
}

func keysFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("keys expects 1 argument, got %d", len(args))
	}
	ov, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("keys", ov)
	if err != nil {
		return nil, err
	}
	keys := value.SortedKeys(o)
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out, nil
}

func valuesFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("values expects 1 argument, got %d", len(args))
	}
	ov, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("values", ov)
	if err != nil {
		return nil, err
	}
	keys := value.SortedKeys(o)
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = o[k]
	}
	return out, nil
}

func entriesFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("entries expects 1 argument, got %d", len(args))
	}
	ov, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("entries", ov)
	if err != nil {
		return nil, err
	}
	keys := value.SortedKeys(o)
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = []value.Value{k, o[k]}
	}
	return out, nil
}

func fromentriesFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("fromentries expects 1 argument, got %d", len(args))
	}
	xsVal, err := eval(args[0], stack)
	if err != nil {
		return nil, err
	}
	xs, err := asArray("fromentries", xsVal)
	if err != nil {
		return nil, err
	}
	out := value.Object{}
	for _, e := range xs {
		pair, ok := e.([]value.Value)
		if !ok {
			return nil, fmt.Errorf("fromentries expects an array of [key, value] pairs, got %s", value.TypeName(e))
		}
		var k, v value.Value
		if len(pair) > 0 {
			k = pair[0]
		} else {
			k = "null"
		}
		if len(pair) > 1 {
			v = pair[1]
		}
		out[value.ToDisplayString(k)] = v
	}
	return out, nil
}

func mapvaluesFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("mapvalues expects 2 arguments, got %d", len(args))
	}
	ov, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("mapvalues", ov)
	if err != nil {
		return nil, err
	}
	out := value.Object{}
	for _, k := range value.SortedKeys(o) {
		v, err := eval(args[0], stack.PushContext(o[k]))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func filtervaluesFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("filtervalues expects 2 arguments, got %d", len(args))
	}
	ov, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("filtervalues", ov)
	if err != nil {
		return nil, err
	}
	out := value.Object{}
	for _, k := range value.SortedKeys(o) {
		v := o[k]
		keep, err := eval(args[0], stack.PushContext(v))
		if err != nil {
			return nil, err
		}
		if value.Truthy(keep) {
			out[k] = v
		}
	}
	return out, nil
}

func mapkeysFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("mapkeys expects 2 arguments, got %d", len(args))
	}
	ov, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("mapkeys", ov)
	if err != nil {
		return nil, err
	}
	out := value.Object{}
	for _, k := range value.SortedKeys(o) {
		newKey, err := eval(args[0], stack.PushContext(k))
		if err != nil {
			return nil, err
		}
		out[value.ToDisplayString(newKey)] = o[k]
	}
	return out, nil
}

func filterkeysFn(args []ast.Node, stack *value.Stack, eval value.EvalFunc) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("filterkeys expects 2 arguments, got %d", len(args))
	}
	ov, err := eval(args[1], stack)
	if err != nil {
		return nil, err
	}
	o, err := asObject("filterkeys", ov)
	if err != nil {
		return nil, err
	}
	out := value.Object{}
	for _, k := range value.SortedKeys(o) {
		keep, err := eval(args[0], stack.PushContext(k))
		if err != nil {
			return nil, err
		}
		if value.Truthy(keep) {
			out[k] = o[k]
		}
	}
	return out, nil
}
