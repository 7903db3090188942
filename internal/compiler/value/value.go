// Package value implements the MistQL runtime value model: a tagged
// JSON-like value, its equality/ordering/truthiness rules, and the
// scoped variable stack frames are threaded through during evaluation. Both
// concerns live in one package (value.go / stack.go / regex.go) because the
// stack stores values and the value model's function tag needs to close
// over a stack during evaluation; splitting them into two packages would
// require an import cycle.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is any one of MistQL's tagged runtime values: nil (null), bool,
// float64 (number), string, []Value (array), Object (object), *Regex, or
// Callable (function). It is a plain interface{} alias so that values
// decoded by encoding/json can be normalized into it with no wrapper type.
type Value = interface{}

// Object is an ordered-by-convention string-keyed mapping. Go maps have no
// intrinsic order; every enumeration built-in (keys/values/entries/...) sorts
// its keys ascending before iterating.
type Object map[string]Value

// TypeName returns the tag name of v, used in runtime error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []Value:
		return "array"
	case Object:
		return "object"
	case *Regex:
		return "regex"
	case Callable:
		return "function"
	default:
		return fmt.Sprintf("unknown(%T)", v)
	}
}

// Truthy implements the language's truthiness rule: null, false, 0, "", [],
// and {} are falsy; regex and function are always truthy; everything else
// (non-empty containers, nonzero numbers, non-empty strings) is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []Value:
		return len(t) > 0
	case Object:
		return len(t) > 0
	default:
		return true
	}
}

// Equal implements structural, type-strict equality: values of different
// tags are never equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []Value:
		bv, ok := b.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, exists := bv[k]
			if !exists || !Equal(v, other) {
				return false
			}
		}
		return true
	case *Regex:
		bv, ok := b.(*Regex)
		return ok && av.Source == bv.Source && av.Flags == bv.Flags
	case Callable:
		_, ok := b.(Callable)
		return ok && false // distinct function values are never equal to one another
	default:
		return false
	}
}

// Compare orders a and b. Ordering is total only within one of
// {number, boolean (false<true), string (lexicographic by codepoint)}; any
// other pairing, or arrays/objects/regex/function on either side, fails.
func Compare(a, b Value) (int, error) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, fmt.Errorf("cannot compare number with %s", TypeName(b))
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare boolean with %s", TypeName(b))
		}
		return boolRank(av) - boolRank(bv), nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %s", TypeName(b))
		}
		return strings.Compare(av, bv), nil
	default:
		return 0, fmt.Errorf("values of type %s are not comparable", TypeName(a))
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ToDisplayString implements the `string` built-in's canonical
// stringification: primitives render naturally, arrays/objects render as
// JSON with sorted keys, null renders as "null", and a regex renders as its
// source pattern.
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case string:
		return t
	case *Regex:
		return t.Source
	case []Value, Object:
		return toJSON(v)
	case Callable:
		return "<function>"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func toJSON(v Value) string {
	var b strings.Builder
	writeJSON(&b, v)
	return b.String()
}

func writeJSON(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case float64:
		b.WriteString(formatNumber(t))
	case string:
		b.WriteString(strconv.Quote(t))
	case *Regex:
		b.WriteString(strconv.Quote(t.Source))
	case []Value:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSON(b, e)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		keys := SortedKeys(t)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeJSON(b, t[k])
		}
		b.WriteByte('}')
	default:
		b.WriteString(strconv.Quote(fmt.Sprintf("%v", t)))
	}
}

// SortedKeys returns an object's keys in ascending order, the iteration
// order shared by keys/values/entries/mapvalues/filterkeys and friends.
func SortedKeys(o Object) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToFloat implements the `float` built-in's coercion: strings parse (and may
// yield NaN), booleans become 0/1, null becomes 0, arrays/objects fail.
func ToFloat(v Value) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case nil:
		return 0, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot cast %s to float", TypeName(v))
	}
}

// Normalize recursively converts values produced by encoding/json (or
// assembled by hand with map[string]interface{}/[]interface{}) into the
// runtime value model, wrapping every map[string]interface{} as an Object.
// NaN and ±Inf floats collapse to null, the same rule the host bridge
// applies to any numeric ingress path.
func Normalize(v interface{}) Value {
	switch t := v.(type) {
	case map[string]interface{}:
		o := make(Object, len(t))
		for k, e := range t {
			o[k] = Normalize(e)
		}
		return o
	case Object:
		o := make(Object, len(t))
		for k, e := range t {
			o[k] = Normalize(e)
		}
		return o
	case []interface{}:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = Normalize(e)
		}
		return arr
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		return Normalize(float64(t))
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}
