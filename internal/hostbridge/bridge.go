// Package hostbridge adapts host-language Go values to and from the
// MistQL runtime value model: only a value's own enumerable string-keyed
// fields are ever visible, host numeric types collapse to number with
// NaN/±Inf becoming null, and host dates render as their ISO-8601 string.
package hostbridge

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

// Ingest converts an arbitrary host Go value into the runtime value model.
func Ingest(v interface{}) value.Value {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case uuid.UUID:
		return t.String()
	case *uuid.UUID:
		if t == nil {
			return nil
		}
		return t.String()
	case json.RawMessage:
		var decoded interface{}
		if err := json.Unmarshal(t, &decoded); err != nil {
			return nil
		}
		return value.Normalize(decoded)
	}

	rv := reflect.ValueOf(v)
	return ingestReflect(rv)
}

func ingestReflect(rv reflect.Value) value.Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return ingestReflect(rv.Elem())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return value.Normalize(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Type() == reflect.TypeOf(uuid.UUID{}) {
			return rv.Interface().(uuid.UUID).String()
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]value.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = ingestReflect(rv.Index(i))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := value.Object{}
		for _, key := range rv.MapKeys() {
			out[keyString(key)] = ingestReflect(rv.MapIndex(key))
		}
		return out
	case reflect.Struct:
		if rv.Type() == reflect.TypeOf(time.Time{}) {
			return rv.Interface().(time.Time).UTC().Format(time.RFC3339Nano)
		}
		return ingestStruct(rv)
	default:
		return nil
	}
}

// ingestStruct exposes only a struct's own exported fields, honoring a
// "mistql" struct tag for renaming/hiding: the enumerable-own-properties
// rule every host adapter follows.
func ingestStruct(rv reflect.Value) value.Value {
	t := rv.Type()
	out := value.Object{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // unexported
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("mistql"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		out[name] = ingestReflect(rv.Field(i))
	}
	return out
}

func keyString(rv reflect.Value) string {
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	b, err := json.Marshal(rv.Interface())
	if err != nil {
		return ""
	}
	var s string
	if json.Unmarshal(b, &s) == nil {
		return s
	}
	return string(b)
}

// Egress converts a runtime value back into plain Go data (map[string]any,
// []any, float64, string, bool, nil), suitable for json.Marshal or further
// host-side consumption.
func Egress(v value.Value) interface{} {
	switch t := v.(type) {
	case value.Object:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = Egress(e)
		}
		return out
	case []value.Value:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = Egress(e)
		}
		return out
	case *value.Regex:
		return t.Source
	default:
		return t
	}
}
