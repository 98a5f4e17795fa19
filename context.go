package hxview

import (
	"math"
	"reflect"
)

// Context maps names to the values expressions are evaluated against.
//
// A Context is never modified once built. With returns a merged copy, so a
// nested compile step can never leak bindings into its parent.
type Context map[string]any

// With returns a new Context holding c's entries overlaid with each of maps
// in order. Later maps win.
func (c Context) With(maps ...map[string]any) Context {
	n := len(c)
	for _, m := range maps {
		n += len(m)
	}
	out := make(Context, n)
	for k, v := range c {
		out[k] = v
	}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Truthy reports whether v counts as true in a condition.
//
// nil, false, numeric zero, NaN and the empty string are false. Everything
// else is true, including empty slices and maps.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// asMap returns v as a string keyed map, or nil if v is not one.
func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case Context:
		return t
	case map[any]any:
		m, _ := normalize(t).(map[string]any)
		return m
	}
	return nil
}

// sequence returns the items of v when v is a slice or array, and nil for
// anything else.
func sequence(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
