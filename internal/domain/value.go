// Package domain holds the data model shared by every layer of the rule
// engine: values, facts, condition trees, rules, tokens and activations.
package domain

import (
	"fmt"
	"sort"
	"time"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindTime
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged variant every fact field and literal is expressed in.
// Cross-tag comparisons are deliberately restrictive (§3): equality yields
// false, ordering yields a TypeError.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	t    time.Time
	arr  []Value
	obj  map[string]Value
	keys []string // declared field order, display-only
}

func IntValue(v int64) Value    { return Value{kind: KindInt, i: v} }
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }
func BoolValue(v bool) Value    { return Value{kind: KindBool, b: v} }
func StringValue(v string) Value { return Value{kind: KindString, s: v} }
func TimeValue(v time.Time) Value { return Value{kind: KindTime, t: v} }

func ArrayValue(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// NewObject builds an object Value from an ordered list of (name, value)
// pairs, preserving that order for display per §3.
func NewObject(fields ...Field) Value {
	obj := make(map[string]Value, len(fields))
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, exists := obj[f.Name]; !exists {
			keys = append(keys, f.Name)
		}
		obj[f.Name] = f.Value
	}
	return Value{kind: KindObject, obj: obj, keys: keys}
}

// Field is a single named entry used to build an object Value.
type Field struct {
	Name  string
	Value Value
}

// ObjectFromMap builds an object Value from a plain map, ordering fields
// lexically since a map has no declared order of its own.
func ObjectFromMap(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp, keys: keys}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsTime() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Keys returns the declared field order of an object Value.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.keys
}

// Field looks up a direct field of an object Value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	fv, ok := v.obj[name]
	return fv, ok
}

// WithField returns a copy of v with field name set to fv, appending it to
// the declared key order if it is new. v must be an object (or zero Value,
// treated as an empty object).
func (v Value) WithField(name string, fv Value) Value {
	obj := make(map[string]Value, len(v.obj)+1)
	keys := make([]string, len(v.keys), len(v.keys)+1)
	copy(keys, v.keys)
	for k, val := range v.obj {
		obj[k] = val
	}
	if _, exists := obj[name]; !exists {
		keys = append(keys, name)
	}
	obj[name] = fv
	return Value{kind: KindObject, obj: obj, keys: keys}
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat }

// Equal implements the equality-predicate semantics of §3: cross-tag
// comparisons (other than int/float promotion) are simply false, never an
// error.
func (v Value) Equal(other Value) bool {
	if isNumeric(v.kind) && isNumeric(other.kind) {
		af, _ := v.AsFloat()
		bf, _ := other.AsFloat()
		return af == bf
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindTime:
		return v.t.Equal(other.t)
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, val := range v.obj {
			ov, ok := other.obj[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare implements the ordering-predicate semantics of §3: cross-tag
// comparisons (other than int/float promotion) return a TypeError.
func (v Value) Compare(other Value) (int, error) {
	if isNumeric(v.kind) && isNumeric(other.kind) {
		af, _ := v.AsFloat()
		bf, _ := other.AsFloat()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if v.kind != other.kind {
		return 0, typeErrorf("cannot order %s against %s", v.kind, other.kind)
	}
	switch v.kind {
	case KindString:
		switch {
		case v.s < other.s:
			return -1, nil
		case v.s > other.s:
			return 1, nil
		default:
			return 0, nil
		}
	case KindTime:
		switch {
		case v.t.Before(other.t):
			return -1, nil
		case v.t.After(other.t):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, typeErrorf("%s values are not orderable", v.kind)
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.s
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindObject:
		return fmt.Sprintf("%v", v.obj)
	default:
		return "<invalid>"
	}
}

// Native converts a Value to a plain Go value, for handing to expr-lang
// environments or JSON encoders.
func (v Value) Native() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindTime:
		return v.t
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Native()
		}
		return out
	default:
		return nil
	}
}

// FromNative converts a plain Go value (as produced by expr-lang, JSON
// decoding, or caller code) into a Value.
func FromNative(n any) Value {
	switch t := n.(type) {
	case Value:
		return t
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case bool:
		return BoolValue(t)
	case string:
		return StringValue(t)
	case time.Time:
		return TimeValue(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromNative(e)
		}
		return ArrayValue(items)
	case []Value:
		return ArrayValue(t)
	case map[string]any:
		return ObjectFromMap(fromNativeMap(t))
	case map[string]Value:
		return ObjectFromMap(t)
	case nil:
		return Value{}
	default:
		return StringValue(fmt.Sprintf("%v", t))
	}
}

func fromNativeMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromNative(v)
	}
	return out
}
