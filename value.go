package sigma

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags the scalar (or container) shape a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the tagged scalar (or container) type every event field and
// every compiled needle is expressed in. Equality is strict across tags
// except for numeric cross-tag comparisons, which hold only when the
// exact numeric value is representable identically in both tags.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	seq  []Value
	m    *OrderedMap
}

// OrderedMap preserves Sigma's map-of-maps key order, which fixes the
// declaration order of a rule's selections (the order `them` enumerates).
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

// NewOrderedMap returns an empty, ready-to-use OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]Value{}}
}

// Set inserts or overwrites a key, preserving first-insertion order.
func (m *OrderedMap) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return m.keys
}

// Len reports the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// SortedKeys returns a lexicographically sorted copy of Keys, useful when
// deterministic iteration order matters more than insertion order (e.g.
// glob-expanded selection sets).
func (m *OrderedMap) SortedKeys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	sort.Strings(out)
	return out
}

// Null, Bool, Int, UInt, Float, Str, Seq and Map construct a Value of the
// matching kind.
func Null() Value                  { return Value{kind: KindNull} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func UInt(u uint64) Value          { return Value{kind: KindUint, u: u} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Str(s string) Value           { return Value{kind: KindString, s: s} }
func Seq(vs []Value) Value         { return Value{kind: KindSeq, seq: vs} }
func Map(m *OrderedMap) Value      { return Value{kind: KindMap, m: m} }

// NotPresent is the sentinel returned by field resolution for a missing
// path. It is distinct from Null(): a key that exists with a null value
// is present; a key that doesn't appear at all is not.
func NotPresent() Value { return Value{kind: -1} }

// IsPresent reports whether v is anything other than the NotPresent sentinel.
func (v Value) IsPresent() bool { return v.kind != -1 }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) UInt() (uint64, bool) {
	if v.kind != KindUint {
		return 0, false
	}
	return v.u, true
}

func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) Sequence() ([]Value, bool) {
	if v.kind != KindSeq {
		return nil, false
	}
	return v.seq, true
}

func (v Value) MapValue() (*OrderedMap, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// IsNumeric reports whether v holds one of the three numeric tags.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindUint || v.kind == KindFloat
}

// AsFloat64 converts any numeric tag to a float64 for ordering comparisons.
// Not used for equality (equality demands exact representability).
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindUint:
		return float64(v.u), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal implements Value's strict total equality: Int(42) != Str("42"),
// but Int(5) == UInt(5) == Float(5.0) because each represents the exact
// same number. Sequences and maps compare element-wise / key-wise.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == other.kind
	}
	if v.IsNumeric() && other.IsNumeric() {
		return numericEqual(v, other)
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindSeq:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if v.m.Len() != other.m.Len() {
			return false
		}
		for _, k := range v.m.Keys() {
			a, _ := v.m.Get(k)
			b, ok := other.m.Get(k)
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numericEqual holds when both values represent the identical exact
// number, regardless of which of Int/UInt/Float tag carries it.
func numericEqual(a, b Value) bool {
	// Int vs Int, UInt vs UInt, Float vs Float: direct.
	if a.kind == b.kind {
		switch a.kind {
		case KindInt:
			return a.i == b.i
		case KindUint:
			return a.u == b.u
		case KindFloat:
			return a.f == b.f
		}
	}
	// Cross-tag: compare via the widest exact representation available.
	// Int<->UInt: only equal if both are representable as the same
	// non-negative integer.
	if a.kind == KindInt && b.kind == KindUint {
		return a.i >= 0 && uint64(a.i) == b.u
	}
	if a.kind == KindUint && b.kind == KindInt {
		return b.i >= 0 && uint64(b.i) == a.u
	}
	// Anything paired with Float: equal only if the float has no
	// fractional part and matches the integer exactly.
	af, aIsFloat := a.Float()
	bf, bIsFloat := b.Float()
	if aIsFloat && !bIsFloat {
		return floatEqualsInt(af, b)
	}
	if bIsFloat && !aIsFloat {
		return floatEqualsInt(bf, a)
	}
	return false
}

func floatEqualsInt(f float64, other Value) bool {
	if f != float64(int64(f)) && f != float64(uint64(f)) {
		return false
	}
	switch other.kind {
	case KindInt:
		return f == float64(other.i) && int64(f) == other.i
	case KindUint:
		return f == float64(other.u) && uint64(f) == other.u
	}
	return false
}

// Compare implements the partial ordering over numeric tags and strings.
// It returns (result, ok); ok is false when v and other aren't ordered
// against each other (e.g. a string against a number).
func (v Value) Compare(other Value) (int, bool) {
	if v.IsNumeric() && other.IsNumeric() {
		af, _ := v.AsFloat64()
		bf, _ := other.AsFloat64()
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind == KindString && other.kind == KindString {
		switch {
		case v.s < other.s:
			return -1, true
		case v.s > other.s:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// GoString renders a Value for diagnostics (error messages, tracing logs).
func (v Value) GoString() string {
	switch v.kind {
	case -1:
		return "<not-present>"
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindUint:
		return fmt.Sprintf("%d", v.u)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindSeq:
		return fmt.Sprintf("[%d items]", len(v.seq))
	case KindMap:
		return fmt.Sprintf("{%d keys}", v.m.Len())
	default:
		return "?"
	}
}

// ValueFromAny converts a generic decoded tree node (as produced by
// encoding/json with UseNumber, or by a yaml.v3 decode into
// map[string]interface{}) into a Value. Integers representable without
// loss become KindInt; everything else numeric becomes KindFloat, per §6.
func ValueFromAny(node interface{}) Value {
	switch n := node.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(n)
	case string:
		return Str(n)
	case int:
		return Int(int64(n))
	case int64:
		return Int(n)
	case uint64:
		return UInt(n)
	case float64:
		if i := int64(n); float64(i) == n {
			return Int(i)
		}
		return Float(n)
	case float32:
		return ValueFromAny(float64(n))
	case []interface{}:
		out := make([]Value, len(n))
		for i, item := range n {
			out[i] = ValueFromAny(item)
		}
		return Seq(out)
	case map[string]interface{}:
		om := NewOrderedMap()
		for _, k := range sortedKeysOf(n) {
			om.Set(k, ValueFromAny(n[k]))
		}
		return Map(om)
	case *OrderedMap:
		return Map(n)
	default:
		return jsonNumberOrUnknown(node)
	}
}

// jsonNumberOrUnknown handles json.Number (produced by a Decoder with
// UseNumber set) and falls back to Null for anything else unrecognized.
func jsonNumberOrUnknown(node interface{}) Value {
	if num, ok := node.(json.Number); ok {
		if i, err := num.Int64(); err == nil {
			return Int(i)
		}
		if f, err := num.Float64(); err == nil {
			return Float(f)
		}
	}
	return Null()
}

func sortedKeysOf(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
