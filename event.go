package sigma

import (
	"encoding/json"
	"strings"
)

// Event is an immutable tree of Values keyed by strings, built once from a
// JSON object (or a generic map) and consulted read-only by every field
// matcher during evaluation. Events are never mutated or retained beyond
// the evaluation call that receives them (§5).
type Event struct {
	root *OrderedMap
}

// EventFromMap builds an Event directly from a generic decoded tree, the
// shape produced by a YAML or JSON decode into map[string]interface{}.
func EventFromMap(m map[string]interface{}) Event {
	v := ValueFromAny(m)
	om, _ := v.MapValue()
	if om == nil {
		om = NewOrderedMap()
	}
	return Event{root: om}
}

// EventFromJSON decodes a JSON object into an Event. Numbers are
// interpreted as 64-bit integers when representable without loss,
// otherwise as doubles, per §6.
func EventFromJSON(text []byte) (Event, error) {
	dec := json.NewDecoder(strings.NewReader(string(text)))
	dec.UseNumber()

	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return Event{}, &InvalidJSONError{Reason: err.Error()}
	}

	top, ok := generic.(map[string]interface{})
	if !ok {
		return Event{}, &InvalidJSONError{Reason: "top-level JSON value must be an object"}
	}

	return EventFromMap(top), nil
}

// Root exposes the event's underlying map value, for diagnostics.
func (e Event) Root() *OrderedMap {
	return e.root
}

// FieldPath is a sequence of string segments, one per `.`-delimited
// component of a field key. Resolution prefers the literal dotted key at
// each step before descending by the next segment (§3).
type FieldPath struct {
	raw      string
	segments []string
}

// NewFieldPath splits a dotted field key into its segments, retaining the
// original text for literal-key lookups.
func NewFieldPath(raw string) FieldPath {
	var segments []string
	if raw != "" {
		segments = strings.Split(raw, ".")
	}
	return FieldPath{raw: raw, segments: segments}
}

func (p FieldPath) String() string { return p.raw }

// Resolve looks p up against the event, applying "literal dotted key beats
// nested-path descent" at every step: before splitting off the next
// segment and descending, the *remaining* dotted sub-path is tried as one
// literal key against the current map. A missing intermediate key yields
// NotPresent(), distinct from an explicit null.
func (p FieldPath) Resolve(e Event) Value {
	if p.raw == "" || e.root == nil {
		return NotPresent()
	}
	return resolveInMap(p.segments, e.root)
}

// ResolveIn resolves this path against an arbitrary map-shaped Value with
// the same literal-key-first rules as Resolve. A non-map Value yields
// NotPresent(). (The fieldref modifier resolves through Resolve.)
func (p FieldPath) ResolveIn(v Value) Value {
	om, ok := v.MapValue()
	if !ok {
		return NotPresent()
	}
	return resolveInMap(p.segments, om)
}

func resolveInMap(segments []string, m *OrderedMap) Value {
	if len(segments) == 0 {
		return NotPresent()
	}

	// Literal-key-wins: try the full remaining dotted path as one key.
	remaining := strings.Join(segments, ".")
	if v, ok := m.Get(remaining); ok {
		return v
	}

	// Fall back to descending by the first segment only when more than
	// one segment remains — a single segment with no literal match is
	// simply absent.
	if len(segments) == 1 {
		return NotPresent()
	}

	head, ok := m.Get(segments[0])
	if !ok {
		return NotPresent()
	}
	nested, ok := head.MapValue()
	if !ok {
		return NotPresent()
	}
	return resolveInMap(segments[1:], nested)
}
