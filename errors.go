package sigma

import "fmt"

// Build-time error kinds, per §7. Each is a distinct type (not a sentinel
// value) so callers can type-switch/errors.As on the kind they care about,
// while every one still satisfies plain `error` the way the rest of this
// module (and the teacher gateway's error handling) expects.

// InvalidYAMLError wraps a failure from the external YAML decoder.
type InvalidYAMLError struct {
	Reason string
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("invalid yaml: %s", e.Reason)
}

// InvalidJSONError wraps a failure from the external JSON decoder.
type InvalidJSONError struct {
	Reason string
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid json: %s", e.Reason)
}

// MissingFieldError reports a required rule section that was absent.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Name)
}

// UnknownModifierError names the unrecognized pipe-suffix token.
type UnknownModifierError struct {
	Token string
	Field string
}

func (e *UnknownModifierError) Error() string {
	return fmt.Sprintf("field %q: unknown modifier %q", e.Field, e.Token)
}

// IncompatibleModifiersError names the two modifiers that can't coexist.
type IncompatibleModifiersError struct {
	Field string
	A, B  string
}

func (e *IncompatibleModifiersError) Error() string {
	return fmt.Sprintf("field %q: modifier %q is incompatible with %q", e.Field, e.A, e.B)
}

// RequiresListNeedleError reports a modifier that rejects a scalar needle.
// No builder path returns it: `all` combined with a scalar-only match kind
// (exists, gt/gte/lt/lte) is reported as IncompatibleModifiersError.
type RequiresListNeedleError struct {
	Field    string
	Modifier string
}

func (e *RequiresListNeedleError) Error() string {
	return fmt.Sprintf("field %q: modifier %q requires a list needle", e.Field, e.Modifier)
}

// InvalidRegexError reports a needle that failed to compile as a regex.
type InvalidRegexError struct {
	Field   string
	Pattern string
	Reason  string
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("field %q: invalid regex %q: %s", e.Field, e.Pattern, e.Reason)
}

// InvalidCIDRError reports a needle that failed to parse as a CIDR block.
type InvalidCIDRError struct {
	Field string
	Text  string
}

func (e *InvalidCIDRError) Error() string {
	return fmt.Sprintf("field %q: invalid CIDR block %q", e.Field, e.Text)
}

// InvalidBase64Error reports a needle that could not be interpreted under
// the requested base64 transform.
type InvalidBase64Error struct {
	Field string
	Text  string
}

func (e *InvalidBase64Error) Error() string {
	return fmt.Sprintf("field %q: invalid base64 input %q", e.Field, e.Text)
}

// ConditionParseError reports a syntax error in the condition string, with
// a byte offset into the condition text.
type ConditionParseError struct {
	Position int
	Reason   string
}

func (e *ConditionParseError) Error() string {
	return fmt.Sprintf("condition parse error at position %d: %s", e.Position, e.Reason)
}

// UnknownSelectionError names a condition identifier that doesn't match
// any declared selection.
type UnknownSelectionError struct {
	Name string
}

func (e *UnknownSelectionError) Error() string {
	return fmt.Sprintf("unknown selection: %s", e.Name)
}

// EmptyGlobSetError reports a quantifier/selection glob that matched zero
// declared selections.
type EmptyGlobSetError struct {
	Pattern string
}

func (e *EmptyGlobSetError) Error() string {
	return fmt.Sprintf("glob pattern %q matches no selections", e.Pattern)
}

// TypeMismatchError reports a modifier that mandates a needle type the
// declared value doesn't satisfy, caught at build time.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: expected %s needle, got %s", e.Field, e.Expected, e.Actual)
}

// ReservedNameError reports a selection name colliding with a reserved
// word (`condition`, `timeframe`).
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("selection name %q is reserved", e.Name)
}

// InvalidSelectionShapeError reports a selection whose entries are
// neither a map nor a sequence of maps.
type InvalidSelectionShapeError struct {
	Name string
}

func (e *InvalidSelectionShapeError) Error() string {
	return fmt.Sprintf("selection %q must be a map or a sequence of maps", e.Name)
}
