package sigma

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/gzhole/sigma/internal/taxonomy"
	"gopkg.in/yaml.v3"
)

// reservedSelectionNames are selection names a detection block may not use
// (§4.5).
var reservedSelectionNames = map[string]bool{
	"condition": true,
	"timeframe": true,
}

// Logsource is the rule's opaque `logsource:` block. Most Sigma rules use
// the category/product/service triple; anything else stays reachable via
// Raw.
type Logsource struct {
	raw *OrderedMap
}

func (l Logsource) field(name string) string {
	if l.raw == nil {
		return ""
	}
	v, ok := l.raw.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.String()
	return s
}

func (l Logsource) Category() string { return l.field("category") }
func (l Logsource) Product() string  { return l.field("product") }
func (l Logsource) Service() string  { return l.field("service") }

// Raw exposes the full opaque logsource map for fields beyond the common
// triple.
func (l Logsource) Raw() *OrderedMap { return l.raw }

// Metadata holds the rule fields that are opaque to evaluation (§3: "Rule
// ... metadata") but that a complete rule object still exposes —
// supplementing the distilled spec per SPEC_FULL.md §4.
type Metadata struct {
	ID             string
	Status         string
	Description    string
	Author         string
	Level          string
	References     []string
	Tags           []string
	FalsePositives []string
	// TagWarnings lists tags that don't match the recognized `attack.*`
	// taxonomy shape; this never blocks a build (§4.5 builder errors don't
	// include unrecognized tags).
	TagWarnings []string
}

// Rule is the root compiled object: selections, condition, and metadata,
// immutable after construction (§3).
type Rule struct {
	title      string
	logsource  Logsource
	selections map[string]Selection
	selOrder   []string
	condition  *ConditionExpr
	metadata   Metadata
}

func (r *Rule) Title() string        { return r.title }
func (r *Rule) Logsource() *Logsource { return &r.logsource }
func (r *Rule) Metadata() Metadata   { return r.metadata }

// SelectionNames returns the rule's selection names in declaration order.
func (r *Rule) SelectionNames() []string {
	out := make([]string, len(r.selOrder))
	copy(out, r.selOrder)
	return out
}

// RuleFromYAML parses Sigma-rule YAML text into a compiled Rule (§6).
func RuleFromYAML(text []byte) (*Rule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, &InvalidYAMLError{Reason: err.Error()}
	}
	v, err := valueFromYAMLNode(&doc)
	if err != nil {
		return nil, &InvalidYAMLError{Reason: err.Error()}
	}
	return buildRule(v)
}

// RuleFromJSON parses a Sigma rule expressed as JSON (an optional
// capability per §6) into a compiled Rule. Numbers follow the same
// int64-vs-float64 rule as event JSON decoding.
func RuleFromJSON(text []byte) (*Rule, error) {
	dec := json.NewDecoder(strings.NewReader(string(text)))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, &InvalidJSONError{Reason: err.Error()}
	}
	return buildRule(ValueFromAny(generic))
}

func buildRule(doc Value) (*Rule, error) {
	top, ok := doc.MapValue()
	if !ok {
		return nil, &InvalidSelectionShapeError{Name: "<document>"}
	}

	titleVal, ok := top.Get("title")
	if !ok {
		return nil, &MissingFieldError{Name: "title"}
	}
	title, _ := titleVal.String()

	detectionVal, ok := top.Get("detection")
	if !ok {
		return nil, &MissingFieldError{Name: "detection"}
	}
	detection, ok := detectionVal.MapValue()
	if !ok {
		return nil, &InvalidSelectionShapeError{Name: "detection"}
	}

	conditionVal, ok := detection.Get("condition")
	if !ok {
		return nil, &MissingFieldError{Name: "condition"}
	}
	conditionText, _ := conditionVal.String()

	rule := &Rule{
		title:      title,
		selections: map[string]Selection{},
	}

	for _, name := range detection.Keys() {
		if name == "condition" {
			continue
		}
		if reservedSelectionNames[name] {
			return nil, &ReservedNameError{Name: name}
		}
		v, _ := detection.Get(name)
		sel, err := buildSelection(name, v)
		if err != nil {
			return nil, err
		}
		rule.selections[name] = sel
		rule.selOrder = append(rule.selOrder, name)
	}

	if len(rule.selections) == 0 {
		return nil, &MissingFieldError{Name: "detection (no selections defined)"}
	}

	cond, err := ParseCondition(conditionText)
	if err != nil {
		return nil, err
	}
	if err := validateCondition(cond, rule); err != nil {
		return nil, err
	}
	rule.condition = cond

	if logsourceVal, ok := top.Get("logsource"); ok {
		if om, ok := logsourceVal.MapValue(); ok {
			rule.logsource = Logsource{raw: om}
		}
	}

	rule.metadata = buildMetadata(top)

	return rule, nil
}

func buildMetadata(top *OrderedMap) Metadata {
	m := Metadata{}
	m.ID = stringField(top, "id")
	m.Status = stringField(top, "status")
	m.Description = stringField(top, "description")
	m.Author = stringField(top, "author")
	m.Level = stringField(top, "level")
	m.References = stringListField(top, "references")
	m.Tags = stringListField(top, "tags")
	m.FalsePositives = stringListField(top, "falsepositives")
	m.TagWarnings = taxonomy.Validate(m.Tags)
	return m
}

func stringField(m *OrderedMap, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.String()
	return s
}

func stringListField(m *OrderedMap, key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	seq, ok := v.Sequence()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		if s, ok := item.String(); ok {
			out = append(out, s)
		}
	}
	return out
}

// --- condition tree validation (§4.5) -----------------------------------

func validateCondition(expr *ConditionExpr, rule *Rule) error {
	switch expr.op {
	case opSelRef:
		if _, ok := rule.selections[expr.selName]; !ok {
			return &UnknownSelectionError{Name: expr.selName}
		}
	case opSelGlob:
		if len(matchingSelections(rule, expr.selGlob)) == 0 {
			return &EmptyGlobSetError{Pattern: expr.globText}
		}
	case opQuant:
		if err := validateQuantifierSet(expr.quant, rule); err != nil {
			return err
		}
	case opNot:
		return validateCondition(expr.left, rule)
	case opAnd, opOr:
		if err := validateCondition(expr.left, rule); err != nil {
			return err
		}
		return validateCondition(expr.right, rule)
	}
	return nil
}

func validateQuantifierSet(q quantifier, rule *Rule) error {
	if q.them {
		return nil
	}
	if q.g != nil {
		if len(matchingSelections(rule, q.g)) == 0 {
			return &EmptyGlobSetError{Pattern: q.gText}
		}
		return nil
	}
	if _, ok := rule.selections[q.name]; !ok {
		return &UnknownSelectionError{Name: q.name}
	}
	return nil
}

func matchingSelections(rule *Rule, g interface{ Match(string) bool }) []string {
	var out []string
	for _, name := range rule.selOrder {
		if g.Match(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
