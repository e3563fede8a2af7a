package sigma

import (
	"net/netip"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/gobwas/glob"
)

// needleKind tags how a single compiled needle should be tested against a
// resolved Value.
type needleKind int

const (
	needleLiteral needleKind = iota
	needleGlob
	needleRegex
	needleCIDR
	needleNumeric
	needleBool
	needleFieldPath
)

// processedNeedle is one compiled comparand inside a FieldMatcher.
type processedNeedle struct {
	kind  needleKind
	str   string     // literal / contains-startswith-endswith comparand, lowercased unless cased
	glob  glob.Glob  // compiled when kind == needleGlob
	re    *regexp2.Regexp
	cidr  netip.Prefix
	num   Value // numeric needle for gt/gte/lt/lte and numeric eq
	bl    bool
	field FieldPath
}

// FieldMatcher is the compiled form of one `key|mods: value-or-list` entry.
type FieldMatcher struct {
	Path          FieldPath
	Kind          ModKind // ModNone means default equality
	Needles       []processedNeedle
	Aggregator    Aggregator
	CaseSensitive bool
	Negate        bool
}

// compileFieldMatcher turns a raw field key and its declared YAML value
// into a FieldMatcher, per §4.1/§4.2.
func compileFieldMatcher(key string, declared Value, negate bool) (*FieldMatcher, error) {
	chain, err := ParseModifierChain(key)
	if err != nil {
		return nil, err
	}

	rawNeedles := flattenDeclaredValue(declared)

	fm := &FieldMatcher{
		Path:          NewFieldPath(chain.Field),
		Kind:          chain.MatchKind,
		Aggregator:    chain.Aggregator,
		CaseSensitive: chain.Cased,
		Negate:        negate,
	}

	switch chain.MatchKind {
	case ModFieldref:
		for _, n := range rawNeedles {
			s, ok := n.String()
			if !ok {
				return nil, &TypeMismatchError{Field: chain.Field, Expected: "string (field path)", Actual: n.Kind().String()}
			}
			fm.Needles = append(fm.Needles, processedNeedle{kind: needleFieldPath, field: NewFieldPath(s)})
		}
		return fm, nil

	case ModExists:
		for _, n := range rawNeedles {
			b, ok := n.Bool()
			if !ok {
				return nil, &TypeMismatchError{Field: chain.Field, Expected: "bool", Actual: n.Kind().String()}
			}
			fm.Needles = append(fm.Needles, processedNeedle{kind: needleBool, bl: b})
		}
		return fm, nil

	case ModCidr:
		for _, n := range rawNeedles {
			s, ok := n.String()
			if !ok {
				return nil, &TypeMismatchError{Field: chain.Field, Expected: "string (CIDR)", Actual: n.Kind().String()}
			}
			prefix, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, &InvalidCIDRError{Field: chain.Field, Text: s}
			}
			fm.Needles = append(fm.Needles, processedNeedle{kind: needleCIDR, cidr: prefix})
		}
		return fm, nil

	case ModGt, ModGte, ModLt, ModLte:
		for _, n := range rawNeedles {
			if !n.IsNumeric() {
				return nil, &TypeMismatchError{Field: chain.Field, Expected: "numeric", Actual: n.Kind().String()}
			}
			fm.Needles = append(fm.Needles, processedNeedle{kind: needleNumeric, num: n})
		}
		return fm, nil

	case ModRe:
		strNeedles, err := stringNeedlesWithTransforms(chain, rawNeedles)
		if err != nil {
			return nil, err
		}
		for _, s := range strNeedles {
			re, err := regexp2.Compile(s, regexp2.None)
			if err != nil {
				return nil, &InvalidRegexError{Field: chain.Field, Pattern: s, Reason: err.Error()}
			}
			fm.Needles = append(fm.Needles, processedNeedle{kind: needleRegex, re: re})
		}
		return fm, nil

	case ModContains, ModStartswith, ModEndswith:
		strNeedles, err := stringNeedlesWithTransforms(chain, rawNeedles)
		if err != nil {
			return nil, err
		}
		for _, s := range strNeedles {
			fm.Needles = append(fm.Needles, processedNeedle{kind: needleLiteral, str: foldCase(s, chain.Cased)})
		}
		return fm, nil

	default: // ModNone: default equality, possibly glob
		for _, n := range rawNeedles {
			s, isString := n.String()
			if !isString {
				fm.Needles = append(fm.Needles, processedNeedle{kind: needleNumericOrLiteral(n), num: n})
				continue
			}
			transformed, err := applyTransforms(chain.Field, chain.Transforms, []string{s})
			if err != nil {
				return nil, err
			}
			for _, t := range transformed {
				if len(chain.Transforms) == 0 && hasUnescapedMeta(t) {
					g, err := compileNeedleGlob(foldCase(t, chain.Cased))
					if err != nil {
						return nil, &InvalidRegexError{Field: chain.Field, Pattern: t, Reason: err.Error()}
					}
					fm.Needles = append(fm.Needles, processedNeedle{kind: needleGlob, glob: g})
					continue
				}
				fm.Needles = append(fm.Needles, processedNeedle{kind: needleLiteral, str: foldCase(t, chain.Cased)})
			}
		}
		return fm, nil
	}
}

func needleNumericOrLiteral(n Value) needleKind {
	if n.IsNumeric() || n.Kind() == KindBool || n.Kind() == KindNull {
		return needleNumeric
	}
	return needleLiteral
}

func stringNeedlesWithTransforms(chain ModifierChain, raw []Value) ([]string, error) {
	var strs []string
	for _, n := range raw {
		s, ok := n.String()
		if !ok {
			return nil, &TypeMismatchError{Field: chain.Field, Expected: "string", Actual: n.Kind().String()}
		}
		strs = append(strs, s)
	}
	return applyTransforms(chain.Field, chain.Transforms, strs)
}

func foldCase(s string, cased bool) string {
	if cased {
		return s
	}
	return strings.ToLower(s)
}

// flattenDeclaredValue turns the YAML-declared scalar-or-list into the
// list of raw needle Values the modifier chain compiles from.
func flattenDeclaredValue(v Value) []Value {
	if seq, ok := v.Sequence(); ok {
		return seq
	}
	return []Value{v}
}

// Match evaluates this FieldMatcher against an event (§4.2).
func (fm *FieldMatcher) Match(e Event) bool {
	resolved := fm.Path.Resolve(e)

	if fm.Kind == ModExists {
		present := resolved.IsPresent()
		result := fm.matchNeedlesAggregated(func(n processedNeedle) bool {
			return present == n.bl
		})
		return applyNegateMatch(result, fm.Negate)
	}

	if !resolved.IsPresent() {
		return applyNegateMatch(false, fm.Negate)
	}

	result := fm.matchValue(resolved, e)
	return applyNegateMatch(result, fm.Negate)
}

func applyNegateMatch(matched, negate bool) bool {
	if negate {
		return !matched
	}
	return matched
}

// matchValue handles §4.2 step 4: if V is a sequence, the matcher holds
// when any element satisfies the per-needle test; the outer aggregator
// still governs across needles.
func (fm *FieldMatcher) matchValue(v Value, e Event) bool {
	if elems, ok := v.Sequence(); ok {
		return fm.matchNeedlesAggregated(func(n processedNeedle) bool {
			for _, el := range elems {
				if fm.matchOne(el, n, e) {
					return true
				}
			}
			return false
		})
	}
	return fm.matchNeedlesAggregated(func(n processedNeedle) bool {
		return fm.matchOne(v, n, e)
	})
}

func (fm *FieldMatcher) matchNeedlesAggregated(test func(processedNeedle) bool) bool {
	if len(fm.Needles) == 0 {
		return fm.Aggregator == AggAll // vacuous: "all" of nothing is true, "any" of nothing is false
	}
	switch fm.Aggregator {
	case AggAll:
		for _, n := range fm.Needles {
			if !test(n) {
				return false
			}
		}
		return true
	default:
		for _, n := range fm.Needles {
			if test(n) {
				return true
			}
		}
		return false
	}
}

func (fm *FieldMatcher) matchOne(v Value, n processedNeedle, e Event) bool {
	switch fm.Kind {
	case ModContains:
		s, ok := fm.strOf(v)
		return ok && strings.Contains(s, n.str)
	case ModStartswith:
		s, ok := fm.strOf(v)
		return ok && strings.HasPrefix(s, n.str)
	case ModEndswith:
		s, ok := fm.strOf(v)
		return ok && strings.HasSuffix(s, n.str)
	case ModRe:
		s, ok := v.String()
		if !ok {
			return false
		}
		matched, err := n.re.MatchString(s)
		return err == nil && matched
	case ModCidr:
		s, ok := v.String()
		if !ok {
			return false
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return false
		}
		return n.cidr.Contains(addr)
	case ModGt, ModGte, ModLt, ModLte:
		if !v.IsNumeric() {
			return false
		}
		cmp, ok := v.Compare(n.num)
		if !ok {
			return false
		}
		switch fm.Kind {
		case ModGt:
			return cmp > 0
		case ModGte:
			return cmp >= 0
		case ModLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case ModFieldref:
		other := n.field.Resolve(e)
		if !other.IsPresent() {
			return false
		}
		if elems, ok := other.Sequence(); ok {
			for _, el := range elems {
				if v.Equal(el) {
					return true
				}
			}
			return false
		}
		return v.Equal(other)
	default: // default equality, possibly glob or numeric
		if n.kind == needleGlob {
			s, ok := fm.strOf(v)
			return ok && n.glob.Match(s)
		}
		if n.kind == needleNumeric {
			return v.Equal(n.num)
		}
		s, ok := fm.strOf(v)
		return ok && s == n.str
	}
}

// strOf returns v as a string for comparisons, folding case unless the
// matcher is `cased`.
func (fm *FieldMatcher) strOf(v Value) (string, bool) {
	s, ok := v.String()
	if !ok {
		return "", false
	}
	return foldCase(s, fm.CaseSensitive), true
}
