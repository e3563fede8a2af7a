package sigma

import (
	"encoding/base64"
	"strings"
	"unicode/utf16"
)

// ModKind tags each token that can appear after `|` in a field key.
type ModKind int

const (
	ModNone ModKind = iota
	// value transforms
	ModBase64
	ModBase64Offset
	ModUTF16
	ModUTF16LE
	ModUTF16BE
	ModWide
	ModWindash
	// match kinds
	ModContains
	ModStartswith
	ModEndswith
	ModRe
	ModCidr
	ModGt
	ModGte
	ModLt
	ModLte
	ModExists
	ModFieldref
	// case folding
	ModCased
	// aggregator
	ModAll
)

var modifierTokens = map[string]ModKind{
	"base64":       ModBase64,
	"base64offset": ModBase64Offset,
	"utf16":        ModUTF16,
	"utf16le":      ModUTF16LE,
	"utf16be":      ModUTF16BE,
	"wide":         ModWide,
	"windash":      ModWindash,
	"contains":     ModContains,
	"startswith":   ModStartswith,
	"endswith":     ModEndswith,
	"re":           ModRe,
	"cidr":         ModCidr,
	"gt":           ModGt,
	"gte":          ModGte,
	"lt":           ModLt,
	"lte":          ModLte,
	"exists":       ModExists,
	"fieldref":     ModFieldref,
	"cased":        ModCased,
	"all":          ModAll,
}

func isValueTransform(k ModKind) bool {
	switch k {
	case ModBase64, ModBase64Offset, ModUTF16, ModUTF16LE, ModUTF16BE, ModWide, ModWindash:
		return true
	default:
		return false
	}
}

func isMatchKind(k ModKind) bool {
	switch k {
	case ModContains, ModStartswith, ModEndswith, ModRe, ModCidr, ModGt, ModGte, ModLt, ModLte, ModExists, ModFieldref:
		return true
	default:
		return false
	}
}

// requiresScalarNeedle reports match kinds that are inherently
// boolean/scalar and therefore reject `all` aggregation over a list of
// themselves (§4.1: "`all` may not coexist with kinds that are inherently
// boolean non-list").
func requiresScalarNeedle(k ModKind) bool {
	switch k {
	case ModExists, ModGt, ModGte, ModLt, ModLte:
		return true
	default:
		return false
	}
}

// ModifierChain is the parsed, order-preserving, validated sequence of
// modifiers declared on one field key (everything after the first `|`).
type ModifierChain struct {
	Field         string // the raw field path text (before `|`)
	Transforms    []ModKind
	MatchKind     ModKind // ModNone means default equality
	Cased         bool
	Aggregator    Aggregator
	AggregatorSet bool // true if `all` was explicit, for `exists:false` rejection check
}

// Aggregator controls how a FieldMatcher combines per-needle results.
type Aggregator int

const (
	AggAny Aggregator = iota
	AggAll
)

// ParseModifierChain splits `key|mod|mod...` and validates modifier
// compatibility per §4.1. It does not resolve needle types yet — that
// happens once the declared value is known (compileFieldMatcher).
func ParseModifierChain(key string) (ModifierChain, error) {
	parts := strings.Split(key, "|")
	field := parts[0]
	chain := ModifierChain{Field: field, Aggregator: AggAny}

	var matchKindSeen ModKind
	var matchKindToken string

	for _, tok := range parts[1:] {
		kind, ok := modifierTokens[tok]
		if !ok {
			return chain, &UnknownModifierError{Token: tok, Field: field}
		}

		switch {
		case isValueTransform(kind):
			chain.Transforms = append(chain.Transforms, kind)
		case isMatchKind(kind):
			if matchKindSeen != ModNone {
				return chain, &IncompatibleModifiersError{Field: field, A: matchKindToken, B: tok}
			}
			matchKindSeen = kind
			matchKindToken = tok
			chain.MatchKind = kind
		case kind == ModCased:
			chain.Cased = true
		case kind == ModAll:
			chain.Aggregator = AggAll
			chain.AggregatorSet = true
		}
	}

	if err := validateChain(chain, matchKindToken); err != nil {
		return chain, err
	}

	return chain, nil
}

func validateChain(chain ModifierChain, matchKindToken string) error {
	field := chain.Field

	if chain.AggregatorSet && requiresScalarNeedle(chain.MatchKind) {
		return &IncompatibleModifiersError{Field: field, A: "all", B: matchKindToken}
	}

	if chain.MatchKind == ModCidr {
		for _, t := range chain.Transforms {
			_ = t
		}
		// cidr incompatible with contains/startswith/endswith/re/numeric —
		// those can't coexist anyway (only one match kind allowed), so the
		// only remaining incompatibility to check is value transforms.
	}

	if chain.MatchKind == ModFieldref {
		for range chain.Transforms {
			return &IncompatibleModifiersError{Field: field, A: "fieldref", B: "value-transform"}
		}
	}

	if chain.MatchKind == ModCidr && len(chain.Transforms) > 0 {
		return &IncompatibleModifiersError{Field: field, A: "cidr", B: "value-transform"}
	}

	return nil
}

// --- needle transforms -----------------------------------------------

// applyTransforms runs the chain's value transforms left-to-right over the
// declared string needles, possibly expanding cardinality (§4.1).
func applyTransforms(field string, transforms []ModKind, needles []string) ([]string, error) {
	cur := needles
	for _, t := range transforms {
		var err error
		cur, err = applyTransform(field, t, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func applyTransform(field string, t ModKind, needles []string) ([]string, error) {
	switch t {
	case ModBase64:
		out := make([]string, len(needles))
		for i, n := range needles {
			out[i] = base64.StdEncoding.EncodeToString([]byte(n))
		}
		return out, nil
	case ModBase64Offset:
		var out []string
		for _, n := range needles {
			variants, err := base64OffsetVariants(n)
			if err != nil {
				return nil, &InvalidBase64Error{Field: field, Text: n}
			}
			out = append(out, variants...)
		}
		return out, nil
	case ModUTF16LE:
		out := make([]string, len(needles))
		for i, n := range needles {
			out[i] = string(utf16LEBytes(n))
		}
		return out, nil
	case ModUTF16BE:
		out := make([]string, len(needles))
		for i, n := range needles {
			out[i] = string(utf16BEBytes(n))
		}
		return out, nil
	case ModUTF16, ModWide:
		var out []string
		for _, n := range needles {
			out = append(out, string(utf16LEBytes(n)), string(utf16BEBytes(n)))
		}
		return out, nil
	case ModWindash:
		var out []string
		for _, n := range needles {
			out = append(out, windashVariants(n)...)
		}
		return out, nil
	default:
		return needles, nil
	}
}

// base64OffsetVariants expands one needle into the three needles
// corresponding to the three byte-alignment offsets of embedded base64,
// trimming the leading/trailing characters that shift ambiguously at each
// offset (§4.1).
func base64OffsetVariants(s string) ([]string, error) {
	raw := []byte(s)
	variants := make([]string, 0, 3)
	for offset := 0; offset < 3; offset++ {
		padded := make([]byte, 0, offset+len(raw))
		for i := 0; i < offset; i++ {
			padded = append(padded, 'A')
		}
		padded = append(padded, raw...)
		encoded := base64.StdEncoding.EncodeToString(padded)

		// Trim the characters that the leading padding bytes contaminate,
		// and the trailing partial character plus its `=` padding, which
		// depend on whatever bytes follow the needle in the encoded text.
		trimStart := (offset*4 + 2) / 3
		trimEnd := len(encoded)
		switch len(padded) % 3 {
		case 1:
			trimEnd -= 3
		case 2:
			trimEnd -= 2
		}
		if trimStart > trimEnd {
			trimStart = trimEnd
		}
		encoded = encoded[trimStart:trimEnd]
		variants = append(variants, encoded)
	}
	return variants, nil
}

func utf16LEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func utf16BEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

// windashDashes are the characters whose positions windash expands: only
// the ASCII hyphen-minus.
var windashDashes = []rune{'-'}

// windashVariants computes the cross-product of swapping `-` for each of
// `/`, `–`, `—` at every occurrence. A needle without `-` is unchanged.
func windashVariants(s string) []string {
	positions := dashPositions(s)
	if len(positions) == 0 {
		return []string{s}
	}

	replacements := []rune{'-', '/', '–', '—'}
	total := 1
	for range positions {
		total *= len(replacements)
	}

	seen := map[string]bool{}
	var out []string
	runes := []rune(s)
	for combo := 0; combo < total; combo++ {
		variant := make([]rune, len(runes))
		copy(variant, runes)
		n := combo
		for _, pos := range positions {
			r := replacements[n%len(replacements)]
			n /= len(replacements)
			variant[pos] = r
		}
		text := string(variant)
		if !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	return out
}

func dashPositions(s string) []int {
	runes := []rune(s)
	var positions []int
	for i, r := range runes {
		for _, d := range windashDashes {
			if r == d {
				positions = append(positions, i)
				break
			}
		}
	}
	return positions
}
