package sigma

import (
	"strings"

	"github.com/gobwas/glob"
)

// compileNeedleGlob compiles a Sigma default-kind string needle that
// contains unescaped `*` or `?` into a gobwas/glob matcher. Backslash
// escapes a following meta-char into a literal; gobwas/glob has no native
// escape syntax, so an escaped meta-char is emitted as a single-rune
// character class (`[*]`, `[?]`), which gobwas treats as a literal set
// rather than a wildcard. Sigma needles never use character-class syntax
// themselves (§9), so this mapping is unambiguous for them.
func compileNeedleGlob(pattern string) (glob.Glob, error) {
	return glob.Compile(rewriteEscapesToCharClass(pattern))
}

// compileSelectionGlob compiles a selection-name glob pattern (condition
// identifiers and `of X*` quantifier sets). These never carry backslash
// escapes (§4.3's ident grammar has no escape syntax), so the raw pattern
// is used directly.
func compileSelectionGlob(pattern string) (glob.Glob, error) {
	return glob.Compile(pattern)
}

// hasUnescapedMeta reports whether s contains a `*` or `?` that isn't
// preceded by a backslash escape — the trigger for glob-compiling a
// default-kind string needle (§4.2).
func hasUnescapedMeta(s string) bool {
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && (runes[i+1] == '*' || runes[i+1] == '?') {
			i++
			continue
		}
		if runes[i] == '*' || runes[i] == '?' {
			return true
		}
	}
	return false
}

func rewriteEscapesToCharClass(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) && (runes[i+1] == '*' || runes[i+1] == '?') {
			sb.WriteByte('[')
			sb.WriteRune(runes[i+1])
			sb.WriteByte(']')
			i++
			continue
		}
		switch r {
		case '[', ']', '{', '}', ',':
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteByte(']')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
