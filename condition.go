package sigma

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
)

// QuantKind tags a quantifier's threshold shape.
type QuantKind int

const (
	QuantAll QuantKind = iota
	QuantAtLeast
)

// ConditionExpr is the tree produced by parsing a rule's `condition`
// string (§3, §4.3).
type ConditionExpr struct {
	op       exprOp
	selName  string      // op == opSelRef
	selGlob  glob.Glob   // op == opSelGlob
	globText string      // original pattern text, for error messages
	quant    quantifier  // op == opQuant
	left     *ConditionExpr
	right    *ConditionExpr
}

type exprOp int

const (
	opSelRef exprOp = iota
	opSelGlob
	opQuant
	opNot
	opAnd
	opOr
)

type quantifier struct {
	kind  QuantKind
	n     int // meaningful when kind == QuantAtLeast
	them  bool
	name  string    // single identifier set, when not `them` and not glob
	g     glob.Glob // glob-expanded set, when the set identifier has meta chars
	gText string
}

// --- tokenizer ----------------------------------------------------------

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokAnd
	tokOr
	tokNot
	tokOf
	tokThem
	tokAll
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case isIdentStart(rune(c)) || c == '*':
			start := i
			for i < n && isIdentRune(rune(s[i])) {
				i++
			}
			text := s[start:i]
			toks = append(toks, classifyWord(text, start))
		case unicode.IsDigit(rune(c)):
			start := i
			for i < n && unicode.IsDigit(rune(s[i])) {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: s[start:i], pos: start})
		default:
			return nil, &ConditionParseError{Position: i, Reason: "unexpected character " + strconv.QuoteRune(rune(c))}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: n})
	return toks, nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '*' || r == '?'
}

func classifyWord(text string, pos int) token {
	switch strings.ToLower(text) {
	case "and":
		return token{kind: tokAnd, text: text, pos: pos}
	case "or":
		return token{kind: tokOr, text: text, pos: pos}
	case "not":
		return token{kind: tokNot, text: text, pos: pos}
	case "of":
		return token{kind: tokOf, text: text, pos: pos}
	case "them":
		return token{kind: tokThem, text: text, pos: pos}
	case "all":
		return token{kind: tokAll, text: text, pos: pos}
	default:
		return token{kind: tokIdent, text: text, pos: pos}
	}
}

// --- Pratt parser ---------------------------------------------------------
//
// Binding power, low to high: or < and < not (prefix) < of-phrase < primary.

type conditionParser struct {
	toks []token
	pos  int
}

// ParseCondition parses a rule's condition string into a ConditionExpr,
// per the EBNF in §6 and the quantifier semantics in §4.3.
func ParseCondition(text string) (*ConditionExpr, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 { // just EOF
		return nil, &ConditionParseError{Position: 0, Reason: "empty condition"}
	}
	p := &conditionParser{toks: toks}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, &ConditionParseError{Position: p.cur().pos, Reason: "unexpected trailing token " + p.cur().text}
	}
	return expr, nil
}

func (p *conditionParser) cur() token { return p.toks[p.pos] }

func (p *conditionParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// bindingPower returns the left binding power of infix operators; 0 means
// "not an infix operator here".
func bindingPower(k tokenKind) int {
	switch k {
	case tokOr:
		return 1
	case tokAnd:
		return 2
	default:
		return 0
	}
}

func (p *conditionParser) parseExpr(minBP int) (*ConditionExpr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		bp := bindingPower(p.cur().kind)
		if bp == 0 || bp < minBP {
			break
		}
		opTok := p.advance()
		right, err := p.parseExpr(bp + 1)
		if err != nil {
			return nil, err
		}
		op := opAnd
		if opTok.kind == tokOr {
			op = opOr
		}
		left = &ConditionExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *conditionParser) parsePrefix() (*ConditionExpr, error) {
	if p.cur().kind == tokNot {
		p.advance()
		inner, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		return &ConditionExpr{op: opNot, left: inner}, nil
	}
	return p.parsePrimary()
}

func (p *conditionParser) parsePrimary() (*ConditionExpr, error) {
	t := p.cur()
	switch t.kind {
	case tokLParen:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, &ConditionParseError{Position: p.cur().pos, Reason: "expected closing parenthesis"}
		}
		p.advance()
		return inner, nil

	case tokAll:
		p.advance()
		return p.parseQuantTail(QuantAll, 0)

	case tokNumber:
		p.advance()
		n, _ := strconv.Atoi(t.text)
		return p.parseQuantTail(QuantAtLeast, n)

	case tokIdent:
		p.advance()
		return identExpr(t.text), nil

	default:
		return nil, &ConditionParseError{Position: t.pos, Reason: "expected an identifier, '(', quantifier, or 'not'"}
	}
}

func (p *conditionParser) parseQuantTail(kind QuantKind, n int) (*ConditionExpr, error) {
	if p.cur().kind != tokOf {
		return nil, &ConditionParseError{Position: p.cur().pos, Reason: "expected 'of'"}
	}
	p.advance()

	q := quantifier{kind: kind, n: n}
	switch p.cur().kind {
	case tokThem:
		p.advance()
		q.them = true
	case tokIdent:
		t := p.advance()
		if strings.ContainsAny(t.text, "*?") {
			g, err := compileSelectionGlob(t.text)
			if err != nil {
				return nil, &ConditionParseError{Position: t.pos, Reason: "invalid glob: " + err.Error()}
			}
			q.g = g
			q.gText = t.text
		} else {
			q.name = t.text
		}
	default:
		return nil, &ConditionParseError{Position: p.cur().pos, Reason: "expected an identifier or 'them' after 'of'"}
	}
	return &ConditionExpr{op: opQuant, quant: q}, nil
}

func identExpr(text string) *ConditionExpr {
	if strings.ContainsAny(text, "*?") {
		g, err := compileSelectionGlob(text)
		if err != nil {
			// Invalid glob syntax degenerates to a literal selection
			// reference, which will simply fail to resolve at build time
			// with a clearer UnknownSelectionError.
			return &ConditionExpr{op: opSelRef, selName: text}
		}
		return &ConditionExpr{op: opSelGlob, selGlob: g, globText: text}
	}
	return &ConditionExpr{op: opSelRef, selName: text}
}
