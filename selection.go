package sigma

// Clause is one top-level element of a Selection: either a conjunction of
// field matchers (the entry was a map) or a disjunction of such
// conjunctions (the entry was a sequence of maps).
type Clause struct {
	and []*FieldMatcher // non-nil for an And clause
	or  []Clause        // non-nil for an Or clause
}

func andClause(matchers []*FieldMatcher) Clause { return Clause{and: matchers} }
func orClause(clauses []Clause) Clause          { return Clause{or: clauses} }

// Eval evaluates the clause against an event: an And clause holds when
// every matcher holds; an Or clause holds when any nested clause holds.
func (c Clause) Eval(e Event) bool {
	if c.or != nil {
		for _, sub := range c.or {
			if sub.Eval(e) {
				return true
			}
		}
		return false
	}
	for _, m := range c.and {
		if !m.Match(e) {
			return false
		}
	}
	return true
}

// Selection is a named conjunction of clauses: it matches when *all*
// top-level clauses match (§3 — map-of-maps is conjunctive; a sequence at
// the top level is disjunctive at that level, but a selection declared as
// a single map or a single sequence still has exactly one top-level
// clause).
type Selection struct {
	Name    string
	Clauses []Clause
}

// Eval evaluates every clause, short-circuiting on the first failure.
func (s Selection) Eval(e Event) bool {
	for _, c := range s.Clauses {
		if !c.Eval(e) {
			return false
		}
	}
	return true
}

// buildSelection compiles one `detection.<name>` entry (a map or a
// sequence of maps) into a Selection.
func buildSelection(name string, declared Value) (Selection, error) {
	sel := Selection{Name: name}

	if m, ok := declared.MapValue(); ok {
		clause, err := buildAndClause(name, m)
		if err != nil {
			return sel, err
		}
		sel.Clauses = []Clause{clause}
		return sel, nil
	}

	if seq, ok := declared.Sequence(); ok {
		var orClauses []Clause
		for _, item := range seq {
			m, ok := item.MapValue()
			if !ok {
				return sel, &InvalidSelectionShapeError{Name: name}
			}
			clause, err := buildAndClause(name, m)
			if err != nil {
				return sel, err
			}
			orClauses = append(orClauses, clause)
		}
		sel.Clauses = []Clause{orClause(orClauses)}
		return sel, nil
	}

	return sel, &InvalidSelectionShapeError{Name: name}
}

func buildAndClause(selName string, m *OrderedMap) (Clause, error) {
	var matchers []*FieldMatcher
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		fm, err := compileFieldMatcher(key, v, false)
		if err != nil {
			return Clause{}, err
		}
		matchers = append(matchers, fm)
	}
	return andClause(matchers), nil
}
