package sigma

import "github.com/gzhole/sigma/internal/auditlog"

// evaluator walks a Rule's condition tree against one Event, memoizing each
// referenced selection's result on first reference (§4.4): a selection with
// an expensive field matcher (a large needle set, a regex) only evaluates
// once per event no matter how many places the condition references it.
type evaluator struct {
	rule  *Rule
	event Event
	memo  map[string]bool
}

// IsMatch reports whether the rule's condition holds against e.
func (r *Rule) IsMatch(e Event) bool {
	ev := &evaluator{rule: r, event: e, memo: make(map[string]bool, len(r.selections))}
	return ev.eval(r.condition)
}

// IsMatchTraced evaluates the rule exactly like IsMatch, then writes a
// TraceEvent recording every selection that was evaluated and the final
// verdict. Selections skipped by short-circuiting are not recorded.
// This is strictly an optional debugging surface: the logger is never
// consulted during evaluation, so a nil-safe no-op logger isn't needed —
// callers that don't want tracing simply call IsMatch.
func (r *Rule) IsMatchTraced(e Event, logger *auditlog.Logger) bool {
	ev := &evaluator{rule: r, event: e, memo: make(map[string]bool, len(r.selections))}
	matched := ev.eval(r.condition)

	if logger != nil {
		selections := make(map[string]bool, len(ev.memo))
		for k, v := range ev.memo {
			selections[k] = v
		}
		_ = logger.Log(auditlog.TraceEvent{
			RuleTitle:  r.title,
			Matched:    matched,
			Selections: selections,
		})
	}
	return matched
}

func (ev *evaluator) selectionResult(name string) bool {
	if v, ok := ev.memo[name]; ok {
		return v
	}
	sel := ev.rule.selections[name]
	result := sel.Eval(ev.event)
	ev.memo[name] = result
	return result
}

func (ev *evaluator) eval(expr *ConditionExpr) bool {
	switch expr.op {
	case opSelRef:
		return ev.selectionResult(expr.selName)

	case opSelGlob:
		for _, name := range matchingSelections(ev.rule, expr.selGlob) {
			if ev.selectionResult(name) {
				return true
			}
		}
		return false

	case opNot:
		return !ev.eval(expr.left)

	case opAnd:
		return ev.eval(expr.left) && ev.eval(expr.right)

	case opOr:
		return ev.eval(expr.left) || ev.eval(expr.right)

	case opQuant:
		return ev.evalQuantifier(expr.quant)
	}
	return false
}

// evalQuantifier evaluates `all of ...` / `N of ...`, short-circuiting once
// the outcome is decided: `all` stops at the first false, `N of` stops once
// N truths have been seen.
func (ev *evaluator) evalQuantifier(q quantifier) bool {
	names := ev.quantifierSet(q)
	if len(names) == 0 {
		return false
	}

	switch q.kind {
	case QuantAll:
		for _, name := range names {
			if !ev.selectionResult(name) {
				return false
			}
		}
		return true

	default: // QuantAtLeast
		need := q.n
		count := 0
		for _, name := range names {
			if ev.selectionResult(name) {
				count++
				if count >= need {
					return true
				}
			}
		}
		return count >= need
	}
}

func (ev *evaluator) quantifierSet(q quantifier) []string {
	if q.them {
		return ev.rule.selOrder
	}
	if q.g != nil {
		return matchingSelections(ev.rule, q.g)
	}
	return []string{q.name}
}
