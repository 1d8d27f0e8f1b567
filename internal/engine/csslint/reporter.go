package csslint

import "sort"

const (
	levelWarning = "warning"
	levelError   = "error"
)

type message struct {
	Type     string
	Line     int
	Col      int
	Message  string
	Evidence string
	Rule     string
	Rollup   bool
}

// reporter collects the messages of a single rule.
type reporter struct {
	sheet *Stylesheet
	spec  RuleSpec
	level string
	out   *[]message
}

type checkFunc func(sheet *Stylesheet, r *reporter)

func (r *reporter) report(text string, pos Position) {
	*r.out = append(*r.out, message{
		Type:     r.level,
		Line:     pos.Line,
		Col:      pos.Col,
		Message:  text,
		Evidence: r.sheet.evidence(pos.Line),
		Rule:     r.spec.ID,
	})
}

// rollup reports a whole-sheet finding that has no position.
func (r *reporter) rollup(text string) {
	*r.out = append(*r.out, message{
		Type:    r.level,
		Message: text,
		Rule:    r.spec.ID,
		Rollup:  true,
	})
}

// sortMessages orders by position, rollups last.
func sortMessages(msgs []message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		if a.Rollup != b.Rollup {
			return !a.Rollup
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// record converts a message into the result object shape. Rollup messages
// carry no line or col.
func (m message) record() map[string]any {
	rec := map[string]any{
		"type":    m.Type,
		"message": m.Message,
		"rule":    m.Rule,
	}
	if m.Rollup {
		rec["rollup"] = true
		return rec
	}
	rec["line"] = m.Line
	rec["col"] = m.Col
	rec["evidence"] = m.Evidence
	return rec
}
