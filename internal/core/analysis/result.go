package analysis

import "math"

// Issue is one finding in a style sheet.
type Issue struct {
	Line     int
	Column   int
	Message  string
	Category string
}

// Result is the ordered list of issues for one analysis.
type Result []Issue

// extractIssues keeps records carrying line, col and message; the rest are
// counted as dropped.
func extractIssues(raw map[string]any) (Result, int) {
	var records []map[string]any
	switch msgs := raw["messages"].(type) {
	case []map[string]any:
		records = msgs
	case []any:
		for _, m := range msgs {
			rec, _ := m.(map[string]any)
			records = append(records, rec)
		}
	}

	issues := make(Result, 0, len(records))
	dropped := 0
	for _, rec := range records {
		line, okLine := toInt(rec["line"])
		col, okCol := toInt(rec["col"])
		msg, okMsg := rec["message"].(string)
		if !okLine || !okCol || !okMsg {
			dropped++
			continue
		}
		category, _ := rec["rule"].(string)
		if category == "" {
			category, _ = rec["type"].(string)
		}
		issues = append(issues, Issue{Line: line, Column: col, Message: msg, Category: category})
	}
	return issues, dropped
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
