package csslint

import (
	"fmt"
	"strings"
)

func countDecls(sheet *Stylesheet, match func(Declaration) bool) int {
	n := 0
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if match(d) {
				n++
			}
		}
	}
	return n
}

func checkFloats(sheet *Stylesheet, r *reporter) {
	count := countDecls(sheet, func(d Declaration) bool {
		return d.Property == "float" && !strings.EqualFold(strings.TrimSpace(d.Value), "none")
	})
	if count >= r.spec.limit(10) {
		r.rollup(fmt.Sprintf("Too many floats (%d), you're probably using them for layout. Consider using a grid system instead.", count))
	}
}

func checkFontSizes(sheet *Stylesheet, r *reporter) {
	count := countDecls(sheet, func(d Declaration) bool { return d.Property == "font-size" })
	if count >= r.spec.limit(10) {
		r.rollup(fmt.Sprintf("Too many font-size declarations (%d), abstraction needed.", count))
	}
}

func checkIDs(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			ids := 0
			for _, part := range sel.Parts {
				ids += len(part.IDs)
			}
			switch {
			case ids == 1:
				r.report("Don't use IDs in selectors.", sel.Pos)
			case ids > 1:
				r.report(fmt.Sprintf("%d IDs in the selector, really?", ids), sel.Pos)
			}
		}
	}
}

func checkImportant(sheet *Stylesheet, r *reporter) {
	count := 0
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if d.Important {
				count++
				r.report("Use of !important", d.Pos)
			}
		}
	}
	if count >= r.spec.limit(10) {
		r.rollup(fmt.Sprintf("Too many !important declarations (%d), try to use less than 10 to avoid specificity issues.", count))
	}
}

func checkOutlineNone(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		if len(rs.Selectors) == 0 {
			continue
		}
		hidden := false
		for _, d := range rs.Decls {
			v := strings.TrimSpace(d.Value)
			if d.Property == "outline" && (strings.EqualFold(v, "none") || v == "0") {
				hidden = true
			}
		}
		if !hidden {
			continue
		}
		focus := false
		for _, sel := range rs.Selectors {
			if strings.Contains(strings.ToLower(sel.Text), ":focus") {
				focus = true
			}
		}
		switch {
		case !focus:
			r.report("Outlines should only be modified using :focus.", rs.Pos)
		case len(rs.Decls) == 1:
			r.report("Outlines shouldn't be hidden unless other visual changes are made.", rs.Pos)
		}
	}
}

func isHeading(element string) bool {
	return len(element) == 2 && element[0] == 'h' && element[1] >= '1' && element[1] <= '6'
}

func checkQualifiedHeadings(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			for i, part := range sel.Parts {
				if i > 0 && isHeading(part.Element) {
					r.report("Heading ("+part.Element+") should not be qualified.", part.Pos)
				}
			}
		}
	}
}

func checkUniqueHeadings(sheet *Stylesheet, r *reporter) {
	defined := make(map[string]int)
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			part, ok := lastPart(sel)
			if !ok || !isHeading(part.Element) || len(part.Pseudos) > 0 {
				continue
			}
			defined[part.Element]++
			if defined[part.Element] > 1 {
				r.report("Heading ("+part.Element+") has already been defined.", part.Pos)
			}
		}
	}
	repeated := 0
	for _, n := range defined {
		if n > 1 {
			repeated++
		}
	}
	if repeated > 0 {
		r.rollup(fmt.Sprintf("You have %d identical heading definitions.", repeated))
	}
}
