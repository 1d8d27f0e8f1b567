package csslint

import (
	"fmt"
	"strings"
)

func checkFontFaces(sheet *Stylesheet, r *reporter) {
	count := 0
	for _, rs := range sheet.Rules {
		if rs.AtKeyword == "@font-face" {
			count++
		}
	}
	if count > r.spec.limit(5) {
		r.rollup(fmt.Sprintf("Too many @font-face declarations (%d).", count))
	}
}

func checkImport(sheet *Stylesheet, r *reporter) {
	for _, pos := range sheet.Imports {
		r.report("@import prevents parallel downloads, use <link> instead.", pos)
	}
}

func checkRegexSelectors(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			for _, part := range sel.Parts {
				for _, attr := range part.Attributes {
					switch attr.Operator {
					case "~=", "|=", "^=", "$=", "*=":
						r.report("Attribute selectors with "+attr.Operator+" are slow!", sel.Pos)
					}
				}
			}
		}
	}
}

func lastPart(sel Selector) (Part, bool) {
	if len(sel.Parts) == 0 {
		return Part{}, false
	}
	return sel.Parts[len(sel.Parts)-1], true
}

func checkUniversalSelector(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			if part, ok := lastPart(sel); ok && part.Universal {
				r.report("The universal selector (*) is known to be slow.", sel.Pos)
			}
		}
	}
}

func checkUnqualifiedAttributes(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			part, ok := lastPart(sel)
			if !ok || (part.Element != "" && !part.Universal) {
				continue
			}
			if len(part.Classes) > 0 || len(part.IDs) > 0 {
				continue
			}
			for range part.Attributes {
				r.report("Unqualified attribute selectors are known to be slow.", sel.Pos)
			}
		}
	}
}

var timeUnits = map[string]bool{"s": true, "ms": true}

func checkZeroUnits(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			for _, part := range d.Parts {
				if part.isNumeric() && part.Number == 0 && part.Unit != "" && !timeUnits[part.Unit] {
					r.report("Values of 0 shouldn't have units specified.", part.Pos)
				}
			}
		}
	}
}

func (p Part) String() string {
	var b strings.Builder
	if p.Universal {
		b.WriteString("*")
	}
	b.WriteString(p.Element)
	for _, id := range p.IDs {
		b.WriteString("#" + id)
	}
	for _, c := range p.Classes {
		b.WriteString("." + c)
	}
	for _, a := range p.Attributes {
		b.WriteString("[" + a.Name + a.Operator + a.Value + "]")
	}
	for _, ps := range p.Pseudos {
		if strings.HasPrefix(ps, "::") {
			b.WriteString(ps)
		} else {
			b.WriteString(":" + ps)
		}
	}
	return b.String()
}

func qualifiedElement(p Part) bool {
	return p.Element != "" && p.Element != "&" && !p.Universal
}

func checkOverqualifiedElements(sheet *Stylesheet, r *reporter) {
	type use struct {
		part  Part
		class string
	}
	var order []string
	classes := make(map[string][]use)
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			for _, part := range sel.Parts {
				if qualifiedElement(part) {
					for _, id := range part.IDs {
						r.report("Element ("+part.String()+") is overqualified, just use #"+id+" without element name.", part.Pos)
					}
				}
				for _, c := range part.Classes {
					if _, ok := classes[c]; !ok {
						order = append(order, c)
					}
					classes[c] = append(classes[c], use{part: part, class: c})
				}
			}
		}
	}
	for _, c := range order {
		uses := classes[c]
		if len(uses) == 1 && qualifiedElement(uses[0].part) {
			r.report("Element ("+uses[0].part.String()+") is overqualified, just use ."+c+" without element name.", uses[0].part.Pos)
		}
	}
}

var shorthandGroups = []struct {
	shorthand string
	longhands []string
}{
	{"margin", []string{"margin-top", "margin-bottom", "margin-left", "margin-right"}},
	{"padding", []string{"padding-top", "padding-bottom", "padding-left", "padding-right"}},
}

func checkShorthand(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		present := make(map[string]bool)
		for _, d := range rs.Decls {
			present[d.Property] = true
		}
		for _, g := range shorthandGroups {
			all := true
			for _, p := range g.longhands {
				all = all && present[p]
			}
			if all {
				r.report("The properties "+strings.Join(g.longhands, ", ")+" can be replaced by "+g.shorthand+".", rs.Pos)
			}
		}
	}
}

func urlOf(part ValuePart) (string, bool) {
	if part.Kind != "call_expression" || part.Func != "url" {
		return "", false
	}
	return strings.Trim(part.Args, `"' `), true
}

func checkDuplicateBackgroundImages(sheet *Stylesheet, r *reporter) {
	seen := make(map[string]Position)
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if !strings.Contains(d.Property, "background") {
				continue
			}
			for _, part := range d.Parts {
				uri, ok := urlOf(part)
				if !ok {
					continue
				}
				if first, dup := seen[uri]; dup {
					r.report(fmt.Sprintf("Background image '%s' was used multiple times, first declared at line %d, col %d.", uri, first.Line, first.Col), d.Pos)
					continue
				}
				seen[uri] = d.Pos
			}
		}
	}
}
