package csslint

import (
	"strings"
)

var checks = map[string]checkFunc{
	"errors": checkSyntaxErrors,

	"box-model":                 checkBoxModel,
	"display-property-grouping": checkDisplayPropertyGrouping,
	"duplicate-properties":      checkDuplicateProperties,
	"empty-rules":               checkEmptyRules,
	"known-properties":          checkKnownProperties,

	"adjoining-classes":          checkAdjoiningClasses,
	"box-sizing":                 checkBoxSizing,
	"compatible-vendor-prefixes": checkCompatibleVendorPrefixes,
	"gradients":                  checkGradients,
	"text-indent":                checkTextIndent,
	"vendor-prefix":              checkVendorPrefix,
	"fallback-colors":            checkFallbackColors,
	"star-property-hack":         checkStarPropertyHack,
	"underscore-property-hack":   checkUnderscorePropertyHack,
	"bulletproof-font-face":      checkBulletproofFontFace,

	"font-faces":                  checkFontFaces,
	"import":                      checkImport,
	"regex-selectors":             checkRegexSelectors,
	"universal-selector":          checkUniversalSelector,
	"unqualified-attributes":      checkUnqualifiedAttributes,
	"zero-units":                  checkZeroUnits,
	"overqualified-elements":      checkOverqualifiedElements,
	"shorthand":                   checkShorthand,
	"duplicate-background-images": checkDuplicateBackgroundImages,

	"floats":     checkFloats,
	"font-sizes": checkFontSizes,
	"ids":        checkIDs,
	"important":  checkImportant,

	"outline-none": checkOutlineNone,

	"qualified-headings": checkQualifiedHeadings,
	"unique-headings":    checkUniqueHeadings,
}

func checkSyntaxErrors(sheet *Stylesheet, r *reporter) {
	for _, e := range sheet.Syntax {
		r.report(e.Message, e.Pos)
	}
}

var (
	boxWidthProperties = map[string]bool{
		"border": true, "border-left": true, "border-right": true,
		"padding": true, "padding-left": true, "padding-right": true,
	}
	boxHeightProperties = map[string]bool{
		"border": true, "border-bottom": true, "border-top": true,
		"padding": true, "padding-bottom": true, "padding-top": true,
	}
)

func isZeroValue(d *Declaration) bool {
	v := strings.TrimSpace(d.Value)
	if strings.HasPrefix(v, "0") && !strings.ContainsAny(v, " \t") {
		return true
	}
	return d.Property == "border" && strings.EqualFold(v, "none")
}

func checkBoxModel(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		var width, height *Declaration
		var widthWith, heightWith []string
		boxSizing := false
		for i := range rs.Decls {
			d := &rs.Decls[i]
			switch d.Property {
			case "box-sizing":
				boxSizing = true
				continue
			case "width":
				if !isZeroValue(d) {
					width = d
				}
				continue
			case "height":
				if !isZeroValue(d) {
					height = d
				}
				continue
			}
			if isZeroValue(d) {
				continue
			}
			if boxWidthProperties[d.Property] {
				widthWith = append(widthWith, d.Property)
			}
			if boxHeightProperties[d.Property] {
				heightWith = append(heightWith, d.Property)
			}
		}
		if boxSizing {
			continue
		}
		if width != nil {
			for _, p := range widthWith {
				r.report("Using width with "+p+" can sometimes make elements larger than you expect.", width.Pos)
			}
		}
		if height != nil {
			for _, p := range heightWith {
				r.report("Using height with "+p+" can sometimes make elements larger than you expect.", height.Pos)
			}
		}
	}
}

func checkDisplayPropertyGrouping(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		props := make(map[string]*Declaration)
		for i := range rs.Decls {
			props[rs.Decls[i].Property] = &rs.Decls[i]
		}
		disp, ok := props["display"]
		if !ok {
			continue
		}
		display := strings.ToLower(strings.TrimSpace(disp.Value))

		reportProp := func(name, reason string) {
			d, ok := props[name]
			if !ok {
				return
			}
			if name == "float" && strings.EqualFold(strings.TrimSpace(d.Value), "none") {
				return
			}
			if reason == "" {
				reason = name + " can't be used with display: " + display + "."
			}
			r.report(reason, d.Pos)
		}

		switch {
		case display == "inline":
			for _, name := range []string{"height", "width", "margin", "margin-top", "margin-bottom"} {
				reportProp(name, "")
			}
			reportProp("float", "display:inline has no effect on floated elements (but may be used to fix the IE6 double-margin bug).")
		case display == "block":
			reportProp("vertical-align", "")
		case display == "inline-block":
			reportProp("float", "")
		case strings.HasPrefix(display, "table-"):
			for _, name := range []string{"margin", "margin-left", "margin-right", "margin-top", "margin-bottom", "float"} {
				reportProp(name, "")
			}
		}
	}
}

// checkDuplicateProperties allows a property to repeat back to back with a
// different value, which is the usual fallback pattern.
func checkDuplicateProperties(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		seen := make(map[string]string)
		last := ""
		for _, d := range rs.Decls {
			name := d.Hack + d.Property
			if prev, ok := seen[name]; ok && (last != name || prev == d.Value) {
				r.report("Duplicate property '"+name+"' found.", d.Pos)
			}
			seen[name] = d.Value
			last = name
		}
	}
}

func checkEmptyRules(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		if len(rs.Selectors) == 0 {
			continue
		}
		if len(rs.Decls) == 0 && rs.Nested == 0 {
			r.report("Rule is empty.", rs.Pos)
		}
	}
}

func checkKnownProperties(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if d.Hack != "" || d.Property == "" || strings.HasPrefix(d.Property, "-") {
				continue
			}
			if !knownProperties[d.Property] {
				r.report("Unknown property '"+d.Property+"'.", d.Pos)
			}
		}
	}
}
