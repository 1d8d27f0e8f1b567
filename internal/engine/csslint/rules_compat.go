package csslint

import (
	"regexp"
	"strings"
)

var vendorPrefixed = regexp.MustCompile(`^-(webkit|moz|ms|o|epub)-(.+)$`)

func splitVendor(property string) (prefix, base string, ok bool) {
	m := vendorPrefixed.FindStringSubmatch(property)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func checkAdjoiningClasses(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, sel := range rs.Selectors {
			for _, part := range sel.Parts {
				if len(part.Classes) > 1 {
					r.report("Adjoining classes: "+sel.Text, sel.Pos)
				}
			}
		}
	}
}

func checkBoxSizing(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if d.Property == "box-sizing" {
				r.report("The box-sizing property isn't supported in IE6 and IE7.", d.Pos)
			}
		}
	}
}

var compatiblePrefixes = func() map[string][]string {
	groups := map[string][]string{
		"webkit moz": {
			"animation", "animation-delay", "animation-direction", "animation-duration",
			"animation-fill-mode", "animation-iteration-count", "animation-name",
			"animation-play-state", "animation-timing-function", "appearance",
			"border-end", "border-end-color", "border-end-style", "border-end-width",
			"border-start", "border-start-color", "border-start-style", "border-start-width",
			"box-sizing", "column-count", "column-gap", "column-rule", "column-rule-color",
			"column-rule-style", "column-rule-width", "column-width", "margin-end",
			"margin-start", "padding-end", "padding-start", "user-modify", "user-select",
			"box-shadow",
		},
		"webkit moz ms": {
			"box-align", "box-direction", "box-flex", "box-lines", "box-ordinal-group",
			"box-orient", "box-pack",
		},
		"webkit moz o":    {"border-image", "transition", "transition-delay", "transition-duration", "transition-property", "transition-timing-function"},
		"webkit moz ms o": {"transform", "transform-origin"},
		"epub moz":        {"hyphens"},
		"epub ms":         {"word-break", "writing-mode"},
		"webkit ms":       {"line-break", "text-size-adjust"},
		"moz o":           {"tab-size"},
	}
	out := make(map[string][]string)
	for prefixes, props := range groups {
		for _, p := range props {
			out[p] = strings.Fields(prefixes)
		}
	}
	return out
}()

func checkCompatibleVendorPrefixes(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		var order []string
		present := make(map[string][]string)
		first := make(map[string]Position)
		for _, d := range rs.Decls {
			prefix, base, ok := splitVendor(d.Property)
			if !ok {
				continue
			}
			if _, known := compatiblePrefixes[base]; !known {
				continue
			}
			if _, tracked := present[base]; !tracked {
				order = append(order, base)
				first[base] = d.Pos
			}
			present[base] = append(present[base], prefix)
		}
		for _, base := range order {
			have := present[base]
			names := make([]string, len(have))
			for i, p := range have {
				names[i] = "-" + p + "-" + base
			}
			for _, want := range compatiblePrefixes[base] {
				if contains(have, want) {
					continue
				}
				r.report("The property -"+want+"-"+base+" is compatible with "+strings.Join(names, " and ")+" and should be included as well.", first[base])
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var gradientVendors = []struct {
	key   string
	label string
	match func(fn string) bool
}{
	{"oldWebkit", "Old Webkit (Safari 4+, Chrome)", func(fn string) bool { return fn == "-webkit-gradient" }},
	{"webkit", "Webkit (Safari 5+, Chrome)", func(fn string) bool { return isPrefixedGradient(fn, "webkit") }},
	{"moz", "Firefox 3.6+", func(fn string) bool { return isPrefixedGradient(fn, "moz") }},
	{"o", "Opera 11.1+", func(fn string) bool { return isPrefixedGradient(fn, "o") }},
}

func isPrefixedGradient(fn, vendor string) bool {
	return fn == "-"+vendor+"-linear-gradient" || fn == "-"+vendor+"-radial-gradient"
}

func checkGradients(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		found := make(map[string]bool)
		for _, d := range rs.Decls {
			for _, part := range d.Parts {
				if part.Kind != "call_expression" {
					continue
				}
				for _, v := range gradientVendors {
					if v.match(part.Func) {
						found[v.key] = true
					}
				}
			}
		}
		if len(found) == 0 {
			continue
		}
		var missing []string
		for _, v := range gradientVendors {
			if !found[v.key] {
				missing = append(missing, v.label)
			}
		}
		if len(missing) > 0 {
			r.report("Missing vendor-prefixed CSS gradients for "+strings.Join(missing, ", ")+".", rs.Pos)
		}
	}
}

func checkTextIndent(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		var indent *Declaration
		ltr := false
		for i := range rs.Decls {
			d := &rs.Decls[i]
			switch d.Property {
			case "text-indent":
				if len(d.Parts) > 0 && d.Parts[0].isNumeric() && d.Parts[0].Number < -99 {
					indent = d
				}
			case "direction":
				ltr = strings.EqualFold(strings.TrimSpace(d.Value), "ltr")
			}
		}
		if indent != nil && !ltr {
			r.report("Negative text-indent doesn't work well with RTL. If you use text-indent for image replacement explicitly set direction for that item to ltr.", indent.Pos)
		}
	}
}

var legacyVendorProperties = map[string]string{
	"-moz-border-radius-topleft":     "border-top-left-radius",
	"-moz-border-radius-topright":    "border-top-right-radius",
	"-moz-border-radius-bottomleft":  "border-bottom-left-radius",
	"-moz-border-radius-bottomright": "border-bottom-right-radius",
}

// standardFor maps a vendor-prefixed property to its standard name when the
// standard one is a known property.
func standardFor(property string) (string, bool) {
	if std, ok := legacyVendorProperties[property]; ok {
		return std, true
	}
	_, base, ok := splitVendor(property)
	if !ok || !knownProperties[base] {
		return "", false
	}
	return base, true
}

func checkVendorPrefix(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		firstAt := make(map[string]int)
		for i, d := range rs.Decls {
			if _, ok := firstAt[d.Property]; !ok {
				firstAt[d.Property] = i
			}
		}
		reported := make(map[string]bool)
		for i, d := range rs.Decls {
			std, ok := standardFor(d.Property)
			if !ok || reported[d.Property] {
				continue
			}
			reported[d.Property] = true
			stdAt, present := firstAt[std]
			switch {
			case !present:
				r.report("Missing standard property '"+std+"' to go along with '"+d.Property+"'.", d.Pos)
			case stdAt < i:
				r.report("Standard property '"+std+"' should come after vendor-prefixed property '"+d.Property+"'.", rs.Decls[stdAt].Pos)
			}
		}
	}
}

var fallbackColorProperties = map[string]bool{
	"color": true, "background": true, "background-color": true,
	"border": true, "border-color": true,
	"border-top": true, "border-right": true, "border-bottom": true, "border-left": true,
	"border-top-color": true, "border-right-color": true, "border-bottom-color": true, "border-left-color": true,
	"outline": true, "outline-color": true,
}

// colorType classifies a declaration's color: "compat" for hex, rgb() or
// named colors, the upper-cased function for rgba, hsl and hsla, "" when
// there is no color.
func colorType(d Declaration) string {
	for _, part := range d.Parts {
		switch part.Kind {
		case "color_value":
			return "compat"
		case "call_expression":
			switch part.Func {
			case "rgba", "hsl", "hsla":
				return strings.ToUpper(part.Func)
			case "rgb":
				return "compat"
			}
		case "plain_value":
			if namedColors[strings.ToLower(part.Text)] {
				return "compat"
			}
		}
	}
	return ""
}

func checkFallbackColors(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		lastName, lastType := "", ""
		for _, d := range rs.Decls {
			ct := ""
			if fallbackColorProperties[d.Property] {
				ct = colorType(d)
				if ct != "" && ct != "compat" && (lastName != d.Property || lastType != "compat") {
					r.report("Fallback "+d.Property+" (hex or RGB) should precede "+ct+" "+d.Property+".", d.Pos)
				}
			}
			lastName, lastType = d.Property, ct
		}
	}
}

func checkStarPropertyHack(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if d.Hack == "*" {
				r.report("Property with star prefix found.", d.Pos)
			}
		}
	}
}

func checkUnderscorePropertyHack(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		for _, d := range rs.Decls {
			if d.Hack == "_" {
				r.report("Property with underscore prefix found.", d.Pos)
			}
		}
	}
}

func checkBulletproofFontFace(sheet *Stylesheet, r *reporter) {
	for _, rs := range sheet.Rules {
		if rs.AtKeyword != "@font-face" {
			continue
		}
		for _, d := range rs.Decls {
			if d.Property != "src" {
				continue
			}
			if strings.Contains(strings.ToLower(d.Value), "url(") && !strings.Contains(d.Value, "?#iefix") {
				r.report("@font-face declaration doesn't follow the fontspring bulletproof syntax.", d.Pos)
			}
		}
	}
}
