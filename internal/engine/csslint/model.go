package csslint

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Position is a 1-based line and column.
type Position struct {
	Line int
	Col  int
}

// Stylesheet is the flattened view of one parsed source that rule checks
// inspect. Rule sets nested in media, supports or other blocks are listed in
// document order alongside top-level ones.
type Stylesheet struct {
	Rules   []*RuleSet
	Imports []Position
	Syntax  []SyntaxError

	lines []string
}

// SyntaxError is an ERROR or MISSING node found by the parser.
type SyntaxError struct {
	Message string
	Pos     Position
}

// RuleSet is a block of declarations. Selector rules carry Selectors; page,
// font-face and keyframe blocks carry AtKeyword instead.
type RuleSet struct {
	Pos       Position
	AtKeyword string
	Selectors []Selector
	Decls     []Declaration
	Nested    int
}

// Selector is one comma-separated selector of a rule set.
type Selector struct {
	Text  string
	Pos   Position
	Parts []Part
}

// Part is a compound selector: an optional element name plus modifiers.
// Combinator holds the combinator that precedes it ("" for the first part,
// " " for descendant).
type Part struct {
	Element    string
	Universal  bool
	Classes    []string
	IDs        []string
	Attributes []Attribute
	Pseudos    []string
	Combinator string
	Pos        Position
}

func (p Part) hasModifiers() bool {
	return len(p.Classes)+len(p.IDs)+len(p.Attributes)+len(p.Pseudos) > 0
}

type Attribute struct {
	Name     string
	Operator string
	Value    string
}

// Declaration is one property: value pair. Property is lowercased with any
// star or underscore hack prefix moved into Hack.
type Declaration struct {
	Property  string
	Hack      string
	Value     string
	Parts     []ValuePart
	Important bool
	Pos       Position
}

// ValuePart is one top-level value token. Kind is the grammar node kind
// (integer_value, float_value, color_value, plain_value, string_value,
// call_expression, ...).
type ValuePart struct {
	Kind   string
	Text   string
	Number float64
	Unit   string
	Func   string
	Args   string
	Pos    Position
}

func (v ValuePart) isNumeric() bool {
	return v.Kind == "integer_value" || v.Kind == "float_value"
}

func (s *Stylesheet) evidence(line int) string {
	if line < 1 || line > len(s.lines) {
		return ""
	}
	return strings.TrimRight(s.lines[line-1], "\r")
}

type modelBuilder struct {
	src   []byte
	sheet *Stylesheet
}

func buildStylesheet(src []byte, root *sitter.Node) *Stylesheet {
	b := &modelBuilder{
		src:   src,
		sheet: &Stylesheet{lines: strings.Split(string(src), "\n")},
	}
	b.collectSyntaxErrors(root)
	b.visitChildren(root)
	return b.sheet
}

func (b *modelBuilder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(b.src[n.StartByte():n.EndByte()])
}

func position(n *sitter.Node) Position {
	p := n.StartPosition()
	return Position{Line: int(p.Row) + 1, Col: int(p.Column) + 1}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	count := n.NamedChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (b *modelBuilder) collectSyntaxErrors(n *sitter.Node) {
	if n == nil {
		return
	}
	if n.IsMissing() {
		b.sheet.Syntax = append(b.sheet.Syntax, SyntaxError{
			Message: "Expected " + quoteToken(n.Kind()) + ".",
			Pos:     position(n),
		})
		return
	}
	if n.IsError() {
		raw := strings.TrimSpace(b.text(n))
		if raw == "*" {
			// Star hack prefix; reported by its own rule.
			return
		}
		b.sheet.Syntax = append(b.sheet.Syntax, SyntaxError{
			Message: "Unexpected token " + quoteToken(firstToken(raw)) + ".",
			Pos:     position(n),
		})
		return
	}
	if !n.HasError() {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		b.collectSyntaxErrors(n.Child(i))
	}
}

func quoteToken(tok string) string {
	return "'" + tok + "'"
}

func firstToken(raw string) string {
	if raw == "" {
		return "EOF"
	}
	if i := strings.IndexAny(raw, " \t\r\n"); i > 0 {
		raw = raw[:i]
	}
	if len(raw) > 20 {
		raw = raw[:20]
	}
	return raw
}

func (b *modelBuilder) visitChildren(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		b.visit(c)
	}
}

func (b *modelBuilder) visit(n *sitter.Node) {
	switch n.Kind() {
	case "rule_set":
		b.ruleSet(n)
	case "import_statement":
		b.sheet.Imports = append(b.sheet.Imports, position(n))
	case "at_rule":
		b.atRule(n)
	case "keyframes_statement":
		b.keyframes(n)
	case "media_statement", "supports_statement", "scope_statement", "ERROR":
		b.visitChildren(n)
	}
}

func (b *modelBuilder) ruleSet(n *sitter.Node) {
	rs := &RuleSet{Pos: position(n)}
	if sels := childOfKind(n, "selectors"); sels != nil {
		for _, s := range namedChildren(sels) {
			if s.Kind() == "comment" {
				continue
			}
			rs.Selectors = append(rs.Selectors, Selector{
				Text:  strings.TrimSpace(b.text(s)),
				Pos:   position(s),
				Parts: b.selectorParts(s),
			})
		}
	}
	b.sheet.Rules = append(b.sheet.Rules, rs)
	if blk := childOfKind(n, "block"); blk != nil {
		b.block(blk, rs)
	}
}

func (b *modelBuilder) atRule(n *sitter.Node) {
	blk := childOfKind(n, "block")
	if blk == nil {
		return
	}
	rs := &RuleSet{
		Pos:       position(n),
		AtKeyword: strings.ToLower(b.text(childOfKind(n, "at_keyword"))),
	}
	b.sheet.Rules = append(b.sheet.Rules, rs)
	b.block(blk, rs)
}

func (b *modelBuilder) keyframes(n *sitter.Node) {
	list := childOfKind(n, "keyframe_block_list")
	if list == nil {
		return
	}
	for _, kb := range namedChildren(list) {
		blk := childOfKind(kb, "block")
		if blk == nil {
			continue
		}
		rs := &RuleSet{Pos: position(kb), AtKeyword: "@keyframes"}
		b.sheet.Rules = append(b.sheet.Rules, rs)
		b.block(blk, rs)
	}
}

func (b *modelBuilder) block(n *sitter.Node, rs *RuleSet) {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "declaration":
			rs.Decls = append(rs.Decls, b.declaration(c))
		case "comment":
		default:
			rs.Nested++
			b.visit(c)
		}
	}
}

func (b *modelBuilder) declaration(n *sitter.Node) Declaration {
	d := Declaration{Pos: position(n)}
	var values []string
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "property_name":
			raw := b.text(c)
			start := c.StartByte()
			if start > 0 && b.src[start-1] == '*' {
				d.Hack = "*"
				d.Pos = Position{Line: d.Pos.Line, Col: max(d.Pos.Col-1, 1)}
			}
			if strings.HasPrefix(raw, "_") {
				d.Hack = "_"
				raw = raw[1:]
			}
			d.Property = strings.ToLower(raw)
		case "important":
			d.Important = true
		case "comment":
		default:
			values = append(values, b.text(c))
			d.Parts = append(d.Parts, b.valuePart(c))
		}
	}
	d.Value = strings.Join(values, " ")
	return d
}

func (b *modelBuilder) valuePart(n *sitter.Node) ValuePart {
	v := ValuePart{Kind: n.Kind(), Text: b.text(n), Pos: position(n)}
	switch v.Kind {
	case "integer_value", "float_value":
		num := v.Text
		if unit := childOfKind(n, "unit"); unit != nil {
			v.Unit = strings.ToLower(b.text(unit))
			num = strings.TrimSuffix(num, b.text(unit))
		}
		v.Number, _ = strconv.ParseFloat(num, 64)
	case "call_expression":
		v.Func = strings.ToLower(b.text(childOfKind(n, "function_name")))
		args := b.text(childOfKind(n, "arguments"))
		v.Args = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(args, "("), ")"))
	}
	return v
}

func isCombinator(kind string) (string, bool) {
	switch kind {
	case "descendant_selector":
		return " ", true
	case "child_selector":
		return ">", true
	case "sibling_selector":
		return "~", true
	case "adjacent_sibling_selector":
		return "+", true
	}
	return "", false
}

// selectorParts flattens the left-recursive selector tree into compound parts.
func (b *modelBuilder) selectorParts(n *sitter.Node) []Part {
	if comb, ok := isCombinator(n.Kind()); ok {
		kids := namedChildren(n)
		if len(kids) == 0 {
			return nil
		}
		left := b.selectorParts(kids[0])
		right := b.selectorParts(kids[len(kids)-1])
		if len(kids) > 1 && len(right) > 0 {
			right[0].Combinator = comb
			return append(left, right...)
		}
		return left
	}

	switch n.Kind() {
	case "tag_name":
		return []Part{{Element: strings.ToLower(b.text(n)), Pos: position(n)}}
	case "universal_selector":
		return []Part{{Universal: true, Pos: position(n)}}
	case "nesting_selector":
		return []Part{{Element: "&", Pos: position(n)}}
	case "class_selector", "id_selector", "attribute_selector",
		"pseudo_class_selector", "pseudo_element_selector":
		return b.compound(n)
	}
	return []Part{{Pos: position(n)}}
}

func (b *modelBuilder) compound(n *sitter.Node) []Part {
	var parts []Part
	operatorSeen := false
	var attr Attribute
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() {
			switch b.text(c) {
			case ".", "#", "[", ":", "::":
				operatorSeen = true
			case "=", "~=", "^=", "|=", "*=", "$=":
				attr.Operator = b.text(c)
			}
			continue
		}
		if !operatorSeen {
			parts = b.selectorParts(c)
			continue
		}
		if n.Kind() != "attribute_selector" {
			continue
		}
		if c.Kind() == "attribute_name" {
			attr.Name = strings.ToLower(b.text(c))
		} else if attr.Operator != "" {
			attr.Value = b.text(c)
		}
	}
	if len(parts) == 0 {
		parts = []Part{{Pos: position(n)}}
	}
	last := &parts[len(parts)-1]
	switch n.Kind() {
	case "class_selector":
		last.Classes = append(last.Classes, b.text(childOfKind(n, "class_name")))
	case "id_selector":
		last.IDs = append(last.IDs, b.text(childOfKind(n, "id_name")))
	case "attribute_selector":
		last.Attributes = append(last.Attributes, attr)
	case "pseudo_class_selector":
		last.Pseudos = append(last.Pseudos, strings.ToLower(b.text(childOfKind(n, "class_name"))))
	case "pseudo_element_selector":
		last.Pseudos = append(last.Pseudos, "::"+strings.ToLower(b.lastTagName(n)))
	}
	return parts
}

func (b *modelBuilder) lastTagName(n *sitter.Node) string {
	name := ""
	for _, c := range namedChildren(n) {
		if c.Kind() == "tag_name" {
			name = b.text(c)
		}
	}
	return name
}
