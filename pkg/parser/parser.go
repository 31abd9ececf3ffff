// Package parser turns STRling DSL source text into flags and an AST.
//
// The parser is a single-pass, hand-written recursive-descent reader over
// a rune cursor. It owns all user-facing validation: directive placement,
// group-name uniqueness, backreference resolution (no forward
// references), quantifier applicability, and escape well-formedness.
// Errors follow a strict first-error-wins contract: the first problem in
// left-to-right scan order is returned and parsing stops.
//
// Positions in errors are 0-indexed Unicode code-point offsets into the
// original source, directive lines included.
package parser

import (
	"fmt"
	"strconv"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
)

// controlEscapes maps escape letters to the control characters they
// produce, in and out of character classes.
var controlEscapes = map[rune]rune{
	'n': '\n',
	'r': '\r',
	't': '\t',
	'f': '\f',
	'v': '\v',
}

// Parse parses STRling source text and returns the flags and the root
// AST node, or a *ParseError.
func Parse(text string) (ast.Flags, ast.Node, error) {
	p, perr := newParser(text)
	if perr != nil {
		return ast.Flags{}, nil, perr
	}
	node, perr := p.parseAlt()
	if perr != nil {
		return ast.Flags{}, nil, perr
	}
	p.cur.skipSpaceAndComments()
	if !p.cur.eof() {
		if p.cur.peek(0) == ')' {
			return ast.Flags{}, nil, p.errorAt("Unmatched ')'", p.cur.pos)
		}
		return ast.Flags{}, nil, p.errorAt("Unexpected trailing input", p.cur.pos)
	}
	return p.flags, node, nil
}

// nameInfo tracks a named capturing group through its lifecycle: seen at
// its header, closed once its ')' has been consumed. Backreferences may
// only target closed groups.
type nameInfo struct {
	closed bool
}

type parser struct {
	original string
	offset   int // rune offset of the pattern body within original
	flags    ast.Flags
	cur      *cursor

	capOpened int
	capClosed map[int]bool
	names     map[string]*nameInfo
}

func newParser(text string) (*parser, *ParseError) {
	flags, body, offset, err := scanDirectives(text)
	if err != nil {
		return nil, err
	}
	return &parser{
		original:  text,
		offset:    offset,
		flags:     flags,
		cur:       newCursor(body, flags.Extended),
		capClosed: make(map[int]bool),
		names:     make(map[string]*nameInfo),
	}, nil
}

// errorAt builds a positioned error at a body-relative position,
// attaching the hint-engine suggestion.
func (p *parser) errorAt(message string, pos int) *ParseError {
	at := p.offset + pos
	return &ParseError{
		Message: message,
		Pos:     at,
		Text:    p.original,
		Hint:    getHint(message, p.original, at),
	}
}

// parseAlt parses Alt := Seq ('|' Seq)*.
func (p *parser) parseAlt() (ast.Node, *ParseError) {
	p.cur.skipSpaceAndComments()
	if p.cur.peek(0) == '|' {
		return nil, p.errorAt("Alternation lacks left-hand side", p.cur.pos)
	}

	first, err := p.parseSeq()
	if err != nil {
		return nil, err
	}
	branches := []ast.Node{first}

	for {
		p.cur.skipSpaceAndComments()
		if p.cur.peek(0) != '|' {
			break
		}
		pipePos := p.cur.pos
		p.cur.take()
		p.cur.skipSpaceAndComments()
		if p.cur.eof() {
			return nil, p.errorAt("Alternation lacks right-hand side", pipePos)
		}
		if p.cur.peek(0) == '|' {
			return nil, p.errorAt("Empty alternation branch", pipePos)
		}
		branch, err := p.parseSeq()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}

	if len(branches) == 1 {
		return branches[0], nil
	}
	return ast.Alt{Branches: branches}, nil
}

// parseSeq parses Seq := (Atom Quantifier?)* up to '|', ')' or end.
func (p *parser) parseSeq() (ast.Node, *ParseError) {
	var parts []ast.Node

	for {
		p.cur.skipSpaceAndComments()
		if p.cur.eof() {
			break
		}
		if r := p.cur.peek(0); r == '|' || r == ')' {
			break
		}

		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}

		p.cur.skipSpaceAndComments()
		quantPos := p.cur.pos
		spec, err := p.tryParseQuantifier()
		if err != nil {
			return nil, err
		}
		if spec != nil {
			if _, isAnchor := atom.(ast.Anchor); isAnchor {
				return nil, p.errorAt("Cannot quantify anchor", quantPos)
			}
			atom = ast.Quant{Child: atom, Min: spec.min, Max: spec.max, Mode: spec.mode}
		}
		parts = append(parts, atom)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	if parts == nil {
		parts = []ast.Node{}
	}
	return ast.Seq{Parts: parts}, nil
}

type quantSpec struct {
	min  int
	max  ast.Max
	mode ast.Mode
}

// tryParseQuantifier consumes a quantifier suffix if one follows.
// A '{' that does not open a well-formed brace quantifier is left in
// place to be read as a literal.
func (p *parser) tryParseQuantifier() (*quantSpec, *ParseError) {
	if p.cur.eof() {
		return nil, nil
	}

	spec := &quantSpec{mode: ast.ModeGreedy}
	switch p.cur.peek(0) {
	case '*':
		p.cur.take()
		spec.min, spec.max = 0, ast.MaxInf()
	case '+':
		p.cur.take()
		spec.min, spec.max = 1, ast.MaxInf()
	case '?':
		p.cur.take()
		spec.min, spec.max = 0, ast.MaxN(1)
	case '{':
		ok, err := p.parseBraceQuantifier(spec)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	default:
		return nil, nil
	}

	switch p.cur.peek(0) {
	case '?':
		p.cur.take()
		spec.mode = ast.ModeLazy
	case '+':
		p.cur.take()
		spec.mode = ast.ModePossessive
	}
	return spec, nil
}

// parseBraceQuantifier reads {m}, {m,} or {m,n}. It reports ok=false
// (with the cursor restored) when the braces do not form a quantifier.
func (p *parser) parseBraceQuantifier(spec *quantSpec) (bool, *ParseError) {
	start := p.cur.pos
	p.cur.take() // '{'

	min, ok := p.readInt()
	if !ok {
		p.cur.pos = start
		return false, nil
	}
	spec.min = min

	if p.cur.match(",") {
		if max, ok := p.readInt(); ok {
			spec.max = ast.MaxN(max)
		} else {
			spec.max = ast.MaxInf()
		}
		if !p.cur.match("}") {
			return false, p.errorAt("Unterminated {m,n}", p.cur.pos)
		}
	} else {
		spec.max = ast.MaxN(min)
		if !p.cur.match("}") {
			return false, p.errorAt("Unterminated {n}", p.cur.pos)
		}
	}

	if !spec.max.Inf && spec.max.N < spec.min {
		return false, p.errorAt("Invalid quantifier range", start)
	}
	return true, nil
}

func (p *parser) readInt() (int, bool) {
	digits := ""
	for isDigit(p.cur.peek(0)) {
		digits += string(p.cur.take())
	}
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseAtom parses one pattern element without its quantifier.
func (p *parser) parseAtom() (ast.Node, *ParseError) {
	p.cur.skipSpaceAndComments()
	if p.cur.eof() {
		return nil, p.errorAt("Unexpected end of pattern", p.cur.pos)
	}

	switch r := p.cur.peek(0); r {
	case '.':
		p.cur.take()
		return ast.Dot{}, nil
	case '^':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorStart}, nil
	case '$':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorEnd}, nil
	case '(':
		return p.parseGroupOrLook()
	case '[':
		return p.parseCharClass()
	case '\\':
		return p.parseEscapeAtom()
	case '*', '+', '?':
		return nil, p.errorAt(fmt.Sprintf("Invalid quantifier '%c'", r), p.cur.pos)
	case '|', ')':
		return nil, p.errorAt("Unexpected token", p.cur.pos)
	default:
		return ast.Lit{Value: string(p.cur.take())}, nil
	}
}

// parseEscapeAtom parses a backslash escape outside a character class.
func (p *parser) parseEscapeAtom() (ast.Node, *ParseError) {
	slashPos := p.cur.pos
	p.cur.take() // '\'
	if p.cur.eof() {
		return nil, p.errorAt("Unexpected end of pattern after backslash", slashPos)
	}

	switch r := p.cur.peek(0); {
	case r >= '1' && r <= '9':
		return p.parseNumericBackref(slashPos)
	case r == 'b':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorWordBoundary}, nil
	case r == 'B':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorNotWordBoundary}, nil
	case r == 'A':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorAbsoluteStart}, nil
	case r == 'Z':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorEndBeforeFinalNewline}, nil
	case r == 'z':
		p.cur.take()
		return ast.Anchor{At: ast.AnchorAbsoluteEnd}, nil
	case r == 'k':
		return p.parseNamedBackref(slashPos)
	case r == 'd' || r == 'D' || r == 'w' || r == 'W' || r == 's' || r == 'S':
		esc := ast.ClassEscape{Type: string(p.cur.take())}
		return ast.CharClass{Items: []ast.ClassItem{esc}}, nil
	case r == 'p' || r == 'P':
		item, err := p.parsePropertyEscape()
		if err != nil {
			return nil, err
		}
		return ast.CharClass{Items: []ast.ClassItem{item}}, nil
	case r == 'x':
		ch, err := p.parseHexEscape()
		if err != nil {
			return nil, err
		}
		return ast.Lit{Value: string(ch)}, nil
	case r == 'u' || r == 'U':
		ch, err := p.parseUnicodeEscape()
		if err != nil {
			return nil, err
		}
		return ast.Lit{Value: string(ch)}, nil
	case r == '0':
		// only a bare \0 is the NUL escape; trailing digits re-lex
		// as literals
		p.cur.take()
		return ast.Lit{Value: "\x00"}, nil
	default:
		ch := p.cur.take()
		if val, ok := controlEscapes[ch]; ok {
			return ast.Lit{Value: string(val)}, nil
		}
		// identity escape
		return ast.Lit{Value: string(ch)}, nil
	}
}

// parseNumericBackref resolves \N..N as a backreference to an already
// closed group, consuming the longest digit prefix that names one.
// Leftover digits are re-lexed as literal characters by the caller's
// next iteration. Octal escapes are never produced.
func (p *parser) parseNumericBackref(slashPos int) (ast.Node, *ParseError) {
	digitsStart := p.cur.pos
	digits := ""
	for isDigit(p.cur.peek(0)) {
		digits += string(p.cur.take())
	}

	limit := len(digits)
	if limit > 9 {
		limit = 9 // longer prefixes cannot name a real group
	}
	for l := limit; l >= 1; l-- {
		idx, err := strconv.Atoi(digits[:l])
		if err != nil {
			continue
		}
		if p.capClosed[idx] {
			p.cur.pos = digitsStart + l
			return ast.Backref{ByIndex: idx}, nil
		}
	}
	return nil, p.errorAt("Backreference to undefined group", slashPos)
}

// parseNamedBackref parses \k<name>.
func (p *parser) parseNamedBackref(slashPos int) (ast.Node, *ParseError) {
	p.cur.take() // 'k'
	if p.cur.peek(0) != '<' {
		return nil, p.errorAt("Expected '<' after \\k", p.cur.pos)
	}
	p.cur.take()

	name := ""
	for !p.cur.eof() && p.cur.peek(0) != '>' {
		name += string(p.cur.take())
	}
	if p.cur.eof() {
		return nil, p.errorAt("Unterminated named backref", p.cur.pos)
	}
	p.cur.take() // '>'

	if info, ok := p.names[name]; !ok || !info.closed {
		return nil, p.errorAt(fmt.Sprintf("Backreference to undefined group '%s'", name), slashPos)
	}
	return ast.Backref{ByName: name}, nil
}

// parsePropertyEscape parses \p{Name} or \P{Name}; the cursor sits on
// the p/P.
func (p *parser) parsePropertyEscape() (ast.ClassEscape, *ParseError) {
	tp := p.cur.take() // 'p' or 'P'
	if !p.cur.match("{") {
		return ast.ClassEscape{}, p.errorAt("Expected { after \\p/\\P", p.cur.pos)
	}
	prop := ""
	for !p.cur.eof() && p.cur.peek(0) != '}' {
		prop += string(p.cur.take())
	}
	if !p.cur.match("}") {
		return ast.ClassEscape{}, p.errorAt("Unterminated \\p{...}", p.cur.pos)
	}
	return ast.ClassEscape{Type: string(tp), Property: prop}, nil
}

// parseHexEscape parses \xHH or \x{H+}; the cursor sits on the 'x'.
func (p *parser) parseHexEscape() (rune, *ParseError) {
	p.cur.take() // 'x'
	if p.cur.match("{") {
		digits := ""
		for isHexDigit(p.cur.peek(0)) {
			digits += string(p.cur.take())
		}
		if !p.cur.match("}") {
			return 0, p.errorAt("Unterminated \\x{...}", p.cur.pos)
		}
		return p.codePoint(digits, "Invalid \\x{...} escape")
	}

	h1 := p.cur.take()
	h2 := p.cur.take()
	if !isHexDigit(h1) || !isHexDigit(h2) {
		return 0, p.errorAt("Invalid \\xHH escape", p.cur.pos)
	}
	return p.codePoint(string(h1)+string(h2), "Invalid \\xHH escape")
}

// parseUnicodeEscape parses \uHHHH, \u{H+} or \UHHHHHHHH; the cursor
// sits on the u/U.
func (p *parser) parseUnicodeEscape() (rune, *ParseError) {
	tp := p.cur.take() // 'u' or 'U'

	if tp == 'u' && p.cur.match("{") {
		digits := ""
		for isHexDigit(p.cur.peek(0)) {
			digits += string(p.cur.take())
		}
		if !p.cur.match("}") {
			return 0, p.errorAt("Unterminated \\u{...}", p.cur.pos)
		}
		return p.codePoint(digits, "Invalid \\u{...} escape")
	}

	n := 4
	invalid := "Invalid \\uHHHH"
	if tp == 'U' {
		n = 8
		invalid = "Invalid \\UHHHHHHHH"
	}
	digits := ""
	for i := 0; i < n; i++ {
		ch := p.cur.take()
		if !isHexDigit(ch) {
			return 0, p.errorAt(invalid, p.cur.pos)
		}
		digits += string(ch)
	}
	return p.codePoint(digits, invalid)
}

// codePoint converts collected hex digits into a rune. Empty digit runs
// (allowed by the braced forms) decode to NUL. Surrogate code points are
// rejected: they have no UTF-8 encoding, so accepting them would
// silently corrupt the literal to U+FFFD.
func (p *parser) codePoint(digits, invalidMsg string) (rune, *ParseError) {
	if digits == "" {
		return 0, nil
	}
	cp, err := strconv.ParseInt(digits, 16, 64)
	if err != nil || cp > 0x10FFFF || (cp >= 0xD800 && cp <= 0xDFFF) {
		return 0, p.errorAt(invalidMsg, p.cur.pos)
	}
	return rune(cp), nil
}

// parseCharClass parses [...] with optional leading ^ negation.
func (p *parser) parseCharClass() (ast.Node, *ParseError) {
	p.cur.take() // '['
	p.cur.inClass++
	defer func() { p.cur.inClass-- }()

	negated := false
	if p.cur.peek(0) == '^' {
		negated = true
		p.cur.take()
	}
	// ']' before this point is a literal, not the class terminator
	contentStart := p.cur.pos

	var items []ast.ClassItem
	for {
		if p.cur.eof() {
			return nil, p.errorAt("Unterminated character class", p.cur.pos)
		}
		if p.cur.peek(0) == ']' && p.cur.pos > contentStart {
			p.cur.take()
			if items == nil {
				items = []ast.ClassItem{}
			}
			return ast.CharClass{Negated: negated, Items: items}, nil
		}

		// '-' forms a range only between literal endpoints and not
		// immediately before ']'.
		if p.cur.peek(0) == '-' && len(items) > 0 && p.cur.peek(1) != ']' {
			if from, ok := items[len(items)-1].(ast.ClassLiteral); ok {
				dashPos := p.cur.pos
				p.cur.take()
				end, err := p.parseClassItem()
				if err != nil {
					return nil, err
				}
				if to, ok := end.(ast.ClassLiteral); ok {
					if from.Ch > to.Ch {
						return nil, p.errorAt("Invalid character range", dashPos)
					}
					items[len(items)-1] = ast.ClassRange{From: from.Ch, To: to.Ch}
				} else {
					// no range with a shorthand endpoint; keep the dash literal
					items = append(items, ast.ClassLiteral{Ch: '-'}, end)
				}
				continue
			}
		}

		item, err := p.parseClassItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// parseClassItem parses one member of a character class.
func (p *parser) parseClassItem() (ast.ClassItem, *ParseError) {
	if p.cur.peek(0) != '\\' {
		return ast.ClassLiteral{Ch: p.cur.take()}, nil
	}

	slashPos := p.cur.pos
	p.cur.take() // '\'
	if p.cur.eof() {
		return nil, p.errorAt("Unexpected end of pattern after backslash", slashPos)
	}

	switch r := p.cur.peek(0); {
	case r == 'd' || r == 'D' || r == 'w' || r == 'W' || r == 's' || r == 'S':
		return ast.ClassEscape{Type: string(p.cur.take())}, nil
	case r == 'p' || r == 'P':
		return p.parsePropertyEscape()
	case r == 'x':
		ch, err := p.parseHexEscape()
		if err != nil {
			return nil, err
		}
		return ast.ClassLiteral{Ch: ch}, nil
	case r == 'u' || r == 'U':
		ch, err := p.parseUnicodeEscape()
		if err != nil {
			return nil, err
		}
		return ast.ClassLiteral{Ch: ch}, nil
	case r == '0':
		p.cur.take()
		return ast.ClassLiteral{Ch: 0}, nil
	default:
		ch := p.cur.take()
		if val, ok := controlEscapes[ch]; ok {
			return ast.ClassLiteral{Ch: val}, nil
		}
		return ast.ClassLiteral{Ch: ch}, nil
	}
}

// parseGroupOrLook parses every '('-introduced construct. Lookbehind
// tokens must be recognized before the named-group header, since both
// start with "?<".
func (p *parser) parseGroupOrLook() (ast.Node, *ParseError) {
	p.cur.take() // '('

	if p.cur.peek(0) == '?' && isInlineModifier(p.cur.peek(1)) {
		return nil, p.errorAt("Inline modifiers `(?imsx)` are not supported", p.cur.pos)
	}

	switch {
	case p.cur.match("?:"):
		body, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if !p.cur.match(")") {
			return nil, p.errorAt("Unterminated group", p.cur.pos)
		}
		return ast.Group{Capturing: false, Body: body}, nil

	case p.cur.match("?<="):
		return p.finishLook(ast.DirBehind, false, "Unterminated lookbehind")
	case p.cur.match("?<!"):
		return p.finishLook(ast.DirBehind, true, "Unterminated lookbehind")

	case p.cur.match("?<"):
		return p.parseNamedGroup()

	case p.cur.match("?>"):
		body, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if !p.cur.match(")") {
			return nil, p.errorAt("Unterminated atomic group", p.cur.pos)
		}
		return ast.Group{Capturing: false, Body: body, Atomic: true}, nil

	case p.cur.match("?="):
		return p.finishLook(ast.DirAhead, false, "Unterminated lookahead")
	case p.cur.match("?!"):
		return p.finishLook(ast.DirAhead, true, "Unterminated lookahead")

	case p.cur.peek(0) == '?':
		return nil, p.errorAt("Unknown group type", p.cur.pos)

	default:
		idx := p.openCapture()
		body, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if !p.cur.match(")") {
			return nil, p.errorAt("Unterminated group", p.cur.pos)
		}
		p.capClosed[idx] = true
		return ast.Group{Capturing: true, Body: body}, nil
	}
}

// parseNamedGroup parses the remainder of (?<name>...); "?<" has been
// consumed.
func (p *parser) parseNamedGroup() (ast.Node, *ParseError) {
	namePos := p.cur.pos
	name := ""
	for !p.cur.eof() && p.cur.peek(0) != '>' {
		name += string(p.cur.take())
	}
	if p.cur.eof() {
		return nil, p.errorAt("Unterminated group name", p.cur.pos)
	}
	if !isIdentifier(name) {
		return nil, p.errorAt("Invalid group name", namePos)
	}
	p.cur.take() // '>'

	if _, exists := p.names[name]; exists {
		return nil, p.errorAt(fmt.Sprintf("Duplicate group name '%s'", name), namePos)
	}
	info := &nameInfo{}
	p.names[name] = info
	idx := p.openCapture()

	body, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if !p.cur.match(")") {
		return nil, p.errorAt("Unterminated group", p.cur.pos)
	}
	p.capClosed[idx] = true
	info.closed = true
	return ast.Group{Capturing: true, Body: body, Name: name}, nil
}

func (p *parser) finishLook(dir ast.Dir, neg bool, unterminated string) (ast.Node, *ParseError) {
	body, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if !p.cur.match(")") {
		return nil, p.errorAt(unterminated, p.cur.pos)
	}
	return ast.Look{Dir: dir, Neg: neg, Body: body}, nil
}

// openCapture allocates the next capturing-group index. Indices follow
// source order of '('; a group only becomes referenceable once closed.
func (p *parser) openCapture() int {
	p.capOpened++
	return p.capOpened
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isInlineModifier(r rune) bool {
	return r == 'i' || r == 'm' || r == 's' || r == 'x'
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		alpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		if i == 0 {
			if !alpha {
				return false
			}
			continue
		}
		if !alpha && !isDigit(r) {
			return false
		}
	}
	return true
}
