package parser_test

import (
	"reflect"
	"testing"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
	"github.com/TheCyberLocal/STRling-sub006/pkg/parser"
)

// Helper functions

func parsePattern(t *testing.T, input string) (ast.Flags, ast.Node) {
	t.Helper()
	flags, node, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", input, err)
	}
	return flags, node
}

func parseNode(t *testing.T, input string) ast.Node {
	t.Helper()
	_, node := parsePattern(t, input)
	return node
}

func expectError(t *testing.T, input, message string, pos int) *parser.ParseError {
	t.Helper()
	_, _, err := parser.Parse(input)
	if err == nil {
		t.Fatalf("Expected error parsing %q but got none", input)
	}
	perr, ok := err.(*parser.ParseError)
	if !ok {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if perr.Message != message {
		t.Errorf("Expected message %q, got %q", message, perr.Message)
	}
	if pos >= 0 && perr.Pos != pos {
		t.Errorf("Expected position %d, got %d", pos, perr.Pos)
	}
	return perr
}

// Atom tests

func TestParseAtoms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Node
	}{
		{"literal", "a", ast.Lit{Value: "a"}},
		{"dot", ".", ast.Dot{}},
		{"caret", "^", ast.Anchor{At: ast.AnchorStart}},
		{"dollar", "$", ast.Anchor{At: ast.AnchorEnd}},
		{"word boundary", `\b`, ast.Anchor{At: ast.AnchorWordBoundary}},
		{"not word boundary", `\B`, ast.Anchor{At: ast.AnchorNotWordBoundary}},
		{"absolute start", `\A`, ast.Anchor{At: ast.AnchorAbsoluteStart}},
		{"absolute end", `\z`, ast.Anchor{At: ast.AnchorAbsoluteEnd}},
		{"end before final newline", `\Z`, ast.Anchor{At: ast.AnchorEndBeforeFinalNewline}},
		{"newline escape", `\n`, ast.Lit{Value: "\n"}},
		{"tab escape", `\t`, ast.Lit{Value: "\t"}},
		{"nul escape", `\0`, ast.Lit{Value: "\x00"}},
		{"identity escape", `\.`, ast.Lit{Value: "."}},
		{"hex escape", `\x41`, ast.Lit{Value: "A"}},
		{"braced hex escape", `\x{1F600}`, ast.Lit{Value: "\U0001F600"}},
		{"unicode escape", `\u0041`, ast.Lit{Value: "A"}},
		{"braced unicode escape", `\u{48}`, ast.Lit{Value: "H"}},
		{"long unicode escape", `\U0001F600`, ast.Lit{Value: "\U0001F600"}},
		{"digit shorthand", `\d`, ast.CharClass{Items: []ast.ClassItem{ast.ClassEscape{Type: "d"}}}},
		{"negated word shorthand", `\W`, ast.CharClass{Items: []ast.ClassItem{ast.ClassEscape{Type: "W"}}}},
		{"property escape", `\p{Lu}`, ast.CharClass{Items: []ast.ClassItem{ast.ClassEscape{Type: "p", Property: "Lu"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNode(t, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSequenceAndAlternation(t *testing.T) {
	got := parseNode(t, "ab|c")
	want := ast.Alt{Branches: []ast.Node{
		ast.Seq{Parts: []ast.Node{ast.Lit{Value: "a"}, ast.Lit{Value: "b"}}},
		ast.Lit{Value: "c"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(ab|c) = %#v, want %#v", got, want)
	}
}

func TestParseEmptyPattern(t *testing.T) {
	got := parseNode(t, "")
	want := ast.Seq{Parts: []ast.Node{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(\"\") = %#v, want %#v", got, want)
	}
}

// Quantifier tests

func TestParseQuantifiers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		min   int
		max   ast.Max
		mode  ast.Mode
	}{
		{"star", "a*", 0, ast.MaxInf(), ast.ModeGreedy},
		{"plus", "a+", 1, ast.MaxInf(), ast.ModeGreedy},
		{"question", "a?", 0, ast.MaxN(1), ast.ModeGreedy},
		{"exact", "a{3}", 3, ast.MaxN(3), ast.ModeGreedy},
		{"at least", "a{2,}", 2, ast.MaxInf(), ast.ModeGreedy},
		{"range", "a{2,5}", 2, ast.MaxN(5), ast.ModeGreedy},
		{"lazy star", "a*?", 0, ast.MaxInf(), ast.ModeLazy},
		{"possessive plus", "a++", 1, ast.MaxInf(), ast.ModePossessive},
		{"lazy range", "a{2,5}?", 2, ast.MaxN(5), ast.ModeLazy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := parseNode(t, tt.input)
			q, ok := node.(ast.Quant)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want Quant", tt.input, node)
			}
			if q.Min != tt.min || q.Max != tt.max || q.Mode != tt.mode {
				t.Errorf("Parse(%q) = {%d %v %s}, want {%d %v %s}",
					tt.input, q.Min, q.Max, q.Mode, tt.min, tt.max, tt.mode)
			}
		})
	}
}

func TestBraceWithoutDigitsIsLiteral(t *testing.T) {
	got := parseNode(t, "a{b")
	want := ast.Seq{Parts: []ast.Node{
		ast.Lit{Value: "a"},
		ast.Lit{Value: "{"},
		ast.Lit{Value: "b"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(a{b) = %#v, want %#v", got, want)
	}
}

// Group and lookaround tests

func TestParseGroups(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, node ast.Node)
	}{
		{"capturing", "(a)", func(t *testing.T, node ast.Node) {
			g := node.(ast.Group)
			if !g.Capturing || g.Name != "" || g.Atomic {
				t.Errorf("got %#v, want plain capturing group", g)
			}
		}},
		{"non-capturing", "(?:a)", func(t *testing.T, node ast.Node) {
			g := node.(ast.Group)
			if g.Capturing || g.Atomic {
				t.Errorf("got %#v, want non-capturing group", g)
			}
		}},
		{"named", "(?<word>a)", func(t *testing.T, node ast.Node) {
			g := node.(ast.Group)
			if !g.Capturing || g.Name != "word" {
				t.Errorf("got %#v, want named group 'word'", g)
			}
		}},
		{"atomic", "(?>a)", func(t *testing.T, node ast.Node) {
			g := node.(ast.Group)
			if !g.Atomic || g.Capturing {
				t.Errorf("got %#v, want atomic group", g)
			}
		}},
		{"lookahead", "(?=a)", func(t *testing.T, node ast.Node) {
			l := node.(ast.Look)
			if l.Dir != ast.DirAhead || l.Neg {
				t.Errorf("got %#v, want positive lookahead", l)
			}
		}},
		{"negative lookahead", "(?!a)", func(t *testing.T, node ast.Node) {
			l := node.(ast.Look)
			if l.Dir != ast.DirAhead || !l.Neg {
				t.Errorf("got %#v, want negative lookahead", l)
			}
		}},
		{"lookbehind", "(?<=a)", func(t *testing.T, node ast.Node) {
			l := node.(ast.Look)
			if l.Dir != ast.DirBehind || l.Neg {
				t.Errorf("got %#v, want positive lookbehind", l)
			}
		}},
		{"negative lookbehind", "(?<!a)", func(t *testing.T, node ast.Node) {
			l := node.(ast.Look)
			if l.Dir != ast.DirBehind || !l.Neg {
				t.Errorf("got %#v, want negative lookbehind", l)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseNode(t, tt.input))
		})
	}
}

// Backreference tests

func TestNumericBackref(t *testing.T) {
	got := parseNode(t, `(a)\1`)
	want := ast.Seq{Parts: []ast.Node{
		ast.Group{Capturing: true, Body: ast.Lit{Value: "a"}},
		ast.Backref{ByIndex: 1},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestNumericBackrefLongestPrefix(t *testing.T) {
	// \123 resolves to group 1, re-lexing the leftover digits as
	// literals.
	got := parseNode(t, `(a)\123`)
	want := ast.Seq{Parts: []ast.Node{
		ast.Group{Capturing: true, Body: ast.Lit{Value: "a"}},
		ast.Backref{ByIndex: 1},
		ast.Lit{Value: "2"},
		ast.Lit{Value: "3"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestNamedBackref(t *testing.T) {
	got := parseNode(t, `(?<y>a)\k<y>`)
	want := ast.Seq{Parts: []ast.Node{
		ast.Group{Capturing: true, Body: ast.Lit{Value: "a"}, Name: "y"},
		ast.Backref{ByName: "y"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestForwardAndUndefinedBackrefs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		pos     int
	}{
		{"undefined numeric", `\2(a)(b)`, "Backreference to undefined group", 0},
		{"forward numeric", `(a)\2`, "Backreference to undefined group", 3},
		{"self reference", `(a\1)`, "Backreference to undefined group", 2},
		{"undefined named", `\k<missing>`, "Backreference to undefined group 'missing'", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.input, tt.message, tt.pos)
		})
	}
}

// Character class tests

func TestParseCharClasses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Node
	}{
		{"range", "[a-z]", ast.CharClass{Items: []ast.ClassItem{ast.ClassRange{From: 'a', To: 'z'}}}},
		{"negated", "[^0-9]", ast.CharClass{Negated: true, Items: []ast.ClassItem{ast.ClassRange{From: '0', To: '9'}}}},
		{"leading bracket literal", "[]a]", ast.CharClass{Items: []ast.ClassItem{
			ast.ClassLiteral{Ch: ']'},
			ast.ClassLiteral{Ch: 'a'},
		}}},
		{"trailing dash literal", "[a-]", ast.CharClass{Items: []ast.ClassItem{
			ast.ClassLiteral{Ch: 'a'},
			ast.ClassLiteral{Ch: '-'},
		}}},
		{"shorthand", `[\d]`, ast.CharClass{Items: []ast.ClassItem{ast.ClassEscape{Type: "d"}}}},
		{"dash before shorthand degrades", `[a-\d]`, ast.CharClass{Items: []ast.ClassItem{
			ast.ClassLiteral{Ch: 'a'},
			ast.ClassLiteral{Ch: '-'},
			ast.ClassEscape{Type: "d"},
		}}},
		{"property item", `[\p{L}_]`, ast.CharClass{Items: []ast.ClassItem{
			ast.ClassEscape{Type: "p", Property: "L"},
			ast.ClassLiteral{Ch: '_'},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNode(t, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

// Error tests

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		pos     int
	}{
		{"unterminated class", "[a|b(", "Unterminated character class", 5},
		{"unterminated group", "(ab", "Unterminated group", 3},
		{"unmatched close paren", "ab)", "Unmatched ')'", 2},
		{"quantified anchor", "^*", "Cannot quantify anchor", 1},
		{"leading quantifier", "*a", "Invalid quantifier '*'", 0},
		{"leading alternation", "|a", "Alternation lacks left-hand side", 0},
		{"trailing alternation", "a|", "Alternation lacks right-hand side", 1},
		{"empty branch", "a||b", "Empty alternation branch", 1},
		{"descending range", "[z-a]", "Invalid character range", 2},
		{"inverted brace range", "a{5,2}", "Invalid quantifier range", 1},
		{"unterminated brace", "a{2", "Unterminated {n}", 3},
		{"inline modifier", "(?i)a", "Inline modifiers `(?imsx)` are not supported", 1},
		{"unknown group type", "(?'a')", "Unknown group type", 1},
		{"duplicate name", "(?<x>a)(?<x>b)", "Duplicate group name 'x'", 10},
		{"invalid name", "(?<1x>a)", "Invalid group name", 3},
		{"bad hex", `\xZZ`, "Invalid \\xHH escape", 4},
		{"bad unicode", `\u12`, "Invalid \\uHHHH", 4},
		{"unterminated property", `\p{L`, "Unterminated \\p{...}", 4},
		{"surrogate braced unicode", `\u{D800}`, "Invalid \\u{...} escape", 8},
		{"surrogate fixed unicode", `\uD800`, "Invalid \\uHHHH", 6},
		{"missing k angle", `\kx`, "Expected '<' after \\k", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.input, tt.message, tt.pos)
		})
	}
}

// Directive tests

func TestFlagsDirective(t *testing.T) {
	flags, node := parsePattern(t, "%flags i,m x\nabc")
	want := ast.Flags{IgnoreCase: true, Multiline: true, Extended: true}
	if flags != want {
		t.Errorf("flags = %+v, want %+v", flags, want)
	}
	// extended mode: "abc" on its own line still parses as three
	// literals
	if _, ok := node.(ast.Seq); !ok {
		t.Errorf("body = %T, want Seq", node)
	}
}

func TestFlagsDoNotChangeAST(t *testing.T) {
	_, plain := parsePattern(t, "a.c")
	_, flagged := parsePattern(t, "%flags m\na.c")
	if !reflect.DeepEqual(plain, flagged) {
		t.Errorf("multiline flag changed the AST: %#v vs %#v", plain, flagged)
	}
}

func TestFreeSpacingMode(t *testing.T) {
	got := parseNode(t, "%flags x\na b c # trailing comment")
	want := ast.Seq{Parts: []ast.Node{
		ast.Lit{Value: "a"},
		ast.Lit{Value: "b"},
		ast.Lit{Value: "c"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestFreeSpacingInsideClass(t *testing.T) {
	got := parseNode(t, "%flags x\n[a b]")
	want := ast.CharClass{Items: []ast.ClassItem{
		ast.ClassLiteral{Ch: 'a'},
		ast.ClassLiteral{Ch: ' '},
		ast.ClassLiteral{Ch: 'b'},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestDirectiveErrors(t *testing.T) {
	t.Run("invalid flag", func(t *testing.T) {
		expectError(t, "%flags z\nabc", "Invalid flag 'z'", 7)
	})
	t.Run("directive after content", func(t *testing.T) {
		expectError(t, "abc\n%flags i", "Directive after pattern content", 4)
	})
}

func TestLeadingCommentLinesSkipped(t *testing.T) {
	_, node, err := parser.Parse("# heading\n\n%flags i\nab")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := ast.Seq{Parts: []ast.Node{ast.Lit{Value: "a"}, ast.Lit{Value: "b"}}}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("got %#v, want %#v", node, want)
	}
}

func TestErrorPositionsCountDirectiveLines(t *testing.T) {
	// the caret must land on the ')' in the original source, not in
	// the stripped body
	perr := expectError(t, "%flags i\nab)", "Unmatched ')'", 11)
	if perr.Text != "%flags i\nab)" {
		t.Errorf("error text = %q, want original source", perr.Text)
	}
}

func TestHintAttached(t *testing.T) {
	perr := expectError(t, "(ab", "Unterminated group", -1)
	if perr.Hint == "" {
		t.Error("expected a hint for unterminated group")
	}
}
