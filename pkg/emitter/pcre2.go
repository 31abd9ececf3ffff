// Package emitter renders IR into a PCRE2 pattern string.
//
// Emission is a pure recursive walk. The only context a node needs from
// its parent is whether an alternation must wrap itself, so the walker
// threads the parent's kind down one level instead of carrying a
// builder-wide state struct.
package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
	"github.com/TheCyberLocal/STRling-sub006/pkg/ir"
)

// Emit renders the IR tree as a PCRE2 pattern, prefixed with the inline
// flag group when any flag is set.
func Emit(root ir.Op, flags ast.Flags) string {
	prefix := ""
	if letters := flags.Letters(); letters != "" {
		prefix = "(?" + letters + ")"
	}
	return prefix + emit(root, "")
}

// emit renders one op. parentKind is the Kind() of the enclosing op, or
// "" at the root; only Alt consults it.
func emit(op ir.Op, parentKind string) string {
	switch n := op.(type) {
	case ir.Alt:
		parts := make([]string, len(n.Branches))
		for i, b := range n.Branches {
			parts[i] = emit(b, "Alt")
		}
		body := strings.Join(parts, "|")
		// an alternation inside a sequence or under a quantifier must
		// bind tighter than its surroundings
		if parentKind == "Seq" || parentKind == "Quant" {
			return "(?:" + body + ")"
		}
		return body
	case ir.Seq:
		var b strings.Builder
		for _, p := range n.Parts {
			b.WriteString(emit(p, "Seq"))
		}
		return b.String()
	case ir.Lit:
		return escapeLiteral(n.Value)
	case ir.Dot:
		return "."
	case ir.Anchor:
		return anchorText(n.At)
	case ir.CharClass:
		return emitClass(n)
	case ir.Quant:
		return emitQuant(n)
	case ir.Group:
		open := "("
		switch {
		case n.Atomic:
			open = "(?>"
		case n.Capturing && n.Name != "":
			open = "(?<" + n.Name + ">"
		case !n.Capturing:
			open = "(?:"
		}
		return open + emit(n.Body, "Group") + ")"
	case ir.Backref:
		if n.ByName != "" {
			return `\k<` + n.ByName + ">"
		}
		return `\` + strconv.Itoa(n.ByIndex)
	case ir.Look:
		open := "(?="
		switch {
		case n.Dir == ast.DirAhead && n.Neg:
			open = "(?!"
		case n.Dir == ast.DirBehind && !n.Neg:
			open = "(?<="
		case n.Dir == ast.DirBehind && n.Neg:
			open = "(?<!"
		}
		return open + emit(n.Body, "Look") + ")"
	default:
		panic(fmt.Sprintf("emitter: unknown IR op %T", op))
	}
}

func anchorText(at ast.AnchorKind) string {
	switch at {
	case ast.AnchorStart:
		return "^"
	case ast.AnchorEnd:
		return "$"
	case ast.AnchorWordBoundary:
		return `\b`
	case ast.AnchorNotWordBoundary:
		return `\B`
	case ast.AnchorAbsoluteStart:
		return `\A`
	case ast.AnchorEndBeforeFinalNewline:
		return `\Z`
	case ast.AnchorAbsoluteEnd:
		return `\z`
	default:
		panic(fmt.Sprintf("emitter: unknown anchor kind %q", at))
	}
}

func emitQuant(n ir.Quant) string {
	child := emit(n.Child, "Quant")
	if needsWrap(n.Child) {
		child = "(?:" + child + ")"
	}

	var suffix string
	switch {
	case n.Min == 0 && n.Max.Inf:
		suffix = "*"
	case n.Min == 1 && n.Max.Inf:
		suffix = "+"
	case n.Min == 0 && !n.Max.Inf && n.Max.N == 1:
		suffix = "?"
	case !n.Max.Inf && n.Max.N == n.Min:
		suffix = "{" + strconv.Itoa(n.Min) + "}"
	case n.Max.Inf:
		suffix = "{" + strconv.Itoa(n.Min) + ",}"
	default:
		suffix = "{" + strconv.Itoa(n.Min) + "," + strconv.Itoa(n.Max.N) + "}"
	}

	switch n.Mode {
	case ast.ModeLazy:
		suffix += "?"
	case ast.ModePossessive:
		suffix += "+"
	}
	return child + suffix
}

// needsWrap reports whether a quantified child must be grouped so the
// quantifier binds to the whole child. Alt is excluded: it has already
// wrapped itself under a Quant parent.
func needsWrap(child ir.Op) bool {
	switch c := child.(type) {
	case ir.Seq, ir.Look:
		return true
	case ir.Lit:
		return len([]rune(c.Value)) > 1
	default:
		return false
	}
}

// emitClass renders a character class, collapsing a single shorthand
// escape to its bare form with negation folded into the letter case.
func emitClass(n ir.CharClass) string {
	if len(n.Items) == 1 {
		if esc, ok := n.Items[0].(ir.ClassEscape); ok {
			if s, ok := collapseEscape(esc, n.Negated); ok {
				return s
			}
		}
	}

	var b strings.Builder
	b.WriteByte('[')
	if n.Negated {
		b.WriteByte('^')
	}
	for _, item := range n.Items {
		switch it := item.(type) {
		case ir.ClassRange:
			b.WriteString(escapeClassChar(it.From))
			b.WriteByte('-')
			b.WriteString(escapeClassChar(it.To))
		case ir.ClassLiteral:
			b.WriteString(escapeClassChar(it.Ch))
		case ir.ClassEscape:
			b.WriteString(classEscapeText(it))
		default:
			panic(fmt.Sprintf("emitter: unknown class item %T", item))
		}
	}
	b.WriteByte(']')
	return b.String()
}

// collapseEscape emits the bare shorthand for a one-item class. Class
// negation flips the letter case: [^\d] is \D, [^\D] is \d, and for
// properties the P form is chosen iff exactly one of class negation and
// the P spelling holds.
func collapseEscape(esc ir.ClassEscape, negated bool) (string, bool) {
	switch esc.Type {
	case "d", "w", "s":
		t := esc.Type
		if negated {
			t = strings.ToUpper(t)
		}
		return `\` + t, true
	case "D", "W", "S":
		t := esc.Type
		if negated {
			t = strings.ToLower(t)
		}
		return `\` + t, true
	case "p", "P":
		if esc.Property == "" {
			return "", false
		}
		useP := negated != (esc.Type == "P")
		letter := "p"
		if useP {
			letter = "P"
		}
		return `\` + letter + "{" + esc.Property + "}", true
	}
	return "", false
}

func classEscapeText(esc ir.ClassEscape) string {
	if esc.Type == "p" || esc.Type == "P" {
		return `\` + esc.Type + "{" + esc.Property + "}"
	}
	return `\` + esc.Type
}

// escapeLiteral escapes PCRE2 metacharacters in a literal run.
func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\^$.|?*+()[]{}`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeClassChar escapes one character for use inside a bracket class.
// '-' and '^' are always escaped rather than relying on position, '[' is
// escaped for byte parity with the other bindings' emitters, and
// non-printable code points render as named or \xHH escapes.
func escapeClassChar(r rune) string {
	switch r {
	case '\\', ']', '[', '-', '^':
		return `\` + string(r)
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\f':
		return `\f`
	case '\v':
		return `\v`
	}
	if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
		return fmt.Sprintf(`\x%02X`, r)
	}
	return string(r)
}
