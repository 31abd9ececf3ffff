package parser

import (
	"strconv"
	"strings"
)

// ParseError is a positioned, hinted parse failure.
//
// Pos is a 0-indexed Unicode code-point offset into Text, which is the
// original source handed to Parse (directive lines included). Hint is an
// optional plain-language suggestion produced by the hint engine.
//
// Parsing is strictly first-error-wins: the parser raises the first error
// it meets in left-to-right scan order and never collects diagnostics.
type ParseError struct {
	Message string
	Pos     int
	Text    string
	Hint    string
}

// Error implements the error interface with the formatted rendering.
func (e *ParseError) Error() string {
	return e.Format()
}

// Format renders the error with a source excerpt and caret:
//
//	STRling Parse Error: <message>
//
//	> <line> | <lineText>
//	>   | <spaces>^
//
//	Hint: <hint>
func (e *ParseError) Format() string {
	if e.Text == "" {
		return e.Message + " at position " + strconv.Itoa(e.Pos)
	}

	lineNum, lineText, col := e.locate()

	var b strings.Builder
	b.WriteString("STRling Parse Error: ")
	b.WriteString(e.Message)
	b.WriteString("\n\n")
	b.WriteString("> ")
	b.WriteString(strconv.Itoa(lineNum))
	b.WriteString(" | ")
	b.WriteString(lineText)
	b.WriteString("\n>   | ")
	b.WriteString(strings.Repeat(" ", col))
	b.WriteString("^")
	if e.Hint != "" {
		b.WriteString("\n\nHint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// locate finds the 1-based line number, line text and column of Pos.
func (e *ParseError) locate() (lineNum int, lineText string, col int) {
	lines := strings.Split(e.Text, "\n")
	offset := 0
	for i, line := range lines {
		runes := len([]rune(line))
		// +1 accounts for the newline terminating the line
		if offset+runes+1 > e.Pos {
			return i + 1, line, e.Pos - offset
		}
		offset += runes + 1
	}
	// Position beyond the last line: point past its end.
	last := lines[len(lines)-1]
	return len(lines), last, len([]rune(last))
}

// Position is a 0-indexed line/character pair in LSP coordinates.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is an LSP text range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is the LSP-shaped rendering of a ParseError, for editor
// integrations.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Source   string `json:"source"`
	Code     string `json:"code"`
}

// Diagnostic converts the error to its LSP-diagnostic shape. Severity is
// always 1 (error) and the code is the snake_cased message.
func (e *ParseError) Diagnostic() Diagnostic {
	lineNum, _, col := e.locate()
	start := Position{Line: lineNum - 1, Character: col}
	return Diagnostic{
		Range:    Range{Start: start, End: Position{Line: start.Line, Character: col + 1}},
		Severity: 1,
		Message:  e.Message,
		Source:   "STRling",
		Code:     snakeCase(e.Message),
	}
}

// snakeCase lowercases a message and collapses every non-alphanumeric
// run into a single underscore: "Unmatched ')'" -> "unmatched".
func snakeCase(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isWord {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

