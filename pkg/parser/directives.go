package parser

import (
	"strings"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
)

// scanDirectives splits the source into an optional leading %flags
// directive and the pattern body. Leading blank lines and #-comment
// lines are skipped. The returned offset is the rune index of the body
// within the original source, so parse errors can report positions
// against the text the user actually wrote.
//
// A %flags line appearing after pattern content has begun is an error;
// unknown flag letters in a directive are rejected here (the Flags layer
// itself ignores them).
func scanDirectives(text string) (ast.Flags, []rune, int, *ParseError) {
	var flags ast.Flags

	src := []rune(text)
	lines := strings.Split(text, "\n")
	lineStart := 0 // rune offset of the current line
	bodyStart := len(src)
	bodyStarted := false

	for _, line := range lines {
		lineRunes := []rune(line)
		stripped := strings.TrimSpace(line)

		if bodyStarted {
			if strings.HasPrefix(stripped, "%flags") {
				at := lineStart + runeIndex(lineRunes, '%')
				return flags, nil, 0, &ParseError{
					Message: "Directive after pattern content",
					Pos:     at,
					Text:    text,
					Hint:    getHint("Directive after pattern content", text, at),
				}
			}
			lineStart += len(lineRunes) + 1
			continue
		}

		switch {
		case stripped == "" || strings.HasPrefix(stripped, "#"):
			// leading blank or comment line
		case strings.HasPrefix(stripped, "%flags"):
			letters, errPos, bad := parseFlagLetters(lineRunes)
			if bad != 0 {
				at := lineStart + errPos
				msg := "Invalid flag '" + string(bad) + "'"
				return flags, nil, 0, &ParseError{
					Message: msg,
					Pos:     at,
					Text:    text,
					Hint:    getHint(msg, text, at),
				}
			}
			flags = ast.FlagsFromLetters(letters)
		case strings.HasPrefix(stripped, "%"):
			// unknown directive lines before the pattern are ignored
		default:
			bodyStarted = true
			bodyStart = lineStart
		}
		lineStart += len(lineRunes) + 1
	}

	return flags, src[bodyStart:], bodyStart, nil
}

// parseFlagLetters extracts flag letters from a %flags directive line.
// Letters may be mixed case, separated by commas and spaces, and
// optionally wrapped in brackets. On an unknown letter it returns its
// rune offset within the line and the offending rune.
func parseFlagLetters(line []rune) (letters string, errPos int, bad rune) {
	start := runeIndex(line, '%') + len("%flags")
	for k := start; k < len(line); k++ {
		r := line[k]
		switch {
		case r == ' ' || r == '\t' || r == ',' || r == '[' || r == ']':
		case strings.ContainsRune("imsux", lowerASCII(r)):
			letters += string(lowerASCII(r))
		default:
			return "", k, r
		}
	}
	return letters, 0, 0
}

func runeIndex(line []rune, target rune) int {
	for i, r := range line {
		if r == target {
			return i
		}
	}
	return 0
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
