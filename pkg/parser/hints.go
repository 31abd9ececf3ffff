package parser

import "strings"

// The hint engine maps error messages to instructional hints. Matching is
// by substring, and more specific patterns must come before more general
// ones, so the table is ordered.

type hintRule struct {
	pattern string
	hint    func(msg, text string, pos int) string
}

func staticHint(s string) func(string, string, int) string {
	return func(string, string, int) string { return s }
}

var hintRules = []hintRule{
	{"Unterminated group name", staticHint(
		"Named groups use the syntax (?<name>...). " +
			"Make sure to close the '<name>' with '>' before the group content.")},
	{"Unterminated group", staticHint(
		"This group was opened with '(' but never closed. " +
			"Add a matching ')' to close the group.")},
	{"Unterminated character class", staticHint(
		"This character class was opened with '[' but never closed. " +
			"Add a matching ']' to close the character class.")},
	{"Unterminated named backref", staticHint(
		"Named backreferences use the syntax \\k<name>. " +
			"Make sure to close the '<name>' with '>'.")},
	{"Unterminated lookahead", staticHint(
		"This lookahead was opened with '(?=' or '(?!' but never closed. " +
			"Add a matching ')' to close the lookahead.")},
	{"Unterminated lookbehind", staticHint(
		"This lookbehind was opened with '(?<=' or '(?<!' but never closed. " +
			"Add a matching ')' to close the lookbehind.")},
	{"Unterminated atomic group", staticHint(
		"This atomic group was opened with '(?>' but never closed. " +
			"Add a matching ')' to close the atomic group.")},
	{"Unterminated {m,n}", staticHint(braceQuantHint)},
	{"Unterminated {n}", staticHint(braceQuantHint)},
	{"Invalid quantifier range", staticHint(
		"Quantifier range {m,n} must have m ≤ n. " +
			"Check that the minimum value is not greater than the maximum value.")},
	{"Invalid quantifier", hintInvalidQuantifier},
	{"Invalid character range", staticHint(
		"Character ranges must be in ascending order. " +
			"For example, use [a-z] instead of [z-a], or [0-9] instead of [9-0].")},
	{"Invalid flag", staticHint(
		"Unknown flag. Valid flags are: " +
			"i (case-insensitive), m (multiline), s (dotAll), u (unicode), x (extended/free-spacing).")},
	{"Directive after pattern content", staticHint(
		"Directives like %flags must appear at the start of the pattern, " +
			"before any regex content.")},
	{"Unexpected token", hintUnexpectedToken},
	{"Unmatched ')'", staticHint(
		"This ')' character does not have a matching opening '('. " +
			"Did you mean to escape it with '\\)'?")},
	{"Unexpected trailing input", staticHint(
		"There is unexpected content after the pattern ended. " +
			"Check for unmatched parentheses or extra characters.")},
	{"Cannot quantify anchor", staticHint(
		"Anchors like ^, $, \\b, \\B match positions, not characters, " +
			"so they cannot be quantified with *, +, ?, or {}.")},
	{"Backreference to undefined group", staticHint(
		"Backreferences refer to previously captured groups. " +
			"Make sure the group is defined before referencing it. " +
			"STRling does not support forward references.")},
	{"Duplicate group name", staticHint(
		"Each named group must have a unique name. " +
			"Use different names for different groups, or use unnamed groups ().")},
	{"Invalid group name", staticHint(
		"Group names must follow the IDENTIFIER rule: start with a letter or " +
			"underscore, followed by letters, digits, or underscores. " +
			"Use (?<name>...) with a valid identifier.")},
	{"Empty alternation branch", staticHint(
		"Empty alternation branch detected (consecutive '|' operators). " +
			"Use 'a|b' instead of 'a||b', or '(a|)b' if you want to match optional 'a'.")},
	{"Alternation lacks left-hand side", staticHint(
		"The alternation operator '|' requires an expression on the left side. " +
			"Use 'a|b' to match either 'a' or 'b'.")},
	{"Alternation lacks right-hand side", staticHint(
		"The alternation operator '|' requires an expression on the right side. " +
			"Use 'a|b' to match either 'a' or 'b'.")},
	{"Expected '<' after \\k", staticHint(
		"Named backreferences use the syntax \\k<name>. " +
			"The '<' is required after \\k, like \\k<groupname>.")},
	{"Inline modifiers", staticHint(
		"STRling does not support inline modifiers like (?i) for case-insensitivity. " +
			"Instead, use the %flags directive at the start of your pattern: '%flags i'")},
	{"Invalid \\xHH escape", staticHint(
		"Hex escapes must use valid hexadecimal digits (0-9, A-F). " +
			"Use \\xHH for 2-digit hex codes (e.g., \\x41 for 'A').")},
	{"Invalid \\uHHHH", staticHint(unicodeEscapeHint)},
	{"Invalid \\UHHHHHHHH", staticHint(unicodeEscapeHint)},
	{"Unterminated \\x{...}", staticHint(
		"Variable-length hex escapes use the syntax \\x{...}. " +
			"Make sure to close the escape with '}'.")},
	{"Unterminated \\u{...}", staticHint(
		"Variable-length unicode escapes use the syntax \\u{...}. " +
			"Make sure to close the escape with '}'.")},
	{"Unterminated \\p{...}", staticHint(
		"Unicode property escapes use the syntax \\p{Property} or \\P{Property}. " +
			"Make sure to close the property name with '}'.")},
	{"Expected { after \\p/\\P", staticHint(
		"Unicode property escapes require braces: \\p{Letter} or \\P{Letter}. " +
			"Use \\p{L} for letters, \\p{N} for numbers, etc.")},
}

const braceQuantHint = "Brace quantifiers use the syntax {m,n} or {n}. " +
	"Make sure to close the quantifier with '}'."

const unicodeEscapeHint = "Unicode escapes must use valid hexadecimal digits (0-9, A-F). " +
	"Use \\uHHHH for 4-digit codes or \\u{...} for variable-length codes."

func hintInvalidQuantifier(msg, text string, pos int) string {
	quant := "*"
	if i := strings.IndexByte(msg, '\''); i >= 0 && i+1 < len(msg) {
		quant = string(msg[i+1])
	}
	return "The quantifier '" + quant + "' cannot be at the start of a pattern or group. " +
		"It must follow a character or group it can quantify."
}

func hintUnexpectedToken(msg, text string, pos int) string {
	runes := []rune(text)
	if pos < len(runes) {
		switch runes[pos] {
		case ')':
			return "This ')' character does not have a matching opening '('. " +
				"Did you mean to escape it with '\\)'?"
		case '|':
			return "The alternation operator '|' requires expressions on both sides. " +
				"Use 'a|b' to match either 'a' or 'b'."
		}
	}
	return "This character appeared in an unexpected context."
}

// getHint returns the instructional hint for an error message, or ""
// when no rule matches.
func getHint(message, text string, pos int) string {
	for _, rule := range hintRules {
		if strings.Contains(message, rule.pattern) {
			return rule.hint(message, text, pos)
		}
	}
	return ""
}
