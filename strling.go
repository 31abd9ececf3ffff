// Package strling compiles the STRling pattern DSL to PCRE2.
//
// STRling is a readable, strict regex dialect: patterns declare their
// flags in a leading %flags directive, inline modifiers are rejected,
// and every error carries a position and an instructional hint.
//
// # Quick Start
//
//	// One-shot translation
//	pattern, err := strling.Translate("%flags i\n(?<word>\\w+)")
//
//	// Staged pipeline
//	flags, tree, err := strling.Parse(source)
//	op := strling.Compile(tree)
//	pattern := strling.Emit(op, flags)
//
// # Pipeline
//
// Translation runs source → Parser → (Flags, AST) → Compiler → IR →
// Emitter → pattern string. Every stage is a pure function over
// immutable values: no I/O, no shared state, identical input always
// yields byte-identical output, and concurrent calls are safe without
// locking.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/TheCyberLocal/STRling-sub006/pkg/parser
//   - Compiler: github.com/TheCyberLocal/STRling-sub006/pkg/compiler
//   - Emitter: github.com/TheCyberLocal/STRling-sub006/pkg/emitter
//   - AST/IR: github.com/TheCyberLocal/STRling-sub006/pkg/ast, pkg/ir
package strling

import (
	"fmt"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
	"github.com/TheCyberLocal/STRling-sub006/pkg/compiler"
	"github.com/TheCyberLocal/STRling-sub006/pkg/emitter"
	"github.com/TheCyberLocal/STRling-sub006/pkg/ir"
	"github.com/TheCyberLocal/STRling-sub006/pkg/parser"
)

// Version returns the current version of the STRling compiler.
func Version() string {
	return "v0.1.0-dev"
}

// Parse parses STRling source text into flags and an AST root.
// On failure the returned error is a *parser.ParseError.
func Parse(source string) (ast.Flags, ast.Node, error) {
	return parser.Parse(source)
}

// Compile lowers a parsed AST into normalized IR.
func Compile(root ast.Node) ir.Op {
	return compiler.Compile(root)
}

// CompileFull is Compile plus the sorted feature tags the pattern
// requires from the target engine (e.g. "lookbehind", "named_group").
func CompileFull(root ast.Node) (ir.Op, []string) {
	return compiler.CompileFull(root)
}

// Emit renders IR as a PCRE2 pattern string, flag prefix included.
func Emit(root ir.Op, flags ast.Flags) string {
	return emitter.Emit(root, flags)
}

// Translate runs the whole pipeline: source text in, PCRE2 pattern out.
//
// Example:
//
//	pattern, err := strling.Translate(`(?<area>\d{3})-(?<num>\d{4})`)
func Translate(source string) (string, error) {
	flags, tree, err := Parse(source)
	if err != nil {
		return "", err
	}
	return Emit(Compile(tree), flags), nil
}

// MustTranslate is like Translate but panics on invalid source. It
// simplifies safe initialization of global variables.
func MustTranslate(source string) string {
	pattern, err := Translate(source)
	if err != nil {
		panic(fmt.Sprintf("strling: Translate(%q): %v", source, err))
	}
	return pattern
}
