// Package compiler lowers the AST into emitter-ready IR.
//
// Compilation is a pure structural transform in two passes: Lower maps
// each AST node to its IR op one-to-one, and Normalize establishes the
// shape guarantees emitters rely on (flattened sequences and
// alternations, coalesced literal runs). CompileFull additionally folds
// the tree for the feature tags a target engine must support.
package compiler

import (
	"fmt"
	"sort"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
	"github.com/TheCyberLocal/STRling-sub006/pkg/ir"
)

// Compile lowers and normalizes an AST into IR.
func Compile(root ast.Node) ir.Op {
	return Normalize(Lower(root))
}

// CompileFull compiles an AST and reports the sorted feature tags the
// resulting pattern requires from the target engine.
func CompileFull(root ast.Node) (ir.Op, []string) {
	op := Compile(root)
	set := make(map[string]bool)
	collectFeatures(op, set)
	features := make([]string, 0, len(set))
	for f := range set {
		features = append(features, f)
	}
	sort.Strings(features)
	return op, features
}

// Lower maps an AST node to raw IR without reshaping. An unknown node
// type is an internal defect and panics.
func Lower(node ast.Node) ir.Op {
	switch n := node.(type) {
	case ast.Alt:
		branches := make([]ir.Op, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = Lower(b)
		}
		return ir.Alt{Branches: branches}
	case ast.Seq:
		parts := make([]ir.Op, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = Lower(p)
		}
		return ir.Seq{Parts: parts}
	case ast.Lit:
		return ir.Lit{Value: n.Value}
	case ast.Dot:
		return ir.Dot{}
	case ast.Anchor:
		return ir.Anchor{At: n.At}
	case ast.CharClass:
		items := make([]ir.ClassItem, len(n.Items))
		for i, it := range n.Items {
			items[i] = lowerClassItem(it)
		}
		return ir.CharClass{Negated: n.Negated, Items: items}
	case ast.Quant:
		return ir.Quant{Child: Lower(n.Child), Min: n.Min, Max: n.Max, Mode: n.Mode}
	case ast.Group:
		return ir.Group{Capturing: n.Capturing, Body: Lower(n.Body), Name: n.Name, Atomic: n.Atomic}
	case ast.Backref:
		return ir.Backref{ByIndex: n.ByIndex, ByName: n.ByName}
	case ast.Look:
		return ir.Look{Dir: n.Dir, Neg: n.Neg, Body: Lower(n.Body)}
	default:
		panic(fmt.Sprintf("compiler: unknown AST node %T", node))
	}
}

func lowerClassItem(item ast.ClassItem) ir.ClassItem {
	switch it := item.(type) {
	case ast.ClassRange:
		return ir.ClassRange{From: it.From, To: it.To}
	case ast.ClassLiteral:
		return ir.ClassLiteral{Ch: it.Ch}
	case ast.ClassEscape:
		return ir.ClassEscape{Type: it.Type, Property: it.Property}
	default:
		panic(fmt.Sprintf("compiler: unknown class item %T", item))
	}
}

// Normalize rewrites raw IR into canonical shape: nested Seqs and Alts
// are flattened into their parent, adjacent Lit parts of a Seq are
// coalesced into one, and a single-part Seq is unwrapped. The pass is
// idempotent.
func Normalize(op ir.Op) ir.Op {
	switch n := op.(type) {
	case ir.Alt:
		var branches []ir.Op
		for _, b := range n.Branches {
			b = Normalize(b)
			if inner, ok := b.(ir.Alt); ok {
				branches = append(branches, inner.Branches...)
			} else {
				branches = append(branches, b)
			}
		}
		return ir.Alt{Branches: branches}
	case ir.Seq:
		var parts []ir.Op
		for _, p := range n.Parts {
			p = Normalize(p)
			if inner, ok := p.(ir.Seq); ok {
				parts = append(parts, inner.Parts...)
			} else {
				parts = append(parts, p)
			}
		}
		parts = coalesceLits(parts)
		if len(parts) == 1 {
			return parts[0]
		}
		if parts == nil {
			parts = []ir.Op{}
		}
		return ir.Seq{Parts: parts}
	case ir.Quant:
		return ir.Quant{Child: Normalize(n.Child), Min: n.Min, Max: n.Max, Mode: n.Mode}
	case ir.Group:
		return ir.Group{Capturing: n.Capturing, Body: Normalize(n.Body), Name: n.Name, Atomic: n.Atomic}
	case ir.Look:
		return ir.Look{Dir: n.Dir, Neg: n.Neg, Body: Normalize(n.Body)}
	default:
		return op
	}
}

func coalesceLits(parts []ir.Op) []ir.Op {
	var out []ir.Op
	for _, p := range parts {
		lit, ok := p.(ir.Lit)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(ir.Lit); ok {
				out[len(out)-1] = ir.Lit{Value: prev.Value + lit.Value}
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Feature tags reported by CompileFull.
const (
	FeatureAtomicGroup     = "atomic_group"
	FeatureNamedGroup      = "named_group"
	FeaturePossessiveQuant = "possessive_quantifier"
	FeatureLookahead       = "lookahead"
	FeatureLookbehind      = "lookbehind"
	FeatureBackreference   = "backreference"
	FeatureUnicodeProperty = "unicode_property"
)

func collectFeatures(op ir.Op, set map[string]bool) {
	switch n := op.(type) {
	case ir.Alt:
		for _, b := range n.Branches {
			collectFeatures(b, set)
		}
	case ir.Seq:
		for _, p := range n.Parts {
			collectFeatures(p, set)
		}
	case ir.Quant:
		if n.Mode == ast.ModePossessive {
			set[FeaturePossessiveQuant] = true
		}
		collectFeatures(n.Child, set)
	case ir.Group:
		if n.Atomic {
			set[FeatureAtomicGroup] = true
		}
		if n.Name != "" {
			set[FeatureNamedGroup] = true
		}
		collectFeatures(n.Body, set)
	case ir.Look:
		if n.Dir == ast.DirBehind {
			set[FeatureLookbehind] = true
		} else {
			set[FeatureLookahead] = true
		}
		collectFeatures(n.Body, set)
	case ir.Backref:
		set[FeatureBackreference] = true
	case ir.CharClass:
		for _, it := range n.Items {
			if esc, ok := it.(ir.ClassEscape); ok {
				if esc.Type == "p" || esc.Type == "P" {
					set[FeatureUnicodeProperty] = true
				}
			}
		}
	}
}
