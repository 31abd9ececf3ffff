package compiler_test

import (
	"reflect"
	"testing"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
	"github.com/TheCyberLocal/STRling-sub006/pkg/compiler"
	"github.com/TheCyberLocal/STRling-sub006/pkg/ir"
	"github.com/TheCyberLocal/STRling-sub006/pkg/parser"
)

func compileSource(t *testing.T, source string) ir.Op {
	t.Helper()
	_, tree, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", source, err)
	}
	return compiler.Compile(tree)
}

func TestLowerMirrorsAST(t *testing.T) {
	node := ast.Group{
		Capturing: true,
		Name:      "g",
		Body: ast.Quant{
			Child: ast.CharClass{Items: []ast.ClassItem{ast.ClassRange{From: '0', To: '9'}}},
			Min:   2,
			Max:   ast.MaxInf(),
			Mode:  ast.ModePossessive,
		},
	}
	want := ir.Group{
		Capturing: true,
		Name:      "g",
		Body: ir.Quant{
			Child: ir.CharClass{Items: []ir.ClassItem{ir.ClassRange{From: '0', To: '9'}}},
			Min:   2,
			Max:   ast.MaxInf(),
			Mode:  ast.ModePossessive,
		},
	}
	if got := compiler.Lower(node); !reflect.DeepEqual(got, want) {
		t.Errorf("Lower() = %#v, want %#v", got, want)
	}
}

func TestNormalizeFlattensNestedSeqs(t *testing.T) {
	raw := ir.Seq{Parts: []ir.Op{
		ir.Lit{Value: "a"},
		ir.Seq{Parts: []ir.Op{ir.Lit{Value: "b"}, ir.Dot{}}},
		ir.Lit{Value: "c"},
	}}
	want := ir.Seq{Parts: []ir.Op{
		ir.Lit{Value: "ab"},
		ir.Dot{},
		ir.Lit{Value: "c"},
	}}
	if got := compiler.Normalize(raw); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestNormalizeFlattensNestedAlts(t *testing.T) {
	raw := ir.Alt{Branches: []ir.Op{
		ir.Lit{Value: "a"},
		ir.Alt{Branches: []ir.Op{ir.Lit{Value: "b"}, ir.Lit{Value: "c"}}},
	}}
	want := ir.Alt{Branches: []ir.Op{
		ir.Lit{Value: "a"},
		ir.Lit{Value: "b"},
		ir.Lit{Value: "c"},
	}}
	if got := compiler.Normalize(raw); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestNormalizeCoalescesLiterals(t *testing.T) {
	got := compileSource(t, "abc")
	want := ir.Lit{Value: "abc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile(abc) = %#v, want %#v", got, want)
	}
}

func TestNormalizeUnwrapsSinglePartSeq(t *testing.T) {
	raw := ir.Seq{Parts: []ir.Op{ir.Seq{Parts: []ir.Op{ir.Dot{}}}}}
	if got := compiler.Normalize(raw); !reflect.DeepEqual(got, ir.Dot{}) {
		t.Errorf("Normalize() = %#v, want Dot", got)
	}
}

func TestNormalizeRecursesIntoContainers(t *testing.T) {
	raw := ir.Group{Capturing: true, Body: ir.Seq{Parts: []ir.Op{
		ir.Lit{Value: "a"},
		ir.Lit{Value: "b"},
	}}}
	want := ir.Group{Capturing: true, Body: ir.Lit{Value: "ab"}}
	if got := compiler.Normalize(raw); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	sources := []string{
		"abc",
		"a|b|c",
		"(?<g>ab)+|cd",
		"(?=x)[a-z]{2,5}?",
	}
	for _, src := range sources {
		once := compileSource(t, src)
		twice := compiler.Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %q: %#v vs %#v", src, once, twice)
		}
	}
}

func TestCompileFullFeatures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"plain", "abc", []string{}},
		{"named group", "(?<g>a)", []string{"named_group"}},
		{"atomic", "(?>a)", []string{"atomic_group"}},
		{"possessive", "a++", []string{"possessive_quantifier"}},
		{"lookahead", "(?=a)", []string{"lookahead"}},
		{"lookbehind", "(?<!a)", []string{"lookbehind"}},
		{"backref", `(a)\1`, []string{"backreference"}},
		{"property", `\p{Lu}`, []string{"unicode_property"}},
		{"sorted combination", `(?<g>a)\k<g>(?<=b)`,
			[]string{"backreference", "lookbehind", "named_group"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tree, err := parser.Parse(tt.source)
			if err != nil {
				t.Fatalf("Failed to parse %q: %v", tt.source, err)
			}
			_, features := compiler.CompileFull(tree)
			if len(features) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(features, tt.want) {
				t.Errorf("features = %v, want %v", features, tt.want)
			}
		})
	}
}

func TestLowerPanicsOnUnknownNode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unknown node type")
		}
	}()
	compiler.Lower(nil)
}
