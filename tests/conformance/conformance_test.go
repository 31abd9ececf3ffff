package conformance_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	strling "github.com/TheCyberLocal/STRling-sub006"
	"github.com/TheCyberLocal/STRling-sub006/pkg/parser"
	"github.com/TheCyberLocal/STRling-sub006/tests/conformance/loader"
)

func TestConformance(t *testing.T) {
	suites, err := loader.LoadSuites("testdata")
	if err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}
	if len(suites) == 0 {
		t.Fatal("no fixture suites found")
	}

	for _, suite := range suites {
		suite := suite
		t.Run(suite.Name, func(t *testing.T) {
			for _, tc := range suite.Cases {
				tc := tc
				t.Run(tc.Name, func(t *testing.T) {
					runCase(t, tc)
				})
			}
		})
	}
}

func runCase(t *testing.T, tc loader.Case) {
	t.Helper()

	flags, tree, err := strling.Parse(tc.Source)

	if tc.Error != nil {
		if err == nil {
			t.Fatalf("expected error %q, got none", tc.Error.Message)
		}
		var perr *parser.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *parser.ParseError, got %T", err)
		}
		if perr.Message != tc.Error.Message {
			t.Errorf("message = %q, want %q", perr.Message, tc.Error.Message)
		}
		if tc.Error.Pos >= 0 && perr.Pos != tc.Error.Pos {
			t.Errorf("pos = %d, want %d", perr.Pos, tc.Error.Pos)
		}
		return
	}

	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", tc.Source, err)
	}

	if tc.Flags != nil {
		got := map[string]bool{
			"ignoreCase": flags.IgnoreCase,
			"multiline":  flags.Multiline,
			"dotAll":     flags.DotAll,
			"unicode":    flags.Unicode,
			"extended":   flags.Extended,
		}
		for name, want := range tc.Flags {
			if got[name] != want {
				t.Errorf("flag %s = %v, want %v", name, got[name], want)
			}
		}
	}

	op, features := strling.CompileFull(tree)
	pattern := strling.Emit(op, flags)
	if pattern != tc.Pattern {
		t.Errorf("pattern = %q, want %q", pattern, tc.Pattern)
	}

	if tc.AST != nil {
		checkJSON(t, "ast", tree, tc.AST)
	}
	if tc.IR != nil {
		checkJSON(t, "ir", op, tc.IR)
	}

	checkFeatures(t, features, tc.Features)
}

// checkJSON compares a stage's serialized interchange form against the
// fixture's expectation, whitespace-insensitively.
func checkJSON(t *testing.T, stage string, got interface{}, want json.RawMessage) {
	t.Helper()
	gotJSON, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshaling %s: %v", stage, err)
	}
	var wantBuf bytes.Buffer
	if err := json.Compact(&wantBuf, want); err != nil {
		t.Fatalf("compacting expected %s: %v", stage, err)
	}
	if !bytes.Equal(gotJSON, wantBuf.Bytes()) {
		t.Errorf("%s = %s, want %s", stage, gotJSON, wantBuf.Bytes())
	}
}

func checkFeatures(t *testing.T, features, want []string) {
	t.Helper()
	if want == nil {
		return
	}
	if len(features) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(features, want) {
		t.Errorf("features = %v, want %v", features, want)
	}
}
