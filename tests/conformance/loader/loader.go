// Package loader reads the shared conformance fixture corpus.
//
// Fixtures are JSON suites of translation cases. Each case either
// expects a pattern (plus optional flags and feature tags) or a
// positioned error; the two are mutually exclusive.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Suite is one fixture file.
type Suite struct {
	Name  string `json:"name"`
	Cases []Case `json:"cases"`
}

// Case is a single translation scenario. AST and IR, when present,
// hold the expected interchange JSON for the parse and compile stages.
type Case struct {
	Name     string          `json:"name"`
	Source   string          `json:"source"`
	Pattern  string          `json:"pattern,omitempty"`
	Flags    map[string]bool `json:"flags,omitempty"`
	Features []string        `json:"features,omitempty"`
	AST      json.RawMessage `json:"ast,omitempty"`
	IR       json.RawMessage `json:"ir,omitempty"`
	Error    *ExpectedError  `json:"error,omitempty"`
}

// ExpectedError is the expected parse failure for negative cases.
// Pos of -1 means "any position".
type ExpectedError struct {
	Message string `json:"message"`
	Pos     int    `json:"pos"`
}

// LoadSuites reads every *.json fixture under dir, sorted by filename
// for stable test ordering.
func LoadSuites(dir string) ([]Suite, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var suites []Suite
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var suite Suite
		if err := json.Unmarshal(data, &suite); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if suite.Name == "" {
			suite.Name = filepath.Base(path)
		}
		suites = append(suites, suite)
	}
	return suites, nil
}
