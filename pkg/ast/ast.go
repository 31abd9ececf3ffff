// Package ast defines the STRling abstract syntax tree.
//
// The node set is closed: every node the parser can produce is declared
// here, so the compiler and emitter can dispatch with exhaustive type
// switches. Nodes are immutable values; once the parser builds a tree it
// is only ever read.
//
// Nodes serialize to the cross-binding interchange shape
// {"kind": "<TypeName>", ...fields} used by the shared fixture corpus.
package ast

import (
	"encoding/json"
	"fmt"
)

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Kind returns the interchange type name of the node (e.g. "Lit").
	Kind() string

	node()
}

// ClassItem is the interface implemented by character-class members.
type ClassItem interface {
	// Kind returns the interchange type name of the item.
	Kind() string

	classItem()
}

// AnchorKind identifies the position an Anchor asserts.
type AnchorKind string

// Anchor kinds, named as in the interchange schema.
const (
	AnchorStart                 AnchorKind = "Start"
	AnchorEnd                   AnchorKind = "End"
	AnchorWordBoundary          AnchorKind = "WordBoundary"
	AnchorNotWordBoundary       AnchorKind = "NotWordBoundary"
	AnchorAbsoluteStart         AnchorKind = "AbsoluteStart"
	AnchorAbsoluteEnd           AnchorKind = "AbsoluteEnd"
	AnchorEndBeforeFinalNewline AnchorKind = "EndBeforeFinalNewline"
)

// Mode is the matching mode of a quantifier. Exactly one of greedy,
// lazy or possessive holds for any quantifier.
type Mode string

const (
	ModeGreedy     Mode = "Greedy"
	ModeLazy       Mode = "Lazy"
	ModePossessive Mode = "Possessive"
)

// Dir is the direction of a lookaround assertion.
type Dir string

const (
	DirAhead  Dir = "Ahead"
	DirBehind Dir = "Behind"
)

// Max is the upper bound of a quantifier: either a finite count or the
// "Inf" sentinel for an unbounded repetition. The zero value is a finite
// bound of 0; compare Max values with ==.
type Max struct {
	N   int
	Inf bool
}

// MaxN returns a finite upper bound.
func MaxN(n int) Max { return Max{N: n} }

// MaxInf returns the unbounded upper bound.
func MaxInf() Max { return Max{Inf: true} }

// MarshalJSON serializes the bound as a number, or the string "Inf"
// when unbounded, matching the interchange schema.
func (m Max) MarshalJSON() ([]byte, error) {
	if m.Inf {
		return []byte(`"Inf"`), nil
	}
	return json.Marshal(m.N)
}

func (m Max) String() string {
	if m.Inf {
		return "Inf"
	}
	return fmt.Sprintf("%d", m.N)
}

// Alt is an alternation of two or more branches.
type Alt struct {
	Branches []Node
}

// Seq is an ordered sequence of parts. A sequence may be empty
// (for example an empty alternation branch).
type Seq struct {
	Parts []Node
}

// Lit is a literal run of characters. The parser produces single-rune
// literals; the compiler coalesces adjacent runs.
type Lit struct {
	Value string
}

// Dot matches any character (subject to the dotAll flag at match time).
type Dot struct{}

// Anchor is a zero-width position assertion.
type Anchor struct {
	At AnchorKind
}

// CharClass is a bracketed character class.
type CharClass struct {
	Negated bool
	Items   []ClassItem
}

// Quant applies a repetition to its child. Min is always >= 0 and, for
// finite bounds, Max.N >= Min (enforced at parse time).
type Quant struct {
	Child Node
	Min   int
	Max   Max
	Mode  Mode
}

// Group is a capturing, non-capturing, named or atomic group.
// Name is empty for unnamed groups; Atomic is true only for (?>...).
type Group struct {
	Capturing bool
	Body      Node
	Name      string
	Atomic    bool
}

// Backref references an earlier closed capturing group, by index
// (ByIndex > 0) or by name (ByName != "").
type Backref struct {
	ByIndex int
	ByName  string
}

// Look is a lookahead or lookbehind assertion.
type Look struct {
	Dir  Dir
	Neg  bool
	Body Node
}

// ClassRange is a from-to range inside a character class.
type ClassRange struct {
	From rune
	To   rune
}

// ClassLiteral is a single literal character inside a character class.
type ClassLiteral struct {
	Ch rune
}

// ClassEscape is a shorthand escape inside a character class:
// one of d, D, w, W, s, S, p, P. Property is meaningful only for p/P.
type ClassEscape struct {
	Type     string
	Property string
}

func (Alt) Kind() string       { return "Alt" }
func (Seq) Kind() string       { return "Seq" }
func (Lit) Kind() string       { return "Lit" }
func (Dot) Kind() string       { return "Dot" }
func (Anchor) Kind() string    { return "Anchor" }
func (CharClass) Kind() string { return "CharClass" }
func (Quant) Kind() string     { return "Quant" }
func (Group) Kind() string     { return "Group" }
func (Backref) Kind() string   { return "Backref" }
func (Look) Kind() string      { return "Look" }

func (Alt) node()       {}
func (Seq) node()       {}
func (Lit) node()       {}
func (Dot) node()       {}
func (Anchor) node()    {}
func (CharClass) node() {}
func (Quant) node()     {}
func (Group) node()     {}
func (Backref) node()   {}
func (Look) node()      {}

func (ClassRange) Kind() string   { return "Range" }
func (ClassLiteral) Kind() string { return "Literal" }
func (ClassEscape) Kind() string  { return "Escape" }

func (ClassRange) classItem()   {}
func (ClassLiteral) classItem() {}
func (ClassEscape) classItem()  {}

func (n Alt) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string `json:"kind"`
		Branches []Node `json:"branches"`
	}{n.Kind(), n.Branches})
}

func (n Seq) MarshalJSON() ([]byte, error) {
	parts := n.Parts
	if parts == nil {
		parts = []Node{}
	}
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Parts []Node `json:"parts"`
	}{n.Kind(), parts})
}

func (n Lit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}{n.Kind(), n.Value})
}

func (n Dot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
	}{n.Kind()})
}

func (n Anchor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string     `json:"kind"`
		At   AnchorKind `json:"at"`
	}{n.Kind(), n.At})
}

func (n CharClass) MarshalJSON() ([]byte, error) {
	items := n.Items
	if items == nil {
		items = []ClassItem{}
	}
	return json.Marshal(struct {
		Kind    string      `json:"kind"`
		Negated bool        `json:"negated"`
		Items   []ClassItem `json:"items"`
	}{n.Kind(), n.Negated, items})
}

func (n Quant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Child Node   `json:"child"`
		Min   int    `json:"min"`
		Max   Max    `json:"max"`
		Mode  Mode   `json:"mode"`
	}{n.Kind(), n.Child, n.Min, n.Max, n.Mode})
}

func (n Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string `json:"kind"`
		Capturing bool   `json:"capturing"`
		Body      Node   `json:"body"`
		Name      string `json:"name,omitempty"`
		Atomic    bool   `json:"atomic,omitempty"`
	}{n.Kind(), n.Capturing, n.Body, n.Name, n.Atomic})
}

func (n Backref) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		ByIndex int    `json:"byIndex,omitempty"`
		ByName  string `json:"byName,omitempty"`
	}{n.Kind(), n.ByIndex, n.ByName})
}

func (n Look) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Dir  Dir    `json:"dir"`
		Neg  bool   `json:"neg"`
		Body Node   `json:"body"`
	}{n.Kind(), n.Dir, n.Neg, n.Body})
}

func (i ClassRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		From string `json:"from"`
		To   string `json:"to"`
	}{i.Kind(), string(i.From), string(i.To)})
}

func (i ClassLiteral) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Ch   string `json:"ch"`
	}{i.Kind(), string(i.Ch)})
}

func (i ClassEscape) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind     string `json:"kind"`
		Type     string `json:"type"`
		Property string `json:"property,omitempty"`
	}{Kind: i.Kind(), Type: i.Type}
	if i.Type == "p" || i.Type == "P" {
		out.Property = i.Property
	}
	return json.Marshal(out)
}
