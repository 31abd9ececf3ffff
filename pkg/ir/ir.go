// Package ir defines the intermediate representation consumed by emitters.
//
// The op set mirrors the AST one-to-one; the difference is the shape
// guarantees the compiler's normalization pass establishes: no Seq
// directly contains a Seq, no two adjacent Lit children survive, and no
// Alt directly contains an Alt. Like AST nodes, IR ops are immutable
// values.
//
// Ops serialize to the interchange shape {"ir": "<TypeName>", ...fields}.
package ir

import (
	"encoding/json"

	"github.com/TheCyberLocal/STRling-sub006/pkg/ast"
)

// Op is the interface implemented by all IR operations.
type Op interface {
	// Kind returns the interchange type name of the op (e.g. "Lit").
	Kind() string

	op()
}

// ClassItem is the interface implemented by IR character-class members.
type ClassItem interface {
	Kind() string

	classItem()
}

// Alt is a flattened alternation.
type Alt struct {
	Branches []Op
}

// Seq is a flattened sequence with adjacent literals coalesced.
type Seq struct {
	Parts []Op
}

// Lit is a literal run of characters.
type Lit struct {
	Value string
}

// Dot matches any character.
type Dot struct{}

// Anchor is a zero-width position assertion.
type Anchor struct {
	At ast.AnchorKind
}

// CharClass is a bracketed character class.
type CharClass struct {
	Negated bool
	Items   []ClassItem
}

// Quant applies a repetition to its child.
type Quant struct {
	Child Op
	Min   int
	Max   ast.Max
	Mode  ast.Mode
}

// Group is a capturing, non-capturing, named or atomic group.
type Group struct {
	Capturing bool
	Body      Op
	Name      string
	Atomic    bool
}

// Backref references an earlier capturing group by index or name.
type Backref struct {
	ByIndex int
	ByName  string
}

// Look is a lookaround assertion.
type Look struct {
	Dir  ast.Dir
	Neg  bool
	Body Op
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

// ClassEscape is a shorthand escape inside a character class.
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

func (Alt) op()       {}
func (Seq) op()       {}
func (Lit) op()       {}
func (Dot) op()       {}
func (Anchor) op()    {}
func (CharClass) op() {}
func (Quant) op()     {}
func (Group) op()     {}
func (Backref) op()   {}
func (Look) op()      {}

func (ClassRange) Kind() string   { return "Range" }
func (ClassLiteral) Kind() string { return "Literal" }
func (ClassEscape) Kind() string  { return "Escape" }

func (ClassRange) classItem()   {}
func (ClassLiteral) classItem() {}
func (ClassEscape) classItem()  {}

func (n Alt) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR       string `json:"ir"`
		Branches []Op   `json:"branches"`
	}{n.Kind(), n.Branches})
}

func (n Seq) MarshalJSON() ([]byte, error) {
	parts := n.Parts
	if parts == nil {
		parts = []Op{}
	}
	return json.Marshal(struct {
		IR    string `json:"ir"`
		Parts []Op   `json:"parts"`
	}{n.Kind(), parts})
}

func (n Lit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR    string `json:"ir"`
		Value string `json:"value"`
	}{n.Kind(), n.Value})
}

func (n Dot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR string `json:"ir"`
	}{n.Kind()})
}

func (n Anchor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR string         `json:"ir"`
		At ast.AnchorKind `json:"at"`
	}{n.Kind(), n.At})
}

func (n CharClass) MarshalJSON() ([]byte, error) {
	items := n.Items
	if items == nil {
		items = []ClassItem{}
	}
	return json.Marshal(struct {
		IR      string      `json:"ir"`
		Negated bool        `json:"negated"`
		Items   []ClassItem `json:"items"`
	}{n.Kind(), n.Negated, items})
}

func (n Quant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR    string   `json:"ir"`
		Child Op       `json:"child"`
		Min   int      `json:"min"`
		Max   ast.Max  `json:"max"`
		Mode  ast.Mode `json:"mode"`
	}{n.Kind(), n.Child, n.Min, n.Max, n.Mode})
}

func (n Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR        string `json:"ir"`
		Capturing bool   `json:"capturing"`
		Body      Op     `json:"body"`
		Name      string `json:"name,omitempty"`
		Atomic    bool   `json:"atomic,omitempty"`
	}{n.Kind(), n.Capturing, n.Body, n.Name, n.Atomic})
}

func (n Backref) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR      string `json:"ir"`
		ByIndex int    `json:"byIndex,omitempty"`
		ByName  string `json:"byName,omitempty"`
	}{n.Kind(), n.ByIndex, n.ByName})
}

func (n Look) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR   string  `json:"ir"`
		Dir  ast.Dir `json:"dir"`
		Neg  bool    `json:"neg"`
		Body Op      `json:"body"`
	}{n.Kind(), n.Dir, n.Neg, n.Body})
}

func (i ClassRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR   string `json:"ir"`
		From string `json:"from"`
		To   string `json:"to"`
	}{i.Kind(), string(i.From), string(i.To)})
}

func (i ClassLiteral) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IR string `json:"ir"`
		Ch string `json:"ch"`
	}{i.Kind(), string(i.Ch)})
}

func (i ClassEscape) MarshalJSON() ([]byte, error) {
	out := struct {
		IR       string `json:"ir"`
		Type     string `json:"type"`
		Property string `json:"property,omitempty"`
	}{IR: i.Kind(), Type: i.Type}
	if i.Type == "p" || i.Type == "P" {
		out.Property = i.Property
	}
	return json.Marshal(out)
}
