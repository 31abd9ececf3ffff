package ast

// Flags holds the pattern-level flags parsed from a %flags directive.
// All flags default to false.
type Flags struct {
	IgnoreCase bool `json:"ignoreCase"`
	Multiline  bool `json:"multiline"`
	DotAll     bool `json:"dotAll"`
	Unicode    bool `json:"unicode"`
	Extended   bool `json:"extended"`
}

// FlagsFromLetters builds a Flags value from a letter string.
// Letters may be separated by any mix of commas and spaces.
// Unknown letters are ignored at this layer; the directive scanner
// is responsible for rejecting them with a positioned error.
func FlagsFromLetters(letters string) Flags {
	var f Flags
	for _, ch := range letters {
		switch ch {
		case 'i':
			f.IgnoreCase = true
		case 'm':
			f.Multiline = true
		case 's':
			f.DotAll = true
		case 'u':
			f.Unicode = true
		case 'x':
			f.Extended = true
		}
	}
	return f
}

// Letters returns the set flags as a letter string in the fixed
// emission order i, m, s, u, x. Returns "" when no flag is set.
func (f Flags) Letters() string {
	letters := ""
	if f.IgnoreCase {
		letters += "i"
	}
	if f.Multiline {
		letters += "m"
	}
	if f.DotAll {
		letters += "s"
	}
	if f.Unicode {
		letters += "u"
	}
	if f.Extended {
		letters += "x"
	}
	return letters
}
