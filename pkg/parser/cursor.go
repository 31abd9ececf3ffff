package parser

// eof marks the end of input for peek.
const eof = -1

// cursor is the parser's position in the pattern body. It carries the
// free-spacing flag and the character-class nesting depth, because
// whitespace and '#' comments are significant inside a class regardless
// of the x flag.
type cursor struct {
	src      []rune
	pos      int
	extended bool
	inClass  int
}

func newCursor(src []rune, extended bool) *cursor {
	return &cursor{src: src, extended: extended}
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.src)
}

// peek returns the rune at offset n from the current position, or eof.
func (c *cursor) peek(n int) rune {
	j := c.pos + n
	if j >= len(c.src) {
		return eof
	}
	return c.src[j]
}

// take consumes and returns the next rune, or eof at end of input.
func (c *cursor) take() rune {
	if c.eof() {
		return eof
	}
	r := c.src[c.pos]
	c.pos++
	return r
}

// match consumes s if the input continues with it.
func (c *cursor) match(s string) bool {
	runes := []rune(s)
	if c.pos+len(runes) > len(c.src) {
		return false
	}
	for i, r := range runes {
		if c.src[c.pos+i] != r {
			return false
		}
	}
	c.pos += len(runes)
	return true
}

// skipSpaceAndComments skips whitespace and #-to-end-of-line comments in
// free-spacing mode. Inside a character class both stay significant.
func (c *cursor) skipSpaceAndComments() {
	if !c.extended || c.inClass > 0 {
		return
	}
	for !c.eof() {
		r := c.peek(0)
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			c.pos++
			continue
		}
		if r == '#' {
			for !c.eof() && c.peek(0) != '\r' && c.peek(0) != '\n' {
				c.pos++
			}
			continue
		}
		break
	}
}
