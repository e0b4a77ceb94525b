package adoc

// A Cursor is a sequential, non-backtracking reader over the token
// stream. The parser only ever peeks ahead and consumes; it never moves
// backwards.
type Cursor struct {
	tokens []*Token
	pos    int
}

func NewCursor(tokens []*Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// Peek returns the next token without consuming it, or nil at the end.
func (c *Cursor) Peek() *Token {
	if c.pos >= len(c.tokens) {
		return nil
	}
	return c.tokens[c.pos]
}

// PeekAt returns the token n positions ahead without consuming, or nil.
func (c *Cursor) PeekAt(n int) *Token {
	if c.pos+n >= len(c.tokens) {
		return nil
	}
	return c.tokens[c.pos+n]
}

// PeekNonBlank returns the next non-blank token without consuming
// anything, or nil when only blanks remain.
func (c *Cursor) PeekNonBlank() *Token {
	for i := c.pos; i < len(c.tokens); i++ {
		if c.tokens[i].Type != BlankToken {
			return c.tokens[i]
		}
	}
	return nil
}

// Next consumes and returns the next token, or nil at the end.
func (c *Cursor) Next() *Token {
	t := c.Peek()
	if t != nil {
		c.pos++
	}
	return t
}

// AtEnd reports whether all tokens have been consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.tokens)
}

// Pos returns the current position, used by the parser to assert forward
// progress.
func (c *Cursor) Pos() int {
	return c.pos
}

// SubSpan computes the span of the byte range [startByte, endByte) of the
// token's line, converting byte offsets to UTF-16 columns.
func (c *Cursor) SubSpan(t *Token, startByte, endByte int) Span {
	return Span{
		Start: Pos{Line: t.LineNumber, Col: colOf(t.Text, startByte), Stack: t.Span.Start.Stack},
		End:   Pos{Line: t.LineNumber, Col: colOf(t.Text, endByte), Stack: t.Span.Start.Stack},
	}
}
