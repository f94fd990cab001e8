package step

// TokenKind distinguishes ordinary text tokens from the four orthographic
// specials (§4.8).
type TokenKind int

const (
	// Text is an ordinary string token.
	Text TokenKind = iota
	// NewParagraph requests a paragraph break in the writer's output.
	NewParagraph
	// NewLine requests an unconditional line break.
	NewLine
	// FreshLine requests a line break only if the writer is not already
	// at the start of a line.
	FreshLine
	// ForceSpace requests a space between this token and its neighbors
	// even where the writer would otherwise run them together.
	ForceSpace
)

// Token is one element of the text alphabet: either a literal string or
// one of the four specials.
type Token struct {
	Kind TokenKind
	Text string // only meaningful when Kind == Text
}

// Str builds an ordinary text token.
func Str(s string) Token { return Token{Kind: Text, Text: s} }

var (
	TokNewParagraph = Token{Kind: NewParagraph}
	TokNewLine      = Token{Kind: NewLine}
	TokFreshLine    = Token{Kind: FreshLine}
	TokForceSpace   = Token{Kind: ForceSpace}
)

// TextBuffer is append-only in write mode and a read cursor in read
// mode (§4.8). Both modes are immutable: every operation returns a new
// TextBuffer sharing the prior backing array, which is what lets a
// failed branch's appended tokens vanish simply by discarding the
// buffer value it produced.
type TextBuffer struct {
	backing *[]Token // shared backing array
	write   bool     // write mode vs read mode
	pos     int      // write mode: logical length written so far
	// read mode
	input  []Token
	cursor int
}

// NewWriteBuffer creates an empty write-mode buffer.
func NewWriteBuffer() *TextBuffer {
	backing := make([]Token, 0, 16)
	return &TextBuffer{backing: &backing, write: true, pos: 0}
}

// NewReadBuffer creates a read-mode buffer over a pre-tokenized input.
func NewReadBuffer(input []Token) *TextBuffer {
	return &TextBuffer{write: false, input: input, cursor: 0}
}

// Append, in write mode, appends tokens and returns a new buffer whose
// logical length includes them. The backing array is shared; only the
// logical-length "view" differs between buffers, so earlier buffer
// values remain valid even after a later Append grows the backing array.
func (b *TextBuffer) Append(tokens ...Token) *TextBuffer {
	if !b.write {
		return b
	}
	arr := *b.backing
	if b.pos < len(arr) {
		// A sibling branch already extended the shared backing array past
		// our logical position; fork a private copy so appends from two
		// different branches never interleave.
		fresh := append([]Token{}, arr[:b.pos]...)
		arr = fresh
	}
	arr = append(arr, tokens...)
	b.backing = &arr
	return &TextBuffer{backing: &arr, write: true, pos: b.pos + len(tokens)}
}

// Since returns the token slice appended between an earlier buffer value
// "before" and this one — used to collect all-solutions output (§4.8).
func (b *TextBuffer) Since(before *TextBuffer) []Token {
	if !b.write || !before.write {
		return nil
	}
	arr := *b.backing
	if before.pos > b.pos || before.pos > len(arr) {
		return nil
	}
	return append([]Token{}, arr[before.pos:b.pos]...)
}

// All returns every token written so far, in write mode.
func (b *TextBuffer) All() []Token {
	if !b.write {
		return nil
	}
	arr := *b.backing
	if b.pos > len(arr) {
		return arr
	}
	return arr[:b.pos]
}

// NextToken returns the next input token and a buffer advanced past it,
// in read mode. ok is false at end of input.
func (b *TextBuffer) NextToken() (Token, *TextBuffer, bool) {
	if b.write || b.cursor >= len(b.input) {
		return Token{}, b, false
	}
	tok := b.input[b.cursor]
	return tok, &TextBuffer{write: false, input: b.input, cursor: b.cursor + 1}, true
}

// MatchTokens attempts, in read mode, to match the given literal token
// sequence against the upcoming input, returning the advanced buffer on
// success.
func (b *TextBuffer) MatchTokens(tokens []Token) (*TextBuffer, bool) {
	cur := b
	for _, want := range tokens {
		got, next, ok := cur.NextToken()
		if !ok || got != want {
			return b, false
		}
		cur = next
	}
	return cur, true
}

// ReadCompleted reports whether a read-mode buffer has consumed all of
// its input.
func (b *TextBuffer) ReadCompleted() bool {
	return !b.write && b.cursor >= len(b.input)
}
