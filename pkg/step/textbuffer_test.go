package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteBufferAppendIsolatesBranches(t *testing.T) {
	require := require.New(t)

	base := NewWriteBuffer()
	branchA := base.Append(Str("a"))
	branchB := base.Append(Str("b"))

	require.Equal([]Token{Str("a")}, branchA.All())
	require.Equal([]Token{Str("b")}, branchB.All())
}

func TestReadBufferMatchTokens(t *testing.T) {
	require := require.New(t)

	buf := NewReadBuffer([]Token{Str("hello"), Str("world")})
	next, ok := buf.MatchTokens([]Token{Str("hello")})
	require.True(ok)
	require.False(next.ReadCompleted())

	next, ok = next.MatchTokens([]Token{Str("world")})
	require.True(ok)
	require.True(next.ReadCompleted())
}

func TestReadBufferMatchFailureLeavesBufferUnchanged(t *testing.T) {
	require := require.New(t)

	buf := NewReadBuffer([]Token{Str("hello")})
	_, ok := buf.MatchTokens([]Token{Str("goodbye")})
	require.False(ok)
	require.False(buf.ReadCompleted())
}

func TestRenderOrthographicFixups(t *testing.T) {
	require := require.New(t)

	tokens := []Token{Str("Hello"), Str(","), Str("world"), Str("!"), TokNewLine, Str("Next"), Str("line")}
	require.Equal("Hello, world!\nNext line", Render(tokens))
}
