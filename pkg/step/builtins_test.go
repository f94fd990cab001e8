package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArithmeticPrimitives(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	plus := m.Lookup("Plus")
	out := NewWriteBuffer()
	ok := plus.Call(out, env, []Term{Atom{Value: int64(2)}, Atom{Value: int64(3)}, x}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		require.Equal(Atom{Value: float64(5)}, e2.Deref(x))
		return true
	})
	require.True(ok)
}

func TestComparisonPrimitives(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	env := NewEnv(m)
	out := NewWriteBuffer()

	lt := m.Lookup("Lt")
	ok := lt.Call(out, env, []Term{Atom{Value: int64(1)}, Atom{Value: int64(2)}}, env.Frame, func(*TextBuffer, *Env) bool { return true })
	require.True(ok)

	ok = lt.Call(out, env, []Term{Atom{Value: int64(2)}, Atom{Value: int64(1)}}, env.Frame, func(*TextBuffer, *Env) bool { return true })
	require.False(ok)
}

func TestMemberEnumeratesEachElement(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	member := m.Lookup("Member")
	out := NewWriteBuffer()
	var seen []string
	member.Call(out, env, []Term{x, List(Atom{Value: int64(1)}, Atom{Value: int64(2)}, Atom{Value: int64(3)})}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		seen = append(seen, e2.Deref(x).String())
		return false
	})
	require.Equal([]string{"1", "2", "3"}, seen)
}

func TestLengthAndNth(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	env := NewEnv(m)
	n := env.Vars.Fresh("N")

	length := m.Lookup("Length")
	out := NewWriteBuffer()
	var afterLength *Env
	ok := length.Call(out, env, []Term{List(Atom{Value: int64(1)}, Atom{Value: int64(2)}), n}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		afterLength = e2
		return true
	})
	require.True(ok)
	require.Equal(Atom{Value: int64(2)}, afterLength.Deref(n))

	elem := env.Vars.Fresh("E")
	nth := m.Lookup("Nth")
	var afterNth *Env
	ok = nth.Call(out, env, []Term{Atom{Value: int64(1)}, List(Atom{Value: "a"}, Atom{Value: "b"}), elem}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		afterNth = e2
		return true
	})
	require.True(ok)
	require.Equal(Atom{Value: "b"}, afterNth.Deref(elem))
}

func TestStringUtilities(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	env := NewEnv(m)
	out := NewWriteBuffer()

	r := env.Vars.Fresh("R")
	upcase := m.Lookup("Upcase")
	var afterUpcase *Env
	ok := upcase.Call(out, env, []Term{Atom{Value: "hi"}, r}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		afterUpcase = e2
		return true
	})
	require.True(ok)
	require.Equal(Atom{Value: "HI"}, afterUpcase.Deref(r))

	r2 := env.Vars.Fresh("R2")
	pl := m.Lookup("Pluralize")
	var afterPluralize *Env
	ok = pl.Call(out, env, []Term{Atom{Value: "fly"}, r2}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		afterPluralize = e2
		return true
	})
	require.True(ok)
	require.Equal(Atom{Value: "flies"}, afterPluralize.Deref(r2))
}

func TestKBPrimitivesRoundtripThroughState(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	env := NewEnv(m)

	path := List(
		Tuple{Elems: []Term{Atom{Value: "/"}, Atom{Value: "a"}}},
		Tuple{Elems: []Term{Atom{Value: "!"}, Atom{Value: "b"}}},
	)

	write := m.Lookup("KBWrite")
	out := NewWriteBuffer()
	var afterWrite *Env
	ok := write.Call(out, env, []Term{path}, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		afterWrite = e2
		return true
	})
	require.True(ok)

	lookup := m.Lookup("KBLookup")
	ok = lookup.Call(out, afterWrite, []Term{path}, afterWrite.Frame, func(*TextBuffer, *Env) bool { return true })
	require.True(ok)

	dump := m.Lookup("KBDump")
	d := env.Vars.Fresh("D")
	ok = dump.Call(out, afterWrite, []Term{d}, afterWrite.Frame, func(_ *TextBuffer, e2 *Env) bool {
		require.Contains(e2.Deref(d).String(), "/a!b")
		return true
	})
	require.True(ok)
}

func TestModuleValidateCatchesBrokenBackPointer(t *testing.T) {
	require := require.New(t)

	other := &CompoundTask{TaskName: "Other"}
	broken := &CompoundTask{TaskName: "Broken"}
	broken.Methods = []*Method{{Task: other, Head: []Term{}}}

	m := &Module{Tasks: map[string]Task{"Broken": broken}}
	err := m.Validate()
	require.Error(err)
	require.Contains(err.Error(), "Broken")
}

func TestModuleValidatePassesOnStandardModule(t *testing.T) {
	require := require.New(t)

	m := NewStandardModule()
	require.NoError(m.Validate())
}
