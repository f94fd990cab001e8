package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifyTupleRoundTrip(t *testing.T) {
	require := require.New(t)

	vf := NewVarFactory()
	x := vf.Fresh("X")
	y := vf.Fresh("Y")
	z := vf.Fresh("Z")

	a := Tuple{Elems: []Term{x, Atom{Value: int64(2)}, y}}
	b := Tuple{Elems: []Term{Atom{Value: int64(1)}, Atom{Value: int64(2)}, Tuple{Elems: []Term{Atom{Value: int64(3)}, z}}}}

	binds, ok := Unify(a, b, EmptyBindings)
	require.True(ok)

	require.Equal(Atom{Value: int64(1)}, Deref(x, binds))

	yVal := Deref(y, binds)
	yt, ok := yVal.(Tuple)
	require.True(ok)
	require.Equal(Atom{Value: int64(3)}, yt.Elems[0])

	zVal := Deref(yt.Elems[1], binds)
	_, stillVar := zVal.(*Var)
	require.True(stillVar)
}

func TestUnifyVarTiebreak(t *testing.T) {
	require := require.New(t)
	vf := NewVarFactory()
	lo := vf.Fresh("lo")
	hi := vf.Fresh("hi")

	binds, ok := Unify(hi, lo, EmptyBindings)
	require.True(ok)
	require.Equal(lo, Deref(hi, binds))
}

func TestUnifyFeatureStructures(t *testing.T) {
	require := require.New(t)

	a := FeatureStructure{Features: map[string]Term{"name": Atom{Value: "alice"}}}
	b := FeatureStructure{Features: map[string]Term{"name": Atom{Value: "alice"}, "age": Atom{Value: int64(30)}}}

	binds, ok := Unify(a, b, EmptyBindings)
	require.True(ok)
	require.NotNil(binds)
}

func TestIsGround(t *testing.T) {
	require := require.New(t)
	vf := NewVarFactory()
	v := vf.Fresh("V")

	require.True(IsGround(Atom{Value: int64(1)}, EmptyBindings))
	require.False(IsGround(v, EmptyBindings))
	require.False(IsGround(Tuple{Elems: []Term{Atom{Value: int64(1)}, v}}, EmptyBindings))

	binds := EmptyBindings.Extend(v, Atom{Value: int64(2)})
	require.True(IsGround(Tuple{Elems: []Term{Atom{Value: int64(1)}, v}}, binds))
}
