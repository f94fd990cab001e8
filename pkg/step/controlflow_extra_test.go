package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// genTask builds a CompoundTask with one method per value in vals, each
// unifying its single head argument with that value.
func genTask(name string, vals ...int64) *CompoundTask {
	g := &CompoundTask{TaskName: name}
	for _, v := range vals {
		g.Methods = append(g.Methods, &Method{Task: g, Head: []Term{Atom{Value: v}}})
	}
	return g
}

func TestForEachAccumulatesAcrossIterations(t *testing.T) {
	require := require.New(t)

	gen := genTask("Gen", 1, 2, 3)
	sKey := &StateKey{Name: "Sum"}

	body := &CompoundTask{TaskName: "Body"}
	body.Methods = []*Method{{
		Task: body,
		Head: []Term{LocalVarRef{Slot: 0}},
		NumLocals: 1,
		Body: NewAssignStep(nil, AssignTarget{StateKey: sKey}, func(env *Env) (Term, bool) {
			cur := env.State.TryGet(sKey)
			curN, _ := numericValue(cur)
			v, ok := numericValue(env.Deref(env.Resolve(LocalVarRef{Slot: 0})))
			if !ok {
				return nil, false
			}
			return Atom{Value: curN + v}, true
		}),
	}}

	m := &Module{Tasks: map[string]Task{"Gen": gen, "Body": body}}
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	forEach := ForEach(
		CallExpr{Target: TaskRef{Task: gen}, Args: []Term{x}},
		CallExpr{Target: TaskRef{Task: body}, Args: []Term{x}},
	)

	out := NewWriteBuffer()
	var finalState *State
	ok := forEach.Call(out, env, nil, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		finalState = e2.State
		return true
	})
	require.True(ok)
	total, _ := numericValue(finalState.TryGet(sKey))
	require.Equal(float64(6), total)
}

func TestImpliesFailsWholeOperationOnOneBadIteration(t *testing.T) {
	require := require.New(t)

	gen := genTask("Gen2", 1, 2, 3)
	body := Predicate("OnlyOne", 1, func(args []Term, env *Env) bool {
		v, _ := numericValue(env.Deref(args[0]))
		return v == 1
	})
	m := &Module{Tasks: map[string]Task{"Gen2": gen, "OnlyOne": body}}
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	implies := Implies(
		CallExpr{Target: TaskRef{Task: gen}, Args: []Term{x}},
		CallExpr{Target: TaskRef{Task: body}, Args: []Term{x}},
	)

	out := NewWriteBuffer()
	ok := implies.Call(out, env, nil, env.Frame, func(*TextBuffer, *Env) bool { return true })
	require.False(ok)
}

func TestImpliesSucceedsWhenAllIterationsSucceed(t *testing.T) {
	require := require.New(t)

	gen := genTask("Gen3", 1, 2, 3)
	body := Predicate("Positive", 1, func(args []Term, env *Env) bool {
		v, _ := numericValue(env.Deref(args[0]))
		return v > 0
	})
	m := &Module{Tasks: map[string]Task{"Gen3": gen, "Positive": body}}
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	implies := Implies(
		CallExpr{Target: TaskRef{Task: gen}, Args: []Term{x}},
		CallExpr{Target: TaskRef{Task: body}, Args: []Term{x}},
	)

	out := NewWriteBuffer()
	ok := implies.Call(out, env, nil, env.Frame, func(*TextBuffer, *Env) bool { return true })
	require.True(ok)
}

func TestMaxAndMinPickExtremeSolution(t *testing.T) {
	require := require.New(t)

	gen := genTask("Scores", 3, 1, 2)
	m := &Module{Tasks: map[string]Task{"Scores": gen}}
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	max := Max(CallExpr{Target: TaskRef{Task: gen}, Args: []Term{x}}, x)
	out := NewWriteBuffer()
	ok := max.Call(out, env, nil, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		require.Equal(Atom{Value: int64(3)}, e2.Deref(x))
		return true
	})
	require.True(ok)

	min := Min(CallExpr{Target: TaskRef{Task: gen}, Args: []Term{x}}, x)
	ok = min.Call(out, env, nil, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		require.Equal(Atom{Value: int64(1)}, e2.Deref(x))
		return true
	})
	require.True(ok)
}

func TestSaveTextCapturesEmittedTokensWithoutAppendingOutward(t *testing.T) {
	require := require.New(t)

	emit := &CompoundTask{TaskName: "Emitter"}
	emit.Methods = []*Method{{Task: emit, Body: NewEmitStep(nil, Str("hi"))}}
	m := &Module{Tasks: map[string]Task{"Emitter": emit}}
	env := NewEnv(m)
	r := env.Vars.Fresh("R")

	save := SaveText(CallExpr{Target: TaskRef{Task: emit}}, r)
	out := NewWriteBuffer()
	ok := save.Call(out, env, nil, env.Frame, func(o2 *TextBuffer, e2 *Env) bool {
		require.Empty(o2.All())
		require.Equal("(hi . ())", e2.Deref(r).String())
		return true
	})
	require.True(ok)
}

func TestParseSucceedsOnlyWhenInputFullyConsumed(t *testing.T) {
	require := require.New(t)

	matchHi := TextMatcher("MatchHi", func(args []Term, env *Env) []Token { return []Token{Str("hi")} })
	m := &Module{Tasks: map[string]Task{"MatchHi": matchHi}}
	env := NewEnv(m)

	parse := Parse(CallExpr{Target: TaskRef{Task: matchHi}}, List(Atom{Value: "hi"}))
	out := NewWriteBuffer()
	ok := parse.Call(out, env, nil, env.Frame, func(*TextBuffer, *Env) bool { return true })
	require.True(ok)

	parseExtra := Parse(CallExpr{Target: TaskRef{Task: matchHi}}, List(Atom{Value: "hi"}, Atom{Value: "there"}))
	ok = parseExtra.Call(out, env, nil, env.Frame, func(*TextBuffer, *Env) bool { return true })
	require.False(ok)
}

func TestPreviousCallFindsEnclosingGoal(t *testing.T) {
	require := require.New(t)

	inner := &CompoundTask{TaskName: "Inner"}
	outer := &CompoundTask{TaskName: "Outer"}

	pattern := Tuple{Elems: []Term{Atom{Value: "Outer"}, Atom{Value: "hello"}}}
	var sawOuter bool
	innerBody := NewPrimitive("check", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		prev := PreviousCall(pattern)
		return prev.Call(out, env, nil, pred, func(o2 *TextBuffer, e2 *Env) bool {
			sawOuter = true
			return cont(o2, e2)
		})
	})
	inner.Methods = []*Method{{Task: inner, Body: NewCallStep(nil, TaskRef{Task: innerBody})}}
	outer.Methods = []*Method{{
		Task: outer,
		Head: []Term{LocalVarRef{Slot: 0}},
		NumLocals: 1,
		Body: NewCallStep(nil, TaskRef{Task: inner}),
	}}

	m := &Module{Tasks: map[string]Task{"Outer": outer, "Inner": inner}}
	_, ok := Run(m, "Outer", Atom{Value: "hello"})
	require.True(ok)
	require.True(sawOuter)
}

func TestFindFirstNUniqueStopsEarly(t *testing.T) {
	require := require.New(t)

	gen := genTask("ManyVals", 1, 1, 2, 2, 3, 3)
	m := &Module{Tasks: map[string]Task{"ManyVals": gen}}
	env := NewEnv(m)
	x := env.Vars.Fresh("X")
	listVar := env.Vars.Fresh("L")

	findFirst := FindFirstNUnique(2, x, CallExpr{Target: TaskRef{Task: gen}, Args: []Term{x}}, listVar)
	out := NewWriteBuffer()
	ok := findFirst.Call(out, env, nil, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		require.Equal("(1 . (2 . ()))", e2.Deref(listVar).String())
		return true
	})
	require.True(ok)
}
