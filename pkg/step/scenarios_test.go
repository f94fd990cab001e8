package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildChoiceTask builds a two-method task T(1) :- emit "a" and
// T(2) :- emit "b", used by TestBacktrackingAcrossMethods (§8 scenario 2).
func buildChoiceTask() *CompoundTask {
	t := &CompoundTask{TaskName: "T"}
	t.Methods = []*Method{
		{Task: t, Head: []Term{Atom{Value: int64(1)}}, Body: NewEmitStep(nil, Str("a"))},
		{Task: t, Head: []Term{Atom{Value: int64(2)}}, Body: NewEmitStep(nil, Str("b"))},
	}
	return t
}

func TestBacktrackingAcrossMethods(t *testing.T) {
	require := require.New(t)

	choice := buildChoiceTask()
	m := &Module{Tasks: map[string]Task{"T": choice}}

	env := NewEnv(m)
	x := env.Vars.Fresh("X")
	listVar := env.Vars.Fresh("L")

	findAll := FindAll(x, CallExpr{Target: TaskRef{Task: choice}, Args: []Term{x}}, listVar)

	out := NewWriteBuffer()
	ok := findAll.Call(out, env, nil, env.Frame, func(out2 *TextBuffer, env2 *Env) bool {
		resolved := env2.Deref(listVar)
		require.Equal("(1 . (2 . ()))", resolved.String())
		require.Empty(out2.All())
		return true
	})
	require.True(ok)
}

func TestNotPreservesState(t *testing.T) {
	require := require.New(t)

	sKey := &StateKey{Name: "S"}
	falseTask := Predicate("false_predicate", 0, func(args []Term, env *Env) bool { return false })
	m := &Module{Tasks: map[string]Task{"false_predicate": falseTask}}
	env := NewEnv(m)
	env = env.WithState(env.State.Bind(sKey, Atom{Value: int64(1)}))

	notStep := Not(CallExpr{Target: TaskRef{Task: falseTask}})

	out := NewWriteBuffer()
	ok := notStep.Call(out, env, nil, env.Frame, func(out2 *TextBuffer, env2 *Env) bool {
		val := env2.State.TryGet(sKey)
		require.Equal(Atom{Value: int64(1)}, val)
		return true
	})
	require.True(ok)
}

func TestOnceCommitsToFirstSolution(t *testing.T) {
	require := require.New(t)

	g := &CompoundTask{TaskName: "G"}
	g.Methods = []*Method{
		{Task: g, Head: []Term{Atom{Value: int64(1)}}},
		{Task: g, Head: []Term{Atom{Value: int64(2)}}},
		{Task: g, Head: []Term{Atom{Value: int64(3)}}},
	}
	m := &Module{Tasks: map[string]Task{"G": g}}
	env := NewEnv(m)
	x := env.Vars.Fresh("X")

	once := Once(CallExpr{Target: TaskRef{Task: g}, Args: []Term{x}})

	out := NewWriteBuffer()
	attempts := 0
	once.Call(out, env, nil, env.Frame, func(out2 *TextBuffer, env2 *Env) bool {
		require.Equal(Atom{Value: int64(1)}, env2.Deref(x))
		attempts++
		return false // force Once's caller to backtrack past it
	})
	require.Equal(1, attempts)
}

func TestKBExclusiveOverwrite(t *testing.T) {
	require := require.New(t)

	kb := NewKB()
	pathC := []PathElem{
		{Sep: NonExclusive, Key: Atom{Value: "a"}},
		{Sep: NonExclusive, Key: Atom{Value: "b"}},
		{Sep: Exclusive, Key: Atom{Value: "c"}},
	}
	pathD := []PathElem{
		{Sep: NonExclusive, Key: Atom{Value: "a"}},
		{Sep: NonExclusive, Key: Atom{Value: "b"}},
		{Sep: Exclusive, Key: Atom{Value: "d"}},
	}

	kb, err := kb.Write(pathC)
	require.NoError(err)
	require.NotEmpty(kb.Lookup(pathC, EmptyBindings))

	kb, err = kb.Write(pathD)
	require.NoError(err)

	require.Empty(kb.Lookup(pathC, EmptyBindings))
	require.NotEmpty(kb.Lookup(pathD, EmptyBindings))

	dump := kb.Dump()
	require.Contains(dump, "/a/b!d")
	require.NotContains(dump, "/a/b!c")
}

func TestKBRoundtrip(t *testing.T) {
	require := require.New(t)

	kb := NewKB()
	path := []PathElem{{Sep: NonExclusive, Key: Atom{Value: "likes"}}, {Sep: NonExclusive, Key: Atom{Value: "pizza"}}}

	kb, err := kb.Write(path)
	require.NoError(err)
	require.NotEmpty(kb.Lookup(path, EmptyBindings))

	kb, existed := kb.Delete(path)
	require.True(existed)
	require.Empty(kb.Lookup(path, EmptyBindings))
}

func TestTreeSearchFindsGoalViaUtility(t *testing.T) {
	require := require.New(t)

	children := map[int64][]int64{0: {1, 2}, 2: {3}}

	env := NewEnv(&Module{})
	current := env.Vars.Fresh("Current")
	child := env.Vars.Fresh("Child")
	score := env.Vars.Fresh("Score")

	nextTask := Relation("NextNode", func(args []Term, e *Env) []*BindingList {
		node, ok := numericValue(e.Deref(current))
		if !ok {
			return nil
		}
		var out []*BindingList
		for _, c := range children[int64(node)] {
			binds, ok := Unify(child, Atom{Value: c}, e.Binds)
			if ok {
				out = append(out, binds)
			}
		}
		return out
	})
	goalTask := Predicate("GoalNode", 0, func(args []Term, e *Env) bool {
		v, ok := numericValue(e.Deref(current))
		return ok && int64(v) == 3
	})
	utilTask := Function("NodeUtility", 1, func(args []Term, e *Env) (Term, bool) {
		v, ok := numericValue(e.Deref(current))
		if !ok {
			return nil, false
		}
		diff := v - 3
		if diff < 0 {
			diff = -diff
		}
		return Atom{Value: -diff}, true
	})

	search := TreeSearch(
		Atom{Value: int64(0)},
		current, child, score,
		CallExpr{Target: TaskRef{Task: nextTask}},
		CallExpr{Target: TaskRef{Task: goalTask}},
		CallExpr{Target: TaskRef{Task: utilTask}, Args: []Term{score}},
	)

	out := NewWriteBuffer()
	found := search.Call(out, env, nil, env.Frame, func(out2 *TextBuffer, env2 *Env) bool {
		require.Equal(int64(3), int64(mustNumeric(env2.Deref(current))))
		return true
	})
	require.True(found)
}

func mustNumeric(t Term) float64 {
	v, _ := numericValue(t)
	return v
}
