package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// callCool runs a CoolStep chain once against env and returns the env it
// threads forward, plus whether the body ran this time.
func callCool(cool *CoolStep, env *Env, bodyRan *bool) (*Env, bool) {
	*bodyRan = false
	out := NewWriteBuffer()
	var final *Env
	ok := RunChain(cool, out, env, env.Frame, func(_ *TextBuffer, e2 *Env) bool {
		final = e2
		return true
	})
	return final, ok
}

func TestCoolStepRefusesForExactlyDurationCalls(t *testing.T) {
	require := require.New(t)

	key := &StateKey{Name: "greeted"}
	var ran int
	body := NewAssignStep(nil, AssignTarget{StateKey: &StateKey{Name: "scratch"}}, func(env *Env) (Term, bool) {
		ran++
		return Atom{Value: int64(1)}, true
	})
	cool := NewCoolStep(nil, key, 2, body)

	m := &Module{Tasks: map[string]Task{}}
	env := NewEnv(m)

	var bodyRan bool
	env, ok := callCool(cool, env, &bodyRan)
	require.True(ok)
	require.Equal(1, ran) // first call: body runs

	env, ok = callCool(cool, env, &bodyRan)
	require.True(ok)
	require.Equal(1, ran) // cooling down, call 1 of 2: body refused

	env, ok = callCool(cool, env, &bodyRan)
	require.True(ok)
	require.Equal(1, ran) // cooling down, call 2 of 2: body refused

	_, ok = callCool(cool, env, &bodyRan)
	require.True(ok)
	require.Equal(2, ran) // cooldown expired: body runs again
}

func TestCoolStepOnceRefusesForever(t *testing.T) {
	require := require.New(t)

	key := &StateKey{Name: "once"}
	var ran int
	body := NewAssignStep(nil, AssignTarget{StateKey: &StateKey{Name: "scratch2"}}, func(env *Env) (Term, bool) {
		ran++
		return Atom{Value: int64(1)}, true
	})
	cool := NewCoolStep(nil, key, -1, body)

	m := &Module{Tasks: map[string]Task{}}
	env := NewEnv(m)

	var bodyRan bool
	env, ok := callCool(cool, env, &bodyRan)
	require.True(ok)
	require.Equal(1, ran)

	for i := 0; i < 5; i++ {
		env, ok = callCool(cool, env, &bodyRan)
		require.True(ok)
		require.Equal(1, ran) // never runs again
	}
}
