package step

import (
	"fmt"
	"math/rand"
)

// Task is a named callable: a user-defined compound task or a primitive
// (§4.5, §4.7). Call resolves args (already dereferenced/resolved by the
// caller), invokes the task's logic, and returns through cont exactly
// like a Step does.
type Task interface {
	Name() string
	Call(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool
}

// Method is one clause of a compound task: an argument-pattern head
// (terms that may contain LocalVarRef placeholders), a local-variable
// slot count, and a body step chain (§3).
type Method struct {
	Task       *CompoundTask
	Head       []Term
	NumLocals  int
	LocalNames []string
	Body       Step
	Source     string
	Weight     float64
}

// CompoundTask is a user-defined task with one or more methods, tried in
// order (or shuffled) on each call (§4.5). A task succeeds when any
// method succeeds and fails once every method has been tried without
// success.
type CompoundTask struct {
	TaskName string
	Methods  []*Method

	// Deterministic tasks never try a method beyond the first whose head
	// unifies and whose body succeeds at least once: no further methods,
	// and backtracking never reopens the choice of method.
	Deterministic bool

	// MustSucceed tasks turn "all methods tried without success" into a
	// fatal error instead of plain logical failure.
	MustSucceed bool

	Shuffled bool
	Rand     *rand.Rand

	MaxDepth int // 0 means use MaxDepth
}

func (t *CompoundTask) Name() string { return t.TaskName }

// Validate checks a task's method table for problems that would make
// every call to it fail or panic, without running anything: a method
// whose Task back-pointer doesn't match t, or whose LocalNames overruns
// NumLocals. It batches every problem found rather than stopping at the
// first, via ValidationErrors (§6's "validating a whole method table
// before running it").
func (t *CompoundTask) Validate() error {
	var errs ValidationErrors
	if len(t.Methods) == 0 {
		errs.Add(fmt.Errorf("task %s: no methods defined", t.TaskName))
	}
	for i, m := range t.Methods {
		if m.Task != t {
			errs.Add(fmt.Errorf("task %s: method %d's Task back-pointer does not match", t.TaskName, i))
		}
		if len(m.LocalNames) > m.NumLocals {
			errs.Add(fmt.Errorf("task %s: method %d (%s) has %d local names but only %d locals",
				t.TaskName, i, m.Source, len(m.LocalNames), m.NumLocals))
		}
	}
	return errs.ErrorOrNil()
}

// Validate checks every task in the module, collecting all problems
// found across the whole table rather than failing on the first.
func (m *Module) Validate() error {
	var errs ValidationErrors
	for name, task := range m.Tasks {
		ct, ok := task.(*CompoundTask)
		if !ok {
			continue
		}
		if err := ct.Validate(); err != nil {
			errs.Add(fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs.ErrorOrNil()
}

func (t *CompoundTask) methodOrder() []int {
	idx := make([]int, len(t.Methods))
	for i := range idx {
		idx[i] = i
	}
	if t.Shuffled && t.Rand != nil {
		t.Rand.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return idx
}

// Call tries each method in turn: allocate fresh locals, push a frame,
// unify args against the head, and on a match run the body. A head
// mismatch moves on to the next method without consuming any of the
// caller's continuation or modifying the caller's environment — the
// caller always retries with exactly its original env (§3's "a method
// never observes a partial write from a failed sibling branch").
func (t *CompoundTask) Call(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
	for _, i := range t.methodOrder() {
		m := t.Methods[i]
		if len(m.Head) != len(args) {
			continue
		}

		locals := make([]*Var, m.NumLocals)
		for j := range locals {
			name := ""
			if j < len(m.LocalNames) {
				name = m.LocalNames[j]
			}
			locals[j] = env.Vars.Fresh(name)
		}

		frame, ferr := env.Frame.Push(m, args, pred, env.Binds, t.MaxDepth)
		if ferr != nil {
			panic(ferr) // stack overflow is fatal and non-local (§7)
		}
		frame.Locals = locals
		callEnv := env.WithFrame(frame)

		binds := callEnv.Binds
		ok := true
		for k := range args {
			var next *BindingList
			next, ok = Unify(args[k], callEnv.Resolve(m.Head[k]), binds)
			if !ok {
				break
			}
			binds = next
		}
		if !ok {
			continue
		}
		callEnv = callEnv.WithBindings(binds)

		bodySucceeded := false
		succeeded := RunChain(m.Body, out, callEnv, frame, func(out2 *TextBuffer, env2 *Env) bool {
			// Returning to the caller's frame, but keeping the callee's
			// bindings/state/output: the call succeeded as this method.
			bodySucceeded = true
			resumed := env2.WithFrame(env.Frame)
			return cont(out2, resumed)
		})
		if succeeded {
			return true
		}
		if t.Deterministic && bodySucceeded {
			break
		}
	}
	if t.MustSucceed {
		panic(NewExecError(CallFailed, env, out, "task %s must succeed but all methods failed", t.TaskName))
	}
	return false
}
