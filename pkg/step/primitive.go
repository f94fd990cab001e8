package step

// PrimitiveFunc is the raw primitive-task calling convention (§4.7): it
// receives args already resolved (deref'd, state/local references
// replaced) by the Call step, and conforms exactly to Task.Call.
type PrimitiveFunc func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool

// PrimitiveTask adapts a PrimitiveFunc to the Task interface, giving it a
// name for diagnostics and lookup.
type PrimitiveTask struct {
	TaskName string
	Fn       PrimitiveFunc
}

func (p *PrimitiveTask) Name() string { return p.TaskName }

func (p *PrimitiveTask) Call(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
	return p.Fn(out, env, args, pred, cont)
}

// NewPrimitive wraps a raw PrimitiveFunc.
func NewPrimitive(name string, fn PrimitiveFunc) *PrimitiveTask {
	return &PrimitiveTask{TaskName: name, Fn: fn}
}

// argErr is a shorthand for raising a well-formed ArgumentCount/Type/
// Instantiation ExecError from inside a primitive's wrapper.
func argErr(kind ErrorKind, env *Env, out *TextBuffer, name string, msg string) *ExecError {
	return NewExecError(kind, env, out, "%s: %s", name, msg)
}

// Predicate wraps a deterministic N-ary predicate: succeeds (continuing
// once) iff fn reports true, never offering a second solution.
func Predicate(name string, arity int, fn func(args []Term, env *Env) bool) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		if len(args) != arity {
			panic(argErr(ArgumentCount, env, out, name, "wrong arity"))
		}
		if !fn(args, env) {
			return false
		}
		return cont(out, env)
	})
}

// Function wraps a deterministic N-ary function: fn computes a result
// from the first arity-1 args, which is then unified with the final
// ("out") argument. Fails if fn reports !ok, or if unification fails.
func Function(name string, arity int, fn func(args []Term, env *Env) (Term, bool)) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		if len(args) != arity {
			panic(argErr(ArgumentCount, env, out, name, "wrong arity"))
		}
		val, ok := fn(args[:arity-1], env)
		if !ok {
			return false
		}
		binds, ok := Unify(args[arity-1], val, env.Binds)
		if !ok {
			return false
		}
		return cont(out, env.WithBindings(binds))
	})
}

// TextMatcher wraps a deterministic text-producing/matching primitive: in
// write mode it emits tokens and continues; in read mode it unifies the
// expected tokens against the next input tokens (§4.7's "deterministic
// text matcher").
func TextMatcher(name string, tokensFor func(args []Term, env *Env) []Token) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		toks := tokensFor(args, env)
		if out.write {
			return cont(out.Append(toks...), env)
		}
		next, ok := out.MatchTokens(toks)
		if !ok {
			return false
		}
		return cont(next, env)
	})
}

// Relation wraps a nondeterministic relation: gen is called once to
// produce an iterator of binding lists, one per alternative solution.
// Relation tries each in turn exactly like BranchStep tries alternatives.
func Relation(name string, gen func(args []Term, env *Env) []*BindingList) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		for _, binds := range gen(args, env) {
			if cont(out, env.WithBindings(binds)) {
				return true
			}
		}
		return false
	})
}

// ModedPredicate wraps a general predicate with moded cases: whichMode
// inspects args (after deref) to decide which of the case functions in
// cases to run, keyed by an opaque mode label. This models primitives
// like "=" or list membership, whose behavior differs depending on which
// arguments are already instantiated (§4.7).
func ModedPredicate(name string, whichMode func(args []Term, env *Env) string, cases map[string]func(args []Term, env *Env, out *TextBuffer, cont Continuation) bool) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		mode := whichMode(args, env)
		fn, ok := cases[mode]
		if !ok {
			panic(argErr(ArgumentInstantiation, env, out, name, "no case for mode "+mode))
		}
		return fn(args, env, out, cont)
	})
}
