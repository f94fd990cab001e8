package step

// CallStep resolves Target and Args and dispatches by the target's
// runtime shape (§4.6). This is the single most polymorphic step kind:
// the same syntax calls a task, emits a literal, queries a mapping or
// list relationally, or asserts a boolean, depending only on what the
// target derefs to at run time.
type CallStep struct {
	link
	Target Term
	Args   []Term
}

func NewCallStep(next Step, target Term, args ...Term) *CallStep {
	return &CallStep{link: link{Next: next}, Target: target, Args: args}
}

func (s *CallStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	target := env.Deref(env.Resolve(s.Target))
	args := make([]Term, len(s.Args))
	for i, a := range s.Args {
		args[i] = env.ResolveDeep(a)
	}
	return Dispatch(target, out, env, args, pred, cont)
}

// Dispatch implements the Call step's target-shape switch (§4.6) as a
// standalone function so higher-order built-ins (Not, FindAll, Once, ...)
// can invoke an already-resolved call target the same way CallStep does.
func Dispatch(target Term, out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
	Logger().Named("dispatch").Trace("call", "target", target, "args", len(args))
	switch t := target.(type) {
	case TaskRef:
		if t.Task == nil {
			panic(NewExecError(UndefinedTask, env, out, "call to nil task reference"))
		}
		return t.Task.Call(out, env, args, pred, cont)

	case TokensTerm:
		return cont(out.Append(t.Tokens...), env)

	case FeatureStructure:
		return dispatchMapping(t, out, env, args, cont)

	case Pair:
		return dispatchSequence(t, out, env, args, cont)

	case *Var:
		panic(NewExecError(UndefinedTask, env, out, "call target is an unbound variable"))

	case Atom:
		if t.IsNull() {
			panic(NewExecError(UndefinedTask, env, out, "call target is null"))
		}
		if b, ok := t.Value.(bool); ok {
			if len(args) != 0 {
				panic(argErr(ArgumentCount, env, out, "<boolean>", "boolean call target takes no arguments"))
			}
			if !b {
				return false
			}
			return cont(out, env)
		}
		if IsNilTerm(t) {
			return dispatchSequence(t, out, env, args, cont)
		}
		if len(args) == 0 {
			if env.Module != nil && env.Module.Mention != nil {
				return env.Module.Mention(t, out, env, cont)
			}
			return cont(out.Append(Str(t.String())), env)
		}
		panic(NewExecError(UndefinedTask, env, out, "value %s is not callable with arguments", t))

	default:
		panic(NewExecError(UndefinedTask, env, out, "value %s is not callable", target.String()))
	}
}

// dispatchMapping treats a feature structure as a 2-arg key<->value
// relation: if the key argument is ground, look up its value; if the key
// is unbound but the value is ground, enumerate every matching key; if
// both are unbound, enumerate every (key, value) pair.
func dispatchMapping(fs FeatureStructure, out *TextBuffer, env *Env, args []Term, cont Continuation) bool {
	if len(args) != 2 {
		panic(argErr(ArgumentCount, env, out, "<mapping>", "mapping call target takes exactly 2 arguments"))
	}
	keyArg, valArg := args[0], args[1]

	if !IsUnbound(keyArg, env.Binds) {
		keyAtom, ok := keyArg.(Atom)
		if !ok {
			return false
		}
		val, ok := fs.Features[toFeatureName(keyAtom)]
		if !ok {
			return false
		}
		binds, ok := Unify(valArg, val, env.Binds)
		if !ok {
			return false
		}
		return cont(out, env.WithBindings(binds))
	}

	for name, val := range fs.Features {
		keyTerm := Term(Atom{Value: name})
		binds, ok := Unify(keyArg, keyTerm, env.Binds)
		if !ok {
			continue
		}
		binds, ok = Unify(valArg, val, binds)
		if !ok {
			continue
		}
		if cont(out, env.WithBindings(binds)) {
			return true
		}
	}
	return false
}

func toFeatureName(a Atom) string {
	if s, ok := a.Value.(string); ok {
		return s
	}
	return a.String()
}

// dispatchSequence treats an ordered sequence (cons chain, possibly
// Nil) as a 1-arg "member" relation: enumerate elements of the list,
// unifying each against the single argument in turn.
func dispatchSequence(t Term, out *TextBuffer, env *Env, args []Term, cont Continuation) bool {
	if len(args) != 1 {
		panic(argErr(ArgumentCount, env, out, "<sequence>", "sequence call target takes exactly 1 argument"))
	}
	elem := args[0]
	cur := t
	for {
		cur = env.Deref(cur)
		p, ok := cur.(Pair)
		if !ok {
			return false
		}
		binds, ok := Unify(elem, p.Head, env.Binds)
		if ok && cont(out, env.WithBindings(binds)) {
			return true
		}
		cur = p.Tail
	}
}
