package step

// Module is the set of tasks a program defines, keyed by name. It is
// supplied by the (out-of-scope) loader; the core only ever reads it.
type Module struct {
	Tasks map[string]Task

	// Mention, if set, is invoked by the Call step (§4.6) when the call
	// target is an arbitrary zero-arity value with no other call shape
	// (not a task, mapping, sequence, or boolean). If nil, the Call step
	// falls back to stringifying the value and emitting it as text.
	Mention func(value Term, out *TextBuffer, env *Env, cont Continuation) bool
}

// Lookup returns the task named name, or nil if undefined.
func (m *Module) Lookup(name string) Task {
	if m == nil {
		return nil
	}
	return m.Tasks[name]
}

// Env is the immutable binding environment threaded through every
// operation (§3): module, current frame, binding list, and state. Every
// "mutation" is really the construction of a new Env; nothing here is
// ever mutated in place, which is what makes backtracking by reference
// ("use the previous environment") sound.
type Env struct {
	Module *Module
	Frame  *Frame
	Binds  *BindingList
	State  *State
	Vars   *VarFactory
}

// NewEnv creates the environment for a fresh top-level call.
func NewEnv(m *Module) *Env {
	return &Env{
		Module: m,
		Frame:  NewRootFrame(),
		Binds:  EmptyBindings,
		State:  NewState(),
		Vars:   NewVarFactory(),
	}
}

// WithBindings returns a copy of e with Binds replaced.
func (e *Env) WithBindings(b *BindingList) *Env {
	next := *e
	next.Binds = b
	return &next
}

// WithState returns a copy of e with State replaced.
func (e *Env) WithState(s *State) *Env {
	next := *e
	next.State = s
	return &next
}

// WithFrame returns a copy of e with Frame replaced.
func (e *Env) WithFrame(f *Frame) *Env {
	next := *e
	next.Frame = f
	return &next
}

// Deref dereferences t against e's current binding list.
func (e *Env) Deref(t Term) Term { return Deref(t, e.Binds) }

// Resolve fully resolves a term for evaluation purposes: LocalVarRef is
// replaced by the live *Var from the current frame's Locals, StateVarRef
// is replaced by the term currently held in State, and everything else
// (after one level) is returned as-is. Resolve does not recurse into
// Tuple/Pair/FeatureStructure children; callers that need a fully
// resolved structure should walk it themselves with ResolveDeep.
func (e *Env) Resolve(t Term) Term {
	switch v := t.(type) {
	case LocalVarRef:
		if e.Frame != nil && v.Slot >= 0 && v.Slot < len(e.Frame.Locals) {
			return e.Frame.Locals[v.Slot]
		}
		return t
	case StateVarRef:
		return e.State.TryGet(v.Key)
	default:
		return t
	}
}

// ResolveDeep recursively resolves LocalVarRef/StateVarRef occurrences
// anywhere within t, then dereferences the result.
func (e *Env) ResolveDeep(t Term) Term {
	t = e.Resolve(t)
	t = e.Deref(t)
	switch v := t.(type) {
	case Tuple:
		elems := make([]Term, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = e.ResolveDeep(el)
		}
		return Tuple{Elems: elems}
	case Pair:
		return Pair{Head: e.ResolveDeep(v.Head), Tail: e.ResolveDeep(v.Tail)}
	case FeatureStructure:
		feats := make(map[string]Term, len(v.Features))
		for k, el := range v.Features {
			feats[k] = e.ResolveDeep(el)
		}
		return FeatureStructure{Features: feats}
	default:
		return t
	}
}
