package step

import "math/rand"

// Continuation is the success callback threaded through step evaluation:
// given the current output buffer and environment, it runs whatever
// comes after the current step and reports whether that succeeded.
// Returning false does not mean "error" — it is the normal mechanism
// that drives backtracking into earlier alternatives (§4.4).
type Continuation func(out *TextBuffer, env *Env) bool

// Step is one instruction in a method body's step chain (§3, §4.4).
// TryStep attempts this step against (out, env); on success it calls
// cont with the new output/environment and returns cont's result,
// threading changes forward rather than writing them back. On failure
// it returns false without ever calling cont. pred is the live
// predecessor (goal-chain) frame, passed through for reflective
// primitives.
type Step interface {
	TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool
	NextStep() Step
}

// RunChain threads execution through a step chain starting at chain,
// finally invoking final once the chain is exhausted. A nil chain
// immediately invokes final — this is how an empty method body (or the
// tail of any chain) behaves.
func RunChain(chain Step, out *TextBuffer, env *Env, pred *Frame, final Continuation) bool {
	if chain == nil {
		return final(out, env)
	}
	return chain.TryStep(out, env, func(out2 *TextBuffer, env2 *Env) bool {
		return RunChain(chain.NextStep(), out2, env2, pred, final)
	}, pred)
}

// link is embedded by every concrete step kind to hold the forward
// pointer of the step chain.
type link struct {
	Next Step
}

func (l link) NextStep() Step { return l.Next }

// EmitStep appends a literal token sequence to the output, then
// continues.
type EmitStep struct {
	link
	Tokens []Token
}

func NewEmitStep(next Step, tokens ...Token) *EmitStep {
	return &EmitStep{link: link{Next: next}, Tokens: tokens}
}

func (s *EmitStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	return cont(out.Append(s.Tokens...), env)
}

// Expr is an arithmetic/functional expression evaluated by AssignStep.
// Concrete expressions are plain Go functions of this shape supplied by
// whoever builds the step (this package defines none), so AssignStep
// stays decoupled from any particular expression grammar.
type Expr func(env *Env) (Term, bool)

// AssignTarget is either a state-variable key (global/fluent write) or a
// local-variable slot (logic binding) — AssignStep picks based on which
// is non-nil.
type AssignTarget struct {
	StateKey *StateKey
	Local    LocalVarRef
}

// AssignStep evaluates Expr; on a ground result it either binds a
// state-variable (producing a new State in env) or unifies a local
// variable with the value. It fails if the value is not ground (§4.4).
type AssignStep struct {
	link
	Target AssignTarget
	Value  Expr
}

func NewAssignStep(next Step, target AssignTarget, value Expr) *AssignStep {
	return &AssignStep{link: link{Next: next}, Target: target, Value: value}
}

func (s *AssignStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	val, ok := s.Value(env)
	if !ok {
		return false
	}
	if !IsGround(val, env.Binds) {
		return false
	}
	if s.Target.StateKey != nil {
		return cont(out, env.WithState(env.State.Bind(s.Target.StateKey, val)))
	}
	local := env.Resolve(s.Target.Local)
	binds, ok := Unify(local, val, env.Binds)
	if !ok {
		return false
	}
	return cont(out, env.WithBindings(binds))
}

// BranchStep holds N alternative step chains plus an optional chain that
// follows whichever alternative succeeds. It tries each alternative in
// order (or, if Shuffled, in a permutation drawn from Rand afresh on each
// try), succeeding on the first that succeeds (§4.4).
type BranchStep struct {
	link
	Alternatives []Step
	Shuffled     bool
	Rand         *rand.Rand // used only when Shuffled
}

func NewBranchStep(next Step, shuffled bool, rnd *rand.Rand, alts ...Step) *BranchStep {
	return &BranchStep{link: link{Next: next}, Alternatives: alts, Shuffled: shuffled, Rand: rnd}
}

func (s *BranchStep) order() []int {
	idx := make([]int, len(s.Alternatives))
	for i := range idx {
		idx[i] = i
	}
	if s.Shuffled && s.Rand != nil {
		s.Rand.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return idx
}

func (s *BranchStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	wrapped := func(out2 *TextBuffer, env2 *Env) bool {
		return RunChain(s.Next, out2, env2, pred, cont)
	}
	for _, i := range s.order() {
		if RunChain(s.Alternatives[i], out, env, pred, wrapped) {
			return true
		}
	}
	return false
}

// coolState is the per-site bookkeeping a CoolStep keeps in the State
// map under the step's Key, a *StateKey compared by pointer identity (no
// value-based stamp is used; see the CoolStep keying decision in
// DESIGN.md): a counter of remaining refusals. It backtracks correctly
// because it lives in State.
type coolState struct {
	remaining int // calls left to refuse; -1 means "refuse forever" (Once)
}

// CoolStep calls its Body at most once successfully, then refuses to run
// Body again for Duration subsequent calls to the same site — the step
// itself still succeeds and proceeds to Next during the cooldown, it
// just skips Body (Duration == -1 means "once": refuse forever after the
// first success). State lives in the env's State map keyed by Key and is
// only ever threaded forward through cont, so a failed branch's cooldown
// countdown vanishes along with everything else in that branch, exactly
// like every other step's state.
type CoolStep struct {
	link
	Key      *StateKey // unique per call site, stamped at construction time
	Duration int       // -1 = once (infinite), else cool-down count
	Body     Step
}

func NewCoolStep(next Step, key *StateKey, duration int, body Step) *CoolStep {
	return &CoolStep{link: link{Next: next}, Key: key, Duration: duration, Body: body}
}

func (s *CoolStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	raw := env.State.TryGet(s.Key)
	st, _ := raw.(Atom)
	cs, _ := st.Value.(*coolState)

	if cs != nil && cs.remaining != 0 {
		remaining := cs.remaining
		if remaining > 0 {
			remaining-- // one more cooled-down call crossed; -1 ("once") never counts down
		}
		env2 := env.WithState(env.State.Bind(s.Key, Atom{Value: &coolState{remaining: remaining}}))
		return RunChain(s.Next, out, env2, pred, cont)
	}

	next := func(out2 *TextBuffer, env2 *Env) bool {
		updated := &coolState{remaining: s.Duration}
		env3 := env2.WithState(env2.State.Bind(s.Key, Atom{Value: updated}))
		return RunChain(s.Next, out2, env3, pred, cont)
	}
	return RunChain(s.Body, out, env, pred, next)
}

// AddNextStep conses the value of Value onto the head of the
// collection-valued state variable Key (RemoveNextStep pops it again).
type AddNextStep struct {
	link
	Key   *StateKey
	Value Expr
}

func NewAddNextStep(next Step, key *StateKey, value Expr) *AddNextStep {
	return &AddNextStep{link: link{Next: next}, Key: key, Value: value}
}

func (s *AddNextStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	val, ok := s.Value(env)
	if !ok {
		return false
	}
	cur := env.State.TryGet(s.Key)
	if IsUnboundState(cur) {
		cur = Nil
	}
	updated := env.State.Bind(s.Key, Pair{Head: val, Tail: cur})
	return cont(out, env.WithState(updated))
}

// RemoveNextStep pops the head element off a collection-valued state
// variable, binding it (via unification) to Target.
type RemoveNextStep struct {
	link
	Key    *StateKey
	Target Term
}

func NewRemoveNextStep(next Step, key *StateKey, target Term) *RemoveNextStep {
	return &RemoveNextStep{link: link{Next: next}, Key: key, Target: target}
}

func (s *RemoveNextStep) TryStep(out *TextBuffer, env *Env, cont Continuation, pred *Frame) bool {
	cur := env.State.TryGet(s.Key)
	p, ok := cur.(Pair)
	if !ok {
		return false
	}
	binds, ok := Unify(s.Target, p.Head, env.Binds)
	if !ok {
		return false
	}
	updated := env.State.Bind(s.Key, p.Tail)
	return cont(out, env.WithBindings(binds).WithState(updated))
}
