package step

// unboundState is the sentinel returned by TryGet when a state-variable
// has no override and no default provider.
var unboundState = Atom{Value: "#unbound-state"}

// IsUnboundState reports whether t is the unbound-state sentinel.
func IsUnboundState(t Term) bool {
	a, ok := t.(Atom)
	return ok && a == unboundState
}

// State is a persistent, copy-on-write mapping from state-variable keys
// to terms (§4.3). It backs both user globals and the engine's own state
// elements (the exclusion-logic KB root lives here under a reserved key).
// Updates return a new State that shares structure with the old one, so
// an older BindingEnvironment's State snapshot stays valid forever
// (§3's "State snapshots from older environments are always valid").
type State struct {
	overrides map[*StateKey]Term
}

// NewState returns an empty state: every key falls through to its own
// default provider.
func NewState() *State {
	return &State{overrides: nil}
}

// Bind returns a new State with k overridden to v, leaving the receiver
// unchanged.
func (s *State) Bind(k *StateKey, v Term) *State {
	next := make(map[*StateKey]Term, len(s.overrides)+1)
	for key, val := range s.overrides {
		next[key] = val
	}
	next[k] = v
	return &State{overrides: next}
}

// TryGet consults the override map, then k's default provider, then
// falls back to the unbound-state sentinel.
func (s *State) TryGet(k *StateKey) Term {
	if s != nil {
		if v, ok := s.overrides[k]; ok {
			return v
		}
	}
	if k.Default != nil {
		return k.Default()
	}
	return unboundState
}
