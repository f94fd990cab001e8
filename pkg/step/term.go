// Package step provides the execution core of a small interpreted language
// for text generation combined with logic programming. It consumes
// pre-built Method and Step objects (the surface-syntax parser and file
// loader are separate, out-of-scope collaborators) and runs them: unifying
// call arguments against method heads, threading a persistent binding
// environment through a step-chain evaluator, and backtracking on failure.
package step

import "fmt"

// Term is any value the interpreter manipulates: an atom, a logic variable,
// a compile-time local/state variable reference, a tuple, a cons pair, a
// feature structure, or a first-class task reference. Term is a closed sum
// type; switch on the concrete type rather than adding new variants.
type Term interface {
	termMarker()
	String() string
}

// Atom wraps a primitive Go value: string, int64, float64, bool, or nil
// (representing the language's null). Atoms compare by value.
type Atom struct {
	Value interface{}
}

func (Atom) termMarker() {}

func (a Atom) String() string {
	if a.Value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", a.Value)
}

// Equal reports whether two atoms carry the same underlying value.
func (a Atom) Equal(o Atom) bool {
	return a.Value == o.Value
}

// IsNull reports whether this atom is the language's null value.
func (a Atom) IsNull() bool { return a.Value == nil }

// Null is the atom representing the language's null/nothing value.
var Null = Atom{Value: nil}

// Var is a logic variable: an identity plus a monotonically increasing
// serial id used to break ties during unification (§4.1's "bind the
// higher-id variable to the lower-id one"). Variables exist only within
// the frame that created them; a Var is unbound unless a BindingList cell
// aliases it.
type Var struct {
	id   int64
	Name string // source name, for diagnostics only
}

func (*Var) termMarker() {}

func (v *Var) String() string {
	if v.Name != "" {
		return fmt.Sprintf("?%s_%d", v.Name, v.id)
	}
	return fmt.Sprintf("?_%d", v.id)
}

// ID returns the variable's serial id, used as the unification tiebreak
// and nowhere else as a semantic value.
func (v *Var) ID() int64 { return v.id }

// VarFactory mints fresh logic variables with strictly increasing ids.
// NewEnv creates one VarFactory per top-level run, and every method call
// in that run mints its locals from it (see CompoundTask.Call), so ids
// stay ordered within a run; distinct top-level calls may share a factory or
// not, since the ordering rule only needs to hold within a single deref
// chain.
type VarFactory struct {
	next int64
}

// NewVarFactory creates a factory starting from id 1. 0 is reserved so
// that a zero-valued Var is detectably invalid.
func NewVarFactory() *VarFactory {
	return &VarFactory{next: 1}
}

// Fresh mints a new, unbound logic variable.
func (f *VarFactory) Fresh(name string) *Var {
	v := &Var{id: f.next, Name: name}
	f.next++
	return v
}

// LocalVarRef is a compile-time reference into a method's local-variable
// table: a name (for diagnostics) plus a slot index. It is resolved to the
// live *Var in the current Frame before unification or evaluation ever
// sees it.
type LocalVarRef struct {
	Name string
	Slot int
}

func (LocalVarRef) termMarker() {}

func (l LocalVarRef) String() string { return fmt.Sprintf("local:%s", l.Name) }

// StateKey identifies one state-variable (global or fluent) by identity,
// not by name: two StateKey values naming the same global must be the
// same *StateKey pointer (§6, "State keys are identified by object
// identity of the key").
type StateKey struct {
	Name    string
	Default func() Term // zero value: unbound sentinel is used instead
}

// StateVarRef is a term that refers to a state-variable cell.
type StateVarRef struct {
	Key *StateKey
}

func (StateVarRef) termMarker() {}

func (s StateVarRef) String() string { return fmt.Sprintf("state:%s", s.Key.Name) }

// Tuple is a fixed-length ordered sequence of terms.
type Tuple struct {
	Elems []Term
}

func (Tuple) termMarker() {}

func (t Tuple) String() string {
	out := "("
	for i, e := range t.Elems {
		if i > 0 {
			out += ", "
		}
		out += e.String()
	}
	return out + ")"
}

// Pair is a cons cell: Head/Tail, supporting both proper lists (Tail
// eventually reaches Nil) and improper ones.
type Pair struct {
	Head, Tail Term
}

func (Pair) termMarker() {}

func (p Pair) String() string { return fmt.Sprintf("(%s . %s)", p.Head, p.Tail) }

// Nil is the empty list atom, the proper-list terminator.
var Nil = Atom{Value: "()"}

// IsNilTerm reports whether t denotes the empty list.
func IsNilTerm(t Term) bool {
	a, ok := t.(Atom)
	return ok && a.Value == Nil.Value
}

// List builds a proper cons-list from the given terms.
func List(terms ...Term) Term {
	result := Term(Nil)
	for i := len(terms) - 1; i >= 0; i-- {
		result = Pair{Head: terms[i], Tail: result}
	}
	return result
}

// FeatureStructure maps feature-name atoms to terms. Feature structures
// unify by intersecting/union-ing features (§4.1): shared features unify
// pairwise, and a feature present on only one side places no constraint
// on the other.
type FeatureStructure struct {
	Features map[string]Term
}

func (FeatureStructure) termMarker() {}

func (f FeatureStructure) String() string {
	out := "{"
	first := true
	for k, v := range f.Features {
		if !first {
			out += ", "
		}
		out += k + ": " + v.String()
		first = false
	}
	return out + "}"
}

// TokensTerm is a literal token sequence used as a Call step target
// (§4.6): calling it simply emits its tokens.
type TokensTerm struct {
	Tokens []Token
}

func (TokensTerm) termMarker() {}

func (t TokensTerm) String() string {
	out := ""
	for _, tok := range t.Tokens {
		if tok.Kind == Text {
			out += tok.Text
		}
	}
	return out
}

// CallExpr is a quoted, not-yet-invoked call: a target plus argument
// terms. Higher-order built-ins (Not, FindAll, Once, ...) take one or
// more CallExpr arguments and invoke them via Dispatch, rather than
// being wired into the step chain directly.
type CallExpr struct {
	Target Term
	Args   []Term
}

func (CallExpr) termMarker() {}

func (c CallExpr) String() string {
	out := c.Target.String() + "("
	for i, a := range c.Args {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ")"
}

// TaskRef is a first-class reference to a callable Task (compound or
// primitive), usable as an ordinary term (e.g. passed to PreviousCall, or
// invoked via the Call step's task branch).
type TaskRef struct {
	Task Task
}

func (TaskRef) termMarker() {}

func (t TaskRef) String() string {
	if t.Task == nil {
		return "<task:nil>"
	}
	return "<task:" + t.Task.Name() + ">"
}
