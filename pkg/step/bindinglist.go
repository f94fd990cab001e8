package step

// BindingList is a persistent singly-linked list of (variable, value)
// cells. Cells are never mutated; extending a BindingList allocates one
// new cell that points at the previous list, which gives O(1) snapshot
// and restore for backtracking (§3: "Binding lists are append-only; no
// cell is ever rewritten").
type BindingList struct {
	v    *Var
	val  Term
	prev *BindingList
}

// EmptyBindings is the canonical empty binding list.
var EmptyBindings *BindingList = nil

// Extend returns a new BindingList with v bound to val, leaving the
// receiver untouched. Binding a variable to Null is permitted (§4.1).
func (b *BindingList) Extend(v *Var, val Term) *BindingList {
	return &BindingList{v: v, val: val, prev: b}
}

// lookup walks the chain for v's most recent binding, or returns
// (nil, false) if v is unbound in b.
func (b *BindingList) lookup(v *Var) (Term, bool) {
	for cell := b; cell != nil; cell = cell.prev {
		if cell.v.id == v.id {
			return cell.val, true
		}
	}
	return nil, false
}

// Deref follows the binding chain for a term until it reaches a
// non-variable value or an unbound variable. Deref always terminates
// because a variable may only ever alias a strictly lower-id variable
// (§3's acyclicity invariant), so the chain strictly shortens in id.
func Deref(t Term, b *BindingList) Term {
	for {
		v, ok := t.(*Var)
		if !ok {
			return t
		}
		val, bound := b.lookup(v)
		if !bound {
			return t
		}
		t = val
	}
}

// IsUnbound reports whether, after dereferencing, t is still an unbound
// logic variable.
func IsUnbound(t Term, b *BindingList) bool {
	_, ok := Deref(t, b).(*Var)
	return ok
}

// IsGround reports whether t contains no unbound variables anywhere in
// its structure, after full deref.
func IsGround(t Term, b *BindingList) bool {
	t = Deref(t, b)
	switch v := t.(type) {
	case *Var:
		return false
	case Tuple:
		for _, e := range v.Elems {
			if !IsGround(e, b) {
				return false
			}
		}
		return true
	case Pair:
		return IsGround(v.Head, b) && IsGround(v.Tail, b)
	case FeatureStructure:
		for _, e := range v.Features {
			if !IsGround(e, b) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
