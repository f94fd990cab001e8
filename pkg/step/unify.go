package step

// Unify attempts to unify terms a and b under the input binding list in.
// On success it returns (out, true) where out is a superset of in's
// bindings (§8: "the resulting binding list is a strict superset, by
// chain prefix, of the input list"). On failure it returns (in, false);
// the caller must discard out in that case rather than use it.
func Unify(a, b Term, in *BindingList) (*BindingList, bool) {
	a = Deref(a, in)
	b = Deref(b, in)

	av, aIsVar := a.(*Var)
	bv, bIsVar := b.(*Var)

	switch {
	case aIsVar && bIsVar:
		if av.id == bv.id {
			return in, true
		}
		// Bind the higher-id variable to the lower-id one: guarantees
		// deref-chain termination and keeps older variables canonical.
		if av.id > bv.id {
			return in.Extend(av, bv), true
		}
		return in.Extend(bv, av), true

	case aIsVar:
		return in.Extend(av, b), true

	case bIsVar:
		return in.Extend(bv, a), true
	}

	return unifyNonVar(a, b, in)
}

func unifyNonVar(a, b Term, in *BindingList) (*BindingList, bool) {
	switch av := a.(type) {
	case Atom:
		bv, ok := b.(Atom)
		if !ok {
			return in, false
		}
		if av.IsNull() || bv.IsNull() {
			return in, av.IsNull() && bv.IsNull()
		}
		return in, av.Equal(bv)

	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return in, false
		}
		cur := in
		for i := range av.Elems {
			next, ok := Unify(av.Elems[i], bv.Elems[i], cur)
			if !ok {
				return in, false
			}
			cur = next
		}
		return cur, true

	case Pair:
		switch bv := b.(type) {
		case Pair:
			cur, ok := Unify(av.Head, bv.Head, in)
			if !ok {
				return in, false
			}
			return Unify(av.Tail, bv.Tail, cur)
		default:
			// A pair may unify with any other sequence-valued term by
			// promoting it to a pair chain (§4.1: "promote and unify
			// chains"). The only other sequence-valued term here is the
			// empty-list atom, which never matches a non-empty pair.
			return in, false
		}

	case FeatureStructure:
		bv, ok := b.(FeatureStructure)
		if !ok {
			return in, false
		}
		return unifyFeatures(av, bv, in)

	case *LocalVarRef, LocalVarRef, StateVarRef:
		// These compile-time references must be resolved to a live Var
		// or value before reaching Unify; seeing one here is a caller bug.
		return in, false

	case TaskRef:
		bv, ok := b.(TaskRef)
		if !ok {
			return in, false
		}
		return in, av.Task == bv.Task

	default:
		return in, false
	}
}

// unifyFeatures unifies two feature structures by unifying every feature
// present on both sides. A feature present on only one side places no
// constraint on the other (§4.1, "disjoint features"), so the two
// structures unify as the union of their features.
func unifyFeatures(a, b FeatureStructure, in *BindingList) (*BindingList, bool) {
	cur := in
	for name, av := range a.Features {
		bv, ok := b.Features[name]
		if !ok {
			continue
		}
		next, ok2 := Unify(av, bv, cur)
		if !ok2 {
			return in, false
		}
		cur = next
	}
	return cur, true
}
