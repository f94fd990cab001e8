package step

import (
	"math/rand"
	"strings"
)

// NewStandardModule builds a Module whose Tasks map is seeded with the
// primitive registry (§6): arithmetic comparisons, text-production
// specials, =/Different, type tests, list predicates, KB ops,
// randomization, and string/inflection utilities. The higher-order
// built-ins (Not, FindAll, Once, TreeSearch, ...) are not registered
// here; each is built per call site by its own constructor. An embedder
// typically copies this map and adds its own compound tasks on top.
func NewStandardModule() *Module {
	m := &Module{Tasks: map[string]Task{}}
	for _, t := range standardPrimitives() {
		m.Tasks[t.Name()] = t
	}
	return m
}

func reg(name string, arity int, fn func(args []Term, env *Env) bool) *PrimitiveTask {
	return Predicate(name, arity, fn)
}

func standardPrimitives() []Task {
	rnd := rand.New(rand.NewSource(1))

	var list []Task
	add := func(t Task) { list = append(list, t) }

	// Equality / difference.
	add(ModedPredicate("=", func(args []Term, env *Env) string { return "unify" },
		map[string]func(args []Term, env *Env, out *TextBuffer, cont Continuation) bool{
			"unify": func(args []Term, env *Env, out *TextBuffer, cont Continuation) bool {
				if len(args) != 2 {
					panic(argErr(ArgumentCount, env, out, "=", "wrong arity"))
				}
				binds, ok := Unify(args[0], args[1], env.Binds)
				if !ok {
					return false
				}
				return cont(out, env.WithBindings(binds))
			},
		}))
	add(reg("Different", 2, func(args []Term, env *Env) bool {
		_, ok := Unify(args[0], args[1], env.Binds)
		return !ok
	}))

	// Arithmetic comparisons.
	cmp := func(name string, ok func(a, b float64) bool) *PrimitiveTask {
		return reg(name, 2, func(args []Term, env *Env) bool {
			a, aok := numericValue(env.Deref(args[0]))
			b, bok := numericValue(env.Deref(args[1]))
			if !aok || !bok {
				panic(argErr(ArgumentType, env, nil, name, "both arguments must be numbers"))
			}
			return ok(a, b)
		})
	}
	add(cmp("Lt", func(a, b float64) bool { return a < b }))
	add(cmp("Gt", func(a, b float64) bool { return a > b }))
	add(cmp("Le", func(a, b float64) bool { return a <= b }))
	add(cmp("Ge", func(a, b float64) bool { return a >= b }))
	add(cmp("NumEqual", func(a, b float64) bool { return a == b }))

	add(Function("Plus", 3, func(args []Term, env *Env) (Term, bool) {
		a, aok := numericValue(env.Deref(args[0]))
		b, bok := numericValue(env.Deref(args[1]))
		if !aok || !bok {
			return nil, false
		}
		return Atom{Value: a + b}, true
	}))
	add(Function("Minus", 3, func(args []Term, env *Env) (Term, bool) {
		a, aok := numericValue(env.Deref(args[0]))
		b, bok := numericValue(env.Deref(args[1]))
		if !aok || !bok {
			return nil, false
		}
		return Atom{Value: a - b}, true
	}))
	add(Function("Times", 3, func(args []Term, env *Env) (Term, bool) {
		a, aok := numericValue(env.Deref(args[0]))
		b, bok := numericValue(env.Deref(args[1]))
		if !aok || !bok {
			return nil, false
		}
		return Atom{Value: a * b}, true
	}))

	// Type tests.
	add(reg("String", 1, func(args []Term, env *Env) bool {
		a, ok := env.Deref(args[0]).(Atom)
		if !ok {
			return false
		}
		_, ok = a.Value.(string)
		return ok
	}))
	add(reg("Number", 1, func(args []Term, env *Env) bool {
		_, ok := numericValue(env.Deref(args[0]))
		return ok
	}))
	add(reg("Tuple", 1, func(args []Term, env *Env) bool {
		_, ok := env.Deref(args[0]).(Tuple)
		return ok
	}))
	add(reg("Var", 1, func(args []Term, env *Env) bool {
		_, ok := env.Deref(args[0]).(*Var)
		return ok
	}))
	add(reg("NonVar", 1, func(args []Term, env *Env) bool {
		_, ok := env.Deref(args[0]).(*Var)
		return !ok
	}))
	add(reg("Ground", 1, func(args []Term, env *Env) bool {
		return IsGround(args[0], env.Binds)
	}))

	// List predicates.
	add(Relation("Member", func(args []Term, env *Env) []*BindingList {
		if len(args) != 2 {
			return nil
		}
		var out []*BindingList
		elem, lst := args[0], env.Deref(args[1])
		for {
			p, ok := lst.(Pair)
			if !ok {
				break
			}
			if binds, ok := Unify(elem, p.Head, env.Binds); ok {
				out = append(out, binds)
			}
			lst = env.Deref(p.Tail)
		}
		return out
	}))
	add(Function("Length", 2, func(args []Term, env *Env) (Term, bool) {
		n := 0
		cur := env.Deref(args[0])
		for {
			if IsNilTerm(cur) {
				return Atom{Value: int64(n)}, true
			}
			p, ok := cur.(Pair)
			if !ok {
				return nil, false
			}
			n++
			cur = env.Deref(p.Tail)
		}
	}))
	add(Function("Nth", 3, func(args []Term, env *Env) (Term, bool) {
		idx, ok := numericValue(env.Deref(args[0]))
		if !ok {
			return nil, false
		}
		cur := env.Deref(args[1])
		for i := 0; i < int(idx); i++ {
			p, ok := cur.(Pair)
			if !ok {
				return nil, false
			}
			cur = env.Deref(p.Tail)
		}
		p, ok := cur.(Pair)
		if !ok {
			return nil, false
		}
		return p.Head, true
	}))
	add(Function("Cons", 3, func(args []Term, env *Env) (Term, bool) {
		return Pair{Head: args[0], Tail: args[1]}, true
	}))

	// Randomization.
	add(Function("RandomInt", 3, func(args []Term, env *Env) (Term, bool) {
		lo, lok := numericValue(env.Deref(args[0]))
		hi, hok := numericValue(env.Deref(args[1]))
		if !lok || !hok || hi < lo {
			return nil, false
		}
		n := int64(lo) + rnd.Int63n(int64(hi)-int64(lo)+1)
		return Atom{Value: n}, true
	}))
	add(Relation("RandomMember", func(args []Term, env *Env) []*BindingList {
		var elems []Term
		cur := env.Deref(args[1])
		for {
			p, ok := cur.(Pair)
			if !ok {
				break
			}
			elems = append(elems, p.Head)
			cur = env.Deref(p.Tail)
		}
		if len(elems) == 0 {
			return nil
		}
		pick := elems[rnd.Intn(len(elems))]
		binds, ok := Unify(args[0], pick, env.Binds)
		if !ok {
			return nil
		}
		return []*BindingList{binds}
	}))

	// String / inflection utilities.
	add(Function("Concat", 3, func(args []Term, env *Env) (Term, bool) {
		a, aok := env.Deref(args[0]).(Atom)
		b, bok := env.Deref(args[1]).(Atom)
		if !aok || !bok {
			return nil, false
		}
		as, aok := a.Value.(string)
		bs, bok := b.Value.(string)
		if !aok || !bok {
			return nil, false
		}
		return Atom{Value: as + bs}, true
	}))
	add(Function("Upcase", 2, func(args []Term, env *Env) (Term, bool) {
		a, ok := env.Deref(args[0]).(Atom)
		if !ok {
			return nil, false
		}
		s, ok := a.Value.(string)
		if !ok {
			return nil, false
		}
		return Atom{Value: strings.ToUpper(s)}, true
	}))
	add(Function("Capitalize", 2, func(args []Term, env *Env) (Term, bool) {
		a, ok := env.Deref(args[0]).(Atom)
		if !ok {
			return nil, false
		}
		s, ok := a.Value.(string)
		if !ok || s == "" {
			return nil, false
		}
		return Atom{Value: strings.ToUpper(s[:1]) + s[1:]}, true
	}))
	add(Function("Pluralize", 2, func(args []Term, env *Env) (Term, bool) {
		a, ok := env.Deref(args[0]).(Atom)
		if !ok {
			return nil, false
		}
		s, ok := a.Value.(string)
		if !ok {
			return nil, false
		}
		return Atom{Value: pluralize(s)}, true
	}))

	// Text-production specials (§4.8): each emits its token in write
	// mode and matches it in read mode, via TextMatcher.
	add(TextMatcher("NL", func(args []Term, env *Env) []Token { return []Token{TokNewLine} }))
	add(TextMatcher("Para", func(args []Term, env *Env) []Token { return []Token{TokNewParagraph} }))
	add(TextMatcher("Fresh", func(args []Term, env *Env) []Token { return []Token{TokFreshLine} }))
	add(TextMatcher("Space", func(args []Term, env *Env) []Token { return []Token{TokForceSpace} }))

	// KB operations, wiring kb.go into the primitive registry.
	add(kbWriteTask())
	add(kbDeleteTask())
	add(kbLookupTask())
	add(kbDumpTask())

	return list
}

func pluralize(s string) string {
	switch {
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsAny(s[len(s)-2:len(s)-1], "aeiou"):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}

func pathFromTerm(t Term, env *Env) ([]PathElem, bool) {
	var path []PathElem
	cur := env.Deref(t)
	for {
		if IsNilTerm(cur) {
			return path, true
		}
		p, ok := cur.(Pair)
		if !ok {
			return nil, false
		}
		step, ok := p.Head.(Tuple)
		if !ok || len(step.Elems) != 2 {
			return nil, false
		}
		sepAtom, ok := step.Elems[0].(Atom)
		if !ok {
			return nil, false
		}
		sep := NonExclusive
		if s, ok := sepAtom.Value.(string); ok && s == "!" {
			sep = Exclusive
		}
		path = append(path, PathElem{Sep: sep, Key: step.Elems[1]})
		cur = env.Deref(p.Tail)
	}
}

func kbWriteTask() *PrimitiveTask {
	return NewPrimitive("KBWrite", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		if len(args) != 1 {
			panic(argErr(ArgumentCount, env, out, "KBWrite", "expects one path argument"))
		}
		path, ok := pathFromTerm(args[0], env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "KBWrite", "argument must be a path list"))
		}
		newRoot, err := KBFrom(env).Write(path)
		if err != nil {
			panic(NewExecError(ArgumentType, env, out, "KBWrite: %s", err))
		}
		return cont(out, KBWith(env, newRoot))
	})
}

func kbDeleteTask() *PrimitiveTask {
	return NewPrimitive("KBDelete", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		if len(args) != 1 {
			panic(argErr(ArgumentCount, env, out, "KBDelete", "expects one path argument"))
		}
		path, ok := pathFromTerm(args[0], env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "KBDelete", "argument must be a path list"))
		}
		newRoot, existed := KBFrom(env).Delete(path)
		if !existed {
			return false
		}
		return cont(out, KBWith(env, newRoot))
	})
}

func kbLookupTask() *PrimitiveTask {
	return NewPrimitive("KBLookup", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		if len(args) != 1 {
			panic(argErr(ArgumentCount, env, out, "KBLookup", "expects one path argument"))
		}
		path, ok := pathFromTerm(args[0], env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "KBLookup", "argument must be a path list"))
		}
		for _, binds := range KBFrom(env).Lookup(path, env.Binds) {
			if cont(out, env.WithBindings(binds)) {
				return true
			}
		}
		return false
	})
}

func kbDumpTask() *PrimitiveTask {
	return Function("KBDump", 1, func(args []Term, env *Env) (Term, bool) {
		sentences := KBFrom(env).Dump()
		terms := make([]Term, len(sentences))
		for i, s := range sentences {
			terms[i] = Atom{Value: s}
		}
		return List(terms...), true
	})
}
