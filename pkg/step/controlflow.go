package step

// invoke resolves and dispatches a quoted CallExpr exactly as a CallStep
// would, against env and out, continuing through cont.
func invoke(ce CallExpr, out *TextBuffer, env *Env, pred *Frame, cont Continuation) bool {
	target := env.Deref(env.Resolve(ce.Target))
	args := make([]Term, len(ce.Args))
	for i, a := range ce.Args {
		args[i] = env.ResolveDeep(a)
	}
	return Dispatch(target, out, env, args, pred, cont)
}

func asCallExpr(t Term, env *Env) (CallExpr, bool) {
	switch v := env.Deref(env.Resolve(t)).(type) {
	case CallExpr:
		return v, true
	default:
		return CallExpr{}, false
	}
}

// Not succeeds iff its call has zero solutions; it discards any text
// output and state change the call makes while probing, and requires
// the call's arguments to be ground since no bindings are preserved
// outward (§4.9, §8).
func Not(callTerm Term) *PrimitiveTask {
	return NewPrimitive("Not", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "Not", "argument must be a call expression"))
		}
		for _, a := range ce.Args {
			if !IsGround(a, env.Binds) {
				panic(argErr(ArgumentInstantiation, env, out, "Not", "call arguments must be ground"))
			}
		}
		found := invoke(ce, out, env, pred, func(*TextBuffer, *Env) bool { return true })
		if found {
			return false
		}
		return cont(out, env)
	})
}

// collectAll enumerates every solution of ce by forcing its continuation
// to keep returning false, invoking onSolution for each. Output written
// by ce is discarded (solutions are only observed through resultTerm's
// bindings), matching FindAll's "emits nothing to the outer output".
func collectAll(ce CallExpr, env *Env, pred *Frame, onSolution func(env2 *Env)) {
	scratch := NewWriteBuffer()
	invoke(ce, scratch, env, pred, func(_ *TextBuffer, env2 *Env) bool {
		onSolution(env2)
		return false
	})
}

// FindAll enumerates every solution of call, collects the resolved value
// of result into a list, and unifies that list against listOut. It
// succeeds exactly once (§8).
func FindAll(result, callTerm, listOut Term) *PrimitiveTask {
	return NewPrimitive("FindAll", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "FindAll", "second argument must be a call expression"))
		}
		var values []Term
		collectAll(ce, env, pred, func(env2 *Env) {
			values = append(values, env2.ResolveDeep(result))
		})
		binds, ok := Unify(listOut, List(values...), env.Binds)
		if !ok {
			return false
		}
		return cont(out, env.WithBindings(binds))
	})
}

func structEqual(a, b Term) bool { return a.String() == b.String() }

// FindUnique is FindAll with structural-equality deduplication.
func FindUnique(result, callTerm, listOut Term) *PrimitiveTask {
	return findUniqueN("FindUnique", result, callTerm, listOut, 0)
}

// FindFirstNUnique is FindUnique that stops once n distinct solutions
// are found.
func FindFirstNUnique(n int, result, callTerm, listOut Term) *PrimitiveTask {
	return findUniqueN("FindFirstNUnique", result, callTerm, listOut, n)
}

// FindAtMostNUnique is FindUnique bounded to at most n results, but
// (unlike FindFirstNUnique) always exhausts the underlying call looking
// for them rather than cutting the search early.
func FindAtMostNUnique(n int, result, callTerm, listOut Term) *PrimitiveTask {
	return findUniqueN("FindAtMostNUnique", result, callTerm, listOut, -n)
}

func findUniqueN(name string, result, callTerm, listOut Term, limit int) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, name, "second argument must be a call expression"))
		}
		var deduped []Term
		scratch := NewWriteBuffer()
		invoke(ce, scratch, env, pred, func(_ *TextBuffer, env2 *Env) bool {
			v := env2.ResolveDeep(result)
			fresh := true
			for _, seen := range deduped {
				if structEqual(seen, v) {
					fresh = false
					break
				}
			}
			if fresh {
				deduped = append(deduped, v)
			}
			if limit > 0 && len(deduped) >= limit {
				return true // FindFirstNUnique: stop the underlying search early
			}
			return false
		})
		if limit < 0 && -limit < len(deduped) {
			deduped = deduped[:-limit] // FindAtMostNUnique: already exhausted above, cap after
		}
		binds, ok := Unify(listOut, List(deduped...), env.Binds)
		if !ok {
			return false
		}
		return cont(out, env.WithBindings(binds))
	})
}

// ForEach runs consumerCall once per solution of genCall. Unlike
// FindAll, text output and state changes accumulate across iterations;
// only the per-iteration variable bindings are discarded (§4.9).
func ForEach(genCall, bodyCall Term) *PrimitiveTask {
	return NewPrimitive("ForEach", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		gen, ok := asCallExpr(genCall, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "ForEach", "first argument must be a call expression"))
		}
		body, ok := asCallExpr(bodyCall, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "ForEach", "second argument must be a call expression"))
		}

		accOut := out
		accState := env.State

		invoke(gen, out, env, pred, func(_ *TextBuffer, genEnv *Env) bool {
			iterEnv := genEnv.WithState(accState)
			invoke(body, accOut, iterEnv, pred, func(o2 *TextBuffer, e2 *Env) bool {
				accOut = o2
				accState = e2.State
				return true
			})
			return false // force the generator to backtrack through all solutions
		})

		return cont(accOut, env.WithState(accState))
	})
}

// Implies succeeds iff bodyCall succeeds for every solution of genCall.
// Like ForEach it accumulates text/state across iterations, but a single
// body failure fails the whole operation and discards everything
// accumulated so far (§4.9).
func Implies(genCall, bodyCall Term) *PrimitiveTask {
	return NewPrimitive("Implies", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		gen, ok := asCallExpr(genCall, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "Implies", "first argument must be a call expression"))
		}
		body, ok := asCallExpr(bodyCall, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "Implies", "second argument must be a call expression"))
		}

		accOut := out
		accState := env.State
		allOK := true

		invoke(gen, out, env, pred, func(_ *TextBuffer, genEnv *Env) bool {
			iterEnv := genEnv.WithState(accState)
			ok := invoke(body, accOut, iterEnv, pred, func(o2 *TextBuffer, e2 *Env) bool {
				accOut = o2
				accState = e2.State
				return true
			})
			if !ok {
				allOK = false
				return true // stop the generator's backtracking, we already failed
			}
			return false
		})

		if !allOK {
			return false
		}
		return cont(accOut, env.WithState(accState))
	})
}

// Once takes the first success of call and never backtracks into it
// again, even if the outer continuation later fails (§4.9, §8 scenario 5).
func Once(callTerm Term) *PrimitiveTask {
	return NewPrimitive("Once", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "Once", "argument must be a call expression"))
		}
		var savedOut *TextBuffer
		var savedEnv *Env
		found := invoke(ce, out, env, pred, func(o2 *TextBuffer, e2 *Env) bool {
			savedOut, savedEnv = o2, e2
			return true
		})
		if !found {
			return false
		}
		return cont(savedOut, savedEnv)
	})
}

// ExactlyOnce is Once, but raises a CallFailed error instead of
// returning false when the call has no solutions (§4.9).
func ExactlyOnce(callTerm Term) *PrimitiveTask {
	return NewPrimitive("ExactlyOnce", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "ExactlyOnce", "argument must be a call expression"))
		}
		var savedOut *TextBuffer
		var savedEnv *Env
		found := invoke(ce, out, env, pred, func(o2 *TextBuffer, e2 *Env) bool {
			savedOut, savedEnv = o2, e2
			return true
		})
		if !found {
			panic(NewExecError(CallFailed, env, out, "ExactlyOnce: %s produced no solution", ce))
		}
		return cont(savedOut, savedEnv)
	})
}

func numericValue(t Term) (float64, bool) {
	a, ok := t.(Atom)
	if !ok {
		return 0, false
	}
	switch v := a.Value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// extremeSearch backs both Max and Min: enumerate every solution of
// call, keep the one whose nominated variable has the extreme numeric
// value, and commit to that solution's output/bindings/state exactly as
// Once would.
func extremeSearch(name string, callTerm, variable Term, wantMax bool) *PrimitiveTask {
	return NewPrimitive(name, func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, name, "first argument must be a call expression"))
		}

		type candidate struct {
			val float64
			out *TextBuffer
			env *Env
		}
		var best *candidate

		invoke(ce, out, env, pred, func(o2 *TextBuffer, e2 *Env) bool {
			v, ok := numericValue(e2.ResolveDeep(variable))
			if !ok {
				return false
			}
			if best == nil || (wantMax && v > best.val) || (!wantMax && v < best.val) {
				best = &candidate{val: v, out: o2, env: e2}
			}
			return false
		})

		if best == nil {
			return false
		}
		return cont(best.out, best.env)
	})
}

// Max enumerates call's solutions and commits to the one maximizing
// variable.
func Max(callTerm, variable Term) *PrimitiveTask { return extremeSearch("Max", callTerm, variable, true) }

// Min enumerates call's solutions and commits to the one minimizing
// variable.
func Min(callTerm, variable Term) *PrimitiveTask { return extremeSearch("Min", callTerm, variable, false) }

// SaveText runs call but, instead of appending its emitted tokens to the
// outer output, binds them as a list of text atoms to result (§4.9).
func SaveText(callTerm, result Term) *PrimitiveTask {
	return NewPrimitive("SaveText", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "SaveText", "first argument must be a call expression"))
		}
		inner := NewWriteBuffer()
		var savedEnv *Env
		var savedTokens []Token
		found := invoke(ce, inner, env, pred, func(o2 *TextBuffer, e2 *Env) bool {
			savedTokens = o2.All()
			savedEnv = e2
			return true
		})
		if !found {
			return false
		}
		terms := make([]Term, len(savedTokens))
		for i, t := range savedTokens {
			terms[i] = tokenTerm(t)
		}
		binds, ok := Unify(result, List(terms...), savedEnv.Binds)
		if !ok {
			return false
		}
		return cont(out, savedEnv.WithBindings(binds))
	})
}

func tokenTerm(t Token) Term {
	switch t.Kind {
	case Text:
		return Atom{Value: t.Text}
	case NewParagraph:
		return Atom{Value: "¶"}
	case NewLine:
		return Atom{Value: "\n"}
	case FreshLine:
		return Atom{Value: "↵"}
	case ForceSpace:
		return Atom{Value: " "}
	default:
		return Atom{Value: ""}
	}
}

// PreviousCall walks the predecessor (goal-chain) frames outward from
// pred, unifying pattern against each prior call's (task name, args)
// shape in turn, enumerating alternative matches (§4.9, §4.11).
func PreviousCall(pattern Term) *PrimitiveTask {
	return NewPrimitive("PreviousCall", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		for f := pred; f != nil; f = f.Predecessor {
			if f.Method == nil {
				continue
			}
			callTerm := frameCallTerm(f)
			binds, ok := Unify(pattern, callTerm, env.Binds)
			if !ok {
				continue
			}
			if cont(out, env.WithBindings(binds)) {
				return true
			}
		}
		return false
	})
}

// UniqueCall is PreviousCall restricted to succeed only when exactly one
// prior call matches pattern.
func UniqueCall(pattern Term) *PrimitiveTask {
	return NewPrimitive("UniqueCall", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		var matchBinds *BindingList
		count := 0
		for f := pred; f != nil; f = f.Predecessor {
			if f.Method == nil {
				continue
			}
			callTerm := frameCallTerm(f)
			binds, ok := Unify(pattern, callTerm, env.Binds)
			if !ok {
				continue
			}
			count++
			matchBinds = binds
			if count > 1 {
				return false
			}
		}
		if count != 1 {
			return false
		}
		return cont(out, env.WithBindings(matchBinds))
	})
}

func frameCallTerm(f *Frame) Term {
	elems := make([]Term, 0, len(f.CallArgs)+1)
	elems = append(elems, Atom{Value: f.Method.Task.Name()})
	elems = append(elems, f.CallArgs...)
	return Tuple{Elems: elems}
}

// Parse runs call in read mode over text's token sequence, succeeding
// iff the call consumes the input exactly (§4.9).
func Parse(callTerm, textTerm Term) *PrimitiveTask {
	return NewPrimitive("Parse", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		ce, ok := asCallExpr(callTerm, env)
		if !ok {
			panic(argErr(ArgumentType, env, out, "Parse", "first argument must be a call expression"))
		}
		tokens, ok := termToTokens(env.ResolveDeep(textTerm))
		if !ok {
			panic(argErr(ArgumentType, env, out, "Parse", "second argument must be a token list"))
		}
		readBuf := NewReadBuffer(tokens)
		found := invoke(ce, readBuf, env, pred, func(o2 *TextBuffer, e2 *Env) bool {
			if !o2.ReadCompleted() {
				return false
			}
			return cont(out, e2)
		})
		return found
	})
}

func termToTokens(t Term) ([]Token, bool) {
	var toks []Token
	cur := t
	for {
		if IsNilTerm(cur) {
			return toks, true
		}
		p, ok := cur.(Pair)
		if !ok {
			return nil, false
		}
		a, ok := p.Head.(Atom)
		if !ok {
			return nil, false
		}
		s, ok := a.Value.(string)
		if !ok {
			return nil, false
		}
		toks = append(toks, Str(s))
		cur = p.Tail
	}
}
