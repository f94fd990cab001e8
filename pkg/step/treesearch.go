package step

import "container/heap"

// TreeSearch is best-first search parameterized by three call targets
// (§4.9): nextNode enumerates the children of currentVar's node (as a
// relation, one solution per child bound to childVar), goalNode tests
// whether currentVar's node is a goal, and nodeUtility scores
// currentVar's node into scoreVar (higher expands first). The frontier
// is a priority queue of (utility, node, output-so-far, bindings-so-far)
// records; TreeSearch expands the highest-utility frontier node
// repeatedly until a goal node is found, then offers it (bound to
// currentVar) to the outer continuation like any other solution (§8
// scenario 6).
func TreeSearch(root Term, currentVar, childVar, scoreVar *Var, nextNode, goalNode, nodeUtility CallExpr) *PrimitiveTask {
	return NewPrimitive("TreeSearch", func(out *TextBuffer, env *Env, args []Term, pred *Frame, cont Continuation) bool {
		// currentVar is rebound once per node, but a persistent binding
		// list can never rebind an already-bound variable to a different
		// value. baseBinds is the list from before the search ever touched
		// currentVar, so every node's binding is built fresh off of it
		// instead of off whatever the previous node left currentVar
		// pointing at.
		baseBinds := env.Binds

		nodeEnv := func(e *Env, node Term) *Env {
			binds, _ := Unify(currentVar, node, baseBinds)
			return e.WithBindings(binds)
		}

		scoreAt := func(e *Env) float64 {
			var score float64
			invoke(nodeUtility, NewWriteBuffer(), e, pred, func(_ *TextBuffer, e2 *Env) bool {
				if v, ok := numericValue(e2.Deref(scoreVar)); ok {
					score = v
				}
				return true
			})
			return score
		}

		frontier := &searchFrontier{}
		heap.Init(frontier)
		rootEnv := nodeEnv(env, root)
		heap.Push(frontier, &searchRecord{
			node:  root,
			out:   out,
			env:   rootEnv,
			score: scoreAt(rootEnv),
		})

		for frontier.Len() > 0 {
			rec := heap.Pop(frontier).(*searchRecord)

			isGoal := invoke(goalNode, NewWriteBuffer(), rec.env, pred, func(*TextBuffer, *Env) bool { return true })
			if isGoal {
				binds, ok := Unify(currentVar, rec.node, env.Binds)
				if ok && cont(rec.out, env.WithBindings(binds)) {
					return true
				}
				continue
			}

			invoke(nextNode, rec.out, rec.env, pred, func(o2 *TextBuffer, e2 *Env) bool {
				child := e2.Deref(childVar)
				childEnv := nodeEnv(e2, child)
				heap.Push(frontier, &searchRecord{
					node:  child,
					out:   o2,
					env:   childEnv,
					score: scoreAt(childEnv),
				})
				return false // enumerate every child the generator offers
			})
		}
		return false
	})
}

type searchRecord struct {
	node  Term
	out   *TextBuffer
	env   *Env
	score float64
}

// searchFrontier is a max-heap on score (highest utility expands first).
type searchFrontier []*searchRecord

func (f searchFrontier) Len() int            { return len(f) }
func (f searchFrontier) Less(i, j int) bool  { return f[i].score > f[j].score }
func (f searchFrontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *searchFrontier) Push(x interface{}) { *f = append(*f, x.(*searchRecord)) }
func (f *searchFrontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}
