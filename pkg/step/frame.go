package step

import "fmt"

// MaxDepth is the default stack-depth ceiling (§5). Exceeding it raises a
// StackOverflow ExecError. Configurable via internal/config.
const MaxDepth = 500

// Frame is the runtime record of one active method call (§3,
// "MethodCallFrame"). Frames form two backward-only chains: Caller (the
// lexical call-site parent) and Predecessor (the pred frame given to
// Push, walked by GoalChain and the reflective built-ins). Every caller
// in this package passes the enclosing method's frame as pred (see
// RunChain and CompoundTask.Call), so Predecessor is the same frame as
// Caller; calls that have already completed are not linked into it.
// Neither chain ever cycles.
type Frame struct {
	Method      *Method
	Locals      []*Var
	CallArgs    []Term // the resolved argument terms at the call site, for reflection
	BindingsAt  *BindingList
	Caller      *Frame
	Predecessor *Frame
	Depth       int
}

// NewRootFrame creates the frame for a top-level call: no lexical caller,
// no predecessor, depth 0.
func NewRootFrame() *Frame {
	return &Frame{Depth: 0}
}

// Push creates a child frame for invoking m with the given call args,
// linking Caller (lexical parent = the current frame) and Predecessor
// (goal chain = the predecessor frame passed in). It returns
// an error if the resulting depth exceeds MaxDepth.
func (f *Frame) Push(m *Method, args []Term, predecessor *Frame, bindings *BindingList, maxDepth int) (*Frame, error) {
	depth := 0
	if f != nil {
		depth = f.Depth + 1
	}
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}
	if depth > maxDepth {
		return nil, &ExecError{
			Kind:  StackOverflow,
			Frame: f,
			Msg:   fmt.Sprintf("call depth %d exceeds ceiling %d", depth, maxDepth),
		}
	}
	child := &Frame{
		Method:      m,
		CallArgs:    args,
		BindingsAt:  bindings,
		Caller:      f,
		Predecessor: predecessor,
		Depth:       depth,
	}
	return child, nil
}

// CallerChain walks the lexical-caller links from f outward, calling visit
// on each frame until visit returns false or the chain is exhausted.
func (f *Frame) CallerChain(visit func(*Frame) bool) {
	for fr := f; fr != nil; fr = fr.Caller {
		if !visit(fr) {
			return
		}
	}
}

// GoalChain walks the predecessor (goal-chain) links from f outward.
func (f *Frame) GoalChain(visit func(*Frame) bool) {
	for fr := f; fr != nil; fr = fr.Predecessor {
		if !visit(fr) {
			return
		}
	}
}

// Render produces a human-readable rendering of the call expression that
// created this frame, with local-variable placeholders substituted by
// their current bound values where possible. Used by stack-trace
// rendering and the reflective built-ins.
func (f *Frame) Render(bindings *BindingList) string {
	if f == nil || f.Method == nil {
		return "<root>"
	}
	out := f.Method.Task.Name() + "("
	for i, a := range f.CallArgs {
		if i > 0 {
			out += ", "
		}
		out += Deref(a, bindings).String()
	}
	return out + ")"
}
