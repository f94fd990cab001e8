package step

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrorKind enumerates the error kinds raised by the core (§7). Plain
// logical failure is not one of these: it is represented by an ordinary
// bool false return and simply triggers backtracking.
type ErrorKind int

const (
	// ArgumentCount is raised when a primitive's actual arity does not
	// match its declared arity.
	ArgumentCount ErrorKind = iota
	// ArgumentType is raised when an argument's runtime kind is not
	// acceptable to the primitive (unless it declares the single-variable
	// exception).
	ArgumentType
	// ArgumentInstantiation is raised when a required-ground argument is
	// unbound, or a required-unbound argument is already bound.
	ArgumentInstantiation
	// CallFailed is raised by primitives such as ExactlyOnce when the
	// wrapped call produces no solution.
	CallFailed
	// StackOverflow is raised when frame depth exceeds the ceiling.
	StackOverflow
	// UndefinedTask is raised when a call target resolves to a value that
	// cannot be invoked.
	UndefinedTask
)

func (k ErrorKind) String() string {
	switch k {
	case ArgumentCount:
		return "ArgumentCount"
	case ArgumentType:
		return "ArgumentType"
	case ArgumentInstantiation:
		return "ArgumentInstantiation"
	case CallFailed:
		return "CallFailed"
	case StackOverflow:
		return "StackOverflow"
	case UndefinedTask:
		return "UndefinedTask"
	default:
		return "Unknown"
	}
}

// ExecError is the core's single non-local error type (§7). It unwinds
// across frames carrying the current output buffer and the frame chain
// that was live when it was raised, so a host can render a stack trace
// with the original call expressions and current bindings. Plain logical
// failure never becomes an ExecError; only the kinds above do.
type ExecError struct {
	Kind   ErrorKind
	Frame  *Frame
	Bindgs *BindingList
	Output *TextBuffer
	Msg    string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Trace renders a stack trace from e.Frame outward, one call expression
// per line, substituting current variable bindings (§7, "User-visible
// behavior").
func (e *ExecError) Trace() string {
	var lines []string
	bindings := e.Bindgs
	e.Frame.CallerChain(func(f *Frame) bool {
		lines = append(lines, f.Render(bindings))
		return true
	})
	return strings.Join(lines, "\n")
}

// NewExecError builds an ExecError, capturing the frame and output buffer
// live at the call site.
func NewExecError(kind ErrorKind, env *Env, out *TextBuffer, msg string, args ...interface{}) *ExecError {
	var frame *Frame
	var binds *BindingList
	if env != nil {
		frame = env.Frame
		binds = env.Binds
	}
	return &ExecError{
		Kind:   kind,
		Frame:  frame,
		Bindgs: binds,
		Output: out,
		Msg:    fmt.Sprintf(msg, args...),
	}
}

// ValidationErrors accumulates multiple independent problems found while
// checking a method table before it ever runs (e.g. a loader-adjacent
// tool validating arities against the primitive registry). This is not
// part of the backtracking control flow; it is a convenience for batch
// reporting, following the *multierror.Error pattern used throughout
// hashicorp/nomad's config validation.
type ValidationErrors struct {
	errs *multierror.Error
}

// Add appends err to the accumulated errors, if err is non-nil.
func (v *ValidationErrors) Add(err error) {
	if err == nil {
		return
	}
	v.errs = multierror.Append(v.errs, err)
}

// ErrorOrNil returns the accumulated error, or nil if nothing was added.
func (v *ValidationErrors) ErrorOrNil() error {
	if v.errs == nil {
		return nil
	}
	return v.errs.ErrorOrNil()
}
