package step

import (
	"strings"

	"github.com/google/uuid"
)

// Result is what a top-level call produces on success: the joined,
// orthographically fixed-up text and the final state (so a caller can
// inspect globals/KB contents after the call).
type Result struct {
	Text  string
	State *State
	Binds *BindingList
}

// Run is the top-level calling convention (§6): given a task name and a
// list of argument terms, it runs the task against a fresh environment
// and write-mode buffer, returning the first solution's text and final
// state. ok is false if the task has no solution at all.
func Run(m *Module, taskName string, args ...Term) (Result, bool) {
	task := m.Lookup(taskName)
	if task == nil {
		panic(NewExecError(UndefinedTask, nil, nil, "undefined task %q", taskName))
	}
	env := NewEnv(m)
	out := NewWriteBuffer()

	runID := uuid.New().String()
	log := Logger().Named("run")
	log.Trace("start", "run_id", runID, "task", taskName)

	var result Result
	found := task.Call(out, env, args, env.Frame, func(out2 *TextBuffer, env2 *Env) bool {
		result = Result{
			Text:  Render(out2.All()),
			State: env2.State,
			Binds: env2.Binds,
		}
		return true
	})
	log.Trace("done", "run_id", runID, "found", found)
	return result, found
}

// RunAll is the streaming variant of Run: it invokes onSolution for
// every solution found on backtrack, stopping early if onSolution
// returns false.
func RunAll(m *Module, taskName string, onSolution func(Result) bool, args ...Term) {
	task := m.Lookup(taskName)
	if task == nil {
		panic(NewExecError(UndefinedTask, nil, nil, "undefined task %q", taskName))
	}
	env := NewEnv(m)
	out := NewWriteBuffer()

	task.Call(out, env, args, env.Frame, func(out2 *TextBuffer, env2 *Env) bool {
		res := Result{
			Text:  Render(out2.All()),
			State: env2.State,
			Binds: env2.Binds,
		}
		return !onSolution(res)
	})
}

// Render joins a token sequence into plain text, performing the
// orthographic fix-ups named in §6: adjacent tokens are space-joined
// unless the later one is punctuation, NewLine/NewParagraph/FreshLine insert
// line breaks, and ForceSpace always inserts a space.
func Render(tokens []Token) string {
	var b strings.Builder
	atLineStart := true
	first := true

	for _, tok := range tokens {
		switch tok.Kind {
		case NewLine:
			b.WriteByte('\n')
			atLineStart = true
			first = false
			continue
		case NewParagraph:
			b.WriteString("\n\n")
			atLineStart = true
			first = false
			continue
		case FreshLine:
			if !atLineStart {
				b.WriteByte('\n')
				atLineStart = true
			}
			continue
		case ForceSpace:
			b.WriteByte(' ')
			atLineStart = false
			continue
		}

		if tok.Text == "" {
			continue
		}
		isPunct := isPunctuation(tok.Text)
		if !first && !atLineStart && !isPunct {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		atLineStart = false
		first = false
	}
	return b.String()
}

// punctuationSet is the set of single-character tokens the writer's
// orthographic fix-up treats as not requiring a preceding space. It
// mirrors internal/config's DefaultPunctuation; kept independent so
// pkg/step doesn't need to import a driver-level config package.
var punctuationSet = []string{".", ",", "!", "?", ";", ":", ")", "]", "}"}

// SetPunctuation overrides the punctuation set Render consults, e.g. so
// an embedding CLI can apply internal/config's Engine.Punctuation
// (§10/§11).
func SetPunctuation(set []string) {
	punctuationSet = set
}

func isPunctuation(s string) bool {
	if len(s) != 1 {
		return false
	}
	for _, p := range punctuationSet {
		if p == s {
			return true
		}
	}
	return false
}
