package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stepcore/step/internal/config"
	"github.com/stepcore/step/pkg/step"
)

// RunCommand runs a named task once against the fixture module and
// prints its first solution's rendered text.
type RunCommand struct {
	cfg *config.Engine
}

func (c *RunCommand) Help() string {
	return strings.TrimSpace(`
Usage: stepcore run <task> [args...]

  Runs the named fixture task once and prints its first solution's
  rendered text. Arguments are parsed as integers where possible,
  otherwise as strings.
`)
}

func (c *RunCommand) Synopsis() string { return "Run a fixture task once" }

func (c *RunCommand) Run(args []string) int {
	if len(args) == 0 {
		fmt.Println(c.Help())
		return 1
	}
	taskName, callArgs := args[0], parseArgs(args[1:])

	m := buildFixtureModule(c.cfg)
	if err := m.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	result, ok := step.Run(m, taskName, callArgs...)
	if !ok {
		fmt.Println("no solution")
		return 1
	}
	fmt.Println(result.Text)
	return 0
}

// RunAllCommand streams every solution of a named task against the
// fixture module.
type RunAllCommand struct {
	cfg *config.Engine
}

func (c *RunAllCommand) Help() string {
	return strings.TrimSpace(`
Usage: stepcore run-all <task> [args...]

  Streams every solution of the named fixture task, one line per
  solution, backtracking through all alternatives.
`)
}

func (c *RunAllCommand) Synopsis() string { return "Stream every solution of a fixture task" }

func (c *RunAllCommand) Run(args []string) int {
	if len(args) == 0 {
		fmt.Println(c.Help())
		return 1
	}
	taskName, callArgs := args[0], parseArgs(args[1:])

	m := buildFixtureModule(c.cfg)
	if err := m.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	count := 0
	step.RunAll(m, taskName, func(r step.Result) bool {
		count++
		fmt.Println(r.Text)
		return true
	}, callArgs...)

	if count == 0 {
		fmt.Println("no solutions")
		return 1
	}
	return 0
}

func parseArgs(raw []string) []step.Term {
	terms := make([]step.Term, len(raw))
	for i, a := range raw {
		if n, err := strconv.ParseInt(a, 10, 64); err == nil {
			terms[i] = step.Atom{Value: n}
			continue
		}
		terms[i] = step.Atom{Value: a}
	}
	return terms
}
