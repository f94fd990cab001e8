package main

import (
	"math/rand"

	"github.com/stepcore/step/internal/config"
	"github.com/stepcore/step/pkg/step"
)

// buildFixtureModule constructs a tiny demonstration program directly as
// Method/Step values, standing in for what a surface-syntax loader would
// otherwise produce. It defines:
//
//	Greet(Name) :- emit "Hello,"; emit Name; emit "!"
//	Choice(X)   :- X = 1 | X = 2     (two methods, tried in order or shuffled)
//
// and registers both on top of the standard primitive registry, applying
// cfg's MaxDepth and ShuffleMethods (§10/§11). cfg may be nil, in which
// case config.Default()'s values apply.
func buildFixtureModule(cfg *config.Engine) *step.Module {
	m := step.NewStandardModule()
	maxDepth := config.EffectiveMaxDepth(cfg)

	nameSlot := step.LocalVarRef{Name: "Name", Slot: 0}
	greet := &step.CompoundTask{TaskName: "Greet", MaxDepth: maxDepth}
	greet.Methods = []*step.Method{
		{
			Task:       greet,
			Head:       []step.Term{nameSlot},
			NumLocals:  1,
			LocalNames: []string{"Name"},
			Source:     `Greet(Name) :- emit "Hello,"; emit Name; emit "!"`,
			Body: step.NewEmitStep(
				step.NewCallStep(
					step.NewEmitStep(nil, step.Str("!")),
					nameSlot,
				),
				step.Str("Hello,"),
			),
		},
	}
	m.Tasks["Greet"] = greet

	choice := &step.CompoundTask{TaskName: "Choice", MaxDepth: maxDepth}
	if cfg != nil && cfg.ShuffleMethods {
		choice.Shuffled = true
		choice.Rand = rand.New(rand.NewSource(1))
	}
	choice.Methods = []*step.Method{
		{Task: choice, Head: []step.Term{step.Atom{Value: int64(1)}}, Source: "Choice(1)"},
		{Task: choice, Head: []step.Term{step.Atom{Value: int64(2)}}, Source: "Choice(2)"},
	}
	m.Tasks["Choice"] = choice

	return m
}
