// Package config holds the engine's own tunables — the things an
// embedder configures about the core itself, as distinct from the
// program it runs (loading program source is a separate, out-of-scope
// collaborator).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth is the call-depth ceiling used when a program doesn't
// override it (mirrors step.MaxDepth; kept independent so config can be
// loaded before pkg/step is imported by a loader).
const DefaultMaxDepth = 500

// DefaultPunctuation is the set of single-character tokens the writer's
// orthographic fix-up treats as not requiring a preceding space.
var DefaultPunctuation = []string{".", ",", "!", "?", ";", ":", ")", "]", "}"}

// Engine holds the engine-level tunables loaded from YAML (§10: engine
// config, not program loading).
type Engine struct {
	// MaxDepth ceilings call recursion (§5). Zero means DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth"`

	// ShuffleMethods, if true, tasks without an explicit per-task
	// override try their methods in a shuffled order rather than
	// source order (§4.5).
	ShuffleMethods bool `yaml:"shuffle_methods"`

	// Punctuation overrides DefaultPunctuation for the writer's
	// orthographic fix-up. Empty means use the default set.
	Punctuation []string `yaml:"punctuation"`
}

// Default returns the engine config used when nothing is loaded.
func Default() *Engine {
	return &Engine{
		MaxDepth:       DefaultMaxDepth,
		ShuffleMethods: false,
		Punctuation:    DefaultPunctuation,
	}
}

// Load reads an Engine config from a YAML file at path, falling back to
// defaults for any field the file leaves zero-valued.
func Load(path string) (*Engine, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e := Default()
	if err := yaml.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	if e.MaxDepth == 0 {
		e.MaxDepth = DefaultMaxDepth
	}
	if len(e.Punctuation) == 0 {
		e.Punctuation = DefaultPunctuation
	}
	return e, nil
}

// EffectiveMaxDepth returns e's MaxDepth, or DefaultMaxDepth if e is nil
// or zero-valued — the pattern used at every call site that pushes a
// Frame (step.CompoundTask.MaxDepth).
func EffectiveMaxDepth(e *Engine) int {
	if e == nil || e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return e.MaxDepth
}

// IsPunctuation reports whether s is one of e's single-character
// no-preceding-space tokens.
func IsPunctuation(e *Engine, s string) bool {
	set := DefaultPunctuation
	if e != nil && len(e.Punctuation) > 0 {
		set = e.Punctuation
	}
	for _, p := range set {
		if p == s {
			return true
		}
	}
	return false
}
