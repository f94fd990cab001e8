// Command stepcore is a small driver around pkg/step, useful for
// exercising fixture programs built directly as Method/Step values
// (the surface-syntax parser is a separate, out-of-scope collaborator).
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
	"github.com/stepcore/step/internal/config"
	"github.com/stepcore/step/pkg/step"
)

func main() {
	cfg := loadEngine()
	step.SetPunctuation(cfg.Punctuation)

	c := cli.NewCLI("stepcore", version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &RunCommand{cfg: cfg}, nil
		},
		"run-all": func() (cli.Command, error) {
			return &RunAllCommand{cfg: cfg}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode)
}

// loadEngine loads the engine config from the path named by the
// STEPCORE_CONFIG environment variable, falling back to config.Default()
// if the variable is unset or the file can't be loaded.
func loadEngine() *config.Engine {
	if path := os.Getenv("STEPCORE_CONFIG"); path != "" {
		if cfg, err := config.Load(path); err == nil {
			return cfg
		}
	}
	return config.Default()
}

var version = "0.1.0"
