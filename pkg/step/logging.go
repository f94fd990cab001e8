package step

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	baseLoggerOnce sync.Once
	baseLogger     hclog.Logger
)

// Logger returns the package's root logger, created lazily at trace
// level (diagnostic-only; nothing in the core's control flow depends
// on logging output). Named sub-loggers (Logger().Named("dispatch"),
// Logger().Named("kb")) are used at the call sites that most benefit
// from tracing: Dispatch and the KB write/delete path.
func Logger() hclog.Logger {
	baseLoggerOnce.Do(func() {
		baseLogger = hclog.New(&hclog.LoggerOptions{
			Name:   "step",
			Level:  hclog.Trace,
			Output: os.Stderr,
		})
	})
	return baseLogger
}

// SetLogger overrides the package root logger, e.g. so an embedding CLI
// can raise the level or redirect output.
func SetLogger(l hclog.Logger) {
	baseLogger = l
}
