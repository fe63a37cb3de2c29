package cli

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
)

// newConfiguredLogger creates a new logger configured based on CLI flags.
func newConfiguredLogger() *log.Logger {
	l := logging.NewLogger(os.Stderr)
	logging.Configure(l, logFlags())
	return l
}

func logFlags() logging.Flags {
	return logging.Flags{
		Verbose: verbose,
		Quiet:   quiet,
		NoColor: noColor,
		JSON:    structuredOutput(),
	}
}
