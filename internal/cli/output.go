package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hongyanca/coding-plan-quota-query/internal/display"
)

// outWriter is the writer used for all command output.
// Tests can replace this to capture output.
var outWriter io.Writer = os.Stdout

// out prints formatted output to the configured writer.
func out(format string, a ...any) {
	_, _ = fmt.Fprintf(outWriter, format, a...)
}

// outln prints a line to the configured writer.
func outln(a ...any) {
	_, _ = fmt.Fprintln(outWriter, a...)
}

// outputStructured writes data as YAML when --yaml is set and JSON otherwise.
func outputStructured(data any) error {
	if yamlOutput {
		return display.OutputYAML(outWriter, data)
	}
	return display.OutputJSON(outWriter, data)
}
