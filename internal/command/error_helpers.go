// Where: cli/internal/command/error_helpers.go
// What: Shared CLI error output.
// Why: Every failing command reports the same way and exits with 1.
package command

import (
	"fmt"
	"io"
)

// exitWithError prints an error message to the output writer and returns
// exit code 1 for CLI error handling.
func exitWithError(out io.Writer, err error) int {
	fmt.Fprintf(out, "✗ %v\n", err)
	return 1
}
