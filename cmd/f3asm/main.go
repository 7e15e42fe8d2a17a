// Where: cli/cmd/f3asm/main.go
// What: CLI entrypoint.
// Why: Execute f3asm commands with configured dependencies.
package main

import (
	"os"

	"github.com/poruru/f3asm/cli/internal/command"
)

func main() {
	os.Exit(command.Run(os.Args[1:], buildDependencies()))
}
