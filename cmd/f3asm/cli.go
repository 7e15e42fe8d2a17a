// Where: cli/cmd/f3asm/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/poruru/f3asm/cli/internal/command"
	"github.com/poruru/f3asm/cli/internal/infra/repository"
)

const downloadTimeout = 5 * time.Minute

var getwd = os.Getwd

// buildDependencies constructs the runtime dependencies of the CLI: the
// process streams, the working directory lookup and the remote transports.
func buildDependencies() command.Dependencies {
	return command.Dependencies{
		Out:        os.Stdout,
		ErrOut:     os.Stderr,
		Getwd:      getwd,
		S3Factory:  repository.AWSClientFactory(),
		HTTPClient: &http.Client{Timeout: downloadTimeout},
	}
}
