// Where: cli/internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/poruru/f3asm/cli/internal/infra/repository"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/version"
)

// Dependencies holds the injected collaborators of a CLI run so tests can
// swap the working directory, output streams and remote transports.
type Dependencies struct {
	Out        io.Writer
	ErrOut     io.Writer
	Getwd      func() (string, error)
	S3Factory  repository.ClientFactory
	HTTPClient *http.Client
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Config    string `short:"c" help:"Path to the build file (default: nearest f3asm.yaml)"`
	EnvFile   string `name:"env-file" help:"Path to .env file"`
	LocalRepo string `name:"local-repo" help:"Local Maven repository directory"`
	Offline   bool   `help:"Resolve from the local repository only"`
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Diagnostic log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Diagnostic log format"`
	Emoji     bool   `name:"emoji" help:"Enable emoji output (default: auto)"`
	NoEmoji   bool   `name:"no-emoji" help:"Disable emoji output"`

	Assemble     AssembleCmd     `cmd:"" help:"Assemble a runtime image"`
	Contribution ContributionCmd `cmd:"" help:"Package a contribution archive"`
	Package      PackageCmd      `cmd:"" help:"Package the node runtime into a web application"`
	War          WarCmd          `cmd:"" help:"Embed the runtime into an exploded web application"`
	Version      VersionCmd      `cmd:"" help:"Show version information"`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	deps = deps.withDefaults()
	out := deps.Out

	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name(cliName()),
		kong.Writers(out, deps.ErrOut),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	ctx, err := parser.Parse(args)
	if isHelp(args) {
		return 0
	}
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	loadEnvFile(cli.EnvFile, newUI(out, cli))

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps); handled {
		return exitCode
	}

	newUI(out, cli).Warn("unknown command")
	return 1
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.ErrOut == nil {
		d.ErrOut = os.Stderr
	}
	if d.Getwd == nil {
		d.Getwd = os.Getwd
	}
	if d.S3Factory == nil {
		d.S3Factory = repository.AWSClientFactory()
	}
	return d
}

type commandHandler func(CLI, Dependencies) int

func dispatchCommand(command string, cli CLI, deps Dependencies) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"assemble":     runAssemble,
		"contribution": runContribution,
		"package":      runPackage,
		"war":          runWar,
		"version":      runVersion,
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps), true
	}

	return 1, false
}

// loadEnvFile loads an explicit env file, or .env from the current
// directory when present. Failures only warn.
func loadEnvFile(path string, out ui.UserInterface) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			out.Warn(fmt.Sprintf("failed to load env file %s: %v", path, err))
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			out.Warn(fmt.Sprintf("failed to load .env: %v", err))
		}
	}
}

// runVersion prints the version information of the CLI.
func runVersion(cli CLI, deps Dependencies) int {
	newUI(deps.Out, cli).Info(version.GetVersion())
	return 0
}

// runNoArgs prints a short usage summary.
func runNoArgs(out io.Writer) int {
	cmd := cliName()
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s [--config f3asm.yaml] <assemble|contribution|package|war|version> [flags]\n", cmd)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Try: %s --help\n", cmd)
	return 0
}

func isHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// invocationDir returns the working directory used for build file discovery.
func invocationDir(deps Dependencies) (string, error) {
	dir, err := deps.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return strings.TrimSpace(dir), nil
}
