// Where: cli/internal/command/assemble.go
// What: assemble command adapter.
// Why: Map the assembly section and flags onto the image assembly workflow.
package command

import (
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/usecase/assembly"
)

// AssembleCmd defines the assemble command flags.
type AssembleCmd struct {
	BuildDir       string `name:"build-dir" help:"Build directory (default: target)"`
	RuntimeVersion string `name:"runtime-version" help:"Runtime version (default: RELEASE)"`
	Type           string `help:"Runtime type (standalone/tomcat)"`
}

func runAssemble(cli CLI, deps Dependencies) int {
	return runStep(cli, deps, func(env environment) error {
		_, err := assembly.NewWorkflow(env.installer(), env.ui).Run(env.ctx, assemblyRequest(cli.Assemble, env))
		return err
	})
}

func assemblyRequest(cmd AssembleCmd, env environment) assembly.Request {
	cfg := env.config.Assembly
	return assembly.Request{
		BuildDirectory:      env.path(cmd.BuildDir, cfg.BuildDirectory, defaultBuildDir),
		ProjectDirectory:    env.path("", cfg.ProjectDirectory, env.config.BaseDir),
		RuntimeVersion:      firstNonEmpty(cmd.RuntimeVersion, cfg.RuntimeVersion),
		RuntimeGroup:        cfg.RuntimeGroup,
		Type:                firstNonEmpty(cmd.Type, cfg.Type),
		RuntimeName:         cfg.RuntimeName,
		Profiles:            artifact.NormalizeAll(cfg.Profiles),
		Extensions:          artifact.NormalizeAll(cfg.Extensions),
		Contributions:       artifact.NormalizeAll(cfg.Contributions),
		Datasources:         artifact.NormalizeAll(cfg.Datasources),
		ConfigurationFiles:  cfg.ConfigurationFiles,
		RemoveExtensions:    cfg.RemoveExtensions,
		CleanUnusedRuntimes: cfg.CleanUnusedRuntimes,
		Management:          env.config.Management(),
	}
}
