// Where: cli/internal/command/package.go
// What: package command adapter.
// Why: Map the packager section and flags onto the node packaging workflow.
package command

import (
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/usecase/packager"
)

// PackageCmd defines the package command flags.
type PackageCmd struct {
	BuildDir       string `name:"build-dir" help:"Build directory (default: target)"`
	WarName        string `name:"war-name" help:"Exploded web application directory name"`
	RuntimeVersion string `name:"runtime-version" help:"Runtime version (default: RELEASE)"`
}

func runPackage(cli CLI, deps Dependencies) int {
	return runStep(cli, deps, func(env environment) error {
		_, err := packager.NewWorkflow(env.installer(), env.ui).Run(env.ctx, packagerRequest(cli.Package, env))
		return err
	})
}

func packagerRequest(cmd PackageCmd, env environment) packager.Request {
	cfg := env.config.Packager
	return packager.Request{
		BuildDirectory: env.path(cmd.BuildDir, cfg.BuildDirectory, defaultBuildDir),
		WarName:        firstNonEmpty(cmd.WarName, cfg.WarName),
		RuntimeVersion: firstNonEmpty(cmd.RuntimeVersion, cfg.RuntimeVersion),
		Profiles:       artifact.NormalizeAll(cfg.Profiles),
		Extensions:     artifact.NormalizeAll(cfg.Extensions),
		Management:     env.config.Management(),
	}
}
