// Where: cli/internal/command/war.go
// What: war command adapter.
// Why: Map the webapp section and flags onto the web application workflow.
package command

import (
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/infra/config"
	"github.com/poruru/f3asm/cli/internal/usecase/webapp"
)

// WarCmd defines the war command flags.
type WarCmd struct {
	WebappDir      string `name:"webapp-dir" help:"Exploded web application directory (default: target/<finalName>)"`
	RuntimeVersion string `name:"runtime-version" help:"Runtime version (default: RELEASE)"`
}

func runWar(cli CLI, deps Dependencies) int {
	return runStep(cli, deps, func(env environment) error {
		_, err := webapp.NewWorkflow(env.installer(), env.ui).Run(env.ctx, webappRequest(cli.War, env))
		return err
	})
}

func webappRequest(cmd WarCmd, env environment) webapp.Request {
	cfg := env.config.Webapp
	return webapp.Request{
		BuildDirectory:  env.path("", "", defaultBuildDir),
		WebappDirectory: env.path(cmd.WebappDir, cfg.WebappDirectory, ""),
		FinalName:       cfg.FinalName,
		RuntimeVersion:  firstNonEmpty(cmd.RuntimeVersion, cfg.RuntimeVersion),
		BootLibs:        artifact.NormalizeAll(cfg.BootLibs),
		Extensions:      artifact.NormalizeAll(cfg.Extensions),
		Excludes:        cfg.Excludes,
		CoreExtensions:  config.BoolOr(cfg.CoreExtensions, true),
		Management:      env.config.Management(),
	}
}
