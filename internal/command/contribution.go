// Where: cli/internal/command/contribution.go
// What: contribution command adapter.
// Why: Map the contribution section and flags onto the packaging workflow.
package command

import (
	"path/filepath"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/infra/config"
	"github.com/poruru/f3asm/cli/internal/usecase/contribution"
)

// ContributionCmd defines the contribution command flags.
type ContributionCmd struct {
	OutputDir  string `name:"output-dir" help:"Output directory (default: target)"`
	ClassesDir string `name:"classes-dir" help:"Compiled classes directory (default: <output-dir>/classes)"`
	Name       string `help:"Contribution name"`
	Classifier string `help:"Contribution classifier"`
}

func runContribution(cli CLI, deps Dependencies) int {
	return runStep(cli, deps, func(env environment) error {
		workflow := contribution.NewWorkflow(env.installer(), env.session, env.ui)
		_, err := workflow.Run(env.ctx, contributionRequest(cli.Contribution, env))
		return err
	})
}

func contributionRequest(cmd ContributionCmd, env environment) contribution.Request {
	cfg := env.config.Contribution
	output := env.path(cmd.OutputDir, cfg.OutputDirectory, defaultBuildDir)
	req := contribution.Request{
		OutputDirectory:  output,
		ClassesDirectory: env.path(cmd.ClassesDir, cfg.ClassesDirectory, filepath.Join(output, "classes")),
		Name:             firstNonEmpty(cmd.Name, cfg.Name),
		Classifier:       firstNonEmpty(cmd.Classifier, cfg.Classifier),
		Packaging:        cfg.Packaging,
		Dependencies:     artifact.NormalizeAll(cfg.Dependencies),
		Transitive:       config.BoolOr(cfg.Transitive, true),
		Excludes:         cfg.Excludes,
		Management:       env.config.Management(),
	}
	if cfg.Install != nil {
		target := cfg.Install.Normalize()
		req.Install = &target
	}
	return req
}
