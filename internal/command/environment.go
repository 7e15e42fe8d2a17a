// Where: cli/internal/command/environment.go
// What: Shared setup for build-step commands.
// Why: Every build step needs the build file, a logger and a repository session.
package command

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/config"
	"github.com/poruru/f3asm/cli/internal/infra/repository"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/meta"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

// environment is what a build-step command runs against.
type environment struct {
	ctx     context.Context
	workDir string
	config  config.BuildFile
	session *repository.Session
	ui      ui.UserInterface
}

func newEnvironment(cli CLI, deps Dependencies) (environment, error) {
	workDir, err := invocationDir(deps)
	if err != nil {
		return environment{}, err
	}
	explicit := strings.TrimSpace(cli.Config)
	if explicit != "" && !filepath.IsAbs(explicit) {
		explicit = filepath.Join(workDir, explicit)
	}
	cfg, err := config.Discover(explicit, workDir)
	if err != nil {
		return environment{}, err
	}

	logger := ctxlog.New(cli.LogLevel, cli.LogFormat, deps.ErrOut)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	if cfg.Path != "" {
		logger.Debug("build file loaded", "path", cfg.Path)
	}

	local, err := repository.LocalRepositoryPath(absFrom(workDir, cli.LocalRepo), configuredPath(cfg, cfg.LocalRepository))
	if err != nil {
		return environment{}, failure.Config("local repository", err)
	}
	remotes := make([]repository.Remote, 0, len(cfg.Repositories))
	for _, repo := range cfg.Repositories {
		remote, err := repository.NewRemote(ctx, repository.RemoteSpec{
			ID:       repo.ID,
			URL:      repo.URL,
			Endpoint: repo.Endpoint,
		}, deps.S3Factory, deps.HTTPClient)
		if err != nil {
			return environment{}, failure.Config("configure repositories", err)
		}
		remotes = append(remotes, remote)
	}
	offline := cli.Offline || cfg.Offline
	logger.Debug("repository session", "local", local, "remotes", len(remotes), "offline", offline)

	return environment{
		ctx:     ctx,
		workDir: workDir,
		config:  cfg,
		session: repository.NewSession(repository.Options{
			LocalRepository: local,
			Remotes:         remotes,
			Offline:         offline,
		}),
		ui: newUI(deps.Out, cli),
	}, nil
}

func (e environment) installer() install.Installer {
	return install.New(e.session, e.ui)
}

// path picks a flag value (relative to the working directory), then a
// configured value (relative to the build file), then fallback (relative
// to the build file).
func (e environment) path(flagValue, configured, fallback string) string {
	if value := strings.TrimSpace(flagValue); value != "" {
		return absFrom(e.workDir, value)
	}
	if value := strings.TrimSpace(configured); value != "" {
		return e.config.Resolve(value)
	}
	if fallback == "" {
		return ""
	}
	return e.config.Resolve(fallback)
}

func absFrom(dir, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || filepath.IsAbs(value) || strings.HasPrefix(value, "~") {
		return value
	}
	return filepath.Join(dir, value)
}

// configuredPath resolves a path from the build file, leaving ~ for the
// repository layer to expand.
func configuredPath(cfg config.BuildFile, value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "~") {
		return value
	}
	return cfg.Resolve(value)
}

const defaultBuildDir = meta.DefaultBuildDir

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func runStep(cli CLI, deps Dependencies, step func(environment) error) int {
	env, err := newEnvironment(cli, deps)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}
	if err := step(env); err != nil {
		ctxlog.FromContext(env.ctx).Debug("build step failed", "kind", string(failure.KindOf(err)), "error", err)
		return exitWithError(deps.ErrOut, err)
	}
	return 0
}
