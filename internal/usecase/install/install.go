// Where: cli/internal/usecase/install/install.go
// What: Dependency resolution and staging into build directories.
// Why: Every build step turns descriptor lists into files on disk the same way.
package install

import (
	"context"
	"fmt"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
	"github.com/poruru/f3asm/cli/internal/infra/repository"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
)

// Installer resolves descriptors and places the resulting files.
type Installer struct {
	Resolver      repository.Resolver
	UserInterface ui.UserInterface
}

// New returns an Installer. A nil UI discards progress output.
func New(resolver repository.Resolver, userInterface ui.UserInterface) Installer {
	if userInterface == nil {
		userInterface = ui.Discard()
	}
	return Installer{Resolver: resolver, UserInterface: userInterface}
}

// Resolve returns c alone, or c followed by its runtime closure.
func (i Installer) Resolve(ctx context.Context, c artifact.Coordinates, transitive bool) ([]artifact.Resolved, error) {
	if i.Resolver == nil {
		return nil, failure.Resolution("resolve "+c.String(), fmt.Errorf("resolver is not configured"))
	}
	i.UserInterface.Step(fmt.Sprintf("Resolving dependency: %s", c.ManagementKey()))
	if transitive {
		return i.Resolver.ResolveTransitive(ctx, c)
	}
	resolved, err := i.Resolver.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	return []artifact.Resolved{resolved}, nil
}

// CopyAll resolves deps in order and copies every resolved file into dir
// under its own file name. The first failure aborts.
func (i Installer) CopyAll(ctx context.Context, deps []artifact.Coordinates, dir string, transitive bool) ([]artifact.Resolved, error) {
	if err := fileops.EnsureDir(dir); err != nil {
		return nil, failure.Archive("create "+dir, err)
	}
	logger := ctxlog.FromContext(ctx)
	var copied []artifact.Resolved
	for _, dep := range deps {
		resolved, err := i.Resolve(ctx, dep, transitive)
		if err != nil {
			return copied, err
		}
		for _, r := range resolved {
			target, err := fileops.CopyFileToDir(ctx, r.Path, dir)
			if err != nil {
				return copied, failure.Archive("copy "+r.File(), err)
			}
			logger.Debug("copied artifact", "artifact", r.String(), "target", target)
			copied = append(copied, r)
		}
	}
	return copied, nil
}

// ExtractAll resolves each descriptor without its closure and unpacks it into dir.
func (i Installer) ExtractAll(ctx context.Context, deps []artifact.Coordinates, dir string) error {
	for _, dep := range deps {
		resolved, err := i.Resolve(ctx, dep, false)
		if err != nil {
			return err
		}
		for _, r := range resolved {
			if err := fileops.Extract(ctx, r.Path, dir); err != nil {
				return failure.Archive("extract "+r.File(), err)
			}
		}
	}
	return nil
}
