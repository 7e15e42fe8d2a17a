// Where: cli/internal/usecase/contribution/contribution.go
// What: Contribution archive packaging.
// Why: Bundle compiled classes with their runtime libraries into one deployable archive.
package contribution

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/archive"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
	"github.com/poruru/f3asm/cli/internal/infra/staging"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/meta"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

const libPrefix = "META-INF/lib/"

// DefaultExcludes are skipped when no excludes are configured.
var DefaultExcludes = []string{"package.html"}

// ArtifactInstaller publishes a produced file into the local repository.
type ArtifactInstaller interface {
	Install(ctx context.Context, c artifact.Coordinates, file string) (artifact.Resolved, error)
}

// Request captures the inputs of contribution packaging.
type Request struct {
	OutputDirectory  string
	ClassesDirectory string
	Name             string
	Classifier       string
	Packaging        string
	Dependencies     []artifact.Coordinates
	Transitive       bool
	Excludes         []string
	Install          *artifact.Coordinates
	Management       artifact.Management
}

// Result describes the produced archive.
type Result struct {
	Archive   string
	Libraries []string
	Installed *artifact.Resolved
}

// Workflow packages contributions.
type Workflow struct {
	Installer     install.Installer
	Publisher     ArtifactInstaller
	UserInterface ui.UserInterface
}

// NewWorkflow returns a Workflow. publisher may be nil when no request installs its output.
func NewWorkflow(installer install.Installer, publisher ArtifactInstaller, userInterface ui.UserInterface) Workflow {
	if userInterface == nil {
		userInterface = ui.Discard()
	}
	return Workflow{Installer: installer, Publisher: publisher, UserInterface: userInterface}
}

func (r Request) withDefaults() Request {
	if strings.TrimSpace(r.OutputDirectory) == "" {
		r.OutputDirectory = meta.DefaultBuildDir
	}
	if strings.TrimSpace(r.ClassesDirectory) == "" {
		r.ClassesDirectory = filepath.Join(r.OutputDirectory, "classes")
	}
	if strings.TrimSpace(r.Packaging) == "" {
		r.Packaging = artifact.TypeContributionJar
	}
	if r.Excludes == nil {
		r.Excludes = DefaultExcludes
	}
	return r
}

// Validate checks the request before any I/O.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return failure.Configf("contribution name is required")
	}
	if r.Install != nil {
		if err := r.Install.Validate(); err != nil {
			return failure.Config("install", err)
		}
		if !r.Install.HasVersion() {
			return failure.Configf("install: version is required")
		}
	}
	for _, dep := range r.Dependencies {
		if err := dep.Validate(); err != nil {
			return failure.Config(dep.String(), err)
		}
	}
	return nil
}

// Included reports whether a dependency is packaged into META-INF/lib.
// Contributions, optional dependencies and dependencies outside the
// runtime scope are left out.
func Included(c artifact.Coordinates) bool {
	return !c.IsContribution() && !c.Optional && c.InRuntimeScope()
}

// Run packages the contribution archive.
func (w Workflow) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if !fileops.DirExists(req.ClassesDirectory) {
		return Result{}, failure.Archive("package contribution",
			fmt.Errorf("unable to package contribution, %s does not exist", req.ClassesDirectory))
	}

	libraries, err := w.collectLibraries(ctx, req)
	if err != nil {
		return Result{}, err
	}

	target := filepath.Join(req.OutputDirectory, staging.ContributionFileName(req.Name, req.Classifier, req.Packaging))
	if err := writeArchive(ctx, target, req, libraries); err != nil {
		return Result{}, failure.Archive("package contribution", err)
	}

	result := Result{Archive: target}
	for _, lib := range libraries {
		result.Libraries = append(result.Libraries, lib.File())
	}

	if req.Install != nil {
		if w.Publisher == nil {
			return Result{}, failure.Configf("install: no repository configured")
		}
		c := *req.Install
		if c.Classifier == "" {
			c.Classifier = strings.TrimSpace(req.Classifier)
		}
		installed, err := w.Publisher.Install(ctx, c, target)
		if err != nil {
			return Result{}, err
		}
		result.Installed = &installed
	}

	rows := []ui.KeyValue{
		{Key: "Archive", Value: target},
		{Key: "Libraries", Value: len(result.Libraries)},
	}
	if result.Installed != nil {
		rows = append(rows, ui.KeyValue{Key: "Installed", Value: result.Installed.String()})
	}
	w.UserInterface.Block("📦", "Contribution", rows)
	w.UserInterface.Success(fmt.Sprintf("Contribution %s packaged", req.Name))
	return result, nil
}

// collectLibraries resolves the included dependencies, keeping the first
// library of each file name.
func (w Workflow) collectLibraries(ctx context.Context, req Request) ([]artifact.Resolved, error) {
	logger := ctxlog.FromContext(ctx)
	seen := map[string]struct{}{}
	var out []artifact.Resolved
	for _, dep := range req.Management.ApplyAll(artifact.NormalizeAll(req.Dependencies)) {
		if !Included(dep) {
			logger.Debug("dependency not packaged", "artifact", dep.String(), "scope", dep.Scope, "optional", dep.Optional)
			continue
		}
		resolved, err := w.Installer.Resolve(ctx, dep, req.Transitive)
		if err != nil {
			return nil, err
		}
		for _, r := range resolved {
			if r.IsContribution() {
				continue
			}
			if _, ok := seen[r.File()]; ok {
				continue
			}
			seen[r.File()] = struct{}{}
			out = append(out, r)
		}
	}
	return out, nil
}

func writeArchive(ctx context.Context, target string, req Request, libraries []artifact.Resolved) error {
	w, err := archive.Create(ctx, target, archive.KindJar)
	if err != nil {
		return err
	}
	if err := w.AddDir(req.ClassesDirectory, req.Excludes); err != nil {
		fileops.CloseQuietly(ctx, w, target)
		return err
	}
	for _, lib := range libraries {
		name := libPrefix + lib.File()
		if w.Has(name) {
			ctxlog.FromContext(ctx).Debug("library already packaged", "entry", name)
			continue
		}
		if err := w.AddFile(lib.Path, name); err != nil {
			fileops.CloseQuietly(ctx, w, target)
			return err
		}
	}
	return w.Close()
}
