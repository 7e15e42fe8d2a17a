// Where: cli/internal/usecase/assembly/assembly.go
// What: Runtime image assembly workflow.
// Why: Build a runnable runtime image from a distribution plus profiles, extensions and configuration.
package assembly

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/domain/runtime"
	"github.com/poruru/f3asm/cli/internal/infra/config"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
	"github.com/poruru/f3asm/cli/internal/infra/staging"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/meta"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

const defaultRuntimeName = "vm"

// Request captures the inputs of an image assembly.
type Request struct {
	BuildDirectory      string
	ProjectDirectory    string
	RuntimeVersion      string
	RuntimeGroup        string
	Type                string
	RuntimeName         string
	Profiles            []artifact.Coordinates
	Extensions          []artifact.Coordinates
	Contributions       []artifact.Coordinates
	Datasources         []artifact.Coordinates
	ConfigurationFiles  []config.ConfigFile
	RemoveExtensions    []string
	CleanUnusedRuntimes bool
	Management          artifact.Management
}

// Result describes the assembled image.
type Result struct {
	ImageDir    string
	RuntimeRoot string
	Runtime     artifact.Resolved
	Extensions  int
}

// Workflow assembles runtime images.
type Workflow struct {
	Installer     install.Installer
	UserInterface ui.UserInterface
}

// NewWorkflow returns a Workflow using installer for all resolution.
func NewWorkflow(installer install.Installer, userInterface ui.UserInterface) Workflow {
	if userInterface == nil {
		userInterface = ui.Discard()
	}
	return Workflow{Installer: installer, UserInterface: userInterface}
}

func (r Request) withDefaults() Request {
	if strings.TrimSpace(r.BuildDirectory) == "" {
		r.BuildDirectory = meta.DefaultBuildDir
	}
	if strings.TrimSpace(r.RuntimeVersion) == "" {
		r.RuntimeVersion = meta.DefaultVersion
	}
	if strings.TrimSpace(r.RuntimeGroup) == "" {
		r.RuntimeGroup = meta.RuntimeGroup
	}
	if strings.TrimSpace(r.RuntimeName) == "" {
		r.RuntimeName = defaultRuntimeName
	}
	return r
}

// Validate checks the request before any I/O and returns the selected
// runtime profile.
func (r Request) Validate() (runtime.Profile, error) {
	profile, err := runtime.Resolve(r.Type)
	if err != nil {
		return runtime.Profile{}, failure.Config("", err)
	}
	if strings.ContainsAny(r.RuntimeName, `/\`) || r.RuntimeName == "." || r.RuntimeName == ".." {
		return runtime.Profile{}, failure.Configf("invalid runtime name: %s", r.RuntimeName)
	}
	for i, file := range r.ConfigurationFiles {
		if strings.TrimSpace(file.Source) == "" {
			return runtime.Profile{}, failure.Configf("configurationFiles[%d].source is required", i)
		}
	}
	for _, name := range r.RemoveExtensions {
		if name != filepath.Base(name) {
			return runtime.Profile{}, failure.Configf("removeExtensions entry must be a file name: %s", name)
		}
	}
	for _, list := range [][]artifact.Coordinates{r.Profiles, r.Extensions, r.Contributions, r.Datasources} {
		for _, c := range list {
			if err := c.Validate(); err != nil {
				return runtime.Profile{}, failure.Config(c.String(), err)
			}
		}
	}
	return profile, nil
}

// Run executes the assembly: runtime distribution, optional cleanup,
// profiles, extensions, removals, datasources, contributions and
// configuration files, in that order.
func (w Workflow) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	profile, err := req.Validate()
	if err != nil {
		return Result{}, err
	}
	logger := ctxlog.FromContext(ctx)

	imageDir := staging.ImageDir(req.BuildDirectory)
	if err := fileops.EnsureDir(imageDir); err != nil {
		return Result{}, failure.Archive("create image directory", err)
	}
	root := profile.RootDir(imageDir)

	w.UserInterface.Info("Installing the Fabric3 runtime")
	dist := artifact.Coordinates{
		GroupID:    req.RuntimeGroup,
		ArtifactID: profile.ArtifactID,
		Version:    req.RuntimeVersion,
		Type:       meta.DistributionType,
		Classifier: meta.DistributionSuffix,
	}
	resolved, err := w.Installer.Resolve(ctx, dist, false)
	if err != nil {
		return Result{}, err
	}
	if err := fileops.Extract(ctx, resolved[0].Path, imageDir); err != nil {
		return Result{}, failure.Archive("extract "+resolved[0].File(), err)
	}
	logger.Debug("runtime extracted", "artifact", resolved[0].String(), "root", root)

	if req.CleanUnusedRuntimes {
		if err := cleanRuntimes(root, req.RuntimeName); err != nil {
			return Result{}, failure.Archive("clean runtimes", err)
		}
	}

	for _, p := range req.versioned(req.Profiles) {
		w.UserInterface.Info(fmt.Sprintf("Installing profile: %s", p.ManagementKey()))
		bin := p.WithType(meta.DistributionType, meta.DistributionSuffix)
		if err := w.Installer.ExtractAll(ctx, []artifact.Coordinates{bin}, root); err != nil {
			return Result{}, err
		}
	}

	for _, e := range req.versioned(req.Extensions) {
		w.UserInterface.Info(fmt.Sprintf("Installing extension: %s", e.ManagementKey()))
		if _, err := w.Installer.CopyAll(ctx, []artifact.Coordinates{e}, staging.ExtensionsDir(root), false); err != nil {
			return Result{}, err
		}
	}

	for _, name := range req.RemoveExtensions {
		target := filepath.Join(staging.ExtensionsDir(root), name)
		if err := fileops.RemoveFile(target); err != nil {
			return Result{}, failure.Archive("remove extension "+name, err)
		}
		w.UserInterface.Info(fmt.Sprintf("Removed extension: %s", name))
	}

	if len(req.Datasources) > 0 {
		if _, err := w.Installer.CopyAll(ctx, req.versioned(req.Datasources), staging.DatasourceDir(root), false); err != nil {
			return Result{}, err
		}
	}

	if len(req.Contributions) > 0 {
		deploy := staging.DeployDir(root, req.RuntimeName)
		if _, err := w.Installer.CopyAll(ctx, req.versioned(req.Contributions), deploy, false); err != nil {
			return Result{}, err
		}
	}

	if err := w.installConfiguration(ctx, req, root); err != nil {
		return Result{}, err
	}

	count, _ := countFiles(staging.ExtensionsDir(root))
	w.UserInterface.Block("📦", "Runtime image", []ui.KeyValue{
		{Key: "Type", Value: string(profile.Type)},
		{Key: "Runtime", Value: resolved[0].String()},
		{Key: "Image", Value: imageDir},
		{Key: "Extensions", Value: count},
	})
	w.UserInterface.Success("Runtime image assembled")
	return Result{ImageDir: imageDir, RuntimeRoot: root, Runtime: resolved[0], Extensions: count}, nil
}

// versioned fills missing versions from the management table, then from
// the runtime version.
func (r Request) versioned(list []artifact.Coordinates) []artifact.Coordinates {
	out := r.Management.ApplyAll(list)
	for i := range out {
		if !out[i].HasVersion() {
			out[i].Version = r.RuntimeVersion
		}
	}
	return out
}

func (w Workflow) installConfiguration(ctx context.Context, req Request, root string) error {
	for _, file := range req.ConfigurationFiles {
		source, err := staging.AbsPath(req.ProjectDirectory, file.Source)
		if err != nil {
			return failure.Config("configuration file", err)
		}
		if !fileops.FileExists(source) {
			return failure.Archive("install configuration", fmt.Errorf("configuration file not found: %s", source))
		}
		targetDir := filepath.Join(root, filepath.FromSlash(file.Destination))
		if _, err := fileops.CopyFileToDir(ctx, source, targetDir); err != nil {
			return failure.Archive("install configuration "+file.Source, err)
		}
		w.UserInterface.Info(fmt.Sprintf("Installed configuration: %s", file.Source))
	}
	return nil
}

// cleanRuntimes removes every runtime configuration except keep.
func cleanRuntimes(root, keep string) error {
	dir := staging.RuntimesDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == keep {
			continue
		}
		if err := fileops.RemoveDir(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func countFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}
	return count, nil
}
