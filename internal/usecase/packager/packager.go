// Where: cli/internal/usecase/packager/packager.go
// What: Embedded node packaging into a web application.
// Why: Ship the node runtime and its extensions inside WEB-INF/lib of an existing war layout.
package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/archive"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
	"github.com/poruru/f3asm/cli/internal/infra/staging"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/meta"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

const jarSuffix = ".jar"

// Request captures the inputs of node packaging.
type Request struct {
	BuildDirectory string
	WarName        string
	RuntimeVersion string
	Profiles       []artifact.Coordinates
	Extensions     []artifact.Coordinates
	Management     artifact.Management
}

// Result describes the packaged web application library directory.
type Result struct {
	LibDir     string
	Bundle     string
	Extensions []string
}

// Workflow packages the node runtime.
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
	return r
}

// Validate checks the request before any I/O.
func (r Request) Validate() error {
	name := strings.TrimSpace(r.WarName)
	if name == "" {
		return failure.Configf("war name is required")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return failure.Configf("war name must be a directory name: %s", r.WarName)
	}
	for _, c := range append(append([]artifact.Coordinates{}, r.Profiles...), r.Extensions...) {
		if err := c.Validate(); err != nil {
			return failure.Config(c.String(), err)
		}
	}
	return nil
}

// extensions returns the configured extensions followed by the default
// JSON databinding extension.
func (r Request) extensions() []artifact.Coordinates {
	out := r.versioned(r.Extensions)
	return append(out, artifact.New(meta.RuntimeGroup, "fabric3-databinding-json", r.RuntimeVersion))
}

func (r Request) versioned(list []artifact.Coordinates) []artifact.Coordinates {
	out := r.Management.ApplyAll(list)
	for i := range out {
		if !out[i].HasVersion() {
			out[i].Version = r.RuntimeVersion
		}
	}
	return out
}

// Run stages profiles and extensions, bundles the extensions into
// f3.extensions.jar and adds the node libraries to WEB-INF/lib.
func (w Workflow) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	libDir := staging.WebInfLib(filepath.Join(req.BuildDirectory, req.WarName))
	stagingDir := staging.NodeStagingDir(req.BuildDirectory)
	extensionsDir := staging.NodeExtensionsDir(req.BuildDirectory)
	if err := staging.EnsureDirs(libDir, stagingDir, extensionsDir); err != nil {
		return Result{}, failure.Archive("prepare directories", err)
	}

	for _, p := range req.versioned(req.Profiles) {
		w.UserInterface.Info(fmt.Sprintf("Resolving profile: %s", p.ManagementKey()))
		bin := p.WithType(meta.DistributionType, meta.DistributionSuffix)
		if err := w.Installer.ExtractAll(ctx, []artifact.Coordinates{bin}, stagingDir); err != nil {
			return Result{}, err
		}
	}

	if _, err := w.Installer.CopyAll(ctx, req.extensions(), extensionsDir, false); err != nil {
		return Result{}, err
	}

	bundle := filepath.Join(libDir, staging.ExtensionsBundle)
	bundled, err := bundleExtensions(ctx, extensionsDir, bundle)
	if err != nil {
		return Result{}, failure.Archive("create "+staging.ExtensionsBundle, err)
	}

	node := []artifact.Coordinates{
		artifact.New(meta.RuntimeGroup, "fabric3-node", req.RuntimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-node-extensions", req.RuntimeVersion),
	}
	if _, err := w.Installer.CopyAll(ctx, node, libDir, false); err != nil {
		return Result{}, err
	}

	w.UserInterface.Block("📦", "Node package", []ui.KeyValue{
		{Key: "Library directory", Value: libDir},
		{Key: "Bundled extensions", Value: len(bundled)},
	})
	w.UserInterface.Success("Node packaged")
	return Result{LibDir: libDir, Bundle: bundle, Extensions: bundled}, nil
}

// bundleExtensions stores every top-level jar of dir in a new archive at
// target, each entry named after its file.
func bundleExtensions(ctx context.Context, dir, target string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	w, err := archive.Create(ctx, target, archive.KindZip)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), jarSuffix) {
			continue
		}
		if err := w.AddFile(filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			fileops.CloseQuietly(ctx, w, target)
			return nil, err
		}
		names = append(names, entry.Name())
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return names, nil
}
