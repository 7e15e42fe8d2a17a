// Where: cli/internal/usecase/webapp/webapp.go
// What: Web application assembly workflow.
// Why: Embed the webapp host and deflated extensions into WEB-INF/lib of an exploded war.
package webapp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
	"github.com/poruru/f3asm/cli/internal/infra/staging"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/meta"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

// Request captures the inputs of a web application assembly.
type Request struct {
	BuildDirectory  string
	WebappDirectory string
	FinalName       string
	RuntimeVersion  string
	BootLibs        []artifact.Coordinates
	Extensions      []artifact.Coordinates
	Excludes        []string
	CoreExtensions  bool
	Management      artifact.Management
}

// Result describes the populated library directory.
type Result struct {
	LibDir     string
	BootLibs   []string
	Extensions []string
}

// Workflow assembles web applications.
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

// CoreExtensions lists the extensions every web application receives.
func CoreExtensions(runtimeVersion string) []artifact.Coordinates {
	return []artifact.Coordinates{
		artifact.New(meta.RuntimeGroup, "fabric3-jdk-proxy", runtimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-java", runtimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-async", runtimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-conversation-propagation", runtimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-sca-intents", runtimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-resource", runtimeVersion),
		artifact.New(meta.RuntimeGroup, "fabric3-web", runtimeVersion),
		artifact.New(meta.WebappGroup, "fabric3-webapp-extension", runtimeVersion),
		artifact.New("javax.transaction", "com.springsource.javax.transaction", "1.1.0"),
	}
}

func (r Request) withDefaults() Request {
	if strings.TrimSpace(r.BuildDirectory) == "" {
		r.BuildDirectory = meta.DefaultBuildDir
	}
	if strings.TrimSpace(r.RuntimeVersion) == "" {
		r.RuntimeVersion = meta.DefaultVersion
	}
	if strings.TrimSpace(r.WebappDirectory) == "" && strings.TrimSpace(r.FinalName) != "" {
		r.WebappDirectory = filepath.Join(r.BuildDirectory, r.FinalName)
	}
	if len(r.BootLibs) == 0 {
		r.BootLibs = []artifact.Coordinates{artifact.New(meta.WebappGroup, "fabric3-webapp-host", r.RuntimeVersion)}
	}
	return r
}

// Validate checks the request before any I/O.
func (r Request) Validate() error {
	if strings.TrimSpace(r.WebappDirectory) == "" {
		return failure.Configf("webappDirectory or finalName is required")
	}
	for _, list := range [][]artifact.Coordinates{r.BootLibs, r.Extensions} {
		for _, c := range list {
			if err := c.Validate(); err != nil {
				return failure.Config(c.String(), err)
			}
		}
	}
	return nil
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

// extensions returns the user extensions followed by the core set, first
// occurrence wins.
func (r Request) extensions() []artifact.Coordinates {
	list := r.versioned(r.Extensions)
	if r.CoreExtensions {
		list = append(list, CoreExtensions(r.RuntimeVersion)...)
	}
	return artifact.Unique(list)
}

// Run installs the boot libraries and deflates every extension into
// WEB-INF/lib, then records them in f3Extensions.properties.
func (w Workflow) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	logger := ctxlog.FromContext(ctx)

	libDir := staging.WebInfLib(req.WebappDirectory)
	if err := fileops.EnsureDir(libDir); err != nil {
		return Result{}, failure.Archive("create "+libDir, err)
	}

	w.UserInterface.Info(fmt.Sprintf("Using fabric3 runtime version %s", req.RuntimeVersion))
	var boot []string
	for _, lib := range req.versioned(req.BootLibs) {
		resolved, err := w.Installer.Resolve(ctx, lib, true)
		if err != nil {
			return Result{}, err
		}
		for _, r := range resolved {
			copied, err := fileops.CopyFileToDirIfModified(ctx, r.Path, libDir)
			if err != nil {
				return Result{}, failure.Archive("copy "+r.File(), err)
			}
			logger.Debug("boot library", "artifact", r.String(), "copied", copied)
			boot = append(boot, r.File())
		}
	}

	deflater := Deflater{LibDir: libDir, Excludes: req.Excludes}
	var names []string
	for _, ext := range req.extensions() {
		resolved, err := w.Installer.Resolve(ctx, ext, false)
		if err != nil {
			return Result{}, err
		}
		if err := deflater.Deflate(ctx, resolved[0].Path); err != nil {
			return Result{}, failure.Archive("deflate "+resolved[0].File(), err)
		}
		names = append(names, resolved[0].File())
	}
	if err := WriteIndex(ctx, filepath.Join(libDir, staging.ExtensionsIndex), names); err != nil {
		return Result{}, failure.Archive("write "+staging.ExtensionsIndex, err)
	}

	w.UserInterface.Block("🌐", "Web application", []ui.KeyValue{
		{Key: "Library directory", Value: libDir},
		{Key: "Boot libraries", Value: len(boot)},
		{Key: "Extensions", Value: len(names)},
	})
	w.UserInterface.Success("Web application assembled")
	return Result{LibDir: libDir, BootLibs: boot, Extensions: names}, nil
}
