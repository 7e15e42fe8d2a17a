// Where: cli/internal/infra/staging/staging.go
// What: Shared helpers for staged output layouts.
// Why: Keep build steps and the runtime aligned on where staged files land.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/meta"
)

const (
	// ExtensionsBundle is the jar bundling node extensions inside WEB-INF/lib.
	ExtensionsBundle = "f3.extensions.jar"
	// ExtensionsIndex lists the deflated extensions of a web application.
	ExtensionsIndex = "f3Extensions.properties"

	extensionsDir  = "extensions"
	datasourceDir  = "datasource"
	runtimesDir    = "runtimes"
	deployDir      = "deploy"
	webInfLibDir   = "WEB-INF/lib"
	nodeStagingDir = "f3"
)

// ImageDir returns <buildDir>/image.
func ImageDir(buildDir string) string {
	return filepath.Join(buildDir, meta.ImageDir)
}

// ExtensionsDir returns the extension directory of a runtime root.
func ExtensionsDir(root string) string {
	return filepath.Join(root, extensionsDir)
}

// DatasourceDir returns the datasource driver directory of a runtime root.
func DatasourceDir(root string) string {
	return filepath.Join(root, extensionsDir, datasourceDir)
}

// RuntimesDir returns the directory holding runtime configurations.
func RuntimesDir(root string) string {
	return filepath.Join(root, runtimesDir)
}

// DeployDir returns the deploy directory of the named runtime configuration.
func DeployDir(root, runtimeName string) string {
	return filepath.Join(root, runtimesDir, runtimeName, deployDir)
}

// WebInfLib returns WEB-INF/lib below a web application directory.
func WebInfLib(webappDir string) string {
	return filepath.Join(webappDir, filepath.FromSlash(webInfLibDir))
}

// NodeStagingDir returns <buildDir>/f3, where node profiles are unpacked.
func NodeStagingDir(buildDir string) string {
	return filepath.Join(buildDir, nodeStagingDir)
}

// NodeExtensionsDir returns <buildDir>/f3/extensions.
func NodeExtensionsDir(buildDir string) string {
	return filepath.Join(buildDir, nodeStagingDir, extensionsDir)
}

// ContributionFileName returns name[-classifier].(jar|zip). Packagings that
// are a suffix of sca-contribution-jar (such as "jar") produce a jar.
func ContributionFileName(name, classifier, packaging string) string {
	base := strings.TrimSpace(name)
	if c := strings.TrimSpace(classifier); c != "" {
		base += "-" + c
	}
	packaging = strings.TrimSpace(packaging)
	if packaging == "" || strings.HasSuffix(artifact.TypeContributionJar, packaging) {
		return base + ".jar"
	}
	return base + ".zip"
}

// AbsPath resolves path against base unless it is already absolute.
func AbsPath(base, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is empty")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if base == "" {
		return filepath.Abs(path)
	}
	return filepath.Join(base, path), nil
}

// EnsureDirs creates every directory in paths.
func EnsureDirs(paths ...string) error {
	for _, path := range paths {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil
}
