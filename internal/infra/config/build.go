// Where: cli/internal/infra/config/build.go
// What: Build file model (f3asm.yaml).
// Why: One YAML document configures the repository session and every build step.
package config

import (
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
)

// BuildFile is the decoded f3asm.yaml.
type BuildFile struct {
	LocalRepository      string                 `yaml:"localRepository,omitempty"`
	Offline              bool                   `yaml:"offline,omitempty"`
	Repositories         []Repository           `yaml:"repositories,omitempty"`
	DependencyManagement []artifact.Coordinates `yaml:"dependencyManagement,omitempty"`
	Assembly             AssemblyConfig         `yaml:"assembly,omitempty"`
	Contribution         ContributionConfig     `yaml:"contribution,omitempty"`
	Packager             PackagerConfig         `yaml:"packager,omitempty"`
	Webapp               WebappConfig           `yaml:"webapp,omitempty"`

	// Path is the file the configuration was read from; empty when defaults are used.
	Path string `yaml:"-"`
	// BaseDir is the directory relative paths resolve against.
	BaseDir string `yaml:"-"`
}

// Repository is a remote Maven repository.
type Repository struct {
	ID       string `yaml:"id"`
	URL      string `yaml:"url"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// ConfigFile maps a project file to a directory under the runtime root.
type ConfigFile struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// AssemblyConfig configures the runtime image assembly.
type AssemblyConfig struct {
	BuildDirectory      string                 `yaml:"buildDirectory,omitempty"`
	ProjectDirectory    string                 `yaml:"projectDirectory,omitempty"`
	RuntimeVersion      string                 `yaml:"runtimeVersion,omitempty"`
	RuntimeGroup        string                 `yaml:"runtimeGroup,omitempty"`
	Type                string                 `yaml:"type,omitempty"`
	RuntimeName         string                 `yaml:"runtimeName,omitempty"`
	Profiles            []artifact.Coordinates `yaml:"profiles,omitempty"`
	Extensions          []artifact.Coordinates `yaml:"extensions,omitempty"`
	Contributions       []artifact.Coordinates `yaml:"contributions,omitempty"`
	Datasources         []artifact.Coordinates `yaml:"datasources,omitempty"`
	ConfigurationFiles  []ConfigFile           `yaml:"configurationFiles,omitempty"`
	RemoveExtensions    []string               `yaml:"removeExtensions,omitempty"`
	CleanUnusedRuntimes bool                   `yaml:"cleanUnusedRuntimes,omitempty"`
}

// ContributionConfig configures contribution packaging.
type ContributionConfig struct {
	OutputDirectory  string                 `yaml:"outputDirectory,omitempty"`
	ClassesDirectory string                 `yaml:"classesDirectory,omitempty"`
	Name             string                 `yaml:"name,omitempty"`
	Classifier       string                 `yaml:"classifier,omitempty"`
	Packaging        string                 `yaml:"packaging,omitempty"`
	Dependencies     []artifact.Coordinates `yaml:"dependencies,omitempty"`
	Transitive       *bool                  `yaml:"transitive,omitempty"`
	Excludes         []string               `yaml:"excludes,omitempty"`
	Install          *artifact.Coordinates  `yaml:"install,omitempty"`
}

// PackagerConfig configures node packaging into a web application.
type PackagerConfig struct {
	BuildDirectory string                 `yaml:"buildDirectory,omitempty"`
	WarName        string                 `yaml:"warName,omitempty"`
	RuntimeVersion string                 `yaml:"runtimeVersion,omitempty"`
	Profiles       []artifact.Coordinates `yaml:"profiles,omitempty"`
	Extensions     []artifact.Coordinates `yaml:"extensions,omitempty"`
}

// WebappConfig configures the web application assembly.
type WebappConfig struct {
	WebappDirectory string                 `yaml:"webappDirectory,omitempty"`
	FinalName       string                 `yaml:"finalName,omitempty"`
	RuntimeVersion  string                 `yaml:"runtimeVersion,omitempty"`
	BootLibs        []artifact.Coordinates `yaml:"bootLibs,omitempty"`
	Extensions      []artifact.Coordinates `yaml:"extensions,omitempty"`
	Excludes        []string               `yaml:"excludes,omitempty"`
	CoreExtensions  *bool                  `yaml:"coreExtensions,omitempty"`
}

// Management returns the top-level dependency management table.
func (b BuildFile) Management() artifact.Management {
	return artifact.Management(artifact.NormalizeAll(b.DependencyManagement))
}

// BoolOr returns *value, or fallback when value is unset.
func BoolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
