// Where: cli/internal/domain/artifact/coordinates.go
// What: Maven dependency descriptors and resolved artifacts.
// Why: Give every build step one vocabulary for "which binary" and "where it landed".
package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TypeJar                = "jar"
	TypeZip                = "zip"
	TypeWar                = "war"
	TypePom                = "pom"
	TypeContribution       = "sca-contribution"
	TypeContributionJar    = "sca-contribution-jar"
	ScopeCompile           = "compile"
	ScopeRuntime           = "runtime"
	ScopeProvided          = "provided"
	ScopeTest              = "test"
	ScopeSystem            = "system"
	contributionTypePrefix = "sca-contribution"
)

var (
	errMissingGroup    = errors.New("groupId is required")
	errMissingArtifact = errors.New("artifactId is required")
	errBadCoordinates  = errors.New("expected groupId:artifactId[:type[:classifier]]:version")
)

// extensions maps packaging types whose file extension differs from the type name.
var extensions = map[string]string{
	TypeContributionJar: "jar",
	TypeContribution:    "zip",
	"test-jar":          "jar",
	"maven-plugin":      "jar",
	"ejb":               "jar",
	"ejb-client":        "jar",
	"java-source":       "jar",
	"javadoc":           "jar",
	"bundle":            "jar",
}

// Coordinates describes a dependency. Version may be empty until it is filled
// from a management table or resolved from repository metadata.
type Coordinates struct {
	GroupID    string `yaml:"groupId" json:"groupId"`
	ArtifactID string `yaml:"artifactId" json:"artifactId"`
	Version    string `yaml:"version,omitempty" json:"version,omitempty"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"`
	Classifier string `yaml:"classifier,omitempty" json:"classifier,omitempty"`
	Scope      string `yaml:"scope,omitempty" json:"scope,omitempty"`
	Optional   bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// New returns jar coordinates for group:artifact:version.
func New(groupID, artifactID, version string) Coordinates {
	return Coordinates{GroupID: groupID, ArtifactID: artifactID, Version: version, Type: TypeJar}
}

// Parse reads the short form groupId:artifactId[:type[:classifier]]:version.
func Parse(value string) (Coordinates, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	var c Coordinates
	switch len(parts) {
	case 3:
		c = Coordinates{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
	case 4:
		c = Coordinates{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3]}
	case 5:
		c = Coordinates{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Classifier: parts[3], Version: parts[4]}
	default:
		return Coordinates{}, fmt.Errorf("parse %q: %w", value, errBadCoordinates)
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Coordinates{}, fmt.Errorf("parse %q: %w", value, err)
	}
	return c, nil
}

// UnmarshalYAML accepts either the mapping form or the short string form.
func (c *Coordinates) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	type plain Coordinates
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*c = Coordinates(decoded).Normalize()
	return nil
}

// Normalize trims every field and applies the jar type default.
func (c Coordinates) Normalize() Coordinates {
	c.GroupID = strings.TrimSpace(c.GroupID)
	c.ArtifactID = strings.TrimSpace(c.ArtifactID)
	c.Version = strings.TrimSpace(c.Version)
	c.Type = strings.TrimSpace(c.Type)
	c.Classifier = strings.TrimSpace(c.Classifier)
	c.Scope = strings.ToLower(strings.TrimSpace(c.Scope))
	if c.Type == "" {
		c.Type = TypeJar
	}
	return c
}

// Validate checks that group and artifact are present. Version is not
// required here; callers fill it before resolution.
func (c Coordinates) Validate() error {
	if c.GroupID == "" {
		return errMissingGroup
	}
	if c.ArtifactID == "" {
		return errMissingArtifact
	}
	return nil
}

// WithVersion returns a copy using version.
func (c Coordinates) WithVersion(version string) Coordinates {
	c.Version = version
	return c
}

// WithType returns a copy using typ and classifier.
func (c Coordinates) WithType(typ, classifier string) Coordinates {
	c.Type = typ
	c.Classifier = classifier
	return c
}

// Key identifies the descriptor for equality: group, artifact, version and type.
func (c Coordinates) Key() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.Version, c.typeOrJar()}, ":")
}

// ManagementKey identifies the descriptor in a dependency management table.
func (c Coordinates) ManagementKey() string {
	return c.GroupID + ":" + c.ArtifactID
}

// ConflictKey identifies the descriptor during transitive mediation, where
// only one version of each group/artifact/type/classifier survives.
func (c Coordinates) ConflictKey() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.typeOrJar(), c.Classifier}, ":")
}

// String renders the short form accepted by Parse.
func (c Coordinates) String() string {
	parts := []string{c.GroupID, c.ArtifactID}
	if c.Classifier != "" {
		parts = append(parts, c.typeOrJar(), c.Classifier)
	} else if c.typeOrJar() != TypeJar {
		parts = append(parts, c.typeOrJar())
	}
	if c.Version != "" {
		parts = append(parts, c.Version)
	}
	return strings.Join(parts, ":")
}

// Extension returns the file extension used for the packaging type.
func (c Coordinates) Extension() string {
	typ := c.typeOrJar()
	if ext, ok := extensions[typ]; ok {
		return ext
	}
	return typ
}

// FileName returns artifactId-version[-classifier].extension.
func (c Coordinates) FileName() string {
	name := c.ArtifactID + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Extension()
}

// IsContribution reports whether the artifact is itself a deployable contribution.
func (c Coordinates) IsContribution() bool {
	return strings.HasPrefix(c.typeOrJar(), contributionTypePrefix)
}

// InRuntimeScope reports whether the dependency is needed at runtime.
func (c Coordinates) InRuntimeScope() bool {
	switch c.Scope {
	case "", ScopeCompile, ScopeRuntime:
		return true
	default:
		return false
	}
}

// HasVersion reports whether a concrete or symbolic version is set.
func (c Coordinates) HasVersion() bool {
	return c.Version != ""
}

func (c Coordinates) typeOrJar() string {
	if c.Type == "" {
		return TypeJar
	}
	return c.Type
}

// Resolved is a descriptor bound to a file in the local repository.
type Resolved struct {
	Coordinates
	Path string
}

// File returns the base name of the resolved file.
func (r Resolved) File() string {
	return filepath.Base(r.Path)
}
