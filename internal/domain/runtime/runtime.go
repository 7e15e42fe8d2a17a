// Where: cli/internal/domain/runtime/runtime.go
// What: Runtime image type selection.
// Why: Map the configured runtime type to its distribution artifact and image root.
package runtime

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/meta"
)

var errUnsupportedType = errors.New("invalid runtime type specified")

// Type is the runtime image variant.
type Type string

const (
	TypeStandalone Type = "standalone"
	TypeTomcat     Type = "tomcat"
)

// Profile describes how an image variant is laid out.
type Profile struct {
	Type Type
	// ArtifactID is the distribution archive for the variant.
	ArtifactID string
	// RootSubdir is the runtime root relative to the image directory.
	RootSubdir string
}

// NormalizeType validates the runtime type, ignoring case and surrounding
// whitespace. An empty value selects standalone.
func NormalizeType(value string) (Type, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch Type(trimmed) {
	case "", TypeStandalone:
		return TypeStandalone, nil
	case TypeTomcat:
		return TypeTomcat, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedType, value)
	}
}

// Resolve returns the profile for value.
func Resolve(value string) (Profile, error) {
	typ, err := NormalizeType(value)
	if err != nil {
		return Profile{}, err
	}
	if typ == TypeTomcat {
		// tomcat is installed as <tomcat home>/fabric3
		return Profile{Type: typ, ArtifactID: "runtime-tomcat", RootSubdir: meta.TomcatRuntimeRoot}, nil
	}
	return Profile{Type: typ, ArtifactID: "runtime-standalone"}, nil
}

// RootDir returns the runtime root inside imageDir.
func (p Profile) RootDir(imageDir string) string {
	if p.RootSubdir == "" {
		return imageDir
	}
	return filepath.Join(imageDir, p.RootSubdir)
}

// IsUnsupportedType reports whether err came from an unknown runtime type.
func IsUnsupportedType(err error) bool {
	return errors.Is(err, errUnsupportedType)
}
