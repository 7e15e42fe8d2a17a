// Where: cli/internal/infra/repository/layout.go
// What: Maven 2 repository path layout.
// Why: Local and remote repositories address artifacts with the same relative paths.
package repository

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/infra/envutil"
	"github.com/poruru/f3asm/cli/internal/meta"
)

const (
	// VersionRelease selects the newest release from repository metadata.
	VersionRelease = "RELEASE"
	// VersionLatest selects the newest version, snapshots included.
	VersionLatest = "LATEST"

	metadataFile      = "maven-metadata.xml"
	localMetadataFile = "maven-metadata-local.xml"
	snapshotSuffix    = "-SNAPSHOT"
)

var errVersionRange = errors.New("version ranges are not supported")

// ArtifactPath returns the slash-separated repository path of c.
func ArtifactPath(c artifact.Coordinates) string {
	return path.Join(groupPath(c.GroupID), c.ArtifactID, c.Version, c.FileName())
}

// MetadataPath returns the repository path of the group/artifact metadata.
func MetadataPath(groupID, artifactID, name string) string {
	return path.Join(groupPath(groupID), artifactID, name)
}

func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// PomOf returns the descriptor of the POM that accompanies c.
func PomOf(c artifact.Coordinates) artifact.Coordinates {
	return artifact.Coordinates{
		GroupID:    c.GroupID,
		ArtifactID: c.ArtifactID,
		Version:    c.Version,
		Type:       artifact.TypePom,
	}
}

// IsSymbolicVersion reports whether version must be looked up in metadata.
func IsSymbolicVersion(version string) bool {
	return version == VersionRelease || version == VersionLatest
}

func checkVersion(c artifact.Coordinates) error {
	if !c.HasVersion() {
		return fmt.Errorf("no version for %s", c.ManagementKey())
	}
	if strings.HasPrefix(c.Version, "[") || strings.HasPrefix(c.Version, "(") {
		return fmt.Errorf("%s: %w", c, errVersionRange)
	}
	return nil
}

// LocalRepositoryPath picks the local repository: the flag value, then
// F3ASM_LOCAL_REPO, then the configured value, then ~/.m2/repository.
func LocalRepositoryPath(flagValue, configured string) (string, error) {
	for _, candidate := range []string{flagValue, envutil.GetHostEnv(envutil.LocalRepo), configured} {
		if value := strings.TrimSpace(candidate); value != "" {
			return expandHome(value)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(meta.DefaultLocalRepo)), nil
}

func expandHome(value string) (string, error) {
	if value != "~" && !strings.HasPrefix(value, "~/") {
		return filepath.Abs(value)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(value, "~"), "/")), nil
}
