// Where: cli/internal/infra/repository/metadata.go
// What: maven-metadata.xml model and symbolic version selection.
// Why: RELEASE and LATEST are resolved against what the repositories publish.
package repository

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/poruru/f3asm/cli/internal/infra/fileops"
)

type metadata struct {
	XMLName    xml.Name   `xml:"metadata"`
	GroupID    string     `xml:"groupId,omitempty"`
	ArtifactID string     `xml:"artifactId,omitempty"`
	Versioning versioning `xml:"versioning"`
}

type versioning struct {
	Latest      string   `xml:"latest,omitempty"`
	Release     string   `xml:"release,omitempty"`
	Versions    []string `xml:"versions>version"`
	LastUpdated string   `xml:"lastUpdated,omitempty"`
}

func parseMetadata(r io.Reader) (metadata, error) {
	var md metadata
	if err := xml.NewDecoder(r).Decode(&md); err != nil {
		return metadata{}, err
	}
	return md, nil
}

func readMetadataFile(ctx context.Context, path string) (metadata, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return metadata{}, false, nil
		}
		return metadata{}, false, err
	}
	defer fileops.CloseQuietly(ctx, file, path)
	md, err := parseMetadata(file)
	if err != nil {
		return metadata{}, false, err
	}
	return md, true, nil
}

func writeMetadataFile(path string, md metadata) error {
	data, err := xml.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// addVersion records version in md, keeping the version list unique.
func (md *metadata) addVersion(version string) {
	for _, existing := range md.Versioning.Versions {
		if existing == version {
			return
		}
	}
	md.Versioning.Versions = append(md.Versioning.Versions, version)
	if md.Versioning.Latest == "" || compareVersions(version, md.Versioning.Latest) > 0 {
		md.Versioning.Latest = version
	}
	if !isSnapshot(version) && (md.Versioning.Release == "" || compareVersions(version, md.Versioning.Release) > 0) {
		md.Versioning.Release = version
	}
}

// versionPicker accumulates metadata from several repositories and picks
// the version a symbolic request stands for.
type versionPicker struct {
	symbol   string
	explicit []string
	listed   []string
}

func (p *versionPicker) add(md metadata) {
	switch p.symbol {
	case VersionRelease:
		if md.Versioning.Release != "" {
			p.explicit = append(p.explicit, md.Versioning.Release)
		}
	case VersionLatest:
		if md.Versioning.Latest != "" {
			p.explicit = append(p.explicit, md.Versioning.Latest)
		}
	}
	p.listed = append(p.listed, md.Versioning.Versions...)
}

func (p *versionPicker) addListed(versions ...string) {
	p.listed = append(p.listed, versions...)
}

// pick returns the highest explicit release/latest marker, falling back to
// the highest listed version. RELEASE never selects a snapshot.
func (p *versionPicker) pick() (string, bool) {
	if best, ok := highest(p.explicit, p.symbol == VersionRelease); ok {
		return best, true
	}
	return highest(p.listed, p.symbol == VersionRelease)
}

func highest(versions []string, releasesOnly bool) (string, bool) {
	best := ""
	for _, v := range versions {
		v = strings.TrimSpace(v)
		if v == "" || (releasesOnly && isSnapshot(v)) {
			continue
		}
		if best == "" || compareVersions(v, best) > 0 {
			best = v
		}
	}
	return best, best != ""
}

// compareVersions orders semver-compatible versions semantically and falls
// back to lexical order when either side does not parse.
func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}

func isSnapshot(version string) bool {
	return strings.HasSuffix(version, snapshotSuffix)
}
