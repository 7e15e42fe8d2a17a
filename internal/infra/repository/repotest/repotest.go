// Package repotest builds offline Maven repositories for tests.
package repotest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/infra/repository"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	require.TestingT
	Helper()
	TempDir() string
}

// Repo is a local repository with an offline session over it.
type Repo struct {
	t       TB
	Root    string
	Session *repository.Session
}

// New creates an empty local repository.
func New(t TB) *Repo {
	t.Helper()
	root := t.TempDir()
	return &Repo{
		t:       t,
		Root:    root,
		Session: repository.NewSession(repository.Options{LocalRepository: root, Offline: true}),
	}
}

// Publish installs an archive holding entries under c. Dependencies are
// recorded in the generated POM.
func (r *Repo) Publish(c artifact.Coordinates, entries map[string]string, deps ...artifact.Coordinates) artifact.Resolved {
	r.t.Helper()
	c = c.Normalize()
	if len(deps) > 0 {
		pomPath := filepath.Join(r.Root, filepath.FromSlash(repository.ArtifactPath(repository.PomOf(c))))
		require.NoError(r.t, os.MkdirAll(filepath.Dir(pomPath), 0o755))
		require.NoError(r.t, os.WriteFile(pomPath, []byte(PomXML(c, deps...)), 0o644))
	}
	src := filepath.Join(r.t.TempDir(), c.FileName())
	require.NoError(r.t, os.WriteFile(src, ArchiveBytes(r.t, entries), 0o644))
	resolved, err := r.Session.Install(context.Background(), c, src)
	require.NoError(r.t, err)
	return resolved
}

// PomXML renders a POM for c declaring deps.
func PomXML(c artifact.Coordinates, deps ...artifact.Coordinates) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n<project>\n")
	fmt.Fprintf(&b, "  <groupId>%s</groupId>\n  <artifactId>%s</artifactId>\n  <version>%s</version>\n", c.GroupID, c.ArtifactID, c.Version)
	b.WriteString("  <dependencies>\n")
	for _, d := range deps {
		b.WriteString("    <dependency>")
		fmt.Fprintf(&b, "<groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version>", d.GroupID, d.ArtifactID, d.Version)
		if d.Type != "" && d.Type != artifact.TypeJar {
			fmt.Fprintf(&b, "<type>%s</type>", d.Type)
		}
		if d.Classifier != "" {
			fmt.Fprintf(&b, "<classifier>%s</classifier>", d.Classifier)
		}
		if d.Scope != "" {
			fmt.Fprintf(&b, "<scope>%s</scope>", d.Scope)
		}
		if d.Optional {
			b.WriteString("<optional>true</optional>")
		}
		b.WriteString("</dependency>\n")
	}
	b.WriteString("  </dependencies>\n</project>\n")
	return b.String()
}

// ArchiveBytes returns a zip holding entries in name order. Names ending in
// "/" become directory entries.
func ArchiveBytes(t require.TestingT, entries map[string]string) []byte {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.Create(name)
		require.NoError(t, err)
		if strings.HasSuffix(name, "/") {
			continue
		}
		_, err = io.WriteString(fw, entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Entries lists the entry names of the archive at path.
func Entries(t require.TestingT, path string) []string {
	reader, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer reader.Close()
	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	return names
}
