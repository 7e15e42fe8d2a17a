// Where: cli/internal/infra/repository/session.go
// What: Artifact resolver backed by a local Maven repository and remotes.
// Why: Build steps only ask for coordinates; the session finds the files.
package repository

import (
	"context"
	"crypto/sha1" //nolint:gosec // Maven publishes SHA-1 side files.
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
)

const zipMIME = "application/zip"

var (
	errChecksumMismatch = errors.New("checksum mismatch")
	errNotArchive       = errors.New("downloaded payload is not an archive")
)

// Resolver maps descriptors to files on local disk.
type Resolver interface {
	Resolve(ctx context.Context, c artifact.Coordinates) (artifact.Resolved, error)
	ResolveTransitive(ctx context.Context, c artifact.Coordinates) ([]artifact.Resolved, error)
}

// Options configures a Session.
type Options struct {
	LocalRepository string
	Remotes         []Remote
	Offline         bool
}

// Session resolves artifacts against one local repository and an ordered
// list of remotes. A Session is not safe for concurrent use.
type Session struct {
	local   string
	remotes []Remote
	offline bool
}

var _ Resolver = (*Session)(nil)

// NewSession returns a Session for opts.
func NewSession(opts Options) *Session {
	return &Session{
		local:   opts.LocalRepository,
		remotes: opts.Remotes,
		offline: opts.Offline,
	}
}

// LocalRepository returns the local repository root.
func (s *Session) LocalRepository() string {
	return s.local
}

// Resolve returns the local file for c, downloading it when absent.
// Symbolic versions are replaced by the concrete version they select.
func (s *Session) Resolve(ctx context.Context, c artifact.Coordinates) (artifact.Resolved, error) {
	c = c.Normalize()
	op := "resolve " + c.String()
	if err := c.Validate(); err != nil {
		return artifact.Resolved{}, failure.Resolution(op, err)
	}
	if err := checkVersion(c); err != nil {
		return artifact.Resolved{}, failure.Resolution(op, err)
	}
	if IsSymbolicVersion(c.Version) {
		version, err := s.resolveVersion(ctx, c)
		if err != nil {
			return artifact.Resolved{}, failure.Resolution(op, err)
		}
		c = c.WithVersion(version)
	}
	path, err := s.fetch(ctx, ArtifactPath(c), isArchiveType(c))
	if err != nil {
		return artifact.Resolved{}, failure.Resolution(op, err)
	}
	return artifact.Resolved{Coordinates: c, Path: path}, nil
}

// Install copies file into the local repository under c and records the
// version in the local metadata. A POM is generated when none exists.
func (s *Session) Install(ctx context.Context, c artifact.Coordinates, file string) (artifact.Resolved, error) {
	c = c.Normalize()
	op := "install " + c.String()
	if err := c.Validate(); err != nil {
		return artifact.Resolved{}, failure.Config(op, err)
	}
	if err := checkVersion(c); err != nil {
		return artifact.Resolved{}, failure.Config(op, err)
	}
	if IsSymbolicVersion(c.Version) {
		return artifact.Resolved{}, failure.Configf("%s: a concrete version is required", op)
	}

	target := s.localPath(ArtifactPath(c))
	if err := fileops.CopyFile(ctx, file, target); err != nil {
		return artifact.Resolved{}, failure.Archive(op, err)
	}
	pomPath := s.localPath(ArtifactPath(PomOf(c)))
	if !fileops.FileExists(pomPath) {
		if err := os.WriteFile(pomPath, []byte(minimalPom(c)), 0o644); err != nil {
			return artifact.Resolved{}, failure.Archive(op, err)
		}
	}

	mdPath := s.localPath(MetadataPath(c.GroupID, c.ArtifactID, localMetadataFile))
	md, _, err := readMetadataFile(ctx, mdPath)
	if err != nil {
		return artifact.Resolved{}, failure.Archive(op, err)
	}
	md.GroupID, md.ArtifactID = c.GroupID, c.ArtifactID
	md.addVersion(c.Version)
	if err := writeMetadataFile(mdPath, md); err != nil {
		return artifact.Resolved{}, failure.Archive(op, err)
	}
	ctxlog.FromContext(ctx).Info("installed artifact", "artifact", c.String(), "path", target)
	return artifact.Resolved{Coordinates: c, Path: target}, nil
}

func (s *Session) localPath(rel string) string {
	return filepath.Join(s.local, filepath.FromSlash(rel))
}

// fetch returns the local path of rel, downloading it from the first remote
// that has it.
func (s *Session) fetch(ctx context.Context, rel string, archive bool) (string, error) {
	target := s.localPath(rel)
	if fileops.FileExists(target) {
		return target, nil
	}
	if s.offline || len(s.remotes) == 0 {
		return "", missingError{rel: rel, where: "local repository " + s.local}
	}
	logger := ctxlog.FromContext(ctx)
	for _, remote := range s.remotes {
		err := s.download(ctx, remote, rel, target, archive)
		if err == nil {
			logger.Debug("downloaded", "repository", remote.ID(), "path", rel)
			return target, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("repository %s: %w", remote.ID(), err)
		}
		logger.Debug("not in repository", "repository", remote.ID(), "path", rel)
	}
	return "", missingError{rel: rel, where: "any repository"}
}

// missingError reports a path that no repository holds. It matches ErrNotFound.
type missingError struct {
	rel   string
	where string
}

func (e missingError) Error() string { return e.rel + " not found in " + e.where }

func (e missingError) Unwrap() error { return ErrNotFound }

func (s *Session) download(ctx context.Context, remote Remote, rel, target string, archive bool) error {
	body, err := remote.Fetch(ctx, rel)
	if err != nil {
		return err
	}
	defer fileops.CloseQuietly(ctx, body, rel)

	if err := fileops.EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.part")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	digest := sha1.New() //nolint:gosec // Maven publishes SHA-1 side files.
	if _, err := io.Copy(io.MultiWriter(tmp, digest), body); err != nil {
		fileops.CloseQuietly(ctx, tmp, tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := s.verifyChecksum(ctx, remote, rel, digest); err != nil {
		return err
	}
	if archive {
		if err := checkArchive(tmpName); err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
	}
	return os.Rename(tmpName, target)
}

// verifyChecksum compares digest with the remote .sha1 side file when the
// remote publishes one.
func (s *Session) verifyChecksum(ctx context.Context, remote Remote, rel string, digest hash.Hash) error {
	body, err := remote.Fetch(ctx, rel+".sha1")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ctxlog.FromContext(ctx).Debug("no checksum published", "repository", remote.ID(), "path", rel)
			return nil
		}
		return err
	}
	defer fileops.CloseQuietly(ctx, body, rel+".sha1")
	data, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil {
		return err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil
	}
	want := strings.ToLower(fields[0])
	got := hex.EncodeToString(digest.Sum(nil))
	if want != got {
		return fmt.Errorf("%s: %w (expected %s, got %s)", rel, errChecksumMismatch, want, got)
	}
	return nil
}

func checkArchive(path string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(zipMIME) {
			return nil
		}
	}
	return fmt.Errorf("%w (detected %s)", errNotArchive, mt.String())
}

func isArchiveType(c artifact.Coordinates) bool {
	switch c.Extension() {
	case artifact.TypeJar, artifact.TypeZip, artifact.TypeWar:
		return true
	default:
		return false
	}
}

// resolveVersion picks the concrete version behind RELEASE or LATEST.
func (s *Session) resolveVersion(ctx context.Context, c artifact.Coordinates) (string, error) {
	logger := ctxlog.FromContext(ctx)
	picker := versionPicker{symbol: c.Version}

	localMd, ok, err := readMetadataFile(ctx, s.localPath(MetadataPath(c.GroupID, c.ArtifactID, localMetadataFile)))
	if err != nil {
		return "", err
	}
	if ok {
		picker.add(localMd)
	}

	for _, remote := range s.activeRemotes() {
		md, err := s.remoteMetadata(ctx, remote, c)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.Warn("metadata unavailable", "repository", remote.ID(), "artifact", c.ManagementKey(), "error", err)
			}
			continue
		}
		picker.add(md)
	}

	if version, ok := picker.pick(); ok {
		logger.Debug("resolved version", "artifact", c.ManagementKey(), "symbol", c.Version, "version", version)
		return version, nil
	}
	// offline builds fall back to whatever is already installed
	picker.addListed(s.localVersions(c)...)
	if version, ok := picker.pick(); ok {
		return version, nil
	}
	return "", fmt.Errorf("no versions available for %s", c.ManagementKey())
}

func (s *Session) activeRemotes() []Remote {
	if s.offline {
		return nil
	}
	return s.remotes
}

// remoteMetadata downloads the remote metadata, caching it next to the
// artifact as maven-metadata-<id>.xml.
func (s *Session) remoteMetadata(ctx context.Context, remote Remote, c artifact.Coordinates) (metadata, error) {
	body, err := remote.Fetch(ctx, MetadataPath(c.GroupID, c.ArtifactID, metadataFile))
	if err != nil {
		return metadata{}, err
	}
	defer fileops.CloseQuietly(ctx, body, metadataFile)
	md, err := parseMetadata(body)
	if err != nil {
		return metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	cache := s.localPath(MetadataPath(c.GroupID, c.ArtifactID, "maven-metadata-"+remote.ID()+".xml"))
	if err := fileops.EnsureDir(filepath.Dir(cache)); err == nil {
		if err := writeMetadataFile(cache, md); err != nil {
			ctxlog.FromContext(ctx).Debug("metadata cache not written", "path", cache, "error", err)
		}
	}
	return md, nil
}

func (s *Session) localVersions(c artifact.Coordinates) []string {
	entries, err := os.ReadDir(s.localPath(MetadataPath(c.GroupID, c.ArtifactID, "")))
	if err != nil {
		return nil
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	return versions
}

func minimalPom(c artifact.Coordinates) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<project>\n  <modelVersion>4.0.0</modelVersion>\n")
	fmt.Fprintf(&b, "  <groupId>%s</groupId>\n", c.GroupID)
	fmt.Fprintf(&b, "  <artifactId>%s</artifactId>\n", c.ArtifactID)
	fmt.Fprintf(&b, "  <version>%s</version>\n", c.Version)
	fmt.Fprintf(&b, "  <packaging>%s</packaging>\n", c.Type)
	b.WriteString("</project>\n")
	return b.String()
}
