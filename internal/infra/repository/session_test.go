package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/envutil"
)

func TestResolveDownloadsIntoLocalRepository(t *testing.T) {
	repo := newRemoteRepo(t)
	dist := artifact.Coordinates{GroupID: "org.codehaus.fabric3", ArtifactID: "runtime-standalone", Version: "1.9.6", Type: "zip", Classifier: "bin"}
	repo.publish(dist, jarBytes(t, map[string]string{"bin/server.jar": "x"}))
	session := httpSession(t, repo)

	resolved, err := session.Resolve(context.Background(), dist)
	require.NoError(t, err)

	want := filepath.Join(session.LocalRepository(), "org", "codehaus", "fabric3", "runtime-standalone", "1.9.6", "runtime-standalone-1.9.6-bin.zip")
	assert.Equal(t, want, resolved.Path)
	assert.Equal(t, "runtime-standalone-1.9.6-bin.zip", resolved.File())
	assert.FileExists(t, want)

	offline := NewSession(Options{LocalRepository: session.LocalRepository(), Offline: true})
	again, err := offline.Resolve(context.Background(), dist)
	require.NoError(t, err)
	assert.Equal(t, want, again.Path)
}

func TestResolveRejectsChecksumMismatch(t *testing.T) {
	repo := newRemoteRepo(t)
	c := artifact.New("org.acme", "broken", "1.0")
	repo.write(ArtifactPath(c), jarBytes(t, map[string]string{"a.class": "a"}))
	repo.write(ArtifactPath(c)+".sha1", []byte("0000000000000000000000000000000000000000"))
	session := httpSession(t, repo)

	_, err := session.Resolve(context.Background(), c)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindResolution))
	assert.ErrorIs(t, err, errChecksumMismatch)
	assert.NoFileExists(t, filepath.Join(session.LocalRepository(), filepath.FromSlash(ArtifactPath(c))))
}

func TestResolveRejectsNonArchivePayload(t *testing.T) {
	repo := newRemoteRepo(t)
	c := artifact.New("org.acme", "html", "1.0")
	repo.publish(c, []byte("<html><body>login required</body></html>"))
	session := httpSession(t, repo)

	_, err := session.Resolve(context.Background(), c)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotArchive)
}

func TestResolveMissingArtifact(t *testing.T) {
	session := httpSession(t, newRemoteRepo(t))

	_, err := session.Resolve(context.Background(), artifact.New("org.acme", "missing", "1.0"))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindResolution))
	assert.Contains(t, err.Error(), "not found in any repository")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveOfflineWithoutLocalCopy(t *testing.T) {
	session := NewSession(Options{LocalRepository: t.TempDir(), Offline: true})

	_, err := session.Resolve(context.Background(), artifact.New("org.acme", "missing", "1.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in local repository")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRejectsVersionRangesAndMissingVersions(t *testing.T) {
	session := NewSession(Options{LocalRepository: t.TempDir(), Offline: true})

	_, err := session.Resolve(context.Background(), artifact.New("org.acme", "ranged", "[1.0,2.0)"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errVersionRange)

	_, err = session.Resolve(context.Background(), artifact.New("org.acme", "unversioned", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no version for org.acme:unversioned")
}

func TestResolveReleaseThroughMetadata(t *testing.T) {
	repo := newRemoteRepo(t)
	repo.publishMetadata("org.codehaus.fabric3", "fabric3-web", "", "1.9.0", "1.10.0", "2.0.0-SNAPSHOT")
	repo.publishJar(artifact.New("org.codehaus.fabric3", "fabric3-web", "1.10.0"), "")
	session := httpSession(t, repo)

	resolved, err := session.Resolve(context.Background(), artifact.New("org.codehaus.fabric3", "fabric3-web", VersionRelease))
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", resolved.Version)
	assert.Equal(t, "fabric3-web-1.10.0.jar", resolved.File())
	assert.FileExists(t, filepath.Join(session.LocalRepository(), "org", "codehaus", "fabric3", "fabric3-web", "maven-metadata-central.xml"))
}

func TestVersionPicker(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		md     []metadata
		want   string
		ok     bool
	}{
		{
			name:   "explicit release wins",
			symbol: VersionRelease,
			md:     []metadata{{Versioning: versioning{Release: "1.2", Versions: []string{"1.2", "1.3"}}}},
			want:   "1.2",
			ok:     true,
		},
		{
			name:   "highest explicit across repositories",
			symbol: VersionRelease,
			md: []metadata{
				{Versioning: versioning{Release: "1.9.2"}},
				{Versioning: versioning{Release: "1.10.0"}},
			},
			want: "1.10.0",
			ok:   true,
		},
		{
			name:   "release skips snapshots",
			symbol: VersionRelease,
			md:     []metadata{{Versioning: versioning{Versions: []string{"1.0", "1.1-SNAPSHOT"}}}},
			want:   "1.0",
			ok:     true,
		},
		{
			name:   "latest includes snapshots",
			symbol: VersionLatest,
			md:     []metadata{{Versioning: versioning{Versions: []string{"1.0", "1.1-SNAPSHOT"}}}},
			want:   "1.1-SNAPSHOT",
			ok:     true,
		},
		{
			name:   "nothing published",
			symbol: VersionRelease,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picker := versionPicker{symbol: tt.symbol}
			for _, md := range tt.md {
				picker.add(md)
			}
			got, ok := picker.pick()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstallThenResolveRelease(t *testing.T) {
	ctx := context.Background()
	local := t.TempDir()
	session := NewSession(Options{LocalRepository: local, Offline: true})
	file := filepath.Join(t.TempDir(), "orders.jar")
	require.NoError(t, os.WriteFile(file, jarBytes(t, map[string]string{"Orders.class": "x"}), 0o644))

	c := artifact.Coordinates{GroupID: "org.acme", ArtifactID: "orders", Version: "1.0.0", Type: artifact.TypeContributionJar}
	installed, err := session.Install(ctx, c, file)
	require.NoError(t, err)
	assert.Equal(t, "orders-1.0.0.jar", installed.File())
	assert.FileExists(t, filepath.Join(local, "org", "acme", "orders", "1.0.0", "orders-1.0.0.pom"))

	c2 := c.WithVersion("1.1.0")
	_, err = session.Install(ctx, c2, file)
	require.NoError(t, err)

	resolved, err := session.Resolve(ctx, c.WithVersion(VersionRelease))
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", resolved.Version)
}

func TestInstallRequiresConcreteVersion(t *testing.T) {
	session := NewSession(Options{LocalRepository: t.TempDir()})
	_, err := session.Install(context.Background(), artifact.New("org.acme", "orders", VersionRelease), "unused")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindConfig))
}

func TestResolveFromS3Remote(t *testing.T) {
	c := artifact.New("org.acme", "lib", "1.0")
	data := jarBytes(t, map[string]string{"Lib.class": "x"})
	api := &fakeS3{objects: map[string][]byte{"artifacts/releases/" + ArtifactPath(c): data}}
	factory := &fakeFactory{api: api}

	remote, err := NewRemote(context.Background(), RemoteSpec{ID: "s3", URL: "s3://artifacts/releases", Endpoint: "http://localhost:9000"}, factory, nil)
	require.NoError(t, err)
	session := NewSession(Options{LocalRepository: t.TempDir(), Remotes: []Remote{remote}})

	resolved, err := session.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.FileExists(t, resolved.Path)
	assert.Equal(t, []string{"http://localhost:9000"}, factory.endpoints)
	assert.Contains(t, api.calls, "artifacts/releases/"+ArtifactPath(c)+".sha1")
}

func TestResolveFromFileRemote(t *testing.T) {
	repo := newRemoteRepo(t)
	c := artifact.New("org.acme", "lib", "2.0")
	repo.publishJar(c, "")
	remote, err := NewRemote(context.Background(), RemoteSpec{ID: "shared", URL: "file://" + filepath.ToSlash(repo.root)}, nil, nil)
	require.NoError(t, err)
	session := NewSession(Options{LocalRepository: t.TempDir(), Remotes: []Remote{remote}})

	resolved, err := session.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "lib-2.0.jar", resolved.File())
}

func TestNewRemoteRejectsUnknownScheme(t *testing.T) {
	_, err := NewRemote(context.Background(), RemoteSpec{ID: "x", URL: "ftp://example.com/repo"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported url scheme")
}

func TestLocalRepositoryPathPrecedence(t *testing.T) {
	flagDir := filepath.Join(t.TempDir(), "flag")
	envDir := filepath.Join(t.TempDir(), "env")
	cfgDir := filepath.Join(t.TempDir(), "cfg")

	t.Setenv(envutil.HostEnvKey(envutil.LocalRepo), envDir)
	got, err := LocalRepositoryPath(flagDir, cfgDir)
	require.NoError(t, err)
	assert.Equal(t, flagDir, got)

	got, err = LocalRepositoryPath("", cfgDir)
	require.NoError(t, err)
	assert.Equal(t, envDir, got)

	t.Setenv(envutil.HostEnvKey(envutil.LocalRepo), "")
	got, err = LocalRepositoryPath("", cfgDir)
	require.NoError(t, err)
	assert.Equal(t, cfgDir, got)

	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err = LocalRepositoryPath("", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".m2", "repository"), got)
}
