package repository

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // test fixtures mirror Maven side files.
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
)

// remoteRepo is an on-disk Maven layout served over HTTP.
type remoteRepo struct {
	t    *testing.T
	root string
}

func newRemoteRepo(t *testing.T) *remoteRepo {
	t.Helper()
	return &remoteRepo{t: t, root: t.TempDir()}
}

func (r *remoteRepo) serve() *httptest.Server {
	server := httptest.NewServer(http.FileServer(http.Dir(r.root)))
	r.t.Cleanup(server.Close)
	return server
}

func (r *remoteRepo) write(rel string, data []byte) {
	r.t.Helper()
	target := filepath.Join(r.root, filepath.FromSlash(rel))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(r.t, os.WriteFile(target, data, 0o644))
}

// publish writes c with a matching .sha1 side file.
func (r *remoteRepo) publish(c artifact.Coordinates, data []byte) {
	r.t.Helper()
	rel := ArtifactPath(c)
	r.write(rel, data)
	r.write(rel+".sha1", []byte(sha1Hex(data)+"  "+c.FileName()+"\n"))
}

// publishJar writes a jar for c plus a POM declaring deps.
func (r *remoteRepo) publishJar(c artifact.Coordinates, pomBody string) {
	r.t.Helper()
	r.publish(c, jarBytes(r.t, map[string]string{"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n", "x.class": c.ArtifactID}))
	if pomBody != "" {
		r.publish(PomOf(c), []byte(pomBody))
	}
}

func (r *remoteRepo) publishMetadata(groupID, artifactID, release string, versions ...string) {
	r.t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "<metadata><groupId>%s</groupId><artifactId>%s</artifactId><versioning>", groupID, artifactID)
	if release != "" {
		fmt.Fprintf(&b, "<release>%s</release>", release)
	}
	b.WriteString("<versions>")
	for _, v := range versions {
		fmt.Fprintf(&b, "<version>%s</version>", v)
	}
	b.WriteString("</versions></versioning></metadata>")
	r.write(MetadataPath(groupID, artifactID, metadataFile), []byte(b.String()))
}

func pomXML(groupID, artifactID, version, body string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>%s</groupId>
  <artifactId>%s</artifactId>
  <version>%s</version>
%s
</project>`, groupID, artifactID, version, body)
}

func jarBytes(t testing.TB, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec // test fixture
	return hex.EncodeToString(sum[:])
}

func httpSession(t *testing.T, repo *remoteRepo) *Session {
	t.Helper()
	server := repo.serve()
	remote, err := NewRemote(context.Background(), RemoteSpec{ID: "central", URL: server.URL + "/"}, nil, server.Client())
	require.NoError(t, err)
	return NewSession(Options{LocalRepository: t.TempDir(), Remotes: []Remote{remote}})
}

type fakeS3 struct {
	objects map[string][]byte
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.calls = append(f.calls, bucket+"/"+key)
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeFactory struct {
	api       S3API
	endpoints []string
}

func (f *fakeFactory) S3(_ context.Context, endpoint string) (S3API, error) {
	f.endpoints = append(f.endpoints, endpoint)
	return f.api, nil
}
