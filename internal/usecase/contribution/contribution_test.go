package contribution

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/archive"
	"github.com/poruru/f3asm/cli/internal/infra/repository/repotest"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

func classesDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "classes")
	files := map[string]string{
		"org/acme/orders/OrderService.class": "class",
		"org/acme/orders/package.html":       "<html/>",
		"META-INF/sca-contribution.xml":      "<contribution/>",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newWorkflow(repo *repotest.Repo) Workflow {
	return NewWorkflow(install.New(repo.Session, nil), repo.Session, nil)
}

func TestRunExcludesContributionDependencies(t *testing.T) {
	repo := repotest.New(t)
	lib := artifact.New("org.acme", "orders-api", "1.0")
	other := artifact.Coordinates{GroupID: "org.acme", ArtifactID: "billing", Version: "1.0", Type: artifact.TypeContributionJar}
	optional := artifact.New("org.acme", "tracing", "1.0")
	optional.Optional = true
	testOnly := artifact.New("junit", "junit", "4.8")
	testOnly.Scope = artifact.ScopeTest
	provided := artifact.New("javax.servlet", "servlet-api", "2.5")
	provided.Scope = artifact.ScopeProvided
	for _, c := range []artifact.Coordinates{lib, other, optional, testOnly, provided} {
		repo.Publish(c, map[string]string{"X.class": c.ArtifactID})
	}
	out := filepath.Join(t.TempDir(), "target")

	result, err := newWorkflow(repo).Run(context.Background(), Request{
		OutputDirectory:  out,
		ClassesDirectory: classesDir(t),
		Name:             "orders",
		Dependencies:     []artifact.Coordinates{lib, other, optional, testOnly, provided},
		Transitive:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "orders.jar"), result.Archive)
	assert.Equal(t, []string{"orders-api-1.0.jar"}, result.Libraries)
	entries := repotest.Entries(t, result.Archive)
	assert.Equal(t, archive.ManifestName, entries[0])
	assert.Contains(t, entries, "META-INF/lib/orders-api-1.0.jar")
	assert.Contains(t, entries, "org/acme/orders/OrderService.class")
	assert.Contains(t, entries, "META-INF/sca-contribution.xml")
	assert.NotContains(t, entries, "META-INF/lib/billing-1.0.jar")
	assert.NotContains(t, entries, "META-INF/lib/tracing-1.0.jar")
	assert.NotContains(t, entries, "META-INF/lib/junit-4.8.jar")
	assert.NotContains(t, entries, "META-INF/lib/servlet-api-2.5.jar")
	assert.NotContains(t, entries, "org/acme/orders/package.html")
}

func TestRunPackagesTransitiveLibraries(t *testing.T) {
	repo := repotest.New(t)
	base := artifact.New("org.acme", "base", "2.0")
	api := artifact.New("org.acme", "orders-api", "1.0")
	repo.Publish(base, map[string]string{"Base.class": "x"})
	repo.Publish(api, map[string]string{"Api.class": "x"}, base)

	for _, tt := range []struct {
		name       string
		transitive bool
		want       []string
	}{
		{name: "transitive", transitive: true, want: []string{"orders-api-1.0.jar", "base-2.0.jar"}},
		{name: "direct only", transitive: false, want: []string{"orders-api-1.0.jar"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newWorkflow(repo).Run(context.Background(), Request{
				OutputDirectory:  t.TempDir(),
				ClassesDirectory: classesDir(t),
				Name:             "orders",
				Dependencies:     []artifact.Coordinates{api},
				Transitive:       tt.transitive,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Libraries)
		})
	}
}

func TestRunUsesClassifierAndZipPackaging(t *testing.T) {
	out := t.TempDir()
	result, err := newWorkflow(repotest.New(t)).Run(context.Background(), Request{
		OutputDirectory:  out,
		ClassesDirectory: classesDir(t),
		Name:             "orders",
		Classifier:       "client",
		Packaging:        artifact.TypeContribution,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "orders-client.zip"), result.Archive)
	assert.FileExists(t, result.Archive)
}

func TestRunCustomExcludesReplaceDefaults(t *testing.T) {
	result, err := newWorkflow(repotest.New(t)).Run(context.Background(), Request{
		OutputDirectory:  t.TempDir(),
		ClassesDirectory: classesDir(t),
		Name:             "orders",
		Excludes:         []string{"*.xml"},
	})
	require.NoError(t, err)
	entries := repotest.Entries(t, result.Archive)
	assert.Contains(t, entries, "org/acme/orders/package.html")
	assert.NotContains(t, entries, "META-INF/sca-contribution.xml")
}

func TestRunRequiresClassesDirectory(t *testing.T) {
	out := t.TempDir()
	_, err := newWorkflow(repotest.New(t)).Run(context.Background(), Request{
		OutputDirectory:  out,
		ClassesDirectory: filepath.Join(out, "missing"),
		Name:             "orders",
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindArchive))
	assert.Contains(t, err.Error(), "does not exist")
	assert.NoFileExists(t, filepath.Join(out, "orders.jar"))
}

func TestRunInstallsIntoLocalRepository(t *testing.T) {
	repo := repotest.New(t)
	coords := artifact.Coordinates{GroupID: "org.acme", ArtifactID: "orders", Version: "1.0", Type: artifact.TypeContributionJar}

	result, err := newWorkflow(repo).Run(context.Background(), Request{
		OutputDirectory:  t.TempDir(),
		ClassesDirectory: classesDir(t),
		Name:             "orders",
		Install:          &coords,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Installed)

	resolved, err := repo.Session.Resolve(context.Background(), coords.WithVersion("RELEASE"))
	require.NoError(t, err)
	assert.Equal(t, "orders-1.0.jar", resolved.File())
}

func TestValidate(t *testing.T) {
	noVersion := artifact.New("org.acme", "orders", "")
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{name: "missing name", req: Request{}, wantErr: "contribution name is required"},
		{name: "install without version", req: Request{Name: "x", Install: &noVersion}, wantErr: "install: version is required"},
		{name: "dependency without artifact", req: Request{Name: "x", Dependencies: []artifact.Coordinates{{GroupID: "g"}}}, wantErr: "artifactId is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, failure.Is(err, failure.KindConfig))
		})
	}
}

func TestIncluded(t *testing.T) {
	runtimeDep := artifact.New("g", "a", "1")
	runtimeDep.Scope = artifact.ScopeRuntime
	assert.True(t, Included(artifact.New("g", "a", "1")))
	assert.True(t, Included(runtimeDep))
	assert.False(t, Included(artifact.Coordinates{GroupID: "g", ArtifactID: "a", Type: artifact.TypeContribution}))
	assert.False(t, Included(artifact.Coordinates{GroupID: "g", ArtifactID: "a", Type: artifact.TypeJar, Scope: artifact.ScopeSystem}))
	assert.False(t, Included(artifact.Coordinates{GroupID: "g", ArtifactID: "a", Type: artifact.TypeJar, Optional: true}))
}
