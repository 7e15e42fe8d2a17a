package assembly

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/config"
	"github.com/poruru/f3asm/cli/internal/infra/repository/repotest"
	"github.com/poruru/f3asm/cli/internal/infra/ui"
	"github.com/poruru/f3asm/cli/internal/usecase/install"
)

const version = "1.9.6"

func publishRuntime(repo *repotest.Repo, artifactID string, prefix string) {
	repo.Publish(artifact.Coordinates{GroupID: "org.codehaus.fabric3", ArtifactID: artifactID, Version: version, Type: "zip", Classifier: "bin"}, map[string]string{
		"META-INF/MANIFEST.MF":                         "Manifest-Version: 1.0\n",
		prefix + "bin/server.jar":                      "server",
		prefix + "extensions/":                         "",
		prefix + "extensions/fabric3-jpa-1.9.6.jar":    "jpa",
		prefix + "runtimes/vm/config/systemConfig.xml": "<config/>",
		prefix + "runtimes/controller/config/sys.xml":  "<config/>",
		prefix + "runtimes/participant/config/sys.xml": "<config/>",
	})
}

func newWorkflow(repo *repotest.Repo) Workflow {
	return NewWorkflow(install.New(repo.Session, ui.Discard()), ui.Discard())
}

func TestRunStandaloneImage(t *testing.T) {
	repo := repotest.New(t)
	publishRuntime(repo, "runtime-standalone", "")
	repo.Publish(artifact.Coordinates{GroupID: "org.codehaus.fabric3", ArtifactID: "profile-web", Version: version, Type: "zip", Classifier: "bin"}, map[string]string{
		"extensions/fabric3-web-1.9.6.jar": "web",
	})
	repo.Publish(artifact.New("org.codehaus.fabric3", "fabric3-jms", version), map[string]string{"Jms.class": "x"})
	repo.Publish(artifact.New("com.h2database", "h2", "1.3.0"), map[string]string{"Driver.class": "x"})
	repo.Publish(artifact.Coordinates{GroupID: "org.acme", ArtifactID: "orders", Version: "1.0", Type: artifact.TypeContributionJar}, map[string]string{"Orders.class": "x"})

	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "config", "systemConfig.xml"), []byte("<custom/>"), 0o644))
	build := filepath.Join(t.TempDir(), "target")

	result, err := newWorkflow(repo).Run(context.Background(), Request{
		BuildDirectory:   build,
		ProjectDirectory: project,
		RuntimeVersion:   version,
		Profiles:         []artifact.Coordinates{{GroupID: "org.codehaus.fabric3", ArtifactID: "profile-web"}},
		Extensions:       []artifact.Coordinates{artifact.New("org.codehaus.fabric3", "fabric3-jms", "")},
		Datasources:      []artifact.Coordinates{artifact.New("com.h2database", "h2", "")},
		Contributions:    []artifact.Coordinates{{GroupID: "org.acme", ArtifactID: "orders", Version: "1.0", Type: artifact.TypeContributionJar}},
		ConfigurationFiles: []config.ConfigFile{
			{Source: "config/systemConfig.xml", Destination: "runtimes/vm/config"},
		},
		RemoveExtensions:    []string{"fabric3-jpa-1.9.6.jar"},
		CleanUnusedRuntimes: true,
		Management:          artifact.Management{artifact.New("com.h2database", "h2", "1.3.0")},
	})
	require.NoError(t, err)

	image := filepath.Join(build, "image")
	assert.Equal(t, image, result.ImageDir)
	assert.Equal(t, image, result.RuntimeRoot)
	assert.Equal(t, version, result.Runtime.Version)
	assert.FileExists(t, filepath.Join(image, "bin", "server.jar"))
	assert.NoFileExists(t, filepath.Join(image, "META-INF", "MANIFEST.MF"))
	assert.FileExists(t, filepath.Join(image, "extensions", "fabric3-web-1.9.6.jar"))
	assert.FileExists(t, filepath.Join(image, "extensions", "fabric3-jms-1.9.6.jar"))
	assert.NoFileExists(t, filepath.Join(image, "extensions", "fabric3-jpa-1.9.6.jar"))
	assert.FileExists(t, filepath.Join(image, "extensions", "datasource", "h2-1.3.0.jar"))
	assert.FileExists(t, filepath.Join(image, "runtimes", "vm", "deploy", "orders-1.0.jar"))
	assert.NoDirExists(t, filepath.Join(image, "runtimes", "controller"))
	assert.NoDirExists(t, filepath.Join(image, "runtimes", "participant"))
	assert.Equal(t, 2, result.Extensions)

	data, err := os.ReadFile(filepath.Join(image, "runtimes", "vm", "config", "systemConfig.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<custom/>", string(data))
}

func TestRunTomcatImageUsesNestedRoot(t *testing.T) {
	repo := repotest.New(t)
	publishRuntime(repo, "runtime-tomcat", "fabric3/")
	repo.Publish(artifact.New("org.codehaus.fabric3", "fabric3-jms", version), map[string]string{"Jms.class": "x"})
	build := t.TempDir()

	result, err := newWorkflow(repo).Run(context.Background(), Request{
		BuildDirectory: build,
		RuntimeVersion: version,
		Type:           "TOMCAT",
		Extensions:     []artifact.Coordinates{artifact.New("org.codehaus.fabric3", "fabric3-jms", version)},
	})
	require.NoError(t, err)

	root := filepath.Join(build, "image", "fabric3")
	assert.Equal(t, root, result.RuntimeRoot)
	assert.FileExists(t, filepath.Join(root, "extensions", "fabric3-jms-1.9.6.jar"))
	assert.DirExists(t, filepath.Join(root, "runtimes", "controller"))
}

func TestRunRejectsUnknownTypeBeforeResolution(t *testing.T) {
	repo := repotest.New(t)
	build := filepath.Join(t.TempDir(), "target")

	_, err := newWorkflow(repo).Run(context.Background(), Request{BuildDirectory: build, Type: "jetty"})
	require.Error(t, err)
	assert.EqualError(t, err, "invalid runtime type specified: jetty")
	assert.True(t, failure.Is(err, failure.KindConfig))
	assert.NoDirExists(t, build)
}

func TestRunFailsWhenRemovedExtensionIsMissing(t *testing.T) {
	repo := repotest.New(t)
	publishRuntime(repo, "runtime-standalone", "")

	_, err := newWorkflow(repo).Run(context.Background(), Request{
		BuildDirectory:   t.TempDir(),
		RuntimeVersion:   version,
		RemoveExtensions: []string{"fabric3-absent.jar"},
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindArchive))
}

func TestRunFailsOnMissingConfigurationFile(t *testing.T) {
	repo := repotest.New(t)
	publishRuntime(repo, "runtime-standalone", "")

	_, err := newWorkflow(repo).Run(context.Background(), Request{
		BuildDirectory:     t.TempDir(),
		ProjectDirectory:   t.TempDir(),
		RuntimeVersion:     version,
		ConfigurationFiles: []config.ConfigFile{{Source: "config/missing.xml", Destination: "config"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestRunFailsWhenDistributionIsMissing(t *testing.T) {
	_, err := newWorkflow(repotest.New(t)).Run(context.Background(), Request{
		BuildDirectory: t.TempDir(),
		RuntimeVersion: version,
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindResolution))
}

type infoRecorder struct {
	infos []string
}

func (u *infoRecorder) Info(msg string)                     { u.infos = append(u.infos, msg) }
func (u *infoRecorder) Step(string)                         {}
func (u *infoRecorder) Warn(string)                         {}
func (u *infoRecorder) Success(string)                      {}
func (u *infoRecorder) Block(string, string, []ui.KeyValue) {}

func TestRunReportsExtensionsAsTheyInstall(t *testing.T) {
	repo := repotest.New(t)
	publishRuntime(repo, "runtime-standalone", "")
	repo.Publish(artifact.New("org.codehaus.fabric3", "fabric3-jms", version), map[string]string{"Jms.class": "x"})
	repo.Publish(artifact.New("org.codehaus.fabric3", "fabric3-web", version), map[string]string{"Web.class": "x"})
	record := &infoRecorder{}
	workflow := NewWorkflow(install.New(repo.Session, ui.Discard()), record)

	_, err := workflow.Run(context.Background(), Request{
		BuildDirectory: t.TempDir(),
		RuntimeVersion: version,
		Extensions: []artifact.Coordinates{
			artifact.New("org.codehaus.fabric3", "fabric3-jms", version),
			artifact.New("org.codehaus.fabric3", "fabric3-absent", version),
			artifact.New("org.codehaus.fabric3", "fabric3-web", version),
		},
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindResolution))

	var extensions []string
	for _, msg := range record.infos {
		if strings.HasPrefix(msg, "Installing extension: ") {
			extensions = append(extensions, msg)
		}
	}
	assert.Equal(t, []string{
		"Installing extension: org.codehaus.fabric3:fabric3-jms",
		"Installing extension: org.codehaus.fabric3:fabric3-absent",
	}, extensions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{name: "defaults", req: Request{}.withDefaults()},
		{name: "runtime name with separator", req: Request{RuntimeName: "a/b"}, wantErr: "invalid runtime name: a/b"},
		{name: "config without source", req: Request{RuntimeName: "vm", ConfigurationFiles: []config.ConfigFile{{Destination: "x"}}}, wantErr: "configurationFiles[0].source is required"},
		{name: "remove path", req: Request{RuntimeName: "vm", RemoveExtensions: []string{"../x.jar"}}, wantErr: "removeExtensions entry must be a file name: ../x.jar"},
		{name: "extension without group", req: Request{RuntimeName: "vm", Extensions: []artifact.Coordinates{{ArtifactID: "x"}}}, wantErr: "groupId is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, failure.Is(err, failure.KindConfig))
		})
	}
}
