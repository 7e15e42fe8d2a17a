// Where: cli/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: One place for the tool identity and well-known runtime coordinates.
package meta

const (
	// Project Identity
	AppName   = "f3asm"
	Slug      = "f3asm"
	EnvPrefix = "F3ASM"

	// Default Maven coordinates of the runtime distribution.
	RuntimeGroup       = "org.codehaus.fabric3"
	WebappGroup        = "org.codehaus.fabric3.webapp"
	DefaultVersion     = "RELEASE"
	DistributionType   = "zip"
	DistributionSuffix = "bin"

	// Directory Layout
	DefaultBuildDir   = "target"
	DefaultBuildFile  = "f3asm.yaml"
	DefaultLocalRepo  = ".m2/repository"
	ImageDir          = "image"
	TomcatRuntimeRoot = "fabric3"
)
