// Package envutil provides helper functions for environment variable handling.
package envutil

import (
	"os"
	"strings"

	"github.com/poruru/f3asm/cli/internal/meta"
)

// Well-known host environment suffixes.
const (
	LocalRepo   = "LOCAL_REPO"
	S3AccessKey = "S3_ACCESS_KEY"
	S3SecretKey = "S3_SECRET_KEY"
)

// HostEnvKey constructs a host-level environment variable name
// by combining the tool prefix with the given suffix.
// Example: HostEnvKey("LOCAL_REPO") returns "F3ASM_LOCAL_REPO".
func HostEnvKey(suffix string) string {
	return meta.EnvPrefix + "_" + suffix
}

// GetHostEnv retrieves a host-level environment variable, trimmed.
// Example: GetHostEnv("LOCAL_REPO") returns the value of F3ASM_LOCAL_REPO.
func GetHostEnv(suffix string) string {
	return strings.TrimSpace(os.Getenv(HostEnvKey(suffix)))
}
