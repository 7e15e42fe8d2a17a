// Where: cli/internal/infra/config/discover.go
// What: Build file discovery.
// Why: Let commands run from any subdirectory of a project.
package config

import (
	"os"
	"path/filepath"

	"github.com/poruru/f3asm/cli/internal/meta"
)

// FindBuildFile searches upward from startDir for f3asm.yaml (or .yml).
func FindBuildFile(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}

	markers := []string{
		meta.DefaultBuildFile,
		meta.AppName + ".yml",
	}

	for {
		for _, marker := range markers {
			candidate := filepath.Join(dir, marker)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
