// Where: cli/internal/architecture/layering_test.go
// What: Layer dependency guard tests for CLI internal packages.
// Why: Prevent architectural regressions across domain/usecase/infra/command boundaries.
package architecture

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const internalImportPrefix = "github.com/poruru/f3asm/cli/internal/"

// forbidden lists, per source layer, the internal layers it must not import.
var forbidden = map[string][]string{
	"domain":  {"infra", "usecase", "command"},
	"infra":   {"usecase", "command"},
	"usecase": {"command"},
	"ctxlog":  {"domain", "infra", "usecase", "command"},
	"meta":    {"domain", "infra", "usecase", "command", "ctxlog"},
}

func TestLayeringRules(t *testing.T) {
	t.Parallel()

	internalRoot := resolveInternalRoot(t)
	fset := token.NewFileSet()
	violations := []string{}

	err := filepath.WalkDir(internalRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(internalRoot, path)
		if err != nil {
			return err
		}
		sourceLayer := topLayer(rel)

		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range file.Imports {
			importPath := strings.Trim(imp.Path.Value, "\"")
			if violatesRule(sourceLayer, topLayerFromImport(importPath)) {
				violations = append(violations, rel+" -> "+importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scan internal packages: %v", err)
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("layering rule violations:\n%s", strings.Join(violations, "\n"))
	}
}

func TestViolatesRule(t *testing.T) {
	cases := []struct {
		source, target string
		want           bool
	}{
		{"domain", "infra", true},
		{"domain", "meta", false},
		{"infra", "domain", false},
		{"infra", "usecase", true},
		{"usecase", "infra", false},
		{"command", "usecase", false},
		{"domain", "", false},
	}
	for _, tc := range cases {
		if got := violatesRule(tc.source, tc.target); got != tc.want {
			t.Errorf("violatesRule(%q, %q) = %v, want %v", tc.source, tc.target, got, tc.want)
		}
	}
}

func resolveInternalRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root := filepath.Clean(filepath.Join(wd, "..", ".."))
	return filepath.Join(root, "internal")
}

func topLayer(relPath string) string {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	return strings.TrimSpace(parts[0])
}

func topLayerFromImport(importPath string) string {
	if !strings.HasPrefix(importPath, internalImportPrefix) {
		return ""
	}
	rest := strings.TrimPrefix(importPath, internalImportPrefix)
	return strings.TrimSpace(strings.Split(rest, "/")[0])
}

func violatesRule(sourceLayer, importLayer string) bool {
	if importLayer == "" {
		return false
	}
	for _, layer := range forbidden[sourceLayer] {
		if layer == importLayer {
			return true
		}
	}
	return false
}
