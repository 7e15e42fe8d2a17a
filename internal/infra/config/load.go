// Where: cli/internal/infra/config/load.go
// What: Build file loading: render, validate, decode.
// Why: Every command reads its configuration through the same pipeline.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poruru/f3asm/cli/internal/domain/failure"
)

const opLoad = "load build file"

// Load reads the build file at path.
func Load(path string) (BuildFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return BuildFile{}, failure.Config(opLoad, err)
	}
	payload, err := os.ReadFile(abs)
	if err != nil {
		return BuildFile{}, failure.Config(opLoad, fmt.Errorf("read build file: %w", err))
	}
	cfg, err := Parse(filepath.Base(abs), payload, filepath.Dir(abs))
	if err != nil {
		return BuildFile{}, err
	}
	cfg.Path = abs
	return cfg, nil
}

// Discover loads an explicit path, otherwise the nearest build file above
// startDir. Without either, it returns an empty configuration based at startDir.
func Discover(explicit, startDir string) (BuildFile, error) {
	if path := strings.TrimSpace(explicit); path != "" {
		return Load(path)
	}
	if path, ok := FindBuildFile(startDir); ok {
		return Load(path)
	}
	base, err := filepath.Abs(startDir)
	if err != nil {
		return BuildFile{}, failure.Config(opLoad, err)
	}
	return BuildFile{BaseDir: base}, nil
}

// Parse renders, validates and decodes build file content.
func Parse(name string, content []byte, baseDir string) (BuildFile, error) {
	rendered, err := render(name, content, baseDir)
	if err != nil {
		return BuildFile{}, failure.Config(opLoad, err)
	}
	if err := validate(rendered); err != nil {
		return BuildFile{}, failure.Config(opLoad, fmt.Errorf("validate %s: %w", name, err))
	}

	var cfg BuildFile
	decoder := yaml.NewDecoder(bytes.NewReader(rendered))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return BuildFile{}, failure.Config(opLoad, fmt.Errorf("decode %s: %w", name, err))
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// Resolve returns path joined to the build file directory unless it is absolute.
func (b BuildFile) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.BaseDir, path)
}
