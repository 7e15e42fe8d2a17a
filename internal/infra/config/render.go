// Where: cli/internal/infra/config/render.go
// What: Template rendering of the build file.
// Why: Allow values such as versions and URLs to come from the environment.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// renderData is exposed to build file templates as {{ .Env.NAME }} and {{ .Dir }}.
type renderData struct {
	Env map[string]string
	Dir string
}

func render(name string, content []byte, baseDir string) ([]byte, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, renderData{Env: environ(), Dir: baseDir}); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func environ() map[string]string {
	env := map[string]string{}
	for _, pair := range os.Environ() {
		key, value, ok := strings.Cut(pair, "=")
		if ok {
			env[key] = value
		}
	}
	return env
}
