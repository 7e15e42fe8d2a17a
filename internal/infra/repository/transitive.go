// Where: cli/internal/infra/repository/transitive.go
// What: Transitive dependency collection from POMs.
// Why: Boot libraries and contribution dependencies ship with their runtime closure.
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/poruru/f3asm/cli/internal/ctxlog"
	"github.com/poruru/f3asm/cli/internal/domain/artifact"
	"github.com/poruru/f3asm/cli/internal/domain/failure"
	"github.com/poruru/f3asm/cli/internal/infra/fileops"
)

const maxParentDepth = 16

var errParentCycle = errors.New("parent chain too deep or cyclic")

type node struct {
	coords     artifact.Coordinates
	exclusions map[string]struct{}
}

// ResolveTransitive resolves c and its compile/runtime closure in
// breadth-first order, root first. The nearest declaration of each
// group:artifact:type:classifier wins; optional dependencies are skipped.
func (s *Session) ResolveTransitive(ctx context.Context, c artifact.Coordinates) ([]artifact.Resolved, error) {
	logger := ctxlog.FromContext(ctx)
	root, err := s.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	rootPom, err := s.loadEffectivePom(ctx, PomOf(root.Coordinates))
	if err != nil {
		return nil, failure.Resolution("resolve "+root.String(), err)
	}

	seen := map[string]struct{}{root.ConflictKey(): {}}
	out := []artifact.Resolved{root}
	queue := s.children(ctx, rootPom, rootPom, node{coords: root.Coordinates}, seen)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		resolved, err := s.Resolve(ctx, current.coords)
		if err != nil {
			return nil, err
		}
		if resolved.Type != artifact.TypePom {
			out = append(out, resolved)
		}
		model, err := s.loadEffectivePom(ctx, PomOf(resolved.Coordinates))
		if err != nil {
			return nil, failure.Resolution("resolve "+resolved.String(), err)
		}
		queue = append(queue, s.children(ctx, model, rootPom, node{coords: resolved.Coordinates, exclusions: current.exclusions}, seen)...)
	}
	logger.Debug("resolved closure", "artifact", root.String(), "count", len(out))
	return out, nil
}

// children lists the dependencies of parent that join the closure.
func (s *Session) children(ctx context.Context, model, rootPom *effectivePom, parent node, seen map[string]struct{}) []node {
	if model == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	var out []node
	for _, dep := range model.dependencies {
		dep = model.managed(dep)
		if rootPom != nil && rootPom != model {
			if managed, ok := rootPom.management[managementKey(dep)]; ok && managed.Version != "" {
				dep.Version = managed.Version
			}
		}
		coords := dep.coordinates()
		if coords.Optional || !coords.InRuntimeScope() {
			continue
		}
		if excluded(parent.exclusions, coords) {
			logger.Debug("excluded dependency", "artifact", coords.String(), "by", parent.coords.String())
			continue
		}
		key := coords.ConflictKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, node{coords: coords, exclusions: mergeExclusions(parent.exclusions, dep.Exclusions)})
	}
	return out
}

func excluded(exclusions map[string]struct{}, c artifact.Coordinates) bool {
	for _, key := range []string{c.GroupID + ":" + c.ArtifactID, c.GroupID + ":*", "*:*"} {
		if _, ok := exclusions[key]; ok {
			return true
		}
	}
	return false
}

func mergeExclusions(base map[string]struct{}, extra []pomExclusion) map[string]struct{} {
	if len(extra) == 0 {
		return base
	}
	out := make(map[string]struct{}, len(base)+len(extra))
	for k := range base {
		out[k] = struct{}{}
	}
	for _, ex := range extra {
		out[ex.GroupID+":"+ex.ArtifactID] = struct{}{}
	}
	return out
}

// loadEffectivePom reads the POM of c and its parents. A missing POM yields
// nil: the artifact is treated as having no dependencies.
func (s *Session) loadEffectivePom(ctx context.Context, c artifact.Coordinates) (*effectivePom, error) {
	return s.loadEffectivePomDepth(ctx, c, 0)
}

func (s *Session) loadEffectivePomDepth(ctx context.Context, c artifact.Coordinates, depth int) (*effectivePom, error) {
	if depth > maxParentDepth {
		return nil, fmt.Errorf("%s: %w", c, errParentCycle)
	}
	model, err := s.readPom(ctx, c)
	if err != nil || model == nil {
		return nil, err
	}

	var parent *effectivePom
	if model.Parent != nil {
		parentCoords := artifact.Coordinates{
			GroupID:    model.Parent.GroupID,
			ArtifactID: model.Parent.ArtifactID,
			Version:    model.Parent.Version,
			Type:       artifact.TypePom,
		}.Normalize()
		parent, err = s.loadEffectivePomDepth(ctx, parentCoords, depth+1)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			parent = &effectivePom{coords: parentCoords, properties: map[string]string{}, management: map[string]pomDependency{}}
		}
	}
	eff := inherit(model, parent)

	for _, imp := range eff.imports() {
		bom, err := s.loadEffectivePomDepth(ctx, imp.coordinates(), depth+1)
		if err != nil {
			return nil, err
		}
		if bom == nil {
			continue
		}
		for key, dep := range bom.management {
			if _, ok := eff.management[key]; !ok {
				eff.management[key] = dep
			}
		}
	}
	return eff, nil
}

func (s *Session) readPom(ctx context.Context, c artifact.Coordinates) (*pom, error) {
	path, err := s.fetch(ctx, ArtifactPath(c), false)
	if errors.Is(err, ErrNotFound) {
		ctxlog.FromContext(ctx).Debug("pom unavailable", "artifact", c.String(), "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pom of %s: %w", c, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fileops.CloseQuietly(ctx, file, path)
	model, err := parsePom(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return model, nil
}
