// Where: cli/internal/infra/repository/pom.go
// What: POM model with parent inheritance and property interpolation.
// Why: Transitive resolution needs each artifact's effective dependency list.
package repository

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/poruru/f3asm/cli/internal/domain/artifact"
)

const maxInterpolationPasses = 10

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

type pom struct {
	XMLName              xml.Name        `xml:"project"`
	GroupID              string          `xml:"groupId"`
	ArtifactID           string          `xml:"artifactId"`
	Version              string          `xml:"version"`
	Packaging            string          `xml:"packaging"`
	Parent               *pomParent      `xml:"parent"`
	Properties           pomProperties   `xml:"properties"`
	DependencyManagement pomManagement   `xml:"dependencyManagement"`
	Dependencies         []pomDependency `xml:"dependencies>dependency"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomManagement struct {
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Type       string         `xml:"type"`
	Classifier string         `xml:"classifier"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// pomProperties collects the free-form <properties> children.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	props := pomProperties{}
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch el := token.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &el); err != nil {
				return err
			}
			props[el.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

func parsePom(r io.Reader) (*pom, error) {
	var model pom
	if err := xml.NewDecoder(r).Decode(&model); err != nil {
		return nil, err
	}
	return &model, nil
}

// effectivePom is a POM merged with its parents.
type effectivePom struct {
	coords       artifact.Coordinates
	properties   map[string]string
	management   map[string]pomDependency
	dependencies []pomDependency
	boms         []pomDependency
}

// inherit merges model on top of parent (which may be nil).
func inherit(model *pom, parent *effectivePom) *effectivePom {
	eff := &effectivePom{
		properties: map[string]string{},
		management: map[string]pomDependency{},
	}
	groupID, version := model.GroupID, model.Version
	if parent != nil {
		for k, v := range parent.properties {
			eff.properties[k] = v
		}
		for k, v := range parent.management {
			eff.management[k] = v
		}
		if groupID == "" {
			groupID = parent.coords.GroupID
		}
		if version == "" {
			version = parent.coords.Version
		}
		eff.properties["project.parent.groupId"] = parent.coords.GroupID
		eff.properties["project.parent.version"] = parent.coords.Version
	}
	for k, v := range model.Properties {
		eff.properties[k] = v
	}
	eff.properties["project.groupId"] = groupID
	eff.properties["project.artifactId"] = model.ArtifactID
	eff.properties["project.version"] = version
	eff.properties["pom.groupId"] = groupID
	eff.properties["pom.version"] = version
	eff.coords = artifact.Coordinates{GroupID: groupID, ArtifactID: model.ArtifactID, Version: version, Type: artifact.TypePom}
	eff.coords.GroupID = eff.interpolate(groupID)
	eff.coords.Version = eff.interpolate(version)

	for _, dep := range model.DependencyManagement.Dependencies {
		dep = eff.interpolateDependency(dep)
		eff.management[managementKey(dep)] = dep
		if dep.Scope == "import" && dep.Type == artifact.TypePom {
			eff.boms = append(eff.boms, dep)
		}
	}
	for _, dep := range model.Dependencies {
		eff.dependencies = append(eff.dependencies, eff.interpolateDependency(dep))
	}
	return eff
}

func (e *effectivePom) interpolate(value string) string {
	for i := 0; i < maxInterpolationPasses && strings.Contains(value, "${"); i++ {
		next := propertyRef.ReplaceAllStringFunc(value, func(ref string) string {
			name := ref[2 : len(ref)-1]
			if v, ok := e.properties[name]; ok {
				return v
			}
			return ref
		})
		if next == value {
			break
		}
		value = next
	}
	return value
}

func (e *effectivePom) interpolateDependency(dep pomDependency) pomDependency {
	dep.GroupID = e.interpolate(strings.TrimSpace(dep.GroupID))
	dep.ArtifactID = e.interpolate(strings.TrimSpace(dep.ArtifactID))
	dep.Version = e.interpolate(strings.TrimSpace(dep.Version))
	dep.Type = e.interpolate(strings.TrimSpace(dep.Type))
	dep.Classifier = e.interpolate(strings.TrimSpace(dep.Classifier))
	dep.Scope = strings.ToLower(e.interpolate(strings.TrimSpace(dep.Scope)))
	dep.Optional = e.interpolate(strings.TrimSpace(dep.Optional))
	return dep
}

// managed fills version and scope of dep from the management section.
func (e *effectivePom) managed(dep pomDependency) pomDependency {
	entry, ok := e.management[managementKey(dep)]
	if !ok {
		return dep
	}
	if dep.Version == "" {
		dep.Version = entry.Version
	}
	if dep.Scope == "" {
		dep.Scope = entry.Scope
	}
	if len(dep.Exclusions) == 0 {
		dep.Exclusions = entry.Exclusions
	}
	return dep
}

// imports lists the scope=import entries this POM declares, in declaration
// order. Imports of parents are already merged into the inherited management.
func (e *effectivePom) imports() []pomDependency {
	return e.boms
}

func managementKey(dep pomDependency) string {
	typ := dep.Type
	if typ == "" {
		typ = artifact.TypeJar
	}
	return strings.Join([]string{dep.GroupID, dep.ArtifactID, typ, dep.Classifier}, ":")
}

func (d pomDependency) coordinates() artifact.Coordinates {
	return artifact.Coordinates{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Version:    d.Version,
		Type:       d.Type,
		Classifier: d.Classifier,
		Scope:      d.Scope,
		Optional:   strings.EqualFold(d.Optional, "true"),
	}.Normalize()
}
