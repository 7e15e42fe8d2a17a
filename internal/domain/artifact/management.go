// Where: cli/internal/domain/artifact/management.go
// What: Dependency management table and descriptor list helpers.
// Why: Fill unversioned descriptors and de-duplicate extension sets.
package artifact

// Management is an ordered dependency management table.
type Management []Coordinates

// Lookup returns the managed version for group:artifact. When the table
// lists the same artifact more than once the last entry wins.
func (m Management) Lookup(groupID, artifactID string) (string, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		entry := m[i]
		if entry.GroupID == groupID && entry.ArtifactID == artifactID && entry.Version != "" {
			return entry.Version, true
		}
	}
	return "", false
}

// Apply fills c.Version from the table when c has none. Descriptors that
// already carry a version are returned unchanged.
func (m Management) Apply(c Coordinates) Coordinates {
	if c.HasVersion() {
		return c
	}
	if version, ok := m.Lookup(c.GroupID, c.ArtifactID); ok {
		c.Version = version
	}
	return c
}

// ApplyAll runs Apply over list and returns a new slice.
func (m Management) ApplyAll(list []Coordinates) []Coordinates {
	out := make([]Coordinates, 0, len(list))
	for _, c := range list {
		out = append(out, m.Apply(c))
	}
	return out
}

// Unique drops descriptors whose Key was already seen, keeping the first.
func Unique(list []Coordinates) []Coordinates {
	seen := make(map[string]struct{}, len(list))
	out := make([]Coordinates, 0, len(list))
	for _, c := range list {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// NormalizeAll normalizes every descriptor in list.
func NormalizeAll(list []Coordinates) []Coordinates {
	out := make([]Coordinates, 0, len(list))
	for _, c := range list {
		out = append(out, c.Normalize())
	}
	return out
}
