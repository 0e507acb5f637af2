package manifest

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Manifest decodes a resolved document into its ordered units.
// The document root must be a mapping. An entry that does not decode keeps
// a nil Spec and its Err, so that unrelated entries never fail a run that
// does not select them.
func (d *Document) Manifest() (*Manifest, error) {
	root := deref(d.Root)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = deref(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping of function names", ErrParse, d.Path)
	}

	m := &Manifest{Units: make([]Unit, 0, len(root.Content)/2)}
	seen := make(map[string]bool, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], deref(root.Content[i+1])
		name := key.Value
		if isMergeKey(key) {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s: line %d: duplicate key %q", ErrParse, d.Path, key.Line, name)
		}
		seen[name] = true

		unit := Unit{Name: name, Node: value}
		if IsPrivate(name) {
			// Templates may be any shape; keep a spec only when one decodes.
			if value.Kind == yaml.MappingNode {
				var spec UnitSpec
				if err := value.Decode(&spec); err == nil {
					unit.Spec = &spec
				}
			}
			m.Units = append(m.Units, unit)
			continue
		}

		unit.Spec, unit.Err = decodeUnit(value)
		m.Units = append(m.Units, unit)
	}

	return m, nil
}

func decodeUnit(value *yaml.Node) (*UnitSpec, error) {
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	var spec UnitSpec
	if err := value.Decode(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Select returns the non-private units, restricted to names when names is
// non-empty. Declaration order is preserved.
func (m *Manifest) Select(names []string) *Manifest {
	selected := &Manifest{}
	for _, u := range m.Units {
		if u.Private() {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, u.Name) {
			continue
		}
		selected.Units = append(selected.Units, u)
	}
	return selected
}

// Missing returns the names that do not match a selectable unit.
func (m *Manifest) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		found := false
		for _, u := range m.Units {
			if u.Name == name && !u.Private() {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

// YAML renders the document.
func (d *Document) YAML() ([]byte, error) {
	data, err := yaml.Marshal(d.Root)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", d.Path, err)
	}
	return data, nil
}
