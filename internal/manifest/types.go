package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// PrivatePrefix marks template-only entries that are never selected.
const PrivatePrefix = "_"

// Platform defaults applied when a unit leaves them unset.
const (
	// DefaultTimeout is the function timeout in seconds.
	DefaultTimeout int32 = 3

	// DefaultMemory is the function memory size in MB.
	DefaultMemory int32 = 128
)

// UnitSpec defines one deployable function.
type UnitSpec struct {
	// Includes maps a root directory to the glob patterns packaged from it.
	// Archive paths are relative to the root.
	Includes map[string][]string `yaml:"includes"`

	// Excludes are glob patterns relative to the working directory.
	Excludes []string `yaml:"excludes,omitempty"`

	// Role is the execution role ARN.
	Role string `yaml:"role,omitempty"`

	// Runtime identifies the function runtime (e.g., "python3.12").
	Runtime string `yaml:"runtime,omitempty"`

	// Handler is the entrypoint within the archive.
	Handler string `yaml:"handler,omitempty"`

	// Env holds environment variables passed to the function.
	Env map[string]string `yaml:"env,omitempty"`

	// Layers lists layer version ARNs.
	Layers []string `yaml:"layers,omitempty"`

	// Timeout in seconds. Zero means DefaultTimeout.
	Timeout int32 `yaml:"timeout,omitempty"`

	// Memory in MB. Zero means DefaultMemory.
	Memory int32 `yaml:"memory,omitempty"`

	// Description is the function description.
	Description string `yaml:"description,omitempty"`

	// Architectures lists instruction set architectures (e.g., "arm64").
	Architectures []string `yaml:"architectures,omitempty"`

	// Extra preserves attributes lambdo does not interpret.
	Extra map[string]any `yaml:",inline"`
}

// EffectiveTimeout returns the timeout with the platform default applied.
func (u *UnitSpec) EffectiveTimeout() int32 {
	if u.Timeout == 0 {
		return DefaultTimeout
	}
	return u.Timeout
}

// EffectiveMemory returns the memory size with the platform default applied.
func (u *UnitSpec) EffectiveMemory() int32 {
	if u.Memory == 0 {
		return DefaultMemory
	}
	return u.Memory
}

// Unit is a named manifest entry.
type Unit struct {
	// Name is the manifest key, used as the function name.
	Name string

	// Spec is the decoded definition. It is nil for private entries that
	// are not shaped like a unit.
	Spec *UnitSpec

	// Node is the resolved YAML subtree Spec was decoded from.
	Node *yaml.Node

	// Err records why a public entry could not be decoded. It is reported
	// only when the unit is selected.
	Err error
}

// Private reports whether the unit is a template-only entry.
func (u Unit) Private() bool {
	return IsPrivate(u.Name)
}

// Manifest is the ordered set of units declared in a document.
type Manifest struct {
	Units []Unit
}

// IsPrivate reports whether a manifest key is reserved for templates.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, PrivatePrefix)
}

// Names returns unit names in declaration order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Units))
	for _, u := range m.Units {
		names = append(names, u.Name)
	}
	return names
}

// Get returns the UnitSpec of the named unit.
func (m *Manifest) Get(name string) (*UnitSpec, bool) {
	for _, u := range m.Units {
		if u.Name == name {
			return u.Spec, u.Spec != nil
		}
	}
	return nil, false
}

// Len returns the number of units.
func (m *Manifest) Len() int {
	return len(m.Units)
}
