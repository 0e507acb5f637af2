package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Level is how much of a unit a run depends on.
type Level int

const (
	// Decoded only needs each unit to be a definition. Publishing and
	// aliasing read nothing else from the manifest.
	Decoded Level = iota
	// Packaged also needs includes to build an archive.
	Packaged
	// Deployable needs everything the platform requires.
	Deployable
)

// Check reports the fields missing for the given level.
func (u *UnitSpec) Check(level Level) error {
	var problems []string

	if level >= Deployable {
		if u.Role == "" {
			problems = append(problems, "missing role")
		}
		if u.Runtime == "" {
			problems = append(problems, "missing runtime")
		}
		if u.Handler == "" {
			problems = append(problems, "missing handler")
		}
	}
	if level >= Packaged {
		if len(u.Includes) == 0 {
			problems = append(problems, "no includes")
		}
		for _, root := range slices.Sorted(maps.Keys(u.Includes)) {
			if len(u.Includes[root]) == 0 {
				problems = append(problems, fmt.Sprintf("include root %q has no patterns", root))
			}
		}
	}
	if level >= Deployable {
		if u.Timeout < 0 {
			problems = append(problems, fmt.Sprintf("timeout must be positive, got %d", u.Timeout))
		}
		if u.Memory < 0 {
			problems = append(problems, fmt.Sprintf("memory must be positive, got %d", u.Memory))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidUnit, strings.Join(problems, "; "))
	}
	return nil
}

// Validate checks that the unit carries what a deployment needs.
func (u *UnitSpec) Validate() error {
	return u.Check(Deployable)
}

// Check checks every public unit at the given level, naming the first
// invalid one.
func (m *Manifest) Check(level Level) error {
	for _, u := range m.Units {
		if u.Private() {
			continue
		}
		if u.Err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidUnit, u.Name, u.Err)
		}
		if u.Spec == nil {
			return fmt.Errorf("%w: %s: empty definition", ErrInvalidUnit, u.Name)
		}
		if err := u.Spec.Check(level); err != nil {
			return fmt.Errorf("%s: %w", u.Name, err)
		}
	}
	return nil
}

// Validate checks that every unit can be deployed.
func (m *Manifest) Validate() error {
	return m.Check(Deployable)
}
