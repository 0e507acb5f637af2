// Package preflight checks manifest units for problems the platform would
// reject or that usually indicate a mistake, before anything is packaged.
package preflight

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/cameronsjo/lambdo/internal/bundle"
	"github.com/cameronsjo/lambdo/internal/manifest"
)

// Platform limits.
const (
	MaxTimeout int32 = 900
	MinMemory  int32 = 128
	MaxMemory  int32 = 10240
)

// knownRuntimes are the managed runtimes lambdo expects to see. Others only
// produce a warning so new runtimes do not need a release.
var knownRuntimes = []string{
	"dotnet8",
	"java11", "java17", "java21", "java8.al2",
	"nodejs18.x", "nodejs20.x", "nodejs22.x",
	"provided.al2", "provided.al2023",
	"python3.9", "python3.10", "python3.11", "python3.12", "python3.13",
	"ruby3.2", "ruby3.3",
}

// knownArchitectures are the instruction sets the platform accepts.
var knownArchitectures = []string{"x86_64", "arm64"}

// Finding is one problem with one unit.
type Finding struct {
	Unit    string
	Message string
}

func (f Finding) String() string {
	return f.Unit + ": " + f.Message
}

// CheckUnit inspects one unit. Errors block a deploy; warnings do not.
func CheckUnit(name string, spec *manifest.UnitSpec) (warnings, errors []Finding) {
	add := func(list *[]Finding, format string, args ...any) {
		*list = append(*list, Finding{Unit: name, Message: fmt.Sprintf(format, args...)})
	}

	if err := spec.Validate(); err != nil {
		add(&errors, "%v", err)
	}

	if spec.Timeout > MaxTimeout {
		add(&errors, "timeout %ds exceeds the %ds limit", spec.Timeout, MaxTimeout)
	}
	if mem := spec.Memory; mem != 0 && (mem < MinMemory || mem > MaxMemory) {
		add(&errors, "memory %dMB outside %d-%dMB", mem, MinMemory, MaxMemory)
	}

	if spec.Runtime != "" && !slices.Contains(knownRuntimes, spec.Runtime) {
		add(&warnings, "runtime %q is not a known managed runtime", spec.Runtime)
	}
	for _, arch := range spec.Architectures {
		if !slices.Contains(knownArchitectures, arch) {
			add(&errors, "unknown architecture %q", arch)
		}
	}

	for _, root := range slices.Sorted(maps.Keys(spec.Includes)) {
		dir := root
		if dir == "" {
			dir = "."
		}
		info, err := os.Stat(dir)
		if err != nil {
			add(&errors, "include root %q: %v", root, err)
			continue
		}
		if !info.IsDir() {
			add(&errors, "include root %q is not a directory", root)
			continue
		}
		for _, pattern := range spec.Includes[root] {
			matches, err := bundle.Expand([]string{pattern}, root)
			if err != nil {
				add(&errors, "include %q in %q: %v", pattern, root, err)
				continue
			}
			if len(matches) == 0 {
				add(&warnings, "include %q in %q matches no files", pattern, root)
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(spec.Extra)) {
		add(&warnings, "attribute %q is not used by lambdo", key)
	}

	return warnings, errors
}

// CheckAll inspects every unit of m in order.
func CheckAll(m *manifest.Manifest) (warnings, errors []Finding) {
	for _, u := range m.Units {
		if u.Err != nil {
			errors = append(errors, Finding{Unit: u.Name, Message: u.Err.Error()})
			continue
		}
		if u.Spec == nil {
			errors = append(errors, Finding{Unit: u.Name, Message: "not a unit definition"})
			continue
		}
		w, e := CheckUnit(u.Name, u.Spec)
		warnings = append(warnings, w...)
		errors = append(errors, e...)
	}
	return warnings, errors
}
