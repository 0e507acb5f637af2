// Package ui prints lambdo's human-facing progress lines.
package ui

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Bold   = color.New(color.Bold)
	Faint  = color.New(color.Faint)

	// Highlights inside a line.
	created = color.New(color.FgGreen, color.Bold).SprintFunc()
	version = color.New(color.FgBlue, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Printf("✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func Error(format string, args ...any) {
	Red.Printf("✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Printf("⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Printf(format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Printf(format+"\n", args...)
}

// Packaged reports a unit that was packaged but not deployed.
func Packaged(name string, size int64) {
	fmt.Fprintf(color.Output, "📦 %s %s\n", faint(name), faint("("+Size(size)+")"))
}

// Written reports an archive written to disk.
func Written(name, path string, size int64) {
	fmt.Fprintf(color.Output, "📦 %s → %s %s\n", name, path, faint("("+Size(size)+")"))
}

// Deployed reports a unit handed to the platform. New functions are
// highlighted.
func Deployed(name string, isNew bool, size int64) {
	if isNew {
		name = created(name)
	}
	fmt.Fprintf(color.Output, "🦄 %s %s\n", name, faint("("+Size(size)+")"))
}

// Published reports a new version.
func Published(name, v string) {
	fmt.Fprintf(color.Output, "✨ %s:%s\n", name, version(v))
}

// Aliased reports an alias pointing at a version. New aliases are
// highlighted.
func Aliased(name, alias, v string, isNew bool) {
	head := name
	if isNew {
		head = created(name)
	}
	fmt.Fprintf(color.Output, "🔗 %s:%s → %s:%s\n", head, version(alias), name, version(v))
}

// Size formats a byte count for humans.
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Fatal prints an error to stderr and exits.
func Fatal(format string, args ...any) {
	Red.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
	os.Exit(1)
}
