// Command lambdo packages and deploys AWS Lambda functions described in a
// YAML manifest.
package main

import "github.com/cameronsjo/lambdo/internal/cmd"

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	cmd.Execute(version)
}
