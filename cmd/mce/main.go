// Package main is the single-binary entrypoint for the managed computation
// engine.
package main

import "github.com/artifactengine/mce/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
