//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs a full session for terms into sessions/.
// Usage: mage search "housing first evaluation filetype:pdf"
func Search(terms string) error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "--query", terms, "--output-dir", "sessions")
}

// Scholar is Search against Google Scholar.
func Scholar(terms string) error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "--engine", "scholar", "--query", terms, "--output-dir", "sessions")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}
