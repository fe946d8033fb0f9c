//go:build mage

// Package main contains Mage build targets for vnote-importer developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the importer expects.
var projectDirs = []string{
	"_notes",
	".secrets",
	"reports",
}

// Init creates the project directory structure for an import run.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized. Put vNote files in _notes/ and the service token in .secrets/evernote-token.")
	return nil
}

const (
	binDir  = "bin"
	binName = "vnote-importer"
	cmdPkg  = "./cmd/vnote-importer"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + gitVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Fuzz runs each parser fuzz target briefly.
func Fuzz() error {
	for _, target := range []string{"FuzzDecodeQuotedPrintable", "FuzzParse"} {
		if err := sh.RunV("go", "test", "./internal/vnote/", "-run", "^$", "-fuzz", "^"+target+"$", "-fuzztime", "30s"); err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	return nil
}

// Import builds the CLI and imports _notes/ into the default store.
func Import() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "import", "--report", filepath.Join("reports", "import.yaml"))
}

// gitVersion describes HEAD, or "dev" outside a git checkout.
func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	fsys := os.DirFS(".")

	prodLines, testLines := 0, 0
	goFiles, err := doublestar.Glob(fsys, "**/*.go")
	if err != nil {
		return err
	}
	for _, path := range goFiles {
		if strings.HasPrefix(path, "_") {
			continue
		}
		n, err := countLines(fsys, path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += n
		} else {
			prodLines += n
		}
	}

	docWords := 0
	docs, err := doublestar.Glob(fsys, "*.{md,yaml,yml}")
	if err != nil {
		return err
	}
	for _, path := range docs {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docWords += len(strings.Fields(string(data)))
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// countLines counts non-blank lines in path.
func countLines(fsys fs.FS, path string) (int, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n, nil
}
