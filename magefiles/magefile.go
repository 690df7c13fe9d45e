//go:build mage

// Package main provides build targets for realm using Mage.
//
// Usage:
//
//	mage build      Compile ecs-stress to bin/
//	mage test       Run all tests
//	mage generate   Regenerate mocks and stress declarations
//	mage lint       Run golangci-lint
//	mage stress     Run a short stress test
//	mage schedule   Print the stress schedule as YAML
//	mage clean      Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "ecs-stress"
	binaryDir  = "bin"
	cmdDir     = "./cmd/ecs-stress"
)

var binaryPath = filepath.Join(binaryDir, binaryName)

// Build compiles the ecs-stress binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath, cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Generate runs go generate, which rebuilds the ecsmock package and the
// stress test declarations.
func Generate() error {
	return sh.RunV(binGo, "generate", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Stress builds and runs a five second stress test. ECS_STRESS_* variables
// are passed through.
func Stress() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath, "run", "--duration", "5s")
}

// Schedule prints the stage layout of the stress systems.
func Schedule() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath, "schedule")
}

// Clean removes build artifacts and profiles.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	for _, pattern := range []string{"*.pprof", "cmd/ecs-stress/*.pprof"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := sh.Rm(m); err != nil {
				return err
			}
		}
	}
	return sh.RunV(binGo, "clean")
}
