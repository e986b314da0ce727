//go:build mage

// Package main provides build targets for customer-notes using Mage.
//
// Usage:
//
//	mage build     Compile server and notesctl to bin/
//	mage test      Run all tests
//	mage vet       Run go vet
//	mage run       Build and start the server with config.yml
//	mage migrate   Apply migrations and load demo notes
//	mage clean     Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo     = "go"
	binaryDir = "bin"
)

var binaries = map[string]string{
	"notes-server": "./cmd/server",
	"notesctl":     "./cmd/notesctl",
}

// Build compiles the binaries to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	for name, pkg := range binaries {
		if err := sh.RunV(binGo, "build", "-o", filepath.Join(binaryDir, name), pkg); err != nil {
			return err
		}
	}
	return nil
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// Migrate applies migrations and inserts demo notes into an empty database.
func Migrate() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, "notesctl"), "migrate", "--demo")
}

// Run starts the server with config.yml.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, "notes-server"), "--config", "config.yml")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binaryDir)
}
