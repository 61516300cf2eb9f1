//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "lughat"

// Default target to run when none is specified
var Default = Build

// Build compiles the lughat binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/lughat")
}

// Install installs lughat into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/lughat")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs the tests with a coverage profile
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// All runs vet, tests and build
func All() {
	mg.SerialDeps(Vet, Test, Build)
}

// Clean removes build artifacts
func Clean() error {
	for _, f := range []string{binary, "coverage.out"} {
		if err := os.RemoveAll(f); err != nil {
			return err
		}
	}
	return nil
}
