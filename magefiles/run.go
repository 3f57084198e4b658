//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the unit tests.
func (Run) Tests() error {
	fmt.Println("Run tests...")
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv("CGO_ENABLED=1"), withStream()); err != nil {
		return err
	}
	return nil
}

// Exports using sourcery.toml from the given directory (SOURCERY_DIR, default ".").
func (Run) Export() error {
	mg.Deps(Build.Binary)
	dir := os.Getenv("SOURCERY_DIR")
	if dir == "" {
		dir = "."
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if _, err := executeCmd(wd+"/bin/sourcery", withArgs("export"), withDir(dir), withEnv("SOURCERY_LOG_LEVEL=debug"), withStream()); err != nil {
		return err
	}
	return nil
}
