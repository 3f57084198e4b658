/*
Sourcery injects Source Engine metadata into glTF exports.

	sourcery [export] [flags]              patch a glTF/GLB file
	sourcery inspect <file>                print the SRC_sourcery blocks of a file
	sourcery tag -scene s.toml [flags] obj  tag objects in a scene sidecar
	sourcery clear -scene s.toml obj...     clear tags from objects
	sourcery list -scene s.toml [flags]     list tagged objects
	sourcery collection -scene s.toml -name c [flags]
	                                       show or edit collection metadata
	sourcery game add|remove|use|list      edit the games list
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/sourcery/sourcery"
	"github.com/spaghettifunk/sourcery/sourcery/core"
)

func main() {
	args := os.Args[1:]
	cmd := "export"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "export":
		err = runExport(args)
	case "inspect":
		err = runInspect(args, os.Stdout)
	case "tag":
		err = runTag(args, os.Stdout)
	case "clear":
		err = runClear(args, os.Stdout)
	case "list":
		err = runList(args, os.Stdout)
	case "collection":
		err = runCollection(args, os.Stdout)
	case "game":
		err = runGame(args, os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		core.LogFatal(err.Error())
	}
}

func runExport(args []string) error {
	cfg, err := parseExportFlags(args)
	if err != nil {
		return err
	}

	app, err := sourcery.New(cfg)
	if err != nil {
		return err
	}
	if err := app.Initialize(); err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = app.Shutdown()
	}()

	if err := app.Run(); err != nil {
		return err
	}
	return app.Shutdown()
}
