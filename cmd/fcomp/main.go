// Package main is the entry point for the fcomp build scheduler.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/fcomp/cmd/fcomp/commands"
	"go.trai.ch/fcomp/internal/app"
	"go.trai.ch/fcomp/internal/core/domain"
	_ "go.trai.ch/fcomp/internal/wiring"
)

// Exit status: 0 on success, 1 when any target failed to compile, 2 for
// configuration errors (malformed spec, duplicate module, cycle).
const (
	exitOK     = 0
	exitBuild  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Interrupt kills in-flight compilers and stops further dispatch;
	// fingerprints of interrupted targets are never persisted.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return exitConfig
	}

	cli := commands.New(components.App)
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		if domain.IsConfigError(err) {
			return exitConfig
		}
		return exitBuild
	}
	return exitOK
}
