// Package main is the entry point for the vpngw CLI.
//
// vpngw provisions a personal VPN gateway on AWS: it launches an
// instance, installs and verifies the VPN server, and tears everything
// down again when the gateway is no longer needed.
//
// Commands: init, create, test, reconfigure, delete.
//
// For detailed usage information, run:
//
//	vpngw --help
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/cmd/vpngw/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = clog.WithLogger(ctx, clog.New(slog.Default().Handler()))

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
