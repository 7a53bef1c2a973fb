package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/cmd/gitai/cli"
	"github.com/git-ai-oss/gitai/internal/logging"
	"github.com/git-ai-oss/gitai/internal/wrapper"
)

// Version and Commit are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	invocationID := uuid.NewString()
	if err := logging.Init(invocationID); err != nil {
		fmt.Fprintf(os.Stderr, "gitai: warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	cli.Version, cli.Commit = Version, Commit

	args := os.Args[1:]
	if len(args) > 0 && !cli.KnownSubcommands()[args[0]] {
		// Not one of gitai's own subcommands: treat it as a VCS invocation
		// and run it through the wrapper pipeline (spec.md §4.7), which
		// forwards unknown subcommands to the real git binary after its own
		// hook dispatch and latency accounting.
		exitCode := wrapper.New(Version).Run(ctx, args)
		cancel()
		os.Exit(exitCode)
	}

	rootCmd := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var silent *cli.SilentError
		switch {
		case errors.As(err, &silent):
			// Command already printed the error.
		case strings.Contains(err.Error(), "unknown command") || strings.Contains(err.Error(), "unknown flag"):
			showSuggestion(rootCmd, err)
		default:
			fmt.Fprintln(rootCmd.OutOrStderr(), err)
		}
		cancel()
		os.Exit(1)
	}
	cancel()
}

func showSuggestion(cmd *cobra.Command, err error) {
	fmt.Fprint(cmd.OutOrStderr(), cmd.UsageString())
	fmt.Fprintf(cmd.OutOrStderr(), "\nError: Invalid usage: %v\n", err)
}
