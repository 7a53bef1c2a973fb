// Package cli assembles gitai's cobra command tree (spec.md §6.3).
// Grounded on the teacher's cmd/entire/cli/root.go NewRootCmd shape:
// SilenceErrors so main.go owns error printing, a hidden completion
// command, and a PersistentPostRun that fires the version-update notice
// and a queued telemetry event for every invocation.
package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/denisbrodbeck/machineid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/git-ai-oss/gitai/internal/paths"
	"github.com/git-ai-oss/gitai/internal/telemetry"
	"github.com/git-ai-oss/gitai/internal/versioncheck"
)

// Version and Commit are set at build time via -ldflags, matching the
// teacher's own var block in root.go.
var (
	Version = "dev"
	Commit  = "unknown"
)

const accessibilityHelp = `
Environment Variables:
  ACCESSIBLE    Set to any value (e.g., ACCESSIBLE=1) to enable accessibility
                mode. This uses simpler text prompts instead of interactive
                confirmations, which works better with screen readers.
`

// NewRootCmd builds gitai's command tree. Any first argument not matching
// one of these names is handled by main.go's pass-through path before
// cobra ever sees it (spec.md §6.3's "any VCS subcommand" pass-through).
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gitai",
		Short:         "gitai tracks AI authorship alongside your commits",
		Long:          "gitai wraps your version-control CLI, attributing every committed line to the human or AI prompt that wrote it." + accessibilityHelp,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			telemetryClient := telemetry.NewClient(distinctID(), telemetryQueuePath())
			telemetryClient.TrackCommand(cmd.Name(), "", changedFlagNames(cmd))
			_ = telemetryClient.Close()
			versioncheck.CheckAndNotify(cmd, Version)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newCheckpointCmd(),
		newBlameCmd(),
		newStatsCmd(),
		newShowCmd(),
		newShowPromptCmd(),
		newStatusCmd(),
		newDiffCmd(),
		newSquashAuthorshipCmd(),
		newSyncPromptsCmd(),
		newVersionCmd(),
	)

	return cmd
}

// KnownSubcommands lists every name NewRootCmd registers, for main.go's
// dispatch between "one of our own subcommands" and "pass this through to
// the real git binary."
func KnownSubcommands() map[string]bool {
	root := NewRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	names["help"] = true
	names["completion"] = true
	return names
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("gitai %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func changedFlagNames(cmd *cobra.Command) []string {
	var names []string
	cmd.Flags().Visit(func(f *pflag.Flag) { names = append(names, f.Name) })
	return names
}

// distinctID resolves a stable per-machine identifier, via the same
// machineid.ProtectedID path the teacher's telemetry client uses to scope
// its PostHog distinct_id.
func distinctID() string {
	id, err := machineid.ProtectedID("gitai")
	if err != nil || id == "" {
		return "unknown"
	}
	return id
}

// telemetryQueuePath returns the local JSONL file gitai's queued
// telemetry client appends events to, or "" (disabling the file sink) if
// the repository's gitai state directory can't be resolved.
func telemetryQueuePath() string {
	state, err := paths.GitaiStateDir()
	if err != nil {
		return ""
	}
	return filepath.Join(state, "telemetry.jsonl")
}
