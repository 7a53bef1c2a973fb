package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/git-ai-oss/gitai/internal/agentpreset/claudecode" // registers "claude-code"
	_ "github.com/git-ai-oss/gitai/internal/agentpreset/genericjson" // registers "generic-json"

	"github.com/git-ai-oss/gitai/internal/agentpreset"
	"github.com/git-ai-oss/gitai/internal/agentpreset/tabwatch"
	"github.com/git-ai-oss/gitai/internal/checkpointrec"
	"github.com/git-ai-oss/gitai/internal/logging"
)

// newCheckpointCmd implements spec.md §6.3's `checkpoint <preset>
// [--hook-input JSON]`: the manual entry point editor extensions and
// agent lifecycle hooks invoke directly, bypassing the wrapper pipeline's
// own pre-commit hook. Checkpoint-time errors never fail the command
// (spec.md §6.3 "Checkpoint-time errors exit 0... printed to stderr"),
// since a failed capture must never block an editor's save/commit flow.
func newCheckpointCmd() *cobra.Command {
	var hookInputFlag string
	var watchDirs string

	cmd := &cobra.Command{
		Use:   "checkpoint <preset>",
		Short: "Record a checkpoint from an agent or editor hook payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presetName := args[0]

			if watchDirs != "" {
				return watchTabCheckpoints(cmd, presetName, strings.Split(watchDirs, ","))
			}

			payload := []byte(hookInputFlag)
			if hookInputFlag == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "gitai: checkpoint: reading hook input: %v\n", err)
					return nil
				}
				payload = data
			}

			preset, err := agentpreset.Get(presetName)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "gitai: checkpoint: %v\n", err)
				return nil
			}

			out, err := preset.Run(payload)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "gitai: checkpoint: %v\n", err)
				return nil
			}
			if out == nil || len(out.EditedFilepaths) == 0 {
				return nil // e.g. a SessionStart/PreToolUse hook with nothing committed yet
			}

			req := checkpointrec.Request{
				Kind:          out.Kind,
				DefaultAuthor: "",
				AgentID:       &out.AgentID,
				AgentMetadata: out.AgentMetadata,
				Transcript:    out.Transcript,
				EditedPaths:   out.EditedFilepaths,
				DirtyFileSnapshot: out.DirtyFiles,
			}

			result, err := checkpointrec.Record(req)
			if err != nil {
				logging.Debug(cmd.Context(), "checkpoint command: record failed", "error", err.Error())
				fmt.Fprintf(cmd.ErrOrStderr(), "gitai: checkpoint: %v\n", err)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "checkpoints=%d lines_added=%d lines_deleted=%d\n",
				result.CheckpointsWritten, result.LinesAdded, result.LinesDeleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&hookInputFlag, "hook-input", "", "JSON hook payload (reads stdin if omitted)")
	cmd.Flags().StringVar(&watchDirs, "watch", "", "comma-separated directories to watch for inline-completion edits, instead of reading a hook payload")
	return cmd
}

// watchTabCheckpoints runs in the foreground, translating every detected
// file write under dirs into an ai-tab checkpoint attributed to tool
// (spec.md §4.1's ai-tab supplement; internal/agentpreset/tabwatch). It
// blocks until the command is interrupted (ctrl-c cancels cmd's context).
func watchTabCheckpoints(cmd *cobra.Command, tool string, dirs []string) error {
	watcher, err := tabwatch.New(tool, dirs)
	if err != nil {
		return fmt.Errorf("gitai: checkpoint --watch: %w", err)
	}
	defer watcher.Close()

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			out := ev.ToOutput()
			req := checkpointrec.Request{
				Kind:            out.Kind,
				AgentID:         &out.AgentID,
				EditedPaths:     out.EditedFilepaths,
			}
			if _, err := checkpointrec.Record(req); err != nil {
				logging.Debug(ctx, "checkpoint --watch: record failed", "error", err.Error())
			}
		}
	}
}
