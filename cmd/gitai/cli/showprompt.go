package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/views"
)

// newShowPromptCmd implements spec.md §6.3's `show-prompt <hash> [--commit
// REV | --offset N]`: a prompt hash can be attached to several commits
// (e.g. after a cherry-pick carries its attestation forward), so the
// default picks the most recent occurrence and the two flags let a caller
// pick a specific one.
func newShowPromptCmd() *cobra.Command {
	var commitFilter string
	var offset int

	cmd := &cobra.Command{
		Use:   "show-prompt <hash>",
		Short: "Print the prompt text and metadata for a prompt hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			occurrences, err := views.LookupPrompt(args[0])
			if err != nil {
				return fmt.Errorf("gitai: show-prompt: %w", err)
			}
			if len(occurrences) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "gitai: show-prompt: no commit references prompt %s\n", args[0])
				return nil
			}

			chosen := occurrences[0]
			switch {
			case commitFilter != "":
				found := false
				for _, occ := range occurrences {
					if occ.CommitSHA == commitFilter {
						chosen = occ
						found = true
						break
					}
				}
				if !found {
					fmt.Fprintf(cmd.ErrOrStderr(), "gitai: show-prompt: prompt %s not attached to commit %s\n", args[0], commitFilter)
					return nil
				}
			case offset != 0:
				if offset < 0 || offset >= len(occurrences) {
					return fmt.Errorf("gitai: show-prompt: --offset %d out of range (%d occurrences)", offset, len(occurrences))
				}
				chosen = occurrences[offset]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "commit:       %s\n", chosen.CommitSHA)
			fmt.Fprintf(out, "tool/model:   %s/%s\n", chosen.Record.AgentID.Tool, chosen.Record.AgentID.Model)
			fmt.Fprintf(out, "added/deleted: %d/%d (accepted %d)\n", chosen.Record.TotalLinesAdded, chosen.Record.TotalLinesDeleted, chosen.Record.AcceptedLines)
			fmt.Fprintln(out, "---")
			fmt.Fprintln(out, chosen.Record.FirstMessage)
			for _, msg := range chosen.Record.Messages {
				fmt.Fprintln(out, msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&commitFilter, "commit", "", "restrict to this commit's occurrence")
	cmd.Flags().IntVar(&offset, "offset", 0, "pick the Nth-most-recent occurrence instead of the default (0 = most recent)")
	return cmd
}
