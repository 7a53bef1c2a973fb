package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/serialize"
)

// newShowCmd implements spec.md §6.3's `show <rev>`, printing a commit's
// raw authorship note in its two-section wire format -- the note-level
// analogue of `git show`, useful for debugging a sync conflict or
// confirming what a rewrite translator actually wrote.
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <rev>",
		Short: "Print the raw authorship log attached to a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitrepo.Open()
			if err != nil {
				return fmt.Errorf("gitai: show: %w", err)
			}
			hex, err := gitrepo.ResolveHex(repo, args[0])
			if err != nil {
				return fmt.Errorf("gitai: show: %w", err)
			}

			log, err := notes.Read(hex)
			if err != nil {
				return fmt.Errorf("gitai: show: %w", err)
			}
			if log == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "gitai: show: %s has no authorship note\n", hex)
				return nil
			}

			data, err := serialize.Marshal(log)
			if err != nil {
				return fmt.Errorf("gitai: show: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
