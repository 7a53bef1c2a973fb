package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/workinglog"
)

// newStatusCmd implements spec.md §6.3's `status [--json]`: shows the
// current base commit's working log -- how many checkpoints are queued
// and whether an INITIAL carry-over is pending -- the attribution
// analogue of `git status`'s "changes not yet committed."
func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pending checkpoints for the current base commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := gitrepo.Open()
			if err != nil {
				return fmt.Errorf("gitai: status: %w", err)
			}
			base, err := gitrepo.HeadHex(repo)
			if err != nil {
				return fmt.Errorf("gitai: status: %w", err)
			}
			if base == "" {
				base = workinglog.InitialBaseSentinel
			}

			log, err := workinglog.Open(base)
			if err != nil {
				return fmt.Errorf("gitai: status: %w", err)
			}
			checkpoints, err := log.Checkpoints()
			if err != nil {
				return fmt.Errorf("gitai: status: %w", err)
			}
			initial, err := log.Initial()
			if err != nil {
				return fmt.Errorf("gitai: status: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Base             string `json:"base"`
					PendingCount     int    `json:"pending_checkpoints"`
					HasInitialCarry  bool   `json:"has_initial_carry"`
				}{base, len(checkpoints), initial != nil})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "base:                %s\n", base)
			fmt.Fprintf(out, "pending checkpoints: %d\n", len(checkpoints))
			fmt.Fprintf(out, "initial carry-over:  %t\n", initial != nil)
			for _, cp := range checkpoints {
				fmt.Fprintf(out, "  %s  %s  %d file(s)\n", cp.Timestamp.Format("2006-01-02T15:04:05Z07:00"), cp.Kind, len(cp.Files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON")
	return cmd
}
