package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/workinglog"
)

// newDiffCmd implements spec.md §6.3's `diff [--json]`: a preview of the
// attestation the next commit would receive, folding the current base's
// queued checkpoints' per-file attributions the same way the fusion
// engine's prior-attribution step does (internal/checkpointrec's
// priorAttribution), without waiting for an actual commit.
func newDiffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Preview the authorship attestation the next commit would receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := gitrepo.Open()
			if err != nil {
				return fmt.Errorf("gitai: diff: %w", err)
			}
			base, err := gitrepo.HeadHex(repo)
			if err != nil {
				return fmt.Errorf("gitai: diff: %w", err)
			}
			if base == "" {
				base = workinglog.InitialBaseSentinel
			}

			log, err := workinglog.Open(base)
			if err != nil {
				return fmt.Errorf("gitai: diff: %w", err)
			}
			checkpoints, err := log.Checkpoints()
			if err != nil {
				return fmt.Errorf("gitai: diff: %w", err)
			}

			byPath := make(map[string][]attribution.LineRange)
			for _, cp := range checkpoints {
				for _, f := range cp.Files {
					byPath[f.Path] = f.Attributions
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(byPath)
			}

			out := cmd.OutOrStdout()
			if len(byPath) == 0 {
				fmt.Fprintln(out, "no pending checkpoints")
				return nil
			}
			for path, ranges := range byPath {
				aiRanges := attribution.AIRanges(ranges)
				if len(aiRanges) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s\n", path)
				for _, r := range aiRanges {
					fmt.Fprintf(out, "  %d-%d  %s\n", r.Start, r.End, r.Author)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON")
	return cmd
}
