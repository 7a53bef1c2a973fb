package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/views"
)

// newStatsCmd implements spec.md §6.3's `stats [rev-or-range] [--json]`,
// dispatching to a single-commit views.Stats or a views.RangeStats walk
// depending on whether the argument contains "..".
func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [rev-or-range]",
		Short: "Show AI/human line-attribution statistics for a commit or range",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := "HEAD"
			if len(args) == 1 {
				rev = args[0]
			}

			repo, err := gitrepo.Open()
			if err != nil {
				return fmt.Errorf("gitai: stats: %w", err)
			}

			if from, to, ok := strings.Cut(rev, ".."); ok {
				fromHex, err := gitrepo.ResolveHex(repo, from)
				if err != nil {
					return fmt.Errorf("gitai: stats: %w", err)
				}
				toRev := to
				if toRev == "" {
					toRev = "HEAD"
				}
				toHex, err := gitrepo.ResolveHex(repo, toRev)
				if err != nil {
					return fmt.Errorf("gitai: stats: %w", err)
				}
				result, err := views.RangeStats(fromHex, toHex, views.RangeStatsOptions{})
				if err != nil {
					return fmt.Errorf("gitai: stats: %w", err)
				}
				return printStats(cmd, asJSON, result.CommitCount, &result.Total)
			}

			hex, err := gitrepo.ResolveHex(repo, rev)
			if err != nil {
				return fmt.Errorf("gitai: stats: %w", err)
			}
			result, err := views.Stats(hex)
			if err != nil {
				return fmt.Errorf("gitai: stats: %w", err)
			}
			return printStats(cmd, asJSON, 1, result)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON")
	return cmd
}

func printStats(cmd *cobra.Command, asJSON bool, commitCount int, stats *views.CommitStats) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			CommitCount int `json:"commit_count"`
			*views.CommitStats
		}{commitCount, stats})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "commits:           %d\n", commitCount)
	fmt.Fprintf(out, "human additions:   %d\n", stats.HumanAdditions)
	fmt.Fprintf(out, "AI additions:      %d\n", stats.TotalAIAdditions)
	fmt.Fprintf(out, "AI deletions:      %d\n", stats.TotalAIDeletions)
	fmt.Fprintf(out, "AI accepted:       %d\n", stats.AIAccepted)
	fmt.Fprintf(out, "mixed files:       %d\n", stats.MixedFiles)
	for _, tm := range stats.ByToolModel {
		fmt.Fprintf(out, "  %s/%s: added=%d accepted=%d\n", tm.Tool, tm.Model, tm.LinesAdded, tm.LinesAccepted)
	}
	return nil
}
