package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/views"
)

// newBlameCmd implements spec.md §6.3's `blame <path> [-L start,end]`,
// printing per-line authorship the way `git blame` prints per-line commit
// attribution, but resolved to a prompt hash, attribution.HumanAuthor, or
// attribution.UnknownAuthor.
func newBlameCmd() *cobra.Command {
	var lineRange string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "blame <path>",
		Short: "Show per-line AI/human authorship for a file at HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := views.BlameOptions{}
			if lineRange != "" {
				start, end, err := parseLineRange(lineRange)
				if err != nil {
					return fmt.Errorf("gitai: blame: %w", err)
				}
				opts.LineStart, opts.LineEnd = start, end
			}

			result, err := views.Blame(args[0], opts)
			if err != nil {
				return fmt.Errorf("gitai: blame: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			for _, line := range result.Lines {
				author := line.Author
				if rec, ok := result.Prompts[line.Author]; ok {
					author = fmt.Sprintf("%s (%s/%s)", line.Author[:min(8, len(line.Author))], rec.AgentID.Tool, rec.AgentID.Model)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", line.Line, author)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lineRange, "line-range", "L", "", "restrict to an inclusive line range, start,end")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON")
	return cmd
}

// parseLineRange parses "start,end" as used by -L, spec.md §6.3.
func parseLineRange(s string) (int, int, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid -L range %q, want start,end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -L start %q: %w", parts[0], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -L end %q: %w", parts[1], err)
	}
	return start, end, nil
}
