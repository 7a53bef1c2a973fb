package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/agentpreset/claudecode"
	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/promptstore"
)

// defaultTranscriptDir is Claude Code's own transcript storage root,
// matching its real on-disk convention of one JSONL file per session
// under ~/.claude/projects/<escaped-cwd>/<session-id>.jsonl.
const defaultTranscriptDir = ".claude/projects"

// newSyncPromptsCmd implements spec.md §6.3's `sync-prompts [--since T]
// [--workdir P]`: scans local agent transcript files and upserts their
// prompt text into the process-global prompt store (internal/promptstore),
// so internal/views.LookupPrompt and internal/fusion's enrichment step can
// resolve a prompt hash to its full text even after the originating
// session has ended.
func newSyncPromptsCmd() *cobra.Command {
	var since string
	var workdir string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "sync-prompts",
		Short: "Scan local agent transcripts and refresh the prompt store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cutoff := time.Time{}
			if since != "" {
				t, err := parseSince(since)
				if err != nil {
					return fmt.Errorf("gitai: sync-prompts: %w", err)
				}
				cutoff = t
			}

			root := workdir
			if root == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("gitai: sync-prompts: %w", err)
				}
				root = filepath.Join(home, defaultTranscriptDir)
			}

			store, err := promptstore.Global()
			if err != nil {
				return fmt.Errorf("gitai: sync-prompts: %w", err)
			}

			recs, overwrites, err := scanTranscripts(root, cutoff, store)
			if err != nil {
				return fmt.Errorf("gitai: sync-prompts: %w", err)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no new or updated prompts found")
				return nil
			}

			if overwrites > 0 && !assumeYes {
				ok, err := confirm(
					"Overwrite existing prompt records?",
					fmt.Sprintf("%d of %d prompts already exist locally and will be replaced.", overwrites, len(recs)),
				)
				if err != nil {
					return fmt.Errorf("gitai: sync-prompts: %w", err)
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "gitai: sync-prompts: aborted")
					return nil
				}
			}

			if err := store.UpsertBatch(recs); err != nil {
				return fmt.Errorf("gitai: sync-prompts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d prompt(s)\n", len(recs))
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only scan transcripts modified at/after this RFC3339 timestamp")
	cmd.Flags().StringVar(&workdir, "workdir", "", "directory to scan for transcripts (default ~/"+defaultTranscriptDir+")")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the overwrite confirmation prompt")
	return cmd
}

func parseSince(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q, want RFC3339: %w", s, err)
	}
	return t, nil
}

// scanTranscripts walks root for *.jsonl Claude Code transcripts modified
// at/after cutoff, building one PromptRecord per file keyed by its
// conversation's stable prompt hash.
func scanTranscripts(root string, cutoff time.Time, store *promptstore.Store) (map[string]attribution.PromptRecord, int, error) {
	recs := make(map[string]attribution.PromptRecord)
	overwrites := 0

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".jsonl") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			return nil
		}

		lines, err := claudecode.ReadTranscriptFile(path)
		if err != nil {
			return nil // a single unreadable transcript doesn't abort the scan
		}

		conversationID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		firstPrompt := claudecode.ExtractFirstUserPrompt(lines)
		if firstPrompt == "" {
			return nil
		}
		lastPrompt := claudecode.ExtractLastUserPrompt(lines)
		model := claudecode.ExtractModel(lines)

		hash := attribution.ComputePromptHash(claudecode.Name, conversationID, firstPrompt)

		// Preserve this prompt's accrued line counters (set by the fusion
		// engine at commit time); sync-prompts only refreshes the text and
		// model fields a transcript carries (spec.md §4.2's "tool/model
		// refresh" is the same split: counters belong to attribution, not
		// to the transcript).
		rec := attribution.PromptRecord{PromptHash: hash}
		if existing, exists := store.Get(hash); exists {
			rec = existing
			overwrites++
		}
		rec.FirstMessage = firstPrompt
		rec.Messages = []string{lastPrompt}
		rec.AgentID = attribution.AgentID{
			Tool:           claudecode.Name,
			ConversationID: conversationID,
			Model:          model,
		}
		recs[hash] = rec
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scanning transcripts under %s: %w", root, err)
	}
	return recs, overwrites, nil
}
