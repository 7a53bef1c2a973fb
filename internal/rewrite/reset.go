package rewrite

import (
	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/workinglog"
)

// ReconstructWorkingLog implements spec.md §4.4.6: when a reset strands
// commits that carried authorship logs, their attributions are folded into
// the reset target's working-log INITIAL carry-over state (union, later
// commits override earlier ones on overlapping lines — the same overlap
// rule fusion uses), so a future commit from that base still attributes
// correctly. lostLogs must be supplied oldest-first (the order the commits
// were originally made in). A synthetic checkpoint record is not used here
// since the engine re-derives attribution from content hashes, which a
// lost commit's authorship log alone cannot supply.
func ReconstructWorkingLog(log *workinglog.Log, lostLogs []*attribution.AuthorshipLog) error {
	existing, err := log.Initial()
	if err != nil {
		return err
	}
	files := make(map[string][]attribution.LineRange)
	prompts := make(map[string]attribution.PromptRecord)
	if existing != nil {
		for path, fa := range existing.Files {
			files[path] = fa.Ranges
		}
		for hash, rec := range existing.Prompts {
			prompts[hash] = rec
		}
	}

	for _, al := range lostLogs {
		for _, fa := range al.Attestations {
			files[fa.Path] = attribution.Canonicalize(append(append([]attribution.LineRange(nil), files[fa.Path]...), fa.Ranges...))
		}
		for hash, rec := range al.Prompts {
			prompts[hash] = rec
		}
	}

	if len(files) == 0 {
		return nil
	}

	out := &attribution.InitialAttributions{
		Files:   make(map[string]attribution.FileAttribution, len(files)),
		Prompts: prompts,
	}
	for path, ranges := range files {
		out.Files[path] = attribution.FileAttribution{Path: path, Ranges: ranges}
	}
	return log.WriteInitial(out)
}
