// Package rewrite implements the History Rewrite Translator (spec.md
// §4.4): given one or more original authorship logs and the file content
// on both sides of a history rewrite, it re-projects line attributions
// into the rewritten commit's line space. Grounded on the teacher's git
// object construction idiom (strategy.createCommit, strategy.EnsureMetadataBranch)
// for how commits/trees are built, generalized here to project attribution
// data rather than construct checkpoint commits.
package rewrite

import (
	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/diffutil"
)

// ContentAt resolves one file's content for a given commit-ish side of a
// rewrite. Implementations typically wrap gitrepo.FileContent.
type ContentAt func(path string) string

// project re-projects every file-attribution in log from oldContent's line
// space into newContent's line space, using a diff between the two. Used
// by every translator variant as the core primitive.
func project(log *attribution.AuthorshipLog, paths []string, oldContent, newContent ContentAt) []attribution.FileAttribution {
	var out []attribution.FileAttribution
	byPath := make(map[string][]attribution.LineRange, len(log.Attestations))
	for _, fa := range log.Attestations {
		byPath[fa.Path] = fa.Ranges
	}
	for _, path := range paths {
		prior := byPath[path]
		if prior == nil {
			continue
		}
		before := oldContent(path)
		after := newContent(path)
		hunks := diffutil.LineDiff(before, after)
		projected := attribution.Canonicalize(diffutil.ProjectRanges(hunks, prior))
		if len(projected) == 0 {
			continue
		}
		out = append(out, attribution.FileAttribution{Path: path, Ranges: projected})
	}
	return out
}

// unionPromptsFor collects the prompt records referenced by attestations,
// from one or more source logs, in source order (later sources win on
// hash collision, matching the fusion/overlap "later wins" rule).
func unionPromptsFor(attestations []attribution.FileAttribution, sources ...*attribution.AuthorshipLog) map[string]attribution.PromptRecord {
	referenced := make(map[string]bool)
	for _, fa := range attestations {
		for _, r := range fa.Ranges {
			if r.Author != attribution.HumanAuthor && r.Author != attribution.UnknownAuthor {
				referenced[r.Author] = true
			}
		}
	}
	out := make(map[string]attribution.PromptRecord, len(referenced))
	for _, src := range sources {
		for hash, rec := range src.Prompts {
			if referenced[hash] {
				out[hash] = rec
			}
		}
	}
	return out
}

// Amend produces the new authorship log for a commit-amend (spec.md
// §4.4.1): prior AI attributions on unchanged lines are preserved; lines
// touched by the amend are recorded as human (amends are, by construction,
// a human action on top of an already-committed tree).
func Amend(old *attribution.AuthorshipLog, changedPaths []string, oldContent, newContent ContentAt, newBaseSHA, toolVersion string) *attribution.AuthorshipLog {
	attestations := project(old, changedPaths, oldContent, newContent)
	out := attribution.NewAuthorshipLog(newBaseSHA, toolVersion)
	out.Attestations = attestations
	out.Prompts = unionPromptsFor(attestations, old)
	return out
}

// CherryPick re-projects a single original commit's authorship log into
// the new commit's line space (spec.md §4.4.2).
func CherryPick(old *attribution.AuthorshipLog, changedPaths []string, oldContent, newContent ContentAt, newBaseSHA, toolVersion string) *attribution.AuthorshipLog {
	attestations := project(old, changedPaths, oldContent, newContent)
	out := attribution.NewAuthorshipLog(newBaseSHA, toolVersion)
	out.Attestations = attestations
	out.Prompts = unionPromptsFor(attestations, old)
	return out
}

// SquashSource pairs one source commit's authorship log with a resolver
// for that exact commit's own file content. A log's Attestations are line
// ranges in that commit's own line space, not some shared coordinate
// system, so Squash needs each commit's content to re-project its log
// forward to the next commit's line space before unioning -- unioning raw
// ranges straight from disk would misalign whenever an intermediate
// commit shifted line numbers in the same file.
type SquashSource struct {
	Log     *attribution.AuthorshipLog
	Content ContentAt
}

// Squash unions the AI attributions of an ordered range of original
// commits (oldest first; later commits override earlier ones on
// overlapping lines, the same rule fusion uses), re-projecting each
// commit's log forward through the diff to the next commit's content
// before folding it in, and clips the final union against the target
// commit's actual content (spec.md §4.4.3).
func Squash(sources []SquashSource, paths []string, baseContent, targetContent ContentAt, newBaseSHA, toolVersion string) *attribution.AuthorshipLog {
	unioned := make(map[string][]attribution.LineRange)
	prevContent := baseContent
	for _, src := range sources {
		ownByPath := make(map[string][]attribution.LineRange, len(src.Log.Attestations))
		for _, fa := range src.Log.Attestations {
			ownByPath[fa.Path] = fa.Ranges
		}
		for _, path := range paths {
			prior := unioned[path]
			if prior != nil {
				hunks := diffutil.LineDiff(prevContent(path), src.Content(path))
				prior = diffutil.ProjectRanges(hunks, prior)
			}
			own := ownByPath[path]
			if prior == nil && own == nil {
				continue
			}
			merged := attribution.Canonicalize(append(append([]attribution.LineRange(nil), prior...), own...))
			if len(merged) > 0 {
				unioned[path] = merged
			}
		}
		prevContent = src.Content
	}

	var attestations []attribution.FileAttribution
	for _, path := range paths {
		prior := unioned[path]
		if prior == nil {
			continue
		}
		hunks := diffutil.LineDiff(prevContent(path), targetContent(path))
		projected := attribution.Canonicalize(diffutil.ProjectRanges(hunks, prior))
		if len(projected) == 0 {
			continue
		}
		attestations = append(attestations, attribution.FileAttribution{Path: path, Ranges: projected})
	}

	out := attribution.NewAuthorshipLog(newBaseSHA, toolVersion)
	out.Attestations = attestations
	logs := make([]*attribution.AuthorshipLog, len(sources))
	for i, src := range sources {
		logs[i] = src.Log
	}
	out.Prompts = unionPromptsFor(attestations, logs...)
	return out
}

// CommitMapping pairs one original commit's changed paths/content resolver
// with the corresponding new commit's, for LinearRebase.
type CommitMapping struct {
	Log           *attribution.AuthorshipLog
	ChangedPaths  []string
	OldContent    ContentAt
	NewContent    ContentAt
	NewCommitSHA  string
	EquivalentToUpstream bool // true when the new commit's patch text matches an existing upstream commit (spec.md §4.4.4)
}

// LinearRebase applies cherry-pick-style projection pairwise across equal
// old/new commit lists. Mappings marked EquivalentToUpstream are skipped
// entirely (scenario 4 in spec.md §8: a commit whose patch already exists
// upstream is not reclassified as newly rebased).
func LinearRebase(mappings []CommitMapping, toolVersion string) []*attribution.AuthorshipLog {
	out := make([]*attribution.AuthorshipLog, 0, len(mappings))
	for _, m := range mappings {
		if m.EquivalentToUpstream {
			continue
		}
		out = append(out, CherryPick(m.Log, m.ChangedPaths, m.OldContent, m.NewContent, m.NewCommitSHA, toolVersion))
	}
	return out
}

// MergeParent is one parent side of a merge commit: its authorship log
// plus the set of paths it touched relative to the merge base.
type MergeParent struct {
	Log          *attribution.AuthorshipLog
	ChangedPaths []string
	Content      ContentAt
}

// MergePassThrough computes the merge commit's authorship log by union of
// its parents' attributions, each projected from its own content onto the
// merge commit's content (spec.md §4.4.5: "inherit their AI attributions
// from the parents by walking the merge base; no new translation beyond
// that is required"). Unlike Squash, no further per-pair reprojection is
// needed before unioning: each parent's ranges are already projected onto
// mergeContent's own line space by the project() call below, so by the
// time they're unioned every range shares one coordinate system. A
// fast-forward merge (single parent supplies all content unchanged)
// degenerates to that parent's log unmodified, so callers should
// special-case true no-op fast-forwards before calling this.
func MergePassThrough(parents []MergeParent, mergeContent ContentAt, mergedPaths []string, newBaseSHA, toolVersion string) *attribution.AuthorshipLog {
	unioned := make(map[string][]attribution.LineRange)
	var sources []*attribution.AuthorshipLog
	for _, p := range parents {
		sources = append(sources, p.Log)
		for _, fa := range project(p.Log, p.ChangedPaths, p.Content, mergeContent) {
			unioned[fa.Path] = attribution.Canonicalize(append(append([]attribution.LineRange(nil), unioned[fa.Path]...), fa.Ranges...))
		}
	}

	var attestations []attribution.FileAttribution
	for _, path := range mergedPaths {
		if ranges, ok := unioned[path]; ok && len(ranges) > 0 {
			attestations = append(attestations, attribution.FileAttribution{Path: path, Ranges: ranges})
		}
	}

	out := attribution.NewAuthorshipLog(newBaseSHA, toolVersion)
	out.Attestations = attestations
	out.Prompts = unionPromptsFor(attestations, sources...)
	return out
}
