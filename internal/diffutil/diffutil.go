// Package diffutil provides line-granularity diffing used to translate
// content changes into line-attribution ranges. Grounded on the teacher's
// strategy.diffLines (cmd/entire/cli/strategy/manual_commit_attribution.go),
// which uses the same sergi/go-diff DiffLinesToChars/DiffMain/DiffCharsToLines
// pipeline to compute line-count stats; here it is generalized from counts
// to line-range translation so the attribution engine can carry forward
// authorship across edits rather than only counting lines.
package diffutil

import (
	"strings"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// OpKind classifies one hunk of a line-level diff.
type OpKind int

const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
)

// Hunk is one contiguous span of the diff between two texts, expressed in
// line numbers of both sides. For OpEqual, BeforeStart/End and
// AfterStart/End cover the same number of lines. For OpInsert,
// BeforeStart/End is empty (zero-length) and AfterStart/End covers the
// inserted lines. For OpDelete, the reverse.
type Hunk struct {
	Kind        OpKind
	BeforeStart int // 1-indexed, inclusive; 0 if empty
	BeforeEnd   int
	AfterStart  int
	AfterEnd    int
}

// LineDiff computes the line-granularity diff between before and after,
// returning hunks in before/after line-number space. Matches the VCS's own
// diff semantics by using the same DiffLinesToChars/DiffMain/DiffCharsToLines
// pipeline a real git diff's Myers-diff core is built on.
func LineDiff(before, after string) []Hunk {
	if before == after {
		n := countLines(after)
		if n == 0 {
			return nil
		}
		return []Hunk{{Kind: OpEqual, BeforeStart: 1, BeforeEnd: n, AfterStart: 1, AfterEnd: n}}
	}

	dmp := diffmatchpatch.New()
	text1, text2, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(text1, text2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	hunks := make([]Hunk, 0, len(diffs))
	beforeLine, afterLine := 1, 1
	for _, d := range diffs {
		n := countLines(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			hunks = append(hunks, Hunk{
				Kind:        OpEqual,
				BeforeStart: beforeLine, BeforeEnd: beforeLine + n - 1,
				AfterStart: afterLine, AfterEnd: afterLine + n - 1,
			})
			beforeLine += n
			afterLine += n
		case diffmatchpatch.DiffDelete:
			hunks = append(hunks, Hunk{
				Kind:        OpDelete,
				BeforeStart: beforeLine, BeforeEnd: beforeLine + n - 1,
			})
			beforeLine += n
		case diffmatchpatch.DiffInsert:
			hunks = append(hunks, Hunk{
				Kind:       OpInsert,
				AfterStart: afterLine, AfterEnd: afterLine + n - 1,
			})
			afterLine += n
		}
	}
	return hunks
}

// Stat summarizes a line diff's effect, matching the teacher's
// diffLines(checkpointContent, committedContent) (unchanged, added, removed)
// return shape.
type Stat struct {
	Unchanged int
	Added     int
	Removed   int
}

// LineStat computes unchanged/added/removed line counts between before and
// after, equivalent to the teacher's diffLines helper.
func LineStat(before, after string) Stat {
	if before == after {
		return Stat{Unchanged: countLines(after)}
	}
	var s Stat
	for _, h := range LineDiff(before, after) {
		switch h.Kind {
		case OpEqual:
			s.Unchanged += h.AfterEnd - h.AfterStart + 1
		case OpInsert:
			s.Added += h.AfterEnd - h.AfterStart + 1
		case OpDelete:
			s.Removed += h.BeforeEnd - h.BeforeStart + 1
		}
	}
	return s
}

func countLines(content string) int {
	return CountLines(content)
}

// CountLines counts the number of lines in content, treating a trailing
// newline as closing the last line rather than starting an empty one.
// Exported so callers outside this package (internal/views' blame line
// range) don't need to re-derive the same counting rule.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// IsBinary reports whether content looks binary (contains a NUL byte),
// matching the teacher's getFileContent null-byte check. Binary files are
// excluded from attribution per spec.md §1 Non-goals.
func IsBinary(content string) bool {
	return strings.Contains(content, "\x00")
}

// ProjectRanges translates line-attribution ranges anchored in the
// "before" line space into the "after" line space, using the hunks from
// LineDiff(before, after). Lines that fall in an OpEqual hunk carry their
// prior author forward (shifted, not replaced); lines that fall in an
// OpDelete hunk are dropped (their content no longer exists); the caller is
// responsible for attributing freshly OpInsert'd line ranges to the new
// author, since those lines have no prior attribution to project.
//
// This is the core operation the fusion engine (internal/fusion) uses to
// apply one checkpoint's diff as an overlay on the engine's running
// per-file attribution list (spec.md §4.2 step 2).
func ProjectRanges(hunks []Hunk, before []attribution.LineRange) []attribution.LineRange {
	var out []attribution.LineRange
	for _, h := range hunks {
		if h.Kind != OpEqual {
			continue
		}
		shift := h.AfterStart - h.BeforeStart
		for _, r := range before {
			lo := max(r.Start, h.BeforeStart)
			hi := min(r.End, h.BeforeEnd)
			if lo > hi {
				continue
			}
			out = append(out, attribution.LineRange{Start: lo + shift, End: hi + shift, Author: r.Author})
		}
	}
	return out
}

// InsertedRanges returns the after-line-space ranges covered by OpInsert
// hunks, all attributed to author. Combined with ProjectRanges, this gives
// the full new attribution overlay for one checkpoint's diff.
func InsertedRanges(hunks []Hunk, author string) []attribution.LineRange {
	var out []attribution.LineRange
	for _, h := range hunks {
		if h.Kind == OpInsert {
			out = append(out, attribution.LineRange{Start: h.AfterStart, End: h.AfterEnd, Author: author})
		}
	}
	return out
}
