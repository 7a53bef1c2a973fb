// Package fusion implements the attribution engine (spec.md §4.2): the
// algorithm that collapses an ordered working-log checkpoint sequence into
// one per-commit authorship log, propagating authorship across edits via
// the diff-aware overlay rule ("a later edit's changed lines are
// re-attributed to the later editor; unchanged surrounding lines keep
// their prior attribution").
package fusion

import (
	"sort"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/diffutil"
)

// ContentLookup resolves a content hash (as recorded in a
// CheckpointFile.ContentHashBefore/After) to the actual file content, so
// the engine can diff between checkpoints. Backed by the working log's
// file-content cache (internal/workinglog).
type ContentLookup interface {
	Content(hash string) (string, bool)
}

// Input bundles everything one fusion pass needs.
type Input struct {
	BaseCommitSHA string
	ToolVersion   string

	// Initial carries attributions left uncommitted by a prior fusion
	// pass against the same base commit (spec.md §3 "Initial attributions").
	Initial *attribution.InitialAttributions

	// Checkpoints is the working log's ordered checkpoint sequence since
	// BaseCommitSHA.
	Checkpoints []attribution.Checkpoint

	// CommittedContent maps each path present in the new commit's change
	// set to its final committed content, used to clip the engine's
	// running attribution to what was actually committed (spec.md §4.2
	// step 3). Paths absent here are not part of the commit.
	CommittedContent map[string]string

	Lookup ContentLookup

	// Enrich implements the "tool/model refresh" step from spec.md §4.2:
	// before fusion finalizes prompt records, it asks the agent preset
	// (via the prompt store) for the latest transcript and model for
	// each surviving prompt hash, since transcripts can grow between
	// checkpoint time and commit time. Optional; when nil, prompt records
	// carry only what Initial/the engine accumulated internally.
	Enrich func(promptHash string) (attribution.PromptRecord, bool)
}

// Result is the fusion pass's two outputs, per spec.md §4.2 contract.
type Result struct {
	AuthorshipLog       *attribution.AuthorshipLog
	InitialAttributions *attribution.InitialAttributions
}

// Fuse runs the attribution engine over in, producing the authorship log
// for the new commit plus any carried-over initial attributions for files
// that had AI edits but were not part of the commit.
func Fuse(in Input) *Result {
	state := newEngineState(in.Initial)

	for _, cp := range in.Checkpoints {
		author := authorOf(cp)
		for _, f := range cp.Files {
			state.applyCheckpointFile(f, author, in.Lookup)
		}
	}

	log := attribution.NewAuthorshipLog(in.BaseCommitSHA, in.ToolVersion)
	initial := &attribution.InitialAttributions{
		Files:   make(map[string]attribution.FileAttribution),
		Prompts: make(map[string]attribution.PromptRecord),
	}

	committedPaths := make([]string, 0, len(in.CommittedContent))
	for p := range in.CommittedContent {
		committedPaths = append(committedPaths, p)
	}
	sort.Strings(committedPaths)

	for _, path := range committedPaths {
		ranges := state.clipToCommitted(path, in.CommittedContent[path], in.Lookup)
		aiRanges := attribution.AIRanges(ranges)
		if len(aiRanges) == 0 {
			continue
		}
		log.Attestations = append(log.Attestations, attribution.FileAttribution{
			Path:   path,
			Ranges: aiRanges,
		})
		for _, r := range aiRanges {
			accrueAccepted(log.Prompts, state.prompts, r)
		}
	}

	if in.Enrich != nil {
		for hash, rec := range log.Prompts {
			if fresh, ok := in.Enrich(hash); ok {
				rec.FirstMessage = fresh.FirstMessage
				rec.Messages = fresh.Messages
				rec.AgentID = fresh.AgentID
				rec.AgentMetadata = fresh.AgentMetadata
				log.Prompts[hash] = rec
			}
		}
	}

	for path, ranges := range state.attrib {
		if _, committed := in.CommittedContent[path]; committed {
			continue
		}
		aiRanges := attribution.AIRanges(attribution.Canonicalize(ranges))
		if len(aiRanges) == 0 {
			continue
		}
		initial.Files[path] = attribution.FileAttribution{Path: path, Ranges: aiRanges}
		for _, r := range aiRanges {
			if rec, ok := state.prompts[r.Author]; ok {
				initial.Prompts[r.Author] = rec
			}
		}
	}

	return &Result{AuthorshipLog: log, InitialAttributions: initial}
}

type engineState struct {
	attrib      map[string][]attribution.LineRange
	prompts     map[string]attribution.PromptRecord
	lastContent map[string]string
}

func newEngineState(initial *attribution.InitialAttributions) *engineState {
	s := &engineState{
		attrib:      make(map[string][]attribution.LineRange),
		prompts:     make(map[string]attribution.PromptRecord),
		lastContent: make(map[string]string),
	}
	if initial == nil {
		return s
	}
	for path, fa := range initial.Files {
		s.attrib[path] = append([]attribution.LineRange(nil), fa.Ranges...)
	}
	for hash, rec := range initial.Prompts {
		s.prompts[hash] = rec
	}
	return s
}

// applyCheckpointFile overlays one checkpoint's effect on a single file
// onto the engine's running attribution[path], per spec.md §4.2 step 2:
// project prior attribution forward through the before→after diff
// (unchanged lines keep their author, shifted as needed), then attribute
// every inserted line to this checkpoint's author. Lines deleted in this
// checkpoint vanish from the running state; if they belonged to an AI
// prompt, that prompt's OverriddenLines counter is incremented.
func (s *engineState) applyCheckpointFile(f attribution.CheckpointFile, author string, lookup ContentLookup) {
	before, _ := lookup.Content(f.ContentHashBefore)
	after, _ := lookup.Content(f.ContentHashAfter)

	if diffutil.IsBinary(before) || diffutil.IsBinary(after) {
		return
	}

	prior := s.attrib[f.Path]
	hunks := diffutil.LineDiff(before, after)

	s.recordOverrides(prior, hunks, author)
	s.recordAdditions(diffutil.InsertedRanges(hunks, author), author)

	s.attrib[f.Path] = Overlay(prior, hunks, author)
	s.lastContent[f.Path] = after
}

// Overlay applies one checkpoint's diff hunks onto prior as an attribution
// overlay, per spec.md §4.2 step 2: unchanged lines carry their prior
// author forward (shifted as needed), replaced/inserted lines are
// attributed to author. Exported so the checkpoint recorder can compute
// and persist each checkpoint's per-file Attributions without duplicating
// the overlay rule.
func Overlay(prior []attribution.LineRange, hunks []diffutil.Hunk, author string) []attribution.LineRange {
	carried := diffutil.ProjectRanges(hunks, prior)
	inserted := diffutil.InsertedRanges(hunks, author)
	merged := append(append([]attribution.LineRange(nil), carried...), inserted...)
	return attribution.Canonicalize(merged)
}

// recordOverrides increments OverriddenLines on prompts whose lines were
// deleted or replaced by this checkpoint's edits, per spec.md §4.2
// "Overrides are counted against the original prompt's overridden_lines
// counter."
func (s *engineState) recordOverrides(prior []attribution.LineRange, hunks []diffutil.Hunk, newAuthor string) {
	overridden := make(map[string]int)
	for _, h := range hunks {
		if h.Kind != diffutil.OpDelete {
			continue
		}
		for _, r := range prior {
			lo := max(r.Start, h.BeforeStart)
			hi := min(r.End, h.BeforeEnd)
			if lo > hi {
				continue
			}
			if r.Author == newAuthor || r.Author == attribution.HumanAuthor {
				continue
			}
			overridden[r.Author] += hi - lo + 1
		}
	}
	for hash, n := range overridden {
		rec := s.prompts[hash]
		rec.OverriddenLines += n
		rec.TotalLinesDeleted += n
		s.prompts[hash] = rec
	}
}

// recordAdditions accrues TotalLinesAdded for the checkpoint's author over
// the lines it just inserted (spec.md §3 prompt record aggregate counters).
func (s *engineState) recordAdditions(inserted []attribution.LineRange, author string) {
	if author == attribution.HumanAuthor || author == attribution.UnknownAuthor {
		return
	}
	var n int
	for _, r := range inserted {
		n += r.Len()
	}
	if n == 0 {
		return
	}
	rec := s.prompts[author]
	rec.PromptHash = author
	rec.TotalLinesAdded += n
	s.prompts[author] = rec
}

// clipToCommitted projects the engine's running attribution for path
// forward one more time, against the actual committed content, since
// checkpoints may have run against a dirtier tree than what ended up
// staged (spec.md §4.2 step 3).
func (s *engineState) clipToCommitted(path, committedContent string, lookup ContentLookup) []attribution.LineRange {
	ranges := s.attrib[path]
	if ranges == nil {
		return nil
	}
	lastKnown := s.lastKnownContent(path, lookup)
	if lastKnown == committedContent {
		return attribution.Canonicalize(ranges)
	}
	hunks := diffutil.LineDiff(lastKnown, committedContent)
	carried := diffutil.ProjectRanges(hunks, ranges)
	// Lines inserted between the last checkpoint and the actual commit
	// (e.g. a manual tweak with no checkpoint) are unattributed, i.e.
	// human by the engine's default (spec.md §1 Non-goals).
	inserted := diffutil.InsertedRanges(hunks, attribution.HumanAuthor)
	return attribution.Canonicalize(append(carried, inserted...))
}

// lastKnownContent returns the most recent after-content the engine saw
// for path, used as the diff baseline in clipToCommitted. Falls back to
// empty (new file) when the engine never saw this path.
func (s *engineState) lastKnownContent(path string, lookup ContentLookup) string {
	_ = lookup
	return s.lastContent[path]
}

func accrueAccepted(dst map[string]attribution.PromptRecord, src map[string]attribution.PromptRecord, r attribution.LineRange) {
	if r.Author == attribution.HumanAuthor || r.Author == attribution.UnknownAuthor {
		return
	}
	rec, ok := dst[r.Author]
	if !ok {
		rec = src[r.Author]
		rec.PromptHash = r.Author
	}
	rec.AcceptedLines += r.Len()
	if srcRec, ok := src[r.Author]; ok {
		rec.OverriddenLines = srcRec.OverriddenLines
		rec.TotalLinesAdded = srcRec.TotalLinesAdded
		rec.TotalLinesDeleted = srcRec.TotalLinesDeleted
		rec.FirstMessage = srcRec.FirstMessage
		rec.Messages = srcRec.Messages
		rec.AgentID = srcRec.AgentID
		rec.AgentMetadata = srcRec.AgentMetadata
	}
	dst[r.Author] = rec
}

// authorOf derives the author-id for a checkpoint: the human sentinel for
// human checkpoints, the unknown sentinel when the agent could not be
// identified, or the stable prompt hash otherwise.
func authorOf(cp attribution.Checkpoint) string {
	if cp.Kind == attribution.KindHuman {
		return attribution.HumanAuthor
	}
	if cp.AgentID == nil {
		return attribution.UnknownAuthor
	}
	return attribution.ComputePromptHash(cp.AgentID.Tool, cp.AgentID.ConversationID, cp.Transcript)
}
