// Package attribution defines gitai's core data model: prompt hashes, line
// attributions, checkpoints, prompt records, and authorship logs. These
// types are shared by every other internal package (diffutil, fusion,
// serialize, workinglog, rewrite, notes, views) and are kept free of
// behavior beyond invariant-preserving construction, matching the shape
// of the teacher's checkpoint.CommittedMetadata / InitialAttribution types.
package attribution

import (
	"sort"
	"time"
)

// HumanAuthor is the pseudo author-id sentinel identifying human-written
// line ranges. It is never a real prompt hash.
const HumanAuthor = "human"

// UnknownAuthor is the distinguished sentinel recorded when a checkpoint's
// agent could not be identified. Lines attributed to it are AI-authored by
// definition but carry no prompt record (spec.md §9 open question (b)).
const UnknownAuthor = "unknown"

// CheckpointKind classifies the origin of a single checkpoint.
type CheckpointKind string

const (
	KindHuman   CheckpointKind = "human"
	KindAIAgent CheckpointKind = "ai-agent"
	KindAITab   CheckpointKind = "ai-tab"
)

// SchemaVersion is the current authorship log / checkpoint schema version.
// Bumped whenever the on-disk or wire shape of these types changes in a way
// that affects the sync-protocol divergence tiebreak (internal/notes).
const SchemaVersion = "1.0.0"

// AgentID identifies the conversation that produced a checkpoint: which
// tool, which conversation, and which model. Two checkpoints with the same
// AgentID and first-user-message belong to the same prompt.
type AgentID struct {
	Tool           string `json:"tool"`
	ConversationID string `json:"conversation_id"`
	Model          string `json:"model,omitempty"`
}

// LineRange is an inclusive, 1-indexed line range with a single author.
// Invariant (enforced by Canonicalize, never assumed of raw input): within
// one file's attribution list, ranges are disjoint, non-empty, sorted by
// Start, and adjacent ranges with the same Author are fused.
type LineRange struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Author string `json:"author"` // prompt hash, HumanAuthor, or UnknownAuthor
}

// Len returns the number of lines covered by the range.
func (r LineRange) Len() int { return r.End - r.Start + 1 }

// FileAttribution is the ordered, canonical list of line ranges covering a
// single file's current content.
type FileAttribution struct {
	Path   string      `json:"path"`
	Ranges []LineRange `json:"ranges"`
}

// Canonicalize fuses adjacent or overlapping same-author ranges and
// resolves author-overlap by application order, producing the
// disjoint/sorted/fused form the spec's invariant 1 (§8) requires:
// "the overlapping lines are re-attributed to the later editor;
// non-overlapping lines retain their prior attribution." Zero-length or
// inverted ranges are dropped.
//
// "Later" means later in ranges' input order, not a lower/higher Start --
// a more-recently-applied overlay can have a Start below the range it
// partially overrides. Each range is folded into the accumulated disjoint
// set in input order, subtracting its span from every range seen so far
// (splitting, never discarding, the surviving remainder) before being
// added itself, so a later range fully contained inside an earlier one
// still leaves that earlier range's tail(s) intact.
func Canonicalize(ranges []LineRange) []LineRange {
	filtered := make([]LineRange, 0, len(ranges))
	for _, r := range ranges {
		if r.End >= r.Start {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	var acc []LineRange
	for _, r := range filtered {
		next := make([]LineRange, 0, len(acc)+1)
		for _, a := range acc {
			next = append(next, subtractRange(a, r)...)
		}
		acc = append(next, r)
	}

	sort.SliceStable(acc, func(i, j int) bool {
		if acc[i].Start != acc[j].Start {
			return acc[i].Start < acc[j].Start
		}
		return acc[i].End < acc[j].End
	})

	out := make([]LineRange, 0, len(acc))
	cur := acc[0]
	for _, r := range acc[1:] {
		if r.Start <= cur.End+1 && r.Author == cur.Author {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	out = append(out, cur)
	return out
}

// subtractRange removes the portion of a covered by cut, returning the
// (possibly empty, possibly split into two) remainder with a's original
// author.
func subtractRange(a, cut LineRange) []LineRange {
	lo, hi := max(a.Start, cut.Start), min(a.End, cut.End)
	if lo > hi {
		return []LineRange{a}
	}
	var out []LineRange
	if a.Start < lo {
		out = append(out, LineRange{Start: a.Start, End: lo - 1, Author: a.Author})
	}
	if a.End > hi {
		out = append(out, LineRange{Start: hi + 1, End: a.End, Author: a.Author})
	}
	return out
}

// FindsAuthor reports the author covering a given 1-indexed line, or
// HumanAuthor if no range covers it (unattributed lines are human by
// definition per spec.md §1 Non-goals).
func FindAuthor(ranges []LineRange, line int) string {
	for _, r := range ranges {
		if line >= r.Start && line <= r.End {
			return r.Author
		}
	}
	return HumanAuthor
}

// Checkpoint is one record in a working log: the result of a single human
// or AI edit event, per spec.md §3.
type Checkpoint struct {
	Kind          CheckpointKind    `json:"kind"`
	Timestamp     time.Time         `json:"timestamp"`
	DefaultAuthor string            `json:"default_author"`
	Files         []CheckpointFile  `json:"files"`
	Transcript    string            `json:"transcript,omitempty"`
	AgentID       *AgentID          `json:"agent_id,omitempty"`
	AgentMetadata map[string]string `json:"agent_metadata,omitempty"`
	DiffStat      DiffStat          `json:"diff_stat"`
	SchemaVersion string            `json:"schema_version"`
}

// CheckpointFile captures one file's before/after state within a
// checkpoint, plus the attributions computed for its new content.
type CheckpointFile struct {
	Path             string      `json:"path"`
	ContentHashBefore string     `json:"content_hash_before"`
	ContentHashAfter  string     `json:"content_hash_after"`
	Attributions      []LineRange `json:"attributions"`
}

// DiffStat is a line-count summary of one checkpoint's effect.
type DiffStat struct {
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`
}

// IsEmpty reports whether the checkpoint touched no files, i.e. should not
// be appended to the working log (spec.md §8 invariant 4).
func (c Checkpoint) IsEmpty() bool { return len(c.Files) == 0 }

// PromptRecord is the canonical representation of one prompt: hash,
// message content, identity, and aggregate counters, per spec.md §3.
type PromptRecord struct {
	PromptHash        string            `json:"prompt_hash"`
	FirstMessage      string            `json:"first_message"`
	Messages          []string          `json:"messages,omitempty"`
	AgentID           AgentID           `json:"agent_id"`
	TotalLinesAdded   int               `json:"total_lines_added"`
	TotalLinesDeleted int               `json:"total_lines_deleted"`
	AcceptedLines     int               `json:"accepted_lines"`
	OverriddenLines   int               `json:"overridden_lines"`
	AgentMetadata     map[string]string `json:"agent_metadata,omitempty"`
}

// Redacted reports whether this record's messages have been scrubbed by
// the redaction policy (internal/views), in which case Messages is empty
// but FirstMessage/AgentID/counters remain.
func (p PromptRecord) Redacted() bool { return len(p.Messages) == 0 && p.FirstMessage == "" }

// AuthorshipLog is the canonical per-commit attestation object, per
// spec.md §3 and §4.3.
type AuthorshipLog struct {
	SchemaVersion string                       `json:"schema_version"`
	BaseCommitSHA string                       `json:"base_commit_sha"`
	Attestations  []FileAttribution            `json:"attestations"`
	Prompts       map[string]PromptRecord      `json:"prompts"`
	ToolVersion   string                        `json:"tool_version,omitempty"`
}

// NewAuthorshipLog returns an empty authorship log for the given base
// commit, stamped with the current schema version.
func NewAuthorshipLog(baseCommitSHA, toolVersion string) *AuthorshipLog {
	return &AuthorshipLog{
		SchemaVersion: SchemaVersion,
		BaseCommitSHA: baseCommitSHA,
		Attestations:  nil,
		Prompts:       make(map[string]PromptRecord),
		ToolVersion:   toolVersion,
	}
}

// AIRanges returns only the AI-attributed ranges of fa (human and unknown
// ranges with no prompt record are excluded per the serialization
// contract in §4.3 — attestations list only AI-attributable ranges with a
// surviving prompt record).
func AIRanges(ranges []LineRange) []LineRange {
	out := make([]LineRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Author != HumanAuthor {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the universal invariant from spec.md §8.1: every
// prompt_hash referenced in Attestations has a matching entry in Prompts,
// and line ranges are disjoint/sorted/non-empty (assuming Canonicalize was
// applied upstream).
func (a *AuthorshipLog) Validate() error {
	for _, fa := range a.Attestations {
		prevEnd := -1
		for _, r := range fa.Ranges {
			if r.End < r.Start {
				return newValidationError(fa.Path, "empty or inverted range")
			}
			if r.Start <= prevEnd {
				return newValidationError(fa.Path, "ranges not disjoint/sorted")
			}
			prevEnd = r.End
			if r.Author == HumanAuthor {
				continue
			}
			if r.Author == UnknownAuthor {
				continue
			}
			if _, ok := a.Prompts[r.Author]; !ok {
				return newValidationError(fa.Path, "prompt hash "+r.Author+" missing from prompts map")
			}
		}
	}
	return nil
}

type validationError struct {
	path string
	msg  string
}

func newValidationError(path, msg string) error {
	return &validationError{path: path, msg: msg}
}

func (e *validationError) Error() string {
	return "authorship log invalid for " + e.path + ": " + e.msg
}

// InitialAttributions is the carry-over file written when a commit left
// some AI-attributed lines uncommitted, per spec.md §3.
type InitialAttributions struct {
	Files map[string]FileAttribution `json:"files"`
	// Prompts covers exactly the prompt hashes referenced by Files, so the
	// next working log's fusion pass has the records available without a
	// prompt-store round trip.
	Prompts map[string]PromptRecord `json:"prompts"`
}

// RewriteEventKind classifies a rewrite-event-log record.
type RewriteEventKind string

const (
	EventCommit        RewriteEventKind = "commit"
	EventReset         RewriteEventKind = "reset"
	EventAmend         RewriteEventKind = "amend"
	EventCherryPick    RewriteEventKind = "cherry-pick"
	EventMergeSquash   RewriteEventKind = "merge-squash"
	EventRebaseComplete RewriteEventKind = "rebase-complete"
)

// RewriteEvent is one append-only record in the rewrite event log,
// per spec.md §3 / §4.4.
type RewriteEvent struct {
	Kind      RewriteEventKind `json:"kind"`
	Timestamp time.Time        `json:"timestamp"`

	// Commit-producing events.
	NewCommit string `json:"new_commit,omitempty"`

	// Reset.
	FromCommit string   `json:"from_commit,omitempty"`
	ToCommit   string   `json:"to_commit,omitempty"`
	LostCommits []string `json:"lost_commits,omitempty"`

	// Amend / cherry-pick.
	OldCommit string `json:"old_commit,omitempty"`

	// Squash / linear rebase.
	OldCommits []string `json:"old_commits,omitempty"`
	NewCommits []string `json:"new_commits,omitempty"`
	TargetCommit string `json:"target_commit,omitempty"`
}
