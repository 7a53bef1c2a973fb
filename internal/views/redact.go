package views

import (
	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/redact"
)

// RedactionPolicy decides, per spec.md §4.8, whether a prompt record's
// messages should be attached in full, scrubbed for embedded secrets, or
// emptied outright before the record reaches an authorship log.
type RedactionPolicy struct {
	// ExcludePromptsMatch reports whether the current repository matches
	// a configured "exclude prompts" pattern. When true, messages are
	// emptied regardless of remote status.
	ExcludePromptsMatch bool
	// HasRemote reports whether the repository has any configured remote.
	// Local-only repositories are always allowed to carry messages
	// (spec.md §4.8 "Local-only repositories... are always allowed to
	// carry messages").
	HasRemote bool
	// Disabled bypasses the policy entirely (an explicit opt-out),
	// leaving messages untouched even for a non-local-only repository.
	Disabled bool
}

// Apply returns rec with its Messages/FirstMessage redacted according to
// policy: a full exclusion match empties messages outright; a repository
// with a remote (and redaction not disabled) gets secrets scrubbed via
// redact.String as defense in depth, since even a non-excluded repo's
// transcript may still carry a pasted credential.
func (p RedactionPolicy) Apply(rec attribution.PromptRecord) attribution.PromptRecord {
	if p.ExcludePromptsMatch {
		rec.Messages = nil
		rec.FirstMessage = ""
		return rec
	}
	if p.Disabled || !p.HasRemote {
		return rec
	}
	rec.FirstMessage, rec.Messages = redact.PromptMessages(rec.FirstMessage, rec.Messages)
	return rec
}

// ApplyToLog redacts every prompt record in log in place, returning it for
// convenient chaining.
func (p RedactionPolicy) ApplyToLog(log *attribution.AuthorshipLog) *attribution.AuthorshipLog {
	for hash, rec := range log.Prompts {
		log.Prompts[hash] = p.Apply(rec)
	}
	return log
}
