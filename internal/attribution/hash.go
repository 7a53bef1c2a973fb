package attribution

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputePromptHash derives the stable content hash identifying a
// conversation, per spec.md §3: "a stable content hash derived from the
// first user message text of a conversation transcript together with the
// tool and conversation identifiers." Two checkpoints referring to the
// same prompt must compute the same hash, so only these three stable
// inputs participate — not the model (which can change mid-conversation
// without starting a new prompt) and not the evolving transcript.
func ComputePromptHash(tool, conversationID, firstUserMessage string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(tool))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(conversationID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(firstUserMessage))
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash computes the stable content-hash used to detect whether a
// file's content changed between two checkpoints without storing the full
// content twice. Standard-library-only: no pack dependency specializes in
// content hashing (see DESIGN.md).
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HumanPromptHash returns a deterministic pseudo-hash for human authorship
// of a given checkpoint actor, distinct from any real AI prompt hash
// because it is always literally HumanAuthor rather than a hex digest.
func HumanPromptHash() string { return HumanAuthor }
