// Package agentpreset defines the agent preset interface (spec.md §6.1):
// one implementation per supported AI tool, each translating that tool's
// native hook payload into a normalized Output the checkpoint recorder can
// consume. Grounded on the teacher's cmd/entire/cli/agent package, whose
// Agent interface this generalizes from "parse a lifecycle hook payload
// into session state" to "parse a lifecycle hook payload into a checkpoint
// input."
package agentpreset

import "github.com/git-ai-oss/gitai/internal/attribution"

// Output is spec.md §6.1's preset return shape.
type Output struct {
	Kind    attribution.CheckpointKind
	AgentID attribution.AgentID

	// AgentMetadata carries preset-specific extras (e.g. transcript path)
	// a caller may want to log but that don't affect attribution.
	AgentMetadata map[string]string

	RepoWorkingDir    string
	WillEditFilepaths []string
	EditedFilepaths   []string

	// Transcript is the full prompt text for this checkpoint, used by
	// internal/promptstore to derive the prompt hash and first message.
	Transcript string

	// DirtyFiles optionally supplies exact content for some paths at edit
	// time, carried straight through to checkpointrec.Request.DirtyFileSnapshot.
	DirtyFiles map[string]string
}

// Preset is spec.md §6.1's run(hook_input) function, reified as an
// interface so callers can dispatch by name without a type switch.
type Preset interface {
	// Name is the preset's registry key (e.g. "claude-code").
	Name() string

	// Run parses hookInput, the tool-specific JSON payload, into an
	// Output. Errors surface as *PresetError: the wrapper treats them as
	// non-fatal and skips the checkpoint (spec.md §6.1).
	Run(hookInput []byte) (*Output, error)
}

// PresetError wraps an error raised while parsing a preset's hook payload.
// Distinguished from other error kinds so callers can apply the "preset
// errors are never fatal" policy (spec.md §6.1, §4's failure policy).
type PresetError struct {
	Preset string
	Err    error
}

func (e *PresetError) Error() string {
	return "agent preset " + e.Preset + ": " + e.Err.Error()
}

func (e *PresetError) Unwrap() error { return e.Err }

// NewPresetError wraps err as a *PresetError attributed to presetName, or
// returns nil if err is nil.
func NewPresetError(presetName string, err error) error {
	if err == nil {
		return nil
	}
	return &PresetError{Preset: presetName, Err: err}
}
