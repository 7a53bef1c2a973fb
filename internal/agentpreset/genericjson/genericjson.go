// Package genericjson implements a minimal agentpreset.Preset for any tool
// that emits a normalized JSON envelope instead of a tool-specific hook
// payload, grounded on the teacher's agent/types.go HookInput normalization
// idea (spec.md §6.1's "agent could not be identified" edge case: any tool
// not covered by a dedicated preset can still produce a checkpoint through
// this envelope, falling back to the unknown-agent sentinel when the tool
// name is omitted).
package genericjson

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/git-ai-oss/gitai/internal/agentpreset"
	"github.com/git-ai-oss/gitai/internal/attribution"
)

// Name is the preset's registry key.
const Name = "generic-json"

func init() {
	agentpreset.Register(Name, func() agentpreset.Preset { return &Preset{} })
}

// Preset implements agentpreset.Preset for the normalized envelope.
type Preset struct{}

// Name returns the registry key "generic-json".
func (p *Preset) Name() string { return Name }

// envelope is the normalized hook payload: {tool, model, session_id,
// prompt, will_edit_files, edited_files, repo_working_dir}.
type envelope struct {
	Tool            string            `json:"tool"`
	Model           string            `json:"model"`
	SessionID       string            `json:"session_id"`
	Prompt          string            `json:"prompt"`
	WillEditFiles   []string          `json:"will_edit_files"`
	EditedFiles     []string          `json:"edited_files"`
	RepoWorkingDir  string            `json:"repo_working_dir"`
	Metadata        map[string]string `json:"metadata"`
	DirtyFiles      map[string]string `json:"dirty_files"`
}

// Run parses the normalized envelope. A missing Tool falls back to
// attribution.UnknownAuthor's tool slot so the checkpoint is still
// recorded as AI-authored but carries no resolvable prompt record
// (spec.md §9 open question (b)).
func (p *Preset) Run(hookInput []byte) (*agentpreset.Output, error) {
	var env envelope
	if err := json.Unmarshal(hookInput, &env); err != nil {
		return nil, agentpreset.NewPresetError(Name, err)
	}

	tool := env.Tool
	if tool == "" {
		tool = attribution.UnknownAuthor
	}
	conversationID := env.SessionID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	return &agentpreset.Output{
		Kind: attribution.KindAIAgent,
		AgentID: attribution.AgentID{
			Tool:           tool,
			ConversationID: conversationID,
			Model:          env.Model,
		},
		AgentMetadata:     env.Metadata,
		RepoWorkingDir:    env.RepoWorkingDir,
		WillEditFilepaths: env.WillEditFiles,
		EditedFilepaths:   env.EditedFiles,
		Transcript:        env.Prompt,
		DirtyFiles:        env.DirtyFiles,
	}, nil
}
