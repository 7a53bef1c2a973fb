// Package claudecode implements the claude-code agentpreset.Preset,
// adapted from the teacher's cmd/entire/cli/agent/claudecode package: same
// JSON hook-payload shapes and JSONL transcript parsing, retargeted to
// produce an agentpreset.Output instead of the teacher's session-resumption
// state (spec.md §6.1).
package claudecode

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/git-ai-oss/gitai/internal/agentpreset"
	"github.com/git-ai-oss/gitai/internal/attribution"
)

// Name is the preset's registry key.
const Name = "claude-code"

func init() {
	agentpreset.Register(Name, func() agentpreset.Preset { return &Preset{} })
}

// Preset implements agentpreset.Preset for Claude Code.
type Preset struct{}

// Name returns the registry key "claude-code".
func (p *Preset) Name() string { return Name }

// envelope is the union of the fields Claude Code's hook payloads carry,
// discriminated by HookEventName (the field real Claude Code hook JSON
// includes; the teacher's code instead threads hook type through the CLI
// subcommand it's invoked as, which Run's single-function signature can't
// do, so this preset reads it from the payload itself).
type envelope struct {
	HookEventName  string          `json:"hook_event_name"`
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	CWD            string          `json:"cwd"`
	Prompt         string          `json:"prompt"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
}

type toolInput struct {
	FilePath     string `json:"file_path,omitempty"`
	NotebookPath string `json:"notebook_path,omitempty"`
}

// Tool names used in Claude Code transcripts that modify files.
var fileModificationTools = map[string]bool{
	"Write":        true,
	"Edit":         true,
	"NotebookEdit": true,
	"mcp__acp__Write": true,
	"mcp__acp__Edit":  true,
}

// Run parses hookInput per spec.md §6.1 into an agentpreset.Output. A
// SessionStart/UserPromptSubmit hook produces a will-edit notice (no files
// touched yet); Stop and PostToolUse hooks read the transcript to compute
// which files the agent actually edited.
func (p *Preset) Run(hookInput []byte) (*agentpreset.Output, error) {
	var env envelope
	if err := json.Unmarshal(hookInput, &env); err != nil {
		return nil, agentpreset.NewPresetError(Name, err)
	}

	conversationID := env.SessionID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	out := &agentpreset.Output{
		Kind: attribution.KindAIAgent,
		AgentID: attribution.AgentID{
			Tool:           Name,
			ConversationID: conversationID,
		},
		RepoWorkingDir: env.CWD,
		AgentMetadata:  map[string]string{"transcript_path": env.TranscriptPath},
	}

	switch env.HookEventName {
	case "SessionStart", "UserPromptSubmit":
		out.Transcript = env.Prompt
		return out, nil

	case "PreToolUse":
		if path := filePathFromToolInput(env.ToolInput); path != "" {
			out.WillEditFilepaths = []string{path}
		}
		return out, nil

	case "PostToolUse", "Stop":
		if env.TranscriptPath == "" {
			return out, nil
		}
		lines, err := ReadTranscriptFile(env.TranscriptPath)
		if err != nil {
			return nil, agentpreset.NewPresetError(Name, err)
		}
		out.EditedFilepaths = ExtractModifiedFiles(lines)
		out.Transcript = ExtractLastUserPrompt(lines)
		if model := ExtractModel(lines); model != "" {
			out.AgentID.Model = model
		}
		return out, nil

	default:
		return out, nil
	}
}

func filePathFromToolInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var in toolInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ""
	}
	if in.FilePath != "" {
		return in.FilePath
	}
	return in.NotebookPath
}

func isFileModificationTool(name string) bool { return fileModificationTools[name] }
