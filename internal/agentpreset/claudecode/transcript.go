package claudecode

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"

	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// transcriptLine is a single line in Claude Code's JSONL transcript,
// adapted from the teacher's TranscriptLine.
type transcriptLine struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

type userMessage struct {
	Content interface{} `json:"content"`
}

type assistantMessage struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type messageWithModel struct {
	Model string `json:"model"`
}

// scannerBufferSize accommodates large transcript lines (a single
// tool_result can embed a whole file).
const scannerBufferSize = 10 * 1024 * 1024

// ReadTranscriptFile reads and parses a Claude Code JSONL transcript.
func ReadTranscriptFile(path string) ([]transcriptLine, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the hook payload, not user argv
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "reading transcript "+path, err)
	}
	return parseTranscript(data), nil
}

func parseTranscript(data []byte) []transcriptLine {
	var lines []transcriptLine
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, scannerBufferSize), scannerBufferSize)
	for scanner.Scan() {
		var line transcriptLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // malformed lines are skipped, not fatal
		}
		lines = append(lines, line)
	}
	return lines
}

// ExtractModifiedFiles returns the file paths a Claude Code transcript's
// assistant tool calls wrote or edited, in first-seen order.
func ExtractModifiedFiles(lines []transcriptLine) []string {
	seen := make(map[string]bool)
	var files []string

	for _, line := range lines {
		if line.Type != "assistant" {
			continue
		}
		var msg assistantMessage
		if err := json.Unmarshal(line.Message, &msg); err != nil {
			continue
		}
		for _, block := range msg.Content {
			if block.Type != "tool_use" || !isFileModificationTool(block.Name) {
				continue
			}
			var in toolInput
			if err := json.Unmarshal(block.Input, &in); err != nil {
				continue
			}
			file := in.FilePath
			if file == "" {
				file = in.NotebookPath
			}
			if file != "" && !seen[file] {
				seen[file] = true
				files = append(files, file)
			}
		}
	}
	return files
}

// ExtractLastUserPrompt returns the most recent user message's text,
// scanning from the end of the transcript.
func ExtractLastUserPrompt(lines []transcriptLine) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Type != "user" {
			continue
		}
		var msg userMessage
		if err := json.Unmarshal(lines[i].Message, &msg); err != nil {
			continue
		}
		switch content := msg.Content.(type) {
		case string:
			return content
		case []interface{}:
			for _, block := range content {
				m, ok := block.(map[string]interface{})
				if !ok {
					continue
				}
				if text, ok := m["text"].(string); ok && text != "" {
					return text
				}
			}
		}
	}
	return ""
}

// ExtractFirstUserPrompt returns the earliest user message's text,
// scanning from the start of the transcript. Used to derive a stable
// prompt hash (attribution.ComputePromptHash), which is keyed off the
// first message rather than the most recent one so a growing conversation
// keeps hashing to the same prompt.
func ExtractFirstUserPrompt(lines []transcriptLine) string {
	for _, line := range lines {
		if line.Type != "user" {
			continue
		}
		var msg userMessage
		if err := json.Unmarshal(line.Message, &msg); err != nil {
			continue
		}
		switch content := msg.Content.(type) {
		case string:
			return content
		case []interface{}:
			for _, block := range content {
				m, ok := block.(map[string]interface{})
				if !ok {
					continue
				}
				if text, ok := m["text"].(string); ok && text != "" {
					return text
				}
			}
		}
	}
	return ""
}

// ExtractModel returns the model identifier from the transcript's last
// assistant message carrying one, or "" if none is present.
func ExtractModel(lines []transcriptLine) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Type != "assistant" {
			continue
		}
		var m messageWithModel
		if err := json.Unmarshal(lines[i].Message, &m); err != nil {
			continue
		}
		if m.Model != "" {
			return m.Model
		}
	}
	return ""
}
