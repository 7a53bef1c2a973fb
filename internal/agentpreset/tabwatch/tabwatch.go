// Package tabwatch supplements the hook-driven agentpreset flow with
// detection for inline-completion ("tab") tools that edit files directly
// without ever firing a process-level hook. It watches a worktree for
// writes under a configured marker path and synthesizes an ai-tab
// checkpoint input, grounded on the teacher's agent.FileWatcher interface
// shape (GetWatchPaths/OnFileChange) and promoted from "file watching
// detects session activity" to "file watching detects an untracked AI
// edit" per the original Rust sources' tab-completion presets (not present
// in the distilled spec's happy path; see SPEC_FULL.md §4.1).
package tabwatch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/git-ai-oss/gitai/internal/agentpreset"
	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// Event is one detected tab-completion edit, ready to feed
// checkpointrec.Request via ToOutput.
type Event struct {
	Path      string
	Tool      string
	Timestamp time.Time
}

// ToOutput converts e into an agentpreset.Output with Kind ai-tab, matching
// spec.md §6.1's {kind: ai-tab} case.
func (e Event) ToOutput() *agentpreset.Output {
	return &agentpreset.Output{
		Kind: attribution.KindAITab,
		AgentID: attribution.AgentID{
			Tool:           e.Tool,
			ConversationID: e.Path + "@" + e.Timestamp.Format(time.RFC3339Nano),
		},
		EditedFilepaths: []string{e.Path},
	}
}

// Watcher watches a set of directories for writes and emits an Event per
// write, attributed to Tool.
type Watcher struct {
	Tool  string
	watch *fsnotify.Watcher
	out   chan Event
	done  chan struct{}
}

// New creates a Watcher that watches dirs for file-write events and
// attributes any detected edit to tool (e.g. "copilot", "cursor-tab").
func New(tool string, dirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "creating file watcher", err)
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, giterrors.Wrap(giterrors.KindExternalTool, "watching "+dir, err)
		}
	}
	w := &Watcher{
		Tool:  tool,
		watch: fw,
		out:   make(chan Event, 16),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Events returns the channel of detected edits.
func (w *Watcher) Events() <-chan Event { return w.out }

// Close stops the watcher and releases its underlying file descriptors.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watch.Close()
}

func (w *Watcher) run() {
	defer close(w.out)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watch.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.out <- Event{
				Path:      filepath.Clean(ev.Name),
				Tool:      w.Tool,
				Timestamp: time.Now(),
			}
		case _, ok := <-w.watch.Errors:
			if !ok {
				return
			}
			// Best-effort: a watch error doesn't interrupt the stream,
			// matching spec.md §4's "attribution must never prevent a
			// VCS operation from completing".
		}
	}
}
