// Package telemetry implements a local, queued event log for CLI command
// and latency-budget-violation events. Network delivery is an explicitly
// out-of-scope external collaborator (spec.md §1's "telemetry upload");
// this package only queues events using the teacher's event shape
// (cmd/entire/cli/telemetry.PostHogClient.TrackCommand) so a collaborator
// can later drain the queue to whatever endpoint it configures.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/posthog/posthog-go"

	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// Event mirrors a posthog.Capture: the shape the teacher's TrackCommand
// already builds, queued here instead of enqueued to a live client.
type Event struct {
	DistinctID string                 `json:"distinct_id"`
	Name       string                 `json:"event"`
	Properties map[string]interface{} `json:"properties"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Client queues events in memory and appends them to a local JSONL file on
// Close, matching the teacher's "best-effort, never block the CLI"
// posture: a queueing failure is logged by the caller, never raised.
type Client struct {
	distinctID string
	path       string

	mu     sync.Mutex
	events []Event
}

// NewClient creates a queued telemetry client. distinctID is typically a
// machine ID from internal/credential's namespacing helper (the same role
// the teacher's machineid.ProtectedID result plays). path is the JSONL
// file events are appended to on Close; an empty path disables the file
// sink (events are still queryable via Events() for tests).
func NewClient(distinctID, path string) *Client {
	return &Client{distinctID: distinctID, path: path}
}

// TrackCommand records one CLI invocation, adapted from the teacher's
// PostHogClient.TrackCommand: command path, selected strategy/agent, and
// which flags (names only, never values, for privacy) were set.
func (c *Client) TrackCommand(commandPath, agent string, flagNames []string) {
	if agent == "" {
		agent = "auto"
	}
	props := map[string]interface{}{
		"command": commandPath,
		"agent":   agent,
	}
	if len(flagNames) > 0 {
		props["flags"] = flagNames
	}
	c.Enqueue(Event{
		DistinctID: c.distinctID,
		Name:       "cli_command_executed",
		Properties: props,
		Timestamp:  time.Now(),
	})
}

// TrackLatencyViolation records a wrapper-pipeline latency-budget miss
// (spec.md §4.7's "wrapper pipeline has a latency budget").
func (c *Client) TrackLatencyViolation(stage string, budget, actual time.Duration) {
	c.Enqueue(Event{
		DistinctID: c.distinctID,
		Name:       "latency_budget_exceeded",
		Properties: map[string]interface{}{
			"stage":         stage,
			"budget_ms":     budget.Milliseconds(),
			"actual_ms":     actual.Milliseconds(),
		},
		Timestamp: time.Now(),
	})
}

// Enqueue appends evt to the in-memory queue.
func (c *Client) Enqueue(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

// Events returns a snapshot of the queued events, for tests and for a
// collaborator that wants to drain them to a real sink.
func (c *Client) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Close appends all queued events to the configured JSONL file and clears
// the queue. A missing path is a no-op, matching the teacher's NoOpClient
// fallback when telemetry setup fails.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path == "" || len(c.events) == 0 {
		c.events = nil
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "creating telemetry dir", err)
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "opening telemetry log", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, evt := range c.events {
		if err := enc.Encode(evt); err != nil {
			return giterrors.Wrap(giterrors.KindExternalTool, "writing telemetry event", err)
		}
	}
	c.events = nil
	return nil
}

// toPostHogProperties converts evt's properties into a posthog.Properties
// value, kept for a future drain-to-real-client collaborator without
// forcing every caller of this package to depend on posthog-go directly.
func toPostHogProperties(evt Event) posthog.Properties {
	props := posthog.NewProperties()
	for k, v := range evt.Properties {
		props.Set(k, v)
	}
	return props
}
