// Package giterrors defines the typed error taxonomy shared across gitai's
// packages, plus accumulation helpers built on hashicorp/go-multierror.
package giterrors

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies an Error into one of the categories gitai's components
// can recover from, log differently, or surface distinctly to the CLI.
type Kind string

const (
	// KindNotAGitRepo means the current directory is not inside a git
	// working tree.
	KindNotAGitRepo Kind = "not_a_git_repo"
	// KindCorruptLog means an authorship log, working log, or rewrite
	// event log failed to parse.
	KindCorruptLog Kind = "corrupt_log"
	// KindLockContention means the working-log lock could not be acquired.
	KindLockContention Kind = "lock_contention"
	// KindMissingPrompt means a checkpoint or attribution referenced a
	// prompt hash absent from the prompt store.
	KindMissingPrompt Kind = "missing_prompt"
	// KindSyncConflict means a notes push was rejected by a concurrent
	// update and could not be resolved by the merge-union policy.
	KindSyncConflict Kind = "sync_conflict"
	// KindUnsupportedRewrite means the history-rewrite translator does not
	// recognize the rewrite shape it was asked to translate.
	KindUnsupportedRewrite Kind = "unsupported_rewrite"
	// KindExternalTool means an external process (git, a credential
	// helper, an agent CLI) failed or returned unexpected output.
	KindExternalTool Kind = "external_tool"
)

// Error is a gitai error tagged with a Kind so callers can branch on
// failure category without string matching.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New creates a kind-tagged error with a message.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Wrap tags an existing error with a kind, preserving it for errors.Is/As.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's category.
func (e *Error) Kind() Kind { return e.kind }

// Is reports whether err is (or wraps) a gitai Error of the given kind.
func Is(err error, kind Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.kind == kind
	}
	return false
}

// Accumulator collects multiple non-fatal errors, e.g. while processing a
// batch of checkpoints where one bad record should not abort the rest.
type Accumulator struct {
	merr *multierror.Error
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends err to the accumulator. Nil errors are ignored.
func (a *Accumulator) Add(err error) {
	if err == nil {
		return
	}
	a.merr = multierror.Append(a.merr, err)
}

// ErrorOrNil returns the accumulated error, or nil if none were added.
func (a *Accumulator) ErrorOrNil() error {
	return a.merr.ErrorOrNil()
}

// Len returns the number of accumulated errors.
func (a *Accumulator) Len() int {
	if a.merr == nil {
		return 0
	}
	return len(a.merr.Errors)
}
