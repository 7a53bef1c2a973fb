// Package gitshell wraps the git binary via os/exec for the handful of
// plumbing operations go-git's library mode does not provide: notes
// storage/merge, and the notes ref's own network fetch/push transport.
// Grounded on the teacher's paths.RepoRoot/GitCommonDir pattern of
// shelling out via exec.CommandContext for operations better left to the
// real git binary than reimplemented.
package gitshell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// DefaultNetworkTimeout bounds any git invocation that touches the
// network (fetch/push), per spec.md §5 "Sync operations carry a network
// timeout (default 30s)".
const DefaultNetworkTimeout = 30 * time.Second

// Run executes `git <args...>` in the current working directory and
// returns trimmed stdout. Stderr is captured into the returned error.
func Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", giterrors.Wrap(giterrors.KindExternalTool, "git "+strings.Join(args, " ")+": "+stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunWithTimeout is Run bounded by timeout, for network operations.
func RunWithTimeout(timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Run(ctx, args...)
}

// RunWithStdin is Run, but feeds stdin to the subprocess -- used for
// `git notes add -F -`, which reads the note body from standard input.
func RunWithStdin(ctx context.Context, stdin []byte, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", giterrors.Wrap(giterrors.KindExternalTool, "git "+strings.Join(args, " ")+": "+stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ExitCode extracts the subprocess exit code from an error returned by Run,
// or -1 if err did not wrap an *exec.ExitError.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	cause := err
	for cause != nil {
		if ee, ok := cause.(*exec.ExitError); ok {
			exitErr = ee
			break
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := cause.(unwrapper)
		if !ok {
			break
		}
		cause = u.Unwrap()
	}
	if exitErr == nil {
		return -1
	}
	return exitErr.ExitCode()
}
