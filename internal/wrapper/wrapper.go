// Package wrapper implements the command-wrapper pipeline (spec.md §4.7): a
// drop-in replacement for the version-control CLI that resolves aliases,
// dispatches pre/post-command hooks, re-execs the real `git` binary with
// stdio forwarded through a pseudo-terminal, and enforces a latency budget
// on the attribution work it layers on top. Grounded on the teacher's
// practice of shelling out to the real git binary for anything go-git's
// library mode doesn't cover (`git_operations.go`'s getGitConfigValue),
// generalized here from "shell out for one config value" to "shell out for
// the whole user command."
package wrapper

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitshell"
	"github.com/git-ai-oss/gitai/internal/logging"
)

// CommandClass groups git subcommands by which post-command hook and
// latency ceiling apply to them (spec.md §4.7 steps 2 and 5).
type CommandClass string

const (
	ClassCommit     CommandClass = "commit"
	ClassRebase     CommandClass = "rebase"
	ClassCherryPick CommandClass = "cherry-pick"
	ClassReset      CommandClass = "reset"
	ClassMerge      CommandClass = "merge"
	ClassFetch      CommandClass = "fetch"
	ClassPull       CommandClass = "pull"
	ClassPush       CommandClass = "push"
	ClassClone      CommandClass = "clone"
	ClassOther      CommandClass = "other"
)

// ClassifyCommand maps a git subcommand name to its CommandClass.
func ClassifyCommand(subcommand string) CommandClass {
	switch subcommand {
	case "commit":
		return ClassCommit
	case "rebase":
		return ClassRebase
	case "cherry-pick":
		return ClassCherryPick
	case "reset":
		return ClassReset
	case "merge":
		return ClassMerge
	case "fetch":
		return ClassFetch
	case "pull":
		return ClassPull
	case "push":
		return ClassPush
	case "clone":
		return ClassClone
	default:
		return ClassOther
	}
}

// Pipeline holds the per-invocation state the wrapper needs to dispatch
// hooks and account for latency.
type Pipeline struct {
	ToolVersion string
	RemoteName  string
}

// New returns a Pipeline with RemoteName defaulted to "origin".
func New(toolVersion string) *Pipeline {
	return &Pipeline{ToolVersion: toolVersion, RemoteName: "origin"}
}

// Run executes one wrapper invocation: alias resolution, pre-command hook,
// the real git subprocess, post-command hook, and latency accounting. It
// returns the process exit code to propagate to the caller's os.Exit -- per
// spec.md §5's global failure policy, hook errors are logged here and never
// turn into a non-zero exit unless the underlying git command itself failed.
func (p *Pipeline) Run(ctx context.Context, args []string) int {
	aliases, err := loadAliases()
	if err != nil {
		logging.Debug(ctx, "wrapper: failed to load git aliases", "error", err.Error())
		aliases = nil
	}

	resolved, shellAlias := ResolveAlias(args, aliases)
	if len(resolved) == 0 || shellAlias {
		return p.passThrough(ctx, args)
	}

	subcommand := resolved[0]
	class := ClassifyCommand(subcommand)

	overheadStart := time.Now()
	var preHeadHex string
	if class == ClassCommit {
		preHeadHex = p.preCommit(ctx)
	}
	preCommandOverhead := time.Since(overheadStart)

	subprocessStart := time.Now()
	exitCode, err := p.exec(ctx, resolved)
	subprocessDur := time.Since(subprocessStart)
	if err != nil {
		logging.Debug(ctx, "wrapper: subprocess invocation failed", "error", err.Error())
	}

	postStart := time.Now()
	if exitCode == 0 {
		p.postCommand(ctx, class, resolved, preHeadHex)
	}
	postCommandOverhead := time.Since(postStart)

	overhead := preCommandOverhead + postCommandOverhead
	if ExceedsBudget(class, subprocessDur, overhead) {
		logging.Warn(ctx, "wrapper: latency budget exceeded",
			slog.String("stage", string(class)),
			slog.Duration("subprocess", subprocessDur),
			slog.Duration("overhead", overhead))
	}

	return exitCode
}

// passThrough runs args through git verbatim, with no hook dispatch --
// used for shell aliases and alias-expansion cycles, which spec.md §4.7
// step 1 says must fall through with "no hook work."
func (p *Pipeline) passThrough(ctx context.Context, args []string) int {
	exitCode, err := p.exec(ctx, args)
	if err != nil {
		logging.Debug(ctx, "wrapper: pass-through subprocess failed", "error", err.Error())
	}
	return exitCode
}

// exec invokes the real git binary with args, forwarding stdio through a
// pseudo-terminal when the wrapper's own stdin is a terminal, so
// interactive commands (editor-driven commits, interactive rebase) behave
// identically to running git directly.
func (p *Pipeline) exec(ctx context.Context, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, "git", args...)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		return exitCodeOf(err), wrapExecErr(args, err)
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return -1, giterrors.Wrap(giterrors.KindExternalTool, "allocating pty", err)
	}
	defer ptmx.Close()

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	defer signal.Stop(resize)
	go func() {
		for range resize {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	resize <- syscall.SIGWINCH // prime the initial size

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err == nil {
		defer func() { _ = term.Restore(int(os.Stdin.Fd()), oldState) }()
	}

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, _ = io.Copy(os.Stdout, ptmx)

	err = cmd.Wait()
	return exitCodeOf(err), wrapExecErr(args, err)
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if as(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func as(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}

func wrapExecErr(args []string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return nil // a non-zero exit from git itself is not a wrapper error
	}
	return giterrors.Wrap(giterrors.KindExternalTool, "git "+strings.Join(args, " "), err)
}

// loadAliases shells out to `git config --get-regexp ^alias\.`, matching
// the teacher's getGitConfigValue idiom of reading config through the real
// git binary rather than parsing .gitconfig directly.
func loadAliases() (map[string]string, error) {
	out, err := gitshell.Run(context.Background(), "config", "--get-regexp", `^alias\.`)
	if err != nil {
		if gitshell.ExitCode(err) == 1 {
			return nil, nil // no aliases configured
		}
		return nil, err
	}
	return ParseAliases(out), nil
}
