// Package paths centralizes the on-disk and in-repo layout gitai uses:
// the persisted file layout under .git/gitai, settings file locations, and
// git ref names. Grounded on the teacher's paths package, which plays the
// same role for its own .entire layout.
package paths

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Settings file locations, relative to the repository root.
const (
	SettingsFile      = ".gitai/settings.json"
	SettingsLocalFile = ".gitai/settings.local.json"
)

// GitaiDir is the namespace gitai uses inside the repository's .git
// directory (not the worktree) for state that should never be committed
// and never needs to survive a clone.
const GitaiDir = "gitai"

// Working-log layout, relative to the repository's common .git directory.
const (
	WorkingLogsDir   = "working-logs"
	CheckpointsFile  = "checkpoints.jsonl"
	InitialFile      = "INITIAL"
	RewriteEventsLog = "rewrite-events.jsonl"
	LockFile         = "lock"
	LogsDir          = "logs"
	PromptStoreFile  = "prompts.jsonl"
)

// infrastructureDir is the repo-relative directory prefix gitai's own
// settings live under; never a candidate path for checkpoint recording.
const infrastructureDir = ".gitai"

// IsInfrastructurePath reports whether path falls under gitai's own
// settings directory and should never be treated as an edited source file.
func IsInfrastructurePath(path string) bool {
	return path == infrastructureDir || strings.HasPrefix(path, infrastructureDir+"/")
}

// NotesRef is the git-notes ref gitai uses as its sync sidecar.
const NotesRef = "refs/notes/ai"

// NotesRemoteRefFmt formats the remote-tracking ref for a given remote name.
func NotesRemoteRefFmt(remote string) string {
	return fmt.Sprintf("refs/remotes/%s/ai", remote)
}

var (
	repoRootMu       sync.RWMutex
	repoRootCache    string
	repoRootCacheDir string

	gitCommonDirMu    sync.RWMutex
	gitCommonDirCache string
	gitCommonDirDir   string
)

// RepoRoot returns the git repository's top-level working directory,
// using 'git rev-parse --show-toplevel'. Works from any subdirectory.
// The result is cached per working directory.
func RepoRoot() (string, error) {
	cwd, _ := os.Getwd()

	repoRootMu.RLock()
	if repoRootCache != "" && repoRootCacheDir == cwd {
		cached := repoRootCache
		repoRootMu.RUnlock()
		return cached, nil
	}
	repoRootMu.RUnlock()

	out, err := exec.CommandContext(context.Background(), "git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	root := strings.TrimSpace(string(out))

	repoRootMu.Lock()
	repoRootCache = root
	repoRootCacheDir = cwd
	repoRootMu.Unlock()
	return root, nil
}

// GitCommonDir returns the repository's common .git directory (shared
// across worktrees), via 'git rev-parse --git-common-dir'. This is where
// gitai's persisted state in .git/gitai lives, so that every worktree of
// the same repository shares one working-log and lock namespace.
func GitCommonDir() (string, error) {
	cwd, _ := os.Getwd()

	gitCommonDirMu.RLock()
	if gitCommonDirCache != "" && gitCommonDirDir == cwd {
		cached := gitCommonDirCache
		gitCommonDirMu.RUnlock()
		return cached, nil
	}
	gitCommonDirMu.RUnlock()

	out, err := exec.CommandContext(context.Background(), "git", "rev-parse", "--git-common-dir").Output()
	if err != nil {
		return "", fmt.Errorf("resolving git common directory: %w", err)
	}
	dir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err == nil {
			dir = abs
		}
	}

	gitCommonDirMu.Lock()
	gitCommonDirCache = dir
	gitCommonDirDir = cwd
	gitCommonDirMu.Unlock()
	return dir, nil
}

// GitaiStateDir returns <git-common-dir>/gitai, creating it if necessary.
func GitaiStateDir() (string, error) {
	common, err := GitCommonDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(common, GitaiDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating gitai state directory: %w", err)
	}
	return dir, nil
}

// WorkingLogDir returns the working-log directory for a given base commit
// hash (hex), creating it if necessary: <git-common-dir>/gitai/working-logs/<base>.
func WorkingLogDir(baseCommitHex string) (string, error) {
	state, err := GitaiStateDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(state, WorkingLogsDir, baseCommitHex)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating working log directory: %w", err)
	}
	return dir, nil
}

// AbsPath resolves a repository-root-relative path to an absolute path,
// working correctly from any subdirectory within the repository.
func AbsPath(relPath string) (string, error) {
	root, err := RepoRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, relPath), nil
}

// ResetCache clears the cached repo root and common dir. Exposed for tests
// that change directories or operate against throwaway repositories.
func ResetCache() {
	repoRootMu.Lock()
	repoRootCache = ""
	repoRootCacheDir = ""
	repoRootMu.Unlock()

	gitCommonDirMu.Lock()
	gitCommonDirCache = ""
	gitCommonDirDir = ""
	gitCommonDirMu.Unlock()
}
