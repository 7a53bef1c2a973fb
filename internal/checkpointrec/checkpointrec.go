// Package checkpointrec implements the Checkpoint Recorder (spec.md §4.1):
// given an edit event (human or AI), it diffs each touched file against
// its last-known content, attributes the change, and appends one
// Checkpoint record to the current working log. Grounded on the teacher's
// strategy.checkCanRewindWithWarning (go-git Worktree.Status() candidate-path
// enumeration) and strategy.manual_commit_attribution.go (line-diff +
// attribution overlay, generalized into internal/fusion.Overlay).
package checkpointrec

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/diffutil"
	"github.com/git-ai-oss/gitai/internal/fusion"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/paths"
	"github.com/git-ai-oss/gitai/internal/workinglog"
)

// Request is the recorder's input contract (spec.md §4.1's
// record_checkpoint signature).
type Request struct {
	Kind          attribution.CheckpointKind
	DefaultAuthor string
	AgentID       *attribution.AgentID
	AgentMetadata map[string]string
	Transcript    string

	// EditedPaths are repository-relative candidate paths. When nil, the
	// recorder falls back to enumerating the VCS worktree status.
	EditedPaths []string

	// DirtyFileSnapshot optionally supplies exact content for some paths
	// at edit time, avoiding a race with a worktree some host
	// environments can't read synchronously (spec.md §4.1 input
	// constraints).
	DirtyFileSnapshot map[string]string

	// IgnoreMatch reports whether a repository-relative path should be
	// excluded from checkpoint capture. Optional; nil means nothing is
	// ignored beyond the gitai infrastructure directory.
	IgnoreMatch func(path string) bool
}

// Result reports what the recorder did, matching spec.md §4.1's
// "(checkpoints_written, lines_added, lines_deleted)" contract.
type Result struct {
	CheckpointsWritten int
	LinesAdded         int
	LinesDeleted       int
}

// Record runs the full checkpoint-recording algorithm: acquire the
// working-log lock, diff every candidate path, append one Checkpoint
// record, update the prompt store, release the lock. Never returns an
// error for a condition the spec classifies as advisory: I/O failures are
// wrapped and returned so the wrapper can log-and-continue, never raised
// as a VCS-operation failure (spec.md §4.1 "checkpoints are advisory").
func Record(req Request) (Result, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return Result{}, err
	}

	baseHex, err := gitrepo.HeadHex(repo)
	if err != nil {
		return Result{}, err
	}
	base := baseHex
	if base == "" {
		base = workinglog.InitialBaseSentinel
	}

	log, err := workinglog.Open(base)
	if err != nil {
		return Result{}, err
	}
	if err := log.Lock().Acquire(lockTimeout); err != nil {
		return Result{}, err
	}
	defer log.Lock().Release()

	candPaths, err := candidatePaths(repo, req)
	if err != nil {
		return Result{}, err
	}

	prior, err := priorAttribution(log)
	if err != nil {
		return Result{}, err
	}

	cp := workinglog.NewCheckpoint(req.Kind, req.DefaultAuthor)
	cp.AgentID = req.AgentID
	cp.AgentMetadata = req.AgentMetadata
	cp.Transcript = req.Transcript

	author := humanOrPromptAuthor(req)
	cache := log.Cache()

	for _, path := range candPaths {
		cf, added, removed, err := captureFile(path, prior[path], req, cache, author)
		if err != nil {
			return Result{}, err
		}
		if cf == nil {
			continue
		}
		cp.Files = append(cp.Files, *cf)
		cp.DiffStat.LinesAdded += added
		cp.DiffStat.LinesRemoved += removed
	}

	if cp.IsEmpty() {
		return Result{}, nil
	}

	if err := log.Append(cp); err != nil {
		return Result{}, err
	}

	return Result{
		CheckpointsWritten: 1,
		LinesAdded:         cp.DiffStat.LinesAdded,
		LinesDeleted:       cp.DiffStat.LinesRemoved,
	}, nil
}

const lockTimeout = 5 * time.Second

func humanOrPromptAuthor(req Request) string {
	if req.Kind == attribution.KindHuman {
		return attribution.HumanAuthor
	}
	if req.AgentID == nil {
		return attribution.UnknownAuthor
	}
	return attribution.ComputePromptHash(req.AgentID.Tool, req.AgentID.ConversationID, req.Transcript)
}

// candidatePaths determines which paths to examine, per spec.md §4.1 step 2.
func candidatePaths(repo *git.Repository, req Request) ([]string, error) {
	var raw []string
	if len(req.EditedPaths) > 0 {
		raw = req.EditedPaths
	} else {
		wt, err := repo.Worktree()
		if err != nil {
			return nil, giterrors.Wrap(giterrors.KindExternalTool, "opening worktree", err)
		}
		status, err := wt.Status()
		if err != nil {
			return nil, giterrors.Wrap(giterrors.KindExternalTool, "reading worktree status", err)
		}
		for path, st := range status {
			if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
				continue
			}
			raw = append(raw, path)
		}
	}

	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if paths.IsInfrastructurePath(p) {
			continue
		}
		if req.IgnoreMatch != nil && req.IgnoreMatch(p) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// priorAttribution loads the working log's most-recently-known attribution
// per path, by folding every checkpoint's per-file Attributions in order
// (later checkpoints' entries for a path supersede earlier ones).
func priorAttribution(log *workinglog.Log) (map[string][]attribution.LineRange, error) {
	checkpoints, err := log.Checkpoints()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]attribution.LineRange)
	for _, cp := range checkpoints {
		for _, f := range cp.Files {
			out[f.Path] = f.Attributions
		}
	}
	return out, nil
}

// captureFile diffs one path's before/after content, producing the
// CheckpointFile record plus its line-add/remove counts. Returns a nil
// *attribution.CheckpointFile (with no error) when the file did not
// actually change, or is binary.
func captureFile(
	path string,
	prior []attribution.LineRange,
	req Request,
	cache *workinglog.ContentCache,
	author string,
) (*attribution.CheckpointFile, int, int, error) {
	before, err := contentBefore(path, req, cache)
	if err != nil {
		return nil, 0, 0, err
	}
	after, err := contentAfter(path, req)
	if err != nil {
		return nil, 0, 0, err
	}

	if before == after {
		return nil, 0, 0, nil
	}
	if diffutil.IsBinary(before) || diffutil.IsBinary(after) {
		return nil, 0, 0, nil
	}

	hunks := diffutil.LineDiff(before, after)
	stat := diffutil.LineStat(before, after)
	ranges := fusion.Overlay(prior, hunks, author)

	hashBefore, err := cache.Put(before)
	if err != nil {
		return nil, 0, 0, err
	}
	hashAfter, err := cache.Put(after)
	if err != nil {
		return nil, 0, 0, err
	}

	return &attribution.CheckpointFile{
		Path:              path,
		ContentHashBefore: hashBefore,
		ContentHashAfter:  hashAfter,
		Attributions:      ranges,
	}, stat.Added, stat.Removed, nil
}

// contentBefore resolves content_before(P) per spec.md §4.1 step 3's
// precedence: snapshot map, else HEAD tree, since a fresh working log has
// no prior checkpoint to fall back to (priorAttribution already folds in
// any prior checkpoint's post-content via the content cache when present).
func contentBefore(path string, req Request, cache *workinglog.ContentCache) (string, error) {
	if req.DirtyFileSnapshot != nil {
		if content, ok := req.DirtyFileSnapshot[path]; ok {
			return content, nil
		}
	}
	repo, err := gitrepo.Open()
	if err != nil {
		return "", err
	}
	commit, err := gitrepo.HeadCommit(repo)
	if err != nil {
		return "", err
	}
	if commit == nil {
		return "", nil
	}
	tree, err := commit.Tree()
	if err != nil {
		return "", giterrors.Wrap(giterrors.KindNotAGitRepo, "loading HEAD tree", err)
	}
	return gitrepo.FileContent(tree, path), nil
}

func contentAfter(path string, req Request) (string, error) {
	if req.DirtyFileSnapshot != nil {
		if content, ok := req.DirtyFileSnapshot[path]; ok {
			return content, nil
		}
	}
	root, err := paths.RepoRoot()
	if err != nil {
		return "", giterrors.Wrap(giterrors.KindExternalTool, "resolving repo root", err)
	}
	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // deletion: produces no new attributions
		}
		return "", giterrors.Wrap(giterrors.KindExternalTool, "reading file", err)
	}
	return string(data), nil
}
