// Package workinglog implements the per-base-commit scratch area from
// spec.md §2.1/§3: an append-only checkpoint log, a content cache for
// pre-edit snapshots, the INITIAL carry-over file, and the advisory
// exclusive lock a wrapper invocation holds while mutating any of them.
// Grounded on the teacher's checkpoint.Store shape (append-only JSONL) and
// its single-writer ShadowBranchConflictError detection for the lock.
package workinglog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/jsonutil"
	"github.com/git-ai-oss/gitai/internal/paths"
	"github.com/git-ai-oss/gitai/internal/validation"
)

// InitialBaseSentinel names the working log used before the repository has
// any commits (spec.md §3 "a sentinel 'initial' if the repo has no commits").
const InitialBaseSentinel = "initial"

// Log is a handle onto one base commit's working log directory.
type Log struct {
	dir  string
	lock *Lock
}

// Open returns a handle onto the working log for baseCommitHex (or
// InitialBaseSentinel), creating its directory if necessary. It does not
// acquire the lock; call Lock() around mutating operations.
func Open(baseCommitHex string) (*Log, error) {
	if baseCommitHex != InitialBaseSentinel {
		if err := validation.ValidateCommitHex(baseCommitHex); err != nil {
			return nil, giterrors.Wrap(giterrors.KindExternalTool, "invalid base commit", err)
		}
	}
	dir, err := paths.WorkingLogDir(baseCommitHex)
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "opening working log directory", err)
	}
	state, err := paths.GitaiStateDir()
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "resolving gitai state dir", err)
	}
	return &Log{dir: dir, lock: newLock(filepath.Join(state, paths.LockFile))}, nil
}

// OpenDir returns a handle onto the working log rooted at dir directly,
// bypassing repository discovery. Used by callers that already manage
// their own storage root (tests, and internal/rewrite's reset
// reconstruction when operating against an explicit working-log
// directory rather than the ambient repository).
func OpenDir(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "creating working log directory", err)
	}
	return &Log{dir: dir, lock: newLock(filepath.Join(dir, paths.LockFile))}, nil
}

// Append writes one Checkpoint record to checkpoints.jsonl. Returns
// without writing (and without error) if cp is empty, per spec.md §8
// invariant 4 ("a checkpoint that produces no line changes appends no
// record").
func (l *Log) Append(cp attribution.Checkpoint) error {
	if cp.IsEmpty() {
		return nil
	}
	line, err := jsonutil.MarshalCompact(cp)
	if err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "encoding checkpoint", err)
	}

	f, err := os.OpenFile(l.checkpointsPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "opening checkpoints log", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "appending checkpoint", err)
	}
	return nil
}

// Checkpoints reads all checkpoints recorded so far, in append order. A
// truncated trailing line (from a crash mid-write) is silently skipped,
// since the log is append-only and a partial final record carries no
// useful information (spec.md §5 "partial final record is skipped on replay").
func (l *Log) Checkpoints() ([]attribution.Checkpoint, error) {
	f, err := os.Open(l.checkpointsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "opening checkpoints log", err)
	}
	defer f.Close()

	var out []attribution.Checkpoint
	acc := giterrors.NewAccumulator()
	err = jsonutil.EachLine(f, func(line []byte) error {
		var cp attribution.Checkpoint
		if jerr := json.Unmarshal(line, &cp); jerr != nil {
			acc.Add(jerr)
			return nil // tolerate one bad line; keep scanning
		}
		out = append(out, cp)
		return nil
	})
	if err != nil {
		return out, giterrors.Wrap(giterrors.KindCorruptLog, "scanning checkpoints log", err)
	}
	return out, nil
}

// Initial reads the INITIAL carry-over file, if any.
func (l *Log) Initial() (*attribution.InitialAttributions, error) {
	data, err := os.ReadFile(l.initialPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "reading INITIAL", err)
	}
	var init attribution.InitialAttributions
	if err := json.Unmarshal(data, &init); err != nil {
		return nil, giterrors.Wrap(giterrors.KindCorruptLog, "parsing INITIAL", err)
	}
	return &init, nil
}

// WriteInitial persists the INITIAL carry-over file, overwriting any
// previous content.
func (l *Log) WriteInitial(init *attribution.InitialAttributions) error {
	data, err := jsonutil.MarshalIndentWithNewline(init, "", "  ")
	if err != nil {
		return giterrors.Wrap(giterrors.KindCorruptLog, "encoding INITIAL", err)
	}
	if err := os.WriteFile(l.initialPath(), data, 0o600); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "writing INITIAL", err)
	}
	return nil
}

// Destroy removes the working log directory entirely. Called once a new
// commit has been produced against this base, per spec.md §3 lifecycle
// ("destroyed when a new commit is produced against base C").
func (l *Log) Destroy() error {
	if err := os.RemoveAll(l.dir); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "destroying working log", err)
	}
	return nil
}

// Lock returns the advisory exclusive lock guarding this working log.
func (l *Log) Lock() *Lock { return l.lock }

func (l *Log) checkpointsPath() string { return filepath.Join(l.dir, paths.CheckpointsFile) }
func (l *Log) initialPath() string     { return filepath.Join(l.dir, paths.InitialFile) }

// ContentCache implements fusion.ContentLookup backed by a flat
// path-agnostic map of content-hash → content, persisted alongside the
// working log so checkpoints can be diffed against each other without
// re-reading the worktree. It is populated at checkpoint-capture time
// (internal/checkpointrec) and consulted at fusion time.
type ContentCache struct {
	dir string
}

// Cache returns the content cache for this working log.
func (l *Log) Cache() *ContentCache { return &ContentCache{dir: filepath.Join(l.dir, "content")} }

// Put stores content under its own content hash, returning the hash.
// Idempotent: storing the same content twice is a no-op on the second
// call.
func (c *ContentCache) Put(content string) (string, error) {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return "", giterrors.Wrap(giterrors.KindExternalTool, "creating content cache dir", err)
	}
	hash := attribution.ContentHash([]byte(content))
	p := filepath.Join(c.dir, hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		return "", giterrors.Wrap(giterrors.KindExternalTool, "writing cached content", err)
	}
	return hash, nil
}

// Content implements fusion.ContentLookup.
func (c *ContentCache) Content(hash string) (string, bool) {
	if hash == "" {
		return "", true // empty-before sentinel for new files
	}
	data, err := os.ReadFile(filepath.Join(c.dir, hash))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Now is overridable in tests; production code always uses time.Now.
var Now = time.Now

// NewCheckpoint is a small constructor helper matching the Checkpoint
// Recorder's contract in spec.md §4.1, stamping the current schema version
// and timestamp.
func NewCheckpoint(kind attribution.CheckpointKind, defaultAuthor string) attribution.Checkpoint {
	return attribution.Checkpoint{
		Kind:          kind,
		Timestamp:     Now(),
		DefaultAuthor: defaultAuthor,
		SchemaVersion: attribution.SchemaVersion,
	}
}
