// Package notes implements the Sync Protocol (spec.md §4.6): storing each
// commit's authorship log as the content of a sidecar note under
// refs/notes/ai, and fetching/pushing that ref with merge-union semantics
// so two peers attaching different notes to the same commit never clobber
// each other. Grounded on the teacher's use of exec.CommandContext for git
// plumbing it is simpler to shell out for than reimplement (paths.RepoRoot),
// generalized here to the notes subcommands go-git's library mode has no
// equivalent for.
package notes

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitshell"
	"github.com/git-ai-oss/gitai/internal/paths"
	"github.com/git-ai-oss/gitai/internal/serialize"
)

func rootCtx() context.Context { return context.Background() }

// ErrNotFound is returned by Fetch when the remote has no notes ref at all
// (spec.md §8 invariant 5).
var ErrNotFound = giterrors.New(giterrors.KindSyncConflict, "remote has no authorship notes")

// Attach stores log as the content of a sidecar note on commitHex under
// refs/notes/ai, overwriting any existing note for that commit.
func Attach(commitHex string, log *attribution.AuthorshipLog) error {
	return attachToRef(paths.NotesRef, commitHex, log)
}

// Read loads the authorship log attached to commitHex, or nil if none.
func Read(commitHex string) (*attribution.AuthorshipLog, error) {
	data, err := ReadRaw(commitHex)
	if err != nil || data == nil {
		return nil, err
	}
	return serialize.Unmarshal(data)
}

// ReadRaw loads the raw serialized note content attached to commitHex, or
// nil if none, without parsing it. Used by the AI-touched-file traversal's
// partial-parse fast path (internal/serialize.AttestedPaths), which only
// needs the attestation section's file paths (spec.md §4.3, §4.8).
func ReadRaw(commitHex string) ([]byte, error) {
	out, err := gitshell.Run(rootCtx(), "notes", "--ref", paths.NotesRef, "show", commitHex)
	if err != nil {
		if gitshell.ExitCode(err) == 1 {
			return nil, nil // no note for this commit
		}
		return nil, err
	}
	return []byte(out), nil
}

// Fetch implements spec.md §4.6's fetch algorithm: probe, fetch into the
// per-remote tracking ref, then merge-union with any existing local ref.
func Fetch(remote string) error {
	if _, err := gitshell.RunWithTimeout(gitshell.DefaultNetworkTimeout, "ls-remote", remote, paths.NotesRef); err != nil {
		return ErrNotFound
	}

	trackingRef := paths.NotesRemoteRefFmt(remote)
	refspec := "+" + paths.NotesRef + ":" + trackingRef
	if _, err := gitshell.RunWithTimeout(gitshell.DefaultNetworkTimeout, "fetch", remote, refspec); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "fetching authorship notes", err)
	}

	hasLocal, err := refExists(paths.NotesRef)
	if err != nil {
		return err
	}
	if !hasLocal {
		_, err := gitshell.Run(rootCtx(), "update-ref", paths.NotesRef, trackingRef)
		return err
	}
	return mergeUnion(paths.NotesRef, trackingRef)
}

// Push implements spec.md §4.6's push algorithm: pre-push fetch+merge-union
// to absorb peer notes, then a non-forced push (fast-forwardable because
// the union already happened).
func Push(remote string) error {
	if err := Fetch(remote); err != nil && err != ErrNotFound {
		return err
	}
	refspec := paths.NotesRef + ":" + paths.NotesRef
	if _, err := gitshell.RunWithTimeout(gitshell.DefaultNetworkTimeout, "push", remote, refspec); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "pushing authorship notes", err)
	}
	return nil
}

func refExists(ref string) (bool, error) {
	_, err := gitshell.Run(rootCtx(), "show-ref", "--verify", "--quiet", ref)
	if err != nil {
		if gitshell.ExitCode(err) == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// mergeUnion unions every note object attached under src into dst
// (spec.md §4.6 "merge-union"): commits noted only on one side are copied
// as-is; commits noted on both sides have their authorship logs unioned
// file-by-file, with a schema-version tiebreak when the same commit was
// independently re-attached on both sides (spec.md §9 open question (a)
// and §5 "first writer wins unless the incoming record is strictly newer
// by schema version").
func mergeUnion(dst, src string) error {
	dstCommits, err := notedCommits(dst)
	if err != nil {
		return err
	}
	srcCommits, err := notedCommits(src)
	if err != nil {
		return err
	}

	for _, commitHex := range srcCommits {
		srcLog, err := readRef(src, commitHex)
		if err != nil || srcLog == nil {
			continue
		}
		if !containsString(dstCommits, commitHex) {
			if err := attachToRef(dst, commitHex, srcLog); err != nil {
				return err
			}
			continue
		}
		dstLog, err := readRef(dst, commitHex)
		if err != nil || dstLog == nil {
			continue
		}
		merged := unionLogs(dstLog, srcLog)
		if err := attachToRef(dst, commitHex, merged); err != nil {
			return err
		}
	}
	return nil
}

// unionLogs merges two authorship logs attached to the same commit. When
// schema versions differ, the strictly newer one wins outright (spec.md
// §5); when equal, attestations are unioned file-by-file (first writer's
// ranges win on overlap, since a later "writer" in this context is a sync
// peer, not a newer edit).
func unionLogs(first, second *attribution.AuthorshipLog) *attribution.AuthorshipLog {
	v1, err1 := semver.NewVersion(first.SchemaVersion)
	v2, err2 := semver.NewVersion(second.SchemaVersion)
	if err1 == nil && err2 == nil {
		if v2.GreaterThan(v1) {
			return second
		}
		if v1.GreaterThan(v2) {
			return first
		}
	}

	byPath := make(map[string][]attribution.LineRange)
	for _, fa := range first.Attestations {
		byPath[fa.Path] = append([]attribution.LineRange(nil), fa.Ranges...)
	}
	for _, fa := range second.Attestations {
		if _, ok := byPath[fa.Path]; !ok {
			byPath[fa.Path] = append([]attribution.LineRange(nil), fa.Ranges...)
		}
	}

	out := attribution.NewAuthorshipLog(first.BaseCommitSHA, first.ToolVersion)
	for path, ranges := range byPath {
		out.Attestations = append(out.Attestations, attribution.FileAttribution{
			Path:   path,
			Ranges: attribution.Canonicalize(ranges),
		})
	}
	for hash, rec := range first.Prompts {
		out.Prompts[hash] = rec
	}
	for hash, rec := range second.Prompts {
		if _, ok := out.Prompts[hash]; !ok {
			out.Prompts[hash] = rec
		}
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func notedCommits(ref string) ([]string, error) {
	out, err := gitshell.Run(rootCtx(), "notes", "--ref", ref, "list")
	if err != nil {
		if gitshell.ExitCode(err) != 0 {
			return nil, nil
		}
		return nil, err
	}
	var commits []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			commits = append(commits, fields[1])
		}
	}
	return commits, nil
}

func readRef(ref, commitHex string) (*attribution.AuthorshipLog, error) {
	out, err := gitshell.Run(rootCtx(), "notes", "--ref", ref, "show", commitHex)
	if err != nil {
		if gitshell.ExitCode(err) == 1 {
			return nil, nil
		}
		return nil, err
	}
	return serialize.Unmarshal([]byte(out))
}

func attachToRef(ref, commitHex string, log *attribution.AuthorshipLog) error {
	data, err := serialize.Marshal(log)
	if err != nil {
		return err
	}
	_, err = gitshell.RunWithStdin(rootCtx(), data, "notes", "--ref", ref, "add", "-f", "-F", "-", commitHex)
	return err
}
