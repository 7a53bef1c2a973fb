package views

import (
	"sort"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/serialize"
)

// touchedWorkers bounds the AI-touched-file traversal's concurrent note
// reads, matching spec.md §5's "small asynchronous tasks are permitted for
// I/O fan-out" -- a handful of goroutines, not one per commit.
const touchedWorkers = 8

// TouchedFile is one commit-and-path pair where an authorship note
// attests at least one AI-authored line.
type TouchedFile struct {
	CommitSHA string
	Path      string
}

// AITouchedFiles walks every commit reachable from toHex back to
// (exclusive of) fromHex and returns the (commit, path) pairs whose
// authorship note attests AI lines, using the partial "attestation
// section only" parse (internal/serialize.AttestedPaths) so a commit with
// no AI edits costs one failed note lookup, not a full metadata-JSON
// decode (spec.md §4.3, §4.8).
func AITouchedFiles(fromHex, toHex string) ([]TouchedFile, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return nil, err
	}
	hexes, err := commitRange(repo, fromHex, toHex)
	if err != nil {
		return nil, err
	}

	type jobResult struct {
		commitSHA string
		paths     []string
		err       error
	}

	jobs := make(chan string)
	results := make(chan jobResult)
	var wg sync.WaitGroup
	for i := 0; i < touchedWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for hex := range jobs {
				data, err := notes.ReadRaw(hex)
				if err != nil {
					results <- jobResult{commitSHA: hex, err: err}
					continue
				}
				if data == nil {
					results <- jobResult{commitSHA: hex}
					continue
				}
				paths, err := serialize.AttestedPaths(data)
				if err != nil {
					results <- jobResult{commitSHA: hex, err: err}
					continue
				}
				results <- jobResult{commitSHA: hex, paths: paths}
			}
		}()
	}
	go func() {
		for _, hex := range hexes {
			jobs <- hex
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var out []TouchedFile
	var firstErr error
	for r := range results {
		if r.err != nil && firstErr == nil {
			firstErr = giterrors.Wrap(giterrors.KindExternalTool, "reading authorship note for "+r.commitSHA, r.err)
			continue
		}
		for _, p := range r.paths {
			out = append(out, TouchedFile{CommitSHA: r.commitSHA, Path: p})
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CommitSHA != out[j].CommitSHA {
			return out[i].CommitSHA < out[j].CommitSHA
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// commitRange lists commit hexes reachable from toHex back to (exclusive
// of) fromHex, oldest relationship unspecified -- callers that need a
// particular order sort afterward.
func commitRange(repo *git.Repository, fromHex, toHex string) ([]string, error) {
	iter, err := repo.Log(&git.LogOptions{From: plumbing.NewHash(toHex), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "walking range", err)
	}
	defer iter.Close()

	fromHash := plumbing.NewHash(fromHex)
	var hexes []string
	_ = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == fromHash {
			return errStopWalk
		}
		hexes = append(hexes, c.Hash.String())
		return nil
	})
	return hexes, nil
}
