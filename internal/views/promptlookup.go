package views

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
)

// defaultPromptLookupScanLimit bounds the prompt-lookup history walk, for
// the same reason as defaultBlameCommitScanLimit.
const defaultPromptLookupScanLimit = 5000

// PromptOccurrence is one commit whose authorship log references a prompt
// hash.
type PromptOccurrence struct {
	CommitSHA string
	Record    attribution.PromptRecord
}

// LookupPrompt implements spec.md §4.8's "Prompt lookup": given a prompt
// hash, locate the commit(s) whose authorship log references it, returning
// occurrences newest-first so the default "most recent" choice is
// occurrences[0].
func LookupPrompt(promptHash string) ([]PromptOccurrence, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return nil, err
	}
	head, err := gitrepo.HeadCommit(repo)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return nil, nil
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "walking history", err)
	}
	defer iter.Close()

	var out []PromptOccurrence
	count := 0
	var walkErr error
	_ = iter.ForEach(func(c *object.Commit) error {
		if count >= defaultPromptLookupScanLimit {
			return errStopWalk
		}
		count++
		log, err := notes.Read(c.Hash.String())
		if err != nil {
			walkErr = err
			return errStopWalk
		}
		if log == nil {
			return nil
		}
		if rec, ok := log.Prompts[promptHash]; ok {
			out = append(out, PromptOccurrence{CommitSHA: c.Hash.String(), Record: rec})
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}
