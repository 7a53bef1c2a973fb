package views

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/paths"
)

// testRepo builds:
//   commit1: file.txt = "human1\n"                              (no note)
//   commit2: file.txt = "human1\nai1\nai2\n"                     (promptA attests lines 2-3)
//   commit3: file.txt = "human1\nai1\nhuman3\n"                  (promptA attests line 2 only;
//                                                                  line 3 was overwritten by a human)
// and returns their hex SHAs in order.
func testRepo(t *testing.T) (dir string, commits [3]string) {
	t.Helper()
	dir = t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	sig := &object.Signature{Name: "t", Email: "t@t.com"}

	write := func(content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte(content), 0o644))
		_, err := wt.Add("file.txt")
		require.NoError(t, err)
	}

	write("human1\n")
	h1, err := wt.Commit("c1", &git.CommitOptions{Author: sig})
	require.NoError(t, err)
	commits[0] = h1.String()

	write("human1\nai1\nai2\n")
	h2, err := wt.Commit("c2", &git.CommitOptions{Author: sig})
	require.NoError(t, err)
	commits[1] = h2.String()

	write("human1\nai1\nhuman3\n")
	h3, err := wt.Commit("c3", &git.CommitOptions{Author: sig})
	require.NoError(t, err)
	commits[2] = h3.String()

	t.Chdir(dir)
	paths.ResetCache()

	log2 := attribution.NewAuthorshipLog(commits[0], "1.0.0")
	log2.Attestations = []attribution.FileAttribution{
		{Path: "file.txt", Ranges: []attribution.LineRange{{Start: 2, End: 3, Author: "promptA"}}},
	}
	log2.Prompts["promptA"] = attribution.PromptRecord{
		PromptHash:      "promptA",
		FirstMessage:    "write ai lines",
		AgentID:         attribution.AgentID{Tool: "claude-code", Model: "sonnet"},
		TotalLinesAdded: 2,
		AcceptedLines:   2,
	}
	require.NoError(t, notes.Attach(commits[1], log2))

	log3 := attribution.NewAuthorshipLog(commits[1], "1.0.0")
	log3.Attestations = []attribution.FileAttribution{
		{Path: "file.txt", Ranges: []attribution.LineRange{{Start: 2, End: 2, Author: "promptA"}}},
	}
	log3.Prompts["promptA"] = attribution.PromptRecord{
		PromptHash:      "promptA",
		FirstMessage:    "write ai lines",
		AgentID:         attribution.AgentID{Tool: "claude-code", Model: "sonnet"},
		TotalLinesAdded: 2,
		AcceptedLines:   1,
		OverriddenLines: 1,
		TotalLinesDeleted: 1,
	}
	require.NoError(t, notes.Attach(commits[2], log3))

	return dir, commits
}

func TestBlameProjectsAcrossCommits(t *testing.T) {
	testRepo(t)

	res, err := Blame("file.txt", BlameOptions{})
	require.NoError(t, err)
	require.Len(t, res.Lines, 3)
	assert.Equal(t, attribution.HumanAuthor, res.Lines[0].Author)
	assert.Equal(t, "promptA", res.Lines[1].Author)
	assert.Equal(t, attribution.HumanAuthor, res.Lines[2].Author)
}

func TestStatsReadsAuthorshipNote(t *testing.T) {
	_, commits := testRepo(t)

	stats, err := Stats(commits[2])
	require.NoError(t, err)
	assert.Equal(t, 1, stats.HumanAdditions) // human3 replaced ai2
	assert.Equal(t, 1, stats.AIAccepted)     // only line 2 remains AI
	require.Len(t, stats.ByToolModel, 1)
	assert.Equal(t, "claude-code", stats.ByToolModel[0].Tool)
}

func TestStatsNoNoteIsAllHuman(t *testing.T) {
	_, commits := testRepo(t)

	stats, err := Stats(commits[0])
	require.NoError(t, err)
	assert.Equal(t, 1, stats.HumanAdditions)
	assert.Equal(t, 0, stats.AIAccepted)
}

func TestRangeStatsSumsAcrossCommits(t *testing.T) {
	_, commits := testRepo(t)

	rs, err := RangeStats(commits[0], commits[2], RangeStatsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, rs.CommitCount)
	assert.Equal(t, 1, rs.Total.HumanAdditions)
	assert.Equal(t, 3, rs.Total.AIAccepted)
}

func TestAITouchedFilesFindsAttestedPaths(t *testing.T) {
	_, commits := testRepo(t)

	touched, err := AITouchedFiles(commits[0], commits[2])
	require.NoError(t, err)
	require.Len(t, touched, 2)
	for _, tf := range touched {
		assert.Equal(t, "file.txt", tf.Path)
	}
}

func TestLookupPromptFindsNewestFirst(t *testing.T) {
	_, commits := testRepo(t)

	occs, err := LookupPrompt("promptA")
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, commits[2], occs[0].CommitSHA)
	assert.Equal(t, commits[1], occs[1].CommitSHA)
}

func TestRedactionPolicyExcludeMatchEmptiesMessages(t *testing.T) {
	policy := RedactionPolicy{ExcludePromptsMatch: true}
	rec := attribution.PromptRecord{FirstMessage: "hello", Messages: []string{"hello", "world"}}
	out := policy.Apply(rec)
	assert.Empty(t, out.FirstMessage)
	assert.Empty(t, out.Messages)
}

func TestRedactionPolicyLocalOnlyKeepsMessages(t *testing.T) {
	policy := RedactionPolicy{HasRemote: false}
	rec := attribution.PromptRecord{FirstMessage: "hello", Messages: []string{"hello"}}
	out := policy.Apply(rec)
	assert.Equal(t, "hello", out.FirstMessage)
}
