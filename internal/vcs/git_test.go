package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func TestCommit_StagesOnlyGivenFiles(t *testing.T) {
	dir, repo := initRepo(t)

	report := filepath.Join(dir, "Reports", "Games.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(report), 0755))
	require.NoError(t, os.WriteFile(report, []byte("# Games\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.md"), []byte("wip"), 0644))

	c, err := Open(filepath.Join(dir, "Reports"), "tester", "tester@example.com")
	require.NoError(t, err)
	assert.Equal(t, dir, c.Root())

	hash, err := c.Commit([]string{report}, "regenerate")
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash().String())

	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "regenerate", commit.Message)
	assert.Equal(t, "tester", commit.Author.Name)

	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("Reports/Games.md")
	assert.NoError(t, err)
	_, err = tree.File("draft.md")
	assert.Error(t, err, "draft.md는 커밋되면 안 됨")
}

func TestCommit_NoChanges(t *testing.T) {
	dir, _ := initRepo(t)
	report := filepath.Join(dir, "Games.md")
	require.NoError(t, os.WriteFile(report, []byte("x"), 0644))

	c, err := Open(dir, "tester", "tester@example.com")
	require.NoError(t, err)

	_, err = c.Commit([]string{report}, "first")
	require.NoError(t, err)

	_, err = c.Commit([]string{report}, "second")
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestCommit_OutsideRepository(t *testing.T) {
	dir, _ := initRepo(t)
	c, err := Open(dir, "tester", "tester@example.com")
	require.NoError(t, err)

	_, err = c.Commit([]string{filepath.Join(filepath.Dir(dir), "elsewhere.md")}, "x")
	assert.Error(t, err)
}

func TestOpen_NotRepository(t *testing.T) {
	_, err := Open(t.TempDir(), "tester", "tester@example.com")
	assert.ErrorIs(t, err, ErrNotRepository)
}
