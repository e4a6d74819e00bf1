package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// ErrNotRepository is returned when the vault is not inside a git work tree
	ErrNotRepository = errors.New("git 저장소가 아닙니다")
	// ErrNoChanges is returned when none of the given files changed
	ErrNoChanges = errors.New("커밋할 변경 사항이 없습니다")
)

// Committer commits generated files to the repository containing the vault.
// It never pushes.
type Committer struct {
	repo  *git.Repository
	root  string
	name  string
	email string
}

// Open finds the repository containing path (searching parent directories)
func Open(path, authorName, authorEmail string) (*Committer, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		return nil, fmt.Errorf("저장소 열기 실패: %w", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		// bare 저장소
		return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
	}

	return &Committer{
		repo:  repo,
		root:  w.Filesystem.Root(),
		name:  authorName,
		email: authorEmail,
	}, nil
}

// Root returns the work tree root
func (c *Committer) Root() string {
	return c.root
}

// Commit stages paths and commits them. Other changes in the work tree are
// left alone. Returns the commit hash.
func (c *Committer) Commit(paths []string, message string) (string, error) {
	w, err := c.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree 조회 실패: %w", err)
	}

	var staged []string
	for _, p := range paths {
		rel, err := c.relative(p)
		if err != nil {
			return "", err
		}
		if _, err := w.Add(rel); err != nil {
			return "", fmt.Errorf("%s 스테이징 실패: %w", rel, err)
		}
		staged = append(staged, rel)
	}

	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("상태 조회 실패: %w", err)
	}
	changed := false
	for _, rel := range staged {
		if s, ok := status[rel]; ok && s.Staging != git.Unmodified && s.Staging != git.Untracked {
			changed = true
			break
		}
	}
	if !changed {
		return "", ErrNoChanges
	}

	if message == "" {
		message = fmt.Sprintf("mdhelper: %s", time.Now().Format(time.RFC3339))
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.name,
			Email: c.email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("커밋 실패: %w", err)
	}
	return hash.String(), nil
}

func (c *Committer) relative(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("저장소 밖의 파일입니다: %s", path)
	}
	return filepath.ToSlash(rel), nil
}
