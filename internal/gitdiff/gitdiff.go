// Package gitdiff lists the files changed since a git revision, matching
// what `git diff --name-only <rev>` reports.
package gitdiff

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned when dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// ChangedFiles returns absolute paths of the files that differ between rev
// and the work tree: changes committed since rev plus staged and unstaged
// changes. Untracked files are not included. Deleted files are listed too;
// callers filter paths that no longer exist.
func ChangedFiles(dir, rev string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	top := wt.Filesystem.Root()

	names, err := committedChanges(repo, rev)
	if err != nil {
		return nil, err
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	for name, fs := range status {
		if fs.Worktree == git.Untracked {
			continue
		}
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		names = append(names, name)
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(top, filepath.FromSlash(name)))
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func committedChanges(repo *git.Repository, rev string) ([]string, error) {
	from, err := treeAt(repo, plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	to, err := treeAt(repo, plumbing.Revision(plumbing.HEAD))
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	names := make([]string, 0, len(changes))
	for _, c := range changes {
		if c.To.Name != "" {
			names = append(names, c.To.Name)
		}
		if c.From.Name != "" && c.From.Name != c.To.Name {
			names = append(names, c.From.Name)
		}
	}
	return names, nil
}

func treeAt(repo *git.Repository, rev plumbing.Revision) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(rev)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}
