// Package workspace materializes isolated per-branch copies of the repository
// and runs optional build pipelines inside them. Each measured branch owns an
// exclusive directory, so two branches can be prepared concurrently without
// filesystem races.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

const defaultRemoteName = "origin"

// Materializer produces isolated branch checkouts under a common work directory.
type Materializer struct {
	source   string // current checkout to copy from
	workdir  string // base directory for branch copies
	authUser string // basic-auth username the hosting provider expects
	token    string // auth token for fetching over HTTP(S), may be empty
	log      logze.Logger
}

// NewMaterializer creates a materializer that copies the checkout at source
// into workdir/<branch> and switches the copy to the requested branch.
// authUser is the basic-auth username paired with token on fetches; each
// hosting provider expects a different one.
func NewMaterializer(source, workdir, authUser, token string) *Materializer {
	return &Materializer{
		source:   source,
		workdir:  workdir,
		authUser: authUser,
		token:    token,
		log:      logze.With("component", "workspace"),
	}
}

// Materialize returns the path of an isolated directory containing a full
// copy of the repository checked out at the tip of the remote branch.
// Any copy, fetch or checkout failure is fatal for the whole run.
func (m *Materializer) Materialize(ctx context.Context, branch string) (string, error) {
	timer := abstract.StartTimer()

	dir := filepath.Join(m.workdir, branch)
	if err := copyTree(m.source, dir); err != nil {
		return "", errm.Wrap(err, "failed to copy working tree")
	}

	if err := m.checkout(ctx, dir, branch); err != nil {
		return "", errm.Wrap(err, "failed to checkout branch")
	}

	m.log.Debug("materialized workspace", "branch", branch, "dir", dir, "elapsed", timer.ElapsedTime().String())

	return dir, nil
}

func (m *Materializer) checkout(ctx context.Context, dir, branch string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errm.Wrap(err, "failed to open repository")
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, defaultRemoteName, branch))
	fetchOpts := &git.FetchOptions{
		RemoteName: defaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	}
	if m.token != "" {
		fetchOpts.Auth = &githttp.BasicAuth{Username: m.authUser, Password: m.token}
	}

	err = repo.FetchContext(ctx, fetchOpts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errm.Wrap(err, "failed to fetch branch "+branch+" from remote")
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(defaultRemoteName, branch), true)
	if err != nil {
		return errm.Wrap(err, "remote branch "+branch+" does not exist")
	}

	// Point a local branch at the fetched tip, then switch the worktree to it.
	localRef := plumbing.NewBranchReferenceName(branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(localRef, remoteRef.Hash())); err != nil {
		return errm.Wrap(err, "failed to create local branch reference")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errm.Wrap(err, "failed to get worktree")
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Branch: localRef, Force: true}); err != nil {
		return errm.Wrap(err, "failed to checkout branch "+branch)
	}

	return nil
}

// CurrentBranch returns the name of the branch checked out at dir.
func CurrentBranch(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", errm.Wrap(err, "failed to open repository")
	}

	head, err := repo.Head()
	if err != nil {
		return "", errm.Wrap(err, "failed to get HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "", errm.New("HEAD is detached")
	}

	return head.Name().Short(), nil
}

// copyTree recursively copies the tree at src into dst, including the .git
// directory. A destination nested inside the source is skipped to avoid
// copying the workspace into itself.
func copyTree(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	return filepath.WalkDir(absSrc, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absDst || strings.HasPrefix(path, absDst+string(filepath.Separator)) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absSrc, path)
		if err != nil {
			return err
		}
		target := filepath.Join(absDst, rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
