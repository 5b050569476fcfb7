package tvc

import "context"

// Fetcher is the capability Fetch pulls a bundle through — a room
// channel or HTTP client a caller wires in.
type Fetcher interface {
	Fetch(ctx context.Context) (Bundle, error)
}

// Fetch pulls the latest bundle from remote and patches it into repo.
func Fetch(ctx context.Context, repo *Repository, remote Fetcher) error {
	bundle, err := remote.Fetch(ctx)
	if err != nil {
		return errFailedConnect(err.Error())
	}
	return Patch(repo, bundle)
}

// Patch installs bundle's objects, traces, and branch heads into repo as
// REMOTE-mirror refs (refs/remotes/<branch>), leaving local branch heads
// and the workspace untouched — the client-side counterpart to Push,
// applied after a successful Fetch. Grounded on original_source's
// operation/patch.rs.
func Patch(repo *Repository, bundle Bundle) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, t := range bundle.Traces {
		if err := repo.trace.fs.WriteFile(repo.trace.filePath(t.CommitHash), []byte(t.ObjHash.String())); err != nil {
			return err
		}
	}
	for _, b := range bundle.Branches {
		if len(b.Commits) == 0 {
			continue
		}
		head := b.Commits[len(b.Commits)-1]
		if err := repo.refs.WriteRemote(b.BranchName, head); err != nil {
			return err
		}
	}
	return repo.store.WriteAll(bundle.Objs)
}
