package tvc

import "context"

// Pushable is the capability Push sends a bundle to — a room channel,
// an HTTP client, or any other transport a caller wires in. Grounded on
// original_source's Pushable trait (operation/push.rs).
type Pushable interface {
	Push(ctx context.Context, bundle Bundle) error
}

// Push ships branch's unsent local commits — every object and trace
// reachable from them back to (but not past) the branch's last pushed
// commit — to remote, then clears the local-commits list on success.
// Fails with ErrNotfoundLocalCommits if nothing is pending, and with
// ErrFailedConnectServer (leaving local state untouched) if remote
// rejects the bundle. Grounded on original_source's operation/push.rs.
func Push(ctx context.Context, repo *Repository, branch BranchName, remote Pushable) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	bundle, err := createPushBundle(repo, branch)
	if err != nil {
		return err
	}
	if err := remote.Push(ctx, bundle); err != nil {
		return errFailedConnect(err.Error())
	}
	return repo.localCommits.Reset(branch)
}

func createPushBundle(repo *Repository, branch BranchName) (Bundle, error) {
	localCommits, err := repo.localCommits.Read(branch)
	if err != nil {
		return Bundle{}, err
	}
	if len(localCommits) == 0 {
		return Bundle{}, newErr(ErrNotfoundLocalCommits)
	}

	traces, err := repo.trace.ReadMany(localCommits)
	if err != nil {
		return Bundle{}, err
	}

	objs, err := objsAssociatedWithLocalCommits(repo, localCommits)
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{
		Objs:   objs,
		Traces: traces,
		Branches: []BundleBranch{{
			BranchName: branch,
			Commits:    localCommits,
		}},
	}, nil
}

// objsAssociatedWithLocalCommits collects every object reachable from
// the newest local commit back to (but not including) the commit
// before the oldest local commit — i.e. everything this push bundle
// needs the remote to not already have.
func objsAssociatedWithLocalCommits(repo *Repository, localCommits LocalCommitsObj) ([]BundleObject, error) {
	newest := localCommits[len(localCommits)-1]
	oldestCommit, err := repo.store.ReadCommit(localCommits[0])
	if err != nil {
		return nil, err
	}
	var stopAt *CommitHash
	if len(oldestCommit.Parents) > 0 {
		stopAt = &oldestCommit.Parents[0]
	}

	hashes, err := commitObjHashes(repo, newest, stopAt)
	if err != nil {
		return nil, err
	}

	objs := make([]BundleObject, 0, len(hashes))
	for hash := range hashes {
		buf, err := repo.store.Read(hash)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			return nil, errNotfoundObj(hash)
		}
		objs = append(objs, BundleObject{Hash: hash, CompressedBuf: buf})
	}
	return objs, nil
}

// commitObjHashes walks from commitHash back through parents, collecting
// every object hash a commit and its trace tree touch, stopping once a
// commit in to (if any) has been reached.
func commitObjHashes(repo *Repository, commitHash CommitHash, to *CommitHash) (map[ObjHash]struct{}, error) {
	hashes := make(map[ObjHash]struct{})
	var walk func(hash CommitHash) error
	walk = func(hash CommitHash) error {
		commit, err := repo.store.ReadCommit(hash)
		if err != nil {
			return err
		}
		tree, err := repo.store.ReadTree(commit.Tree)
		if err != nil {
			return err
		}
		hashes[commit.Tree] = struct{}{}
		for _, h := range tree {
			hashes[h] = struct{}{}
		}
		hashes[hash.ObjHash] = struct{}{}

		reachedStop := to != nil && containsCommit(commit.Parents, *to)
		if !reachedStop {
			for _, parent := range commit.Parents {
				if err := walk(parent); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(commitHash); err != nil {
		return nil, err
	}
	return hashes, nil
}
