package tvc

// Commit folds the current staging tree into a new CommitObj on branch:
// the staging tree becomes the commit's committed-objects tree, the
// branch's prior head becomes its sole parent, the branch's trace tree
// is updated by replacing every staged path, and the commit hash is
// appended to branch's local-commits list. Fails with ErrNotfoundStages
// if nothing is staged. Grounded on original_source's operation/commit.rs.
func Commit(repo *Repository, branch BranchName, text string) (CommitHash, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return commitLocked(repo, branch, text)
}

func commitLocked(repo *Repository, branch BranchName, text string) (CommitHash, error) {
	stageTree, err := repo.staging.Read()
	if err != nil {
		return CommitHash{}, err
	}
	if len(stageTree) == 0 {
		return CommitHash{}, newErr(ErrNotfoundStages)
	}
	if err := repo.staging.Reset(); err != nil {
		return CommitHash{}, err
	}

	stageMeta, err := NewMeta(NewTreeObj(stageTree))
	if err != nil {
		return CommitHash{}, err
	}
	if _, err := repo.store.Write(NewTreeObj(stageTree)); err != nil {
		return CommitHash{}, err
	}

	preHead, err := repo.refs.ReadHead(branch)
	if err != nil {
		return CommitHash{}, err
	}

	var parents []CommitHash
	if !preHead.IsZero() {
		parents = []CommitHash{preHead}
	}
	commitHash, err := writeCommit(repo, branch, CommitObj{Parents: parents, Text: text, Tree: stageMeta.Hash})
	if err != nil {
		return CommitHash{}, err
	}

	if err := updateTrace(repo, stageTree, commitHash, preHead); err != nil {
		return CommitHash{}, err
	}
	return commitHash, nil
}

// CommitNull creates the empty "null commit" an Init with nothing to
// stage falls back to: an empty tree, no parents, recorded as the
// branch's head, trace, and sole local commit.
func CommitNull(repo *Repository, branch BranchName) (CommitHash, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return commitNullLocked(repo, branch)
}

func commitNullLocked(repo *Repository, branch BranchName) (CommitHash, error) {
	emptyTree := TreeObj{}
	treeMeta, err := NewMeta(NewTreeObj(emptyTree))
	if err != nil {
		return CommitHash{}, err
	}
	if _, err := repo.store.Write(NewTreeObj(emptyTree)); err != nil {
		return CommitHash{}, err
	}

	commitHash, err := writeCommit(repo, branch, CommitObj{Text: "", Tree: treeMeta.Hash})
	if err != nil {
		return CommitHash{}, err
	}
	if err := updateTrace(repo, emptyTree, commitHash, CommitHash{}); err != nil {
		return CommitHash{}, err
	}
	return commitHash, repo.staging.Reset()
}

func writeCommit(repo *Repository, branch BranchName, commit CommitObj) (CommitHash, error) {
	meta, err := repo.store.Write(NewCommitObj(commit))
	if err != nil {
		return CommitHash{}, err
	}
	commitHash := NewCommitHash(meta.Hash)
	if err := repo.refs.WriteHead(branch, commitHash); err != nil {
		return CommitHash{}, err
	}
	if err := repo.localCommits.Append(branch, commitHash); err != nil {
		return CommitHash{}, err
	}
	return commitHash, nil
}

func updateTrace(repo *Repository, staged TreeObj, commitHash CommitHash, preHead CommitHash) error {
	traceTree := TreeObj{}
	if !preHead.IsZero() {
		existing, err := repo.trace.Read(preHead)
		if err == nil {
			traceTree = existing
		}
	}
	traceTree.ReplaceBy(staged)
	return repo.trace.Write(commitHash, traceTree)
}
