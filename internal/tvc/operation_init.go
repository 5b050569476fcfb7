package tvc

// Init bootstraps a fresh repository on branch: creates workspace/,
// stages whatever is already there, and commits it — or, if the
// workspace is empty, creates the null commit directly. Grounded on
// original_source's operation/init.rs.
func Init(repo *Repository, branch BranchName) (CommitHash, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	initialized, err := repo.IsInitialized()
	if err != nil {
		return CommitHash{}, err
	}
	if initialized {
		return CommitHash{}, newErr(ErrRepositoryAlreadyInitialized)
	}

	if err := repo.WriteWorking(branch); err != nil {
		return CommitHash{}, err
	}
	if err := repo.fs.CreateDir(workspaceDir); err != nil {
		return CommitHash{}, err
	}

	if err := stageLocked(repo, branch, ""); err == nil {
		return commitLocked(repo, branch, "INIT")
	}
	return commitNullLocked(repo, branch)
}
