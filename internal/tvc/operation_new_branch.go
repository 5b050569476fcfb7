package tvc

// NewBranch points a freshly named branch at old's current head and
// switches the working branch to it, without touching the workspace —
// the caller is expected to already be positioned on old's tree.
// Grounded on original_source's operation/new_branch.rs.
func NewBranch(repo *Repository, old, new BranchName) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return newBranchLocked(repo, old, new)
}

func newBranchLocked(repo *Repository, old, new BranchName) error {
	oldHead, err := repo.refs.ReadHead(old)
	if err != nil {
		return err
	}
	if err := repo.WriteWorking(new); err != nil {
		return err
	}
	if oldHead.IsZero() {
		return nil
	}
	return repo.refs.WriteHead(new, oldHead)
}
