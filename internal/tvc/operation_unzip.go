package tvc

// Unzip restores branch's committed tree into the workspace: the
// workspace is wiped, then every entry in the branch head's trace tree
// is re-materialized (a Delete entry removes the path, skipping any
// write). Grounded on original_source's operation/unzip.rs.
func Unzip(repo *Repository, branch BranchName) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return unzipLocked(repo, branch)
}

func unzipLocked(repo *Repository, branch BranchName) error {
	if err := repo.fs.Delete(workspaceDir); err != nil {
		return err
	}
	head, err := repo.refs.TryReadHead(branch)
	if err != nil {
		return err
	}
	traceTree, err := repo.trace.Read(head)
	if err != nil {
		return err
	}
	return repo.workspace.Unpack(repo.store, traceTree)
}
