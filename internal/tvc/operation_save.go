package tvc

// Save installs bundle's objects, traces, and branch heads into repo as
// LOCAL branches — the server-side counterpart to a client's initial
// Fetch, and the operation a room's storage layer runs when persisting
// a just-Pushed bundle. Unlike Patch, branch heads land in refs/heads,
// not refs/remotes. Grounded on original_source's operation/save.rs.
func Save(repo *Repository, bundle Bundle) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.store.WriteAll(bundle.Objs); err != nil {
		return err
	}
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
		if err := repo.refs.WriteHead(b.BranchName, head); err != nil {
			return err
		}
	}
	return nil
}
