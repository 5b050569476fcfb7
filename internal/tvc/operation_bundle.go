package tvc

// CreateBundle snapshots the entire repository — every object, every
// trace, and the current head of every branch — into one Bundle. Used
// by the room's Fetch and Sync to hand a client the whole repository.
// Distinct from Push's bundle, which ships only a single
// branch's unsent local commits.
func CreateBundle(repo *Repository) (Bundle, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.bundle.Create()
}
