package tvc

// CheckoutStatus reports which of Checkout's three branches was taken.
type CheckoutStatus int

const (
	// CheckoutAlready means target was already the working branch.
	CheckoutAlready CheckoutStatus = iota
	// CheckoutSwitched means target already existed locally or as a
	// remote mirror and the workspace was unzipped onto it.
	CheckoutSwitched
	// CheckoutNewBranch means target did not exist anywhere and was
	// created fresh from the current working branch's head.
	CheckoutNewBranch
)

// Checkout switches the working branch to target: if already there,
// it's a no-op; if target has a local head, the workspace is unzipped
// from it; if target only exists as a remote-mirror head, the local
// head is adopted from the mirror before unzipping; otherwise a new
// branch is created from the current working branch.
// Grounded on original_source's operation/checkout.rs.
func Checkout(repo *Repository, target BranchName) (CheckoutStatus, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	working, err := repo.ReadWorking()
	if err != nil {
		return 0, err
	}
	if working == target {
		return CheckoutAlready, nil
	}

	if head, err := repo.refs.ReadHead(target); err != nil {
		return 0, err
	} else if !head.IsZero() {
		if err := repo.WriteWorking(target); err != nil {
			return 0, err
		}
		if err := unzipLocked(repo, target); err != nil {
			return 0, err
		}
		return CheckoutSwitched, nil
	}

	if remoteHead, err := repo.refs.ReadRemote(target); err != nil {
		return 0, err
	} else if !remoteHead.IsZero() {
		if err := repo.refs.WriteHead(target, remoteHead); err != nil {
			return 0, err
		}
		if err := repo.WriteWorking(target); err != nil {
			return 0, err
		}
		if err := unzipLocked(repo, target); err != nil {
			return 0, err
		}
		return CheckoutSwitched, nil
	}

	if err := newBranchLocked(repo, working, target); err != nil {
		return 0, err
	}
	if err := repo.WriteWorking(target); err != nil {
		return 0, err
	}
	return CheckoutNewBranch, nil
}
