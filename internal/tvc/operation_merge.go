package tvc

// MergedStatus reports which path Merge took.
type MergedStatus int

const (
	// MergedFastDist means source was already an ancestor of dist; dist
	// is left untouched.
	MergedFastDist MergedStatus = iota
	// MergedFastSource means dist was a strict ancestor of source; dist's
	// head fast-forwards to source's.
	MergedFastSource
	// MergedNormally means neither side was an ancestor of the other, so
	// a merge commit was folded from both branches' changes since their
	// common ancestor.
	MergedNormally
	// MergedConflicted is reserved for a conflict-detecting Merge that
	// refuses to fold overlapping edits and instead reports them. Nothing
	// in this implementation constructs it today — Merge always takes
	// source's entry on an overlapping path (see the doc comment on
	// Merge) — but the variant is kept so a future conflict-aware Merge,
	// and tests written against it, have a result to target. Grounded on
	// original_source's operation/merge.rs MergedStatus::Conflicted(Vec<Conflict>).
	MergedConflicted
)

// Conflict describes one path that both sides of a merge changed
// incompatibly since their common ancestor. Dormant: Merge never
// constructs a Conflict value, since the current fold always prefers
// source's hash over dist's on an overlapping path. Kept in place because
// the merge design reserves space for a future conflict-detecting Merge
// to report exactly this shape. Grounded on original_source's
// operation/merge.rs struct Conflict{file_path, source, dist}.
type Conflict struct {
	FilePath   FilePath
	SourceHash ObjHash
	DistHash   ObjHash
}

// Merge folds source's changes into dist. If source is already reachable
// from dist, nothing happens (MergedFastDist). If dist is a strict
// ancestor of source, dist simply fast-forwards (MergedFastSource).
// Otherwise their merge base is found, each side's tree changes since
// that base are folded together, with source's entries winning over
// dist's on any overlapping path — this implementation does not detect
// or surface conflicts, mirroring original_source's own documented
// simplification (operation/merge.rs leaves its Conflict path dormant) —
// and the fold is committed onto dist with message "merge <source> into
// <dist>", then dist's workspace is unzipped onto the new commit.
// Grounded on original_source's operation/merge.rs.
func Merge(repo *Repository, source, dist BranchName) (MergedStatus, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	sourceHead, err := readBranchHead(repo, source)
	if err != nil {
		return 0, err
	}
	distHead, err := readBranchHead(repo, dist)
	if err != nil {
		return 0, err
	}

	if sourceHead == distHead {
		return MergedFastDist, nil
	}

	// distAncestors contains sourceHead when source's changes are already
	// reachable from dist — nothing to do.
	distAncestors, err := ancestorHashes(repo.store, distHead, nil)
	if err != nil {
		return 0, err
	}
	if containsCommit(distAncestors, sourceHead) {
		return MergedFastDist, nil
	}

	// sourceAncestors contains distHead when dist is a strict ancestor of
	// source — dist can simply fast-forward up to source's head.
	sourceAncestors, err := ancestorHashes(repo.store, sourceHead, nil)
	if err != nil {
		return 0, err
	}
	if containsCommit(sourceAncestors, distHead) {
		if err := repo.refs.WriteHead(dist, sourceHead); err != nil {
			return 0, err
		}
		if err := unzipLocked(repo, dist); err != nil {
			return 0, err
		}
		return MergedFastSource, nil
	}

	base, err := mergeBase(repo.store, sourceHead, distHead)
	if err != nil {
		return 0, err
	}

	sourceTree, err := foldTreeSince(repo, sourceHead, base)
	if err != nil {
		return 0, err
	}
	distTree, err := foldTreeSince(repo, distHead, base)
	if err != nil {
		return 0, err
	}

	merged := distTree.Clone()
	merged.ReplaceBy(sourceTree)

	mergedMeta, err := repo.store.Write(NewTreeObj(merged))
	if err != nil {
		return 0, err
	}

	commit := CommitObj{
		Parents: []CommitHash{distHead, sourceHead},
		Text:    "merge " + source.String() + " into " + dist.String(),
		Tree:    mergedMeta.Hash,
	}
	commitHash, err := writeCommit(repo, dist, commit)
	if err != nil {
		return 0, err
	}
	if err := updateTrace(repo, merged, commitHash, distHead); err != nil {
		return 0, err
	}
	if err := repo.staging.Reset(); err != nil {
		return 0, err
	}
	if err := unzipLocked(repo, dist); err != nil {
		return 0, err
	}
	return MergedNormally, nil
}

// readBranchHead resolves branch's local head, falling back to its
// remote-mirror head when no local head exists yet (a branch fetched but
// never checked out locally).
func readBranchHead(repo *Repository, branch BranchName) (CommitHash, error) {
	head, err := repo.refs.ReadHead(branch)
	if err != nil {
		return CommitHash{}, err
	}
	if !head.IsZero() {
		return head, nil
	}
	return repo.refs.TryReadRemote(branch)
}

// foldTreeSince walks head's ancestry back to (but not including) base,
// folding each commit's trace tree forward in ancestor-to-descendant
// order so that later changes overwrite earlier ones on the same path.
func foldTreeSince(repo *Repository, head, base CommitHash) (TreeObj, error) {
	commits, err := ancestorHashes(repo.store, head, &base)
	if err != nil {
		return nil, err
	}

	folded := TreeObj{}
	for i := len(commits) - 1; i >= 0; i-- {
		if commits[i] == base {
			continue
		}
		tree, err := repo.trace.Read(commits[i])
		if err != nil {
			return nil, err
		}
		folded.ReplaceBy(tree)
	}
	return folded, nil
}
