package tvc

// BundleTrace pairs a commit with the hash of its trace tree, the unit
// traces travel in across a Bundle.
type BundleTrace struct {
	CommitHash CommitHash
	ObjHash    ObjHash
}

// BundleBranch carries one branch's name alongside the commit(s) a
// Bundle is shipping for it. Push ships the full unsent LocalCommits
// list (oldest first); a full repository Bundle ships just the current
// head as a single-element list (spec.md §4.6).
type BundleBranch struct {
	BranchName BranchName
	Commits    []CommitHash
}

// Bundle is the unit exchanged between repositories: every object,
// trace, and branch head needed to reconstruct the commits it carries.
// Grounded on original_source's io/bundle.rs Bundle.
type Bundle struct {
	Traces   []BundleTrace
	Objs     []BundleObject
	Branches []BundleBranch
}

// ObjDataSize sums the compressed size of every object in the bundle,
// used by the room controller's push/save size gates (spec.md §4.5).
func (b Bundle) ObjDataSize() int64 {
	var total int64
	for _, o := range b.Objs {
		total += int64(len(o.CompressedBuf))
	}
	return total
}

// BundleIO builds a full-repository Bundle, one branch entry per head,
// each carrying just its current commit — used by CreateBundle for the
// room's Fetch and Sync, as distinct from Push's partial,
// local-commits-only bundle.
type BundleIO struct {
	fs    FileSystem
	store *ObjStore
	trace *TraceStore
	refs  *RefStore
}

// NewBundleIO wires a full-repository bundle builder.
func NewBundleIO(fs FileSystem, store *ObjStore, trace *TraceStore, refs *RefStore) *BundleIO {
	return &BundleIO{fs: fs, store: store, trace: trace, refs: refs}
}

// Create snapshots every object, every trace, and every branch head
// into a single Bundle.
func (b *BundleIO) Create() (Bundle, error) {
	heads, err := b.refs.ReadAllHeads()
	if err != nil {
		return Bundle{}, err
	}
	branches := make([]BundleBranch, 0, len(heads))
	for branch, head := range heads {
		branches = append(branches, BundleBranch{BranchName: branch, Commits: []CommitHash{head}})
	}

	objs, err := b.store.ReadAll()
	if err != nil {
		return Bundle{}, err
	}

	traceMap, err := b.trace.ReadAll()
	if err != nil {
		return Bundle{}, err
	}
	traces := make([]BundleTrace, 0, len(traceMap))
	for commit, hash := range traceMap {
		traces = append(traces, BundleTrace{CommitHash: commit, ObjHash: hash})
	}

	return Bundle{Branches: branches, Objs: objs, Traces: traces}, nil
}
