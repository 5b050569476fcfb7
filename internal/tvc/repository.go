package tvc

import "sync"

const workingPath = ".meltos/WORKING"

// Repository ties every TVC substore to one FileSystem and serializes
// every operation behind a single mutex, so no concurrent Stage/Commit/
// Merge/Checkout pair can interleave writes across objects, traces, and
// refs (spec.md §5's "objects, then traces, then refs" crash-safety
// ordering depends on this). Grounded on the teacher's single-mutex
// Repository (internal/gitcore/repository.go).
type Repository struct {
	mu sync.Mutex

	fs           FileSystem
	store        *ObjStore
	refs         *RefStore
	trace        *TraceStore
	localCommits *LocalCommitsStore
	staging      *StagingStore
	workspace    *Workspace
	bundle       *BundleIO
}

// OpenRepository wires every substore against fs. It does not itself
// require the repository to already be initialized — Init uses the
// same wiring to create one from scratch.
func OpenRepository(fs FileSystem) *Repository {
	store := NewObjStore(fs)
	return &Repository{
		fs:           fs,
		store:        store,
		refs:         NewRefStore(fs),
		trace:        NewTraceStore(fs, store),
		localCommits: NewLocalCommitsStore(fs),
		staging:      NewStagingStore(fs),
		workspace:    NewWorkspace(fs),
		bundle:       NewBundleIO(fs, store, NewTraceStore(fs, store), NewRefStore(fs)),
	}
}

// TotalSize sums the compressed size of every object currently stored,
// used by room push/save gating against ExceedRepositorySize.
func (r *Repository) TotalSize() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.TotalSize()
}

// Branches lists every branch with a local head, for CLI/status reporting.
func (r *Repository) Branches() (map[BranchName]CommitHash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs.ReadAllHeads()
}

// Staged returns the current staging tree; it is empty (nil, or an empty
// tree after a commit or UnstageAll) when nothing is staged.
func (r *Repository) Staged() (TreeObj, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.staging.Read()
}

// ReadObj fetches and decodes a single object by hash, for CLI reporting
// of what a staged tree entry actually is (a File or a Delete tombstone).
func (r *Repository) ReadObj(hash ObjHash) (Obj, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.ReadObj(hash)
}

// WriteWorking points the repository's working branch at branch.
func (r *Repository) WriteWorking(branch BranchName) error {
	return r.fs.WriteFile(workingPath, []byte(branch.String()))
}

// ReadWorking returns the repository's current working branch, defaulting
// to Owner if none has ever been recorded.
func (r *Repository) ReadWorking() (BranchName, error) {
	buf, err := r.fs.ReadFile(workingPath)
	if err != nil {
		return "", err
	}
	if buf == nil {
		return Owner, nil
	}
	return BranchName(buf), nil
}

// IsInitialized reports whether .meltos already holds any file,
// guarding Init against re-running over a live repository.
func (r *Repository) IsInitialized() (bool, error) {
	files, err := r.fs.AllFilesIn(".meltos")
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}
