package tvc

import "path"

const (
	headsDir   = ".meltos/refs/heads"
	remotesDir = ".meltos/refs/remotes"
)

// RefStore tracks the current commit each branch points at, split into
// the owner-writable heads/ namespace and the server-synchronized
// remotes/ mirror namespace (spec.md §3, §4.4). Grounded on
// original_source's HeadIo.
type RefStore struct {
	fs FileSystem
}

// NewRefStore wraps fs as a ref store.
func NewRefStore(fs FileSystem) *RefStore {
	return &RefStore{fs: fs}
}

func (r *RefStore) headPath(branch BranchName) string {
	return path.Join(headsDir, branch.String())
}

func (r *RefStore) remotePath(branch BranchName) string {
	return path.Join(remotesDir, branch.String())
}

// WriteHead points branch's local head at commit.
func (r *RefStore) WriteHead(branch BranchName, commit CommitHash) error {
	return r.fs.WriteFile(r.headPath(branch), []byte(commit.String()))
}

// WriteRemote points branch's remote-mirror ref at commit.
func (r *RefStore) WriteRemote(branch BranchName, commit CommitHash) error {
	return r.fs.WriteFile(r.remotePath(branch), []byte(commit.String()))
}

// DeleteHead removes branch's local head.
func (r *RefStore) DeleteHead(branch BranchName) error {
	return r.fs.Delete(r.headPath(branch))
}

// ReadHead returns branch's local head, or (zero, nil) if unset.
func (r *RefStore) ReadHead(branch BranchName) (CommitHash, error) {
	return r.read(r.headPath(branch))
}

// TryReadHead is ReadHead but fails with ErrNotfoundHead instead of
// returning the zero value.
func (r *RefStore) TryReadHead(branch BranchName) (CommitHash, error) {
	h, err := r.ReadHead(branch)
	if err != nil {
		return CommitHash{}, err
	}
	if h.IsZero() {
		return CommitHash{}, errNotfoundHead(branch)
	}
	return h, nil
}

// ReadRemote returns branch's remote-mirror head, or (zero, nil) if unset.
func (r *RefStore) ReadRemote(branch BranchName) (CommitHash, error) {
	return r.read(r.remotePath(branch))
}

// TryReadRemote is ReadRemote but fails with ErrNotfoundHead instead of
// returning the zero value.
func (r *RefStore) TryReadRemote(branch BranchName) (CommitHash, error) {
	h, err := r.ReadRemote(branch)
	if err != nil {
		return CommitHash{}, err
	}
	if h.IsZero() {
		return CommitHash{}, errNotfoundHead(branch)
	}
	return h, nil
}

func (r *RefStore) read(path string) (CommitHash, error) {
	buf, err := r.fs.ReadFile(path)
	if err != nil {
		return CommitHash{}, err
	}
	if buf == nil {
		return CommitHash{}, nil
	}
	return NewCommitHash(ObjHash(buf)), nil
}

// ReadAllHeads lists every branch with a local head, used by BundleIO to
// build a full Bundle and by Repository.Branches for branch listing.
func (r *RefStore) ReadAllHeads() (map[BranchName]CommitHash, error) {
	files, err := r.fs.ReadDir(headsDir)
	if err != nil {
		return nil, err
	}
	out := make(map[BranchName]CommitHash, len(files))
	for _, f := range files {
		branch := BranchName(path.Base(f))
		head, err := r.TryReadHead(branch)
		if err != nil {
			return nil, err
		}
		out[branch] = head
	}
	return out, nil
}
