package tvc

import "path"

const tracesDir = ".meltos/traces"

// TraceStore records, for every commit ever made, the hash of the Tree
// object that captures the FULL workspace state at that commit (every
// path TVC has ever seen, not just what changed) — spec.md §3's "trace
// tree". Grounded on original_source's TraceIo/TraceTreeIo pairing: the
// commit hash maps to a Tree object hash, and the Tree object itself
// lives in the regular object store.
type TraceStore struct {
	fs    FileSystem
	store *ObjStore
}

// NewTraceStore wraps fs as a trace store, using store to resolve and
// persist the underlying Tree objects.
func NewTraceStore(fs FileSystem, store *ObjStore) *TraceStore {
	return &TraceStore{fs: fs, store: store}
}

func (t *TraceStore) filePath(commit CommitHash) string {
	return path.Join(tracesDir, commit.String())
}

// Write persists tree as an object and records it as commit's trace.
func (t *TraceStore) Write(commit CommitHash, tree TreeObj) error {
	meta, err := t.store.Write(NewTreeObj(tree))
	if err != nil {
		return err
	}
	return t.fs.WriteFile(t.filePath(commit), []byte(meta.Hash.String()))
}

// Read resolves commit's trace tree.
func (t *TraceStore) Read(commit CommitHash) (TreeObj, error) {
	hash, err := t.readHash(commit)
	if err != nil {
		return nil, err
	}
	return t.store.ReadTree(hash)
}

func (t *TraceStore) readHash(commit CommitHash) (ObjHash, error) {
	buf, err := t.fs.ReadFile(t.filePath(commit))
	if err != nil {
		return "", err
	}
	if buf == nil {
		return "", errNotfoundTrace(commit.ObjHash)
	}
	return ObjHash(buf), nil
}

// ReadMany resolves the trace hash for each of commits, used by Push to
// scope a bundle's traces to just the commits it ships.
func (t *TraceStore) ReadMany(commits []CommitHash) ([]BundleTrace, error) {
	out := make([]BundleTrace, 0, len(commits))
	for _, c := range commits {
		hash, err := t.readHash(c)
		if err != nil {
			return nil, err
		}
		out = append(out, BundleTrace{CommitHash: c, ObjHash: hash})
	}
	return out, nil
}

// ReadAll returns every (commit, tree-hash) pair ever recorded, used to
// enumerate the objects a full Bundle must carry.
func (t *TraceStore) ReadAll() (map[CommitHash]ObjHash, error) {
	files, err := t.fs.AllFilesIn(tracesDir)
	if err != nil {
		return nil, err
	}
	out := make(map[CommitHash]ObjHash, len(files))
	for _, f := range files {
		commit := NewCommitHash(ObjHash(path.Base(f)))
		hash, err := t.readHash(commit)
		if err != nil {
			return nil, err
		}
		out[commit] = hash
	}
	return out, nil
}
