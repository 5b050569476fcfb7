package tvc

const stagingPath = ".meltos/stage"

// StagingStore holds the single, branch-agnostic Tree of paths staged
// for the next commit. Grounded on original_source's StagingIo (used by
// operation/stage.rs, commit.rs, un_stage.rs, merge.rs).
type StagingStore struct {
	fs FileSystem
}

// NewStagingStore wraps fs as a staging store.
func NewStagingStore(fs FileSystem) *StagingStore {
	return &StagingStore{fs: fs}
}

// Read returns the current staging tree, or nil if none has ever been
// written; after Reset it is an empty, non-nil tree.
func (s *StagingStore) Read() (TreeObj, error) {
	buf, err := s.fs.ReadFile(stagingPath)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	obj, err := DecodeObj(buf)
	if err != nil {
		return nil, err
	}
	return obj.AsTree()
}

// WriteTree overwrites the staging tree with tree.
func (s *StagingStore) WriteTree(tree TreeObj) error {
	obj := NewTreeObj(tree)
	encoded, err := obj.Encode()
	if err != nil {
		return err
	}
	return s.fs.WriteFile(stagingPath, encoded)
}

// Reset clears the staging tree, called once a Commit has consumed it.
func (s *StagingStore) Reset() error {
	return s.WriteTree(TreeObj{})
}

// Remove drops a single path from the staging tree.
func (s *StagingStore) Remove(p FilePath) error {
	tree, err := s.Read()
	if err != nil {
		return err
	}
	if tree == nil {
		return nil
	}
	delete(tree, p)
	return s.WriteTree(tree)
}
