package tvc

import "path"

const localCommitsDir = ".meltos/branches"

// LocalCommitsStore tracks, per branch, the ordered list of commit
// hashes made since the branch's last successful Push (spec.md §4.4,
// §4.7). Grounded on original_source's LocalCommitsIo.
type LocalCommitsStore struct {
	fs FileSystem
}

// NewLocalCommitsStore wraps fs as a local-commits store.
func NewLocalCommitsStore(fs FileSystem) *LocalCommitsStore {
	return &LocalCommitsStore{fs: fs}
}

func (s *LocalCommitsStore) filePath(branch BranchName) string {
	return path.Join(localCommitsDir, branch.String(), "LOCAL")
}

// Write overwrites branch's local-commits list.
func (s *LocalCommitsStore) Write(branch BranchName, commits LocalCommitsObj) error {
	obj := NewLocalCommitsObj(commits)
	encoded, err := obj.Encode()
	if err != nil {
		return err
	}
	return s.fs.WriteFile(s.filePath(branch), encoded)
}

// Append records hash as the newest commit made on branch.
func (s *LocalCommitsStore) Append(branch BranchName, hash CommitHash) error {
	commits, err := s.Read(branch)
	if err != nil {
		return err
	}
	commits = append(commits, hash)
	return s.Write(branch, commits)
}

// Read returns branch's local-commits list, or nil if none has ever
// been recorded.
func (s *LocalCommitsStore) Read(branch BranchName) (LocalCommitsObj, error) {
	buf, err := s.fs.ReadFile(s.filePath(branch))
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
	return obj.AsLocalCommits()
}

// TryRead is Read but fails with ErrNotfoundLocalCommits when branch has
// no commits pending push.
func (s *LocalCommitsStore) TryRead(branch BranchName) (LocalCommitsObj, error) {
	commits, err := s.Read(branch)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, newErr(ErrNotfoundLocalCommits)
	}
	return commits, nil
}

// Reset clears branch's local-commits list, called after a successful
// Push once the server has acknowledged the bundle.
func (s *LocalCommitsStore) Reset(branch BranchName) error {
	return s.Write(branch, LocalCommitsObj{})
}
