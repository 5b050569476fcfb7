// Package tvc implements the content-addressed version-control core
// ("TVC"): object model and codecs, the object store, branch and
// remote-mirror refs, staging, commit, bundle pack/unpack, push/save,
// fetch/patch, checkout, and three-way merge.
package tvc

import "fmt"

// ObjHash is the stable content hash of an object's canonical encoded
// bytes. Equal encoded bytes always produce an equal ObjHash; the leading
// type tag baked into every encoding keeps objects of different kinds
// from colliding.
type ObjHash string

// String implements fmt.Stringer.
func (h ObjHash) String() string { return string(h) }

// Short returns a shortened form of the hash suitable for logging.
func (h ObjHash) Short() string {
	if len(h) <= 10 {
		return string(h)
	}
	return string(h)[:10]
}

// CommitHash is an ObjHash known to refer to a Commit object.
type CommitHash struct {
	ObjHash ObjHash
}

// NewCommitHash wraps a raw ObjHash as a CommitHash.
func NewCommitHash(h ObjHash) CommitHash { return CommitHash{ObjHash: h} }

func (c CommitHash) String() string { return c.ObjHash.String() }

// IsZero reports whether this is the zero-value CommitHash (no commit).
func (c CommitHash) IsZero() bool { return c.ObjHash == "" }

// BranchName identifies a branch within a repository. "owner" is the
// distinguished branch belonging to the room's creator.
type BranchName string

// Owner is the distinguished branch name for the room creator.
const Owner BranchName = "owner"

func (b BranchName) String() string { return string(b) }

// CompressedBuf is the byte sequence produced by compressing an object's
// canonical encoded form before it is written to the store.
type CompressedBuf []byte

// FilePath is a forward-slash path relative to a repository's workspace
// root, used as the key type for Tree entries.
type FilePath string

// NewFilePath normalizes an OS-agnostic path into a FilePath.
func NewFilePath(p string) FilePath { return FilePath(cleanSlashPath(p)) }

func (p FilePath) String() string { return string(p) }

// cleanSlashPath trims redundant slashes without touching '.'/'..'
// segments — callers are expected to pass already-resolved paths.
func cleanSlashPath(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// objPath returns the on-disk path under .meltos/objects for a hash.
func objPath(hash ObjHash) string {
	return fmt.Sprintf(".meltos/objects/%s", hash)
}
