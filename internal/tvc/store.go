package tvc

import (
	"path"
	"sort"
)

const objectsDir = ".meltos/objects"

// BundleObject pairs a hash with its compressed bytes, the unit Bundle,
// Push, and Fetch move between repositories (spec.md §4.6-§4.9).
type BundleObject struct {
	Hash          ObjHash
	CompressedBuf CompressedBuf
}

// ObjStore is the content-addressed object store, grounded on
// original_source's ObjIo (io/atomic/object.rs): objects live at
// .meltos/objects/<hash>, compressed, keyed by the hash of their
// uncompressed canonical encoding.
type ObjStore struct {
	fs FileSystem
}

// NewObjStore wraps fs as an object store.
func NewObjStore(fs FileSystem) *ObjStore {
	return &ObjStore{fs: fs}
}

// Write persists obj, returning its Meta (hash + compressed bytes).
func (s *ObjStore) Write(obj Obj) (Meta, error) {
	meta, err := NewMeta(obj)
	if err != nil {
		return Meta{}, err
	}
	if err := s.fs.WriteFile(path.Join(objectsDir, meta.Hash.String()), meta.CompressedBuf); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

// WriteAll persists a batch of already-compressed bundle objects verbatim,
// used by Save and Patch to install objects received from a peer without
// re-hashing them.
func (s *ObjStore) WriteAll(objs []BundleObject) error {
	for _, o := range objs {
		if err := s.fs.WriteFile(path.Join(objectsDir, o.Hash.String()), o.CompressedBuf); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the compressed bytes stored for hash, or (nil, nil) if absent.
func (s *ObjStore) Read(hash ObjHash) (CompressedBuf, error) {
	buf, err := s.fs.ReadFile(path.Join(objectsDir, hash.String()))
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return CompressedBuf(buf), nil
}

// ReadObj decompresses and decodes the object stored at hash, or
// (Obj{}, nil, nil) if absent — callers distinguish via the bool.
func (s *ObjStore) ReadObj(hash ObjHash) (Obj, bool, error) {
	compressed, err := s.Read(hash)
	if err != nil {
		return Obj{}, false, err
	}
	if compressed == nil {
		return Obj{}, false, nil
	}
	encoded, err := decompress(compressed)
	if err != nil {
		return Obj{}, false, err
	}
	obj, err := DecodeObj(encoded)
	if err != nil {
		return Obj{}, false, err
	}
	return obj, true, nil
}

// TryReadObj is ReadObj but fails with ErrNotfoundObj instead of
// returning ok=false.
func (s *ObjStore) TryReadObj(hash ObjHash) (Obj, error) {
	obj, ok, err := s.ReadObj(hash)
	if err != nil {
		return Obj{}, err
	}
	if !ok {
		return Obj{}, errNotfoundObj(hash)
	}
	return obj, nil
}

// ReadFile resolves hash directly to a FileObj.
func (s *ObjStore) ReadFile(hash ObjHash) (FileObj, error) {
	obj, err := s.TryReadObj(hash)
	if err != nil {
		return FileObj{}, err
	}
	return obj.AsFile()
}

// ReadTree resolves hash directly to a TreeObj.
func (s *ObjStore) ReadTree(hash ObjHash) (TreeObj, error) {
	obj, err := s.TryReadObj(hash)
	if err != nil {
		return nil, err
	}
	return obj.AsTree()
}

// ReadCommit resolves a CommitHash directly to a CommitObj.
func (s *ObjStore) ReadCommit(hash CommitHash) (CommitObj, error) {
	obj, err := s.TryReadObj(hash.ObjHash)
	if err != nil {
		return CommitObj{}, err
	}
	return obj.AsCommit()
}

// ReadAll returns every object currently in the store, used to build a
// full Bundle (BundleIO.Create) and by TotalSize.
func (s *ObjStore) ReadAll() ([]BundleObject, error) {
	files, err := s.fs.AllFilesIn(objectsDir)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	out := make([]BundleObject, 0, len(files))
	for _, f := range files {
		buf, err := s.fs.ReadFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, BundleObject{Hash: ObjHash(path.Base(f)), CompressedBuf: buf})
	}
	return out, nil
}

// TotalSize sums the compressed size of every object currently stored,
// used by room push/save gating against ExceedRepositorySize.
func (s *ObjStore) TotalSize() (int64, error) {
	all, err := s.ReadAll()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, o := range all {
		total += int64(len(o.CompressedBuf))
	}
	return total, nil
}
