package tvc

import (
	"bytes"
	"sort"
	"strconv"
)

// ObjKind tags the canonical encoding of every object TVC stores.
// Grounded on original_source/meltos_tvc/src/io/atomic/object.rs's test
// fixture, which hashes the literal bytes "FILE\0hello world!" — the tag,
// a NUL separator, then the payload.
type ObjKind string

const (
	KindFile         ObjKind = "FILE"
	KindDelete       ObjKind = "DELETE"
	KindTree         ObjKind = "TREE"
	KindCommit       ObjKind = "COMMIT"
	KindLocalCommits ObjKind = "LOCAL_COMMITS"
)

// FileObj is the payload of a tracked file's content.
type FileObj struct {
	Buf []byte
}

// DeleteObj tombstones a path, wrapping the hash the path's content had
// before deletion. Wrapping the prior hash (rather than using a bare
// marker) keeps repeated deletes of the same content idempotent and
// gives the tombstone a stable, content-derived ObjHash like every other
// object, grounded on original_source's DeleteObj(ObjHash).
type DeleteObj struct {
	PriorHash ObjHash
}

// TreeObj maps workspace paths to the ObjHash of their current content
// object (a FileObj hash, or a DeleteObj hash for a tombstoned path).
// Used both as the staging tree and as a commit's trace tree.
type TreeObj map[FilePath]ObjHash

// Clone returns a deep copy of t.
func (t TreeObj) Clone() TreeObj {
	out := make(TreeObj, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ChangedHash reports whether path is absent from t or present with a
// different hash than the one given — the guard Stage uses to decide
// whether a workspace file needs restaging against the trace tree and,
// separately, against the current staging tree.
func (t TreeObj) ChangedHash(path FilePath, hash ObjHash) bool {
	existing, ok := t[path]
	return !ok || existing != hash
}

// ReplaceBy folds other's entries into t, overwriting any path present
// in both. Used by Commit to merge a just-staged tree into the prior
// commit's trace tree.
func (t TreeObj) ReplaceBy(other TreeObj) {
	for k, v := range other {
		t[k] = v
	}
}

// CommitObj records one commit: its parents (zero for the null commit,
// more than one after a merge fold), free-text message, and the hash of
// the TreeObj capturing every object committed at this point.
type CommitObj struct {
	Parents []CommitHash
	Text    string
	Tree    ObjHash
}

// LocalCommitsObj is the append-only list of commit hashes made on a
// branch since its last successful Push, in commit order (oldest first).
type LocalCommitsObj []CommitHash

// Obj is the closed sum type every object in the content-addressed store
// belongs to. Exactly one of the typed fields is meaningful, selected by
// Kind; this mirrors the Rust Obj enum's tagged encoding (spec.md §4.2)
// without needing reflection to round-trip it.
type Obj struct {
	Kind         ObjKind
	File         FileObj
	Delete       DeleteObj
	Tree         TreeObj
	Commit       CommitObj
	LocalCommits LocalCommitsObj
}

// NewFileObj wraps buf as a File object.
func NewFileObj(buf []byte) Obj { return Obj{Kind: KindFile, File: FileObj{Buf: buf}} }

// NewDeleteObj constructs the tombstone object written in place of a
// deleted path's prior content hash.
func NewDeleteObj(priorHash ObjHash) Obj {
	return Obj{Kind: KindDelete, Delete: DeleteObj{PriorHash: priorHash}}
}

// NewTreeObj wraps t as a Tree object.
func NewTreeObj(t TreeObj) Obj { return Obj{Kind: KindTree, Tree: t} }

// NewCommitObj wraps c as a Commit object.
func NewCommitObj(c CommitObj) Obj { return Obj{Kind: KindCommit, Commit: c} }

// NewLocalCommitsObj wraps l as a LocalCommits object.
func NewLocalCommitsObj(l LocalCommitsObj) Obj {
	return Obj{Kind: KindLocalCommits, LocalCommits: l}
}

// nulReader walks a NUL-delimited field sequence left to right, the way
// every multi-field object payload (Tree, Commit, LocalCommits) is laid
// out on the wire.
type nulReader struct {
	buf []byte
	pos int
}

// field returns the next NUL-terminated field, or false if the buffer is
// exhausted before a terminator is found.
func (r *nulReader) field() (string, bool) {
	if r.pos > len(r.buf) {
		return "", false
	}
	idx := bytes.IndexByte(r.buf[r.pos:], 0)
	if idx < 0 {
		return "", false
	}
	s := string(r.buf[r.pos : r.pos+idx])
	r.pos += idx + 1
	return s, true
}

// rest returns every remaining byte, unterminated — used for a trailing
// free-text field such as a commit message.
func (r *nulReader) rest() string {
	return string(r.buf[r.pos:])
}

// Encode produces the canonical, uncompressed byte encoding used both to
// compute an object's ObjHash and to persist it in the store. Each kind
// has its own literal NUL-delimited grammar (spec.md §4.2, §6 — the
// compatibility surface between client and server):
//
//	FILE\0<bytes>
//	DELETE\0<file_hash>
//	TREE\0<count>\0(<path>\0<hash>\0){count}              (ascending path order)
//	COMMIT<parent_count>\0(<parent_hash>\0){parent_count}<tree_hash>\0<text>
//	LOCAL_COMMITS\0<count>\0(<hash>\0){count}
func (o Obj) Encode() ([]byte, error) {
	switch o.Kind {
	case KindFile:
		return encodeTagged(KindFile, o.File.Buf), nil
	case KindDelete:
		return encodeTagged(KindDelete, []byte(o.Delete.PriorHash)), nil
	case KindTree:
		return encodeTree(o.Tree), nil
	case KindCommit:
		return encodeCommit(o.Commit), nil
	case KindLocalCommits:
		return encodeLocalCommits(o.LocalCommits), nil
	default:
		return nil, errMalformed("unknown object kind")
	}
}

func encodeTagged(kind ObjKind, payload []byte) []byte {
	buf := make([]byte, 0, len(kind)+1+len(payload))
	buf = append(buf, kind...)
	buf = append(buf, 0)
	buf = append(buf, payload...)
	return buf
}

func encodeTree(t TreeObj) []byte {
	paths := make([]FilePath, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	var buf bytes.Buffer
	buf.WriteString(string(KindTree))
	buf.WriteByte(0)
	buf.WriteString(strconv.Itoa(len(paths)))
	buf.WriteByte(0)
	for _, p := range paths {
		buf.WriteString(string(p))
		buf.WriteByte(0)
		buf.WriteString(string(t[p]))
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func encodeCommit(c CommitObj) []byte {
	var buf bytes.Buffer
	buf.WriteString(string(KindCommit))
	buf.WriteString(strconv.Itoa(len(c.Parents)))
	buf.WriteByte(0)
	for _, p := range c.Parents {
		buf.WriteString(string(p.ObjHash))
		buf.WriteByte(0)
	}
	buf.WriteString(string(c.Tree))
	buf.WriteByte(0)
	buf.WriteString(c.Text)
	return buf.Bytes()
}

func encodeLocalCommits(l LocalCommitsObj) []byte {
	var buf bytes.Buffer
	buf.WriteString(string(KindLocalCommits))
	buf.WriteByte(0)
	buf.WriteString(strconv.Itoa(len(l)))
	buf.WriteByte(0)
	for _, c := range l {
		buf.WriteString(string(c.ObjHash))
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// DecodeObj parses the canonical encoding produced by Encode, verifying
// the leading tag before interpreting the payload (MalformedObject on any
// mismatch, spec.md §4.2).
func DecodeObj(buf []byte) (Obj, error) {
	switch {
	case bytes.HasPrefix(buf, []byte(string(KindFile)+"\x00")):
		payload := buf[len(KindFile)+1:]
		return NewFileObj(append([]byte(nil), payload...)), nil
	case bytes.HasPrefix(buf, []byte(string(KindDelete)+"\x00")):
		return NewDeleteObj(ObjHash(buf[len(KindDelete)+1:])), nil
	case bytes.HasPrefix(buf, []byte(string(KindTree)+"\x00")):
		t, err := decodeTree(buf[len(KindTree)+1:])
		if err != nil {
			return Obj{}, err
		}
		return NewTreeObj(t), nil
	case bytes.HasPrefix(buf, []byte(string(KindLocalCommits)+"\x00")):
		l, err := decodeLocalCommits(buf[len(KindLocalCommits)+1:])
		if err != nil {
			return Obj{}, err
		}
		return NewLocalCommitsObj(l), nil
	case bytes.HasPrefix(buf, []byte(KindCommit)):
		c, err := decodeCommit(buf)
		if err != nil {
			return Obj{}, err
		}
		return NewCommitObj(c), nil
	default:
		return Obj{}, errMalformed("object missing recognizable tag")
	}
}

func decodeTree(payload []byte) (TreeObj, error) {
	r := &nulReader{buf: payload}
	countStr, ok := r.field()
	if !ok {
		return nil, errMalformed("malformed tree object: missing count")
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return nil, errMalformed("malformed tree object: bad count")
	}
	out := make(TreeObj, count)
	for i := 0; i < count; i++ {
		path, ok := r.field()
		if !ok {
			return nil, errMalformed("malformed tree object: missing path")
		}
		hash, ok := r.field()
		if !ok {
			return nil, errMalformed("malformed tree object: missing hash")
		}
		out[FilePath(path)] = ObjHash(hash)
	}
	return out, nil
}

func decodeCommit(buf []byte) (CommitObj, error) {
	r := &nulReader{buf: buf[len(KindCommit):]}
	countStr, ok := r.field()
	if !ok {
		return CommitObj{}, errMalformed("malformed commit object: missing parent count")
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return CommitObj{}, errMalformed("malformed commit object: bad parent count")
	}
	parents := make([]CommitHash, count)
	for i := 0; i < count; i++ {
		h, ok := r.field()
		if !ok {
			return CommitObj{}, errMalformed("malformed commit object: missing parent hash")
		}
		parents[i] = NewCommitHash(ObjHash(h))
	}
	treeHash, ok := r.field()
	if !ok {
		return CommitObj{}, errMalformed("malformed commit object: missing tree hash")
	}
	return CommitObj{Parents: parents, Text: r.rest(), Tree: ObjHash(treeHash)}, nil
}

func decodeLocalCommits(payload []byte) (LocalCommitsObj, error) {
	r := &nulReader{buf: payload}
	countStr, ok := r.field()
	if !ok {
		return nil, errMalformed("malformed local-commits object: missing count")
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return nil, errMalformed("malformed local-commits object: bad count")
	}
	out := make(LocalCommitsObj, count)
	for i := 0; i < count; i++ {
		h, ok := r.field()
		if !ok {
			return nil, errMalformed("malformed local-commits object: missing hash")
		}
		out[i] = NewCommitHash(ObjHash(h))
	}
	return out, nil
}

// AsFile asserts o is a File object.
func (o Obj) AsFile() (FileObj, error) {
	if o.Kind != KindFile {
		return FileObj{}, errMalformed("expected File object, got " + string(o.Kind))
	}
	return o.File, nil
}

// AsDelete asserts o is a Delete object.
func (o Obj) AsDelete() (DeleteObj, error) {
	if o.Kind != KindDelete {
		return DeleteObj{}, errMalformed("expected Delete object, got " + string(o.Kind))
	}
	return o.Delete, nil
}

// AsTree asserts o is a Tree object.
func (o Obj) AsTree() (TreeObj, error) {
	if o.Kind != KindTree {
		return nil, errMalformed("expected Tree object, got " + string(o.Kind))
	}
	return o.Tree, nil
}

// AsCommit asserts o is a Commit object.
func (o Obj) AsCommit() (CommitObj, error) {
	if o.Kind != KindCommit {
		return CommitObj{}, errMalformed("expected Commit object, got " + string(o.Kind))
	}
	return o.Commit, nil
}

// AsLocalCommits asserts o is a LocalCommits object.
func (o Obj) AsLocalCommits() (LocalCommitsObj, error) {
	if o.Kind != KindLocalCommits {
		return nil, errMalformed("expected LocalCommits object, got " + string(o.Kind))
	}
	return o.LocalCommits, nil
}

// Meta pairs an object with its content hash and compressed on-disk form,
// computed once so callers never hash the same bytes twice.
type Meta struct {
	Hash          ObjHash
	CompressedBuf CompressedBuf
	Obj           Obj
}

// NewMeta encodes, hashes, and compresses o in one step.
func NewMeta(o Obj) (Meta, error) {
	encoded, err := o.Encode()
	if err != nil {
		return Meta{}, err
	}
	hash := hashBytes(encoded)
	compressed, err := compress(encoded)
	if err != nil {
		return Meta{}, err
	}
	return Meta{Hash: hash, CompressedBuf: compressed, Obj: o}, nil
}
