package tvc

import (
	"encoding/hex"
	"testing"

	"lukechampine.com/blake3"
)

// TestFileObjHash confirms the hash fixture from the file-system object
// encoding: a File object's hash is computed over "FILE\0<content>",
// never just the content.
func TestFileObjHash(t *testing.T) {
	meta, err := NewMeta(NewFileObj([]byte("hello world!")))
	if err != nil {
		t.Fatalf("NewMeta failed: %v", err)
	}

	want := blake3.Sum256([]byte("FILE\x00hello world!"))
	if meta.Hash.String() != hex.EncodeToString(want[:]) {
		t.Errorf("Hash = %s, want %s", meta.Hash, hex.EncodeToString(want[:]))
	}
}

// TestTreeObjEncodingIsLiteralGrammar pins Tree's wire bytes to the exact
// NUL-delimited grammar TREE\0<count>\0(<path>\0<hash>\0){count}, entries
// in ascending path order, rather than any structured encoding.
func TestTreeObjEncodingIsLiteralGrammar(t *testing.T) {
	tree := TreeObj{"b.txt": "hash-b", "a.txt": "hash-a"}
	got, err := NewTreeObj(tree).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "TREE\x002\x00a.txt\x00hash-a\x00b.txt\x00hash-b\x00"
	if string(got) != want {
		t.Errorf("Tree encoding = %q, want %q", got, want)
	}
}

// TestCommitObjEncodingIsLiteralGrammar pins Commit's wire bytes to
// COMMIT<parent_count>\0(<parent_hash>\0){parent_count}<tree_hash>\0<text>
// — note there is no NUL between the "COMMIT" tag and the parent count.
func TestCommitObjEncodingIsLiteralGrammar(t *testing.T) {
	commit := CommitObj{
		Parents: []CommitHash{NewCommitHash("p1"), NewCommitHash("p2")},
		Text:    "a commit",
		Tree:    "tree-hash",
	}
	got, err := NewCommitObj(commit).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "COMMIT2\x00p1\x00p2\x00tree-hash\x00a commit"
	if string(got) != want {
		t.Errorf("Commit encoding = %q, want %q", got, want)
	}
}

// TestLocalCommitsObjEncodingIsLiteralGrammar pins LocalCommits' wire
// bytes to LOCAL_COMMITS\0<count>\0(<hash>\0){count}.
func TestLocalCommitsObjEncodingIsLiteralGrammar(t *testing.T) {
	commits := LocalCommitsObj{NewCommitHash("c1"), NewCommitHash("c2")}
	got, err := NewLocalCommitsObj(commits).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "LOCAL_COMMITS\x002\x00c1\x00c2\x00"
	if string(got) != want {
		t.Errorf("LocalCommits encoding = %q, want %q", got, want)
	}
}

// TestEncodeDecodeRoundTrip checks every object kind survives Encode then
// DecodeObj unchanged.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	tree := TreeObj{"a.txt": "hash-a", "b.txt": "hash-b"}
	commit := CommitObj{
		Parents: []CommitHash{NewCommitHash("parent-hash")},
		Text:    "a commit",
		Tree:    "tree-hash",
	}
	localCommits := LocalCommitsObj{NewCommitHash("c1"), NewCommitHash("c2")}

	cases := []struct {
		name string
		obj  Obj
	}{
		{"file", NewFileObj([]byte("content"))},
		{"delete", NewDeleteObj("prior-hash")},
		{"tree", NewTreeObj(tree)},
		{"commit", NewCommitObj(commit)},
		{"local_commits", NewLocalCommitsObj(localCommits)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded, err := c.obj.Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := DecodeObj(encoded)
			if err != nil {
				t.Fatalf("DecodeObj failed: %v", err)
			}
			if decoded.Kind != c.obj.Kind {
				t.Fatalf("Kind = %v, want %v", decoded.Kind, c.obj.Kind)
			}

			switch c.obj.Kind {
			case KindFile:
				got, _ := decoded.AsFile()
				if string(got.Buf) != "content" {
					t.Errorf("File.Buf = %q, want %q", got.Buf, "content")
				}
			case KindDelete:
				got, _ := decoded.AsDelete()
				if got.PriorHash != "prior-hash" {
					t.Errorf("Delete.PriorHash = %q, want %q", got.PriorHash, "prior-hash")
				}
			case KindTree:
				got, _ := decoded.AsTree()
				if len(got) != len(tree) || got["a.txt"] != "hash-a" {
					t.Errorf("Tree = %v, want %v", got, tree)
				}
			case KindCommit:
				got, _ := decoded.AsCommit()
				if got.Text != commit.Text || got.Tree != commit.Tree || len(got.Parents) != 1 {
					t.Errorf("Commit = %+v, want %+v", got, commit)
				}
			case KindLocalCommits:
				got, _ := decoded.AsLocalCommits()
				if len(got) != 2 || got[0] != localCommits[0] {
					t.Errorf("LocalCommits = %v, want %v", got, localCommits)
				}
			}
		})
	}
}

// TestDecodeObjMalformed checks a buffer with no NUL tag separator fails.
func TestDecodeObjMalformed(t *testing.T) {
	_, err := DecodeObj([]byte("not a tagged object"))
	if err == nil {
		t.Fatal("expected error for untagged buffer, got nil")
	}
}

func TestTreeChangedHash(t *testing.T) {
	tree := TreeObj{"a.txt": "hash-a"}

	if tree.ChangedHash("a.txt", "hash-a") {
		t.Error("ChangedHash should be false for an unchanged path")
	}
	if !tree.ChangedHash("a.txt", "hash-other") {
		t.Error("ChangedHash should be true when the hash differs")
	}
	if !tree.ChangedHash("missing.txt", "hash-a") {
		t.Error("ChangedHash should be true for a path absent from the tree")
	}
}

func TestTreeReplaceBy(t *testing.T) {
	tree := TreeObj{"a.txt": "hash-a", "b.txt": "hash-b"}
	tree.ReplaceBy(TreeObj{"b.txt": "hash-b2", "c.txt": "hash-c"})

	want := TreeObj{"a.txt": "hash-a", "b.txt": "hash-b2", "c.txt": "hash-c"}
	if len(tree) != len(want) {
		t.Fatalf("len(tree) = %d, want %d", len(tree), len(want))
	}
	for path, hash := range want {
		if tree[path] != hash {
			t.Errorf("tree[%q] = %q, want %q", path, tree[path], hash)
		}
	}
}
