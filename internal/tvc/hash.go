package tvc

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// hashBytes computes the stable ObjHash of an object's canonical,
// uncompressed, tag-prefixed encoding. Using BLAKE3 instead of a
// cryptographic-grade hash is a deliberate choice: spec.md only requires
// content-addressing stability (equal bytes -> equal hash), not
// collision resistance against an adversary, and BLAKE3 is the hash the
// one VCS in the retrieval pack that hashes objects (javanhut-IvaldiVCS)
// reaches for.
func hashBytes(encoded []byte) ObjHash {
	sum := blake3.Sum256(encoded)
	return ObjHash(hex.EncodeToString(sum[:]))
}
