package tvc

import "github.com/klauspost/compress/zstd"

// compress applies the deterministic, loss-less compression TVC uses for
// every object before it touches the store. The hash is always computed
// over the pre-compression bytes (spec.md §4.2) so swapping the codec
// here never changes any ObjHash.
func compress(encoded []byte) (CompressedBuf, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errIO(err)
	}
	defer enc.Close()
	return CompressedBuf(enc.EncodeAll(encoded, nil)), nil
}

// decompress reverses compress, recovering the canonical encoded bytes.
func decompress(buf CompressedBuf) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errIO(err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(buf, nil)
	if err != nil {
		return nil, errIO(err)
	}
	return out, nil
}
