package store

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// compressThreshold is the smallest payload worth paying gzip's framing
// overhead for; below it the raw bytes are stored as-is.
const compressThreshold = 256

// maybeCompress gzips payload if it's large enough to be worth it,
// reporting whether it did.
func maybeCompress(payload []byte) (out []byte, compressed bool, err error) {
	if len(payload) < compressThreshold {
		return payload, false, nil
	}
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	if err := w.Close(); err != nil {
		return nil, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return buf.Bytes(), true, nil
}

// maybeDecompress reverses maybeCompress.
func maybeDecompress(payload []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return payload, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return out, nil
}
