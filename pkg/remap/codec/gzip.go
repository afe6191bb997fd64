package codec

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// IsGzipPath reports whether a file name asks for gzip framing.
func IsGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// GzipReader transparently decompresses. The caller must Close the
// returned reader.
func GzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// GzipWriter compresses everything written to it; Close flushes the
// trailing gzip frame.
func GzipWriter(w io.Writer) io.WriteCloser {
	return gzip.NewWriter(w)
}
