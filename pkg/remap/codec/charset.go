package codec

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CharsetReader wraps r so that text in the named charset comes out as
// UTF-8. Empty or utf-8 names pass through untouched.
func CharsetReader(r io.Reader, name string) (io.Reader, error) {
	if isUTF8(name) {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// CharsetWriter wraps w so that UTF-8 written to it comes out in the
// named charset.
func CharsetWriter(w io.Writer, name string) (io.Writer, error) {
	if isUTF8(name) {
		return w, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "", "utf8", "utf-8":
		return true
	}
	return false
}
