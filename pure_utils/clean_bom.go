package pure_utils

import (
	"bufio"
	"bytes"
	"io"
)

var utf8Bom = []byte{0xef, 0xbb, 0xbf}

// NewReaderWithoutBom drops a leading UTF-8 byte order mark, which spreadsheet exports
// often put in front of the header row.
func NewReaderWithoutBom(r io.Reader) io.Reader {
	buf := bufio.NewReader(r)
	head, err := buf.Peek(len(utf8Bom))
	if err == nil && bytes.Equal(head, utf8Bom) {
		_, _ = buf.Discard(len(utf8Bom))
	}
	return buf
}
