package object

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLen is how many leading bytes stores read to detect content type.
const SniffLen = 3072

// Sniff reads up to SniffLen bytes from r and reports their detected MIME
// type. The returned head must be written before the rest of r.
func Sniff(r io.Reader) (head []byte, mimeType string, err error) {
	buf := make([]byte, SniffLen)
	n, readErr := io.ReadFull(r, buf)
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return nil, "", readErr
	}
	head = buf[:n]
	return head, mimetype.Detect(head).String(), nil
}
