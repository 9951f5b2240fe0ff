package download

import (
	"bytes"
	"fmt"
	"strings"
)

// MaxImageBytes is the largest image the fetcher will accept, declared or
// actual.
const MaxImageBytes = 50 * 1024 * 1024

// signature is a fixed byte prefix characteristic of an image file format.
type signature struct {
	prefix []byte
	label  string
}

// imageSignatures is checked in order against the leading bytes of a
// response body. RIFF is the container prefix webp uses; other riff formats
// match too.
var imageSignatures = []signature{
	{[]byte{0xFF, 0xD8, 0xFF}, "jpeg"},
	{[]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
	{[]byte("GIF87a"), "gif"},
	{[]byte("GIF89a"), "gif"},
	{[]byte("BM"), "bmp"},
	{[]byte("RIFF"), "webp"},
}

// validateHeaders checks a response's content-type and declared length
// before the body is read. contentLength is negative if the response did
// not declare a length.
func validateHeaders(contentType string, contentLength int64) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !strings.HasPrefix(ct, "image/") {
		return &ValidationError{
			Reason: fmt.Sprintf("content-type %q is not an image type", contentType),
		}
	}

	if contentLength > MaxImageBytes {
		return &ValidationError{
			Reason: fmt.Sprintf("image too large: declared %d bytes, cap %d", contentLength, MaxImageBytes),
		}
	}

	return nil
}

// validateSignature checks that the body's leading bytes match one of the
// known image signatures.
func validateSignature(body []byte) error {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(body, sig.prefix) {
			return nil
		}
	}

	return &ValidationError{Reason: "content does not match any known image signature"}
}
