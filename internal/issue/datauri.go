package issue

import (
	"encoding/base64"
	"errors"
	"regexp"
)

var ErrNotImageDataURI = errors.New("not a base64 image data URI")

// imageDataURI accepts exactly data:image/<subtype>;base64,<payload> with a
// single-line standard base64 payload.
var imageDataURI = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,([A-Za-z0-9+/]*={0,2})$`)

// IsImageDataURI reports whether s has the form ImageDataURISize accepts.
func IsImageDataURI(s string) bool {
	_, _, err := ImageDataURISize(s)
	return err == nil
}

// ImageDataURISize validates s and returns the media type and the byte length
// the payload decodes to. The payload itself is not decoded.
func ImageDataURISize(s string) (mediaType string, size int64, err error) {
	m := imageDataURI.FindStringSubmatch(s)
	if m == nil {
		return "", 0, ErrNotImageDataURI
	}
	payload := m[2]
	if len(payload)%4 != 0 {
		return "", 0, ErrNotImageDataURI
	}
	return m[1], int64(base64.StdEncoding.DecodedLen(len(payload)) - padding(payload)), nil
}

func padding(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '='; i-- {
		n++
	}
	return n
}
