// Package codec implements the reversible mapping between a source URL and
// a filesystem-safe artifact name. The name is the unpadded URL-safe base64
// of the URL's UTF-8 bytes, so it is valid both as a filename and as a URL
// path segment.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrDecode is returned when a name is not a valid encoded URL. Callers
// treat it as "not a recognized artifact name".
var ErrDecode = errors.New("name is not a valid encoded url")

// Encode returns the artifact name for url. Deterministic: the same URL
// always yields the same name.
func Encode(url string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(url))
}

// Decode recovers the URL an artifact name was derived from. Fails with
// ErrDecode when the name is not valid base64 or does not decode to UTF-8.
func Decode(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrDecode)
	}
	raw, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: decoded bytes are not utf-8", ErrDecode)
	}
	return string(raw), nil
}
