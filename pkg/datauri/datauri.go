// Package datauri encodes and decodes RFC 2397 data URIs.
//
// Icons travel between the decomposer, the raster projector and the
// description service as self-contained data URIs. Text is always encoded
// from its UTF-8 bytes, so markup containing non-ASCII characters (titles in
// any script, typographic quotes, emoji) round-trips unchanged:
//
//	uri := datauri.SVG(`<svg xmlns="http://www.w3.org/2000/svg"><title>café</title></svg>`)
//	mt, data, err := datauri.Parse(uri) // "image/svg+xml", original bytes
package datauri

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/matzehuels/spritetag/pkg/errors"
)

// Media types produced by this package.
const (
	MediaTypeSVG = "image/svg+xml"
	MediaTypePNG = "image/png"
)

const (
	scheme       = "data:"
	base64Marker = ";base64"
)

// EncodeText returns the standard padded base64 encoding of the UTF-8 bytes of s.
// It never fails and accepts any string, including invalid UTF-8, whose bytes
// are encoded as-is.
func EncodeText(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeText reverses [EncodeText].
func DecodeText(enc string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidDataURI, err, "decode base64 payload")
	}
	return string(b), nil
}

// SVG returns markup as a base64 "data:image/svg+xml" URI.
func SVG(markup string) string {
	return Encode(MediaTypeSVG, []byte(markup))
}

// PNG returns encoded PNG bytes as a base64 "data:image/png" URI.
func PNG(b []byte) string {
	return Encode(MediaTypePNG, b)
}

// Encode returns data as a base64 data URI of the given media type.
func Encode(mediaType string, data []byte) string {
	var sb strings.Builder
	sb.Grow(len(scheme) + len(mediaType) + len(base64Marker) + 1 + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString(scheme)
	sb.WriteString(mediaType)
	sb.WriteString(base64Marker)
	sb.WriteByte(',')
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}

// Parse splits a data URI into its media type and decoded payload.
// Both base64 and percent-encoded payloads are supported. A missing media
// type defaults to "text/plain" as in RFC 2397; media type parameters other
// than the base64 marker are dropped.
func Parse(uri string) (mediaType string, data []byte, err error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", nil, errors.New(errors.ErrCodeInvalidDataURI, "missing %q scheme", scheme)
	}
	header, payload, ok := strings.Cut(uri[len(scheme):], ",")
	if !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidDataURI, "missing payload separator")
	}

	isBase64 := strings.HasSuffix(header, base64Marker)
	header = strings.TrimSuffix(header, base64Marker)
	mediaType, _, _ = strings.Cut(header, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeInvalidDataURI, err, "decode base64 payload")
		}
		return mediaType, data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidDataURI, err, "decode percent-encoded payload")
	}
	return mediaType, []byte(text), nil
}

// Payload returns the raw (still encoded) payload after the comma, or "" when
// uri has no separator.
func Payload(uri string) string {
	_, payload, _ := strings.Cut(uri, ",")
	return payload
}
