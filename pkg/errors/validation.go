package errors

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode"
)

// MediaTypeSVG is the only media type accepted for uploads.
const MediaTypeSVG = "image/svg+xml"

// maxUploadNameLength bounds source file names; they end up in icon IDs.
const maxUploadNameLength = 255

// ValidateUploadName validates the name of an uploaded sprite file.
// The name is later used to synthesize icon identifiers, so the rules are
// conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path components (a plain basename only)
//   - Maximum length of 255 characters
func ValidateUploadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}

	if len(name) > maxUploadNameLength {
		return New(ErrCodeInvalidInput, "file name too long (max %d characters)", maxUploadNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "file name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "file name cannot contain path separators")
	}

	return nil
}

// ValidateSVGExtension checks that a picked file carries the .svg extension.
// The comparison is case-insensitive.
func ValidateSVGExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".svg") {
		return New(ErrCodeInvalidMediaType, "file %q is not an .svg file", name)
	}
	return nil
}

// ValidateMediaType checks that a Content-Type header denotes SVG content.
// Parameters such as charset are ignored.
func ValidateMediaType(contentType string) error {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Wrap(ErrCodeInvalidMediaType, err, "invalid content type %q", contentType)
	}
	if mt != MediaTypeSVG {
		return New(ErrCodeInvalidMediaType, "unsupported media type %q (want %s)", mt, MediaTypeSVG)
	}
	return nil
}
