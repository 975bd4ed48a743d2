package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components and
// carries one of the supported extensions (.json, .toml).
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "manifest filename contains invalid control characters")
		}
	}

	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".json") && !strings.HasSuffix(lower, ".toml") {
		return New(ErrCodeInvalidManifest, "manifest must be .json or .toml: %q", filename)
	}

	return nil
}

// ValidatePageCount rejects empty collections. A layout needs at least one page
// to anchor the first rect.
func ValidatePageCount(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidManifest, "manifest has no pages")
	}
	return nil
}

// ValidateDimensions rejects dimensions that cannot be placed at all.
//
// Zero and negative sizes are tolerated by the layout strategies themselves;
// this check is for input boundaries (manifest files, API bodies) where NaN or
// infinite values would poison every downstream comparison.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "page dimensions must be finite numbers")
		}
	}
	return nil
}

// ValidatePageIndex checks that index addresses one of count pages.
func ValidatePageIndex(index, count int) error {
	if index < 0 || index >= count {
		return New(ErrCodeInvalidPage, "page %d out of range [0, %d)", index, count)
	}
	return nil
}
