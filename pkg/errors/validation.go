package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxTitleLength = 512

// ValidateTitle validates a free-text title used to look up datasets,
// aggregates or series by name.
//
//   - No empty (or whitespace-only) titles
//   - No control characters
//   - Maximum length of 512 bytes
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "title cannot be empty")
	}
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", maxTitleLength)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}
	return nil
}

// ValidateFilename validates the name of a downloaded file before it is
// written to an output directory. Names come from upstream resource titles,
// so anything that could escape the directory is rejected.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "filename cannot be %q", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators: %q", name)
	}
	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}
	const maxFilenameLength = 255
	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidPath, "filename too long (max %d bytes)", maxFilenameLength)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

var ufRegex = regexp.MustCompile(`^[A-Za-z]{2}$`)

// ValidateUF validates a two-letter federative unit abbreviation (e.g. "SP").
// It checks the shape only; package labels knows the actual units.
func ValidateUF(uf string) error {
	if !ufRegex.MatchString(uf) {
		return New(ErrCodeInvalidInput, "invalid UF abbreviation: %q", uf)
	}
	return nil
}
