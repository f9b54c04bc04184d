package errors

import (
	"strings"
	"unicode"
)

// ValidateProcedureID validates a procedure identifier for safety and correctness.
// Procedure IDs end up in file names, cache keys, and URL paths, so the rules
// are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateProcedureID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "procedure ID cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "procedure ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "procedure ID contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "procedure ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateProcedureName validates a human-facing procedure name.
// Names are display-only but still flow into logs and rendered output.
func ValidateProcedureName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "procedure name cannot be empty")
	}

	const maxNameLength = 256
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "procedure name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "procedure name contains invalid control characters")
		}
	}

	return nil
}
