package errors

import (
	"strings"
	"unicode"
)

// MaxLabelLength bounds node and button labels.
const MaxLabelLength = 120

// ValidateLabel validates a user-supplied node or button label.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only labels
//   - No control characters (labels are rendered verbatim in the canvas)
//   - Maximum length of MaxLabelLength runes
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}

	if len([]rune(label)) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidateSlotKey validates a storage slot key for safety.
// File-backed storage maps keys onto paths, so keys must not escape the
// storage directory.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 200 characters
//   - No null bytes or control characters
//   - No absolute keys (must be relative)
//   - No path traversal sequences (..) or empty segments (//)
//   - No backslashes (Windows-style paths)
func ValidateSlotKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "slot key cannot be empty")
	}

	const maxKeyLength = 200
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "slot key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "slot key contains invalid characters")
		}
	}

	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidKey, "slot key must be relative (cannot start with /)")
	}

	dangerousPatterns := []string{
		"..", // Parent directory
		"//", // Empty segment
		"\\", // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "slot key contains invalid sequence: %q", pattern)
		}
	}

	return nil
}

// ValidateWorkspace validates a workspace name used as a slot namespace.
// Workspaces are a single key segment, so slashes are not allowed.
func ValidateWorkspace(name string) error {
	if name == "" {
		return New(ErrCodeInvalidKey, "workspace cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidKey, "workspace cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidKey, "workspace cannot start with a dot")
	}
	return ValidateSlotKey(name)
}
