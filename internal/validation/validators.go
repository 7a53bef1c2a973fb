// Package validation provides input validation with no internal
// dependencies, to avoid import cycles with packages that use it to guard
// path construction (logging, workinglog, promptstore).
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches the characters gitai allows in identifiers that
// end up embedded in file paths: alphanumerics, underscores, and hyphens.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// hexRegex matches lowercase hexadecimal strings, used for git object
// hashes and prompt hashes.
var hexRegex = regexp.MustCompile(`^[0-9a-f]+$`)

// ValidateSessionID rejects session IDs containing path separators, which
// would otherwise allow path traversal when used to name log files.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("invalid session ID %q: contains path separators", id)
	}
	return nil
}

// ValidateInvocationID validates a wrapper-pipeline invocation ID used to
// name per-invocation log files.
func ValidateInvocationID(id string) error {
	if id == "" {
		return errors.New("invocation ID cannot be empty")
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid invocation ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}

// ValidateCommitHex validates that s looks like a git object hash (lowercase
// hex, SHA-1 or SHA-256 length), since it is used to construct working-log
// directory paths.
func ValidateCommitHex(s string) error {
	if s == "" {
		return errors.New("commit hash cannot be empty")
	}
	if len(s) != 40 && len(s) != 64 {
		return fmt.Errorf("invalid commit hash %q: unexpected length %d", s, len(s))
	}
	if !hexRegex.MatchString(s) {
		return fmt.Errorf("invalid commit hash %q: must be lowercase hex", s)
	}
	return nil
}

// ValidatePromptHash validates a prompt content hash used as a prompt
// store key and as a directory-safe identifier.
func ValidatePromptHash(s string) error {
	if s == "" {
		return errors.New("prompt hash cannot be empty")
	}
	if !hexRegex.MatchString(s) {
		return fmt.Errorf("invalid prompt hash %q: must be lowercase hex", s)
	}
	return nil
}
