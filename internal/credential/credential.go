// Package credential implements spec.md §6.2's credential backend
// interface: store/load/clear/name, with two implementations (an
// OS-keychain-shaped backend and a permission-restricted file backend).
// Errors are treated as non-fatal by every caller, matching the teacher's
// "best-effort, never block the CLI" telemetry/credential posture
// (cmd/entire/cli/telemetry.NewClient falling back to a no-op on any
// setup error).
package credential

// Backend is spec.md §6.2's credential backend trait.
type Backend interface {
	// Name identifies the backend for diagnostics (e.g. "keychain", "file").
	Name() string

	// Store persists value under this backend's single slot.
	Store(value string) error

	// Load retrieves the stored value. ok is false if nothing is stored.
	Load() (value string, ok bool, err error)

	// Clear removes the stored value, if any. Clearing an empty backend
	// is not an error.
	Clear() error
}
