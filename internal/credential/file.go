package credential

import (
	"os"
	"path/filepath"

	"github.com/denisbrodbeck/machineid"

	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// FileBackend stores a single credential value in a permission-restricted
// (0600) file, namespaced per machine via github.com/denisbrodbeck/machineid
// so two users sharing a home directory (or a CI runner image reused
// across machines) don't collide on the same path, matching the teacher's
// use of machineid.ProtectedID to scope its telemetry distinct_id
// (cmd/entire/cli/telemetry.NewClient).
type FileBackend struct {
	// Dir is the directory the credential file lives in. Callers
	// typically pass a subdirectory of the user's config/cache dir.
	Dir string
	// AppID scopes the protected machine ID the same way the teacher's
	// telemetry client scopes its distinct_id ("entire-cli" there).
	AppID string
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) path() (string, error) {
	id, err := machineid.ProtectedID(f.AppID)
	if err != nil {
		return "", giterrors.Wrap(giterrors.KindExternalTool, "resolving machine id", err)
	}
	return filepath.Join(f.Dir, "credential-"+id), nil
}

func (f *FileBackend) Store(value string) error {
	p, err := f.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "creating credential dir", err)
	}
	if err := os.WriteFile(p, []byte(value), 0o600); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "writing credential file", err)
	}
	return nil
}

func (f *FileBackend) Load() (string, bool, error) {
	p, err := f.path()
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p) //nolint:gosec // path is derived from a fixed dir + machine id, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, giterrors.Wrap(giterrors.KindExternalTool, "reading credential file", err)
	}
	return string(data), true, nil
}

func (f *FileBackend) Clear() error {
	p, err := f.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return giterrors.Wrap(giterrors.KindExternalTool, "removing credential file", err)
	}
	return nil
}
