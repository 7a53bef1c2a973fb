package credential

import (
	"bytes"
	"os/exec"
	"runtime"

	"github.com/git-ai-oss/gitai/internal/giterrors"
)

// KeychainBackend stores a credential in the platform's native secret
// store by shelling out to its CLI, the same pattern the teacher uses for
// git itself (cmd/entire/cli/git_operations.go: "uses git CLI instead of
// go-git... doesn't want to vendor bindings for" a platform-specific
// integration). macOS uses /usr/bin/security, Linux uses secret-tool
// (libsecret), Windows uses cmdkey.
type KeychainBackend struct {
	// Service namespaces the credential within the platform store (e.g.
	// "gitai").
	Service string
	// Account identifies the credential within Service (e.g. a username
	// or "default").
	Account string
}

func (k *KeychainBackend) Name() string { return "keychain" }

func (k *KeychainBackend) Store(value string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("security", "add-generic-password", "-U",
			"-s", k.Service, "-a", k.Account, "-w", value)
	case "windows":
		cmd = exec.Command("cmdkey", "/generic:"+k.Service+"/"+k.Account, "/user:"+k.Account, "/pass:"+value)
	default:
		cmd = exec.Command("secret-tool", "store",
			"--label", k.Service, "service", k.Service, "account", k.Account)
		cmd.Stdin = bytes.NewBufferString(value)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return giterrors.Wrap(giterrors.KindExternalTool, "storing credential: "+string(out), err)
	}
	return nil
}

func (k *KeychainBackend) Load() (string, bool, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("security", "find-generic-password", "-w",
			"-s", k.Service, "-a", k.Account)
	case "windows":
		// cmdkey has no programmatic read API; callers on Windows should
		// fall back to FileBackend (documented, not papered over).
		return "", false, giterrors.New(giterrors.KindExternalTool, "keychain read unsupported on windows")
	default:
		cmd = exec.Command("secret-tool", "lookup", "service", k.Service, "account", k.Account)
	}
	out, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return "", false, nil // not found is not an error
		}
		return "", false, giterrors.Wrap(giterrors.KindExternalTool, "loading credential", err)
	}
	value := string(bytes.TrimRight(out, "\n"))
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (k *KeychainBackend) Clear() error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("security", "delete-generic-password", "-s", k.Service, "-a", k.Account)
	case "windows":
		cmd = exec.Command("cmdkey", "/delete:"+k.Service+"/"+k.Account)
	default:
		cmd = exec.Command("secret-tool", "clear", "service", k.Service, "account", k.Account)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil // nothing to clear
		}
		return giterrors.Wrap(giterrors.KindExternalTool, "clearing credential: "+string(out), err)
	}
	return nil
}
