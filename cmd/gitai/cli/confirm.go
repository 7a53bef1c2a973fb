package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// confirm asks the user a yes/no question before a destructive operation
// (spec.md §6.3's squash-authorship and sync-prompts overwrite confirmations).
// It uses huh's interactive form when stdin is a TTY and ACCESSIBLE is
// unset, matching the teacher's accessibility posture documented in
// root.go's environment-variable help text, and falls back to a plain
// stdin y/n prompt otherwise (golang.org/x/term.IsTerminal, the same
// library the teacher already depends on for raw-mode detection).
func confirm(title, description string) (bool, error) {
	if os.Getenv("ACCESSIBLE") != "" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return confirmPlain(title, description)
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return confirmed, nil
}

func confirmPlain(title, description string) (bool, error) {
	fmt.Fprintln(os.Stderr, title)
	if description != "" {
		fmt.Fprintln(os.Stderr, description)
	}
	fmt.Fprint(os.Stderr, "Proceed? [y/N] ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, nil // no input available: treat as declined, not an error
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
