package cli

import "testing"

func TestKnownSubcommandsListsEveryRegisteredCommand(t *testing.T) {
	known := KnownSubcommands()
	for _, name := range []string{
		"checkpoint", "blame", "stats", "show", "show-prompt",
		"status", "diff", "squash-authorship", "sync-prompts", "version",
		"help", "completion",
	} {
		if !known[name] {
			t.Errorf("expected %q to be a known subcommand", name)
		}
	}
	if known["log"] {
		t.Error("expected a plain git subcommand like 'log' not to be known")
	}
}

func TestDistinctIDNeverEmpty(t *testing.T) {
	if distinctID() == "" {
		t.Error("distinctID should fall back to \"unknown\" rather than returning an empty string")
	}
}
