package wrapper

import (
	"testing"
	"time"
)

func TestParseAliases(t *testing.T) {
	out := ParseAliases("alias.co checkout\nalias.st status -sb\n")
	if out["co"] != "checkout" {
		t.Fatalf("co = %q, want checkout", out["co"])
	}
	if out["st"] != "status -sb" {
		t.Fatalf("st = %q, want %q", out["st"], "status -sb")
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}

func TestParseAliasesEmpty(t *testing.T) {
	if out := ParseAliases(""); len(out) != 0 {
		t.Fatalf("expected no aliases, got %v", out)
	}
}

func TestResolveAliasNoMatch(t *testing.T) {
	args := []string{"status"}
	resolved, shell := ResolveAlias(args, map[string]string{"co": "checkout"})
	if shell {
		t.Fatal("expected not a shell alias")
	}
	if len(resolved) != 1 || resolved[0] != "status" {
		t.Fatalf("resolved = %v", resolved)
	}
}

func TestResolveAliasExpandsAndKeepsTrailingArgs(t *testing.T) {
	resolved, shell := ResolveAlias([]string{"co", "main"}, map[string]string{"co": "checkout"})
	if shell {
		t.Fatal("expected not a shell alias")
	}
	if len(resolved) != 2 || resolved[0] != "checkout" || resolved[1] != "main" {
		t.Fatalf("resolved = %v", resolved)
	}
}

func TestResolveAliasChain(t *testing.T) {
	aliases := map[string]string{
		"save": "ci",
		"ci":   "commit",
	}
	resolved, shell := ResolveAlias([]string{"save", "-m", "msg"}, aliases)
	if shell {
		t.Fatal("expected not a shell alias")
	}
	if len(resolved) != 3 || resolved[0] != "commit" || resolved[1] != "-m" || resolved[2] != "msg" {
		t.Fatalf("resolved = %v", resolved)
	}
}

func TestResolveAliasCycleFallsThroughAsShellAlias(t *testing.T) {
	aliases := map[string]string{
		"a": "b",
		"b": "a",
	}
	_, shell := ResolveAlias([]string{"a"}, aliases)
	if !shell {
		t.Fatal("expected cycle to be treated as a shell-alias pass-through")
	}
}

func TestResolveAliasShellAliasDetected(t *testing.T) {
	aliases := map[string]string{"hook": "!echo hi"}
	_, shell := ResolveAlias([]string{"hook"}, aliases)
	if !shell {
		t.Fatal("expected shell alias detection")
	}
}

func TestClassifyCommand(t *testing.T) {
	cases := map[string]CommandClass{
		"commit":      ClassCommit,
		"rebase":      ClassRebase,
		"cherry-pick": ClassCherryPick,
		"reset":       ClassReset,
		"merge":       ClassMerge,
		"fetch":       ClassFetch,
		"pull":        ClassPull,
		"push":        ClassPush,
		"clone":       ClassClone,
		"status":      ClassOther,
	}
	for sub, want := range cases {
		if got := ClassifyCommand(sub); got != want {
			t.Errorf("ClassifyCommand(%q) = %q, want %q", sub, got, want)
		}
	}
}

func TestHasFlag(t *testing.T) {
	if !hasFlag([]string{"commit", "--amend"}, "--amend") {
		t.Fatal("expected --amend to be found")
	}
	if hasFlag([]string{"commit", "-m", "msg"}, "--amend") {
		t.Fatal("did not expect --amend to be found")
	}
}

func TestExceedsBudgetWithinAbsoluteCeiling(t *testing.T) {
	if ExceedsBudget(ClassCommit, 2*time.Second, 100*time.Millisecond) {
		t.Fatal("overhead under the absolute ceiling must never exceed budget")
	}
}

func TestExceedsBudgetRelativeGroundSaves(t *testing.T) {
	// Over the absolute ceiling but the subprocess itself was long enough
	// that 1.1x its duration easily covers the overhead: not a violation.
	if ExceedsBudget(ClassCommit, 10*time.Second, 300*time.Millisecond) {
		t.Fatal("a small overhead against a long subprocess must not violate the relative ground")
	}
}

func TestExceedsBudgetBothGroundsFail(t *testing.T) {
	// A near-instant subprocess with 300ms of overhead fails both grounds
	// for ClassCommit (absolute ceiling 270ms, relative ceiling 1.1x).
	if !ExceedsBudget(ClassCommit, 10*time.Millisecond, 300*time.Millisecond) {
		t.Fatal("expected budget violation when both grounds fail")
	}
}

func TestExceedsBudgetOtherClassHasNoRelativeGround(t *testing.T) {
	if !ExceedsBudget(ClassOther, 10*time.Second, 300*time.Millisecond) {
		t.Fatal("ClassOther has no relative ground to fall back on once past the absolute ceiling")
	}
}

func TestExceedsBudgetFetchUsesWiderRelativeCeiling(t *testing.T) {
	if ExceedsBudget(ClassFetch, 1*time.Second, 300*time.Millisecond) {
		t.Fatal("fetch's 1.5x relative ceiling should absorb this overhead")
	}
}
