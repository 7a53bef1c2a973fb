package wrapper

import "strings"

// maxAliasExpansions bounds alias-expansion recursion (spec.md §4.7 step 1:
// "Resolve up to a bounded number of alias expansions").
const maxAliasExpansions = 10

// ParseAliases parses the output of `git config --get-regexp ^alias\.`
// (one "alias.<name> <expansion>" pair per line) into a name→expansion map.
func ParseAliases(configOutput string) map[string]string {
	aliases := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(configOutput), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimPrefix(parts[0], "alias.")
		aliases[name] = parts[1]
	}
	return aliases
}

// ResolveAlias expands args[0] against aliases, up to maxAliasExpansions
// times. It reports shellAlias=true when the expansion bottoms out in a
// shell alias ("!...") or a cycle, either of which spec.md §4.7 step 1
// requires falling through to a pass-through pipeline with no hook work.
func ResolveAlias(args []string, aliases map[string]string) (expanded []string, shellAlias bool) {
	if len(args) == 0 {
		return args, false
	}

	cmd := args[0]
	rest := append([]string{}, args[1:]...)
	seen := make(map[string]bool)

	for i := 0; i < maxAliasExpansions; i++ {
		expansion, ok := aliases[cmd]
		if !ok {
			return append([]string{cmd}, rest...), false
		}
		if seen[cmd] {
			return append([]string{cmd}, rest...), true
		}
		seen[cmd] = true

		if strings.HasPrefix(expansion, "!") {
			return append([]string{cmd}, rest...), true
		}

		fields := strings.Fields(expansion)
		if len(fields) == 0 {
			return append([]string{cmd}, rest...), false
		}
		cmd = fields[0]
		rest = append(append([]string{}, fields[1:]...), rest...)
	}

	return append([]string{cmd}, rest...), true
}
