// Package versioncheck implements gitai's "newer version available"
// notice (SPEC_FULL.md §6.4), adapted from the teacher's
// cmd/entire/cli/versioncheck package: same GitHub-releases polling, same
// 24-hour local cache, same golang.org/x/mod/semver comparison, renamed
// from entire to gitai and retargeted at this repository's releases.
package versioncheck

import "time"

// VersionCache persists the last check time across invocations so the CLI
// doesn't hit the GitHub API on every command.
type VersionCache struct {
	LastCheckTime time.Time `json:"last_check_time"`
}

// GitHubRelease is the subset of GitHub's release API response this
// package needs.
type GitHubRelease struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
}

// githubAPIURL is the GitHub API endpoint for fetching the latest release.
// A package-level var (not const) so tests can redirect it to a local
// httptest.Server.
var githubAPIURL = "https://api.github.com/repos/git-ai-oss/gitai/releases/latest"

const (
	// checkInterval is the duration between version checks.
	checkInterval = 24 * time.Hour

	// httpTimeout is the timeout for HTTP requests to the GitHub API.
	httpTimeout = 2 * time.Second

	// cacheFileName is the name of the cache file in the global config directory.
	cacheFileName = "version_check.json"

	// globalConfigDirName is the global config directory under the user's home.
	globalConfigDirName = ".config/gitai"
)
