package github

import (
	"fmt"
	"strings"
)

// RepoInfo identifies a repository on a GitHub host
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseGitHubRemoteURL extracts hostname, owner and repo from a remote URL.
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo
func ParseGitHubRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")

	var hostname, path string
	switch {
	case strings.Contains(remoteURL, "://"):
		rest := remoteURL[strings.Index(remoteURL, "://")+3:]
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		hostname, path, _ = strings.Cut(rest, "/")
	case strings.Contains(remoteURL, "@"):
		_, hostAndPath, _ := strings.Cut(remoteURL, "@")
		if host, p, ok := strings.Cut(hostAndPath, ":"); ok {
			hostname, path = host, p
		} else {
			hostname, path, _ = strings.Cut(hostAndPath, "/")
		}
	default:
		return nil, fmt.Errorf("unsupported remote URL: %s", remoteURL)
	}

	// Drop a port from ssh://host:22/owner/repo.
	hostname, _, _ = strings.Cut(hostname, ":")

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if hostname == "" || len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL: %s", remoteURL)
	}

	return &RepoInfo{
		Hostname: hostname,
		Owner:    parts[len(parts)-2],
		Repo:     parts[len(parts)-1],
	}, nil
}
