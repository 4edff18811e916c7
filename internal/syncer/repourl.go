// internal/syncer/repourl.go
package syncer

import (
	"net/url"
	"strings"

	cerrors "group-integration-sync/internal/errors"
)

// ParseRepoURL extracts the owner and repository name from a GitHub
// repository URL. Accepts https://github.com/owner/name with or without a
// trailing .git suffix or extra path segments.
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), ".git")

	u, parseErr := url.Parse(trimmed)
	if parseErr != nil || u.Host == "" {
		return "", "", &cerrors.ErrInvalidRepoURL{URL: repoURL}
	}
	host := strings.ToLower(u.Host)
	if host != "github.com" && host != "www.github.com" {
		return "", "", &cerrors.ErrInvalidRepoURL{URL: repoURL}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &cerrors.ErrInvalidRepoURL{URL: repoURL}
	}
	return parts[0], parts[1], nil
}
