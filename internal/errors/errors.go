// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrGroupNotFound is returned when a sync or listing targets a group id
// that does not exist (or is inactive).
var ErrGroupNotFound = errors.New("group not found")

// ErrInvalidRepoURL is returned when a group's repository URL cannot be
// parsed into 'owner/name'.
type ErrInvalidRepoURL struct {
	URL string
}

func (e *ErrInvalidRepoURL) Error() string {
	return fmt.Sprintf("invalid repository URL: %q, expected https://github.com/owner/name", e.URL)
}

// ErrGroupNotConfigured is returned when the group exists but lacks the
// external coordinate needed for the requested sync.
type ErrGroupNotConfigured struct {
	Field string // "github_repo_url" or "jira_project_key"
}

func (e *ErrGroupNotConfigured) Error() string {
	return fmt.Sprintf("group has no %s configured", e.Field)
}
