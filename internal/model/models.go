// internal/model/models.go
package model

import "time"

// Group represents a student project group. Each group optionally carries
// the external coordinates used to drive syncs: a GitHub repository URL and
// a Jira project key.
type Group struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	GithubRepoURL  *string   `json:"github_repo_url,omitempty"`
	JiraProjectKey *string   `json:"jira_project_key,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// User is a local account that commit authors can be matched against.
type User struct {
	ID             int64
	Email          string
	FullName       string
	GithubUsername *string
	JiraAccountID  *string
	GroupID        *int64
	IsActive       bool
}

// Commit is an imported GitHub commit. SHA is the natural key and is unique
// across the whole store, not just within a group. UserID is resolved once
// at import time and never re-resolved.
type Commit struct {
	ID          int64     `json:"id"`
	SHA         string    `json:"commit_sha"`
	Message     string    `json:"message"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CommitDate  time.Time `json:"commit_date"`
	Additions   int       `json:"additions"`
	Deletions   int       `json:"deletions"`
	URL         string    `json:"url"`
	GroupID     int64     `json:"group_id"`
	UserID      *int64    `json:"user_id,omitempty"`
	DBCreatedAt time.Time `json:"-"`
}

// Requirement is an imported Jira issue. JiraIssueKey is the natural key;
// requirements are insert-only and never updated by subsequent syncs.
type Requirement struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	JiraIssueKey string    `json:"jira_issue_key"`
	JiraIssueURL string    `json:"jira_issue_url"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	GroupID      int64     `json:"group_id"`
	DBCreatedAt  time.Time `json:"-"`
}

// Issue is a normalized Jira issue as returned by the issue fetcher, before
// it is persisted as a Requirement.
type Issue struct {
	Key           string
	Summary       string
	Description   string
	Status        string
	Priority      string
	IssueType     string
	AssigneeName  string
	AssigneeEmail string
	Created       time.Time
	URL           string
}

// Sprint is a Jira agile sprint, passed through to callers without being
// persisted.
type Sprint struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// RepoStats holds ad hoc repository metadata, not persisted.
type RepoStats struct {
	OpenIssues int `json:"open_issues"`
	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
}

// Contributor is a GitHub contributor entry, not persisted.
type Contributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int    `json:"contributions"`
}

// IntegrationSetting is a global key/value configuration row used for
// third-party credentials. Upserted by key.
type IntegrationSetting struct {
	ID          int64
	Key         string
	Value       string
	Description *string
	UpdatedAt   time.Time
}
