// internal/database/queries.go
package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"group-integration-sync/internal/model"
)

const getGroupByID = `
SELECT id, name, description, github_repo_url, jira_project_key, is_active, created_at, updated_at
FROM groups
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetGroupByID(ctx context.Context, id int64) (model.Group, error) {
	var g model.Group
	err := q.db.QueryRow(ctx, getGroupByID, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.GithubRepoURL, &g.JiraProjectKey,
		&g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

const commitExists = `
SELECT EXISTS (SELECT 1 FROM commits WHERE commit_sha = $1)
`

func (q *Queries) CommitExists(ctx context.Context, sha string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, commitExists, sha).Scan(&exists)
	return exists, err
}

// CreateCommitParams holds one commit row. The insert is a no-op when the
// SHA is already present so that concurrent syncs degrade to skips instead
// of unique-violation failures.
type CreateCommitParams struct {
	SHA         string
	Message     string
	AuthorName  string
	AuthorEmail string
	CommitDate  time.Time
	Additions   int
	Deletions   int
	URL         string
	GroupID     int64
	UserID      *int64
}

const createCommit = `
INSERT INTO commits (commit_sha, message, author_name, author_email, commit_date, additions, deletions, url, group_id, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (commit_sha) DO NOTHING
`

func (q *Queries) CreateCommit(ctx context.Context, arg CreateCommitParams) (int64, error) {
	tag, err := q.db.Exec(ctx, createCommit,
		arg.SHA, arg.Message, arg.AuthorName, arg.AuthorEmail, arg.CommitDate,
		arg.Additions, arg.Deletions, arg.URL, arg.GroupID, arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type ListCommitsByGroupIDParams struct {
	GroupID int64
	Limit   int32
}

const listCommitsByGroupID = `
SELECT id, commit_sha, message, author_name, author_email, commit_date, additions, deletions, url, group_id, user_id, created_at
FROM commits
WHERE group_id = $1
ORDER BY commit_date DESC
LIMIT $2
`

func (q *Queries) ListCommitsByGroupID(ctx context.Context, arg ListCommitsByGroupIDParams) ([]model.Commit, error) {
	rows, err := q.db.Query(ctx, listCommitsByGroupID, arg.GroupID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []model.Commit
	for rows.Next() {
		var c model.Commit
		if err := rows.Scan(
			&c.ID, &c.SHA, &c.Message, &c.AuthorName, &c.AuthorEmail, &c.CommitDate,
			&c.Additions, &c.Deletions, &c.URL, &c.GroupID, &c.UserID, &c.DBCreatedAt,
		); err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

const requirementExists = `
SELECT EXISTS (SELECT 1 FROM requirements WHERE jira_issue_key = $1)
`

func (q *Queries) RequirementExists(ctx context.Context, jiraIssueKey string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, requirementExists, jiraIssueKey).Scan(&exists)
	return exists, err
}

type CreateRequirementParams struct {
	Title        string
	Description  string
	JiraIssueKey string
	JiraIssueURL string
	Priority     string
	Status       string
	GroupID      int64
}

const createRequirement = `
INSERT INTO requirements (title, description, jira_issue_key, jira_issue_url, priority, status, group_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (jira_issue_key) DO NOTHING
`

func (q *Queries) CreateRequirement(ctx context.Context, arg CreateRequirementParams) (int64, error) {
	tag, err := q.db.Exec(ctx, createRequirement,
		arg.Title, arg.Description, arg.JiraIssueKey, arg.JiraIssueURL,
		arg.Priority, arg.Status, arg.GroupID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listRequirementsByGroupID = `
SELECT id, title, description, jira_issue_key, jira_issue_url, priority, status, group_id, created_at
FROM requirements
WHERE group_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListRequirementsByGroupID(ctx context.Context, groupID int64) ([]model.Requirement, error) {
	rows, err := q.db.Query(ctx, listRequirementsByGroupID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []model.Requirement
	for rows.Next() {
		var r model.Requirement
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Description, &r.JiraIssueKey, &r.JiraIssueURL,
			&r.Priority, &r.Status, &r.GroupID, &r.DBCreatedAt,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// FindUserParams carries the two identities a commit author may match on.
type FindUserParams struct {
	Email          string
	GithubUsername string
}

const findUserByEmailOrGithubUsername = `
SELECT id, email, full_name, github_username, jira_account_id, group_id, is_active
FROM users
WHERE is_active = TRUE AND (email = $1 OR github_username = $2)
ORDER BY id
LIMIT 1
`

func (q *Queries) FindUserByEmailOrGithubUsername(ctx context.Context, arg FindUserParams) (model.User, error) {
	var u model.User
	err := q.db.QueryRow(ctx, findUserByEmailOrGithubUsername, arg.Email, arg.GithubUsername).Scan(
		&u.ID, &u.Email, &u.FullName, &u.GithubUsername, &u.JiraAccountID, &u.GroupID, &u.IsActive,
	)
	return u, err
}

const listIntegrationSettings = `
SELECT id, key, value, description, updated_at
FROM integration_settings
ORDER BY key
`

func (q *Queries) ListIntegrationSettings(ctx context.Context) ([]model.IntegrationSetting, error) {
	rows, err := q.db.Query(ctx, listIntegrationSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.IntegrationSetting
	for rows.Next() {
		var s model.IntegrationSetting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

const getIntegrationSettingValue = `
SELECT value FROM integration_settings WHERE key = $1
`

// GetIntegrationSettingValue returns the empty string, not an error, when
// the key is absent.
func (q *Queries) GetIntegrationSettingValue(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRow(ctx, getIntegrationSettingValue, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return value, err
}

type UpsertIntegrationSettingParams struct {
	Key         string
	Value       string
	Description string
}

const upsertIntegrationSetting = `
INSERT INTO integration_settings (key, value, description, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`

func (q *Queries) UpsertIntegrationSetting(ctx context.Context, arg UpsertIntegrationSettingParams) error {
	_, err := q.db.Exec(ctx, upsertIntegrationSetting, arg.Key, arg.Value, arg.Description)
	return err
}
