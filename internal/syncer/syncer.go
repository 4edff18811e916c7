// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"group-integration-sync/internal/database"
	cerrors "group-integration-sync/internal/errors"
	"group-integration-sync/internal/github"
	"group-integration-sync/internal/jira"
	"group-integration-sync/internal/model"
	"group-integration-sync/internal/settings"
)

// Commit messages are truncated to this display length before storage.
const maxCommitMessageLen = 500

// CommitFetcher is the external source-control listing dependency. The real
// implementation is github.Client; tests substitute a mock.
type CommitFetcher interface {
	FetchCommits(ctx context.Context, owner, repo string, maxCount int) []model.Commit
}

// IssueFetcher is the external issue-tracker dependency.
type IssueFetcher interface {
	SearchProjectIssues(ctx context.Context, projectKey string) []model.Issue
}

// Syncer orchestrates one-way, insert-only imports of external records into
// local storage. Each call is a stateless batch pass; the persisted natural
// keys (commit SHA, Jira issue key) are the only dedup state.
type Syncer struct {
	dbpool   *pgxpool.Pool
	resolver *settings.Resolver
	logger   *slog.Logger

	commitFetchLimit int

	// Fetchers are rebuilt per sync so credential changes take effect
	// without a restart. Tests override the factories.
	newCommitFetcher func(token string) CommitFetcher
	newIssueFetcher  func(creds settings.JiraCredentials) IssueFetcher
}

// Option overrides a Syncer dependency, mainly to point fetchers at test
// servers.
type Option func(*Syncer)

// WithCommitFetcherFactory replaces the GitHub client factory.
func WithCommitFetcherFactory(f func(token string) CommitFetcher) Option {
	return func(s *Syncer) { s.newCommitFetcher = f }
}

// WithIssueFetcherFactory replaces the Jira client factory.
func WithIssueFetcherFactory(f func(creds settings.JiraCredentials) IssueFetcher) Option {
	return func(s *Syncer) { s.newIssueFetcher = f }
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(dbpool *pgxpool.Pool, resolver *settings.Resolver, logger *slog.Logger, commitFetchLimit int, opts ...Option) *Syncer {
	s := &Syncer{
		dbpool:           dbpool,
		resolver:         resolver,
		logger:           logger,
		commitFetchLimit: commitFetchLimit,
		newCommitFetcher: func(token string) CommitFetcher {
			return github.NewClient(token, logger)
		},
		newIssueFetcher: func(creds settings.JiraCredentials) IssueFetcher {
			return jira.NewClient(creds, logger)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncCommits imports new commits for a group and returns the number of
// newly persisted records. All inserts of one invocation share a
// transaction.
func (s *Syncer) SyncCommits(ctx context.Context, groupID int64) (int, error) {
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op once the transaction is committed.

	qtx := database.New(tx)
	n, err := s.syncCommits(ctx, qtx, groupID)
	if err != nil {
		return 0, err
	}

	return n, tx.Commit(ctx)
}

// SyncIssues imports new Jira issues for a group as requirements and
// returns the number of newly persisted records.
func (s *Syncer) SyncIssues(ctx context.Context, groupID int64) (int, error) {
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	qtx := database.New(tx)
	n, err := s.syncIssues(ctx, qtx, groupID)
	if err != nil {
		return 0, err
	}

	return n, tx.Commit(ctx)
}

// syncCommits does the batch pass against a Querier. Group validation runs
// before any outbound call.
func (s *Syncer) syncCommits(ctx context.Context, q database.Querier, groupID int64) (int, error) {
	logger := s.logger.With("group_id", groupID)

	group, err := q.GetGroupByID(ctx, groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, cerrors.ErrGroupNotFound
	} else if err != nil {
		return 0, err
	}

	if group.GithubRepoURL == nil || *group.GithubRepoURL == "" {
		return 0, &cerrors.ErrGroupNotConfigured{Field: "github_repo_url"}
	}
	owner, repo, err := ParseRepoURL(*group.GithubRepoURL)
	if err != nil {
		return 0, err
	}
	logger = logger.With("owner", owner, "repo", repo)

	creds, err := s.resolver.GitHub(ctx)
	if err != nil {
		return 0, err
	}

	fetcher := s.newCommitFetcher(creds.Token)
	commits := fetcher.FetchCommits(ctx, owner, repo, s.commitFetchLimit)
	logger.Info("Fetched commits from GitHub", "count", len(commits))

	inserted := 0
	for _, commit := range commits {
		exists, err := q.CommitExists(ctx, commit.SHA)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}

		userID, err := matchAuthor(ctx, q, commit.AuthorEmail, commit.AuthorName)
		if err != nil {
			return 0, err
		}

		n, err := q.CreateCommit(ctx, database.CreateCommitParams{
			SHA:         commit.SHA,
			Message:     truncate(commit.Message, maxCommitMessageLen),
			AuthorName:  commit.AuthorName,
			AuthorEmail: commit.AuthorEmail,
			CommitDate:  commit.CommitDate,
			Additions:   commit.Additions,
			Deletions:   commit.Deletions,
			URL:         commit.URL,
			GroupID:     groupID,
			UserID:      userID,
		})
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	logger.Info("Commit sync finished", "imported", inserted)
	return inserted, nil
}

func (s *Syncer) syncIssues(ctx context.Context, q database.Querier, groupID int64) (int, error) {
	logger := s.logger.With("group_id", groupID)

	group, err := q.GetGroupByID(ctx, groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, cerrors.ErrGroupNotFound
	} else if err != nil {
		return 0, err
	}

	if group.JiraProjectKey == nil || *group.JiraProjectKey == "" {
		return 0, &cerrors.ErrGroupNotConfigured{Field: "jira_project_key"}
	}
	projectKey := *group.JiraProjectKey
	logger = logger.With("project", projectKey)

	creds, err := s.resolver.Jira(ctx)
	if err != nil {
		return 0, err
	}
	if !creds.Complete() {
		// Fail softly: credentials can be supplied later via the settings
		// API, and a sync without them imports nothing.
		logger.Warn("Jira credentials incomplete, skipping issue fetch")
		return 0, nil
	}

	fetcher := s.newIssueFetcher(creds)
	issues := fetcher.SearchProjectIssues(ctx, projectKey)
	logger.Info("Fetched issues from Jira", "count", len(issues))

	inserted := 0
	for _, issue := range issues {
		exists, err := q.RequirementExists(ctx, issue.Key)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}

		n, err := q.CreateRequirement(ctx, database.CreateRequirementParams{
			Title:        issue.Summary,
			Description:  issue.Description,
			JiraIssueKey: issue.Key,
			JiraIssueURL: issue.URL,
			Priority:     issue.Priority,
			Status:       issue.Status,
			GroupID:      groupID,
		})
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	logger.Info("Issue sync finished", "imported", inserted)
	return inserted, nil
}

// truncate cuts s down to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
