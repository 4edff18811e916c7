//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"group-integration-sync/internal/config"
	"group-integration-sync/internal/database"
	"group-integration-sync/internal/github"
	"group-integration-sync/internal/jira"
	"group-integration-sync/internal/settings"
	"group-integration-sync/internal/syncer"
)

func setupTestDatabase(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New("file://../../migrations", connStr)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	dbpool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(dbpool.Close)

	return dbpool
}

func seedGroupAndUser(ctx context.Context, t *testing.T, dbpool *pgxpool.Pool) (groupID, userID int64) {
	t.Helper()

	err := dbpool.QueryRow(ctx, `
		INSERT INTO groups (name, github_repo_url, jira_project_key)
		VALUES ('Team Rocket', 'https://github.com/test-owner/test-repo.git', 'PROJ')
		RETURNING id`).Scan(&groupID)
	require.NoError(t, err)

	err = dbpool.QueryRow(ctx, `
		INSERT INTO users (email, full_name, github_username, group_id)
		VALUES ('alice@example.com', 'Alice', 'alice', $1)
		RETURNING id`, groupID).Scan(&userID)
	require.NoError(t, err)

	return groupID, userID
}

func TestSync_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool := setupTestDatabase(ctx, t)
	groupID, userID := seedGroupAndUser(ctx, t, dbpool)

	// Fake GitHub API: three commits, one authored by a known local user.
	ghServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/test-owner/test-repo/commits" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[
			{"sha": "aaa111", "commit": {"author": {"name": "Alice", "email": "alice@example.com", "date": "2024-01-03T12:00:00Z"}, "message": "feat: login"}, "html_url": "u1"},
			{"sha": "bbb222", "commit": {"author": {"name": "Bob", "email": "bob@nowhere.io", "date": "2024-01-02T12:00:00Z"}, "message": "fix: typo"}, "html_url": "u2"},
			{"sha": "ccc333", "commit": {"author": {"name": "Carol", "email": "carol@nowhere.io", "date": "2024-01-01T12:00:00Z"}, "message": "chore: deps"}, "html_url": "u3"}
		]`)
	}))
	defer ghServer.Close()

	// Fake Jira API: two issues, one with a rich-text description.
	jiraServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"issues": [
			{"key": "PROJ-1", "fields": {"summary": "Login page", "description": "plain", "status": {"name": "To Do"}, "issuetype": {"name": "Story"}, "created": "2024-01-01T00:00:00.000+0000"}},
			{"key": "PROJ-2", "fields": {"summary": "Rich", "description": {"type": "doc"}, "status": {"name": "Done"}, "issuetype": {"name": "Task"}, "created": "2024-01-02T00:00:00.000+0000"}}
		]}`)
	}))
	defer jiraServer.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	queries := database.New(dbpool)

	// Jira credentials arrive through the settings store, the way an admin
	// would configure them at runtime.
	for key, value := range map[string]string{
		settings.KeyJiraBaseURL:  jiraServer.URL,
		settings.KeyJiraEmail:    "svc@example.com",
		settings.KeyJiraAPIToken: "token",
	} {
		require.NoError(t, queries.UpsertIntegrationSetting(ctx, database.UpsertIntegrationSettingParams{
			Key: key, Value: value,
		}))
	}

	resolver := settings.NewResolver(queries, &config.Config{})
	appSyncer := syncer.NewSyncer(dbpool, resolver, logger, 100,
		syncer.WithCommitFetcherFactory(func(token string) syncer.CommitFetcher {
			return github.NewClient(token, logger, github.WithBaseURL(ghServer.URL))
		}),
		syncer.WithIssueFetcherFactory(func(creds settings.JiraCredentials) syncer.IssueFetcher {
			return jira.NewClient(creds, logger)
		}),
	)

	// --- Commits: first sync imports everything ---
	imported, err := appSyncer.SyncCommits(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	// --- Second sync is a no-op: natural keys dedupe ---
	imported, err = appSyncer.SyncCommits(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	commits, err := queries.ListCommitsByGroupID(ctx, database.ListCommitsByGroupIDParams{GroupID: groupID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "aaa111", commits[0].SHA, "newest first")

	// Alice's commit is linked to her local account, the others stay unlinked.
	require.NotNil(t, commits[0].UserID)
	assert.Equal(t, userID, *commits[0].UserID)
	assert.Nil(t, commits[1].UserID)

	// --- Issues: insert-only sync ---
	imported, err = appSyncer.SyncIssues(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	imported, err = appSyncer.SyncIssues(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	reqs, err := queries.ListRequirementsByGroupID(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		if r.JiraIssueKey == "PROJ-2" {
			assert.Equal(t, "[Rich text content]", r.Description)
			assert.Equal(t, "Medium", r.Priority)
		}
	}
}
