// internal/database/database.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"group-integration-sync/internal/model"
)

// DBTX is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same queries run inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the concrete Querier implementation.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to a pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Querier is the query interface used by the API handlers and the sync
// engine; tests substitute a mock.
type Querier interface {
	GetGroupByID(ctx context.Context, id int64) (model.Group, error)
	CommitExists(ctx context.Context, sha string) (bool, error)
	CreateCommit(ctx context.Context, arg CreateCommitParams) (int64, error)
	ListCommitsByGroupID(ctx context.Context, arg ListCommitsByGroupIDParams) ([]model.Commit, error)
	RequirementExists(ctx context.Context, jiraIssueKey string) (bool, error)
	CreateRequirement(ctx context.Context, arg CreateRequirementParams) (int64, error)
	ListRequirementsByGroupID(ctx context.Context, groupID int64) ([]model.Requirement, error)
	FindUserByEmailOrGithubUsername(ctx context.Context, arg FindUserParams) (model.User, error)
	ListIntegrationSettings(ctx context.Context) ([]model.IntegrationSetting, error)
	GetIntegrationSettingValue(ctx context.Context, key string) (string, error)
	UpsertIntegrationSetting(ctx context.Context, arg UpsertIntegrationSettingParams) error
}

var _ Querier = (*Queries)(nil)
