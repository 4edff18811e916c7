// internal/syncer/identity.go
package syncer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"group-integration-sync/internal/database"
)

// matchAuthor maps a commit author to a local user by primary email or
// GitHub username. First match wins; no match leaves the commit's user link
// empty, which is not an error. The link is resolved once at import time
// and never revisited.
func matchAuthor(ctx context.Context, q database.Querier, authorEmail, authorHandle string) (*int64, error) {
	if authorEmail == "" && authorHandle == "" {
		return nil, nil
	}

	user, err := q.FindUserByEmailOrGithubUsername(ctx, database.FindUserParams{
		Email:          authorEmail,
		GithubUsername: authorHandle,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user.ID, nil
}
