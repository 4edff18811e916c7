// internal/github/client.go
package github

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"group-integration-sync/internal/model"
)

// Per-page cap for the commit listing endpoint.
const perPageMax = 100

// Client is a wrapper around the go-github client. Clients are cheap to
// construct and are rebuilt per sync with a freshly resolved token.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// Option configures a Client after construction.
type Option func(*Client)

// WithBaseURL points the client at an alternate API root (tests).
func WithBaseURL(rawURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(rawURL, "/") {
			rawURL += "/"
		}
		if u, err := url.Parse(rawURL); err == nil {
			c.gh.BaseURL = u
		}
	}
}

// NewClient creates and configures a new Client instance. An empty token
// yields an unauthenticated client, which GitHub accepts at a lower rate
// limit.
func NewClient(token string, logger *slog.Logger, opts ...Option) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	c := &Client{
		gh:     github.NewClient(httpClient),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCommits retrieves up to maxCount commits for a repository, newest
// first, paging through the listing endpoint. Transport failures are logged
// and whatever was collected so far is returned: a degraded sync is
// preferred over a failed one, and the caller's dedup guarantees no
// silent duplication on retry.
func (c *Client) FetchCommits(ctx context.Context, owner, repo string, maxCount int) []model.Commit {
	var collected []model.Commit

	perPage := maxCount
	if perPage > perPageMax {
		perPage = perPageMax
	}
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for len(collected) < maxCount {
		c.logger.Debug("Fetching commits page", "owner", owner, "repo", repo, "page", opts.Page)

		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			c.logger.Warn("Failed to fetch commits page, returning partial results",
				"owner", owner, "repo", repo, "collected", len(collected), "error", err)
			break
		}
		if len(commits) == 0 {
			break
		}

		for _, commit := range commits {
			if len(collected) >= maxCount {
				break
			}
			collected = append(collected, toInternalCommit(commit))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return collected
}

// RepoStats fetches repository metadata for the ad hoc stats endpoint.
// Failures degrade to zero values.
func (c *Client) RepoStats(ctx context.Context, owner, repo string) model.RepoStats {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		c.logger.Warn("Failed to fetch repository stats", "owner", owner, "repo", repo, "error", err)
		return model.RepoStats{}
	}
	return model.RepoStats{
		OpenIssues: r.GetOpenIssuesCount(),
		Stars:      r.GetStargazersCount(),
		Forks:      r.GetForksCount(),
	}
}

// Contributors lists a repository's contributors. Failures degrade to an
// empty list.
func (c *Client) Contributors(ctx context.Context, owner, repo string) []model.Contributor {
	raw, _, err := c.gh.Repositories.ListContributors(ctx, owner, repo, nil)
	if err != nil {
		c.logger.Warn("Failed to fetch contributors", "owner", owner, "repo", repo, "error", err)
		return nil
	}

	contributors := make([]model.Contributor, 0, len(raw))
	for _, contrib := range raw {
		contributors = append(contributors, model.Contributor{
			Login:         contrib.GetLogin(),
			AvatarURL:     contrib.GetAvatarURL(),
			Contributions: contrib.GetContributions(),
		})
	}
	return contributors
}

// toInternalCommit translates a github.RepositoryCommit to our internal
// model. Missing optional fields become empty strings; the listing endpoint
// carries no per-commit line stats, so additions/deletions stay zero.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:         c.GetSHA(),
		AuthorName:  c.GetCommit().GetAuthor().GetName(),
		AuthorEmail: c.GetCommit().GetAuthor().GetEmail(),
		Message:     c.GetCommit().GetMessage(),
		URL:         c.GetHTMLURL(),
		CommitDate:  c.GetCommit().GetAuthor().GetDate().Time,
	}
}
