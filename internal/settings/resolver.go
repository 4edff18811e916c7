// internal/settings/resolver.go
package settings

import (
	"context"

	"group-integration-sync/internal/config"
)

// Setting keys for persisted integration credentials.
const (
	KeyGithubToken  = "github.token"
	KeyJiraBaseURL  = "jira.base_url"
	KeyJiraEmail    = "jira.email"
	KeyJiraAPIToken = "jira.api_token"
)

// GitHubCredentials is the resolved GitHub credential set. An empty token is
// valid: the client falls back to unauthenticated requests.
type GitHubCredentials struct {
	Token string
}

// JiraCredentials is the resolved Jira credential set.
type JiraCredentials struct {
	BaseURL  string
	Email    string
	APIToken string
}

// Complete reports whether every field needed for a Jira API call is set.
func (c JiraCredentials) Complete() bool {
	return c.BaseURL != "" && c.Email != "" && c.APIToken != ""
}

// Store is the slice of the query layer the resolver needs. An absent key
// reads as the empty string.
type Store interface {
	GetIntegrationSettingValue(ctx context.Context, key string) (string, error)
}

// Resolver merges persisted integration settings with the static process
// configuration, persisted values taking precedence. It carries no cache:
// settings may change between sync runs, so every call re-reads the store.
type Resolver struct {
	db  Store
	cfg *config.Config
}

func NewResolver(db Store, cfg *config.Config) *Resolver {
	return &Resolver{db: db, cfg: cfg}
}

// GitHub resolves the GitHub personal access token.
func (r *Resolver) GitHub(ctx context.Context) (GitHubCredentials, error) {
	token, err := r.resolve(ctx, KeyGithubToken, r.cfg.GithubToken)
	if err != nil {
		return GitHubCredentials{}, err
	}
	return GitHubCredentials{Token: token}, nil
}

// Jira resolves the Jira base URL, account email and API token.
func (r *Resolver) Jira(ctx context.Context) (JiraCredentials, error) {
	baseURL, err := r.resolve(ctx, KeyJiraBaseURL, r.cfg.JiraBaseURL)
	if err != nil {
		return JiraCredentials{}, err
	}
	email, err := r.resolve(ctx, KeyJiraEmail, r.cfg.JiraEmail)
	if err != nil {
		return JiraCredentials{}, err
	}
	token, err := r.resolve(ctx, KeyJiraAPIToken, r.cfg.JiraAPIToken)
	if err != nil {
		return JiraCredentials{}, err
	}
	return JiraCredentials{BaseURL: baseURL, Email: email, APIToken: token}, nil
}

func (r *Resolver) resolve(ctx context.Context, key, fallback string) (string, error) {
	value, err := r.db.GetIntegrationSettingValue(ctx, key)
	if err != nil {
		return "", err
	}
	if value != "" {
		return value, nil
	}
	return fallback, nil
}
