// internal/settings/resolver_test.go
package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-integration-sync/internal/config"
)

// fakeStore is a map-backed Store; a missing key reads as "".
type fakeStore struct {
	values map[string]string
	err    error
}

func (f *fakeStore) GetIntegrationSettingValue(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func TestResolver_PersistedValueWins(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		KeyGithubToken: "stored-token",
		KeyJiraBaseURL: "https://stored.atlassian.net",
	}}
	cfg := &config.Config{
		GithubToken: "config-token",
		JiraBaseURL: "https://config.atlassian.net",
		JiraEmail:   "config@example.com",
	}
	r := NewResolver(store, cfg)

	gh, err := r.GitHub(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", gh.Token)

	jira, err := r.Jira(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://stored.atlassian.net", jira.BaseURL)
	assert.Equal(t, "config@example.com", jira.Email, "static config fills fields the store lacks")
	assert.Empty(t, jira.APIToken)
	assert.False(t, jira.Complete())
}

func TestResolver_NeitherSourceConfigured(t *testing.T) {
	r := NewResolver(&fakeStore{}, &config.Config{})

	gh, err := r.GitHub(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gh.Token)

	jira, err := r.Jira(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jira.BaseURL)
	assert.False(t, jira.Complete())
}

func TestResolver_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := NewResolver(&fakeStore{err: storeErr}, &config.Config{})

	_, err := r.GitHub(context.Background())
	assert.ErrorIs(t, err, storeErr)
}

func TestJiraCredentials_Complete(t *testing.T) {
	full := JiraCredentials{BaseURL: "https://x", Email: "a@b.c", APIToken: "t"}
	assert.True(t, full.Complete())

	assert.False(t, JiraCredentials{Email: "a@b.c", APIToken: "t"}.Complete())
	assert.False(t, JiraCredentials{BaseURL: "https://x", APIToken: "t"}.Complete())
	assert.False(t, JiraCredentials{BaseURL: "https://x", Email: "a@b.c"}.Complete())
}
