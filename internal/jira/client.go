// internal/jira/client.go
package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"group-integration-sync/internal/model"
	"group-integration-sync/internal/settings"
)

const (
	// Single bounded search; Jira projects larger than this are not paged
	// further in this design.
	searchMaxResults = 100

	// Placeholder stored when the description is an Atlassian rich-text
	// document rather than a plain string.
	richTextPlaceholder = "[Rich text content]"

	defaultTimeout = 30 * time.Second
)

// Jira renders timestamps like "2024-03-05T09:41:12.000+0100".
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

// Client talks to the Jira Cloud REST API using basic auth (account email +
// API token). Clients are rebuilt per sync with freshly resolved
// credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	token      string
	logger     *slog.Logger
}

func NewClient(creds settings.JiraCredentials, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(creds.BaseURL, "/"),
		email:      creds.Email,
		token:      creds.APIToken,
		logger:     logger,
	}
}

func (c *Client) authHeader() string {
	raw := c.email + ":" + c.token
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

type namedField struct {
	Name string `json:"name"`
}

type assigneeField struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type issueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description"`
	Status      namedField      `json:"status"`
	Priority    *namedField     `json:"priority"`
	IssueType   namedField      `json:"issuetype"`
	Assignee    *assigneeField  `json:"assignee"`
	Created     string          `json:"created"`
}

type issuePayload struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type searchResponse struct {
	Issues []issuePayload `json:"issues"`
}

// SearchProjectIssues returns all issues of a project, newest first, capped
// at searchMaxResults. Transport failures are logged and degrade to an
// empty result; the caller's sync stays a success.
func (c *Client) SearchProjectIssues(ctx context.Context, projectKey string) []model.Issue {
	jql := fmt.Sprintf("project=%s ORDER BY created DESC", projectKey)
	reqURL := fmt.Sprintf("%s/rest/api/3/search?jql=%s&maxResults=%d",
		c.baseURL, url.QueryEscape(jql), searchMaxResults)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		c.logger.Warn("Failed to search Jira issues", "project", projectKey, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Jira issue search returned non-OK status", "project", projectKey, "status", resp.StatusCode)
		return nil
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("Failed to decode Jira search response", "project", projectKey, "error", err)
		return nil
	}

	issues := make([]model.Issue, 0, len(out.Issues))
	for _, payload := range out.Issues {
		issues = append(issues, c.parseIssue(payload))
	}
	return issues
}

// GetIssue fetches a single issue by key. A missing issue (or any failure)
// yields nil.
func (c *Client) GetIssue(ctx context.Context, issueKey string) *model.Issue {
	reqURL := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, url.PathEscape(issueKey))

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		c.logger.Warn("Failed to fetch Jira issue", "key", issueKey, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Warn("Jira issue fetch returned non-OK status", "key", issueKey, "status", resp.StatusCode)
		}
		return nil
	}

	var payload issuePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("Failed to decode Jira issue", "key", issueKey, "error", err)
		return nil
	}

	issue := c.parseIssue(payload)
	return &issue
}

type sprintPayload struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type sprintsResponse struct {
	Values []sprintPayload `json:"values"`
}

// Sprints lists the sprints of an agile board, passed through without
// persistence.
func (c *Client) Sprints(ctx context.Context, boardID string) []model.Sprint {
	reqURL := fmt.Sprintf("%s/rest/agile/1.0/board/%s/sprint", c.baseURL, url.PathEscape(boardID))

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		c.logger.Warn("Failed to fetch Jira sprints", "board", boardID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Jira sprint fetch returned non-OK status", "board", boardID, "status", resp.StatusCode)
		return nil
	}

	var out sprintsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("Failed to decode Jira sprints", "board", boardID, "error", err)
		return nil
	}

	sprints := make([]model.Sprint, 0, len(out.Values))
	for _, s := range out.Values {
		sprints = append(sprints, model.Sprint{
			ID:        s.ID,
			Name:      s.Name,
			State:     s.State,
			StartDate: parseOptionalTime(s.StartDate),
			EndDate:   parseOptionalTime(s.EndDate),
		})
	}
	return sprints
}

func (c *Client) parseIssue(payload issuePayload) model.Issue {
	fields := payload.Fields

	priority := "Medium"
	if fields.Priority != nil && fields.Priority.Name != "" {
		priority = fields.Priority.Name
	}

	var assigneeName, assigneeEmail string
	if fields.Assignee != nil {
		assigneeName = fields.Assignee.DisplayName
		assigneeEmail = fields.Assignee.EmailAddress
	}

	var created time.Time
	if t, err := time.Parse(jiraTimeLayout, fields.Created); err == nil {
		created = t
	}

	return model.Issue{
		Key:           payload.Key,
		Summary:       fields.Summary,
		Description:   parseDescription(fields.Description),
		Status:        fields.Status.Name,
		Priority:      priority,
		IssueType:     fields.IssueType.Name,
		AssigneeName:  assigneeName,
		AssigneeEmail: assigneeEmail,
		Created:       created,
		URL:           c.baseURL + "/browse/" + payload.Key,
	}
}

// parseDescription degrades Atlassian Document Format payloads to a fixed
// placeholder instead of attempting rich-text extraction.
func parseDescription(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	return richTextPlaceholder
}

func parseOptionalTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
