// internal/api/settings.go
package api

import (
	"encoding/json"
	"net/http"

	"group-integration-sync/internal/database"
	"group-integration-sync/internal/settings"
)

type integrationSettingsResponse struct {
	GithubToken  *string `json:"github_token"`
	JiraBaseURL  *string `json:"jira_base_url"`
	JiraEmail    *string `json:"jira_email"`
	JiraAPIToken *string `json:"jira_api_token"`
}

type saveIntegrationSettingsRequest struct {
	GithubToken  string `json:"github_token"`
	JiraBaseURL  string `json:"jira_base_url"`
	JiraEmail    string `json:"jira_email"`
	JiraAPIToken string `json:"jira_api_token"`
}

// getIntegrationSettings returns the persisted integration settings with
// secrets masked.
// GET /settings/integration
func (h *Handler) getIntegrationSettings(w http.ResponseWriter, r *http.Request) {
	stored, err := h.db.ListIntegrationSettings(r.Context())
	if err != nil {
		h.logger.Error("Failed to list integration settings", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	byKey := make(map[string]string, len(stored))
	for _, s := range stored {
		byKey[s.Key] = s.Value
	}

	respondWithJSON(w, http.StatusOK, integrationSettingsResponse{
		GithubToken:  maskedField(byKey[settings.KeyGithubToken]),
		JiraBaseURL:  plainField(byKey[settings.KeyJiraBaseURL]),
		JiraEmail:    plainField(byKey[settings.KeyJiraEmail]),
		JiraAPIToken: maskedField(byKey[settings.KeyJiraAPIToken]),
	})
}

// saveIntegrationSettings upserts the provided settings. Empty fields are
// left untouched so a partial update never clears a stored credential.
// PUT /settings/integration
func (h *Handler) saveIntegrationSettings(w http.ResponseWriter, r *http.Request) {
	var req saveIntegrationSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	toSave := []struct {
		key, value, description string
	}{
		{settings.KeyGithubToken, req.GithubToken, "GitHub personal access token"},
		{settings.KeyJiraBaseURL, req.JiraBaseURL, "Jira base URL"},
		{settings.KeyJiraEmail, req.JiraEmail, "Jira account email"},
		{settings.KeyJiraAPIToken, req.JiraAPIToken, "Jira API token"},
	}

	for _, s := range toSave {
		if s.value == "" {
			continue
		}
		err := h.db.UpsertIntegrationSetting(r.Context(), database.UpsertIntegrationSettingParams{
			Key:         s.key,
			Value:       s.value,
			Description: s.description,
		})
		if err != nil {
			h.logger.Error("Failed to save integration setting", "key", s.key, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Settings saved successfully"})
}

// getIntegrationStatus reports which integrations are fully configured,
// counting both persisted settings and static config fallbacks.
// GET /settings/integration/status
func (h *Handler) getIntegrationStatus(w http.ResponseWriter, r *http.Request) {
	github, err := h.resolver.GitHub(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve GitHub credentials", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	jira, err := h.resolver.Jira(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve Jira credentials", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{
		"github_configured": github.Token != "",
		"jira_configured":   jira.Complete(),
	})
}

func maskedField(value string) *string {
	masked := settings.MaskSecret(value)
	if masked == "" {
		return nil
	}
	return &masked
}

func plainField(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
