// internal/api/stats.go
package api

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"group-integration-sync/internal/model"
	"group-integration-sync/internal/syncer"
)

type repoStatsResponse struct {
	Stats        model.RepoStats     `json:"stats"`
	Contributors []model.Contributor `json:"contributors"`
}

// getRepoStats performs an ad hoc lookup of repository metadata and
// contributors. Nothing is persisted; the two upstream calls run in
// parallel.
// GET /repo-stats?repoUrl=
func (h *Handler) getRepoStats(w http.ResponseWriter, r *http.Request) {
	owner, repo, ok := h.repoFromQuery(w, r)
	if !ok {
		return
	}

	creds, err := h.resolver.GitHub(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve GitHub credentials", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	client := h.newStatsClient(creds.Token)

	var resp repoStatsResponse
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp.Stats = client.RepoStats(gctx, owner, repo)
		return nil
	})
	g.Go(func() error {
		resp.Contributors = client.Contributors(gctx, owner, repo)
		return nil
	})
	_ = g.Wait() // the client degrades failures to zero values

	if resp.Contributors == nil {
		resp.Contributors = []model.Contributor{}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// getContributors lists a repository's contributors.
// GET /contributors?repoUrl=
func (h *Handler) getContributors(w http.ResponseWriter, r *http.Request) {
	owner, repo, ok := h.repoFromQuery(w, r)
	if !ok {
		return
	}

	creds, err := h.resolver.GitHub(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve GitHub credentials", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	contributors := h.newStatsClient(creds.Token).Contributors(r.Context(), owner, repo)
	if contributors == nil {
		contributors = []model.Contributor{}
	}
	respondWithJSON(w, http.StatusOK, contributors)
}

// getSprints passes through the sprints of a Jira agile board. With
// incomplete Jira credentials the call is skipped and an empty list
// returned.
// GET /sprints?boardId=
func (h *Handler) getSprints(w http.ResponseWriter, r *http.Request) {
	boardID := r.URL.Query().Get("boardId")
	if boardID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'boardId' parameter")
		return
	}

	creds, err := h.resolver.Jira(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve Jira credentials", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	sprints := []model.Sprint{}
	if creds.Complete() {
		if got := h.newSprintClient(creds).Sprints(r.Context(), boardID); got != nil {
			sprints = got
		}
	} else {
		h.logger.Warn("Jira credentials incomplete, skipping sprint fetch")
	}
	respondWithJSON(w, http.StatusOK, sprints)
}

func (h *Handler) repoFromQuery(w http.ResponseWriter, r *http.Request) (owner, repo string, ok bool) {
	repoURL := r.URL.Query().Get("repoUrl")
	if repoURL == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'repoUrl' parameter")
		return "", "", false
	}

	owner, repo, err := syncer.ParseRepoURL(repoURL)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid GitHub URL")
		return "", "", false
	}
	return owner, repo, true
}
