// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"group-integration-sync/internal/database"
	cerrors "group-integration-sync/internal/errors"
	"group-integration-sync/internal/github"
	"group-integration-sync/internal/jira"
	"group-integration-sync/internal/model"
	"group-integration-sync/internal/settings"
)

// Listing endpoints return at most this many rows.
const commitListLimit = 50

// SyncService is the sync engine surface the handlers depend on.
type SyncService interface {
	SyncCommits(ctx context.Context, groupID int64) (int, error)
	SyncIssues(ctx context.Context, groupID int64) (int, error)
}

// RepoStatsClient is the ad hoc GitHub lookup surface, built per request
// from resolved credentials.
type RepoStatsClient interface {
	RepoStats(ctx context.Context, owner, repo string) model.RepoStats
	Contributors(ctx context.Context, owner, repo string) []model.Contributor
}

// SprintClient is the Jira agile pass-through surface.
type SprintClient interface {
	Sprints(ctx context.Context, boardID string) []model.Sprint
}

// Handler is the container for API dependencies.
type Handler struct {
	db       database.Querier
	sync     SyncService
	resolver *settings.Resolver
	logger   *slog.Logger

	newStatsClient  func(token string) RepoStatsClient
	newSprintClient func(creds settings.JiraCredentials) SprintClient
}

// NewHandler wires the handler with its production dependencies.
func NewHandler(db database.Querier, sync SyncService, resolver *settings.Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		db:       db,
		sync:     sync,
		resolver: resolver,
		logger:   logger,
		newStatsClient: func(token string) RepoStatsClient {
			return github.NewClient(token, logger)
		},
		newSprintClient: func(creds settings.JiraCredentials) SprintClient {
			return jira.NewClient(creds, logger)
		},
	}
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)
	r.Get("/settings/integration/status", h.getIntegrationStatus)

	// Every route below requires an upstream-asserted role; the required
	// roles per route live in the central policy table in authz.go.
	r.Group(func(r chi.Router) {
		r.Use(h.authorize)

		r.Post("/sync/commits/{groupID}", h.syncCommits)
		r.Post("/sync/issues/{groupID}", h.syncIssues)
		r.Get("/commits/{groupID}", h.getCommits)
		r.Get("/requirements/{groupID}", h.getRequirements)
		r.Get("/repo-stats", h.getRepoStats)
		r.Get("/contributors", h.getContributors)
		r.Get("/sprints", h.getSprints)
		r.Get("/settings/integration", h.getIntegrationSettings)
		r.Put("/settings/integration", h.saveIntegrationSettings)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// syncCommits triggers a commit import for a group.
// POST /sync/commits/{groupID}
func (h *Handler) syncCommits(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	imported, err := h.sync.SyncCommits(r.Context(), groupID)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message":  "GitHub commits synced successfully",
		"imported": imported,
	})
}

// syncIssues triggers a Jira issue import for a group.
// POST /sync/issues/{groupID}
func (h *Handler) syncIssues(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	imported, err := h.sync.SyncIssues(r.Context(), groupID)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message":  "Jira issues synced successfully",
		"imported": imported,
	})
}

// getCommits lists the most recent imported commits for a group.
// GET /commits/{groupID}
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	commits, err := h.db.ListCommitsByGroupID(r.Context(), database.ListCommitsByGroupIDParams{
		GroupID: groupID,
		Limit:   commitListLimit,
	})
	if err != nil {
		h.logger.Error("Failed to list commits", "group_id", groupID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if commits == nil {
		commits = []model.Commit{}
	}

	respondWithJSON(w, http.StatusOK, commits)
}

// getRequirements lists the imported Jira issues for a group.
// GET /requirements/{groupID}
func (h *Handler) getRequirements(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	reqs, err := h.db.ListRequirementsByGroupID(r.Context(), groupID)
	if err != nil {
		h.logger.Error("Failed to list requirements", "group_id", groupID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if reqs == nil {
		reqs = []model.Requirement{}
	}

	respondWithJSON(w, http.StatusOK, reqs)
}

func (h *Handler) respondSyncError(w http.ResponseWriter, err error) {
	var notConfigured *cerrors.ErrGroupNotConfigured
	var invalidURL *cerrors.ErrInvalidRepoURL

	switch {
	case errors.Is(err, cerrors.ErrGroupNotFound):
		respondWithError(w, http.StatusNotFound, "Group not found")
	case errors.As(err, &notConfigured), errors.As(err, &invalidURL):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Sync failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func groupIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "groupID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid group id")
		return 0, false
	}
	return id, true
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}
