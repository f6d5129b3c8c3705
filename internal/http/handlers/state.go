package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/viewer"
)

type historyRequest struct {
	Query       string `json:"query"`
	Location    string `json:"location,omitempty"`
	ResultCount int    `json:"result_count"`
}

type analyzedRequest struct {
	Business domain.BusinessRecord `json:"business"`
	Score    float64               `json:"opportunity_score"`
}

type onboardingRequest struct {
	Complete bool `json:"complete"`
}

// History serves GET/POST /v1/history and GET /v1/history/export.
func (api *API) History(w http.ResponseWriter, r *http.Request) {
	if strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/history"), "/") == "export" {
		api.exportHistory(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		entries, err := api.state.SearchHistory(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load history")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": entries})
	case http.MethodPost:
		var request historyRequest
		if err := decodeJSON(r, &request); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
			return
		}
		if strings.TrimSpace(request.Query) == "" {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "query is required")
			return
		}

		entry := domain.SearchHistoryEntry{
			ID:          uuid.NewString(),
			Query:       request.Query,
			Location:    request.Location,
			ResultCount: request.ResultCount,
			SearchedAt:  time.Now().UTC(),
		}
		if err := api.state.AppendSearch(r.Context(), entry); err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to save history entry")
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) exportHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	entries, err := api.state.SearchHistory(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load history")
		return
	}
	file, err := viewer.ExportHistory(entries)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to export history")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// Businesses dispatches /v1/businesses/analyzed and /v1/businesses/{id}/artifacts.
func (api *API) Businesses(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/businesses/"), "/")
	if rest == "analyzed" {
		api.analyzedBusinesses(w, r)
		return
	}
	api.BusinessArtifacts(w, r)
}

func (api *API) analyzedBusinesses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := api.state.AnalyzedBusinesses(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load analyzed businesses")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"analyzed": records})
	case http.MethodPost:
		var request analyzedRequest
		if err := decodeJSON(r, &request); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
			return
		}
		if err := request.Business.Validate(); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		record := domain.AnalyzedBusiness{
			Business:   request.Business,
			Score:      request.Score,
			AnalyzedAt: time.Now().UTC(),
		}
		if err := api.state.SaveAnalyzed(r.Context(), record); err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to save analyzed business")
			return
		}
		writeJSON(w, http.StatusCreated, record)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// Onboarding serves GET/PUT /v1/onboarding.
func (api *API) Onboarding(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		complete, err := api.state.OnboardingComplete(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load onboarding state")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"complete": complete})
	case http.MethodPut:
		var request onboardingRequest
		if err := decodeJSON(r, &request); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
			return
		}
		if err := api.state.SetOnboardingComplete(r.Context(), request.Complete); err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to save onboarding state")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"complete": request.Complete})
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
