package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/viewer"
)

// ArtifactByID serves /v1/artifacts/{id} plus the export, deploy and viewer
// subresources below it.
func (api *API) ArtifactByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/artifacts/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)

	artifactID := strings.TrimSpace(parts[0])
	if artifactID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "artifact id is required")
		return
	}

	artifact, err := api.artifacts.GetArtifact(r.Context(), artifactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "artifact not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to load artifact")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, artifact)
		case http.MethodPut:
			api.updateArtifact(w, r, artifact)
		default:
			writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
		return
	}

	switch parts[1] {
	case "export":
		api.exportArtifact(w, r, *artifact)
	case "deploy":
		api.deployArtifact(w, r, *artifact)
	case "viewer":
		api.viewerSession(w, r, *artifact)
	default:
		writeError(w, r, http.StatusNotFound, "not_found", "unknown artifact subresource")
	}
}

// updateArtifact is the persistence callback surface for viewer edits:
// the whole content is replaced, metadata and identity stay untouched.
func (api *API) updateArtifact(w http.ResponseWriter, r *http.Request, artifact *domain.GeneratedArtifact) {
	var request artifactUpdateRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}
	if strings.TrimSpace(request.Content) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "content must not be empty")
		return
	}

	artifact.Content = request.Content
	if err := api.artifacts.SaveArtifact(r.Context(), artifact); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to save artifact")
		return
	}
	api.sessions.Drop(artifact.ID)
	writeJSON(w, http.StatusOK, artifact)
}

func (api *API) exportArtifact(w http.ResponseWriter, r *http.Request, artifact domain.GeneratedArtifact) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	file, err := viewer.ExportArtifact(artifact)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to export artifact")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func (api *API) deployArtifact(w http.ResponseWriter, r *http.Request, artifact domain.GeneratedArtifact) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if api.deployer == nil {
		writeError(w, r, http.StatusNotImplemented, "not_implemented", "no deployment provider is configured")
		return
	}

	result, err := api.deployer.Deploy(r.Context(), artifact)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "deploy_failed", "deployment provider rejected the artifact")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListArtifacts serves GET /v1/artifacts?business_id=.
func (api *API) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "business_id query parameter is required")
		return
	}

	artifacts, err := api.artifacts.ListArtifactsByBusiness(r.Context(), businessID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to list artifacts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

// BusinessArtifacts serves GET /v1/businesses/{id}/artifacts.
func (api *API) BusinessArtifacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/businesses/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	businessID := strings.TrimSpace(parts[0])
	if businessID == "" || len(parts) != 2 || parts[1] != "artifacts" {
		writeError(w, r, http.StatusNotFound, "not_found", "unknown business resource")
		return
	}

	artifacts, err := api.artifacts.ListArtifactsByBusiness(r.Context(), businessID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to list artifacts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}
