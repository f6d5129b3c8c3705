package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/tracker"
)

// StartBuild opens a build slot and enqueues the generation run. The response
// is the queued task; clients poll the tasks endpoints for progress.
func (api *API) StartBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request buildRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	payloadHash := hashPayload(request)
	if idempotencyKey != "" {
		if entry, ok := api.idempotency.Get(idempotencyKey); ok {
			if entry.PayloadHash != payloadHash {
				writeError(w, r, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload")
				return
			}
			task, err := api.builds.GetTask(r.Context(), entry.TaskID)
			if err == nil {
				writeJSON(w, http.StatusOK, task)
				return
			}
		}
	}

	task, err := api.builds.StartBuild(r.Context(), request.Business, request.Agent)
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrBuildInFlight):
			writeError(w, r, http.StatusConflict, "build_in_flight", "a build for this business and agent is already running")
		case errors.Is(err, domain.ErrMissingBusinessID), errors.Is(err, domain.ErrMissingBusinessName):
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		case strings.Contains(err.Error(), "unknown agent type"):
			writeError(w, r, http.StatusBadRequest, "invalid_request", "agent_type must be website, content or marketing")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to start build")
		}
		return
	}

	if idempotencyKey != "" {
		api.idempotency.Put(idempotencyKey, payloadHash, task.ID)
	}
	writeJSON(w, http.StatusAccepted, task)
}

// Tasks serves GET /v1/tasks, the full task list for reload recovery.
func (api *API) Tasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	tasks, err := api.builds.ListTasks(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// TaskByID serves /v1/tasks/{id} and the pause/resume/cancel actions below it.
func (api *API) TaskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)

	taskID := strings.TrimSpace(parts[0])
	if taskID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "task id is required")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		task, err := api.builds.GetTask(r.Context(), taskID)
		if err != nil {
			api.writeTaskError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var (
		task *domain.BuildingTask
		err  error
	)
	switch parts[1] {
	case "pause":
		task, err = api.builds.Pause(r.Context(), taskID)
	case "resume":
		task, err = api.builds.Resume(r.Context(), taskID)
	case "cancel":
		task, err = api.builds.Cancel(r.Context(), taskID)
	default:
		writeError(w, r, http.StatusNotFound, "not_found", "unknown task action")
		return
	}
	if err != nil {
		api.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (api *API) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "task not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, tracker.ErrNotCancelable):
		writeError(w, r, http.StatusConflict, "not_cancelable", "task has no in-flight build")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", "task operation failed")
	}
}
