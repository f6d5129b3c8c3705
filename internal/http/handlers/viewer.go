package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/viewer"
)

// sessionRegistry keeps one viewer session per artifact so view mode, zoom
// and edit buffers survive across requests.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*viewer.Session
	persist  func(context.Context, domain.GeneratedArtifact) error
}

func newSessionRegistry(persist func(context.Context, domain.GeneratedArtifact) error) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*viewer.Session),
		persist:  persist,
	}
}

func (r *sessionRegistry) Get(artifact domain.GeneratedArtifact) *viewer.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[artifact.ID]; ok {
		return session
	}
	session := viewer.NewSession(artifact, viewer.SessionConfig{Persist: r.persist})
	r.sessions[artifact.ID] = session
	return session
}

// Drop discards the session so the next request picks up fresh content.
func (r *sessionRegistry) Drop(artifactID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[artifactID]; ok {
		session.Close()
		delete(r.sessions, artifactID)
	}
}

func (api *API) persistArtifact(ctx context.Context, artifact domain.GeneratedArtifact) error {
	saved := artifact
	return api.artifacts.SaveArtifact(ctx, &saved)
}

type viewerActionRequest struct {
	Action  string `json:"action"`
	Mode    string `json:"mode,omitempty"`
	Device  string `json:"device,omitempty"`
	Zoom    int    `json:"zoom,omitempty"`
	Content string `json:"content,omitempty"`
}

type viewerStateResponse struct {
	Render  viewer.RenderDescriptor `json:"render"`
	Editing bool                    `json:"editing"`
	Copied  bool                    `json:"copied"`
}

// viewerSession serves GET (current render state) and POST (viewer actions)
// on /v1/artifacts/{id}/viewer.
func (api *API) viewerSession(w http.ResponseWriter, r *http.Request, artifact domain.GeneratedArtifact) {
	session := api.sessions.Get(artifact)

	switch r.Method {
	case http.MethodGet:
		api.writeViewerState(w, session)
	case http.MethodPost:
		api.applyViewerAction(w, r, session)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) applyViewerAction(w http.ResponseWriter, r *http.Request, session *viewer.Session) {
	var request viewerActionRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	switch request.Action {
	case "set_mode":
		session.SetMode(viewer.ViewMode(request.Mode))
	case "set_device":
		session.SetDevice(viewer.DevicePreset(request.Device))
	case "set_zoom":
		session.SetZoom(request.Zoom)
	case "zoom_in":
		session.ZoomIn()
	case "zoom_out":
		session.ZoomOut()
	case "copy":
		content := session.MarkCopied()
		writeJSON(w, http.StatusOK, map[string]any{
			"content": content,
			"copied":  session.Copied(),
		})
		return
	case "edit_begin":
		if _, err := session.BeginEdit(); err != nil {
			writeError(w, r, http.StatusConflict, "edit_conflict", err.Error())
			return
		}
	case "edit_update":
		if err := session.UpdateDraft(request.Content); err != nil {
			writeError(w, r, http.StatusConflict, "edit_conflict", err.Error())
			return
		}
	case "edit_save":
		if _, err := session.SaveEdit(r.Context()); err != nil {
			if errors.Is(err, viewer.ErrNotEditing) {
				writeError(w, r, http.StatusConflict, "edit_conflict", err.Error())
				return
			}
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to save edit")
			return
		}
	case "edit_cancel":
		if err := session.CancelEdit(); err != nil {
			writeError(w, r, http.StatusConflict, "edit_conflict", err.Error())
			return
		}
	default:
		writeError(w, r, http.StatusBadRequest, "invalid_request", "unknown viewer action")
		return
	}

	api.writeViewerState(w, session)
}

func (api *API) writeViewerState(w http.ResponseWriter, session *viewer.Session) {
	writeJSON(w, http.StatusOK, viewerStateResponse{
		Render:  session.Render(),
		Editing: session.Editing(),
		Copied:  session.Copied(),
	})
}
