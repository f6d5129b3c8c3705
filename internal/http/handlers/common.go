package handlers

import (
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/http/middleware"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/service"
	"github.com/leadforge/leadforge-back/internal/store"
	"github.com/leadforge/leadforge-back/internal/viewer"
)

var errInvalidPayload = errors.New("invalid payload")

type API struct {
	builds      *service.BuildsService
	artifacts   repository.ArtifactsRepository
	state       *store.StateService
	deployer    viewer.DeploymentProvider
	sessions    *sessionRegistry
	idempotency *idempotencyStore
}

func NewAPI(
	builds *service.BuildsService,
	artifacts repository.ArtifactsRepository,
	state *store.StateService,
	deployer viewer.DeploymentProvider,
) *API {
	api := &API{
		builds:      builds,
		artifacts:   artifacts,
		state:       state,
		deployer:    deployer,
		idempotency: newIdempotencyStore(),
	}
	api.sessions = newSessionRegistry(api.persistArtifact)
	return api
}

type buildRequest struct {
	Business domain.BusinessRecord `json:"business"`
	Agent    domain.AgentKind      `json:"agent_type"`
}

type artifactUpdateRequest struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

func decodeJSON(r *http.Request, value any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}

type idempotencyEntry struct {
	PayloadHash uint64
	TaskID      string
	CreatedAt   time.Time
}

type idempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
}

func newIdempotencyStore() *idempotencyStore {
	return &idempotencyStore{
		entries: make(map[string]idempotencyEntry),
	}
}

func (s *idempotencyStore) Get(key string) (idempotencyEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

func (s *idempotencyStore) Put(key string, payloadHash uint64, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = idempotencyEntry{
		PayloadHash: payloadHash,
		TaskID:      taskID,
		CreatedAt:   time.Now().UTC(),
	}
}

func hashPayload(value any) uint64 {
	payload, _ := json.Marshal(value)
	hasher := fnv.New64a()
	_, _ = hasher.Write(payload)
	return hasher.Sum64()
}
