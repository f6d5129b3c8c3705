package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/queue"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/service"
	"github.com/leadforge/leadforge-back/internal/store"
	"github.com/leadforge/leadforge-back/internal/tracker"
	"github.com/leadforge/leadforge-back/internal/viewer"
)

type apiFixture struct {
	api       *API
	artifacts repository.ArtifactsRepository
	tracker   *tracker.Tracker
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := log.New(&strings.Builder{}, "", 0)
	artifacts := repository.NewMemoryArtifactsRepository()
	state := store.NewStateService(store.NewMemoryKV())
	taskTracker := tracker.New(repository.NewMemoryTasksRepository(), state, logger)
	builds := service.NewBuildsService(taskTracker, queue.NewLocalQueue(16, 1, logger), state)

	deployer := viewer.NewSimulatedDeployer()
	deployer.Delay = 0

	return &apiFixture{
		api:       NewAPI(builds, artifacts, state, deployer),
		artifacts: artifacts,
		tracker:   taskTracker,
	}
}

func (f *apiFixture) do(t *testing.T, handler http.HandlerFunc, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	handler(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode response body: %v\nbody: %s", err, recorder.Body.String())
	}
	return value
}

func buildPayload() buildRequest {
	return buildRequest{
		Business: domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina", Category: "restaurant"},
		Agent:    domain.AgentWebsite,
	}
}

func TestStartBuildReturnsQueuedTask(t *testing.T) {
	fixture := newAPIFixture(t)

	recorder := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), nil)
	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", recorder.Code, recorder.Body.String())
	}

	task := decodeBody[domain.BuildingTask](t, recorder)
	if task.Status != domain.TaskQueued || task.BusinessID != "biz-1" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestStartBuildIdempotency(t *testing.T) {
	fixture := newAPIFixture(t)
	headers := map[string]string{"Idempotency-Key": "key-1"}

	first := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), headers)
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", first.Code)
	}
	firstTask := decodeBody[domain.BuildingTask](t, first)

	replay := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), headers)
	if replay.Code != http.StatusOK {
		t.Fatalf("expected 200 replay, got %d: %s", replay.Code, replay.Body.String())
	}
	replayTask := decodeBody[domain.BuildingTask](t, replay)
	if replayTask.ID != firstTask.ID {
		t.Fatalf("expected replay to return the original task")
	}

	changed := buildPayload()
	changed.Business.Name = "Completely Different"
	conflict := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", changed, headers)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new payload, got %d", conflict.Code)
	}
	payload := decodeBody[errorPayload](t, conflict)
	if payload.Error.Code != "idempotency_conflict" {
		t.Fatalf("unexpected error code %q", payload.Error.Code)
	}
}

func TestStartBuildRejectsInFlightPair(t *testing.T) {
	fixture := newAPIFixture(t)

	if recorder := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), nil); recorder.Code != http.StatusAccepted {
		t.Fatalf("first build: %d", recorder.Code)
	}

	second := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), nil)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
	payload := decodeBody[errorPayload](t, second)
	if payload.Error.Code != "build_in_flight" {
		t.Fatalf("unexpected error code %q", payload.Error.Code)
	}
}

func TestStartBuildValidation(t *testing.T) {
	fixture := newAPIFixture(t)

	badAgent := buildPayload()
	badAgent.Agent = domain.AgentKind("sorcery")
	if recorder := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", badAgent, nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown agent, got %d", recorder.Code)
	}

	noName := buildPayload()
	noName.Business.Name = ""
	if recorder := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", noName, nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", recorder.Code)
	}

	request := httptest.NewRequest(http.MethodPost, "/v1/builds", strings.NewReader(`{"unknown_field": true}`))
	recorder := httptest.NewRecorder()
	fixture.api.StartBuild(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown fields, got %d", recorder.Code)
	}
}

func TestTaskEndpoints(t *testing.T) {
	fixture := newAPIFixture(t)

	started := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), nil)
	task := decodeBody[domain.BuildingTask](t, started)

	list := fixture.do(t, fixture.api.Tasks, http.MethodGet, "/v1/tasks", nil, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list tasks: %d", list.Code)
	}
	listing := decodeBody[map[string][]domain.BuildingTask](t, list)
	if len(listing["tasks"]) != 1 {
		t.Fatalf("expected one task, got %+v", listing)
	}

	byID := fixture.do(t, fixture.api.TaskByID, http.MethodGet, "/v1/tasks/"+task.ID, nil, nil)
	if byID.Code != http.StatusOK {
		t.Fatalf("get task: %d", byID.Code)
	}

	missing := fixture.do(t, fixture.api.TaskByID, http.MethodGet, "/v1/tasks/nope", nil, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", missing.Code)
	}

	// Queued tasks have no in-flight build to cancel yet.
	cancel := fixture.do(t, fixture.api.TaskByID, http.MethodPost, "/v1/tasks/"+task.ID+"/cancel", nil, nil)
	if cancel.Code != http.StatusConflict {
		t.Fatalf("expected 409 for cancel without in-flight build, got %d", cancel.Code)
	}
	payload := decodeBody[errorPayload](t, cancel)
	if payload.Error.Code != "not_cancelable" {
		t.Fatalf("unexpected error code %q", payload.Error.Code)
	}

	unknown := fixture.do(t, fixture.api.TaskByID, http.MethodPost, "/v1/tasks/"+task.ID+"/hibernate", nil, nil)
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", unknown.Code)
	}
}

func TestPauseAndResumeOverHTTP(t *testing.T) {
	fixture := newAPIFixture(t)
	ctx := context.Background()

	started := fixture.do(t, fixture.api.StartBuild, http.MethodPost, "/v1/builds", buildPayload(), nil)
	task := decodeBody[domain.BuildingTask](t, started)

	// Resuming a task that was never paused is an invalid transition.
	early := fixture.do(t, fixture.api.TaskByID, http.MethodPost, "/v1/tasks/"+task.ID+"/resume", nil, nil)
	if early.Code != http.StatusConflict {
		t.Fatalf("expected 409 resuming a queued task, got %d", early.Code)
	}

	if _, err := fixture.tracker.BeginBuilding(ctx, task.ID, func() {}); err != nil {
		t.Fatalf("begin building: %v", err)
	}

	paused := fixture.do(t, fixture.api.TaskByID, http.MethodPost, "/v1/tasks/"+task.ID+"/pause", nil, nil)
	if paused.Code != http.StatusOK {
		t.Fatalf("pause: %d %s", paused.Code, paused.Body.String())
	}
	pausedTask := decodeBody[domain.BuildingTask](t, paused)
	if pausedTask.Status != domain.TaskPaused {
		t.Fatalf("expected paused, got %s", pausedTask.Status)
	}

	resumed := fixture.do(t, fixture.api.TaskByID, http.MethodPost, "/v1/tasks/"+task.ID+"/resume", nil, nil)
	if resumed.Code != http.StatusOK {
		t.Fatalf("resume: %d %s", resumed.Code, resumed.Body.String())
	}
}

func seedArtifact(t *testing.T, fixture *apiFixture) *domain.GeneratedArtifact {
	t.Helper()
	artifact := &domain.GeneratedArtifact{
		ID:         "artifact-1",
		Name:       "Rosa's Cantina - Modern Website",
		Type:       domain.ArtifactWebsite,
		BusinessID: "biz-1",
		Content:    "<!DOCTYPE html>\n<html><body><h1>Rosa's Cantina</h1></body></html>",
		CreatedAt:  time.Now().UTC(),
	}
	if err := fixture.artifacts.SaveArtifact(context.Background(), artifact); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
	return artifact
}

func TestArtifactLifecycleOverHTTP(t *testing.T) {
	fixture := newAPIFixture(t)
	artifact := seedArtifact(t, fixture)

	got := fixture.do(t, fixture.api.ArtifactByID, http.MethodGet, "/v1/artifacts/"+artifact.ID, nil, nil)
	if got.Code != http.StatusOK {
		t.Fatalf("get artifact: %d", got.Code)
	}

	missing := fixture.do(t, fixture.api.ArtifactByID, http.MethodGet, "/v1/artifacts/nope", nil, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}

	updated := fixture.do(t, fixture.api.ArtifactByID, http.MethodPut, "/v1/artifacts/"+artifact.ID,
		artifactUpdateRequest{Content: "<!DOCTYPE html>\n<html><body>edited</body></html>"}, nil)
	if updated.Code != http.StatusOK {
		t.Fatalf("update artifact: %d %s", updated.Code, updated.Body.String())
	}

	empty := fixture.do(t, fixture.api.ArtifactByID, http.MethodPut, "/v1/artifacts/"+artifact.ID,
		artifactUpdateRequest{Content: "   "}, nil)
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty content, got %d", empty.Code)
	}

	stored, err := fixture.artifacts.GetArtifact(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("reload artifact: %v", err)
	}
	if !strings.Contains(stored.Content, "edited") {
		t.Fatalf("expected persisted edit, got %.60q", stored.Content)
	}
}

func TestArtifactExportAndDeploy(t *testing.T) {
	fixture := newAPIFixture(t)
	artifact := seedArtifact(t, fixture)

	export := fixture.do(t, fixture.api.ArtifactByID, http.MethodGet, "/v1/artifacts/"+artifact.ID+"/export", nil, nil)
	if export.Code != http.StatusOK {
		t.Fatalf("export: %d", export.Code)
	}
	if got := export.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected export content type %q", got)
	}
	if disposition := export.Header().Get("Content-Disposition"); !strings.Contains(disposition, "Rosa_s_Cantina_-_Modern_Website.html") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if export.Body.String() != artifact.Content {
		t.Fatalf("expected raw html export")
	}

	deploy := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, "/v1/artifacts/"+artifact.ID+"/deploy", nil, nil)
	if deploy.Code != http.StatusOK {
		t.Fatalf("deploy: %d %s", deploy.Code, deploy.Body.String())
	}
	result := decodeBody[viewer.DeploymentResult](t, deploy)
	if !strings.HasPrefix(result.URL, "https://preview.leadforge.dev/") {
		t.Fatalf("unexpected deploy url %q", result.URL)
	}
}

func TestViewerActionsOverHTTP(t *testing.T) {
	fixture := newAPIFixture(t)
	artifact := seedArtifact(t, fixture)
	path := "/v1/artifacts/" + artifact.ID + "/viewer"

	state := fixture.do(t, fixture.api.ArtifactByID, http.MethodGet, path, nil, nil)
	if state.Code != http.StatusOK {
		t.Fatalf("viewer state: %d", state.Code)
	}
	initial := decodeBody[viewerStateResponse](t, state)
	if initial.Render.Mode != viewer.ModePreview || initial.Render.Zoom != 100 {
		t.Fatalf("unexpected initial state %+v", initial.Render)
	}

	zoomed := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "set_zoom", Zoom: 130}, nil)
	if zoomed.Code != http.StatusOK {
		t.Fatalf("set zoom: %d", zoomed.Code)
	}
	if got := decodeBody[viewerStateResponse](t, zoomed); got.Render.Zoom != 130 {
		t.Fatalf("expected zoom 130, got %d", got.Render.Zoom)
	}

	// Session state persists across requests for the same artifact.
	second := fixture.do(t, fixture.api.ArtifactByID, http.MethodGet, path, nil, nil)
	if got := decodeBody[viewerStateResponse](t, second); got.Render.Zoom != 130 {
		t.Fatalf("expected zoom to stick across requests, got %d", got.Render.Zoom)
	}

	copied := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "copy"}, nil)
	if copied.Code != http.StatusOK {
		t.Fatalf("copy: %d", copied.Code)
	}
	copyBody := decodeBody[map[string]any](t, copied)
	if copyBody["content"] != artifact.Content || copyBody["copied"] != true {
		t.Fatalf("unexpected copy response %+v", copyBody)
	}

	if recorder := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "edit_begin"}, nil); recorder.Code != http.StatusOK {
		t.Fatalf("edit begin: %d", recorder.Code)
	}
	if recorder := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "edit_update", Content: "<html><body>draft</body></html>"}, nil); recorder.Code != http.StatusOK {
		t.Fatalf("edit update: %d", recorder.Code)
	}
	if recorder := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "edit_save"}, nil); recorder.Code != http.StatusOK {
		t.Fatalf("edit save: %d %s", recorder.Code, recorder.Body.String())
	}

	stored, err := fixture.artifacts.GetArtifact(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("reload artifact: %v", err)
	}
	if !strings.Contains(stored.Content, "draft") {
		t.Fatalf("expected saved edit persisted through the registry callback")
	}

	conflict := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "edit_save"}, nil)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 saving without an edit, got %d", conflict.Code)
	}

	unknown := fixture.do(t, fixture.api.ArtifactByID, http.MethodPost, path,
		viewerActionRequest{Action: "levitate"}, nil)
	if unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", unknown.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	fixture := newAPIFixture(t)

	created := fixture.do(t, fixture.api.History, http.MethodPost, "/v1/history",
		historyRequest{Query: "pizza near me", Location: "Austin, TX", ResultCount: 9}, nil)
	if created.Code != http.StatusCreated {
		t.Fatalf("create history: %d %s", created.Code, created.Body.String())
	}
	entry := decodeBody[domain.SearchHistoryEntry](t, created)
	if entry.ID == "" || entry.SearchedAt.IsZero() {
		t.Fatalf("expected server-assigned id and timestamp, got %+v", entry)
	}

	noQuery := fixture.do(t, fixture.api.History, http.MethodPost, "/v1/history",
		historyRequest{Location: "Austin, TX"}, nil)
	if noQuery.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", noQuery.Code)
	}

	listed := fixture.do(t, fixture.api.History, http.MethodGet, "/v1/history", nil, nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("list history: %d", listed.Code)
	}
	listing := decodeBody[map[string][]domain.SearchHistoryEntry](t, listed)
	if len(listing["history"]) != 1 || listing["history"][0].Query != "pizza near me" {
		t.Fatalf("unexpected history %+v", listing)
	}

	export := fixture.do(t, fixture.api.History, http.MethodGet, "/v1/history/export", nil, nil)
	if export.Code != http.StatusOK {
		t.Fatalf("export history: %d", export.Code)
	}
	if disposition := export.Header().Get("Content-Disposition"); !strings.Contains(disposition, "search_history.json") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
}

func TestAnalyzedBusinessesEndpoints(t *testing.T) {
	fixture := newAPIFixture(t)

	created := fixture.do(t, fixture.api.Businesses, http.MethodPost, "/v1/businesses/analyzed",
		analyzedRequest{Business: domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina"}, Score: 0.82}, nil)
	if created.Code != http.StatusCreated {
		t.Fatalf("save analyzed: %d %s", created.Code, created.Body.String())
	}

	invalid := fixture.do(t, fixture.api.Businesses, http.MethodPost, "/v1/businesses/analyzed",
		analyzedRequest{Business: domain.BusinessRecord{Name: "No ID"}}, nil)
	if invalid.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid business, got %d", invalid.Code)
	}

	listed := fixture.do(t, fixture.api.Businesses, http.MethodGet, "/v1/businesses/analyzed", nil, nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("list analyzed: %d", listed.Code)
	}
	listing := decodeBody[map[string][]domain.AnalyzedBusiness](t, listed)
	if len(listing["analyzed"]) != 1 || listing["analyzed"][0].Score != 0.82 {
		t.Fatalf("unexpected analyzed listing %+v", listing)
	}
}

func TestBusinessArtifactsEndpoint(t *testing.T) {
	fixture := newAPIFixture(t)
	seedArtifact(t, fixture)

	listed := fixture.do(t, fixture.api.Businesses, http.MethodGet, "/v1/businesses/biz-1/artifacts", nil, nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("list business artifacts: %d", listed.Code)
	}
	listing := decodeBody[map[string][]domain.GeneratedArtifact](t, listed)
	if len(listing["artifacts"]) != 1 {
		t.Fatalf("unexpected artifact listing %+v", listing)
	}

	other := fixture.do(t, fixture.api.Businesses, http.MethodGet, "/v1/businesses/biz-2/artifacts", nil, nil)
	if other.Code != http.StatusOK {
		t.Fatalf("list for other business: %d", other.Code)
	}
	empty := decodeBody[map[string][]domain.GeneratedArtifact](t, other)
	if len(empty["artifacts"]) != 0 {
		t.Fatalf("expected no artifacts for other business")
	}

	byQuery := fixture.do(t, fixture.api.ListArtifacts, http.MethodGet, "/v1/artifacts?business_id=biz-1", nil, nil)
	if byQuery.Code != http.StatusOK {
		t.Fatalf("list artifacts by query: %d", byQuery.Code)
	}
	queried := decodeBody[map[string][]domain.GeneratedArtifact](t, byQuery)
	if len(queried["artifacts"]) != 1 {
		t.Fatalf("unexpected query listing %+v", queried)
	}

	missing := fixture.do(t, fixture.api.ListArtifacts, http.MethodGet, "/v1/artifacts", nil, nil)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected missing business_id rejected, got %d", missing.Code)
	}
}

func TestOnboardingEndpoints(t *testing.T) {
	fixture := newAPIFixture(t)

	initial := fixture.do(t, fixture.api.Onboarding, http.MethodGet, "/v1/onboarding", nil, nil)
	if initial.Code != http.StatusOK {
		t.Fatalf("get onboarding: %d", initial.Code)
	}
	if state := decodeBody[map[string]bool](t, initial); state["complete"] {
		t.Fatalf("expected onboarding incomplete by default")
	}

	set := fixture.do(t, fixture.api.Onboarding, http.MethodPut, "/v1/onboarding",
		onboardingRequest{Complete: true}, nil)
	if set.Code != http.StatusOK {
		t.Fatalf("set onboarding: %d", set.Code)
	}

	after := fixture.do(t, fixture.api.Onboarding, http.MethodGet, "/v1/onboarding", nil, nil)
	if state := decodeBody[map[string]bool](t, after); !state["complete"] {
		t.Fatalf("expected onboarding complete after update")
	}
}
