package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leadforge/leadforge-back/internal/ai"
	contextbuilder "github.com/leadforge/leadforge-back/internal/context"
	"github.com/leadforge/leadforge-back/internal/domain"
	httpserver "github.com/leadforge/leadforge-back/internal/http"
	"github.com/leadforge/leadforge-back/internal/http/handlers"
	"github.com/leadforge/leadforge-back/internal/queue"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/service"
	"github.com/leadforge/leadforge-back/internal/store"
	"github.com/leadforge/leadforge-back/internal/tracker"
	"github.com/leadforge/leadforge-back/internal/viewer"
	"github.com/leadforge/leadforge-back/internal/worker"
)

type scenarioResult struct {
	Name          string   `json:"name"`
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Errors        int      `json:"errors"`
	P50MS         float64  `json:"p50_ms"`
	P95MS         float64  `json:"p95_ms"`
	P99MS         float64  `json:"p99_ms"`
	MaxMS         float64  `json:"max_ms"`
	ThroughputRPS float64  `json:"throughput_rps"`
	ErrorSamples  []string `json:"error_samples,omitempty"`
}

type contextResult struct {
	RawTokens       int     `json:"raw_tokens"`
	SelectedTokens  int     `json:"selected_tokens"`
	ReductionPct    float64 `json:"reduction_pct"`
	SelectedChunks  int     `json:"selected_chunks"`
	CandidateChunks int     `json:"candidate_chunks"`
}

type runResult struct {
	GeneratedAtUTC string           `json:"generated_at_utc"`
	Environment    string           `json:"environment"`
	Results        []scenarioResult `json:"results"`
	ContextTuning  contextResult    `json:"context_tuning"`
	SLOEvaluation  map[string]bool  `json:"slo_evaluation"`
}

type benchmarkEnv struct {
	server *httptest.Server
	cancel context.CancelFunc
}

func main() {
	buildsTotal := flag.Int("builds-total", 220, "total build enqueue requests")
	buildsConcurrency := flag.Int("builds-concurrency", 24, "concurrency for build enqueue requests")
	tasksTotal := flag.Int("tasks-total", 200, "total task list requests")
	tasksConcurrency := flag.Int("tasks-concurrency", 20, "concurrency for task list requests")
	historyTotal := flag.Int("history-total", 160, "total history append requests")
	historyConcurrency := flag.Int("history-concurrency", 20, "concurrency for history append requests")
	analyzedTotal := flag.Int("analyzed-total", 120, "total analyzed list requests")
	analyzedConcurrency := flag.Int("analyzed-concurrency", 16, "concurrency for analyzed list requests")
	outputPath := flag.String("output", "", "optional path to persist benchmark results JSON")
	flag.Parse()

	env, err := startBenchmarkEnvironment()
	if err != nil {
		log.Fatalf("failed to start local benchmark environment: %v", err)
	}
	defer env.cancel()
	defer env.server.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	var idCounter int64

	buildsScenario := runScenario("builds_enqueue", *buildsTotal, *buildsConcurrency, func(index int) error {
		// Every request opens a fresh (business, agent) slot so no build
		// collides with an in-flight one.
		requestID := atomic.AddInt64(&idCounter, 1)
		agents := []string{"website", "content", "marketing"}
		payload := map[string]any{
			"business": map[string]any{
				"id":                fmt.Sprintf("bench-biz-%d", requestID),
				"name":              fmt.Sprintf("Benchmark Business %d", requestID),
				"business_category": "restaurant",
				"location":          "Springfield",
			},
			"agent_type": agents[index%len(agents)],
		}
		return postJSON(client, env.server.URL+"/v1/builds", payload, nil, http.StatusAccepted)
	})

	tasksScenario := runScenario("tasks_list", *tasksTotal, *tasksConcurrency, func(_ int) error {
		return getJSON(client, env.server.URL+"/v1/tasks", http.StatusOK)
	})

	historyScenario := runScenario("history_append", *historyTotal, *historyConcurrency, func(index int) error {
		payload := map[string]any{
			"query":        fmt.Sprintf("benchmark query %d", index%32),
			"location":     "Springfield",
			"result_count": index % 25,
		}
		return postJSON(client, env.server.URL+"/v1/history", payload, nil, http.StatusCreated)
	})

	analyzedScenario := runScenario("analyzed_list", *analyzedTotal, *analyzedConcurrency, func(_ int) error {
		return getJSON(client, env.server.URL+"/v1/businesses/analyzed", http.StatusOK)
	})

	contextTuning := runContextSelectionScenario()
	results := []scenarioResult{
		buildsScenario,
		tasksScenario,
		historyScenario,
		analyzedScenario,
	}

	slo := map[string]bool{
		"build_enqueue_p95_le_500ms": buildsScenario.P95MS <= 500,
		"task_list_p95_le_200ms":     tasksScenario.P95MS <= 200,
	}

	report := runResult{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Environment:    "local-httptest",
		Results:        results,
		ContextTuning:  contextTuning,
		SLOEvaluation:  slo,
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal benchmark report: %v", err)
	}

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, encoded, 0o644); err != nil {
			log.Fatalf("failed to write output file: %v", err)
		}
	}

	_, _ = fmt.Fprintln(os.Stdout, string(encoded))
}

func startBenchmarkEnvironment() (*benchmarkEnv, error) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := log.New(io.Discard, "", 0)

	artifactsRepo := repository.NewMemoryArtifactsRepository()
	tasksRepo := repository.NewMemoryTasksRepository()
	stateService := store.NewStateService(store.NewMemoryKV())
	localQueue := queue.NewLocalQueue(4096, 3, logger)

	builder := service.NewArtifactBuilder(service.ArtifactBuilderDependencies{
		Router:    ai.NewModelRouter(ai.ModelRouterConfig{}),
		Client:    nil,
		Artifacts: artifactsRepo,
		Logger:    logger,
	})

	taskTracker := tracker.New(tasksRepo, stateService, logger)
	buildsService := service.NewBuildsService(taskTracker, localQueue, stateService)

	deployer := viewer.NewSimulatedDeployer()
	deployer.Delay = 0

	api := handlers.NewAPI(buildsService, artifactsRepo, stateService, deployer)
	router := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      "",
		RateLimitRPS:   20000,
		RateLimitBurst: 20000,
	})

	processor := worker.NewProcessor(localQueue, taskTracker, builder, logger)
	go processor.Start(ctx)

	server := httptest.NewServer(router)
	return &benchmarkEnv{
		server: server,
		cancel: cancel,
	}, nil
}

func runScenario(
	name string,
	total int,
	concurrency int,
	requestFn func(index int) error,
) scenarioResult {
	if total <= 0 {
		return scenarioResult{Name: name}
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	startedAt := time.Now()
	type sample struct {
		durationMS float64
		err        string
	}

	jobs := make(chan int, total)
	results := make(chan sample, total)
	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				requestStart := time.Now()
				err := requestFn(index)
				s := sample{
					durationMS: float64(time.Since(requestStart).Microseconds()) / 1000.0,
				}
				if err != nil {
					s.err = err.Error()
				}
				results <- s
			}
		}()
	}
	wg.Wait()
	close(results)

	durations := make([]float64, 0, total)
	errorSamples := make([]string, 0, 5)
	success := 0
	errorsCount := 0
	for item := range results {
		durations = append(durations, item.durationMS)
		if item.err == "" {
			success++
			continue
		}
		errorsCount++
		if len(errorSamples) < 5 {
			errorSamples = append(errorSamples, item.err)
		}
	}

	sort.Float64s(durations)
	elapsedSeconds := time.Since(startedAt).Seconds()
	throughput := 0.0
	if elapsedSeconds > 0 {
		throughput = float64(total) / elapsedSeconds
	}

	result := scenarioResult{
		Name:          name,
		Total:         total,
		Success:       success,
		Errors:        errorsCount,
		P50MS:         percentile(durations, 0.50),
		P95MS:         percentile(durations, 0.95),
		P99MS:         percentile(durations, 0.99),
		MaxMS:         percentile(durations, 1.00),
		ThroughputRPS: round2(throughput),
		ErrorSamples:  errorSamples,
	}
	return result
}

func postJSON(
	client *http.Client,
	url string,
	payload any,
	headers map[string]string,
	expectedStatus int,
) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("unexpected status %d (expected %d): %s", response.StatusCode, expectedStatus, string(body))
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

func getJSON(client *http.Client, url string, expectedStatus int) error {
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("unexpected status %d (expected %d): %s", response.StatusCode, expectedStatus, string(body))
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return round2(values[0])
	}
	if p >= 1 {
		return round2(values[len(values)-1])
	}
	rank := int(math.Ceil(float64(len(values))*p)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(values) {
		rank = len(values) - 1
	}
	return round2(values[rank])
}

// runContextSelectionScenario measures how much the prioritized context
// builder trims relative to shipping every candidate fragment to the model.
func runContextSelectionScenario() contextResult {
	retriever := contextbuilder.NewBusinessRetriever()
	builder := contextbuilder.NewBuilder(retriever)

	business := domain.BusinessRecord{
		ID:          "context-case",
		Name:        "Benchmark Bistro",
		Category:    "restaurant",
		Location:    "Springfield",
		Phone:       "+1 555 0100",
		Email:       "hello@benchmarkbistro.example",
		Rating:      4.6,
		ReviewCount: 231,
		HasWebsite:  true,
		Website:     "https://benchmarkbistro.example",
	}
	notes := []string{
		"Owner wants a dark palette with gold accents on the landing page.",
		"Weekend brunch is the highest-margin offer and should lead the hero.",
		"Weekend brunch is the highest-margin offer and should lead the hero.",
		"Competitor two blocks away just launched online ordering.",
		"Catering inquiries go unanswered; the form must be prominent.",
		"Catering inquiries go unanswered; the form must be prominent.",
	}

	candidates, err := retriever.Retrieve(context.Background(), contextbuilder.RetrievalInput{
		Agent:    domain.AgentWebsite,
		Business: business,
		Notes:    notes,
	})
	if err != nil {
		return contextResult{}
	}
	rawTokens := 0
	for _, chunk := range candidates {
		rawTokens += len([]rune(strings.TrimSpace(chunk.Text))) / 4
	}

	optimized, err := builder.Build(context.Background(), contextbuilder.BuildInput{
		Agent:          domain.AgentWebsite,
		Business:       business,
		Notes:          notes,
		MaxInputTokens: 500,
		MaxChunks:      6,
	})
	if err != nil {
		return contextResult{}
	}

	reduction := 0.0
	if rawTokens > 0 {
		reduction = (float64(rawTokens-optimized.TokenCount) / float64(rawTokens)) * 100
	}

	return contextResult{
		RawTokens:       rawTokens,
		SelectedTokens:  optimized.TokenCount,
		ReductionPct:    round2(reduction),
		SelectedChunks:  len(optimized.Chunks),
		CandidateChunks: len(candidates),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
