package httpserver

import (
	"log"
	"net/http"

	"github.com/leadforge/leadforge-back/internal/http/handlers"
	"github.com/leadforge/leadforge-back/internal/http/middleware"
)

type RouterDependencies struct {
	API            *handlers.API
	Logger         *log.Logger
	AuthToken      string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", deps.API.Health)
	mux.HandleFunc("/v1/builds", deps.API.StartBuild)
	mux.HandleFunc("/v1/tasks", deps.API.Tasks)
	mux.HandleFunc("/v1/tasks/", deps.API.TaskByID)
	mux.HandleFunc("/v1/artifacts", deps.API.ListArtifacts)
	mux.HandleFunc("/v1/artifacts/", deps.API.ArtifactByID)
	mux.HandleFunc("/v1/businesses/", deps.API.Businesses)
	mux.HandleFunc("/v1/history", deps.API.History)
	mux.HandleFunc("/v1/history/", deps.API.History)
	mux.HandleFunc("/v1/onboarding", deps.API.Onboarding)

	handler := http.Handler(mux)
	handler = middleware.Auth(deps.AuthToken)(handler)
	handler = middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.CORSOrigins,
	})(handler)
	handler = middleware.Trace(deps.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
