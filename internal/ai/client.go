package ai

import (
	"context"
	"errors"
	"fmt"
)

var ErrGatewayUnavailable = errors.New("generation gateway unavailable")

// SamplingOptions configures the completion request. Zero values fall back
// to the gateway defaults below.
type SamplingOptions struct {
	Temperature      float64
	MaxOutputTokens  int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
)

type GenerateRequest struct {
	Model        string
	Instructions string
	Input        string
	Options      SamplingOptions
}

type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type GenerateResult struct {
	Text    string
	ModelID string
	Usage   TokenUsage
}

// TextGenerator is the seam the orchestrator depends on. Implementations do
// not retry; degraded-mode fallback is the caller's responsibility.
type TextGenerator interface {
	Generate(ctx context.Context, request GenerateRequest) (GenerateResult, error)
	Available() bool
}

// GatewayError carries the gateway's reported failure back to callers.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway status %d: %s", e.StatusCode, e.Message)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
