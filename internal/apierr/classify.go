package apierr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/leadforge/leadforge-back/internal/ai"
)

type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryRateLimit  Category = "rate_limit"
	CategoryServer     Category = "server"
	CategoryUnknown    Category = "unknown"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severityByCategory only selects presentation (toast style, log level);
// no category is treated as always fatal.
var severityByCategory = map[Category]Severity{
	CategoryNetwork:    SeverityMedium,
	CategoryValidation: SeverityLow,
	CategoryAuth:       SeverityHigh,
	CategoryRateLimit:  SeverityLow,
	CategoryServer:     SeverityHigh,
	CategoryUnknown:    SeverityMedium,
}

func SeverityOf(category Category) Severity {
	if severity, ok := severityByCategory[category]; ok {
		return severity
	}
	return SeverityMedium
}

// Classify buckets an error by status code when one is available, falling
// back to message heuristics otherwise.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var gatewayErr *ai.GatewayError
	if errors.As(err, &gatewayErr) {
		return ClassifyStatus(gatewayErr.StatusCode)
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "timeout"),
		strings.Contains(message, "connection refused"),
		strings.Contains(message, "no such host"),
		strings.Contains(message, "transport error"):
		return CategoryNetwork
	case strings.Contains(message, "unauthorized"),
		strings.Contains(message, "forbidden"),
		strings.Contains(message, "api key"):
		return CategoryAuth
	case strings.Contains(message, "rate limit"),
		strings.Contains(message, "too many requests"):
		return CategoryRateLimit
	case strings.Contains(message, "invalid"),
		strings.Contains(message, "required"),
		strings.Contains(message, "malformed"):
		return CategoryValidation
	default:
		return CategoryUnknown
	}
}

func ClassifyStatus(statusCode int) Category {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return CategoryAuth
	case statusCode == http.StatusTooManyRequests:
		return CategoryRateLimit
	case statusCode >= 500:
		return CategoryServer
	case statusCode >= 400:
		return CategoryValidation
	case statusCode == 0:
		return CategoryNetwork
	default:
		return CategoryUnknown
	}
}

// Retryable reports whether a failed call is worth repeating. Only transient
// categories qualify; validation and auth failures will not improve on retry.
func Retryable(err error) bool {
	switch Classify(err) {
	case CategoryNetwork, CategoryRateLimit, CategoryServer:
		return true
	default:
		return false
	}
}
