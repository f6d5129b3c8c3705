package quality

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/leadforge/leadforge-back/internal/policy"
)

var ErrQualityRejected = errors.New("output failed quality checks")

const minDocumentScore = 0.50

type DocumentValidationInput struct {
	BusinessName string
	Content      string
}

type DocumentValidationResult struct {
	Content   string
	Score     float64
	Corrected bool
}

// OutputValidator gates remote generation output before it becomes an
// artifact. A rejection sends the builder down the template fallback, so
// the checks only need to catch output that is unusable, not imperfect.
type OutputValidator struct{}

func NewOutputValidator() *OutputValidator {
	return &OutputValidator{}
}

func (v *OutputValidator) ValidateDocument(input DocumentValidationInput) (DocumentValidationResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return DocumentValidationResult{}, fmt.Errorf("%w: document is empty", ErrQualityRejected)
	}

	corrected := false
	penalty := 0.0

	if stripped, changed := stripCodeFences(content); changed {
		content = stripped
		corrected = true
		penalty += 0.05
	}

	if err := policy.EnforceGeneratedContent(content); err != nil {
		return DocumentValidationResult{}, fmt.Errorf("%w: %v", ErrQualityRejected, err)
	}

	lowered := strings.ToLower(content)
	if !strings.Contains(lowered, "<html") {
		return DocumentValidationResult{}, fmt.Errorf("%w: output is not an html document", ErrQualityRejected)
	}
	if !strings.HasPrefix(lowered, "<!doctype") {
		content = "<!DOCTYPE html>\n" + content
		corrected = true
		penalty += 0.04
	}
	if !strings.Contains(lowered, "<body") {
		penalty += 0.20
	}
	if !strings.Contains(lowered, "</html>") {
		// Truncated generation usually means the model hit its token cap.
		penalty += 0.25
	}

	name := strings.TrimSpace(input.BusinessName)
	if name != "" && !strings.Contains(lowered, strings.ToLower(name)) {
		penalty += 0.15
	}

	if len(content) < 400 {
		penalty += 0.20
	}

	score := clamp01(1.0 - penalty)
	if score < minDocumentScore {
		return DocumentValidationResult{}, fmt.Errorf("%w: low document quality score %.2f", ErrQualityRejected, score)
	}

	return DocumentValidationResult{
		Content:   content,
		Score:     round2(score),
		Corrected: corrected,
	}, nil
}

// stripCodeFences removes markdown fences some models wrap documents in.
func stripCodeFences(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "```") {
		return value, false
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return value, false
	}
	lines = lines[1:]
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), true
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
