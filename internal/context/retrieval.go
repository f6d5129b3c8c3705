package contextbuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
)

type RetrievalInput struct {
	Agent    domain.AgentKind
	Business domain.BusinessRecord
	// Notes are analyst observations attached to the prospect, typically
	// carried over from the analyzed-business state.
	Notes []string
}

type Chunk struct {
	ID    string
	Text  string
	Score float64
}

type Retriever interface {
	Retrieve(ctx context.Context, input RetrievalInput) ([]Chunk, error)
}

// BusinessRetriever derives prompt fragments from the prospect record itself
// until a richer enrichment source is available.
type BusinessRetriever struct{}

func NewBusinessRetriever() *BusinessRetriever {
	return &BusinessRetriever{}
}

func (r *BusinessRetriever) Retrieve(_ context.Context, input RetrievalInput) ([]Chunk, error) {
	business := input.Business
	fragments := make([]string, 0, 12)

	if name := strings.TrimSpace(business.Name); name != "" {
		fragments = append(fragments, fmt.Sprintf("Business name: %s", name))
	}
	if category := strings.TrimSpace(business.Category); category != "" {
		fragments = append(fragments, fmt.Sprintf("Category: %s", category))
	}
	if businessType := strings.TrimSpace(business.Type); businessType != "" {
		fragments = append(fragments, fmt.Sprintf("Business type: %s", businessType))
	}
	if location := strings.TrimSpace(business.Location); location != "" {
		fragments = append(fragments, fmt.Sprintf("Located in %s; ground copy in the local area.", location))
	}
	if business.Rating > 0 {
		fragment := fmt.Sprintf("Customer rating %.1f out of 5", business.Rating)
		if business.ReviewCount > 0 {
			fragment += fmt.Sprintf(" across %d reviews", business.ReviewCount)
		}
		fragments = append(fragments, fragment+"; reference reputation where it strengthens trust.")
	}
	if business.HasWebsite && strings.TrimSpace(business.Website) != "" {
		fragments = append(fragments, fmt.Sprintf("Existing website %s is being replaced; improve on it, do not link to it.", business.Website))
	} else {
		fragments = append(fragments, "No current web presence; this artifact is the first impression.")
	}
	if phone := strings.TrimSpace(business.Phone); phone != "" {
		fragments = append(fragments, fmt.Sprintf("Primary contact phone: %s", phone))
	}
	if email := strings.TrimSpace(business.Email); email != "" {
		fragments = append(fragments, fmt.Sprintf("Primary contact email: %s", email))
	}

	for _, note := range input.Notes {
		trimmed := strings.TrimSpace(note)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 520 {
			trimmed = trimmed[:520]
		}
		fragments = append(fragments, trimmed)
	}

	chunks := make([]Chunk, 0, len(fragments))
	for index, fragment := range fragments {
		chunks = append(chunks, Chunk{
			ID:    fmt.Sprintf("chunk-%d", index+1),
			Text:  fragment,
			Score: computeScore(input.Agent, index, fragment),
		})
	}
	return chunks, nil
}

func computeScore(agent domain.AgentKind, index int, fragment string) float64 {
	score := 100.0 - float64(index*3)
	normalized := strings.ToLower(fragment)

	// Identity fragments always outrank analyst notes.
	if strings.HasPrefix(normalized, "business name") || strings.HasPrefix(normalized, "category") {
		score += 10
	}
	switch agent {
	case domain.AgentWebsite:
		if strings.Contains(normalized, "contact") || strings.Contains(normalized, "located") {
			score += 6
		}
	case domain.AgentContent:
		if strings.Contains(normalized, "rating") || strings.Contains(normalized, "review") {
			score += 6
		}
	case domain.AgentMarketing:
		if strings.Contains(normalized, "impression") || strings.Contains(normalized, "local") {
			score += 6
		}
	}

	if score < 1 {
		score = 1
	}
	return score
}
