package service

import (
	"fmt"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
)

const websiteInstructions = "You are a senior web developer. Produce one complete, " +
	"self-contained HTML document (inline CSS, no external assets, no JavaScript " +
	"frameworks) for the business described by the user. Return only the document."

// websitePrompt flattens the business record into the facts the model needs.
// Only present fields are included; the instructions carry the format rules.
func websitePrompt(business domain.BusinessRecord, contextText string) string {
	var prompt strings.Builder
	if strings.TrimSpace(contextText) != "" {
		prompt.WriteString(contextText)
		prompt.WriteString("\n\n")
	}
	fmt.Fprintf(&prompt, "Build a modern landing page for %q.\n", business.Name)
	if strings.TrimSpace(business.Category) != "" {
		fmt.Fprintf(&prompt, "Business category: %s.\n", business.Category)
	}
	if strings.TrimSpace(business.Location) != "" {
		fmt.Fprintf(&prompt, "Location: %s.\n", business.Location)
	}
	if strings.TrimSpace(business.Phone) != "" {
		fmt.Fprintf(&prompt, "Phone: %s.\n", business.Phone)
	}
	if strings.TrimSpace(business.Email) != "" {
		fmt.Fprintf(&prompt, "Email: %s.\n", business.Email)
	}
	if business.Rating > 0 {
		fmt.Fprintf(&prompt, "Rating: %.1f stars from %d reviews.\n", business.Rating, business.ReviewCount)
	}
	prompt.WriteString("Include a hero section, a services section, an about section and a contact section.")
	return prompt.String()
}
