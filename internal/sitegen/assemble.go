package sitegen

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
)

// pageData is the fully-defaulted substitution set handed to the landing
// page template. Every field is guaranteed non-empty by buildPageData, so
// the rendered document is well-formed no matter how sparse the input.
type pageData struct {
	Name        string
	Tagline     string
	Description string
	Location    string
	Phone       string
	Email       string
	Website     string
	Rating      string
	ReviewCount int
	Services    []string
	Primary     template.CSS
	Accent      template.CSS
	CTALabel    string
	Category    Category
	Year        int
}

// Assemble renders a complete landing page document for the business. It is
// pure and never fails: unknown categories use the generic profile, missing
// optional fields degrade to defaults or omitted fragments.
func Assemble(business domain.BusinessRecord) string {
	data := buildPageData(business, ParseCategory(business.Category))

	var out strings.Builder
	if err := landingTemplate.Execute(&out, data); err != nil {
		// Execution over a fully-defaulted value type cannot reference
		// missing fields; this path exists to honor the no-fail contract.
		return minimalDocument(data.Name, data.Description)
	}
	return out.String()
}

func buildPageData(business domain.BusinessRecord, category Category) pageData {
	profile := ProfileFor(category)

	name := strings.TrimSpace(business.Name)
	if name == "" {
		name = "Your Business"
	}

	description := profile.Description
	rating := ""
	if business.Rating > 0 {
		rating = fmt.Sprintf("%.1f", business.Rating)
	}

	return pageData{
		Name:        name,
		Tagline:     profile.Tagline,
		Description: description,
		Location:    strings.TrimSpace(business.Location),
		Phone:       strings.TrimSpace(business.Phone),
		Email:       strings.TrimSpace(business.Email),
		Website:     strings.TrimSpace(business.Website),
		Rating:      rating,
		ReviewCount: business.ReviewCount,
		Services:    profile.Services,
		Primary:     template.CSS(profile.Palette.Primary),
		Accent:      template.CSS(profile.Palette.Accent),
		CTALabel:    profile.CTALabel,
		Category:    category,
		Year:        currentYear(),
	}
}

func minimalDocument(name, description string) string {
	escapedName := template.HTMLEscapeString(name)
	escapedDescription := template.HTMLEscapeString(description)
	return "<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>" +
		escapedName + "</title></head><body><h1>" + escapedName + "</h1><p>" +
		escapedDescription + "</p></body></html>"
}
