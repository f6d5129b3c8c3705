package sitegen

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
)

type campaignData struct {
	Name     string
	Primary  template.CSS
	Accent   template.CSS
	Overview string
	Channels []campaignChannel
	Metrics  []string
	Year     int
}

type campaignChannel struct {
	Name    string
	Goal    string
	Message string
}

var campaignTemplate = template.Must(template.New("campaign").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Campaign Board - {{.Name}}</title>
<style>
:root { --primary: {{.Primary}}; --accent: {{.Accent}}; }
body { font-family: system-ui, sans-serif; margin: 0; color: #1f2430; background: #f1f5f9; }
header { background: var(--primary); color: #fff; padding: 2rem 5vw; }
.board { display: grid; grid-template-columns: repeat(auto-fit, minmax(16rem, 1fr)); gap: 1.25rem; margin: 2rem 5vw; }
.channel { background: #fff; border-radius: 0.75rem; padding: 1.25rem; border-top: 4px solid var(--accent); }
.channel h3 { margin-top: 0; color: var(--primary); }
.channel .goal { font-size: 0.85rem; text-transform: uppercase; letter-spacing: 0.05em; color: #6b7280; }
.metrics { margin: 0 5vw 2rem; background: #fff; border-radius: 0.75rem; padding: 1.25rem; }
.metrics h2 { color: var(--primary); }
footer { text-align: center; padding: 1.5rem; color: #6b7280; }
</style>
</head>
<body>
<header>
<h1>Campaign Board: {{.Name}}</h1>
<p>{{.Overview}}</p>
</header>
<div class="board">
{{range .Channels}}<div class="channel">
<h3>{{.Name}}</h3>
<p class="goal">{{.Goal}}</p>
<p>{{.Message}}</p>
</div>
{{end}}</div>
<div class="metrics">
<h2>What to Measure</h2>
<ul>
{{range .Metrics}}<li>{{.}}</li>
{{end}}</ul>
</div>
<footer>Generated campaign board &middot; {{.Year}}</footer>
</body>
</html>
`))

// AssembleCampaignBoard renders the marketing agent's multi-channel campaign
// dashboard document. Same no-fail contract as Assemble.
func AssembleCampaignBoard(business domain.BusinessRecord) string {
	category := ParseCategory(business.Category)
	profile := ProfileFor(category)

	name := strings.TrimSpace(business.Name)
	if name == "" {
		name = "Your Business"
	}

	audience := "local customers"
	if strings.TrimSpace(business.Location) != "" {
		audience = "customers in " + strings.TrimSpace(business.Location)
	}

	data := campaignData{
		Name:     name,
		Primary:  template.CSS(profile.Palette.Primary),
		Accent:   template.CSS(profile.Palette.Accent),
		Overview: fmt.Sprintf("A four-week awareness campaign positioning %s for %s.", name, audience),
		Channels: []campaignChannel{
			{Name: "Search", Goal: "Capture intent", Message: fmt.Sprintf("Ads targeting %q queries near you.", strings.TrimSpace(firstNonEmptyString(business.Category, "your services")))},
			{Name: "Social", Goal: "Build awareness", Message: fmt.Sprintf("%s - %s", name, profile.Tagline)},
			{Name: "Email", Goal: "Nurture leads", Message: fmt.Sprintf("Weekly touchpoint introducing %s to past enquiries.", name)},
			{Name: "Local", Goal: "Drive visits", Message: fmt.Sprintf("Directory listings and review prompts for %s.", audience)},
		},
		Metrics: []string{
			"Impressions and reach per channel",
			"Click-through rate on the primary call to action",
			"Enquiries attributed to the campaign",
			"Review count and average rating trend",
		},
		Year: currentYear(),
	}

	var out strings.Builder
	if err := campaignTemplate.Execute(&out, data); err != nil {
		return minimalDocument(name, data.Overview)
	}
	return out.String()
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
