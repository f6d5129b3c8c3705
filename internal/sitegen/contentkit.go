package sitegen

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/leadforge/leadforge-back/internal/domain"
)

type contentKitData struct {
	Name      string
	Category  Category
	Primary   template.CSS
	Accent    template.CSS
	About     string
	Headlines []string
	Posts     []socialPost
	EmailSubj string
	EmailBody string
	Year      int
}

type socialPost struct {
	Channel string
	Body    string
}

var contentKitTemplate = template.Must(template.New("contentkit").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Content Kit - {{.Name}}</title>
<style>
:root { --primary: {{.Primary}}; --accent: {{.Accent}}; }
body { font-family: system-ui, sans-serif; margin: 0; color: #1f2430; background: #f8fafc; }
header { background: var(--primary); color: #fff; padding: 2rem 5vw; }
section { margin: 2rem 5vw; background: #fff; border-radius: 0.75rem; padding: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
h2 { color: var(--primary); border-bottom: 2px solid var(--accent); padding-bottom: 0.4rem; }
.post { border-left: 4px solid var(--accent); padding: 0.5rem 1rem; margin-bottom: 1rem; }
.post .channel { font-weight: 700; color: var(--primary); }
footer { text-align: center; padding: 1.5rem; color: #6b7280; }
</style>
</head>
<body>
<header>
<h1>Content Kit: {{.Name}}</h1>
<p>Ready-to-publish copy for every channel.</p>
</header>
<section>
<h2>Brand Summary</h2>
<p>{{.About}}</p>
</section>
<section>
<h2>Headline Options</h2>
<ol>
{{range .Headlines}}<li>{{.}}</li>
{{end}}</ol>
</section>
<section>
<h2>Social Posts</h2>
{{range .Posts}}<div class="post"><span class="channel">{{.Channel}}</span><p>{{.Body}}</p></div>
{{end}}</section>
<section>
<h2>Email Draft</h2>
<p><strong>Subject:</strong> {{.EmailSubj}}</p>
<p>{{.EmailBody}}</p>
</section>
<footer>Generated content kit &middot; {{.Year}}</footer>
</body>
</html>
`))

// AssembleContentKit renders the multi-section content package used by the
// content agent: brand summary, headline options, social posts and an email
// draft. Same no-fail contract as Assemble.
func AssembleContentKit(business domain.BusinessRecord) string {
	category := ParseCategory(business.Category)
	profile := ProfileFor(category)

	name := strings.TrimSpace(business.Name)
	if name == "" {
		name = "Your Business"
	}
	locationSuffix := ""
	if strings.TrimSpace(business.Location) != "" {
		locationSuffix = " in " + strings.TrimSpace(business.Location)
	}

	data := contentKitData{
		Name:     name,
		Category: category,
		Primary:  template.CSS(profile.Palette.Primary),
		Accent:   template.CSS(profile.Palette.Accent),
		About:    fmt.Sprintf("%s%s. %s", name, locationSuffix, profile.Description),
		Headlines: []string{
			fmt.Sprintf("%s - %s", name, profile.Tagline),
			fmt.Sprintf("Discover what makes %s different", name),
			fmt.Sprintf("%s: now taking new customers%s", name, locationSuffix),
		},
		Posts: []socialPost{
			{Channel: "Instagram", Body: fmt.Sprintf("%s %s. Come see us%s!", name, strings.ToLower(profile.Tagline), locationSuffix)},
			{Channel: "Facebook", Body: fmt.Sprintf("Looking for %s you can rely on? %s has you covered. %s", string(category), name, profile.CTALabel)},
			{Channel: "LinkedIn", Body: fmt.Sprintf("%s continues to grow%s. %s", name, locationSuffix, profile.Description)},
		},
		EmailSubj: fmt.Sprintf("A quick hello from %s", name),
		EmailBody: fmt.Sprintf("Hi there - we're %s. %s Reply to this email or visit us to learn more.", name, profile.Description),
		Year:      currentYear(),
	}

	var out strings.Builder
	if err := contentKitTemplate.Execute(&out, data); err != nil {
		return minimalDocument(name, data.About)
	}
	return out.String()
}
