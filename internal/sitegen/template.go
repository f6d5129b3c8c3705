package sitegen

import (
	"html/template"
	"time"
)

func currentYear() int {
	return time.Now().UTC().Year()
}

// landingTemplate is the shared document skeleton: head, nav, hero, services,
// about, contact, footer. Category differences flow in through pageData, so
// every category produces the same well-formed structure.
var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="{{.Description}}">
<title>{{.Name}}{{if .Location}} | {{.Location}}{{end}}</title>
<style>
:root { --primary: {{.Primary}}; --accent: {{.Accent}}; }
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: 'Segoe UI', system-ui, sans-serif; color: #1f2430; line-height: 1.6; }
nav { display: flex; justify-content: space-between; align-items: center; padding: 1rem 6vw; background: var(--primary); color: #fff; }
nav .brand { font-size: 1.25rem; font-weight: 700; }
nav a { color: #fff; text-decoration: none; margin-left: 1.5rem; }
.hero { padding: 6rem 6vw; background: linear-gradient(135deg, var(--primary), var(--accent)); color: #fff; text-align: center; }
.hero h1 { font-size: 2.8rem; margin-bottom: 0.75rem; }
.hero p { font-size: 1.2rem; max-width: 40rem; margin: 0 auto 2rem; }
.hero .cta { display: inline-block; padding: 0.9rem 2.2rem; border-radius: 999px; background: #fff; color: var(--primary); font-weight: 700; text-decoration: none; }
.badge { display: inline-block; margin-top: 1.5rem; padding: 0.4rem 1rem; border-radius: 999px; background: rgba(255,255,255,0.2); }
section { padding: 4rem 6vw; }
section h2 { font-size: 1.9rem; margin-bottom: 1.5rem; color: var(--primary); }
.services { display: grid; grid-template-columns: repeat(auto-fit, minmax(14rem, 1fr)); gap: 1.25rem; }
.services .card { padding: 1.5rem; border: 1px solid #e5e7eb; border-radius: 0.75rem; border-top: 4px solid var(--accent); }
.contact ul { list-style: none; }
.contact li { margin-bottom: 0.6rem; }
footer { padding: 2rem 6vw; background: var(--primary); color: #fff; text-align: center; }
@media (max-width: 640px) { .hero h1 { font-size: 2rem; } nav a { margin-left: 0.9rem; } }
</style>
</head>
<body>
<nav>
<span class="brand">{{.Name}}</span>
<span><a href="#services">Services</a><a href="#about">About</a><a href="#contact">Contact</a></span>
</nav>
<header class="hero">
<h1>{{.Name}}</h1>
<p>{{.Tagline}}</p>
<a class="cta" href="#contact">{{.CTALabel}}</a>
{{if .Rating}}<div class="badge">&#9733; {{.Rating}}{{if .ReviewCount}} &middot; {{.ReviewCount}} reviews{{end}}</div>{{end}}
</header>
<section id="services">
<h2>What We Offer</h2>
<div class="services">
{{range .Services}}<div class="card"><h3>{{.}}</h3></div>
{{end}}</div>
</section>
<section id="about">
<h2>About {{.Name}}</h2>
<p>{{.Description}}</p>
{{if .Location}}<p>Proudly serving {{.Location}}.</p>{{end}}
</section>
<section id="contact" class="contact">
<h2>Contact</h2>
<ul>
{{if .Phone}}<li>Phone: <a href="tel:{{.Phone}}">{{.Phone}}</a></li>{{end}}
{{if .Email}}<li>Email: <a href="mailto:{{.Email}}">{{.Email}}</a></li>{{end}}
{{if .Location}}<li>Address: {{.Location}}</li>{{end}}
{{if .Website}}<li>Web: {{.Website}}</li>{{end}}
</ul>
</section>
<footer>
<p>&copy; {{.Year}} {{.Name}}. All rights reserved.</p>
</footer>
</body>
</html>
`))
