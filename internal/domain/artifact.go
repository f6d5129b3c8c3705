package domain

import "time"

type ArtifactType string

const (
	ArtifactWebsite     ArtifactType = "website"
	ArtifactLandingPage ArtifactType = "landing-page"
	ArtifactContent     ArtifactType = "content"
	ArtifactMarketing   ArtifactType = "marketing"
	ArtifactEmail       ArtifactType = "email"
	ArtifactCampaign    ArtifactType = "campaign"
	ArtifactReport      ArtifactType = "report"
	ArtifactSocialMedia ArtifactType = "social-media"
	ArtifactStrategy    ArtifactType = "strategy"
)

// GenerationPath records which strategy produced an artifact's content.
type GenerationPath string

const (
	PathRemote   GenerationPath = "remote"
	PathTemplate GenerationPath = "template"
)

// ArtifactMetadata is the free-form tag bag attached to every artifact.
// It exists for display badges and observability, never for control flow.
type ArtifactMetadata struct {
	Framework        string         `json:"framework,omitempty"`
	Responsive       bool           `json:"responsive,omitempty"`
	SEOOptimized     bool           `json:"seo_optimized,omitempty"`
	BusinessName     string         `json:"business_name,omitempty"`
	BusinessCategory string         `json:"business_category,omitempty"`
	ModelID          string         `json:"model_id,omitempty"`
	Path             GenerationPath `json:"generation_path,omitempty"`
}

// GeneratedArtifact is the core output entity of the pipeline. Type decides
// how the viewer interprets Content: document types hold a full HTML payload,
// everything else is opaque text or JSON. Content is only ever replaced
// wholesale by an explicit viewer edit.
type GeneratedArtifact struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       ArtifactType     `json:"type"`
	BusinessID string           `json:"business_id"`
	Content    string           `json:"content"`
	Metadata   ArtifactMetadata `json:"metadata"`
	CreatedAt  time.Time        `json:"created_at"`
}

var documentTypes = map[ArtifactType]bool{
	ArtifactWebsite:     true,
	ArtifactLandingPage: true,
	ArtifactEmail:       true,
	ArtifactMarketing:   true,
	ArtifactContent:     true,
}

// IsDocument reports whether Content must be rendered as an HTML document.
func (a GeneratedArtifact) IsDocument() bool {
	return documentTypes[a.Type]
}

// ValidArtifactType reports membership in the closed type set.
func ValidArtifactType(t ArtifactType) bool {
	switch t {
	case ArtifactWebsite, ArtifactLandingPage, ArtifactContent, ArtifactMarketing,
		ArtifactEmail, ArtifactCampaign, ArtifactReport, ArtifactSocialMedia, ArtifactStrategy:
		return true
	}
	return false
}
