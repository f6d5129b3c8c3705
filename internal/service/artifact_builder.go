package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/leadforge-back/internal/ai"
	"github.com/leadforge/leadforge-back/internal/cache"
	contextbuilder "github.com/leadforge/leadforge-back/internal/context"
	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/quality"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/sitegen"
)

type ArtifactBuilderDependencies struct {
	Router    *ai.ModelRouter
	Client    ai.TextGenerator
	Cache     *cache.ResponseCache
	Context   *contextbuilder.Builder
	Validator *quality.OutputValidator
	Artifacts repository.ArtifactsRepository
	Logger    *log.Logger
}

// ArtifactBuilder coordinates generation strategy selection: remote
// generation when the gateway cooperates, template assembly otherwise.
// A build always produces an artifact; remote failures degrade, they do
// not propagate.
type ArtifactBuilder struct {
	router    *ai.ModelRouter
	client    ai.TextGenerator
	cache     *cache.ResponseCache
	context   *contextbuilder.Builder
	validator *quality.OutputValidator
	artifacts repository.ArtifactsRepository
	logger    *log.Logger
}

func NewArtifactBuilder(deps ArtifactBuilderDependencies) *ArtifactBuilder {
	if deps.Cache == nil {
		deps.Cache = cache.NewResponseCache(cache.Config{})
	}
	if deps.Context == nil {
		deps.Context = contextbuilder.NewBuilder(contextbuilder.NewBusinessRetriever())
	}
	if deps.Validator == nil {
		deps.Validator = quality.NewOutputValidator()
	}
	return &ArtifactBuilder{
		router:    deps.Router,
		client:    deps.Client,
		cache:     deps.Cache,
		context:   deps.Context,
		validator: deps.Validator,
		artifacts: deps.Artifacts,
		logger:    deps.Logger,
	}
}

// Build produces and persists the artifact for one agent run. Only a
// persistence failure is returned as an error; generation itself cannot
// fail thanks to the template fallback.
func (b *ArtifactBuilder) Build(
	ctx context.Context,
	business domain.BusinessRecord,
	agent domain.AgentKind,
) (*domain.GeneratedArtifact, error) {
	var (
		content      string
		artifactType domain.ArtifactType
		nameSuffix   string
		path         domain.GenerationPath
		modelID      string
	)

	switch agent {
	case domain.AgentContent:
		// Content and marketing kits are template-only: their value is the
		// structured document, not model prose.
		content = sitegen.AssembleContentKit(business)
		artifactType = domain.ArtifactContent
		nameSuffix = "Content Kit"
		path = domain.PathTemplate
	case domain.AgentMarketing:
		content = sitegen.AssembleCampaignBoard(business)
		artifactType = domain.ArtifactMarketing
		nameSuffix = "Campaign Board"
		path = domain.PathTemplate
	default:
		var err error
		content, modelID, path, err = b.websiteContent(ctx, business)
		if err != nil {
			return nil, err
		}
		artifactType = domain.ArtifactWebsite
		nameSuffix = "Modern Website"
	}

	artifact := &domain.GeneratedArtifact{
		ID:         uuid.NewString(),
		Name:       fmt.Sprintf("%s - %s", business.Name, nameSuffix),
		Type:       artifactType,
		BusinessID: business.ID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
		Metadata: domain.ArtifactMetadata{
			Framework:        "static-html",
			Responsive:       true,
			SEOOptimized:     path == domain.PathRemote,
			BusinessName:     business.Name,
			BusinessCategory: business.Category,
			ModelID:          modelID,
			Path:             path,
		},
	}

	if err := b.artifacts.SaveArtifact(ctx, artifact); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}
	return artifact, nil
}

// websiteContent tries the remote path first and falls back to the
// assembler. Context cancellation is the one remote failure that must
// propagate: pausing a build aborts it, it must not silently degrade
// into a template run.
func (b *ArtifactBuilder) websiteContent(
	ctx context.Context,
	business domain.BusinessRecord,
) (string, string, domain.GenerationPath, error) {
	if b.client != nil && b.client.Available() {
		profile := b.router.Select(ai.TaskCode)
		key := b.cache.BuildKey("website", business.ID, business.Name, business.Category, profile.Model)

		contextText := ""
		if built, ctxErr := b.context.Build(ctx, contextbuilder.BuildInput{
			Agent:    domain.AgentWebsite,
			Business: business,
		}); ctxErr == nil {
			contextText = built.ContextText
		} else if b.logger != nil {
			b.logger.Printf("context build failed, prompting without it business_id=%s err=%v", business.ID, ctxErr)
		}

		entry, err := b.cache.Do(key, func() (cache.Entry, error) {
			result, genErr := b.client.Generate(ctx, ai.GenerateRequest{
				Model:        profile.Model,
				Instructions: websiteInstructions,
				Input:        websitePrompt(business, contextText),
				Options: ai.SamplingOptions{
					Temperature:     profile.Temperature,
					MaxOutputTokens: profile.MaxOutputTokens,
				},
			})
			if genErr != nil {
				return cache.Entry{}, genErr
			}
			document := extractHTMLDocument(result.Text)
			if document == "" {
				return cache.Entry{}, fmt.Errorf("remote response carried no html document")
			}
			validated, qualityErr := b.validator.ValidateDocument(quality.DocumentValidationInput{
				BusinessName: business.Name,
				Content:      document,
			})
			if qualityErr != nil {
				return cache.Entry{}, qualityErr
			}
			return cache.Entry{
				Content: validated.Content,
				ModelID: result.ModelID,
				Path:    domain.PathRemote,
			}, nil
		})
		if err == nil {
			return entry.Content, entry.ModelID, domain.PathRemote, nil
		}
		if ctx.Err() != nil {
			return "", "", "", ctx.Err()
		}
		if b.logger != nil {
			b.logger.Printf("remote generation failed, using template fallback business_id=%s err=%v", business.ID, err)
		}
	}

	return sitegen.Assemble(business), "", domain.PathTemplate, nil
}

// extractHTMLDocument pulls the document out of a model reply that may be
// wrapped in markdown fences or prose.
func extractHTMLDocument(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	if start := strings.Index(trimmed, "```html"); start >= 0 {
		rest := trimmed[start+len("```html"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			trimmed = strings.TrimSpace(rest[:end])
		} else {
			trimmed = strings.TrimSpace(rest)
		}
	}

	if index := strings.Index(trimmed, "<!DOCTYPE"); index >= 0 {
		return trimmed[index:]
	}
	if index := strings.Index(trimmed, "<html"); index >= 0 {
		return trimmed[index:]
	}
	return ""
}
