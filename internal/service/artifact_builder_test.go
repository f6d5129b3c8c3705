package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/leadforge/leadforge-back/internal/ai"
	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/repository"
)

type fakeGenerator struct {
	available bool
	text      string
	err       error
	calls     atomic.Int32
}

func (f *fakeGenerator) Generate(ctx context.Context, _ ai.GenerateRequest) (ai.GenerateResult, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return ai.GenerateResult{}, err
	}
	if f.err != nil {
		return ai.GenerateResult{}, f.err
	}
	return ai.GenerateResult{Text: f.text, ModelID: "test/model-a"}, nil
}

func (f *fakeGenerator) Available() bool { return f.available }

func remoteDocument(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<header><h1>%s</h1><p>Welcome to our brand new site. We serve the neighborhood with care,
quality and a smile, and we would love to see you soon. Drop by during opening hours or
reach out through the contact form below to book a table or ask a question.</p></header>
<section><h2>About us</h2><p>Family owned and operated for over a decade.</p></section>
<footer><p>Visit us today.</p></footer>
</body>
</html>`, name, name)
}

func newTestBuilder(client ai.TextGenerator) (*ArtifactBuilder, repository.ArtifactsRepository) {
	artifacts := repository.NewMemoryArtifactsRepository()
	builder := NewArtifactBuilder(ArtifactBuilderDependencies{
		Router:    ai.NewModelRouter(ai.ModelRouterConfig{}),
		Client:    client,
		Artifacts: artifacts,
		Logger:    log.New(&strings.Builder{}, "", 0),
	})
	return builder, artifacts
}

func TestBuildWebsiteUsesRemotePath(t *testing.T) {
	client := &fakeGenerator{
		available: true,
		text:      "Here is your site:\n```html\n" + remoteDocument("Rosa's Cantina") + "\n```",
	}
	builder, artifacts := newTestBuilder(client)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina", Category: "restaurant"}
	artifact, err := builder.Build(context.Background(), business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if artifact.Type != domain.ArtifactWebsite {
		t.Fatalf("unexpected artifact type %s", artifact.Type)
	}
	if artifact.Metadata.Path != domain.PathRemote {
		t.Fatalf("expected remote path, got %s", artifact.Metadata.Path)
	}
	if artifact.Metadata.ModelID != "test/model-a" {
		t.Fatalf("expected model id recorded, got %q", artifact.Metadata.ModelID)
	}
	if strings.Contains(artifact.Content, "```") {
		t.Fatalf("expected fences stripped from content")
	}
	if !strings.HasPrefix(artifact.Content, "<!DOCTYPE html>") {
		t.Fatalf("expected extracted document, got %.60q", artifact.Content)
	}

	persisted, err := artifacts.GetArtifact(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("expected artifact persisted: %v", err)
	}
	if persisted.BusinessID != "biz-1" {
		t.Fatalf("unexpected persisted artifact %+v", persisted)
	}
}

func TestBuildFallsBackToTemplateOnRemoteFailure(t *testing.T) {
	client := &fakeGenerator{available: true, err: errors.New("gateway status 503: overloaded")}
	builder, _ := newTestBuilder(client)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina", Category: "restaurant"}
	artifact, err := builder.Build(context.Background(), business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("build must not fail when remote degrades: %v", err)
	}

	if artifact.Metadata.Path != domain.PathTemplate {
		t.Fatalf("expected template fallback, got %s", artifact.Metadata.Path)
	}
	if artifact.Metadata.ModelID != "" {
		t.Fatalf("template path must not record a model id")
	}
	if !strings.Contains(artifact.Content, "Rosa") {
		t.Fatalf("expected assembled document to carry the business name")
	}
}

func TestBuildFallsBackWhenOutputFailsValidation(t *testing.T) {
	client := &fakeGenerator{
		available: true,
		text:      "<!DOCTYPE html>\n<html><body><p>lorem ipsum placeholder for [business name]</p></body></html>",
	}
	builder, _ := newTestBuilder(client)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina"}
	artifact, err := builder.Build(context.Background(), business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if artifact.Metadata.Path != domain.PathTemplate {
		t.Fatalf("expected rejected remote output to fall back to template, got %s", artifact.Metadata.Path)
	}
}

func TestBuildWithoutGatewayUsesTemplate(t *testing.T) {
	client := &fakeGenerator{available: false}
	builder, _ := newTestBuilder(client)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina"}
	artifact, err := builder.Build(context.Background(), business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if artifact.Metadata.Path != domain.PathTemplate {
		t.Fatalf("expected template path, got %s", artifact.Metadata.Path)
	}
	if got := client.calls.Load(); got != 0 {
		t.Fatalf("unavailable client must not be called, got %d calls", got)
	}
}

func TestBuildPropagatesCancellation(t *testing.T) {
	client := &fakeGenerator{available: true, text: remoteDocument("Rosa's Cantina")}
	builder, _ := newTestBuilder(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina"}
	_, err := builder.Build(ctx, business, domain.AgentWebsite)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to propagate, got %v", err)
	}
}

func TestBuildCachesRemoteResults(t *testing.T) {
	client := &fakeGenerator{available: true, text: remoteDocument("Rosa's Cantina")}
	builder, _ := newTestBuilder(client)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina", Category: "restaurant"}
	for run := 0; run < 2; run++ {
		if _, err := builder.Build(context.Background(), business, domain.AgentWebsite); err != nil {
			t.Fatalf("build %d: %v", run, err)
		}
	}
	if got := client.calls.Load(); got != 1 {
		t.Fatalf("expected one remote call across identical builds, got %d", got)
	}
}

func TestBuildContentAndMarketingAgentsAreTemplateOnly(t *testing.T) {
	client := &fakeGenerator{available: true, text: remoteDocument("Rosa's Cantina")}
	builder, _ := newTestBuilder(client)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina", Category: "restaurant"}

	kit, err := builder.Build(context.Background(), business, domain.AgentContent)
	if err != nil {
		t.Fatalf("content build: %v", err)
	}
	if kit.Type != domain.ArtifactContent || kit.Metadata.Path != domain.PathTemplate {
		t.Fatalf("unexpected content artifact %+v", kit.Metadata)
	}
	if !strings.HasSuffix(kit.Name, "Content Kit") {
		t.Fatalf("unexpected content artifact name %q", kit.Name)
	}

	board, err := builder.Build(context.Background(), business, domain.AgentMarketing)
	if err != nil {
		t.Fatalf("marketing build: %v", err)
	}
	if board.Type != domain.ArtifactMarketing || board.Metadata.Path != domain.PathTemplate {
		t.Fatalf("unexpected marketing artifact %+v", board.Metadata)
	}

	if got := client.calls.Load(); got != 0 {
		t.Fatalf("template-only agents must not call the gateway, got %d calls", got)
	}
}

func TestExtractHTMLDocument(t *testing.T) {
	document := "<!DOCTYPE html>\n<html><body>x</body></html>"
	cases := map[string]string{
		"Sure, here you go:\n```html\n" + document + "\n```\nEnjoy!": document,
		document:               document,
		"prose only, no markup": "",
		"":                      "",
	}
	for input, expected := range cases {
		if got := extractHTMLDocument(input); got != expected {
			t.Errorf("extractHTMLDocument(%.40q) = %.40q, expected %.40q", input, got, expected)
		}
	}
}
