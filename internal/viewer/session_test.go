package viewer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
)

func websiteArtifact() domain.GeneratedArtifact {
	return domain.GeneratedArtifact{
		ID:      "artifact-1",
		Name:    "Joe's Pizza - Modern Website",
		Type:    domain.ArtifactWebsite,
		Content: "<!DOCTYPE html>\n<html><body><h1>Joe's Pizza</h1></body></html>",
	}
}

func TestSessionDefaults(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{})
	defer session.Close()

	render := session.Render()
	if render.Mode != ModePreview {
		t.Fatalf("expected preview mode by default, got %s", render.Mode)
	}
	if !render.Document {
		t.Fatalf("website artifacts must render as documents")
	}
	if render.Device != DeviceDesktop || render.FrameWidth != 1280 {
		t.Fatalf("expected desktop frame, got %s/%d", render.Device, render.FrameWidth)
	}
	if render.Zoom != 100 {
		t.Fatalf("expected default zoom 100, got %d", render.Zoom)
	}
	if render.Sandbox == "" || strings.Contains(render.Sandbox, "allow-scripts") {
		t.Fatalf("expected restrictive sandbox, got %q", render.Sandbox)
	}
}

func TestZoomClampsAndSnaps(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{})
	defer session.Close()

	if got := session.SetZoom(87); got != 80 {
		t.Fatalf("expected 87 to snap down to 80, got %d", got)
	}
	if got := session.SetZoom(3); got != ZoomMin {
		t.Fatalf("expected lower clamp, got %d", got)
	}
	if got := session.SetZoom(900); got != ZoomMax {
		t.Fatalf("expected upper clamp, got %d", got)
	}

	session.SetZoom(ZoomMax)
	if got := session.ZoomIn(); got != ZoomMax {
		t.Fatalf("expected zoom-in at max to stay, got %d", got)
	}
	session.SetZoom(ZoomMin)
	if got := session.ZoomOut(); got != ZoomMin {
		t.Fatalf("expected zoom-out at min to stay, got %d", got)
	}
	if got := session.ZoomIn(); got != ZoomMin+ZoomStep {
		t.Fatalf("expected single step up, got %d", got)
	}
}

func TestSetModeAndDeviceIgnoreUnknownValues(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{})
	defer session.Close()

	if got := session.SetMode(ModeCode); got != ModeCode {
		t.Fatalf("expected code mode, got %s", got)
	}
	if got := session.SetMode(ViewMode("hologram")); got != ModeCode {
		t.Fatalf("unknown mode must keep the current one, got %s", got)
	}

	if got := session.SetDevice(DeviceMobile); got != DeviceMobile {
		t.Fatalf("expected mobile device, got %s", got)
	}
	if got := session.SetDevice(DevicePreset("watch")); got != DeviceMobile {
		t.Fatalf("unknown device must keep the current one, got %s", got)
	}
	if render := session.Render(); render.FrameWidth != 375 {
		t.Fatalf("expected mobile frame width, got %d", render.FrameWidth)
	}
}

func TestEditLifecycle(t *testing.T) {
	var persisted *domain.GeneratedArtifact
	session := NewSession(websiteArtifact(), SessionConfig{
		Persist: func(_ context.Context, artifact domain.GeneratedArtifact) error {
			persisted = &artifact
			return nil
		},
	})
	defer session.Close()

	draft, err := session.BeginEdit()
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if draft != websiteArtifact().Content {
		t.Fatalf("expected draft seeded from artifact content")
	}
	if _, err := session.BeginEdit(); !errors.Is(err, ErrAlreadyEditing) {
		t.Fatalf("expected double edit rejection, got %v", err)
	}

	updated := "<!DOCTYPE html>\n<html><body><h1>Joe's Pizza & Pasta</h1></body></html>"
	if err := session.UpdateDraft(updated); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if render := session.Render(); render.Content != updated {
		t.Fatalf("expected preview to track the draft during an edit")
	}

	saved, err := session.SaveEdit(context.Background())
	if err != nil {
		t.Fatalf("save edit: %v", err)
	}
	if saved.Content != updated {
		t.Fatalf("expected committed content, got %.60q", saved.Content)
	}
	if persisted == nil || persisted.Content != updated {
		t.Fatalf("expected persistence callback with updated artifact")
	}
	if session.Editing() {
		t.Fatalf("expected edit to be closed after save")
	}
	if err := session.UpdateDraft("x"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected not-editing after save, got %v", err)
	}
}

func TestCancelEditDiscardsDraft(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{})
	defer session.Close()

	if _, err := session.BeginEdit(); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := session.UpdateDraft("scratch work"); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if err := session.CancelEdit(); err != nil {
		t.Fatalf("cancel edit: %v", err)
	}
	if render := session.Render(); render.Content != websiteArtifact().Content {
		t.Fatalf("expected original content after cancel, got %.60q", render.Content)
	}
	if err := session.CancelEdit(); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected not-editing, got %v", err)
	}
}

func TestSaveEditKeepsDraftOnPersistFailure(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{
		Persist: func(context.Context, domain.GeneratedArtifact) error {
			return errors.New("storage offline")
		},
	})
	defer session.Close()

	if _, err := session.BeginEdit(); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := session.UpdateDraft("edited content"); err != nil {
		t.Fatalf("update draft: %v", err)
	}

	if _, err := session.SaveEdit(context.Background()); err == nil {
		t.Fatalf("expected persistence failure to surface")
	}
	if !session.Editing() {
		t.Fatalf("expected edit to stay open for retry")
	}
	if render := session.Render(); render.Content != "edited content" {
		t.Fatalf("expected draft preserved, got %.60q", render.Content)
	}
}

func TestMarkCopiedRevertsAfterDelay(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{CopyRevert: 30 * time.Millisecond})
	defer session.Close()

	content := session.MarkCopied()
	if content != websiteArtifact().Content {
		t.Fatalf("expected copy to return artifact content")
	}
	if !session.Copied() {
		t.Fatalf("expected copied flag raised")
	}

	time.Sleep(60 * time.Millisecond)
	if session.Copied() {
		t.Fatalf("expected copied flag to revert on its own")
	}
}

func TestMarkCopiedReturnsDraftDuringEdit(t *testing.T) {
	session := NewSession(websiteArtifact(), SessionConfig{CopyRevert: time.Minute})
	defer session.Close()

	if _, err := session.BeginEdit(); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := session.UpdateDraft("draft under edit"); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if got := session.MarkCopied(); got != "draft under edit" {
		t.Fatalf("expected copy to capture the draft, got %q", got)
	}
}
