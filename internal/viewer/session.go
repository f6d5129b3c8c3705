package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
)

type ViewMode string

const (
	ModePreview ViewMode = "preview"
	ModeCode    ViewMode = "code"
	ModeSplit   ViewMode = "split"
)

type DevicePreset string

const (
	DeviceDesktop DevicePreset = "desktop"
	DeviceTablet  DevicePreset = "tablet"
	DeviceMobile  DevicePreset = "mobile"
)

const (
	ZoomMin  = 50
	ZoomMax  = 150
	ZoomStep = 10
)

var (
	ErrNotEditing     = errors.New("no edit in progress")
	ErrAlreadyEditing = errors.New("edit already in progress")
)

var deviceWidths = map[DevicePreset]int{
	DeviceDesktop: 1280,
	DeviceTablet:  768,
	DeviceMobile:  375,
}

// RenderDescriptor tells a client how to present the artifact content.
// Document artifacts get a sandboxed frame; everything else is shown
// as preformatted text.
type RenderDescriptor struct {
	Mode       ViewMode     `json:"mode"`
	Document   bool         `json:"document"`
	Content    string       `json:"content"`
	Sandbox    string       `json:"sandbox,omitempty"`
	Device     DevicePreset `json:"device,omitempty"`
	FrameWidth int          `json:"frame_width,omitempty"`
	Zoom       int          `json:"zoom,omitempty"`
}

// frameSandbox restricts the preview surface: same-origin rendering only,
// no scripts, no top-level navigation.
const frameSandbox = "allow-same-origin"

type SessionConfig struct {
	// CopyRevert is how long the copied-confirmation flag stays raised.
	CopyRevert time.Duration
	// Persist is invoked after a successful edit commit with the updated
	// artifact. A nil callback makes edits session-local.
	Persist func(context.Context, domain.GeneratedArtifact) error
}

// Session holds the mutable viewing state for one artifact: view mode,
// device preset, zoom, the edit scratch buffer and the transient copy flag.
// Switching modes or devices never touches the edit buffer.
type Session struct {
	mu sync.Mutex

	artifact domain.GeneratedArtifact
	mode     ViewMode
	device   DevicePreset
	zoom     int

	editing bool
	draft   string

	copied     bool
	copyTimer  *time.Timer
	copyRevert time.Duration
	persist    func(context.Context, domain.GeneratedArtifact) error
}

func NewSession(artifact domain.GeneratedArtifact, cfg SessionConfig) *Session {
	if cfg.CopyRevert <= 0 {
		cfg.CopyRevert = 2 * time.Second
	}
	return &Session{
		artifact:   artifact,
		mode:       ModePreview,
		device:     DeviceDesktop,
		zoom:       100,
		copyRevert: cfg.CopyRevert,
		persist:    cfg.Persist,
	}
}

func (s *Session) Artifact() domain.GeneratedArtifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

func (s *Session) SetMode(mode ViewMode) ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case ModePreview, ModeCode, ModeSplit:
		s.mode = mode
	}
	return s.mode
}

func (s *Session) SetDevice(device DevicePreset) DevicePreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := deviceWidths[device]; ok {
		s.device = device
	}
	return s.device
}

// SetZoom clamps into [ZoomMin, ZoomMax] and snaps to the nearest lower
// multiple of ZoomStep, so every stored value is a valid preset.
func (s *Session) SetZoom(zoom int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = clampZoom(zoom)
	return s.zoom
}

func (s *Session) ZoomIn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = clampZoom(s.zoom + ZoomStep)
	return s.zoom
}

func (s *Session) ZoomOut() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = clampZoom(s.zoom - ZoomStep)
	return s.zoom
}

func clampZoom(zoom int) int {
	if zoom < ZoomMin {
		return ZoomMin
	}
	if zoom > ZoomMax {
		return ZoomMax
	}
	return zoom - zoom%ZoomStep
}

// Render describes the current presentation. During an edit the draft is
// shown so the preview tracks unsaved changes.
func (s *Session) Render() RenderDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := s.artifact.Content
	if s.editing {
		content = s.draft
	}

	descriptor := RenderDescriptor{
		Mode:     s.mode,
		Document: s.artifact.IsDocument(),
		Content:  content,
	}
	if descriptor.Document {
		descriptor.Sandbox = frameSandbox
		descriptor.Device = s.device
		descriptor.FrameWidth = deviceWidths[s.device]
		descriptor.Zoom = s.zoom
	}
	return descriptor
}

func (s *Session) BeginEdit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return "", ErrAlreadyEditing
	}
	s.editing = true
	s.draft = s.artifact.Content
	return s.draft, nil
}

func (s *Session) UpdateDraft(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	s.draft = content
	return nil
}

// SaveEdit commits the scratch buffer as the artifact content and hands the
// updated artifact to the persistence callback. A persistence failure keeps
// the edit open so the user can retry without losing the draft.
func (s *Session) SaveEdit(ctx context.Context) (domain.GeneratedArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return domain.GeneratedArtifact{}, ErrNotEditing
	}

	updated := s.artifact
	updated.Content = s.draft
	if s.persist != nil {
		if err := s.persist(ctx, updated); err != nil {
			return domain.GeneratedArtifact{}, err
		}
	}

	s.artifact = updated
	s.editing = false
	s.draft = ""
	return updated, nil
}

func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	s.editing = false
	s.draft = ""
	return nil
}

func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// MarkCopied raises the copied-confirmation flag and arms a timer that
// reverts it. A second copy before the revert restarts the countdown.
func (s *Session) MarkCopied() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.copied = true
	if s.copyTimer != nil {
		s.copyTimer.Stop()
	}
	s.copyTimer = time.AfterFunc(s.copyRevert, func() {
		s.mu.Lock()
		s.copied = false
		s.mu.Unlock()
	})

	if s.editing {
		return s.draft
	}
	return s.artifact.Content
}

func (s *Session) Copied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copied
}

// Close stops the copy-revert timer; sessions are cheap and Close is only
// needed when tearing one down before the timer fires.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.copyTimer != nil {
		s.copyTimer.Stop()
		s.copyTimer = nil
	}
}
