package viewer

import (
	"context"
	"strings"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
)

type DeploymentResult struct {
	URL        string    `json:"url"`
	DeployedAt time.Time `json:"deployed_at"`
}

// DeploymentProvider is the pluggable boundary for publishing an artifact.
// No real provider ships with this codebase; callers inject one.
type DeploymentProvider interface {
	Deploy(ctx context.Context, artifact domain.GeneratedArtifact) (DeploymentResult, error)
}

// SimulatedDeployer stands in for a real provider: it waits a fixed delay
// and returns a placeholder URL derived from the artifact name.
type SimulatedDeployer struct {
	Delay   time.Duration
	BaseURL string
}

func NewSimulatedDeployer() *SimulatedDeployer {
	return &SimulatedDeployer{
		Delay:   2 * time.Second,
		BaseURL: "https://preview.leadforge.dev",
	}
}

func (d *SimulatedDeployer) Deploy(ctx context.Context, artifact domain.GeneratedArtifact) (DeploymentResult, error) {
	delay := d.Delay
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return DeploymentResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	base := strings.TrimSuffix(d.BaseURL, "/")
	return DeploymentResult{
		URL:        base + "/" + deploySlug(artifact.Name),
		DeployedAt: time.Now().UTC(),
	}, nil
}

func deploySlug(name string) string {
	if name == "" {
		return "artifact"
	}
	slug := strings.ToLower(name)
	var builder strings.Builder
	lastDash := true
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				builder.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(builder.String(), "-")
}
