package viewer

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/leadforge/leadforge-back/internal/domain"
)

// ExportFile is a synthesized download: the handler writes Data with
// ContentType and a Content-Disposition built from Name.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var unsafeFilenameRun = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ExportFileName turns an artifact name into a download filename: each run
// of characters outside [A-Za-z0-9_-] becomes a single underscore, so
// "Joe's Pizza - Modern Website" downloads as
// "Joe_s_Pizza_-_Modern_Website.html".
func ExportFileName(name, extension string) string {
	if name == "" {
		name = "artifact"
	}
	return unsafeFilenameRun.ReplaceAllString(name, "_") + "." + extension
}

// ExportArtifact synthesizes the downloadable form of an artifact. Document
// artifacts export their raw HTML; everything else exports the full artifact
// record as indented JSON.
func ExportArtifact(artifact domain.GeneratedArtifact) (ExportFile, error) {
	if artifact.IsDocument() {
		return ExportFile{
			Name:        ExportFileName(artifact.Name, "html"),
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(artifact.Content),
		}, nil
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return ExportFile{}, fmt.Errorf("marshal artifact for export: %w", err)
	}
	return ExportFile{
		Name:        ExportFileName(artifact.Name, "json"),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// ExportHistory synthesizes a JSON download of the search history.
func ExportHistory(entries []domain.SearchHistoryEntry) (ExportFile, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return ExportFile{}, fmt.Errorf("marshal history for export: %w", err)
	}
	return ExportFile{
		Name:        "search_history.json",
		ContentType: "application/json",
		Data:        data,
	}, nil
}
