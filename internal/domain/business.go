package domain

import "strings"

// BusinessRecord is the prospect entity fed into generation pipelines.
// It is validated at the API boundary and never mutated afterwards.
type BusinessRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"business_category"`
	Type        string  `json:"business_type,omitempty"`
	Location    string  `json:"location,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Email       string  `json:"email,omitempty"`
	Website     string  `json:"website,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"total_reviews,omitempty"`
	HasWebsite  bool    `json:"has_website,omitempty"`
}

// NormalizedCategory returns the lowercased, trimmed category used for
// template dispatch and palette lookup.
func (b BusinessRecord) NormalizedCategory() string {
	return strings.ToLower(strings.TrimSpace(b.Category))
}

// Validate reports whether the record carries the minimum identity required
// by the pipeline. Optional fields are allowed to be empty.
func (b BusinessRecord) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrMissingBusinessID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrMissingBusinessName
	}
	return nil
}
