package domain

import "time"

// SearchHistoryEntry records one past prospect search.
type SearchHistoryEntry struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Location    string    `json:"location,omitempty"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// AnalyzedBusiness is a scored prospect kept for later generation runs.
type AnalyzedBusiness struct {
	Business   BusinessRecord `json:"business"`
	Score      float64        `json:"opportunity_score"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}

// BuildMessage is the transport format handed to queue backends when a
// build is requested.
type BuildMessage struct {
	TaskID      string         `json:"task_id"`
	Agent       AgentKind      `json:"agent_type"`
	Business    BusinessRecord `json:"business"`
	Attempt     int            `json:"attempt"`
	RequestedAt time.Time      `json:"requested_at"`
}
