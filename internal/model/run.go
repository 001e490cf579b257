package model

import "time"

// RunStatus represents the current state of a collection run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusCollecting RunStatus = "collecting"
	RunStatusScoring    RunStatus = "scoring"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// RunStats summarizes the outcome of a collection run.
type RunStats struct {
	ListingsFound  int `json:"listings_found"`
	Scored         int `json:"scored"`
	Skipped        int `json:"skipped"`
	Disqualified   int `json:"disqualified"`
	HighLeads      int `json:"high_leads"`
	PotentialLeads int `json:"potential_leads"`
	APICalls       int `json:"api_calls"`
}

// CollectionRun records one execution of a search job against the map source.
type CollectionRun struct {
	ID        string    `json:"id"`
	Search    string    `json:"search"`
	Status    RunStatus `json:"status"`
	Stats     *RunStats `json:"stats,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
