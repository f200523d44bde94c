package model

import "time"

// EnrichmentRun summarizes one full pass over the configured targets.
type EnrichmentRun struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	TargetsCount int `json:"targets_count"`
	Findings     int `json:"findings"`

	Notes string `json:"notes,omitempty"`
}
