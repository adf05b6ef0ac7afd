package models

import "time"

// DatasetKey identifies the filters a batch of matches was fetched with.
type DatasetKey struct {
	Competition string
	Season      int
	Status      string
}

// MatchRow captures the normalized match fields for DB operations.
type MatchRow struct {
	ID          int64
	Competition string
	Season      int
	Status      string
	Matchday    *int64
	Stage       string
	UTCDate     *time.Time
	HomeTeamID  *int64
	HomeTeam    string
	AwayTeamID  *int64
	AwayTeam    string
	Winner      *string
	HomeGoals   *int64
	AwayGoals   *int64
	LastUpdated *time.Time
	Payload     map[string]any
}

// RunRecord is one dataset outcome of a pipeline invocation.
type RunRecord struct {
	RunID       string
	Dataset     string
	Competition string
	Season      int
	Status      string
	Rows        int
	Stored      int
	Error       *string
	StartedAt   time.Time
	FinishedAt  time.Time
}
