package pipeline

import (
	"time"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/footballdata"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/models"
)

// Artifacts lists what a dataset produced. Paths are empty on dry runs.
type Artifacts struct {
	Raw            string
	Flattened      string
	Cleaned        string
	Features       string
	FeatureColumns string

	Rows    int
	Columns int
	Stored  int
}

// Result is the outcome of one dataset within a run.
type Result struct {
	RunID     string
	Dataset   Dataset
	Request   footballdata.FetchRequest
	Artifacts Artifacts
	Attempts  int
	Err       error

	StartedAt  time.Time
	FinishedAt time.Time
}

// OK reports whether the dataset completed.
func (r Result) OK() bool { return r.Err == nil }

// Record converts the result into its persisted form.
func (r Result) Record() models.RunRecord {
	rec := models.RunRecord{
		RunID:       r.RunID,
		Dataset:     r.Request.Basename(),
		Competition: r.Request.Competition,
		Season:      r.Request.Season,
		Status:      r.Request.Status,
		Rows:        r.Artifacts.Rows,
		Stored:      r.Artifacts.Stored,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
	if rec.Competition == "" {
		rec.Competition = r.Dataset.Competition
		rec.Season = r.Dataset.Season
		rec.Status = r.Dataset.Status
		rec.Dataset = r.Dataset.String()
	}
	if r.Err != nil {
		msg := r.Err.Error()
		rec.Error = &msg
	}
	return rec
}

// Summarize counts successful and failed datasets.
func Summarize(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
