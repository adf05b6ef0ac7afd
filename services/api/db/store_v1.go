package db

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Run is one dataset outcome recorded by the pipeline.
type Run struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Dataset     string    `json:"dataset"`
	Competition string    `json:"competition"`
	Season      int       `json:"season"`
	Status      string    `json:"status"`
	Rows        int       `json:"rows"`
	Stored      int       `json:"stored"`
	Error       *string   `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// OK reports whether the dataset completed.
func (r Run) OK() bool { return r.Error == nil }

type RunsPage struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"total_count"`
}

const runColumns = "id, run_id, dataset, competition, season, status, rows_total, rows_stored, error, started_at, finished_at"

func (s *Store) ListRuns(ctx context.Context, limit, offset int, dataset string) (*RunsPage, error) {
	conditions := []string{}
	args := []any{}

	if dataset != "" {
		conditions = append(conditions, "dataset = $"+strconv.Itoa(len(args)+1))
		args = append(args, strings.ToLower(dataset))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countSQL := "SELECT COUNT(*) FROM matchday.pipeline_runs " + whereClause
	var totalCount int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&totalCount); err != nil {
		return nil, err
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, limit, offset)

	query := strings.Builder{}
	query.WriteString("SELECT " + runColumns + " ")
	query.WriteString("FROM matchday.pipeline_runs ")
	query.WriteString(whereClause + " ")
	query.WriteString("ORDER BY finished_at DESC, id DESC ")
	query.WriteString("LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(offsetPos))

	runs, err := s.queryRuns(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	return &RunsPage{Runs: runs, TotalCount: totalCount}, nil
}

// LatestRun returns every dataset of the most recent pipeline invocation.
func (s *Store) LatestRun(ctx context.Context) ([]Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM matchday.pipeline_runs
		WHERE run_id = (
			SELECT run_id FROM matchday.pipeline_runs
			ORDER BY finished_at DESC, id DESC
			LIMIT 1
		)
		ORDER BY id`
	return s.queryRuns(ctx, query)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.Dataset,
			&r.Competition,
			&r.Season,
			&r.Status,
			&r.Rows,
			&r.Stored,
			&r.Error,
			&r.StartedAt,
			&r.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
