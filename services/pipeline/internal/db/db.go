package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/models"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/tabular"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/utils"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the matchday schema and tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

// UpsertMatches inserts/updates match records.
func UpsertMatches(ctx context.Context, pool *pgxpool.Pool, matches []models.MatchRow) error {
	if len(matches) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO matchday.matches (id, competition, season, status, matchday, stage, utc_date, home_team_id, home_team, away_team_id, away_team, winner, home_goals, away_goals, last_updated, payload, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
ON CONFLICT (id) DO UPDATE
SET competition = EXCLUDED.competition,
    season = EXCLUDED.season,
    status = EXCLUDED.status,
    matchday = EXCLUDED.matchday,
    stage = EXCLUDED.stage,
    utc_date = EXCLUDED.utc_date,
    home_team_id = EXCLUDED.home_team_id,
    home_team = EXCLUDED.home_team,
    away_team_id = EXCLUDED.away_team_id,
    away_team = EXCLUDED.away_team,
    winner = EXCLUDED.winner,
    home_goals = EXCLUDED.home_goals,
    away_goals = EXCLUDED.away_goals,
    last_updated = EXCLUDED.last_updated,
    payload = EXCLUDED.payload,
    updated_at = NOW()`

	for _, m := range matches {
		batch.Queue(query, m.ID, m.Competition, m.Season, m.Status, m.Matchday, m.Stage, m.UTCDate,
			m.HomeTeamID, m.HomeTeam, m.AwayTeamID, m.AwayTeam, m.Winner, m.HomeGoals, m.AwayGoals,
			m.LastUpdated, m.Payload)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range matches {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// FetchLastUpdated loads the stored lastUpdated stamp per match.
func FetchLastUpdated(ctx context.Context, pool *pgxpool.Pool, matchIDs []int64) (map[int64]time.Time, error) {
	result := make(map[int64]time.Time, len(matchIDs))
	if len(matchIDs) == 0 {
		return result, nil
	}

	rows, err := pool.Query(ctx, `
SELECT id, last_updated
FROM matchday.matches
WHERE id = ANY($1) AND last_updated IS NOT NULL`, matchIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var ts time.Time
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, err
		}
		result[id] = ts
	}

	return result, rows.Err()
}

// InsertRun appends one dataset outcome to pipeline_runs.
func InsertRun(ctx context.Context, pool *pgxpool.Pool, run models.RunRecord) error {
	_, err := pool.Exec(ctx, `INSERT INTO matchday.pipeline_runs (run_id, dataset, competition, season, status, rows_total, rows_stored, error, started_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		run.RunID, run.Dataset, run.Competition, run.Season, run.Status, run.Rows, run.Stored, run.Error, run.StartedAt, run.FinishedAt)
	return err
}

// Sink stores cleaned match tables and run records in Postgres.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink wraps an open pool.
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// StoreMatches upserts the matches of t that are new or changed upstream and
// returns how many were written.
func (s *Sink) StoreMatches(ctx context.Context, key models.DatasetKey, t tabular.Table) (int, error) {
	rows := utils.BuildMatchRows(key, t)
	last, err := FetchLastUpdated(ctx, s.pool, utils.MatchIDs(rows))
	if err != nil {
		return 0, fmt.Errorf("load stored matches: %w", err)
	}

	pending := utils.FilterChangedMatches(rows, last)
	if err := UpsertMatches(ctx, s.pool, pending); err != nil {
		return 0, fmt.Errorf("upsert matches: %w", err)
	}
	return len(pending), nil
}

// RecordRun persists a run record.
func (s *Sink) RecordRun(ctx context.Context, run models.RunRecord) error {
	if err := InsertRun(ctx, s.pool, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
