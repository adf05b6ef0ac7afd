package db

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Match represents a stored match record.
type Match struct {
	ID          int64      `json:"id"`
	Competition string     `json:"competition"`
	Season      int        `json:"season"`
	Status      string     `json:"status"`
	Matchday    *int32     `json:"matchday,omitempty"`
	Stage       *string    `json:"stage,omitempty"`
	UTCDate     *time.Time `json:"utc_date,omitempty"`
	HomeTeamID  *int64     `json:"home_team_id,omitempty"`
	HomeTeam    *string    `json:"home_team,omitempty"`
	AwayTeamID  *int64     `json:"away_team_id,omitempty"`
	AwayTeam    *string    `json:"away_team,omitempty"`
	Winner      *string    `json:"winner,omitempty"`
	HomeGoals   *int32     `json:"home_goals,omitempty"`
	AwayGoals   *int32     `json:"away_goals,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Payload     []byte     `json:"-"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MatchQuery holds filters for listing matches.
type MatchQuery struct {
	Competition string
	Season      *int
	Status      string
	Team        string
	Since       *time.Time
	Until       *time.Time
	Limit       int
	Offset      int
}

// MatchesPage is one page of matches plus the total matching count.
type MatchesPage struct {
	Matches    []Match `json:"matches"`
	TotalCount int     `json:"total_count"`
}

const matchColumns = `id, competition, season, status, matchday, stage, utc_date,
       home_team_id, home_team, away_team_id, away_team, winner,
       home_goals, away_goals, last_updated, payload, updated_at`

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	err := row.Scan(
		&m.ID,
		&m.Competition,
		&m.Season,
		&m.Status,
		&m.Matchday,
		&m.Stage,
		&m.UTCDate,
		&m.HomeTeamID,
		&m.HomeTeam,
		&m.AwayTeamID,
		&m.AwayTeam,
		&m.Winner,
		&m.HomeGoals,
		&m.AwayGoals,
		&m.LastUpdated,
		&m.Payload,
		&m.UpdatedAt,
	)
	return m, err
}

// ListMatches returns matches filtered by q, most recent kickoff first.
func (s *Store) ListMatches(ctx context.Context, q MatchQuery) (*MatchesPage, error) {
	conditions := []string{}
	args := []any{}

	if q.Competition != "" {
		args = append(args, strings.ToUpper(q.Competition))
		conditions = append(conditions, "competition = $"+strconv.Itoa(len(args)))
	}
	if q.Season != nil {
		args = append(args, *q.Season)
		conditions = append(conditions, "season = $"+strconv.Itoa(len(args)))
	}
	if q.Status != "" {
		args = append(args, strings.ToUpper(q.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if q.Team != "" {
		args = append(args, "%"+q.Team+"%")
		pos := strconv.Itoa(len(args))
		conditions = append(conditions, "(home_team ILIKE $"+pos+" OR away_team ILIKE $"+pos+")")
	}
	if q.Since != nil {
		args = append(args, *q.Since)
		conditions = append(conditions, "utc_date >= $"+strconv.Itoa(len(args)))
	}
	if q.Until != nil {
		args = append(args, *q.Until)
		conditions = append(conditions, "utc_date <= $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM matchday.matches "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, err
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, q.Limit, q.Offset)

	query := "SELECT " + matchColumns + " FROM matchday.matches " + whereClause +
		" ORDER BY utc_date DESC NULLS LAST, id" +
		" LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(offsetPos)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]Match, 0, q.Limit)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &MatchesPage{Matches: matches, TotalCount: totalCount}, nil
}

// GetMatch returns a single match, or nil when it does not exist.
func (s *Store) GetMatch(ctx context.Context, id int64) (*Match, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+matchColumns+" FROM matchday.matches WHERE id = $1", id)
	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
