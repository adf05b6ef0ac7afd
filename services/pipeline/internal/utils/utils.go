package utils

import (
	"math"
	"strconv"
	"time"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/models"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/tabular"
)

// BuildMatchRows converts a standardized match table into database-ready rows.
// Rows without a usable id are skipped.
func BuildMatchRows(key models.DatasetKey, t tabular.Table) []models.MatchRow {
	rows := make([]models.MatchRow, 0, t.Len())
	for _, cells := range t.Rows {
		get := func(column string) tabular.Value {
			idx := t.Index(column)
			if idx < 0 || idx >= len(cells) {
				return tabular.Null()
			}
			return cells[idx]
		}

		id, ok := IntValue(get("id"))
		if !ok {
			continue
		}

		payload := make(map[string]any, len(t.Columns))
		for i, column := range t.Columns {
			if i < len(cells) && !cells[i].IsNull() {
				payload[column] = cells[i].Text()
			}
		}

		rows = append(rows, models.MatchRow{
			ID:          id,
			Competition: key.Competition,
			Season:      key.Season,
			Status:      TextOr(get("status"), key.Status),
			Matchday:    IntPtr(get("matchday")),
			Stage:       TextOr(get("stage"), ""),
			UTCDate:     TimePtr(get("utcDate")),
			HomeTeamID:  IntPtr(get("homeTeam.id")),
			HomeTeam:    TextOr(get("homeTeam.name"), ""),
			AwayTeamID:  IntPtr(get("awayTeam.id")),
			AwayTeam:    TextOr(get("awayTeam.name"), ""),
			Winner:      StringPtr(get("score.winner")),
			HomeGoals:   IntPtr(get("score.fullTime.home")),
			AwayGoals:   IntPtr(get("score.fullTime.away")),
			LastUpdated: TimePtr(get("lastUpdated")),
			Payload:     payload,
		})
	}
	return rows
}

// MatchIDs extracts match identifiers from match rows.
func MatchIDs(rows []models.MatchRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// FilterChangedMatches selects rows that are new or were updated upstream
// since the stored copy. Rows without lastUpdated are always kept.
func FilterChangedMatches(rows []models.MatchRow, last map[int64]time.Time) []models.MatchRow {
	out := make([]models.MatchRow, 0, len(rows))
	for _, row := range rows {
		prev, ok := last[row.ID]
		if !ok || row.LastUpdated == nil || row.LastUpdated.After(prev) {
			out = append(out, row)
		}
	}
	return out
}

// IntValue reads an integer cell. Raw number literals and numeric strings
// are accepted as long as they are integral.
func IntValue(v tabular.Value) (int64, bool) {
	if i, ok := v.AsInt(); ok {
		return i, true
	}
	switch v.Kind() {
	case tabular.KindNumber, tabular.KindString:
		s := v.Text()
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// IntPtr is IntValue as an optional.
func IntPtr(v tabular.Value) *int64 {
	i, ok := IntValue(v)
	if !ok {
		return nil
	}
	return &i
}

// TimePtr returns the timestamp of a time cell, nil otherwise.
func TimePtr(v tabular.Value) *time.Time {
	t, ok := v.AsTime()
	if !ok {
		return nil
	}
	return &t
}

// StringPtr returns the text of a non-null cell.
func StringPtr(v tabular.Value) *string {
	if v.IsNull() {
		return nil
	}
	s := v.Text()
	return &s
}

// TextOr returns the cell text, or fallback for null cells.
func TextOr(v tabular.Value, fallback string) string {
	if v.IsNull() {
		return fallback
	}
	return v.Text()
}
