package footballdata

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultStatus      = "FINISHED"
	DefaultCompetition = "PL"

	dateLayout = "2006-01-02"
)

// FetchRequest holds the match filters accepted by /competitions/{code}/matches.
// Build it with NewFetchRequest and pass it by value.
type FetchRequest struct {
	Season      int
	Status      string
	DateFrom    time.Time // zero when unset, inclusive
	DateTo      time.Time // zero when unset, inclusive
	Competition string
}

// NewFetchRequest validates the filters. Dates use the YYYY-MM-DD layout and
// may be empty.
func NewFetchRequest(competition string, season int, status, dateFrom, dateTo string) (FetchRequest, error) {
	if season <= 0 {
		return FetchRequest{}, fmt.Errorf("season must be positive, got %d", season)
	}

	req := FetchRequest{
		Season:      season,
		Status:      strings.TrimSpace(status),
		Competition: strings.TrimSpace(competition),
	}
	if req.Status == "" {
		req.Status = DefaultStatus
	}
	if req.Competition == "" {
		req.Competition = DefaultCompetition
	}

	var err error
	if req.DateFrom, err = parseDate("dateFrom", dateFrom); err != nil {
		return FetchRequest{}, err
	}
	if req.DateTo, err = parseDate("dateTo", dateTo); err != nil {
		return FetchRequest{}, err
	}
	if !req.DateFrom.IsZero() && !req.DateTo.IsZero() && req.DateFrom.After(req.DateTo) {
		return FetchRequest{}, errors.New("dateFrom must not be after dateTo")
	}
	return req, nil
}

func parseDate(name, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", name, v)
	}
	return t, nil
}

// Query returns the API query parameters. Date filters are omitted when unset
// so the API never sees an empty constraint.
func (r FetchRequest) Query() url.Values {
	q := url.Values{}
	q.Set("season", strconv.Itoa(r.Season))
	q.Set("status", r.Status)
	if !r.DateFrom.IsZero() {
		q.Set("dateFrom", r.DateFrom.Format(dateLayout))
	}
	if !r.DateTo.IsZero() {
		q.Set("dateTo", r.DateTo.Format(dateLayout))
	}
	return q
}

// Endpoint is the matches path for the request's competition.
func (r FetchRequest) Endpoint() string {
	return "competitions/" + r.Competition + "/matches"
}

// Basename names every artifact derived from this request, e.g. "pl_2023_finished".
func (r FetchRequest) Basename() string {
	return fmt.Sprintf("%s_%d_%s", strings.ToLower(r.Competition), r.Season, strings.ToLower(r.Status))
}

func (r FetchRequest) String() string {
	s := fmt.Sprintf("%s season=%d status=%s", r.Competition, r.Season, r.Status)
	if !r.DateFrom.IsZero() {
		s += " from=" + r.DateFrom.Format(dateLayout)
	}
	if !r.DateTo.IsZero() {
		s += " to=" + r.DateTo.Format(dateLayout)
	}
	return s
}

// DescribeFilters is a short help text for the supported filters.
func DescribeFilters() string {
	return "Filters available: season (int, required), status (e.g. FINISHED, SCHEDULED), " +
		"dateFrom/dateTo (YYYY-MM-DD), competition code (default PL)."
}
