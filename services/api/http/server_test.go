package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/02loveslollipop/matchday-pipeline/services/api/config"
	"github.com/02loveslollipop/matchday-pipeline/services/api/db"
)

type fakeStore struct {
	matches   []db.Match
	runs      []db.Run
	err       error
	pingErr   error
	lastQuery db.MatchQuery
	lastRuns  struct {
		limit, offset int
		dataset       string
	}
}

func (f *fakeStore) ListMatches(_ context.Context, q db.MatchQuery) (*db.MatchesPage, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &db.MatchesPage{Matches: f.matches, TotalCount: len(f.matches)}, nil
}

func (f *fakeStore) GetMatch(_ context.Context, id int64) (*db.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.matches {
		if f.matches[i].ID == id {
			return &f.matches[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListRuns(_ context.Context, limit, offset int, dataset string) (*db.RunsPage, error) {
	f.lastRuns.limit, f.lastRuns.offset, f.lastRuns.dataset = limit, offset, dataset
	if f.err != nil {
		return nil, f.err
	}
	return &db.RunsPage{Runs: f.runs, TotalCount: len(f.runs)}, nil
}

func (f *fakeStore) LatestRun(_ context.Context) ([]db.Run, error) {
	return f.runs, f.err
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

func testConfig() config.Config {
	return config.Config{Port: 8080, DefaultLimit: 50, MaxLimit: 500}
}

func sampleStore() *fakeStore {
	winner := "H"
	home, away := "Arsenal_FC", "Chelsea_FC"
	kickoff := time.Date(2023, 10, 21, 14, 0, 0, 0, time.UTC)
	failure := "fetch XX season=2023 status=FINISHED: status=404"
	return &fakeStore{
		matches: []db.Match{
			{ID: 1001, Competition: "PL", Season: 2023, Status: "FINISHED", UTCDate: &kickoff, HomeTeam: &home, AwayTeam: &away, Winner: &winner},
		},
		runs: []db.Run{
			{ID: 1, RunID: "r1", Dataset: "pl_2023_finished", Competition: "PL", Season: 2023, Status: "FINISHED", Rows: 380, Stored: 380},
			{ID: 2, RunID: "r1", Dataset: "xx_2023_finished", Competition: "XX", Season: 2023, Status: "FINISHED", Error: &failure},
		},
	}
}

func do(t *testing.T, srv *Server, path string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %s", rec.Body.String())
		}
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	cfg := testConfig()
	cfg.BearerToken = "secret"
	rec, body := do(t, New(cfg, sampleStore()), "/healthz", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", rec.Code, body)
	}
}

func TestHealthzReportsDatabaseDown(t *testing.T) {
	store := sampleStore()
	store.pingErr = errors.New("connection refused")
	rec, body := do(t, New(testConfig(), store), "/healthz", nil)
	if rec.Code != http.StatusServiceUnavailable || body["status"] != "unavailable" || body["error"] != "connection refused" {
		t.Fatalf("healthz = %d %v", rec.Code, body)
	}
}

func TestBearerAuth(t *testing.T) {
	cfg := testConfig()
	cfg.BearerToken = "secret"
	srv := New(cfg, sampleStore())

	testCases := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic secret"}, http.StatusUnauthorized},
		{"wrong token", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"valid", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := do(t, srv, "/api/v1/core/matches", tc.header)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestListMatches(t *testing.T) {
	store := sampleStore()
	srv := New(testConfig(), store)

	rec, body := do(t, srv, "/api/v1/core/matches?competition=pl&season=2023&team=arsenal&page=2&limit=10&start=2023-08-01T00:00:00Z", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	if rec.Header().Get("X-API-Version") != "v1" {
		t.Errorf("missing version header")
	}

	q := store.lastQuery
	if q.Competition != "pl" || q.Season == nil || *q.Season != 2023 || q.Team != "arsenal" {
		t.Errorf("unexpected query: %+v", q)
	}
	if q.Limit != 10 || q.Offset != 10 {
		t.Errorf("limit/offset = %d/%d, want 10/10", q.Limit, q.Offset)
	}
	if q.Since == nil || !q.Since.Equal(time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)) || q.Until != nil {
		t.Errorf("unexpected time range: %v %v", q.Since, q.Until)
	}

	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data = %v", body["data"])
	}
	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total_count"] != float64(1) || pagination["page"] != float64(2) {
		t.Errorf("pagination = %v", pagination)
	}
}

func TestListMatchesDefaults(t *testing.T) {
	store := sampleStore()
	rec, _ := do(t, New(testConfig(), store), "/api/v1/core/matches", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.lastQuery.Limit != 50 || store.lastQuery.Offset != 0 || store.lastQuery.Season != nil {
		t.Errorf("unexpected default query: %+v", store.lastQuery)
	}
}

func TestListMatchesValidation(t *testing.T) {
	srv := New(testConfig(), sampleStore())

	for _, path := range []string{
		"/api/v1/core/matches?season=abc",
		"/api/v1/core/matches?season=-1",
		"/api/v1/core/matches?page=0",
		"/api/v1/core/matches?limit=501",
		"/api/v1/core/matches?start=yesterday",
		"/api/v1/core/matches?start=2024-02-01T00:00:00Z&end=2024-01-01T00:00:00Z",
		"/api/v1/runs?limit=x",
	} {
		rec, body := do(t, srv, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
		if _, ok := body["error"]; !ok {
			t.Errorf("%s: missing error message", path)
		}
	}
}

func TestGetMatch(t *testing.T) {
	srv := New(testConfig(), sampleStore())

	testCases := []struct {
		path string
		want int
	}{
		{"/api/v1/core/matches/1001", http.StatusOK},
		{"/api/v1/core/matches/42", http.StatusNotFound},
		{"/api/v1/core/matches/abc", http.StatusBadRequest},
	}
	for _, tc := range testCases {
		rec, body := do(t, srv, tc.path, nil)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.path, rec.Code, tc.want)
		}
		if tc.want == http.StatusOK {
			data, _ := body["data"].(map[string]any)
			if data["home_team"] != "Arsenal_FC" || data["winner"] != "H" {
				t.Errorf("unexpected match: %v", data)
			}
		}
	}
}

func TestStoreErrors(t *testing.T) {
	store := sampleStore()
	store.err = errors.New("db down")
	srv := New(testConfig(), store)

	for _, path := range []string{"/api/v1/core/matches", "/api/v1/core/matches/1001", "/api/v1/runs", "/api/v1/runs/latest"} {
		rec, body := do(t, srv, path, nil)
		if rec.Code != http.StatusInternalServerError || body["error"] != "db down" {
			t.Errorf("%s: got %d %v", path, rec.Code, body)
		}
	}
}

func TestListRuns(t *testing.T) {
	store := sampleStore()
	rec, body := do(t, New(testConfig(), store), "/api/v1/runs?dataset=pl_2023_finished&page=3&limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.lastRuns.limit != 5 || store.lastRuns.offset != 10 || store.lastRuns.dataset != "pl_2023_finished" {
		t.Errorf("unexpected args: %+v", store.lastRuns)
	}
	if data, _ := body["data"].([]any); len(data) != 2 {
		t.Errorf("data = %v", body["data"])
	}
}

func TestLatestRun(t *testing.T) {
	rec, body := do(t, New(testConfig(), sampleStore()), "/api/v1/runs/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	meta, _ := body["meta"].(map[string]any)
	if meta["run_id"] != "r1" || meta["datasets"] != float64(2) || meta["failed"] != float64(1) {
		t.Errorf("meta = %v", meta)
	}

	empty := &fakeStore{}
	rec, _ = do(t, New(testConfig(), empty), "/api/v1/runs/latest", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty store status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/core/matches", nil)
	rec := httptest.NewRecorder()
	New(testConfig(), sampleStore()).Engine().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}
}
