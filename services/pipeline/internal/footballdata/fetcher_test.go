package footballdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchPersistsVerbatim(t *testing.T) {
	payloads := []string{`{"matches":[{"id":1}]}`, `{"matches":[{"id":2}]}`}
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payloads[call]))
		call++
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "raw", "football_data")
	f := NewFetcher(NewClient("t", ClientOptions{BaseURL: srv.URL, MinInterval: -1}), dir)
	req, _ := NewFetchRequest("PL", 2023, "FINISHED", "", "")

	for i := range payloads {
		if _, err := f.Fetch(context.Background(), req, true); err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
	}

	if got := f.RawPath(req); got != filepath.Join(dir, "pl_2023_finished.json") {
		t.Errorf("RawPath() = %q", got)
	}
	data, err := os.ReadFile(f.RawPath(req))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != payloads[1] {
		t.Errorf("raw file = %s, want second payload", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected one file after repeated fetches, got %d", len(entries))
	}
}

func TestFetchWithoutPersist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "raw")
	f := NewFetcher(NewClient("t", ClientOptions{BaseURL: srv.URL, MinInterval: -1}), dir)
	req, _ := NewFetchRequest("PL", 2023, "", "", "")
	if _, err := f.Fetch(context.Background(), req, false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("raw dir should not exist, stat err = %v", err)
	}
}

func TestMatches(t *testing.T) {
	testCases := []struct {
		payload string
		count   int
	}{
		{`{"matches":[{"id":1},{"id":2}]}`, 2},
		{`{"matches":[]}`, 0},
		{`{"count":0}`, 0},
		{`{"matches":{"id":1}}`, 0},
		{`[1,2,3]`, 0},
		{`{"matches":[{"id":1},7]}`, 2},
	}

	for _, tc := range testCases {
		if got := Matches([]byte(tc.payload)); len(got) != tc.count {
			t.Errorf("Matches(%s) returned %d records, want %d", tc.payload, len(got), tc.count)
		}
	}

	got := Matches([]byte(`{"matches":[{"id":1},7]}`))
	if string(got[0]) != `{"id":1}` || string(got[1]) != "null" {
		t.Errorf("Matches() = %s", got)
	}
}
