package footballdata

import (
	"net/url"
	"reflect"
	"testing"
)

func TestQueryOmitsUnsetDates(t *testing.T) {
	req, err := NewFetchRequest("", 2023, "FINISHED", "", "")
	if err != nil {
		t.Fatalf("NewFetchRequest() error = %v", err)
	}

	want := url.Values{"season": {"2023"}, "status": {"FINISHED"}}
	if got := req.Query(); !reflect.DeepEqual(got, want) {
		t.Errorf("Query() = %v, want %v", got, want)
	}
}

func TestQueryIncludesDates(t *testing.T) {
	req, err := NewFetchRequest("PL", 2023, "FINISHED", "2023-08-01", "2023-09-01")
	if err != nil {
		t.Fatalf("NewFetchRequest() error = %v", err)
	}

	q := req.Query()
	if q.Get("dateFrom") != "2023-08-01" || q.Get("dateTo") != "2023-09-01" {
		t.Errorf("Query() = %v", q)
	}
	if len(q) != 4 {
		t.Errorf("expected 4 keys, got %d", len(q))
	}
}

func TestNewFetchRequestValidation(t *testing.T) {
	testCases := []struct {
		name     string
		season   int
		from, to string
		wantErr  bool
	}{
		{"ok", 2023, "", "", false},
		{"only from", 2023, "2023-08-01", "", false},
		{"same day", 2023, "2023-08-01", "2023-08-01", false},
		{"zero season", 0, "", "", true},
		{"bad date", 2023, "01/08/2023", "", true},
		{"inverted range", 2023, "2023-09-01", "2023-08-01", true},
	}

	for _, tc := range testCases {
		_, err := NewFetchRequest("PL", tc.season, "", tc.from, tc.to)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestDefaultsAndNaming(t *testing.T) {
	req, err := NewFetchRequest("  ", 2024, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Competition != "PL" || req.Status != "FINISHED" {
		t.Errorf("defaults = %+v", req)
	}
	if got := req.Endpoint(); got != "competitions/PL/matches" {
		t.Errorf("Endpoint() = %q", got)
	}
	if got := req.Basename(); got != "pl_2024_finished" {
		t.Errorf("Basename() = %q", got)
	}
}
