package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/buger/jsonparser"
)

const matchesKey = "matches"

// Fetcher downloads match listings and optionally keeps the raw payload on disk.
type Fetcher struct {
	client *Client
	rawDir string
}

// NewFetcher wires a shared Client to a raw output directory.
func NewFetcher(client *Client, rawDir string) *Fetcher {
	return &Fetcher{client: client, rawDir: rawDir}
}

// Fetch retrieves the matches for req. With persist set, the payload is
// written verbatim to RawPath(req), replacing any earlier download for the
// same filters.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest, persist bool) (json.RawMessage, error) {
	payload, err := f.client.Get(ctx, req.Endpoint(), req.Query())
	if err != nil {
		return nil, err
	}

	if persist {
		if err := os.MkdirAll(f.rawDir, 0o755); err != nil {
			return payload, fmt.Errorf("create raw dir: %w", err)
		}
		if err := os.WriteFile(f.RawPath(req), payload, 0o644); err != nil {
			return payload, fmt.Errorf("write raw payload: %w", err)
		}
	}
	return payload, nil
}

// RawPath is the deterministic location of the raw JSON for req.
func (f *Fetcher) RawPath(req FetchRequest) string {
	return filepath.Join(f.rawDir, req.Basename()+".json")
}

// Matches returns the elements of the payload's "matches" array. A payload
// without that array yields no records. Elements that are not objects are
// returned as JSON null.
func Matches(payload []byte) []json.RawMessage {
	arr, typ, _, err := jsonparser.Get(payload, matchesKey)
	if err != nil || typ != jsonparser.Array {
		return nil
	}

	var out []json.RawMessage
	_, _ = jsonparser.ArrayEach(arr, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			out = append(out, json.RawMessage("null"))
			return
		}
		out = append(out, json.RawMessage(value))
	})
	return out
}
