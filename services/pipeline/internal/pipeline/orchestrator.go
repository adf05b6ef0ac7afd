// Package pipeline chains fetch, flatten, standardize and feature encoding
// over a list of datasets.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/features"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/footballdata"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/models"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/standardize"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/tabular"
)

const (
	cleanedPrefix  = "cleaned_"
	featuresPrefix = "features_"
)

// Fetcher retrieves raw match payloads. *footballdata.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req footballdata.FetchRequest, persist bool) (json.RawMessage, error)
	RawPath(req footballdata.FetchRequest) string
}

// Sink receives cleaned matches and run records.
type Sink interface {
	StoreMatches(ctx context.Context, key models.DatasetKey, t tabular.Table) (int, error)
	RecordRun(ctx context.Context, run models.RunRecord) error
}

// Orchestrator runs datasets one after another. A failing dataset is
// recorded in its Result and does not stop the others.
type Orchestrator struct {
	Fetcher      Fetcher
	InterimDir   string
	ProcessedDir string

	Schema  standardize.Schema
	Encoder features.Encoder
	Sink    Sink // optional

	// Retries is the number of extra fetch attempts after a transport
	// error or a 429/5xx response.
	Retries int
	DryRun  bool
	Logger  *slog.Logger

	newRunID func() string
	now      func() time.Time
}

// New returns an orchestrator with the default schema and encoder.
func New(fetcher Fetcher, interimDir, processedDir string) *Orchestrator {
	return &Orchestrator{
		Fetcher:      fetcher,
		InterimDir:   interimDir,
		ProcessedDir: processedDir,
		Schema:       standardize.DefaultSchema(),
		Encoder:      features.OneHotEncoder(features.DefaultCategoricalColumns),
		Logger:       slog.Default(),
		newRunID:     uuid.NewString,
		now:          time.Now,
	}
}

// Run processes every dataset in order and logs a final report.
func (o *Orchestrator) Run(ctx context.Context, datasets []Dataset) []Result {
	runID := o.runID()
	log := o.logger().With("run_id", runID)
	log.Info("pipeline started", "datasets", len(datasets), "dry_run", o.DryRun)

	results := make([]Result, 0, len(datasets))
	for _, ds := range datasets {
		var res Result
		if err := ctx.Err(); err != nil {
			at := o.clock()
			res = Result{RunID: runID, Dataset: ds, Err: err, StartedAt: at, FinishedAt: at}
		} else {
			res = o.RunDataset(ctx, runID, ds)
		}

		if res.OK() {
			log.Info("dataset done",
				"dataset", ds.String(),
				"rows", res.Artifacts.Rows,
				"stored", res.Artifacts.Stored,
				"features", res.Artifacts.Features,
				"duration", res.FinishedAt.Sub(res.StartedAt))
		} else {
			log.Error("dataset failed", "dataset", ds.String(), "attempts", res.Attempts, "err", res.Err)
		}

		if o.Sink != nil && !o.DryRun && ctx.Err() == nil {
			if err := o.Sink.RecordRun(ctx, res.Record()); err != nil {
				log.Warn("could not record run", "dataset", ds.String(), "err", err)
			}
		}
		results = append(results, res)
	}

	ok, failed := Summarize(results)
	log.Info("pipeline finished", "succeeded", ok, "failed", failed)
	return results
}

// RunDataset fetches one dataset and writes its artifacts.
func (o *Orchestrator) RunDataset(ctx context.Context, runID string, ds Dataset) Result {
	res := Result{RunID: runID, Dataset: ds, StartedAt: o.clock()}
	res.Err = o.runDataset(ctx, ds, &res)
	res.FinishedAt = o.clock()
	return res
}

func (o *Orchestrator) runDataset(ctx context.Context, ds Dataset, res *Result) error {
	req, err := ds.Request()
	if err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}
	res.Request = req

	payload, err := o.fetch(ctx, req, res)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", req, err)
	}

	records := footballdata.Matches(payload)
	rows, err := tabular.FlattenAll(records)
	if err != nil {
		return fmt.Errorf("flatten %s: %w", req, err)
	}
	flat := tabular.FromRows(rows)
	cleaned := o.Schema.Apply(flat)
	encoded, mapping := o.encoder()(cleaned)

	res.Artifacts.Rows = cleaned.Len()
	res.Artifacts.Columns = len(encoded.Columns)

	if o.DryRun {
		o.logger().Info("dry-run: artifacts not written",
			"dataset", req.String(),
			"matches", len(records),
			"columns", len(flat.Columns))
		return nil
	}

	base := req.Basename()
	a := &res.Artifacts
	a.Raw = o.Fetcher.RawPath(req)
	a.Flattened = filepath.Join(o.InterimDir, base+".csv")
	a.Cleaned = filepath.Join(o.ProcessedDir, cleanedPrefix+base+".csv")
	a.Features = FeaturePath(a.Cleaned)
	a.FeatureColumns = strings.TrimSuffix(a.Features, ".csv") + ".columns.json"

	if err := tabular.WriteCSVFile(a.Flattened, flat); err != nil {
		return fmt.Errorf("write flattened csv: %w", err)
	}
	if err := tabular.WriteCSVFile(a.Cleaned, cleaned); err != nil {
		return fmt.Errorf("write cleaned csv: %w", err)
	}
	if err := tabular.WriteCSVFile(a.Features, encoded); err != nil {
		return fmt.Errorf("write features csv: %w", err)
	}
	if err := mapping.WriteFile(a.FeatureColumns); err != nil {
		return fmt.Errorf("write feature columns: %w", err)
	}

	if o.Sink != nil {
		key := models.DatasetKey{Competition: req.Competition, Season: req.Season, Status: req.Status}
		stored, err := o.Sink.StoreMatches(ctx, key, cleaned)
		if err != nil {
			return fmt.Errorf("store matches: %w", err)
		}
		a.Stored = stored
	}
	return nil
}

func (o *Orchestrator) fetch(ctx context.Context, req footballdata.FetchRequest, res *Result) (json.RawMessage, error) {
	attempts := 1 + max(o.Retries, 0)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res.Attempts = attempt
		payload, err := o.Fetcher.Fetch(ctx, req, !o.DryRun)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !footballdata.IsTemporary(err) || attempt == attempts {
			break
		}
		o.logger().Warn("fetch failed, retrying", "dataset", req.String(), "attempt", attempt, "err", err)
	}
	return nil, lastErr
}

// FeaturePath derives the feature matrix path from a cleaned table path by
// swapping the "cleaned_" file prefix for "features_".
func FeaturePath(cleaned string) string {
	dir, name := filepath.Split(cleaned)
	return filepath.Join(dir, featuresPrefix+strings.TrimPrefix(name, cleanedPrefix))
}

func (o *Orchestrator) encoder() features.Encoder {
	if o.Encoder == nil {
		return features.OneHotEncoder(features.DefaultCategoricalColumns)
	}
	return o.Encoder
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Orchestrator) runID() string {
	if o.newRunID == nil {
		return uuid.NewString()
	}
	return o.newRunID()
}

func (o *Orchestrator) clock() time.Time {
	if o.now == nil {
		return time.Now()
	}
	return o.now()
}
