package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/footballdata"
)

// Dataset describes one fetch: a competition, season and optional filters.
type Dataset struct {
	Competition string `yaml:"competition"`
	Season      int    `yaml:"season"`
	Status      string `yaml:"status"`
	DateFrom    string `yaml:"date_from,omitempty"`
	DateTo      string `yaml:"date_to,omitempty"`
}

// Request validates the descriptor and builds the API request.
func (d Dataset) Request() (footballdata.FetchRequest, error) {
	return footballdata.NewFetchRequest(d.Competition, d.Season, d.Status, d.DateFrom, d.DateTo)
}

func (d Dataset) String() string {
	req, err := d.Request()
	if err != nil {
		return fmt.Sprintf("%s season=%d status=%s", d.Competition, d.Season, d.Status)
	}
	return req.String()
}

type datasetFile struct {
	Datasets []Dataset `yaml:"datasets"`
}

// DefaultDatasets is the list processed when no dataset file is configured.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{Competition: footballdata.DefaultCompetition, Season: 2022, Status: footballdata.DefaultStatus},
		{Competition: footballdata.DefaultCompetition, Season: 2023, Status: footballdata.DefaultStatus},
		{Competition: footballdata.DefaultCompetition, Season: 2024, Status: footballdata.DefaultStatus},
	}
}

// LoadDatasets reads a YAML file with a top-level "datasets" list. Every
// entry is validated up front so a typo fails before any request is made.
func LoadDatasets(path string) ([]Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read datasets file: %w", err)
	}

	var file datasetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse datasets file %s: %w", path, err)
	}
	if len(file.Datasets) == 0 {
		return nil, errors.New("datasets file " + path + " lists no datasets")
	}

	for i, d := range file.Datasets {
		if _, err := d.Request(); err != nil {
			return nil, fmt.Errorf("dataset #%d (%s): %w", i+1, d.Competition, err)
		}
	}
	return file.Datasets, nil
}
