package demo

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/pipeline.yaml
var embeddedFixtures embed.FS

// Dataset is a scripted pipeline played back by the demo.
type Dataset struct {
	Name   string  `yaml:"name"`
	Stages []Stage `yaml:"stages"`
}

// Stage is a group of steps rendered under one parent task.
type Stage struct {
	Title       string `yaml:"title"`
	Concurrency int    `yaml:"concurrency"`
	Steps       []Step `yaml:"steps"`
}

// Step is a simulated command: its lines are streamed under the task.
type Step struct {
	Title  string   `yaml:"title"`
	Status string   `yaml:"status"`
	Lines  []string `yaml:"lines"`

	Outcome Outcome `yaml:"-"`
}

// LoadDefaultDataset loads the embedded demo fixture.
func LoadDefaultDataset() (*Dataset, error) {
	data, err := embeddedFixtures.ReadFile("fixtures/pipeline.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded demo fixture: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes a demo fixture.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse demo fixture: %w", err)
	}
	if len(ds.Stages) == 0 {
		return nil, errors.New("demo fixture has no stages")
	}
	for i, stage := range ds.Stages {
		if len(stage.Steps) == 0 {
			return nil, fmt.Errorf("demo stage %d (%s) has no steps", i, stage.Title)
		}
	}
	return &ds, nil
}

// counts returns the number of steps and output lines in the dataset.
func (d *Dataset) counts() (steps, lines int) {
	for _, stage := range d.Stages {
		for _, step := range stage.Steps {
			steps++
			lines += len(step.Lines)
		}
	}
	return steps, lines
}
