package demo

import (
	"fmt"
	"strings"
)

// Scenario controls step outcomes during demo playback.
type Scenario string

const (
	ScenarioSuccess Scenario = "success"
	ScenarioFlaky   Scenario = "flaky"
	ScenarioFail    Scenario = "fail"
)

func ParseScenario(value string) (Scenario, error) {
	switch s := Scenario(strings.ToLower(strings.TrimSpace(value))); s {
	case ScenarioSuccess, ScenarioFlaky, ScenarioFail:
		return s, nil
	default:
		return "", fmt.Errorf("invalid demo scenario %q (valid: success, flaky, fail)", value)
	}
}

// Outcome is how a single step ends.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeFlaky fails once, then succeeds with a warning.
	OutcomeFlaky
	OutcomeFail
)

// Step indexes (1-based, counted across stages) that the scenarios target.
var (
	flakyTargets = []int{2, 4}
	failTarget   = 3
)

// ApplyScenario returns a copy of base with step outcomes set for scenario.
func ApplyScenario(base *Dataset, scenario Scenario) (*Dataset, error) {
	if base == nil {
		return nil, fmt.Errorf("nil dataset")
	}
	switch scenario {
	case ScenarioSuccess, ScenarioFlaky, ScenarioFail:
	default:
		return nil, fmt.Errorf("unknown demo scenario %q", scenario)
	}

	out := &Dataset{Name: base.Name, Stages: make([]Stage, len(base.Stages))}
	index := 0
	for i, stage := range base.Stages {
		stage.Steps = append([]Step(nil), stage.Steps...)
		for j := range stage.Steps {
			index++
			stage.Steps[j].Outcome = outcomeFor(scenario, index)
		}
		out.Stages[i] = stage
	}
	return out, nil
}

func outcomeFor(scenario Scenario, index int) Outcome {
	switch scenario {
	case ScenarioFlaky:
		for _, target := range flakyTargets {
			if index == target {
				return OutcomeFlaky
			}
		}
	case ScenarioFail:
		if index == failTarget {
			return OutcomeFail
		}
	}
	return OutcomeSuccess
}
