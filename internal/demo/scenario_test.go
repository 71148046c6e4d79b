package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcomes(ds *Dataset) []Outcome {
	var out []Outcome
	for _, stage := range ds.Stages {
		for _, step := range stage.Steps {
			out = append(out, step.Outcome)
		}
	}
	return out
}

func testDataset() *Dataset {
	return &Dataset{
		Name: "test",
		Stages: []Stage{
			{Title: "one", Steps: []Step{{Title: "a"}, {Title: "b"}}},
			{Title: "two", Steps: []Step{{Title: "c"}, {Title: "d"}, {Title: "e"}}},
		},
	}
}

func TestApplyScenario(t *testing.T) {
	tests := []struct {
		scenario Scenario
		want     []Outcome
	}{
		{ScenarioSuccess, []Outcome{OutcomeSuccess, OutcomeSuccess, OutcomeSuccess, OutcomeSuccess, OutcomeSuccess}},
		{ScenarioFlaky, []Outcome{OutcomeSuccess, OutcomeFlaky, OutcomeSuccess, OutcomeFlaky, OutcomeSuccess}},
		{ScenarioFail, []Outcome{OutcomeSuccess, OutcomeSuccess, OutcomeFail, OutcomeSuccess, OutcomeSuccess}},
	}

	for _, tt := range tests {
		t.Run(string(tt.scenario), func(t *testing.T) {
			base := testDataset()
			ds, err := ApplyScenario(base, tt.scenario)
			require.NoError(t, err)

			assert.Equal(t, tt.want, outcomes(ds))
			assert.Equal(t, make([]Outcome, 5), outcomes(base), "base dataset is not modified")
		})
	}
}

func TestApplyScenario_Errors(t *testing.T) {
	_, err := ApplyScenario(nil, ScenarioSuccess)
	assert.EqualError(t, err, "nil dataset")

	_, err = ApplyScenario(testDataset(), Scenario("chaos"))
	assert.EqualError(t, err, `unknown demo scenario "chaos"`)
}

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario("FLAKY")
	require.NoError(t, err)
	assert.Equal(t, ScenarioFlaky, s)

	_, err = ParseScenario("chaos")
	assert.EqualError(t, err, `invalid demo scenario "chaos" (valid: success, flaky, fail)`)
}
