package automation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `name: smoke
description: two short runs
steps:
  - preset: tower
    frames: 5
  - preset: still
    frames: 3
    steps_per_frame: 2
    wrap: false
    params: ["time_step=300", "drag=2e-6"]
    save_as: calm
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Steps, 2)

	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())
	log, hook := test.NewNullLogger()

	results, ids, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), st, log)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, ids, 2)

	assert.Equal(t, 5, results[0].StepsTaken)
	assert.Equal(t, 6, results[1].StepsTaken)
	assert.True(t, strings.HasPrefix(ids[1], "calm_"), ids[1])

	meta, err := st.Load(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 300.0, meta.Config.TimeStep)
	assert.Equal(t, 2e-6, meta.Config.Drag)
	assert.False(t, meta.Config.HorizontalWrap)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestBuildErrors(t *testing.T) {
	reg := experiment.NewRegistry()

	_, err := ScenarioStep{Preset: "volcano"}.Build(reg)
	assert.Error(t, err)

	_, err = ScenarioStep{Params: []string{"drag"}}.Build(reg)
	assert.Error(t, err)

	_, err = ScenarioStep{Params: []string{"viscosity=1"}}.Build(reg)
	assert.ErrorContains(t, err, "unknown parameter")

	cfg, err := ScenarioStep{}.Build(reg)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestScenarioStopsAtFailingStep(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []ScenarioStep{
		{Frames: 2},
		{Params: []string{"dx=0"}},
	}}
	log, _ := test.NewNullLogger()
	results, ids, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, results, 1)
	assert.Empty(t, ids)
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: empty\n"))
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	name, values, err := ParseRange("time_step=60, 600,6000")
	require.NoError(t, err)
	assert.Equal(t, "time_step", name)
	assert.Equal(t, []float64{60, 600, 6000}, values)

	_, _, err = ParseRange("time_step")
	assert.Error(t, err)
	_, _, err = ParseRange("spin=1")
	assert.Error(t, err)
	_, _, err = ParseRange("drag=1,x")
	assert.Error(t, err)
}
