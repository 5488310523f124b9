package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/metrics"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/san-kum/swsim/internal/sim"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTower(t *testing.T, frames int) (*config.Config, *dynamo.Result) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Frames = frames

	p, err := cfg.Params()
	require.NoError(t, err)
	eng, err := physics.NewEngine(p)
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)

	s := sim.New(eng, g)
	logger, _ := test.NewNullLogger()
	s.SetLogger(logger)
	s.AddMetric(metrics.NewEnergy())

	rc := cfg.RunConfig()
	rc.KeepSnapshots = true
	result, err := s.Run(context.Background(), rc)
	require.NoError(t, err)
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, result := runTower(t, 6)
	runID, err := st.Save(cfg, result)
	require.NoError(t, err)
	assert.Contains(t, runID, "tower_")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, *cfg, meta.Config)
	assert.Equal(t, 6, meta.Steps)
	assert.Equal(t, 7, meta.Frames)
	assert.InDelta(t, 6*600.0/dynamo.SecondsPerDay, meta.Days, 1e-12)
	assert.False(t, meta.Diverged)
	assert.Equal(t, result.Metrics["energy"], meta.Metrics["energy"])

	series, err := st.LoadSeries(runID)
	require.NoError(t, err)
	assert.Equal(t, result.Steps, series.Steps)
	assert.Equal(t, result.Energy, series.Energy)
	assert.Equal(t, result.Probe, series.Probe)
	assert.Len(t, series.Days, 7)

	frames, err := st.LoadFrames(runID)
	require.NoError(t, err)
	require.Len(t, frames, 7)
	r, c := frames[0].Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 5, c)
	assert.Equal(t, 1.0, frames[0].At(2, 2))
	assert.Equal(t, result.Snapshots[6].H.At(1, 3), frames[6].At(1, 3))
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(filepath.Join(tmpDir, "runs"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	cfg, result := runTower(t, 2)
	first, err := st.Save(cfg, result)
	require.NoError(t, err)
	second, err := st.Save(cfg, result)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "runs", "stray.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "runs", "empty"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope_1")
	assert.ErrorIs(t, err, dynamo.ErrRunNotFound)

	_, err = st.LoadSeries("nope_1")
	assert.ErrorIs(t, err, dynamo.ErrRunNotFound)

	_, err = st.LoadFrames("nope_1")
	assert.ErrorIs(t, err, dynamo.ErrRunNotFound)
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, result := runTower(t, 1)
	result.Snapshots = nil
	runID, err := st.Save(cfg, result)
	require.NoError(t, err)

	runDir := filepath.Join(tmpDir, runID)
	assert.FileExists(t, filepath.Join(runDir, "metadata.json"))
	assert.FileExists(t, filepath.Join(runDir, "series.csv"))
	assert.NoFileExists(t, filepath.Join(runDir, "height.csv"))
}

func TestStoreNonFiniteMetrics(t *testing.T) {
	st := New(t.TempDir())

	cfg, result := runTower(t, 1)
	result.Metrics["energy_growth"] = math.Inf(1)
	runID, err := st.Save(cfg, result)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"energy_growth"}, meta.NonFinite)
	assert.NotContains(t, meta.Metrics, "energy_growth")
}

func TestWriteJSON(t *testing.T) {
	cfg, result := runTower(t, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, cfg, result))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, 3, data.Steps)
	assert.Equal(t, "tower", data.Config.Name)
	assert.Len(t, data.Heights, 4)
	assert.Len(t, data.Heights[0], 25)
	assert.Equal(t, 1.0, data.Heights[0][12])

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, cfg, result))
	assert.FileExists(t, path)
}

func TestStoreSaveFailureRemovesRunDir(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, result := runTower(t, 3)
	result.Probe = result.Probe[:1]

	_, err := st.Save(cfg, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series lengths differ")

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
