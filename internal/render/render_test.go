package render

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeightGridOrientation(t *testing.T) {
	g, err := physics.NewGrid(physics.DefaultParams())
	require.NoError(t, err)
	s := g.Snapshot()
	s.H.Set(0, 1, 0.3)

	hg := heightGrid{h: s.H, rows: 5, cols: 5}
	c, r := hg.Dims()
	assert.Equal(t, 5, c)
	assert.Equal(t, 5, r)
	assert.Equal(t, 0.3, hg.Z(1, 4), "grid row 0 is drawn at the top")
	assert.Equal(t, 1.0, hg.Z(2, 2))
}

func TestWriteHeightPNG(t *testing.T) {
	p := physics.DefaultParams()
	eng, err := physics.NewEngine(p)
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, eng.Advance(g))
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeightPNG(&buf, g.Snapshot(), DefaultSize))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg.Width, cfg.Height)

	path := filepath.Join(t.TempDir(), "h.png")
	require.NoError(t, HeightPNG(g.Snapshot(), path, DefaultSize))
	assert.FileExists(t, path)
}

func TestHeightPlotEmpty(t *testing.T) {
	_, err := HeightPlot(dynamo.Snapshot{}, 1)
	assert.Error(t, err)
}

func TestSeriesPNG(t *testing.T) {
	var buf bytes.Buffer
	times := []float64{0, 600, 1200, 1800}
	require.NoError(t, SeriesPNG(&buf, "energy", times, []float64{1, 0.9, 0.95, 0.8}))
	_, err := png.DecodeConfig(&buf)
	assert.NoError(t, err)
}
