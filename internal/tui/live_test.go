package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/swsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveRendererDrawsTower(t *testing.T) {
	g, err := physics.NewGrid(physics.DefaultParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewLiveRenderer("tower", 0, &buf)
	r.OnStep(g.Snapshot())

	out := buf.String()
	require.True(t, strings.HasPrefix(out, clearScreen))
	assert.Contains(t, out, "tower  0.0 days  step 0")
	assert.Contains(t, out, "\n      @@    \n")
	assert.Contains(t, out, "energy=1 ")
	assert.Equal(t, 1, r.Frames())
}

func TestLiveRendererThrottles(t *testing.T) {
	g, err := physics.NewGrid(physics.DefaultParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewLiveRenderer("tower", 1, &buf)
	for i := 0; i < 5; i++ {
		r.OnStep(g.Snapshot())
	}
	assert.Equal(t, 1, r.Frames())
}

func TestLiveRendererMarksNonFinite(t *testing.T) {
	p := physics.DefaultParams()
	p.TimeStep *= 1e5
	eng, err := physics.NewEngine(p)
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)
	for i := 0; i < 2000 && g.Snapshot().IsFinite(); i++ {
		require.NoError(t, eng.Advance(g))
	}
	require.False(t, g.Snapshot().IsFinite())

	var buf bytes.Buffer
	NewLiveRenderer("unstable", 0, &buf).OnStep(g.Snapshot())
	assert.Contains(t, buf.String(), "!!")
}
