package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func towerAfter(t *testing.T, steps int) dynamo.Snapshot {
	t.Helper()
	eng, err := physics.NewEngine(physics.DefaultParams())
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)
	for i := 0; i < steps; i++ {
		require.NoError(t, eng.Advance(g))
	}
	return g.Snapshot()
}

func TestFieldSVG(t *testing.T) {
	svg := FieldSVG(towerAfter(t, 0), 20, DefaultArrowScale)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `width="100" height="100"`)
	assert.Equal(t, 25, strings.Count(svg, "<rect "))
	assert.Zero(t, strings.Count(svg, "<line "), "no arrows while the fluid is at rest")
}

func TestFieldSVGArrows(t *testing.T) {
	s := towerAfter(t, 0)
	s.U.Set(1, 2, 0.05)
	s.V.Set(3, 1, -0.02)

	svg := FieldSVG(s, 10, DefaultArrowScale)
	assert.Equal(t, 2, strings.Count(svg, "<line "))
	// U at the west face of (1,2), 0.05*30 cells long
	assert.Contains(t, svg, `<line x1="20.0" y1="15.0" x2="35.0" y2="15.0"/>`)
	// V at the north face of (3,1), pointing south for negative V
	assert.Contains(t, svg, `<line x1="15.0" y1="30.0" x2="15.0" y2="36.0"/>`)
}

func TestHeightColorClamps(t *testing.T) {
	cmap := HeightColormap()
	assert.Equal(t, heightColor(cmap, HeightLimit), heightColor(cmap, 7))
	assert.Equal(t, heightColor(cmap, -HeightLimit), heightColor(cmap, -7))
	assert.NotEqual(t, heightColor(cmap, -HeightLimit), heightColor(cmap, HeightLimit))
	assert.Equal(t, "#ff00ff", heightColor(cmap, math.NaN()))
}

func TestFieldSVGEmpty(t *testing.T) {
	assert.Empty(t, FieldSVG(dynamo.Snapshot{}, 10, 1))
}

func TestSeriesToSVG(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	svg := SeriesToSVG(times, []float64{1, 2, math.NaN(), 4}, 200, 100, "#00ff00")
	assert.Contains(t, svg, `stroke="#00ff00"`)
	assert.Equal(t, 2, strings.Count(svg, " M"))
	assert.Equal(t, 1, strings.Count(svg, " L"))

	assert.Empty(t, SeriesToSVG(times[:1], []float64{1}, 10, 10, "red"))
	assert.Empty(t, SeriesToSVG(times[:2], []float64{math.NaN(), math.Inf(1)}, 10, 10, "red"))
}
