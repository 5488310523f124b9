package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/swsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOrder(t *testing.T) {
	p := physics.DefaultParams()
	p.Wind = physics.WindUniform
	eng, err := physics.NewEngine(p)
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)
	require.NoError(t, eng.Advance(g))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g.Fields(), eng.Forcing().Wind))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "time step 1 (0.0 days)\n"), out)

	last := -1
	for _, name := range Order {
		idx := strings.Index(out, "\n"+name+"\n")
		require.GreaterOrEqual(t, idx, 0, "missing %s", name)
		assert.Greater(t, idx, last, "%s out of order", name)
		last = idx
	}
	assert.Contains(t, out, "1e-08")
}

func TestWriteWithoutWind(t *testing.T) {
	g, err := physics.NewGrid(physics.DefaultParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g.Fields(), nil))
	assert.NotContains(t, buf.String(), "windU")
	assert.Contains(t, buf.String(), "\nH\n")
}
