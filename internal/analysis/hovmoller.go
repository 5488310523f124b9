package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Hovmoller stacks H along one grid row over time: row i of the result is
// the interior of that grid row in snapshot i. It returns nil when there
// are no snapshots or row is outside the grid.
func Hovmoller(snaps []dynamo.Snapshot, row int) *mat.Dense {
	frames := make([]*mat.Dense, len(snaps))
	for i, s := range snaps {
		rows, cols := s.Dims()
		frames[i] = s.H.Slice(0, rows, 0, cols).(*mat.Dense)
	}
	return HovmollerFrames(frames, row)
}

// HovmollerFrames is Hovmoller over stored interior height frames, as
// returned by storage.LoadFrames.
func HovmollerFrames(frames []*mat.Dense, row int) *mat.Dense {
	if len(frames) == 0 {
		return nil
	}
	rows, cols := frames[0].Dims()
	if row < 0 || row >= rows {
		return nil
	}

	out := mat.NewDense(len(frames), cols, nil)
	for i, f := range frames {
		out.SetRow(i, f.RawRowView(row)[:cols])
	}
	return out
}

// shades runs from most negative to most positive; the middle rune is zero.
var shades = []rune("@%#*+-. .-+*#%@")

// HovmollerToASCII draws one text line per time sample, one rune per
// column, scaled symmetrically to the largest |H| in the diagram. Troughs
// and crests share the ramp; non-finite values print as '!'.
func HovmollerToASCII(m *mat.Dense) string {
	if m == nil {
		return ""
	}
	r, c := m.Dims()

	scale := 0.0
	for i := 0; i < r; i++ {
		for _, v := range m.RawRowView(i) {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				scale = math.Max(scale, math.Abs(v))
			}
		}
	}
	if scale == 0 {
		scale = 1
	}

	mid := len(shades) / 2
	var sb strings.Builder
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				sb.WriteRune('!')
				continue
			}
			idx := mid + int(math.Round(v/scale*float64(mid)))
			sb.WriteRune(shades[idx])
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
