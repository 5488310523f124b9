package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/export"
	"gonum.org/v1/plot/palette"
)

// glyphs are indexed by direction in 45° steps counter-clockwise from east.
var glyphs = []string{"→", "↗", "↑", "↖", "←", "↙", "↓", "↘"}

// themeColormap returns the current theme's map over the export height range.
func themeColormap() palette.ColorMap {
	cmap := CurrentTheme.Colormap()
	cmap.SetMin(-export.HeightLimit)
	cmap.SetMax(export.HeightLimit)
	return cmap
}

// HeatMap renders the interior of H as two-column coloured cells, north at
// the top. With arrows set, each cell carries a glyph for the direction of
// its cell-centred velocity when that speed is at least a tenth of the
// fastest cell.
func HeatMap(s dynamo.Snapshot, cmap palette.ColorMap, arrows bool) string {
	rows, cols := s.Dims()
	if rows == 0 || cols == 0 {
		return ""
	}

	maxSpeed := 0.0
	if arrows {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u, v := centreVelocity(s, r, c)
				if sp := math.Hypot(u, v); !math.IsNaN(sp) {
					maxSpeed = math.Max(maxSpeed, sp)
				}
			}
		}
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			style := lipgloss.NewStyle().Background(cellColor(cmap, s.H.At(r, c))).Foreground(lipgloss.Color("#ffffff"))
			glyph := " "
			if maxSpeed > 0 {
				u, v := centreVelocity(s, r, c)
				glyph = arrowGlyph(u, v, maxSpeed/10)
			}
			sb.WriteString(style.Render(glyph + " "))
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// centreVelocity averages the staggered U and V onto the centre of cell
// (r, c). V is positive northward.
func centreVelocity(s dynamo.Snapshot, r, c int) (u, v float64) {
	u = (s.U.At(r, c) + s.U.At(r, c+1)) / 2
	v = (s.V.At(r, c) + s.V.At(r+1, c)) / 2
	return u, v
}

func arrowGlyph(u, v, threshold float64) string {
	sp := math.Hypot(u, v)
	if math.IsNaN(sp) || sp == 0 || sp < threshold {
		return " "
	}
	idx := int(math.Round(math.Atan2(v, u)/(math.Pi/4))) % len(glyphs)
	if idx < 0 {
		idx += len(glyphs)
	}
	return glyphs[idx]
}

func cellColor(cmap palette.ColorMap, h float64) lipgloss.Color {
	if math.IsNaN(h) {
		return lipgloss.Color("#ff00ff")
	}
	h = math.Max(cmap.Min(), math.Min(cmap.Max(), h))
	c, err := cmap.At(h)
	if err != nil {
		return lipgloss.Color("#808080")
	}
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
