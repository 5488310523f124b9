package export

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

const (
	// HeightLimit clamps the colour range of H to [-HeightLimit, HeightLimit].
	HeightLimit       = 0.5
	DefaultCellSize   = 40.0
	DefaultArrowScale = 30.0
)

// HeightColormap returns the diverging blue-red map used for H, spanning
// [-HeightLimit, HeightLimit].
func HeightColormap() palette.ColorMap {
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-HeightLimit)
	cmap.SetMax(HeightLimit)
	return cmap
}

// FieldSVG draws H as a grid of cells with white arrows for the velocity
// components: U on each cell's west face and V on its north face, each of
// length value*arrowScale cells. North is up.
func FieldSVG(s dynamo.Snapshot, cell, arrowScale float64) string {
	rows, cols := s.Dims()
	if rows == 0 || cols == 0 {
		return ""
	}
	if cell <= 0 {
		cell = DefaultCellSize
	}
	cmap := HeightColormap()

	width := float64(cols) * cell
	height := float64(rows) * cell

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs><marker id="head" markerWidth="6" markerHeight="6" refX="5" refY="3" orient="auto"><path d="M0,0 L6,3 L0,6 z" fill="#ffffff"/></marker></defs>
<g stroke="#202020" stroke-width="0.5">
`, width, height, width, height)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(c)*cell, float64(r)*cell, cell, cell, heightColor(cmap, s.H.At(r, c)))
		}
	}
	sb.WriteString("</g>\n<g stroke=\"#ffffff\" stroke-width=\"1.5\" marker-end=\"url(#head)\">\n")

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := float64(c) * cell
			y := (float64(r) + 0.5) * cell
			writeArrow(&sb, x, y, s.U.At(r, c)*arrowScale*cell, 0)

			x = (float64(c) + 0.5) * cell
			y = float64(r) * cell
			writeArrow(&sb, x, y, 0, -s.V.At(r, c)*arrowScale*cell)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writeArrow(sb *strings.Builder, x, y, dx, dy float64) {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.Hypot(dx, dy) < 0.5 {
		return
	}
	fmt.Fprintf(sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x, y, x+dx, y+dy)
}

func heightColor(cmap palette.ColorMap, v float64) string {
	if math.IsNaN(v) {
		return "#ff00ff"
	}
	v = math.Max(-HeightLimit, math.Min(HeightLimit, v))
	c, err := cmap.At(v)
	if err != nil {
		return "#808080"
	}
	return hex(c)
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// SeriesToSVG draws a polyline of values against times, such as the energy
// history of a run. Non-finite values break the line.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[n-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range values[:n] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	if math.IsInf(minY, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor)

	pen := false
	for i := 0; i < n; i++ {
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pen = false
			continue
		}
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if pen {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " M%.1f,%.1f", x, y)
			pen = true
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
