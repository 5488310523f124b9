package gui

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/swsim/internal/export"
	"gonum.org/v1/plot/palette"
)

// Field area, right of the HUD column.
const (
	fieldLeft   = 320
	fieldTop    = 70
	fieldWidth  = 920
	fieldHeight = 600
)

func heightColormap() palette.ColorMap { return export.HeightColormap() }

// fieldLayout returns the square cell size and the top-left corner that
// centre a rows×cols grid in the field area.
func fieldLayout(rows, cols int) (cell, x0, y0 float32) {
	cell = float32(math.Min(float64(fieldWidth)/float64(cols), float64(fieldHeight)/float64(rows)))
	x0 = fieldLeft + (fieldWidth-cell*float32(cols))/2
	y0 = fieldTop + (fieldHeight-cell*float32(rows))/2
	return cell, x0, y0
}

func toRL(c color.Color) rl.Color {
	r, g, b, a := c.RGBA()
	return rl.NewColor(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

func (a *App) cellColor(h float64) rl.Color {
	if math.IsNaN(h) {
		return rl.Magenta
	}
	h = math.Max(a.Colormap.Min(), math.Min(a.Colormap.Max(), h))
	c, err := a.Colormap.At(h)
	if err != nil {
		return ColGrid
	}
	return toRL(c)
}

// RenderField draws H as coloured cells, north at the top, with U arrows
// on west faces and V arrows on north faces when vectors are shown.
func (a *App) RenderField() {
	snap := a.Grid.Snapshot()
	rows, cols := snap.Dims()
	if rows == 0 || cols == 0 {
		return
	}
	cell, x0, y0 := fieldLayout(rows, cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := x0 + float32(c)*cell
			y := y0 + float32(r)*cell
			rl.DrawRectangleV(rl.NewVector2(x, y), rl.NewVector2(cell, cell), a.cellColor(snap.H.At(r, c)))
			rl.DrawRectangleLinesEx(rl.NewRectangle(x, y, cell, cell), 1, ColGrid)
		}
	}

	if !a.ShowVectors {
		return
	}
	scale := float32(export.DefaultArrowScale) * cell
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := x0 + float32(c)*cell
			y := y0 + (float32(r)+0.5)*cell
			drawArrow(x, y, float32(snap.U.At(r, c))*scale, 0)

			x = x0 + (float32(c)+0.5)*cell
			y = y0 + float32(r)*cell
			drawArrow(x, y, 0, -float32(snap.V.At(r, c))*scale)
		}
	}
}

func drawArrow(x, y, dx, dy float32) {
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 1 || math.IsNaN(float64(length)) || math.IsInf(float64(length), 0) {
		return
	}
	end := rl.NewVector2(x+dx, y+dy)
	rl.DrawLineEx(rl.NewVector2(x, y), end, 2, ColSelect)

	ux, uy := dx/length, dy/length
	head := min(length/3, 8)
	left := rl.NewVector2(end.X-head*(ux-uy*0.5), end.Y-head*(uy+ux*0.5))
	right := rl.NewVector2(end.X-head*(ux+uy*0.5), end.Y-head*(uy-ux*0.5))
	rl.DrawLineEx(end, left, 2, ColSelect)
	rl.DrawLineEx(end, right, 2, ColSelect)
}
