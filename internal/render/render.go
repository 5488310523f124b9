// Package render draws snapshots and series to PNG with gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/export"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultSize is the edge length of a square frame.
const DefaultSize = 5 * vg.Inch

// heightGrid exposes the interior of H as a plotter.GridXYZ with row 0 of
// the grid drawn at the top.
type heightGrid struct {
	h          *mat.Dense
	rows, cols int
}

func (g heightGrid) Dims() (c, r int)   { return g.cols, g.rows }
func (g heightGrid) Z(c, r int) float64 { return g.h.At(g.rows-1-r, c) }
func (g heightGrid) X(c int) float64    { return float64(c) }
func (g heightGrid) Y(r int) float64    { return float64(r) }

// arrows draws the staggered velocity components as line segments, U on
// west faces and V on north faces, in grid cell units.
type arrows struct {
	s     dynamo.Snapshot
	scale float64
	style draw.LineStyle
}

func (a arrows) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	rows, cols := a.s.Dims()
	for r := 0; r < rows; r++ {
		y := float64(rows - 1 - r)
		for col := 0; col < cols; col++ {
			x := float64(col)
			if u := a.s.U.At(r, col) * a.scale; u != 0 {
				c.StrokeLine2(a.style, trX(x-0.5), trY(y), trX(x-0.5+u), trY(y))
			}
			if v := a.s.V.At(r, col) * a.scale; v != 0 {
				c.StrokeLine2(a.style, trX(x), trY(y+0.5), trX(x), trY(y+0.5+v))
			}
		}
	}
}

// HeightPlot builds a heat map of H clamped to the export colour range,
// overlaid with velocity arrows scaled by arrowScale.
func HeightPlot(s dynamo.Snapshot, arrowScale float64) (*plot.Plot, error) {
	rows, cols := s.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("render: empty snapshot")
	}

	cmap := export.HeightColormap()
	pal := cmap.Palette(255)
	colors := pal.Colors()

	hm := plotter.NewHeatMap(heightGrid{h: s.H, rows: rows, cols: cols}, pal)
	hm.Min, hm.Max = -export.HeightLimit, export.HeightLimit
	hm.Underflow = colors[0]
	hm.Overflow = colors[len(colors)-1]
	hm.NaN = color.RGBA{R: 255, B: 255, A: 255}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("H   %.1f days", s.Days())
	p.HideAxes()
	p.Add(hm)
	if arrowScale > 0 {
		p.Add(arrows{
			s:     s,
			scale: arrowScale,
			style: draw.LineStyle{Color: color.White, Width: vg.Points(1)},
		})
	}
	return p, nil
}

// WriteHeightPNG encodes the height plot of s as a square PNG.
func WriteHeightPNG(w io.Writer, s dynamo.Snapshot, size vg.Length) error {
	p, err := HeightPlot(s, export.DefaultArrowScale)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(size, size, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func HeightPNG(s dynamo.Snapshot, path string, size vg.Length) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteHeightPNG(f, s, size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SeriesPNG plots values against simulated days.
func SeriesPNG(w io.Writer, title string, times, values []float64) error {
	n := min(len(times), len(values))
	xy := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		xy = append(xy, plotter.XY{X: times[i] / dynamo.SecondsPerDay, Y: values[i]})
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "days"
	if err := plotutil.AddLines(p, xy); err != nil {
		return err
	}
	wt, err := p.WriterTo(6*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
