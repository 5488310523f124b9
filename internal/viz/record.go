package viz

import (
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"

	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/plot/palette"
)

const (
	gifCellPixels = 12
	gifColors     = 64
)

// Recorder collects heat map frames for an animated GIF.
type Recorder struct {
	pal    color.Palette
	lo, hi float64
	frames []*image.Paletted
}

// NewRecorder fixes the palette from cmap for the whole recording; the
// last palette entry is reserved for non-finite cells.
func NewRecorder(cmap palette.ColorMap) *Recorder {
	colors := cmap.Palette(gifColors).Colors()
	pal := make(color.Palette, 0, len(colors)+1)
	pal = append(pal, colors...)
	pal = append(pal, color.RGBA{R: 255, B: 255, A: 255})
	return &Recorder{pal: pal, lo: cmap.Min(), hi: cmap.Max()}
}

func (r *Recorder) Capture(s dynamo.Snapshot) {
	rows, cols := s.Dims()
	img := image.NewPaletted(image.Rect(0, 0, cols*gifCellPixels, rows*gifCellPixels), r.pal)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			idx := r.index(s.H.At(row, col))
			for y := row * gifCellPixels; y < (row+1)*gifCellPixels; y++ {
				for x := col * gifCellPixels; x < (col+1)*gifCellPixels; x++ {
					img.SetColorIndex(x, y, idx)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) index(v float64) uint8 {
	n := len(r.pal) - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return uint8(n)
	}
	t := (v - r.lo) / (r.hi - r.lo)
	i := int(math.Round(t * float64(n-1)))
	return uint8(max(0, min(i, n-1)))
}

func (r *Recorder) Len() int { return len(r.frames) }

// Save writes the frames as a looping GIF. It is a no-op without frames.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 4)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
