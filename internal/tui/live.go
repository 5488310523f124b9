package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// shades runs from trough to crest; the middle rune is flat water.
var shades = []rune("@%#*+-. .-+*#%@")

// LiveRenderer is a dynamo.Observer that redraws H as shaded text at most
// frameRate times a second. A frameRate of zero draws every frame.
type LiveRenderer struct {
	name      string
	frameRate int
	out       io.Writer
	lastFrame time.Time
	frames    int
}

func NewLiveRenderer(name string, frameRate int, out io.Writer) *LiveRenderer {
	return &LiveRenderer{
		name:      name,
		frameRate: frameRate,
		out:       out,
	}
}

func (r *LiveRenderer) OnStep(s dynamo.Snapshot) {
	if r.frameRate > 0 && time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.frames++
	fmt.Fprint(r.out, clearScreen+r.render(s))
}

// Frames is the number of frames actually drawn.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) render(s dynamo.Snapshot) string {
	rows, cols := s.Dims()
	scale := 0.0
	for i := 0; i < rows; i++ {
		for _, v := range s.H.RawRowView(i)[:cols] {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				scale = math.Max(scale, math.Abs(v))
			}
		}
	}
	if scale == 0 {
		scale = 1
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s  %.1f days  step %d\n", r.name, s.Days(), s.Step))
	b.WriteString("  " + strings.Repeat("-", 2*cols) + "\n")

	mid := len(shades) / 2
	for i := 0; i < rows; i++ {
		b.WriteString("  ")
		for _, v := range s.H.RawRowView(i)[:cols] {
			ch := '!'
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				ch = shades[mid+int(math.Round(v/scale*float64(mid)))]
			}
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", 2*cols) + "\n")
	b.WriteString(fmt.Sprintf("  energy=%.4g peak=%.4g probe=%.4g scale=%.3g\n",
		physics.Energy(s), physics.PeakHeight(s), physics.Probe(s), scale))
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
