package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/physics"
	"gonum.org/v1/plot/palette"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	maxPerFrame  = 512
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
)

type App struct {
	Engine        *physics.Engine
	Grid          *physics.Grid
	Name          string
	StepsPerFrame int
	Running       bool
	Diverged      bool
	ShowVectors   bool
	Telemetry     []float64
	MaxHistory    int
	Colormap      palette.ColorMap
	Font          rl.Font
	Err           error

	InMenu   bool
	Presets  []string
	Selected int
}

func initWindow() {
	rl.InitWindow(screenWidth, screenHeight, "swsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func newApp() *App {
	return &App{
		Presets:     config.ListPresets(),
		ShowVectors: true,
		MaxHistory:  400,
		Telemetry:   make([]float64, 0, 400),
		Colormap:    heightColormap(),
		Font:        loadFont(),
	}
}

// Run opens a window on an initialized grid and blocks until it closes.
func Run(engine *physics.Engine, grid *physics.Grid, name string, stepsPerFrame int) {
	initWindow()
	defer rl.CloseWindow()
	app := newApp()
	app.attach(engine, grid, name, stepsPerFrame)
	app.RunLoop()
}

// RunInteractive starts at the preset menu.
func RunInteractive() {
	initWindow()
	defer rl.CloseWindow()
	app := newApp()
	app.InMenu = true
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) attach(engine *physics.Engine, grid *physics.Grid, name string, stepsPerFrame int) {
	a.Engine, a.Grid, a.Name = engine, grid, name
	a.StepsPerFrame = max(1, min(stepsPerFrame, maxPerFrame))
	a.Running, a.Diverged, a.Err = true, false, nil
	a.Telemetry = a.Telemetry[:0]
	a.InMenu = false
}

func (a *App) loadPreset(name string) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		a.Err = fmt.Errorf("unknown preset %q", name)
		return
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(nil, nil); err != nil {
		a.Err = err
		return
	}
	a.attach(exp.Engine(), exp.GetSimulator().Grid(), cfg.Name, cfg.StepsPerFrame)
}

func (a *App) Update() {
	if a.InMenu {
		if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
			a.Selected = (a.Selected + 1) % len(a.Presets)
		}
		if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
			a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
		}
		if rl.IsKeyPressed(rl.KeyEnter) {
			a.loadPreset(a.Presets[a.Selected])
		}
		return
	}

	switch {
	case rl.IsKeyPressed(rl.KeyEscape) && len(a.Presets) > 0:
		a.InMenu = true
		return
	case rl.IsKeyPressed(rl.KeySpace):
		if !a.Diverged && a.Err == nil {
			a.Running = !a.Running
		}
	case rl.IsKeyPressed(rl.KeyR):
		a.reset()
	case rl.IsKeyPressed(rl.KeyV):
		a.ShowVectors = !a.ShowVectors
	case rl.IsKeyPressed(rl.KeyEqual):
		a.StepsPerFrame = min(a.StepsPerFrame*2, maxPerFrame)
	case rl.IsKeyPressed(rl.KeyMinus):
		a.StepsPerFrame = max(a.StepsPerFrame/2, 1)
	}

	if a.Running {
		a.step()
	}
}

func (a *App) step() {
	for i := 0; i < a.StepsPerFrame; i++ {
		if err := a.Engine.Advance(a.Grid); err != nil {
			a.Err, a.Running = err, false
			return
		}
	}
	snap := a.Grid.Snapshot()
	a.Telemetry = append(a.Telemetry, physics.Energy(snap))
	if len(a.Telemetry) > a.MaxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
	if peak := physics.PeakHeight(snap); !snap.IsFinite() || math.IsNaN(peak) || peak > experiment.DivergenceThreshold {
		a.Diverged, a.Running = true, false
	}
}

func (a *App) reset() {
	a.Err = a.Grid.Initialize(a.Engine.Params())
	a.Telemetry = a.Telemetry[:0]
	a.Diverged = false
	a.Running = a.Err == nil
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.RenderField()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	snap := a.Grid.Snapshot()
	a.drawText("swsim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Name), 120, 34, 16, ColText)

	p := a.Engine.Params()
	lines := []string{
		fmt.Sprintf("%.1f days", snap.Days()),
		fmt.Sprintf("step %d", snap.Step),
		fmt.Sprintf("peak %.3g", physics.PeakHeight(snap)),
		fmt.Sprintf("courant %.3g", p.Courant()),
		fmt.Sprintf("x%d / frame", a.StepsPerFrame),
		p.Rotation.String() + " / " + p.Wind.String(),
	}
	for i, l := range lines {
		a.drawText(l, 30, 90+i*24, 16, ColText)
	}

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	switch {
	case a.Err != nil:
		status, col = "ERROR", rl.Red
		a.drawText(a.Err.Error(), 30, 640, 14, rl.Red)
	case a.Diverged:
		status, col = "DIVERGED", rl.Red
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	a.drawText("[SPACE] PAUSE  [R] RESET  [V] VECTORS  [+/-] SPEED  [ESC] MENU  [Q] QUIT", 560, 690, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 690, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 560
	width, height := 260, 60

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range a.Telemetry {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.IsInf(minVal, 0) {
		return
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, 0, len(a.Telemetry))
	for i, val := range a.Telemetry {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			break
		}
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points = append(points, rl.NewVector2(px, py))
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX, rectY+height+8, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("swsim", 50, 50, 40, ColSelect)
	a.drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		if i == a.Selected {
			a.drawText(fmt.Sprintf("> %s", name), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %s", name), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.Err != nil {
		a.drawText(a.Err.Error(), 50, y+20, 14, rl.Red)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}
