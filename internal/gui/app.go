package gui

import (
	"fmt"
	"log"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/sim"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
)

const (
	screenW      = 1280
	screenH      = 720
	telemetryLen = 200
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

var effectKeys = []struct {
	key    int32
	effect emitter.Effect
}{
	{rl.KeyOne, emitter.Hover},
	{rl.KeyTwo, emitter.Click},
	{rl.KeyThree, emitter.Success},
	{rl.KeyFour, emitter.Navigation},
	{rl.KeyFive, emitter.Error},
	{rl.KeySix, emitter.Toggle},
}

type App struct {
	Eng        *sim.Engine
	Cfg        *config.Config
	PresetName string
	Camera     rl.Camera3D
	Running    bool
	InMenu     bool
	InConfig   bool
	Presets    []string
	Selected   int
	ParamKeys  []string
	ParamSel   int
	Telemetry  []float64
	Font       rl.Font
	ShowBounds bool

	Flags      emitter.Flags
	Brush      emitter.Effect
	SinceBurst float64

	CamPosTarget rl.Vector3
	CamTgtTarget rl.Vector3
	CursorViz    rl.Vector3

	ParticleTex rl.Texture2D
	fontLoaded  bool
}

func initWindow() {
	rl.InitWindow(screenW, screenH, "particlefx")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() (rl.Font, bool) {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault(), false
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font, true
}

// NewApp creates a window-backed viewer. With a nil cfg it starts in the
// preset menu; otherwise it runs cfg straight away.
func NewApp(cfg *config.Config) *App {
	font, loaded := loadFont()
	app := &App{
		Presets:    config.ListPresets(),
		Font:       font,
		fontLoaded: loaded,
		InMenu:     cfg == nil,
		Telemetry:  make([]float64, 0, telemetryLen),
		ShowBounds: true,
	}

	img := rl.GenImageGradientRadial(32, 32, 0.0, rl.White, rl.NewColor(0, 0, 0, 0))
	app.ParticleTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	if cfg != nil {
		if err := app.load("custom", cfg); err != nil {
			log.Printf("gui: %v", err)
			app.InMenu = true
		}
	}
	return app
}

// Run opens the viewer on cfg, or on the preset menu when cfg is nil, and
// blocks until the window closes.
func Run(cfg *config.Config) {
	initWindow()
	defer rl.CloseWindow()
	app := NewApp(cfg)
	defer app.unload()
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) unload() {
	rl.UnloadTexture(a.ParticleTex)
	if a.fontLoaded {
		rl.UnloadFont(a.Font)
	}
}

func (a *App) load(name string, cfg *config.Config) error {
	eng, err := cfg.NewEngine(sim.WithLogger(log.New(os.Stderr, "engine: ", log.LstdFlags)))
	if err != nil {
		return err
	}
	a.Eng, a.Cfg, a.PresetName = eng, cfg, name
	a.Flags, a.Brush = cfg.Flags, cfg.Effect
	a.SinceBurst = cfg.Interval
	a.ParamKeys = sim.ParamNames()
	a.ParamSel = 0
	a.Telemetry = a.Telemetry[:0]

	b := eng.Bounds()
	size := b.Size()
	center := toVec(b.Center())
	a.Camera = rl.NewCamera3D(
		rl.NewVector3(center.X, center.Y, center.Z+float32(2*max(size[0], size[1], size[2]))),
		center,
		rl.NewVector3(0, 1, 0),
		45.0,
		rl.CameraPerspective,
	)
	a.CamPosTarget = a.Camera.Position
	a.CamTgtTarget = a.Camera.Target
	a.InMenu = false
	return nil
}

// Update processes input and advances the engine by one frame. It reports
// false once the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if a.InMenu {
		a.updateMenu()
		return true
	}
	if a.InConfig {
		a.updateConfig()
		return true
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		a.Running = false
		return true
	}

	for _, ek := range effectKeys {
		if rl.IsKeyPressed(ek.key) {
			a.Brush = ek.effect
			a.Eng.Trigger(ek.effect, a.Cfg.Intensity, a.Flags)
		}
	}

	a.updateCursor()

	if a.Running {
		dt := float64(rl.GetFrameTime())
		if a.Cfg.Interval > 0 {
			a.SinceBurst += dt
			if a.SinceBurst >= a.Cfg.Interval {
				a.SinceBurst = 0
				a.Eng.Trigger(a.Cfg.Effect, a.Cfg.Intensity, a.Flags)
			}
		}
		a.Eng.Advance(dt)
		a.Telemetry = append(a.Telemetry, float64(a.Eng.Len()))
		if len(a.Telemetry) > telemetryLen {
			a.Telemetry = a.Telemetry[1:]
		}
	}

	a.updateCamera()

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyC):
		a.Eng.Clear()
	case rl.IsKeyPressed(rl.KeyB):
		a.ShowBounds = !a.ShowBounds
	case rl.IsKeyPressed(rl.KeyO):
		a.Flags.Collisions = !a.Flags.Collisions
	case rl.IsKeyPressed(rl.KeyN):
		a.Flags.Magnetism = !a.Flags.Magnetism
	case rl.IsKeyPressed(rl.KeyR):
		if err := a.load(a.PresetName, a.Cfg); err != nil {
			log.Printf("gui: reset: %v", err)
		}
		a.Running = true
	}
	return true
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected++
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected--
	}
	if a.Selected >= len(a.Presets) {
		a.Selected = 0
	}
	if a.Selected < 0 {
		a.Selected = len(a.Presets) - 1
	}

	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		name := a.Presets[a.Selected]
		cfg, err := config.GetPreset(name)
		if err == nil {
			err = a.load(name, cfg)
		}
		if err != nil {
			log.Printf("gui: preset %s: %v", name, err)
			return
		}
		a.InConfig = true
		a.Running = false
	}
}

func (a *App) updateConfig() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		a.InConfig = false
		return
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		a.InConfig = false
		a.Running = true
		return
	}

	n := len(a.ParamKeys)
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.ParamSel = (a.ParamSel + 1) % n
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.ParamSel = (a.ParamSel - 1 + n) % n
	}

	factor := 1.05
	if rl.IsKeyDown(rl.KeyLeftShift) {
		factor = 1.5
	}
	var scale float64
	switch {
	case rl.IsKeyPressed(rl.KeyRight) || rl.IsKeyPressed(rl.KeyL):
		scale = factor
	case rl.IsKeyPressed(rl.KeyLeft) || rl.IsKeyPressed(rl.KeyH):
		scale = 1 / factor
	default:
		return
	}
	key := a.ParamKeys[a.ParamSel]
	p := a.Eng.GetParams()
	v, _ := p.Get(key)
	if v == 0 {
		v = 0.001 * scale
	} else {
		v *= scale
	}
	if err := a.Eng.SetParam(key, v); err != nil {
		log.Printf("gui: %v", err)
		return
	}
	a.Cfg.Params = a.Eng.GetParams()
}

// updateCursor casts the mouse ray onto the plane through the bounds centre
// and fires the current brush where it lands.
func (a *App) updateCursor() {
	a.CursorViz.Z = 0
	b := a.Eng.Bounds()
	center := b.Center()
	ray := rl.GetMouseRay(rl.GetMousePosition(), a.Camera)
	if ray.Direction.Z == 0 {
		return
	}
	t := (float32(center[2]) - ray.Position.Z) / ray.Direction.Z
	if t <= 0 {
		return
	}
	hit := dynamo.Vec3{
		float64(ray.Position.X + t*ray.Direction.X),
		float64(ray.Position.Y + t*ray.Direction.Y),
		center[2],
	}
	if !b.Contains(hit, 0, 0) {
		return
	}
	a.CursorViz = rl.NewVector3(float32(hit[0]), float32(hit[1]), 1)
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		a.Eng.TriggerAt(a.Brush, a.Cfg.Intensity, hit, a.Flags)
	}
}

func (a *App) updateCamera() {
	step := float32(0.05)
	if rl.IsKeyDown(rl.KeyW) {
		a.CamPosTarget.Y += step
	}
	if rl.IsKeyDown(rl.KeyS) {
		a.CamPosTarget.Y -= step
	}
	if rl.IsKeyDown(rl.KeyA) {
		a.CamPosTarget.X -= step
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.CamPosTarget.X += step
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.CamPosTarget.X -= delta.X * 0.02
		a.CamPosTarget.Y += delta.Y * 0.02
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		zoom := wheel * 0.5
		diff := rl.Vector3Subtract(a.CamTgtTarget, a.CamPosTarget)
		if rl.Vector3Length(diff) > 1.0 || zoom < 0 {
			a.CamPosTarget = rl.Vector3Add(a.CamPosTarget, rl.Vector3Scale(rl.Vector3Normalize(diff), zoom))
		}
	}

	lerp := min(5.0*rl.GetFrameTime(), 1)
	a.Camera.Position = rl.Vector3Lerp(a.Camera.Position, a.CamPosTarget, lerp)
	a.Camera.Target = rl.Vector3Lerp(a.Camera.Target, a.CamTgtTarget, lerp)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	switch {
	case a.InMenu:
		a.drawMenu()
	case a.InConfig:
		a.drawConfig()
	default:
		a.drawSim()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("particlefx", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.PresetName), 190, 34, 16, ColText)

	a.DrawTelemetry()

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	stats := a.Eng.LastStats()
	a.drawText(fmt.Sprintf("brush %-10s particles %4d  pairs %4d  hits %3d  sparks %3d",
		a.Brush, a.Eng.Len(), stats.Pairs, stats.Collisions, stats.Sparks), 30, 70, 14, ColAccent)
	a.drawText(fmt.Sprintf("collisions %v  magnetism %v", a.Flags.Collisions, a.Flags.Magnetism), 30, 92, 14, ColText)

	a.drawText("[1-6] EFFECT  [CLICK] FIRE  [SPACE] PAUSE  [C] CLEAR  [R] RESET  [ESC] MENU  [Q] QUIT", 420, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawSim() {
	rl.BeginMode3D(a.Camera)
	if a.ShowBounds {
		a.RenderBounds()
	}
	a.RenderParticles()

	if a.CursorViz.Z > 0 {
		pos := rl.NewVector3(a.CursorViz.X, a.CursorViz.Y, float32(a.Eng.Bounds().Center()[2]))
		rl.DrawCircle3D(pos, 0.1, rl.NewVector3(0, 0, 1), 0, rl.NewColor(255, 255, 255, 100))
		rl.DrawCircle3D(pos, 0.2, rl.NewVector3(0, 0, 1), 0, rl.NewColor(255, 255, 255, 50))
	}
	rl.EndMode3D()
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("N: %.0f", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("particlefx", 50, 50, 40, ColSelect)
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

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}

func (a *App) drawConfig() {
	a.drawText("particlefx", 50, 50, 40, ColTextDim)
	a.drawText("configure", 300, 65, 20, ColSelect)
	a.drawText(fmt.Sprintf("Preset: %s  effect %s x%.2f", a.PresetName, a.Cfg.Effect, a.Cfg.Intensity), 50, 110, 16, ColAccent)

	p := a.Eng.GetParams()
	y := 160
	for i, key := range a.ParamKeys {
		val, _ := p.Get(key)
		if i == a.ParamSel {
			a.drawText(fmt.Sprintf("> %-18s %.4g", key, val), 50, y, 18, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %-18s %.4g", key, val), 50, y, 18, ColText)
		}
		y += 26
	}

	a.drawText("ARROWS: ADJUST  ENTER: RUN  ESC: BACK", 880, 680, 14, ColTextDim)
}
