// Interactive homing field viewer with weight sliders.
//
// Usage: go run ./cmd/viewer [-config path]
//
// Left click moves home, mouse wheel zooms, right drag pans, R resets the
// view, P writes a PNG and C copies the homing YAML to the clipboard.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/config"
	"github.com/pthm-cable/snaphome/field"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/homing"
	"github.com/pthm-cable/snaphome/obstacle"
	"github.com/pthm-cable/snaphome/render"
	"github.com/pthm-cable/snaphome/retina"
	"github.com/pthm-cable/snaphome/telemetry"
	"github.com/pthm-cable/snaphome/ui"
	"github.com/pthm-cable/snaphome/world"
)

const (
	panelWidth = 320
	minHeight  = 600
)

// viewer holds the interactive state.
type viewer struct {
	cfg    *config.Config
	world  *world.World
	layout render.Layout
	ui     *ui.Renderer

	params homing.Params
	home   geom.IVec
	bee    *homing.Bee
	field  *field.Field

	perf       *telemetry.PerfCollector
	status     string
	needsRegen bool
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	w, err := world.FromConfig(cfg.World)
	if err != nil {
		slog.Error("failed to build world", "error", err)
		os.Exit(1)
	}

	v := &viewer{
		cfg:        cfg,
		world:      w,
		layout:     render.NewLayout(w.Grid(), cfg.Render.CellPixels, cfg.Render.Margin),
		ui:         ui.NewRenderer(),
		perf:       telemetry.NewPerfCollector(16),
		params:     homing.ParamsFromConfig(cfg.Homing),
		home:       geom.IVec{X: int(math.Round(cfg.Home.X)), Y: int(math.Round(cfg.Home.Y))},
		needsRegen: true,
	}

	rl.InitWindow(int32(v.layout.Width+panelWidth), int32(max(v.layout.Height, minHeight)), "Snapshot Homing")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	for !rl.WindowShouldClose() {
		v.handleInput()
		if v.needsRegen {
			v.regenerate()
			v.needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		v.drawField()
		v.drawPanel()
		rl.EndDrawing()
	}
}

// regenerate retakes the snapshot and recomputes the field. A home inside an
// obstacle keeps the previous field.
func (v *viewer) regenerate() {
	v.perf.StartRun()
	defer v.perf.EndRun()

	v.perf.StartPhase(telemetry.PhaseSnapshot)
	bee, err := homing.NewBee(v.home, v.world.Occluders(), v.params)
	if err != nil {
		v.status = err.Error()
		return
	}
	v.perf.StartPhase(telemetry.PhaseField)
	f, err := field.Generate(bee, v.world, field.Options{
		Workers:   v.cfg.Field.Workers,
		ChunkRows: v.cfg.Field.ChunkRows,
	})
	if err != nil {
		v.status = err.Error()
		return
	}
	v.bee, v.field = bee, f
	v.status = ""
}

func (v *viewer) handleInput() {
	cam := v.layout.Camera
	mouse := rl.GetMousePosition()
	inField := mouse.X < float32(v.layout.Width)

	if inField && rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		p := cam.ScreenToWorld(r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)})
		cell := geom.IVec{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
		if v.world.Grid().Contains(cell) && cell != v.home {
			v.home = cell
			v.needsRegen = true
		}
	}
	if inField && rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		cam.Pan(-float64(d.X), -float64(d.Y))
	}
	if wheel := rl.GetMouseWheelMove(); inField && wheel != 0 {
		cam.ZoomBy(math.Pow(1.1, float64(wheel)))
	}

	if rl.IsKeyPressed(rl.KeyR) {
		cam.Reset()
	}
	if rl.IsKeyPressed(rl.KeyP) && v.field != nil {
		path := v.cfg.Render.Output
		if err := render.WritePNG(path, v.field, v.world.Obstacles(), render.Options{
			CellPixels: v.cfg.Render.CellPixels,
			Margin:     v.cfg.Render.Margin,
			Caption:    v.cfg.Render.Caption,
		}); err != nil {
			v.status = err.Error()
		} else {
			v.status = "wrote " + path
		}
	}
	if rl.IsKeyPressed(rl.KeyC) {
		rl.SetClipboardText(v.homingYAML())
	}
}

func (v *viewer) homingYAML() string {
	return fmt.Sprintf(`home:
  x: %d
  y: %d
homing:
  turning_weight: %.3f
  positioning_weight: %.3f
  turning_sign: %.0f`,
		v.home.X, v.home.Y, v.params.TurningWeight, v.params.PositioningWeight, v.params.TurningSign)
}

func (v *viewer) drawField() {
	cam := v.layout.Camera
	rl.BeginScissorMode(0, 0, int32(v.layout.Width), int32(rl.GetScreenHeight()))
	defer rl.EndScissorMode()

	for _, o := range v.world.Obstacles() {
		switch s := o.Occluder.(type) {
		case obstacle.Circle:
			c := cam.WorldToScreen(s.Center)
			rl.DrawCircleV(vec(c), float32(s.Radius*cam.Zoom), render.ColorObstacle)
		case *obstacle.Polygon:
			pts := make([]r2.Vec, 0, len(s.Vertices()))
			for _, p := range s.Vertices() {
				pts = append(pts, cam.WorldToScreen(p))
			}
			for _, t := range render.Fan(pts) {
				drawTriangle(t, render.ColorObstacle)
			}
		}
	}

	if v.field != nil {
		v.drawSnapshot()
		length := 0.85 * cam.Zoom
		for _, c := range v.field.Cells {
			center := cam.WorldToScreen(c.Position.Vec())
			if !cam.IsVisible(c.Position.Vec(), 1) {
				continue
			}
			switch c.Status {
			case field.StatusEvaluated:
				if geom.IsZero(c.Vector) {
					continue
				}
				for _, t := range render.ArrowTriangles(render.Arrow(center, c.Vector, length)) {
					drawTriangle(t, render.ColorArrow)
				}
			case field.StatusSkipped:
				rl.DrawCircleV(vec(center), 2, render.ColorSkipped)
			case field.StatusFailed:
				rl.DrawCircleLinesV(vec(center), 4, render.ColorFailed)
			}
		}
	}

	h := cam.WorldToScreen(v.home.Vec())
	d := float32(0.3 * cam.Zoom)
	rl.DrawLineEx(rl.Vector2{X: float32(h.X) - d, Y: float32(h.Y) - d}, rl.Vector2{X: float32(h.X) + d, Y: float32(h.Y) + d}, 2, render.ColorHome)
	rl.DrawLineEx(rl.Vector2{X: float32(h.X) - d, Y: float32(h.Y) + d}, rl.Vector2{X: float32(h.X) + d, Y: float32(h.Y) - d}, 2, render.ColorHome)
}

// drawSnapshot draws the occluded arcs of the snapshot as a ring around home.
func (v *viewer) drawSnapshot() {
	cam := v.layout.Camera
	c := vec(cam.WorldToScreen(v.bee.HomePosition().Vec()))
	inner, outer := float32(0.45*cam.Zoom), float32(0.55*cam.Zoom)
	for _, s := range v.bee.Snapshot().Segments {
		if s.Color != retina.Occluded {
			continue
		}
		// Screen angles run clockwise because y points down.
		start := -float32(degrees(s.End()))
		end := -float32(degrees(s.Start()))
		rl.DrawRing(c, inner, outer, start, end, 24, render.ColorFailed)
	}
}

var summarySections = []ui.SectionDescriptor{
	{
		Title: "Field",
		Fields: []ui.FieldDescriptor{
			{Label: "Cells", Widget: ui.WidgetText, Format: "%.0f", Getter: func(d any) float64 { return float64(d.(*field.Field).Summary.Cells) }},
			{Label: "Skipped", Widget: ui.WidgetText, Format: "%.0f", Getter: func(d any) float64 { return float64(d.(*field.Field).Summary.Skipped) }},
			{Label: "Failed", Widget: ui.WidgetText, Format: "%.0f", Getter: func(d any) float64 { return float64(d.(*field.Field).Summary.Failed) }},
			{Widget: ui.WidgetSpacer},
			{Label: "Measured", Widget: ui.WidgetBar, Range: ui.DefaultRange(), Getter: func(d any) float64 { return d.(*field.Field).Summary.Coverage() }},
		},
	},
	{
		Title:   "Angular error",
		Visible: func(d any) bool { return d.(*field.Field).Summary.Measured > 0 },
		Fields: []ui.FieldDescriptor{
			{Label: "Mean", Widget: ui.WidgetBar, Range: ui.FieldRange{Min: 0, Max: 180}, Getter: func(d any) float64 { return degrees(d.(*field.Field).Summary.MeanAngularError) }},
			{Label: "Std dev", Widget: ui.WidgetBar, Range: ui.FieldRange{Min: 0, Max: 180}, Getter: func(d any) float64 { return degrees(d.(*field.Field).Summary.StdAngularError) }},
		},
	},
}

func (v *viewer) drawPanel() {
	r := v.ui
	x := int32(v.layout.Width)
	height := int32(rl.GetScreenHeight())
	r.DrawPanel(x, 0, panelWidth, height)

	x += r.Theme.Padding
	width := int32(panelWidth) - 2*r.Theme.Padding
	y := r.Theme.Padding

	y = r.DrawSectionHeader(x, y, "Homing weights")

	opt := v.cfg.Optimize
	var changed bool
	v.params.TurningWeight, changed, y = r.Slider(x, y, width, "Turning weight", v.params.TurningWeight, opt.TurningWeight.Min, opt.TurningWeight.Max)
	v.needsRegen = v.needsRegen || changed
	v.params.PositioningWeight, changed, y = r.Slider(x, y, width, "Positioning weight", v.params.PositioningWeight, opt.PositioningWeight.Min, opt.PositioningWeight.Max)
	v.needsRegen = v.needsRegen || changed

	sign := "Turning sign: +1"
	if v.params.TurningSign < 0 {
		sign = "Turning sign: -1"
	}
	if r.Button(x, y, 140, sign) {
		v.params.TurningSign = -v.params.TurningSign
		v.needsRegen = true
	}
	if r.Button(x+150, y, 140, "Reset weights") {
		v.params = homing.ParamsFromConfig(v.cfg.Homing)
		v.needsRegen = true
	}
	y += 40

	y = r.DrawLabelValue(x, y, "Home", v.home.String())
	y += 6

	if v.field != nil {
		for _, sd := range summarySections {
			y = r.DrawSection(x, y, sd, v.field, width)
		}
	}

	perf := v.perf.Stats()
	y = r.DrawLabelValue(x, y, "Field time", perf.PhaseAvg[telemetry.PhaseField].Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", rl.GetFPS()))

	if v.status != "" {
		rl.DrawText(v.status, x, y+6, r.Theme.FontSize, render.ColorFailed)
	}

	rl.DrawText("Click: move home  Wheel/right drag: view", x, height-44, 12, rl.Gray)
	rl.DrawText("R: reset view  P: write PNG  C: copy YAML", x, height-26, 12, rl.Gray)
}

func drawTriangle(t [3]r2.Vec, col rl.Color) {
	t = render.CounterClockwise(t)
	rl.DrawTriangle(vec(t[0]), vec(t[1]), vec(t[2]), col)
}

func vec(v r2.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(v.X), Y: float32(v.Y)}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
