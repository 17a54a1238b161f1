package main

import (
	"flag"
	"log/slog"
	"math"
	"os"

	"github.com/pthm-cable/snaphome/config"
	"github.com/pthm-cable/snaphome/field"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/homing"
	"github.com/pthm-cable/snaphome/render"
	"github.com/pthm-cable/snaphome/retina"
	"github.com/pthm-cable/snaphome/telemetry"
	"github.com/pthm-cable/snaphome/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	output := flag.String("output", "", "PNG output path (empty = use config, \"-\" = no image)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if err := run(cfg, *output, *outputDir, *workers); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, output, outputDir string, workers int) error {
	perf := telemetry.NewPerfCollector(1)
	perf.StartRun()
	defer func() {
		perf.EndRun()
		slog.Info("perf", "stats", perf.Stats())
	}()

	perf.StartPhase(telemetry.PhaseWorld)
	w, err := world.FromConfig(cfg.World)
	if err != nil {
		return err
	}

	perf.StartPhase(telemetry.PhaseSnapshot)
	home := geom.IVec{X: int(math.Round(cfg.Home.X)), Y: int(math.Round(cfg.Home.Y))}
	bee, err := homing.NewBee(home, w.Occluders(), homing.ParamsFromConfig(cfg.Homing))
	if err != nil {
		return err
	}
	snapshot := bee.Snapshot()
	slog.Info("snapshot taken",
		"home", home.String(),
		"obstacles", w.Len(),
		"occluded", snapshot.Count(retina.Occluded),
		"segments", len(snapshot.Segments),
	)

	if workers <= 0 {
		workers = cfg.Field.Workers
	}
	perf.StartPhase(telemetry.PhaseField)
	f, err := field.Generate(bee, w, field.Options{
		Workers:   workers,
		ChunkRows: cfg.Field.ChunkRows,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}
	s := f.Summary
	attrs := []any{
		"run_id", s.RunID,
		"cells", s.Cells,
		"evaluated", s.Evaluated,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"grid_mean_error_deg", s.GridMeanAngularError*180/math.Pi,
	}
	// JSON has no NaN.
	if s.Measured > 0 {
		attrs = append(attrs,
			"mean_error_deg", s.MeanAngularError*180/math.Pi,
			"std_error_deg", s.StdAngularError*180/math.Pi,
		)
	}
	slog.Info("field generated", attrs...)

	perf.StartPhase(telemetry.PhaseOutput)
	om, err := field.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}
	if err := om.WriteField(f); err != nil {
		return err
	}
	if om != nil {
		slog.Info("wrote csv output", "dir", om.Dir())
	}

	if output == "" {
		output = cfg.Render.Output
	}
	if output == "" || output == "-" {
		return nil
	}
	perf.StartPhase(telemetry.PhaseRender)
	if err := render.WritePNG(output, f, w.Obstacles(), render.Options{
		CellPixels: cfg.Render.CellPixels,
		Margin:     cfg.Render.Margin,
		Caption:    cfg.Render.Caption,
	}); err != nil {
		return err
	}
	slog.Info("wrote image", "path", output)
	return nil
}
