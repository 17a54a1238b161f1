// Package main provides CMA-ES optimization of the homing weights, minimising
// the mean angular error of the vector field.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/snaphome/config"
	"github.com/pthm-cable/snaphome/field"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/world"
)

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval              int     `csv:"eval"`
	Fitness           float64 `csv:"fitness"`
	FitnessDeg        float64 `csv:"fitness_deg"`
	TurningWeight     float64 `csv:"turning_weight"`
	PositioningWeight float64 `csv:"positioning_weight"`
	Failed            int     `csv:"failed"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// parseHomes reads "x,y x,y ..." into grid positions.
func parseHomes(s string) ([]geom.IVec, error) {
	var homes []geom.IVec
	for _, tok := range strings.Fields(s) {
		xs, ys, ok := strings.Cut(tok, ",")
		if !ok {
			return nil, fmt.Errorf("home %q: want x,y", tok)
		}
		x, err := strconv.Atoi(xs)
		if err != nil {
			return nil, fmt.Errorf("home %q: %w", tok, err)
		}
		y, err := strconv.Atoi(ys)
		if err != nil {
			return nil, fmt.Errorf("home %q: %w", tok, err)
		}
		homes = append(homes, geom.IVec{X: x, Y: y})
	}
	return homes, nil
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	population := flag.Int("population", -1, "CMA-ES population size (0 = auto, -1 = use config)")
	homesFlag := flag.String("homes", "", "Space-separated x,y home positions (empty = config home)")
	workers := flag.Int("workers", 0, "Field worker goroutines (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Create output directory
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Load base config
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	w, err := world.FromConfig(baseCfg.World)
	if err != nil {
		log.Fatalf("failed to build world: %v", err)
	}

	homes, err := parseHomes(*homesFlag)
	if err != nil {
		log.Fatalf("invalid -homes: %v", err)
	}
	if len(homes) == 0 {
		homes = []geom.IVec{{X: int(math.Round(baseCfg.Home.X)), Y: int(math.Round(baseCfg.Home.Y))}}
	}

	if *maxEvals <= 0 {
		*maxEvals = baseCfg.Optimize.MaxEvals
	}
	if *population < 0 {
		*population = baseCfg.Optimize.Population
	}
	if *workers <= 0 {
		*workers = baseCfg.Field.Workers
	}

	params := NewParamVector(baseCfg)
	evaluator := NewFitnessEvaluator(params, w, homes, baseCfg, field.Options{
		Workers:   *workers,
		ChunkRows: baseCfg.Field.ChunkRows,
	})

	// Set up CMA-ES
	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	// Create optimization problem
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Denormalize to get raw parameter values
			raw := params.Denormalize(x)
			return evaluator.Evaluate(raw)
		},
	}

	// CMA-ES settings
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; each field is already parallel
	}

	// Population size
	popSize := *population
	if popSize == 0 {
		// Auto-size: 4 + floor(3*ln(n))
		popSize = 4 + int(3*math.Log(float64(dim)))
	}

	method := &optimize.CmaEsChol{
		InitStepSize: baseCfg.Optimize.InitStepSize,
		Population:   popSize,
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	// Track evaluations and timing
	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		// Denormalize and clamp to get actual parameter values
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		summary := evaluator.LastSummary()
		rec := []EvalRecord{{
			Eval:              evalCount,
			Fitness:           fitness,
			FitnessDeg:        fitness * 180 / math.Pi,
			TurningWeight:     clamped[0],
			PositioningWeight: clamped[1],
			Failed:            summary.Failed,
		}}
		var werr error
		if evalCount == 1 {
			werr = gocsv.Marshal(rec, logFile)
		} else {
			werr = gocsv.MarshalWithoutHeaders(rec, logFile)
		}
		if werr != nil {
			log.Printf("failed to write log row: %v", werr)
		}

		// Calculate timing
		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: wt=%.3f wp=%.3f error=%.2f° (best=%.2f°) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, clamped[0], clamped[1],
			fitness*180/math.Pi, bestFitness*180/math.Pi,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	// Run optimization
	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Homes per evaluation: %d, cells per field: %d\n", len(homes), w.Grid().Len())

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best mean angular error: %.3f°\n", bestFitness*180/math.Pi)

	// Print best parameters
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	// Save best config
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
