// Package main searches for habitat capacities that sustain a species at a
// target average population, using Nelder-Mead over repeated seeded trials.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	MonthlyFood  int     `csv:"monthly_food"`
	MonthlyWater int     `csv:"monthly_water"`
	MeanAverage  float64 `csv:"mean_average_population"`
	Extinctions  int     `csv:"extinctions"`
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	speciesName := flag.String("species", "", "Species to calibrate for (empty = config default)")
	habitatName := flag.String("habitat", "", "Habitat to calibrate (empty = config default)")
	target := flag.Float64("target", 100, "Target average population")
	trials := flag.Int("trials", 3, "Trials per evaluation")
	seed := flag.Int64("seed", 42, "Base seed shared by every evaluation")
	workers := flag.Int("workers", 4, "Concurrent trials per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	logLevel := flag.String("log-level", "warn", "Log level for trial logs")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *target <= 0 {
		log.Fatal("--target must be positive")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid --log-level %q", *logLevel)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	habitatCfg, err := baseCfg.FindHabitat(*habitatName)
	if err != nil {
		log.Fatal(err)
	}
	base, err := game.NewTrialConfig(baseCfg, *speciesName, habitatCfg.Name)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	params := NewParamVector(habitatCfg)
	objective := NewObjective(params, base, *target, *trials, *seed, *workers)

	logFile, err := os.Create(filepath.Join(*outputDir, "calibrate_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	headerWritten := false
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness, err := objective.Evaluate(ctx, raw)
			if err != nil {
				slog.Warn("evaluation failed", "error", err)
			}
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append(bestParams[:0], raw...)
			}

			mean, ext := objective.Last()
			row := []evalRow{{
				Eval:         evalCount,
				Fitness:      fitness,
				MonthlyFood:  int(raw[0]),
				MonthlyWater: int(raw[1]),
				MeanAverage:  mean,
				Extinctions:  ext,
			}}
			if !headerWritten {
				err = gocsv.Marshal(row, logFile)
				headerWritten = true
			} else {
				err = gocsv.MarshalWithoutHeaders(row, logFile)
			}
			if err != nil {
				slog.Warn("failed to write log row", "error", err)
			}

			fmt.Printf("Eval %d/%d: food=%s water=%s avg=%.1f extinct=%d/%d fitness=%.4f (best=%.4f) | elapsed: %s\n",
				evalCount, *maxEvals,
				humanize.Comma(int64(raw[0])), humanize.Comma(int64(raw[1])),
				mean, ext, *trials, fitness, bestFitness,
				time.Since(startTime).Round(time.Second))
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	fmt.Printf("Calibrating %s for %s: target average population %.0f, %d trials per evaluation\n",
		habitatCfg.Name, base.Species.Name, *target, *trials)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, &optimize.NelderMead{})
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, time.Since(startTime).Round(time.Second))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %s\n", spec.Path, humanize.Comma(int64(bestParams[i])))
	}

	// Save a copy of the base config with the calibrated habitat
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	bestHabitat, err := bestCfg.FindHabitat(habitatCfg.Name)
	if err != nil {
		log.Fatal(err)
	}
	params.ApplyToHabitat(bestHabitat, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
