package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
)

// Summary aggregates the snapshots of several trials for display.
// Trial results themselves stay separate; the summary is derived from them.
type Summary struct {
	Trials      int
	Extinctions int

	MeanAveragePopulation float64
	StdAveragePopulation  float64
	MeanMaxPopulation     float64
	PeakPopulation        int

	Deaths        int
	Births        int
	MortalityRate float64 // pooled deaths / pooled births, NaN without births

	Causes map[components.Cause]int
}

// Summarize aggregates trial snapshots. Trials that recorded no step are
// left out of the population means.
func Summarize(snaps []Snapshot) Summary {
	sum := Summary{
		Trials: len(snaps),
		Causes: make(map[components.Cause]int),
	}

	var avgs, maxes []float64
	for _, s := range snaps {
		if s.Extinct() {
			sum.Extinctions++
		}
		if s.Steps > 0 {
			avgs = append(avgs, s.AveragePopulation)
			maxes = append(maxes, float64(s.MaxPopulation))
		}
		if s.MaxPopulation > sum.PeakPopulation {
			sum.PeakPopulation = s.MaxPopulation
		}
		sum.Deaths += s.Deaths
		sum.Births += s.Births
		for c, n := range s.Causes {
			sum.Causes[c] += n
		}
	}

	sum.MeanAveragePopulation = math.NaN()
	sum.MeanMaxPopulation = math.NaN()
	if len(avgs) > 0 {
		sum.MeanAveragePopulation = stat.Mean(avgs, nil)
		sum.MeanMaxPopulation = stat.Mean(maxes, nil)
	}
	if len(avgs) > 1 {
		sum.StdAveragePopulation = stat.StdDev(avgs, nil)
	}

	sum.MortalityRate = math.NaN()
	if sum.Births > 0 {
		sum.MortalityRate = float64(sum.Deaths) / float64(sum.Births)
	}

	return sum
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("trials", s.Trials),
		slog.Int("extinctions", s.Extinctions),
		slog.Float64("mean_average_population", s.MeanAveragePopulation),
		slog.Float64("std_average_population", s.StdAveragePopulation),
		slog.Float64("mean_max_population", s.MeanMaxPopulation),
		slog.Int("peak_population", s.PeakPopulation),
		slog.Int("deaths", s.Deaths),
		slog.Int("births", s.Births),
		slog.String("mortality_rate", FormatRate(s.MortalityRate)),
	}
	for _, c := range components.Causes {
		attrs = append(attrs, slog.Int("died_of_"+c.String(), s.Causes[c]))
	}
	return slog.GroupValue(attrs...)
}
