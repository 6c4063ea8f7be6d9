package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/pthm-cable/ecosim/components"
)

// Snapshot is the structured report of one completed trial.
type Snapshot struct {
	Trial   int    `csv:"trial" json:"trial" db:"trial"`
	Seed    int64  `csv:"seed" json:"seed" db:"seed"`
	Habitat string `csv:"habitat" json:"habitat" db:"habitat"`
	Species string `csv:"species" json:"species" db:"species"`
	Steps   int    `csv:"steps" json:"steps" db:"steps"`

	AveragePopulation float64 `csv:"average_population" json:"average_population" db:"-"`
	MaxPopulation     int     `csv:"max_population" json:"max_population" db:"max_population"`
	MinPopulation     int     `csv:"min_population" json:"min_population" db:"min_population"`
	FinalPopulation   int     `csv:"final_population" json:"final_population" db:"final_population"`
	PopulationStdDev  float64 `csv:"population_stddev" json:"population_stddev" db:"population_stddev"`

	Deaths        int     `csv:"deaths" json:"deaths" db:"deaths"`
	Births        int     `csv:"births" json:"births" db:"births"`
	MortalityRate float64 `csv:"mortality_rate" json:"-" db:"-"`

	// Flattened cause histogram for tabular output
	DeathsByAge        int `csv:"deaths_age" json:"-" db:"deaths_age"`
	DeathsByExposure   int `csv:"deaths_exposure" json:"-" db:"deaths_exposure"`
	DeathsByThirst     int `csv:"deaths_thirst" json:"-" db:"deaths_thirst"`
	DeathsByStarvation int `csv:"deaths_starvation" json:"-" db:"deaths_starvation"`

	Causes map[components.Cause]int `csv:"-" json:"causes_of_death" db:"-"`

	ExtinctStep int `csv:"extinct_step" json:"extinct_step" db:"extinct_step"` // -1 when the population survived
}

// Snapshot computes the report of the trial from its recorded events.
func (m *Metrics) Snapshot() Snapshot {
	causes := m.CausesOfDeath()
	extinct := -1
	if step, ok := m.ExtinctAt(); ok {
		extinct = step
	}

	return Snapshot{
		Trial:   m.Trial,
		Seed:    m.Seed,
		Habitat: m.Habitat,
		Species: m.Species,
		Steps:   m.Steps(),

		AveragePopulation: m.AveragePopulation(),
		MaxPopulation:     m.MaxPopulation(),
		MinPopulation:     m.MinPopulation(),
		FinalPopulation:   m.FinalPopulation(),
		PopulationStdDev:  m.PopulationStdDev(),

		Deaths:        m.Deaths(),
		Births:        m.Births(),
		MortalityRate: m.MortalityRate(),

		DeathsByAge:        causes[components.CauseAge],
		DeathsByExposure:   causes[components.CauseExposure],
		DeathsByThirst:     causes[components.CauseThirst],
		DeathsByStarvation: causes[components.CauseStarvation],

		Causes:      causes,
		ExtinctStep: extinct,
	}
}

// Extinct reports whether the population died out during the trial.
func (s Snapshot) Extinct() bool { return s.ExtinctStep >= 0 }

// MarshalJSON encodes undefined rates as null instead of failing on NaN.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		MortalityRate     *float64 `json:"mortality_rate"`
		AveragePopulation *float64 `json:"average_population"`
	}{
		plain:             plain(s),
		MortalityRate:     finiteOrNil(s.MortalityRate),
		AveragePopulation: finiteOrNil(s.AveragePopulation),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// LogValue implements slog.LogValuer for structured logging.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("trial", s.Trial),
		slog.Int64("seed", s.Seed),
		slog.String("habitat", s.Habitat),
		slog.String("species", s.Species),
		slog.Int("steps", s.Steps),
		slog.Float64("average_population", s.AveragePopulation),
		slog.Int("max_population", s.MaxPopulation),
		slog.Int("final_population", s.FinalPopulation),
		slog.Int("deaths", s.Deaths),
		slog.Int("births", s.Births),
		slog.String("mortality_rate", FormatRate(s.MortalityRate)),
	}
	for _, c := range components.Causes {
		attrs = append(attrs, slog.Int("died_of_"+c.String(), s.Causes[c]))
	}
	if s.Extinct() {
		attrs = append(attrs, slog.Int("extinct_step", s.ExtinctStep))
	}
	return slog.GroupValue(attrs...)
}

// FormatRate renders a ratio as a percentage, or "n/a" when undefined.
func FormatRate(r float64) string {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", r*100)
}

// WriteSnapshots saves trial reports as indented JSON.
func WriteSnapshots(path string, snaps []Snapshot) error {
	data, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshots: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshots: %w", err)
	}
	return nil
}
