package telemetry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
)

// Metrics accumulates the events of one trial. Each event type is an
// append-only sequence; every statistic is derived from the sequences when
// asked for. Metrics belongs to a single trial and is not safe for
// concurrent use.
type Metrics struct {
	Trial   int
	Seed    int64
	Habitat string
	Species string

	events map[EventType][]Event
}

// NewMetrics creates an empty recorder for one trial.
func NewMetrics(trial int, seed int64, habitat, species string) *Metrics {
	return &Metrics{
		Trial:   trial,
		Seed:    seed,
		Habitat: habitat,
		Species: species,
		events:  make(map[EventType][]Event),
	}
}

// Note appends an event to the sequence of its type.
func (m *Metrics) Note(e Event) {
	m.events[e.Type] = append(m.events[e.Type], e)
}

// RecordPopulation records the end-of-step population.
func (m *Metrics) RecordPopulation(step, population int) {
	m.Note(NewPopulationEvent(step, population))
}

// RecordBirth records one delivery.
func (m *Metrics) RecordBirth(step int) {
	m.Note(NewBirthEvent(step))
}

// RecordDeath records one death and its cause.
func (m *Metrics) RecordDeath(step int, cause components.Cause) {
	m.Note(NewDeathEvent(step, cause))
}

var _ systems.Recorder = (*Metrics)(nil)

// Events returns a copy of the sequence for one event type.
func (m *Metrics) Events(t EventType) []Event {
	src := m.events[t]
	out := make([]Event, len(src))
	copy(out, src)
	return out
}

// Steps returns the number of recorded steps.
func (m *Metrics) Steps() int {
	return len(m.events[EventPopulation])
}

// Births returns the number of deliveries.
func (m *Metrics) Births() int {
	return len(m.events[EventBirth])
}

// Deaths returns the number of deaths.
func (m *Metrics) Deaths() int {
	return len(m.events[EventDeath])
}

func (m *Metrics) populations() []float64 {
	samples := m.events[EventPopulation]
	out := make([]float64, len(samples))
	for i, e := range samples {
		out[i] = float64(e.Population)
	}
	return out
}

// AveragePopulation returns the mean end-of-step population, or NaN when no
// step was recorded.
func (m *Metrics) AveragePopulation() float64 {
	p := m.populations()
	if len(p) == 0 {
		return math.NaN()
	}
	return stat.Mean(p, nil)
}

// MaxPopulation returns the largest end-of-step population, or 0 when no
// step was recorded.
func (m *Metrics) MaxPopulation() int {
	p := m.populations()
	if len(p) == 0 {
		return 0
	}
	return int(floats.Max(p))
}

// MinPopulation returns the smallest end-of-step population, or 0 when no
// step was recorded.
func (m *Metrics) MinPopulation() int {
	p := m.populations()
	if len(p) == 0 {
		return 0
	}
	return int(floats.Min(p))
}

// FinalPopulation returns the population after the last recorded step.
func (m *Metrics) FinalPopulation() int {
	samples := m.events[EventPopulation]
	if len(samples) == 0 {
		return 0
	}
	return samples[len(samples)-1].Population
}

// PopulationStdDev returns the sample standard deviation of the population
// trajectory. Fewer than two samples yield 0.
func (m *Metrics) PopulationStdDev() float64 {
	p := m.populations()
	if len(p) < 2 {
		return 0
	}
	return stat.StdDev(p, nil)
}

// MedianPopulation returns the empirical median population, or NaN when no
// step was recorded.
func (m *Metrics) MedianPopulation() float64 {
	p := m.populations()
	if len(p) == 0 {
		return math.NaN()
	}
	sort.Float64s(p)
	return stat.Quantile(0.5, stat.Empirical, p, nil)
}

// MortalityRate returns deaths per birth. With no births the rate is
// undefined and NaN is returned.
func (m *Metrics) MortalityRate() float64 {
	births := m.Births()
	if births == 0 {
		return math.NaN()
	}
	return float64(m.Deaths()) / float64(births)
}

// CausesOfDeath returns the number of deaths per cause.
func (m *Metrics) CausesOfDeath() map[components.Cause]int {
	out := make(map[components.Cause]int)
	for _, e := range m.events[EventDeath] {
		out[e.Cause]++
	}
	return out
}

// ExtinctAt returns the first step after which no individual was alive.
func (m *Metrics) ExtinctAt() (int, bool) {
	for _, e := range m.events[EventPopulation] {
		if e.Population == 0 {
			return e.Step, true
		}
	}
	return 0, false
}

// StepStats is one row of a trial's population trajectory.
type StepStats struct {
	Trial      int    `csv:"trial" db:"trial"`
	Step       int    `csv:"step" db:"step"`
	Year       int    `csv:"year" db:"year"`
	Month      int    `csv:"month" db:"month"`
	Season     string `csv:"season" db:"season"`
	Population int    `csv:"population" db:"population"`
	Births     int    `csv:"births" db:"births"`
	Deaths     int    `csv:"deaths" db:"deaths"`
}

// Series returns the per-step trajectory with births and deaths bucketed
// by the step they occurred in.
func (m *Metrics) Series() []StepStats {
	births := make(map[int]int)
	for _, e := range m.events[EventBirth] {
		births[e.Step]++
	}
	deaths := make(map[int]int)
	for _, e := range m.events[EventDeath] {
		deaths[e.Step]++
	}

	samples := m.events[EventPopulation]
	out := make([]StepStats, len(samples))
	for i, e := range samples {
		tc := systems.TimeContext{Elapsed: e.Step * components.Month, Interval: components.Month}
		out[i] = StepStats{
			Trial:      m.Trial,
			Step:       e.Step,
			Year:       tc.Year(),
			Month:      tc.Month(),
			Season:     tc.Season().String(),
			Population: e.Population,
			Births:     births[e.Step],
			Deaths:     deaths[e.Step],
		}
	}
	return out
}
