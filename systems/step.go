package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
)

// BreedingOverrideChance is the probability that mating proceeds even though
// the habitat is depleted.
const BreedingOverrideChance = 0.005

// Step phases reported to a PhaseTimer.
const (
	PhaseIndividuals = "individuals"
	PhaseMating      = "mating"
	PhaseDelivery    = "delivery"
)

// PhaseTimer receives the phase boundaries of each step.
type PhaseTimer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// Recorder receives the outcomes of each step.
type Recorder interface {
	RecordDeath(step int, cause components.Cause)
	RecordBirth(step int)
	RecordPopulation(step int, population int)
}

// StepResult summarises one step.
type StepResult struct {
	Step             int
	PopulationBefore int
	PopulationAfter  int
	Deaths           map[components.Cause]int
	Births           int
	Matings          int
	Food             int // food left after consumption
	Water            int // water left after consumption
}

// TotalDeaths returns the number of deaths across all causes.
func (r StepResult) TotalDeaths() int {
	n := 0
	for _, c := range r.Deaths {
		n += c
	}
	return n
}

// LogValue implements slog.LogValuer for structured logging.
func (r StepResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", r.Step),
		slog.Int("population_before", r.PopulationBefore),
		slog.Int("population_after", r.PopulationAfter),
		slog.Int("deaths", r.TotalDeaths()),
		slog.Int("births", r.Births),
		slog.Int("matings", r.Matings),
		slog.Int("food", r.Food),
		slog.Int("water", r.Water),
	)
}

// Processor applies the per-step rule pass to a habitat.
type Processor struct {
	rng      *rand.Rand
	recorder Recorder

	// OverrideChance is the probability of breeding under depletion.
	OverrideChance float64

	// Timer, when set, is told where each step phase begins.
	Timer PhaseTimer
}

// NewProcessor creates a processor drawing randomness from rng and reporting
// outcomes to recorder.
func NewProcessor(rng *rand.Rand, recorder Recorder) *Processor {
	return &Processor{
		rng:            rng,
		recorder:       recorder,
		OverrideChance: BreedingOverrideChance,
	}
}

// Step runs one step against h at time tc. An error means a rule was
// applied to an individual it does not fit and the trial cannot continue.
func (p *Processor) Step(h *Habitat, tc TimeContext) (StepResult, error) {
	step := tc.Step()
	res := StepResult{
		Step:             step,
		PopulationBefore: h.Population(),
		Deaths:           make(map[components.Cause]int),
	}

	if p.Timer != nil {
		p.Timer.StartTick()
		defer p.Timer.EndTick()
	}

	h.SetTime(tc)
	h.Refresh()

	p.startPhase(PhaseIndividuals)
	p.updateIndividuals(h, tc, &res)

	p.startPhase(PhaseMating)
	if err := p.updateMating(h, &res); err != nil {
		return res, fmt.Errorf("step %d mating: %w", step, err)
	}
	p.startPhase(PhaseDelivery)
	if err := p.updateDelivery(h, step, &res); err != nil {
		return res, fmt.Errorf("step %d delivery: %w", step, err)
	}

	res.PopulationAfter = h.Population()
	res.Food = h.Food()
	res.Water = h.Water()
	p.recorder.RecordPopulation(step, res.PopulationAfter)

	return res, nil
}

func (p *Processor) startPhase(phase string) {
	if p.Timer != nil {
		p.Timer.StartPhase(phase)
	}
}

// updateIndividuals applies consumption, exposure, aging and the death rules
// to every individual in a fresh random order.
func (p *Processor) updateIndividuals(h *Habitat, tc TimeContext, res *StepResult) {
	interval := tc.Interval

	for _, ind := range h.Shuffled() {
		if !ind.ConsumeFoodFrom(h) {
			ind.AccrueStarvation(interval)
		}
		if !ind.ConsumeWaterFrom(h) {
			ind.AccrueThirst(interval)
		}
		if !ind.CheckExposure(h) {
			ind.AccrueExposure(interval)
		}

		ind.AccrueAge(interval)
		if ind.IsFemale() && ind.Pregnant {
			ind.AccrueGestation(interval)
		}

		cause, dead := ind.EvaluateDeath()
		if !dead {
			continue
		}
		h.Remove(ind)
		res.Deaths[cause]++
		p.recorder.RecordDeath(res.Step, cause)

		slog.Debug("death",
			"step", res.Step,
			"id", ind.ID,
			"sex", ind.Sex.String(),
			"age", ind.Age,
			"cause", cause.String(),
		)
	}
}

// updateMating pairs fertile females that are not pregnant with randomly
// sampled fertile males. An empty habitat is treated as depleted.
func (p *Processor) updateMating(h *Habitat, res *StepResult) error {
	depleted, err := h.IsDepleted()
	if errors.Is(err, ErrEmptyHabitat) {
		return nil
	}
	if err != nil {
		return err
	}
	if depleted && p.rng.Float64() > p.OverrideChance {
		return nil
	}

	var females, males []*Individual
	for _, ind := range h.Shuffled() {
		if !ind.IsFertile() {
			continue
		}
		if !ind.IsFemale() {
			males = append(males, ind)
			continue
		}
		pregnant, err := ind.IsPregnant()
		if err != nil {
			return err
		}
		if !pregnant {
			females = append(females, ind)
		}
	}

	if len(females) == 0 || len(males) == 0 {
		return nil
	}

	n := min(len(females), len(males))
	for _, female := range females[:n] {
		male := males[p.rng.Intn(len(males))]
		female.Mate(male)
		male.Mate(female)
		res.Matings++
	}
	return nil
}

// updateDelivery delivers every pregnant female at term and adds the
// newborns to the habitat.
func (p *Processor) updateDelivery(h *Habitat, step int, res *StepResult) error {
	for _, female := range h.Females() {
		pregnant, err := female.IsPregnant()
		if err != nil {
			return err
		}
		if !pregnant {
			continue
		}
		ready, err := female.IsReadyToDeliver()
		if err != nil {
			return err
		}
		if !ready {
			continue
		}

		child, err := female.Deliver(p.rng)
		if err != nil {
			return err
		}
		h.Add(child)
		res.Births++
		p.recorder.RecordBirth(step)
	}
	return nil
}
