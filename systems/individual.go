package systems

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pthm-cable/ecosim/components"
)

var (
	// ErrNotFemale is returned when a female-only operation is invoked on a male.
	ErrNotFemale = errors.New("operation requires a female individual")
	// ErrNotReady is returned when delivery is attempted before term.
	ErrNotReady = errors.New("gestation has not reached term")
)

// Individual is one simulated organism.
// It is owned by exactly one Habitat at a time.
type Individual struct {
	ID      uuid.UUID
	Sex     components.Sex
	Species *components.Species

	components.Vitals
}

// NewIndividual creates an individual of the given species and sex with
// all counters at their defaults.
func NewIndividual(species *components.Species, sex components.Sex) *Individual {
	return &Individual{
		ID:      uuid.New(),
		Sex:     sex,
		Species: species,
	}
}

// SpawnIndividual creates an individual whose sex is drawn uniformly.
func SpawnIndividual(species *components.Species, rng *rand.Rand) *Individual {
	return NewIndividual(species, RandomSex(rng))
}

// RandomSex draws male or female with equal probability.
func RandomSex(rng *rand.Rand) components.Sex {
	if rng.Intn(2) == 0 {
		return components.Male
	}
	return components.Female
}

// IsFemale reports whether the individual is female.
func (ind *Individual) IsFemale() bool {
	return ind.Sex == components.Female
}

// IsFertile reports whether the individual's age lies within the species'
// breeding bounds, both inclusive.
func (ind *Individual) IsFertile() bool {
	return ind.Age >= ind.Species.MinBreedingAge && ind.Age <= ind.Species.MaxBreedingAge
}

// ConsumeFoodFrom debits one interval's food need from the habitat.
// Returns false, leaving both sides untouched, when the store cannot cover it.
func (ind *Individual) ConsumeFoodFrom(h *Habitat) bool {
	need := ind.Species.FoodConsumption
	if h.food < need {
		return false
	}
	h.food -= need
	ind.Starvation = 0
	return true
}

// ConsumeWaterFrom debits one interval's water need from the habitat.
func (ind *Individual) ConsumeWaterFrom(h *Habitat) bool {
	need := ind.Species.WaterConsumption
	if h.water < need {
		return false
	}
	h.water -= need
	ind.Thirst = 0
	return true
}

func (ind *Individual) AccrueStarvation(interval int) { ind.Starvation += interval }
func (ind *Individual) AccrueThirst(interval int)     { ind.Thirst += interval }
func (ind *Individual) AccrueAge(interval int)        { ind.Age += interval }
func (ind *Individual) AccrueGestation(interval int)  { ind.Gestation += interval }
func (ind *Individual) AccrueExposure(interval int)   { ind.Exposure += interval }

// CheckExposure samples the habitat temperature and compares it with the
// species tolerance range. Within range the exposure counter is reset and
// true is returned; the caller accrues exposure on false.
func (ind *Individual) CheckExposure(h *Habitat) bool {
	t := h.Temperature()
	if t < ind.Species.MinTemperature || t > ind.Species.MaxTemperature {
		return false
	}
	ind.Exposure = 0
	return true
}

// EvaluateDeath applies the death rules in priority order and returns the
// first satisfied cause. It does not mutate the individual.
func (ind *Individual) EvaluateDeath() (components.Cause, bool) {
	return evaluateDeath(&ind.Vitals, ind.Species)
}

// Mate records a mating with partner. A female becomes pregnant; repeated
// matings have no further effect. Paternity is not tracked.
func (ind *Individual) Mate(partner *Individual) {
	if ind.IsFemale() {
		ind.Pregnant = true
	}
}

// IsPregnant reports the pregnancy flag of a female.
func (ind *Individual) IsPregnant() (bool, error) {
	if !ind.IsFemale() {
		return false, ErrNotFemale
	}
	return ind.Pregnant, nil
}

// IsReadyToDeliver reports whether a female's gestation has reached the
// species gestation period.
func (ind *Individual) IsReadyToDeliver() (bool, error) {
	if !ind.IsFemale() {
		return false, ErrNotFemale
	}
	return ind.Gestation >= ind.Species.GestationPeriod, nil
}

// Deliver ends a pregnancy at term and returns the newborn, whose sex is
// drawn from rng. The mother's gestation and pregnancy are reset.
func (ind *Individual) Deliver(rng *rand.Rand) (*Individual, error) {
	ready, err := ind.IsReadyToDeliver()
	if err != nil {
		return nil, err
	}
	if !ind.Pregnant || !ready {
		return nil, ErrNotReady
	}

	ind.Gestation = 0
	ind.Pregnant = false

	return SpawnIndividual(ind.Species, rng), nil
}
