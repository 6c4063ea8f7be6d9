package systems

import (
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
)

// testSpecies returns a long-lived species that tolerates any test
// temperature and is always fertile.
func testSpecies() *components.Species {
	return &components.Species{
		Name:             "test",
		LifeSpan:         1000,
		MinBreedingAge:   0,
		MaxBreedingAge:   1000,
		GestationPeriod:  1,
		FoodConsumption:  10,
		WaterConsumption: 10,
		MinTemperature:   -100,
		MaxTemperature:   100,
	}
}

// testProfile returns a habitat at a constant 20 degrees.
func testProfile(food, water int) *components.HabitatProfile {
	p := &components.HabitatProfile{Name: "test", MonthlyFood: food, MonthlyWater: water}
	for m := 1; m <= 12; m++ {
		p.AverageTemperature[m] = 20
	}
	return p
}

func newTestHabitat(food, water int, seed int64) *Habitat {
	return NewHabitat(testProfile(food, water), rand.New(rand.NewSource(seed)))
}

// recorder captures everything a Processor reports.
type recorder struct {
	deaths      map[int][]components.Cause
	births      map[int]int
	populations []int
}

func newRecorder() *recorder {
	return &recorder{
		deaths: make(map[int][]components.Cause),
		births: make(map[int]int),
	}
}

func (r *recorder) RecordDeath(step int, cause components.Cause) {
	r.deaths[step] = append(r.deaths[step], cause)
}

func (r *recorder) RecordBirth(step int) { r.births[step]++ }

func (r *recorder) RecordPopulation(step int, population int) {
	r.populations = append(r.populations, population)
}

func (r *recorder) totalDeaths() int {
	n := 0
	for _, cs := range r.deaths {
		n += len(cs)
	}
	return n
}

func (r *recorder) totalBirths() int {
	n := 0
	for _, b := range r.births {
		n += b
	}
	return n
}
