// Package components defines the plain data records shared by the simulation.
package components

// Month is the length of one simulation interval. Every duration held by a
// component is a count of intervals.
const Month = 1

// MonthsPerYear converts configured years into intervals.
const MonthsPerYear = 12

// Species holds the immutable attribute table of one species.
// A single instance is shared read-only by every individual of the species.
type Species struct {
	Name string

	LifeSpan        int // intervals; dies of age once exceeded
	MinBreedingAge  int // intervals, inclusive
	MaxBreedingAge  int // intervals, inclusive
	GestationPeriod int // intervals from mating to delivery

	FoodConsumption  int // food units required per interval
	WaterConsumption int // water units required per interval

	MinTemperature float64 // inclusive tolerance range
	MaxTemperature float64
}

// HabitatProfile holds the immutable attribute table of one habitat.
type HabitatProfile struct {
	Name string

	MonthlyFood  int // food store after every refresh
	MonthlyWater int // water store after every refresh

	// AverageTemperature is indexed by calendar month; index 0 is unused.
	AverageTemperature [13]float64
}

// TemperatureFor returns the average temperature of a calendar month (1-12).
func (p *HabitatProfile) TemperatureFor(month int) float64 {
	if month < 1 || month > 12 {
		return 0
	}
	return p.AverageTemperature[month]
}
