package components

// Sex of an individual, fixed at creation.
type Sex uint8

const (
	Male Sex = iota
	Female
)

// String returns the lowercase sex name.
func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// Vitals tracks an individual's biological counters.
// All durations are in intervals and start at zero.
type Vitals struct {
	Age        int
	Starvation int // intervals without food
	Thirst     int // intervals without water
	Exposure   int // intervals outside temperature tolerance
	Gestation  int // intervals pregnant
	Pregnant   bool
}
