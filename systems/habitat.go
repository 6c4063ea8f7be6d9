package systems

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pthm-cable/ecosim/components"
)

// ErrEmptyHabitat is returned by checks that need a reference individual.
var ErrEmptyHabitat = errors.New("habitat has no living individuals")

// Temperature swing constants.
const (
	LargeSwingChance = 0.005 // probability of drawing from the large range
	LargeSwing       = 15    // upper bound of the large swing range
	SmallSwing       = 5     // upper bound of the small swing range
)

// Habitat is the shared resource pool and population container of a trial.
// It is not safe for concurrent use.
type Habitat struct {
	profile *components.HabitatProfile
	rng     *rand.Rand
	now     TimeContext

	food  int
	water int

	// members keeps a deterministic order so seeded runs are reproducible;
	// index maps identity to slot.
	members []*Individual
	index   map[uuid.UUID]int
}

// NewHabitat creates an empty habitat with full stores.
func NewHabitat(profile *components.HabitatProfile, rng *rand.Rand) *Habitat {
	h := &Habitat{
		profile: profile,
		rng:     rng,
		now:     TimeContext{Interval: components.Month},
		index:   make(map[uuid.UUID]int),
	}
	h.Refresh()
	return h
}

// Profile returns the habitat's attribute table.
func (h *Habitat) Profile() *components.HabitatProfile { return h.profile }

// Food returns the current food store.
func (h *Habitat) Food() int { return h.food }

// Water returns the current water store.
func (h *Habitat) Water() int { return h.water }

// Now returns the time context last set on the habitat.
func (h *Habitat) Now() TimeContext { return h.now }

// SetTime sets the calendar position used for temperature lookups.
func (h *Habitat) SetTime(tc TimeContext) { h.now = tc }

// Refresh resets the food and water stores to their monthly capacity.
func (h *Habitat) Refresh() {
	h.food = h.profile.MonthlyFood
	h.water = h.profile.MonthlyWater
}

// Add inserts an individual. Adding a member twice is a no-op.
func (h *Habitat) Add(ind *Individual) {
	if _, ok := h.index[ind.ID]; ok {
		return
	}
	h.index[ind.ID] = len(h.members)
	h.members = append(h.members, ind)
}

// Remove deletes an individual; absent individuals are ignored.
// The last member takes the removed member's slot.
func (h *Habitat) Remove(ind *Individual) {
	i, ok := h.index[ind.ID]
	if !ok {
		return
	}
	last := len(h.members) - 1
	if i != last {
		moved := h.members[last]
		h.members[i] = moved
		h.index[moved.ID] = i
	}
	h.members[last] = nil
	h.members = h.members[:last]
	delete(h.index, ind.ID)
}

// Contains reports whether the individual is a live member.
func (h *Habitat) Contains(ind *Individual) bool {
	_, ok := h.index[ind.ID]
	return ok
}

// Population returns the number of live members.
func (h *Habitat) Population() int { return len(h.members) }

// Individuals returns a copy of the live set in member order.
func (h *Habitat) Individuals() []*Individual {
	out := make([]*Individual, len(h.members))
	copy(out, h.members)
	return out
}

// Shuffled returns the live set in a fresh random order.
func (h *Habitat) Shuffled() []*Individual {
	out := h.Individuals()
	h.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Females returns the female members.
func (h *Habitat) Females() []*Individual {
	return h.filter(func(ind *Individual) bool { return ind.IsFemale() })
}

// Males returns the male members.
func (h *Habitat) Males() []*Individual {
	return h.filter(func(ind *Individual) bool { return !ind.IsFemale() })
}

func (h *Habitat) filter(keep func(*Individual) bool) []*Individual {
	var out []*Individual
	for _, ind := range h.members {
		if keep(ind) {
			out = append(out, ind)
		}
	}
	return out
}

// IsDepleted reports whether the current stores cannot cover one more
// individual's monthly need. The need is taken from the first live member,
// so an empty habitat returns ErrEmptyHabitat.
func (h *Habitat) IsDepleted() (bool, error) {
	if len(h.members) == 0 {
		return false, ErrEmptyHabitat
	}
	ref := h.members[0].Species
	return h.food < ref.FoodConsumption || h.water < ref.WaterConsumption, nil
}

// Temperature samples the current temperature: the month's average plus a
// random swing scaled by that average. A zero average has no swing.
func (h *Habitat) Temperature() float64 {
	base := h.profile.TemperatureFor(h.now.Month())

	var swing float64
	if h.rng.Float64() <= LargeSwingChance {
		swing = float64(h.rng.Intn(LargeSwing + 1))
	} else {
		swing = float64(h.rng.Intn(SmallSwing + 1))
	}

	sign := 1.0
	if h.rng.Intn(2) == 0 {
		sign = -1.0
	}

	if base == 0 {
		return base
	}
	return base + swing/base*sign
}
