package main

import (
	"math"

	"github.com/pthm-cable/ecosim/config"
)

// ParamSpec defines a single tunable habitat attribute.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value
}

// ParamVector holds the habitat capacities being calibrated.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the parameter set for one habitat, centred on its
// configured capacities.
func NewParamVector(h *config.HabitatConfig) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			capacitySpec("monthly_food", "habitats."+h.Name+".monthly_food", h.MonthlyFood),
			capacitySpec("monthly_water", "habitats."+h.Name+".monthly_water", h.MonthlyWater),
		},
	}
}

// capacitySpec searches from zero to four times the configured capacity.
func capacitySpec(name, path string, current int) ParamSpec {
	hi := 4 * float64(current)
	if hi < 100 {
		hi = 100
	}
	return ParamSpec{Name: name, Path: path, Min: 0, Max: hi, Default: float64(current)}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the starting values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw values to the [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw values.
func (pv *ParamVector) Denormalize(norm []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + norm[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp restricts raw values to their bounds and rounds them to whole
// units, since capacities are integers.
func (pv *ParamVector) Clamp(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = math.Round(math.Max(spec.Min, math.Min(spec.Max, raw[i])))
	}
	return out
}

// ApplyToHabitat writes clamped values into a habitat table.
func (pv *ParamVector) ApplyToHabitat(h *config.HabitatConfig, raw []float64) {
	v := pv.Clamp(raw)
	h.MonthlyFood = int(v[0])
	h.MonthlyWater = int(v[1])
}
