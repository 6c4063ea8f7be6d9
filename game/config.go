package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

// TrialConfig holds everything one trial needs. It is read-only once built
// and may be shared by concurrent trials.
type TrialConfig struct {
	Habitat           *components.HabitatProfile
	Species           *components.Species
	DurationSteps     int
	InitialPopulation int
}

// Validate checks that a trial can run with this configuration.
func (c TrialConfig) Validate() error {
	var errs []error
	if c.Habitat == nil {
		errs = append(errs, errors.New("habitat attributes are missing"))
	}
	if c.Species == nil {
		errs = append(errs, errors.New("species attributes are missing"))
	}
	if c.DurationSteps < 1 {
		errs = append(errs, fmt.Errorf("duration must be at least one step, got %d", c.DurationSteps))
	}
	if c.InitialPopulation < 0 {
		errs = append(errs, fmt.Errorf("initial population must not be negative, got %d", c.InitialPopulation))
	}
	return errors.Join(errs...)
}

// NewTrialConfig builds a trial configuration for one species/habitat pair.
// Empty names select the configured defaults.
func NewTrialConfig(cfg *config.Config, species, habitat string) (TrialConfig, error) {
	sc, err := cfg.FindSpecies(species)
	if err != nil {
		return TrialConfig{}, err
	}
	hc, err := cfg.FindHabitat(habitat)
	if err != nil {
		return TrialConfig{}, err
	}

	tc := TrialConfig{
		Habitat:           hc.Profile(),
		Species:           sc.Profile(),
		DurationSteps:     cfg.DurationSteps(),
		InitialPopulation: cfg.Run.InitialPopulation,
	}
	return tc, tc.Validate()
}

// AllTrialConfigs returns one configuration per species/habitat pair, in
// species-major order.
func AllTrialConfigs(cfg *config.Config) ([]TrialConfig, error) {
	var out []TrialConfig
	for _, s := range cfg.Species {
		for _, h := range cfg.Habitats {
			tc, err := NewTrialConfig(cfg, s.Name, h.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, tc)
		}
	}
	return out, nil
}
