// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosim/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Run      RunConfig       `yaml:"run"`
	Species  []SpeciesConfig `yaml:"species"`
	Habitats []HabitatConfig `yaml:"habitats"`
}

// RunConfig holds the parameters of a batch of trials.
type RunConfig struct {
	Trials            int    `yaml:"trials"`             // independent trials per species/habitat pair
	Years             int    `yaml:"years"`              // trial length; 12 steps per year
	InitialPopulation int    `yaml:"initial_population"` // founders, half female
	Seed              int64  `yaml:"seed"`               // 0 = time-based
	Workers           int    `yaml:"workers"`            // concurrent trials (0 or 1 = sequential)
	Species           string `yaml:"species"`            // default species (empty = first)
	Habitat           string `yaml:"habitat"`            // default habitat (empty = first)
}

// SpeciesConfig is the attribute table of one species.
// Ages are in years; the gestation period is in months.
type SpeciesConfig struct {
	Name                    string  `yaml:"name"`
	LifeSpan                float64 `yaml:"life_span"`
	MinimumBreedingAge      float64 `yaml:"minimum_breeding_age"`
	MaximumBreedingAge      float64 `yaml:"maximum_breeding_age"`
	GestationPeriod         int     `yaml:"gestation_period"`
	MonthlyFoodConsumption  int     `yaml:"monthly_food_consumption"`
	MonthlyWaterConsumption int     `yaml:"monthly_water_consumption"`
	MinimumTemperature      float64 `yaml:"minimum_temperature"`
	MaximumTemperature      float64 `yaml:"maximum_temperature"`
}

// HabitatConfig is the attribute table of one habitat.
type HabitatConfig struct {
	Name               string          `yaml:"name"`
	MonthlyFood        int             `yaml:"monthly_food"`
	MonthlyWater       int             `yaml:"monthly_water"`
	AverageTemperature map[int]float64 `yaml:"average_temperature"` // calendar month (1-12) -> degrees
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - scalars present in the file overwrite,
		// species and habitat lists are replaced wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes a complete configuration without merging defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or malformed attribute at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Run.Trials < 1 {
		errs = append(errs, errors.New("run.trials must be at least 1"))
	}
	if c.Run.Years < 1 {
		errs = append(errs, errors.New("run.years must be at least 1"))
	}
	if c.Run.InitialPopulation < 0 {
		errs = append(errs, errors.New("run.initial_population must not be negative"))
	}
	if c.Run.Workers < 0 {
		errs = append(errs, errors.New("run.workers must not be negative"))
	}
	if len(c.Species) == 0 {
		errs = append(errs, errors.New("no species configured"))
	}
	if len(c.Habitats) == 0 {
		errs = append(errs, errors.New("no habitats configured"))
	}

	seen := make(map[string]bool)
	for i, s := range c.Species {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("species[%d] %q: %w", i, s.Name, err))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("species[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
	}

	seen = make(map[string]bool)
	for i, h := range c.Habitats {
		if err := h.validate(); err != nil {
			errs = append(errs, fmt.Errorf("habitats[%d] %q: %w", i, h.Name, err))
		}
		if seen[h.Name] {
			errs = append(errs, fmt.Errorf("habitats[%d]: duplicate name %q", i, h.Name))
		}
		seen[h.Name] = true
	}

	return errors.Join(errs...)
}

func (s *SpeciesConfig) validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.LifeSpan <= 0 {
		errs = append(errs, errors.New("life_span must be positive"))
	}
	if s.MinimumBreedingAge < 0 {
		errs = append(errs, errors.New("minimum_breeding_age must not be negative"))
	}
	if s.MaximumBreedingAge < s.MinimumBreedingAge {
		errs = append(errs, errors.New("maximum_breeding_age must not be below minimum_breeding_age"))
	}
	if s.GestationPeriod < 0 {
		errs = append(errs, errors.New("gestation_period must not be negative"))
	}
	if s.MonthlyFoodConsumption <= 0 {
		errs = append(errs, errors.New("monthly_food_consumption must be positive"))
	}
	if s.MonthlyWaterConsumption <= 0 {
		errs = append(errs, errors.New("monthly_water_consumption must be positive"))
	}
	if s.MaximumTemperature < s.MinimumTemperature {
		errs = append(errs, errors.New("maximum_temperature must not be below minimum_temperature"))
	}
	return errors.Join(errs...)
}

func (h *HabitatConfig) validate() error {
	var errs []error
	if h.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if h.MonthlyFood < 0 {
		errs = append(errs, errors.New("monthly_food must not be negative"))
	}
	if h.MonthlyWater < 0 {
		errs = append(errs, errors.New("monthly_water must not be negative"))
	}
	var missing []string
	for m := 1; m <= 12; m++ {
		if _, ok := h.AverageTemperature[m]; !ok {
			missing = append(missing, fmt.Sprint(m))
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("average_temperature missing months %s", strings.Join(missing, ",")))
	}
	for m := range h.AverageTemperature {
		if m < 1 || m > 12 {
			errs = append(errs, fmt.Errorf("average_temperature has invalid month %d", m))
		}
	}
	return errors.Join(errs...)
}

// DurationSteps returns the trial length in intervals.
func (c *Config) DurationSteps() int {
	return c.Run.Years * components.MonthsPerYear
}

// yearsToIntervals converts a configured age in years to whole intervals.
func yearsToIntervals(years float64) int {
	return int(math.Round(years * components.MonthsPerYear))
}

// Profile converts the attribute table into the typed species record.
func (s *SpeciesConfig) Profile() *components.Species {
	return &components.Species{
		Name:             s.Name,
		LifeSpan:         yearsToIntervals(s.LifeSpan),
		MinBreedingAge:   yearsToIntervals(s.MinimumBreedingAge),
		MaxBreedingAge:   yearsToIntervals(s.MaximumBreedingAge),
		GestationPeriod:  s.GestationPeriod * components.Month,
		FoodConsumption:  s.MonthlyFoodConsumption,
		WaterConsumption: s.MonthlyWaterConsumption,
		MinTemperature:   s.MinimumTemperature,
		MaxTemperature:   s.MaximumTemperature,
	}
}

// Profile converts the attribute table into the typed habitat record.
func (h *HabitatConfig) Profile() *components.HabitatProfile {
	p := &components.HabitatProfile{
		Name:         h.Name,
		MonthlyFood:  h.MonthlyFood,
		MonthlyWater: h.MonthlyWater,
	}
	for m, t := range h.AverageTemperature {
		if m >= 1 && m <= 12 {
			p.AverageTemperature[m] = t
		}
	}
	return p
}

// FindSpecies returns the species table with the given name; an empty name
// selects the run default, or the first configured species.
func (c *Config) FindSpecies(name string) (*SpeciesConfig, error) {
	if name == "" {
		name = c.Run.Species
	}
	if name == "" && len(c.Species) > 0 {
		return &c.Species[0], nil
	}
	names := make([]string, len(c.Species))
	for i := range c.Species {
		if c.Species[i].Name == name {
			return &c.Species[i], nil
		}
		names[i] = c.Species[i].Name
	}
	return nil, fmt.Errorf("unknown species %q%s", name, suggest(name, names))
}

// FindHabitat returns the habitat table with the given name; an empty name
// selects the run default, or the first configured habitat.
func (c *Config) FindHabitat(name string) (*HabitatConfig, error) {
	if name == "" {
		name = c.Run.Habitat
	}
	if name == "" && len(c.Habitats) > 0 {
		return &c.Habitats[0], nil
	}
	names := make([]string, len(c.Habitats))
	for i := range c.Habitats {
		if c.Habitats[i].Name == name {
			return &c.Habitats[i], nil
		}
		names[i] = c.Habitats[i].Name
	}
	return nil, fmt.Errorf("unknown habitat %q%s", name, suggest(name, names))
}

// suggest returns a "did you mean" hint for the closest configured name.
func suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	lower := strings.ToLower(name)
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(cand))
		if dist > suggestLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// YAML returns the configuration encoded as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
