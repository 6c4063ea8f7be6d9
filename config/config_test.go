package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Run.Trials != 10 || cfg.Run.Years != 20 || cfg.Run.InitialPopulation != 20 {
		t.Errorf("run = %+v", cfg.Run)
	}
	if cfg.DurationSteps() != 240 {
		t.Errorf("DurationSteps() = %d, want 240", cfg.DurationSteps())
	}
	if len(cfg.Species) == 0 || len(cfg.Habitats) == 0 {
		t.Fatal("defaults should configure species and habitats")
	}
	for _, h := range cfg.Habitats {
		if len(h.AverageTemperature) != 12 {
			t.Errorf("habitat %s has %d months", h.Name, len(h.AverageTemperature))
		}
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := "run:\n  trials: 3\n  workers: 4\n"
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Run.Trials != 3 || cfg.Run.Workers != 4 {
		t.Errorf("overrides not applied: %+v", cfg.Run)
	}
	if cfg.Run.Years != 20 {
		t.Errorf("years = %d, default should survive", cfg.Run.Years)
	}
	if len(cfg.Species) != 3 {
		t.Errorf("species = %d, defaults should survive", len(cfg.Species))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want []string
	}{
		{
			name: "empty",
			yaml: "run:\n  trials: 0\n  years: 0\n",
			want: []string{"run.trials", "run.years", "no species", "no habitats"},
		},
		{
			name: "bad species",
			yaml: `
run: {trials: 1, years: 1}
species:
  - name: a
    life_span: 0
    minimum_breeding_age: 3
    maximum_breeding_age: 2
    monthly_food_consumption: 0
    monthly_water_consumption: 1
    minimum_temperature: 10
    maximum_temperature: 0
  - name: a
    life_span: 1
    monthly_food_consumption: 1
    monthly_water_consumption: 1
habitats:
  - name: h
    average_temperature: {1: 0, 2: 0, 3: 0, 4: 0, 5: 0, 6: 0, 7: 0, 8: 0, 9: 0, 10: 0, 11: 0, 12: 0}
`,
			want: []string{"life_span", "maximum_breeding_age", "monthly_food_consumption", "maximum_temperature", "duplicate name \"a\""},
		},
		{
			name: "bad habitat",
			yaml: `
run: {trials: 1, years: 1}
species:
  - name: s
    life_span: 1
    monthly_food_consumption: 1
    monthly_water_consumption: 1
habitats:
  - name: h
    monthly_food: -1
    average_temperature: {1: 0, 2: 0, 13: 5}
`,
			want: []string{"monthly_food must not be negative", "missing months 3,4,5,6,7,8,9,10,11,12", "invalid month 13"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestFind(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	s, err := cfg.FindSpecies("")
	if err != nil || s.Name != cfg.Species[0].Name {
		t.Errorf("FindSpecies(\"\") = %v, %v; want first species", s, err)
	}
	h, err := cfg.FindHabitat("desert")
	if err != nil || h.Name != "desert" {
		t.Errorf("FindHabitat(desert) = %v, %v", h, err)
	}

	cfg.Run.Habitat = "tundra"
	if h, _ := cfg.FindHabitat(""); h == nil || h.Name != "tundra" {
		t.Errorf("run default not honoured: %v", h)
	}
}

func TestFind_Suggestions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		find    func(string) error
		query   string
		suggest string
	}{
		{"species typo", func(n string) error { _, err := cfg.FindSpecies(n); return err }, "rabit", `did you mean "rabbit"`},
		{"species case", func(n string) error { _, err := cfg.FindSpecies(n); return err }, "Deer", `did you mean "deer"`},
		{"habitat typo", func(n string) error { _, err := cfg.FindHabitat(n); return err }, "medow", `did you mean "meadow"`},
		{"habitat unrelated", func(n string) error { _, err := cfg.FindHabitat(n); return err }, "ocean", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.find(tt.query)
			if err == nil {
				t.Fatal("expected an error for an unknown name")
			}
			if tt.suggest == "" {
				if strings.Contains(err.Error(), "did you mean") {
					t.Errorf("unexpected suggestion in %q", err)
				}
				return
			}
			if !strings.Contains(err.Error(), tt.suggest) {
				t.Errorf("error %q does not contain %q", err, tt.suggest)
			}
		})
	}
}

func TestProfiles(t *testing.T) {
	sc := SpeciesConfig{
		Name:                    "hare",
		LifeSpan:                2.5,
		MinimumBreedingAge:      0.5,
		MaximumBreedingAge:      2,
		GestationPeriod:         3,
		MonthlyFoodConsumption:  7,
		MonthlyWaterConsumption: 4,
		MinimumTemperature:      -10,
		MaximumTemperature:      30,
	}
	sp := sc.Profile()
	if sp.LifeSpan != 30 || sp.MinBreedingAge != 6 || sp.MaxBreedingAge != 24 || sp.GestationPeriod != 3 {
		t.Errorf("species durations = %+v", sp)
	}
	if sp.FoodConsumption != 7 || sp.WaterConsumption != 4 || sp.MinTemperature != -10 || sp.MaxTemperature != 30 {
		t.Errorf("species needs = %+v", sp)
	}

	hc := HabitatConfig{Name: "h", MonthlyFood: 100, MonthlyWater: 50, AverageTemperature: map[int]float64{1: -5, 7: 25}}
	hp := hc.Profile()
	if hp.MonthlyFood != 100 || hp.MonthlyWater != 50 {
		t.Errorf("habitat stores = %+v", hp)
	}
	if hp.TemperatureFor(1) != -5 || hp.TemperatureFor(7) != 25 || hp.TemperatureFor(3) != 0 {
		t.Errorf("temperatures = %v", hp.AverageTemperature)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Run.Trials = 7
	cfg.Habitats[0].MonthlyFood = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.Run.Trials != 7 || back.Habitats[0].MonthlyFood != 1234 {
		t.Errorf("round trip lost overrides: trials=%d food=%d", back.Run.Trials, back.Habitats[0].MonthlyFood)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() should panic before Init")
		}
	}()
	Cfg()
}
