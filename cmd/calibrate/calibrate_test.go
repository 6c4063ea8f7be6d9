package main

import (
	"context"
	"math"
	"testing"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
)

func TestParamVector_RoundTrip(t *testing.T) {
	h := &config.HabitatConfig{Name: "h", MonthlyFood: 500, MonthlyWater: 10}
	pv := NewParamVector(h)

	if pv.Dim() != 2 {
		t.Fatalf("Dim() = %d, want 2", pv.Dim())
	}
	if pv.Specs[0].Max != 2000 || pv.Specs[1].Max != 100 {
		t.Errorf("bounds = %v, %v; want 2000 and the 100 floor", pv.Specs[0].Max, pv.Specs[1].Max)
	}

	back := pv.Clamp(pv.Denormalize(pv.Normalize(pv.DefaultVector())))
	if back[0] != 500 || back[1] != 10 {
		t.Errorf("round trip = %v, want [500 10]", back)
	}
}

func TestParamVector_ClampAndApply(t *testing.T) {
	h := &config.HabitatConfig{Name: "h", MonthlyFood: 100, MonthlyWater: 100}
	pv := NewParamVector(h)

	got := pv.Clamp([]float64{-20, 123.6})
	if got[0] != 0 || got[1] != 124 {
		t.Errorf("Clamp = %v, want [0 124]", got)
	}

	pv.ApplyToHabitat(h, []float64{1e9, 42.2})
	if h.MonthlyFood != 400 || h.MonthlyWater != 42 {
		t.Errorf("applied food=%d water=%d, want 400 and 42", h.MonthlyFood, h.MonthlyWater)
	}
}

func TestObjective_Evaluate(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Run.Years = 1
	cfg.Run.InitialPopulation = 10
	base, err := game.NewTrialConfig(cfg, "rabbit", "meadow")
	if err != nil {
		t.Fatal(err)
	}
	h, err := cfg.FindHabitat("meadow")
	if err != nil {
		t.Fatal(err)
	}
	obj := NewObjective(NewParamVector(h), base, 50, 2, 1, 2)

	// No food and no water: every trial dies out.
	starved, err := obj.Evaluate(context.Background(), []float64{0, 0})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	mean, ext := obj.Last()
	if ext != 2 {
		t.Errorf("extinctions = %d, want 2", ext)
	}
	if starved <= extinctionPenalty || math.IsNaN(mean) {
		t.Errorf("fitness = %v mean = %v; extinction should be penalised", starved, mean)
	}

	again, err := obj.Evaluate(context.Background(), []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if again != starved {
		t.Errorf("same parameters scored %v then %v", starved, again)
	}
	if base.Habitat.MonthlyFood != h.MonthlyFood {
		t.Error("Evaluate must not modify the base habitat")
	}
}

func TestObjective_Cancelled(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	base, err := game.NewTrialConfig(cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}
	h, err := cfg.FindHabitat("")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fitness, err := NewObjective(NewParamVector(h), base, 10, 2, 1, 1).Evaluate(ctx, []float64{10, 10})
	if err == nil || !math.IsInf(fitness, 1) {
		t.Errorf("got %v, %v; want +Inf and an error", fitness, err)
	}
}
