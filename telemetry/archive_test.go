package telemetry

import (
	"path/filepath"
	"testing"
)

func TestArchive_SaveTrial(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	runID, err := a.BeginRun("run:\n  trials: 2\n")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	// The second trial has no births, so its mortality rate is stored as NULL.
	first := fixtureMetrics()
	second := NewMetrics(0, 1, "meadow", "rabbit")
	second.RecordPopulation(1, 4)

	for _, m := range []*Metrics{first, second} {
		if err := a.SaveTrial(runID, m); err != nil {
			t.Fatalf("SaveTrial(%d): %v", m.Trial, err)
		}
	}

	n, err := a.TrialCount(runID)
	if err != nil {
		t.Fatalf("TrialCount: %v", err)
	}
	if n != 2 {
		t.Errorf("TrialCount = %d, want 2", n)
	}

	series, err := a.SeriesFor(runID, "meadow", "rabbit", first.Trial)
	if err != nil {
		t.Fatalf("SeriesFor: %v", err)
	}
	want := first.Series()
	if len(series) != len(want) {
		t.Fatalf("series len = %d, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, series[i], want[i])
		}
	}
}

func TestArchive_DuplicateTrialRejected(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	runID, err := a.BeginRun("")
	if err != nil {
		t.Fatal(err)
	}
	m := fixtureMetrics()
	if err := a.SaveTrial(runID, m); err != nil {
		t.Fatal(err)
	}
	if err := a.SaveTrial(runID, m); err == nil {
		t.Error("saving the same trial twice should fail")
	}

	// The failed transaction must not leave partial series rows behind.
	series, err := a.SeriesFor(runID, m.Habitat, m.Species, m.Trial)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != m.Steps() {
		t.Errorf("series rows = %d, want %d", len(series), m.Steps())
	}
}

func TestArchive_RunsAreSeparate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	a, err := OpenArchive(path)
	if err != nil {
		t.Fatal(err)
	}
	run1, _ := a.BeginRun("")
	if err := a.SaveTrial(run1, fixtureMetrics()); err != nil {
		t.Fatal(err)
	}
	a.Close()

	// Reopening migrates idempotently and appends.
	a, err = OpenArchive(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a.Close()
	run2, err := a.BeginRun("")
	if err != nil {
		t.Fatal(err)
	}
	if run2 == run1 {
		t.Fatal("runs should get distinct ids")
	}
	if n, _ := a.TrialCount(run2); n != 0 {
		t.Errorf("new run has %d trials", n)
	}
	if n, _ := a.TrialCount(run1); n != 1 {
		t.Errorf("old run has %d trials, want 1", n)
	}
}
