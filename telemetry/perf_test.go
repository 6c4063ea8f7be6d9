package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/ecosim/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseIndividuals)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.PhaseMating)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Samples != 5 {
		t.Errorf("samples = %d, want 5", stats.Samples)
	}
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseIndividuals]; !ok {
		t.Error("expected individuals phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseMating]; !ok {
		t.Error("expected mating phase to be tracked")
	}
	if stats.MinStepDuration > stats.MaxStepDuration {
		t.Errorf("min %v > max %v", stats.MinStepDuration, stats.MaxStepDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseDelivery)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Samples != 5 {
		t.Errorf("samples = %d, want window size 5", stats.Samples)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgStepDuration != 0 || stats.Samples != 0 {
		t.Error("expected zero values for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_DrivenByProcessor(t *testing.T) {
	pc := NewPerfCollector(12)
	m := NewMetrics(0, 1, "test", "test")
	h, p := testHabitat(m)
	p.Timer = pc

	clock := systems.NewClock(3)
	for !clock.Done() {
		tc, _ := clock.Tick()
		if _, err := p.Step(h, tc); err != nil {
			t.Fatal(err)
		}
	}

	stats := pc.Stats()
	if stats.Samples != 3 {
		t.Errorf("samples = %d, want 3", stats.Samples)
	}
	for _, phase := range []string{systems.PhaseIndividuals, systems.PhaseMating, systems.PhaseDelivery} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not recorded", phase)
		}
	}
}
