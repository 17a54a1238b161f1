package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartRun()
		pc.StartPhase(PhaseSnapshot)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseField)
		time.Sleep(200 * time.Microsecond)
		pc.EndRun()
	}

	stats := pc.Stats()

	if stats.Runs != 5 {
		t.Errorf("expected 5 runs, got %d", stats.Runs)
	}
	if stats.AvgRunDuration <= 0 {
		t.Error("expected positive average run duration")
	}
	if _, ok := stats.PhaseAvg[PhaseSnapshot]; !ok {
		t.Error("expected snapshot phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseField]; !ok {
		t.Error("expected field phase to be tracked")
	}
	if stats.MinRunDuration > stats.MaxRunDuration {
		t.Errorf("min %v > max %v", stats.MinRunDuration, stats.MaxRunDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartRun()
		pc.StartPhase(PhaseField)
		pc.EndRun()
	}

	if got := pc.Stats().Runs; got != 5 {
		t.Errorf("expected window of 5 runs, got %d", got)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartRun()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndRun()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgRunDuration != 0 || stats.Runs != 0 {
		t.Error("expected zero stats for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil maps")
	}
}
