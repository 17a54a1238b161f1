package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/snaphome/config"
	"github.com/pthm-cable/snaphome/field"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/world"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector(loadDefaults(t))
	if pv.Dim() != 2 {
		t.Fatalf("Dim = %d, want 2", pv.Dim())
	}

	def := pv.DefaultVector()
	if def[0] != 1 || def[1] != 3 {
		t.Errorf("defaults = %v, want [1 3]", def)
	}
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("param %d: %v -> %v", i, def[i], back[i])
		}
	}

	clamped := pv.Clamp([]float64{-1, 100})
	if clamped[0] != 0 || clamped[1] != 10 {
		t.Errorf("Clamp = %v, want [0 10]", clamped)
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg := loadDefaults(t)
	pv := NewParamVector(cfg)
	pv.ApplyToConfig(cfg, []float64{2.5, 42})
	if cfg.Homing.TurningWeight != 2.5 || cfg.Homing.PositioningWeight != 10 {
		t.Errorf("homing = %+v", cfg.Homing)
	}
}

func TestParseHomes(t *testing.T) {
	homes, err := parseHomes(" 0,0  -3,4 ")
	if err != nil {
		t.Fatal(err)
	}
	if len(homes) != 2 || homes[1] != (geom.IVec{X: -3, Y: 4}) {
		t.Errorf("homes = %v", homes)
	}
	for _, bad := range []string{"1", "a,2", "1,b"} {
		if _, err := parseHomes(bad); err == nil {
			t.Errorf("parseHomes(%q) accepted", bad)
		}
	}
}

func TestEvaluate(t *testing.T) {
	cfg := loadDefaults(t)
	w, err := world.FromConfig(cfg.World)
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, w, []geom.IVec{{}}, cfg, field.Options{Workers: 2})

	got := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(got) || got < 0 || got > math.Pi {
		t.Errorf("fitness = %v, want a mean angle", got)
	}
	if fe.LastSummary().Measured == 0 {
		t.Error("no measured cells in last summary")
	}

	// A home inside an obstacle cannot take a snapshot.
	inside := NewFitnessEvaluator(pv, w, []geom.IVec{{X: 0, Y: -4}}, cfg, field.Options{})
	if got := inside.Evaluate(pv.DefaultVector()); got != failurePenalty {
		t.Errorf("fitness from inside an obstacle = %v, want penalty", got)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		s    field.Summary
		want float64
	}{
		{"measured only", field.Summary{Measured: 4, MeanAngularError: 0.5}, 0.5},
		{"with failures", field.Summary{Measured: 1, MeanAngularError: 0, Failed: 1}, failurePenalty / 2},
		{"nothing", field.Summary{MeanAngularError: math.NaN()}, failurePenalty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := score(tt.s); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}
