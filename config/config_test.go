package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(cfg.World.Obstacles); got != 3 {
		t.Errorf("default obstacles = %d, want 3", got)
	}
	if cfg.Homing.PositioningWeight != 3 || cfg.Homing.TurningWeight != 1 {
		t.Errorf("default weights = %+v", cfg.Homing)
	}
	if cfg.Derived.GridWidth != 15 || cfg.Derived.GridHeight != 15 || cfg.Derived.NumCells != 225 {
		t.Errorf("derived = %+v, want 15x15", cfg.Derived)
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
homing:
  positioning_weight: 5
world:
  obstacles:
    - shape: polygon
      vertices: [{x: 1, y: 1}, {x: 2, y: 1}, {x: 2, y: 2}]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Homing.PositioningWeight != 5 {
		t.Errorf("positioning_weight = %v, want 5", cfg.Homing.PositioningWeight)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Homing.TurningWeight != 1 {
		t.Errorf("turning_weight = %v, want default 1", cfg.Homing.TurningWeight)
	}
	if len(cfg.World.Obstacles) != 1 || len(cfg.World.Obstacles[0].Vertices) != 3 {
		t.Errorf("obstacles = %+v, want the single polygon", cfg.World.Obstacles)
	}
}

func TestLoadRejectsEmptyGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("world:\n  grid:\n    max_x: -7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted an empty grid")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Homing.PositioningWeight = 2.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Homing.PositioningWeight != 2.5 {
		t.Errorf("positioning_weight after round trip = %v, want 2.5", back.Homing.PositioningWeight)
	}
}

func TestCfgBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg did not panic before Init")
		}
	}()
	Cfg()
}
