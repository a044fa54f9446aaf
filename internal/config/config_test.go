package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Model != "oscillator" || cfg.Method != "dopri5" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	opts := cfg.Options()
	if opts.InitialDt != cfg.Dt || opts.AbsTol != cfg.AbsTol {
		t.Error("Options() does not reflect the config knobs")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := Default()
	cfg.Model = "kepler"
	cfg.Method = "leapfrog"
	cfg.TF = 42
	cfg.MaxDt = 5e-3

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")

	// a file that only names the model should inherit the other defaults
	if err := os.WriteFile(path, []byte("model: lif\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "lif" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Method != "dopri5" || cfg.Dt != DefaultDt {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestNewMethod(t *testing.T) {
	for _, name := range []string{"euler", "rk4", "dopri5", "leapfrog", "rkn4", "imex-euler", "cnab2"} {
		cfg := Default()
		cfg.Method = name
		m, err := cfg.NewMethod()
		if err != nil {
			t.Errorf("NewMethod(%q) failed: %v", name, err)
			continue
		}
		if m.Name() == "" || m.Order() < 1 {
			t.Errorf("method %q reports name=%q order=%d", name, m.Name(), m.Order())
		}
	}

	cfg := Default()
	cfg.Method = "nope"
	if _, err := cfg.NewMethod(); err == nil {
		t.Error("unknown method accepted")
	}
}

func TestProblem_AllModels(t *testing.T) {
	for _, name := range []string{"oscillator", "decay", "kepler", "heat", "lif"} {
		cfg := Default()
		cfg.Model = name
		prob, _, err := cfg.Problem()
		if err != nil {
			t.Errorf("Problem(%q) failed: %v", name, err)
			continue
		}
		if prob.Dim() < 1 {
			t.Errorf("model %q has empty state", name)
		}
	}

	cfg := Default()
	cfg.Model = "nope"
	if _, _, err := cfg.Problem(); err == nil {
		t.Error("unknown model accepted")
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	if len(names) != len(Presets) {
		t.Fatalf("PresetNames() returned %d names for %d presets", len(names), len(Presets))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Error("PresetNames() is not sorted")
		}
	}

	// every preset must name a buildable model and method
	for name, p := range Presets {
		if _, err := p.NewMethod(); err != nil {
			t.Errorf("preset %q: %v", name, err)
		}
		if _, _, err := p.Problem(); err != nil {
			t.Errorf("preset %q: %v", name, err)
		}
	}
}
