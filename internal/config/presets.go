package config

import "sort"

// Presets are ready-made run configurations pairing each model with the
// method suited to it.
var Presets = map[string]*Config{
	"oscillator": {
		Model: "oscillator", Method: "dopri5",
		TF: 10, Dt: 1e-2, MinDt: 1e-12, MaxDt: 1.0,
		AbsTol: 1e-8, RelTol: 1e-6, Component: 1,
	},
	"kepler": {
		Model: "kepler", Method: "leapfrog",
		TF: 100, Dt: 1e-2, MinDt: 1e-12, MaxDt: 1e-2,
		AbsTol: 1e-8, RelTol: 1e-6, Component: 2,
	},
	"lif": {
		Model: "lif", Method: "dopri5",
		TF: 30, Dt: 1e-3, MinDt: 1e-12, MaxDt: 0.1,
		AbsTol: 1e-9, RelTol: 1e-7,
	},
	"heat": {
		Model: "heat", Method: "cnab2",
		TF: 2, Dt: 1e-2, MinDt: 1e-12, MaxDt: 1e-2,
		AbsTol: 1e-8, RelTol: 1e-6, Component: 16,
	},
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
