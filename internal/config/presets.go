package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		Constants: Constants{
			Alpha: 0.1,
			RTB:   [3]float64{-0.01, 0, 0},
			J:     [3][3]float64{{0.01, 0, 0}, {0, 0.01, 0}, {0, 0, 0.01}},
			G:     [3]float64{-1, 0, 0},
		},
	},
	"slender": {
		Constants: Constants{
			Alpha: 0.05,
			RTB:   [3]float64{-0.25, 0, 0},
			J:     [3][3]float64{{0.02, 0, 0}, {0, 0.4, 0}, {0, 0, 0.4}},
			G:     [3]float64{-1, 0, 0},
		},
	},
	"offset": {
		Constants: Constants{
			Alpha: 0.2,
			RTB:   [3]float64{-0.1, 0.01, -0.02},
			J:     [3][3]float64{{0.05, 0, 0}, {0, 0.08, 0}, {0, 0, 0.1}},
			G:     [3]float64{-0.5, 0.1, 0},
		},
	},
	"degenerate": {
		Constants: Constants{
			Alpha: 0.1,
			RTB:   [3]float64{-0.01, 0, 0},
			J:     [3][3]float64{{0, 0, 0}, {0, 0.01, 0}, {0, 0, 0.01}},
			G:     [3]float64{-1, 0, 0},
		},
	},
}

// GetPreset returns a copy of the named preset filled with default
// generation and check settings, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Constants = p.Constants
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
