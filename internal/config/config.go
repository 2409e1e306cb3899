package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/san-kum/dyngen/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutput  = "dynamics_functions.go"
	DefaultPackage = "rocketdyn"
	DefaultSamples = 20
	DefaultScale   = 1.0
)

// Constants are the physical constants of the vehicle.
type Constants struct {
	Alpha float64       `yaml:"alpha"`
	RTB   [3]float64    `yaml:"rTB"`
	J     [3][3]float64 `yaml:"J"`
	G     [3]float64    `yaml:"g"`
}

type Config struct {
	Constants Constants      `yaml:"constants"`
	Generate  GenerateConfig `yaml:"generate"`
	Check     CheckConfig    `yaml:"check"`
}

type GenerateConfig struct {
	Output  string `yaml:"output"`
	Package string `yaml:"package"`
}

type CheckConfig struct {
	Samples int     `yaml:"samples"`
	Seed    int64   `yaml:"seed"`
	Scale   float64 `yaml:"scale"`
}

func DefaultConfig() *Config {
	return &Config{
		Constants: Presets["default"].Constants,
		Generate: GenerateConfig{
			Output:  DefaultOutput,
			Package: DefaultPackage,
		},
		Check: CheckConfig{
			Samples: DefaultSamples,
			Seed:    1,
			Scale:   DefaultScale,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Constants.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UnmarshalYAML decodes the constants section through FromMap so missing,
// unknown and mis-shaped keys are rejected.
func (c *Constants) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: constants must be a mapping: %v", dynamo.ErrConfiguration, err)
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Keys lists the constants a mapping must provide, in canonical order.
var Keys = []string{"alpha", "rTB", "J", "g"}

// FromMap builds Constants from a name → value mapping. Every key in Keys
// is required and no other key is accepted.
func FromMap(m map[string]any) (Constants, error) {
	var c Constants

	var unknown []string
	for k := range m {
		switch k {
		case "alpha", "rTB", "J", "g":
		default:
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return c, &dynamo.ConfigError{Key: unknown[0], Want: "one of alpha, rTB, J, g"}
	}

	for _, k := range Keys {
		if _, ok := m[k]; !ok {
			return c, &dynamo.ConfigError{Key: k, Want: "required"}
		}
	}

	alpha, ok := toFloat(m["alpha"])
	if !ok {
		return c, &dynamo.ConfigError{Key: "alpha", Want: "scalar"}
	}
	c.Alpha = alpha

	var err error
	if c.RTB, err = toVec3("rTB", m["rTB"]); err != nil {
		return c, err
	}
	if c.G, err = toVec3("g", m["g"]); err != nil {
		return c, err
	}
	if c.J, err = toMat3("J", m["J"]); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate checks shapes and finiteness; alpha must be positive.
func (c Constants) Validate() error {
	if !finite(c.Alpha) || c.Alpha <= 0 {
		return &dynamo.ConfigError{Key: "alpha", Want: "finite scalar > 0"}
	}
	for _, v := range c.RTB {
		if !finite(v) {
			return &dynamo.ConfigError{Key: "rTB", Want: "finite vector3"}
		}
	}
	for _, v := range c.G {
		if !finite(v) {
			return &dynamo.ConfigError{Key: "g", Want: "finite vector3"}
		}
	}
	for _, row := range c.J {
		for _, v := range row {
			if !finite(v) {
				return &dynamo.ConfigError{Key: "J", Want: "finite 3x3 matrix"}
			}
		}
	}
	return nil
}

// Map returns the constants in the mapping form accepted by FromMap.
func (c Constants) Map() map[string]any {
	return map[string]any{
		"alpha": c.Alpha,
		"rTB":   c.RTB,
		"J":     c.J,
		"g":     c.G,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func toVec3(key string, v any) ([3]float64, error) {
	var out [3]float64
	switch x := v.(type) {
	case [3]float64:
		return x, nil
	case []float64:
		if len(x) != 3 {
			return out, &dynamo.ConfigError{Key: key, Want: "vector3"}
		}
		copy(out[:], x)
		return out, nil
	case []any:
		if len(x) != 3 {
			return out, &dynamo.ConfigError{Key: key, Want: "vector3"}
		}
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return out, &dynamo.ConfigError{Key: key, Want: "vector3 of numbers"}
			}
			out[i] = f
		}
		return out, nil
	}
	return out, &dynamo.ConfigError{Key: key, Want: "vector3"}
}

func toMat3(key string, v any) ([3][3]float64, error) {
	var out [3][3]float64
	switch x := v.(type) {
	case [3][3]float64:
		return x, nil
	case [][]float64:
		if len(x) != 3 {
			return out, &dynamo.ConfigError{Key: key, Want: "3x3 matrix"}
		}
		for i, row := range x {
			r, err := toVec3(key, row)
			if err != nil {
				return out, &dynamo.ConfigError{Key: key, Want: "3x3 matrix"}
			}
			out[i] = r
		}
		return out, nil
	case []any:
		if len(x) != 3 {
			return out, &dynamo.ConfigError{Key: key, Want: "3x3 matrix"}
		}
		for i, row := range x {
			r, err := toVec3(key, row)
			if err != nil {
				return out, &dynamo.ConfigError{Key: key, Want: "3x3 matrix"}
			}
			out[i] = r
		}
		return out, nil
	}
	return out, &dynamo.ConfigError{Key: key, Want: "3x3 matrix"}
}
