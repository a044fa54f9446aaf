package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odyn/internal/events"
	"github.com/san-kum/odyn/internal/methods"
	"github.com/san-kum/odyn/internal/models"
	"github.com/san-kum/odyn/internal/ode"
)

const (
	DefaultDt     = 1e-2
	DefaultTF     = 10.0
	DefaultAbsTol = 1e-8
	DefaultRelTol = 1e-6
)

type Config struct {
	Model     string  `yaml:"model"`
	Method    string  `yaml:"method"`
	T0        float64 `yaml:"t0"`
	TF        float64 `yaml:"tf"`
	Dt        float64 `yaml:"dt"`
	MinDt     float64 `yaml:"min_dt"`
	MaxDt     float64 `yaml:"max_dt"`
	AbsTol    float64 `yaml:"abs_tol"`
	RelTol    float64 `yaml:"rel_tol"`
	Component int     `yaml:"component"` // state component to plot
}

func Default() *Config {
	return &Config{
		Model:  "oscillator",
		Method: "dopri5",
		TF:     DefaultTF,
		Dt:     DefaultDt,
		MinDt:  1e-12,
		MaxDt:  1.0,
		AbsTol: DefaultAbsTol,
		RelTol: DefaultRelTol,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Options translates the file-level knobs into solver options.
func (c *Config) Options() ode.Options {
	opts := ode.DefaultOptions()
	opts.InitialDt = c.Dt
	opts.MinDt = c.MinDt
	opts.MaxDt = c.MaxDt
	opts.AbsTol = c.AbsTol
	opts.RelTol = c.RelTol
	return opts
}

// NewMethod instantiates the named method plugin. Every call returns a
// fresh instance: methods carry scratch state and must not be shared
// across runs.
func (c *Config) NewMethod() (ode.Method, error) {
	switch c.Method {
	case "euler":
		return methods.NewEuler(), nil
	case "rk4":
		return methods.NewRK4(), nil
	case "dopri5":
		return methods.NewDopri5(), nil
	case "leapfrog":
		return methods.NewLeapfrog(), nil
	case "rkn4":
		return methods.NewRKN4(), nil
	case "imex-euler":
		return methods.NewIMEXEuler(), nil
	case "cnab2":
		return methods.NewCNAB2(), nil
	default:
		return nil, fmt.Errorf("unknown method: %s", c.Method)
	}
}

// Problem builds the named model's problem and callbacks over [T0, TF].
func (c *Config) Problem() (*ode.Problem, *events.CallbackSet, error) {
	switch c.Model {
	case "oscillator":
		prob, err := models.NewOscillator().Problem(ode.State{0, 1}, c.T0, c.TF)
		return prob, nil, err
	case "decay":
		prob, err := models.NewDecay(1.0).Problem(1.0, c.T0, c.TF)
		return prob, nil, err
	case "kepler":
		k := models.NewKepler()
		prob, err := k.Problem(k.EllipticOrbit(0.6), c.T0, c.TF)
		return prob, nil, err
	case "heat":
		h := models.NewHeat(32, 1.0, 0.1)
		prob, err := h.Problem(h.SineMode(1), c.T0, c.TF, ode.Params{"reaction": 0})
		return prob, nil, err
	case "lif":
		l := models.NewLIF()
		prob, err := l.Problem(c.T0, c.TF)
		if err != nil {
			return nil, nil, err
		}
		cbs, err := l.Callbacks()
		return prob, cbs, err
	default:
		return nil, nil, fmt.Errorf("unknown model: %s", c.Model)
	}
}
