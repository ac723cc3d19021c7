package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultCartMass = 1.0
	DefaultPendMass = 1.0
	DefaultPendLen  = 1.0
)

type Config struct {
	Integrator string          `yaml:"integrator"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	Params     ParamsConfig    `yaml:"params"`
	InitState  InitStateConfig `yaml:"init_state"`
	Force      float64         `yaml:"force"`
}

type ParamsConfig struct {
	CartMass       float64 `yaml:"cart_mass"`
	PendulumMass   float64 `yaml:"pendulum_mass"`
	PendulumLength float64 `yaml:"pendulum_length"`
	Viscosity      float64 `yaml:"viscosity"`
}

type InitStateConfig struct {
	Pos   float64 `yaml:"pos"`
	Theta float64 `yaml:"theta"`
	Vel   float64 `yaml:"vel"`
	Omega float64 `yaml:"omega"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Params: ParamsConfig{
			CartMass:       DefaultCartMass,
			PendulumMass:   DefaultPendMass,
			PendulumLength: DefaultPendLen,
		},
		InitState: InitStateConfig{Theta: 0.01},
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetInitState returns the initial state in (x, theta, xDot, thetaDot) order.
func (c *Config) GetInitState() []float64 {
	return []float64{c.InitState.Pos, c.InitState.Theta, c.InitState.Vel, c.InitState.Omega}
}
