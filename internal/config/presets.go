package config

import "math"

var Presets = map[string]*Config{
	// The classic benchmark run: unit parameters, a 0.01 rad nudge,
	// 10000 steps of dt = 0.01.
	"reference": {
		Integrator: "rk4", Dt: 0.01, Duration: 100.0,
		Params:    ParamsConfig{CartMass: 1.0, PendulumMass: 1.0, PendulumLength: 1.0},
		InitState: InitStateConfig{Theta: 0.01},
	},
	"nudge": {
		Integrator: "rk4", Dt: 0.01, Duration: 20.0,
		Params:    ParamsConfig{CartMass: 1.0, PendulumMass: 0.1, PendulumLength: 1.0},
		InitState: InitStateConfig{Theta: 0.2},
	},
	"swing": {
		Integrator: "rk4", Dt: 0.005, Duration: 30.0,
		Params:    ParamsConfig{CartMass: 1.0, PendulumMass: 1.0, PendulumLength: 1.0},
		InitState: InitStateConfig{Theta: 2.5},
	},
	"inverted": {
		Integrator: "rk4", Dt: 0.005, Duration: 15.0,
		Params:    ParamsConfig{CartMass: 1.0, PendulumMass: 0.5, PendulumLength: 1.0},
		InitState: InitStateConfig{Theta: math.Pi - 0.05},
	},
	"damped": {
		Integrator: "rk4", Dt: 0.01, Duration: 30.0,
		Params:    ParamsConfig{CartMass: 1.0, PendulumMass: 1.0, PendulumLength: 1.0, Viscosity: 0.2},
		InitState: InitStateConfig{Theta: 1.0},
	},
	"pushed": {
		Integrator: "rk4", Dt: 0.01, Duration: 10.0,
		Params:    ParamsConfig{CartMass: 2.0, PendulumMass: 0.5, PendulumLength: 1.0, Viscosity: 0.1},
		InitState: InitStateConfig{},
		Force:     1.5,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
