package config

import (
	"sort"

	"github.com/san-kum/swsim/internal/physics"
)

var Presets = map[string]*Config{
	"tower": DefaultConfig(),
	"gyre": preset("gyre", func(p *physics.Params) {
		p.Rows, p.Cols = 10, 10
		p.Rotation = physics.RotationWithLatitude
		p.Wind = physics.WindCurled
		p.Perturbation = physics.PerturbationNone
		p.HorizontalWrap = false
	}),
	"channel": preset("channel", func(p *physics.Params) {
		p.Rows, p.Cols = 8, 12
		p.Rotation = physics.RotationUniform
		p.Perturbation = physics.PerturbationNSGradient
		p.InterpolateRotation = true
	}),
	"still": preset("still", func(p *physics.Params) {
		p.Rotation = physics.RotationNone
		p.Perturbation = physics.PerturbationNone
	}),
	"unstable": preset("unstable", func(p *physics.Params) {
		p.TimeStep = physics.DefaultTimeStep * 1e5
	}),
}

func preset(name string, edit func(*physics.Params)) *Config {
	p := physics.DefaultParams()
	edit(&p)
	return FromParams(name, p)
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
