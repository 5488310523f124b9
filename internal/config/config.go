package config

import (
	"fmt"
	"os"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrames        = 1000
	DefaultStepsPerFrame = 1
)

// Config is the on-disk run file. Scheme fields are kept as names so a
// hand-edited file with an unknown scheme still loads; unknown names
// disable that forcing.
type Config struct {
	Name                string  `yaml:"name" json:"name"`
	Rows                int     `yaml:"rows" json:"rows"`
	Cols                int     `yaml:"cols" json:"cols"`
	DX                  float64 `yaml:"dx" json:"dx"`
	DY                  float64 `yaml:"dy" json:"dy"`
	TimeStep            float64 `yaml:"time_step" json:"time_step"`
	Gravity             float64 `yaml:"gravity" json:"gravity"`
	Depth               float64 `yaml:"depth" json:"depth"`
	Drag                float64 `yaml:"drag" json:"drag"`
	MeanLatitude        float64 `yaml:"mean_latitude" json:"mean_latitude"`
	Rotation            string  `yaml:"rotation" json:"rotation"`
	Wind                string  `yaml:"wind" json:"wind"`
	Perturbation        string  `yaml:"perturbation" json:"perturbation"`
	HorizontalWrap      bool    `yaml:"horizontal_wrap" json:"horizontal_wrap"`
	InterpolateRotation bool    `yaml:"interpolate_rotation" json:"interpolate_rotation"`
	Frames              int     `yaml:"frames" json:"frames"`
	StepsPerFrame       int     `yaml:"steps_per_frame" json:"steps_per_frame"`
	StopOnDivergence    bool    `yaml:"stop_on_divergence" json:"stop_on_divergence"`
}

func DefaultConfig() *Config {
	return FromParams("tower", physics.DefaultParams())
}

// FromParams builds a run file around p with the default frame cadence.
func FromParams(name string, p physics.Params) *Config {
	return &Config{
		Name:                name,
		Rows:                p.Rows,
		Cols:                p.Cols,
		DX:                  p.DX,
		DY:                  p.DY,
		TimeStep:            p.TimeStep,
		Gravity:             p.Gravity,
		Depth:               p.Depth,
		Drag:                p.Drag,
		MeanLatitude:        p.MeanLatitude,
		Rotation:            p.Rotation.String(),
		Wind:                p.Wind.String(),
		Perturbation:        p.Perturbation.String(),
		HorizontalWrap:      p.HorizontalWrap,
		InterpolateRotation: p.InterpolateRotation,
		Frames:              DefaultFrames,
		StepsPerFrame:       DefaultStepsPerFrame,
	}
}

// Load reads a run file on top of DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a run file on top of base. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Params converts the run file into validated physics parameters.
func (c *Config) Params() (physics.Params, error) {
	p := physics.Params{
		Rows:                c.Rows,
		Cols:                c.Cols,
		DX:                  c.DX,
		DY:                  c.DY,
		TimeStep:            c.TimeStep,
		Gravity:             c.Gravity,
		Depth:               c.Depth,
		Drag:                c.Drag,
		MeanLatitude:        c.MeanLatitude,
		Rotation:            physics.ParseRotationScheme(c.Rotation),
		Wind:                physics.ParseWindScheme(c.Wind),
		Perturbation:        physics.ParsePerturbation(c.Perturbation),
		HorizontalWrap:      c.HorizontalWrap,
		InterpolateRotation: c.InterpolateRotation,
	}
	if err := p.Validate(); err != nil {
		return physics.Params{}, err
	}
	return p, nil
}

func (c *Config) RunConfig() dynamo.RunConfig {
	return dynamo.RunConfig{
		Frames:           c.Frames,
		StepsPerFrame:    c.StepsPerFrame,
		ValidateState:    true,
		StopOnDivergence: c.StopOnDivergence,
	}
}
