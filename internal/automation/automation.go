package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset or run file, then optional overrides.
// Unset overrides keep the preset's value.
type ScenarioStep struct {
	Preset        string   `yaml:"preset"`
	Config        string   `yaml:"config"`
	TimeStep      float64  `yaml:"time_step"`
	Rotation      string   `yaml:"rotation"`
	Wind          string   `yaml:"wind"`
	Perturbation  string   `yaml:"perturbation"`
	Wrap          *bool    `yaml:"wrap"`
	Frames        int      `yaml:"frames"`
	StepsPerFrame int      `yaml:"steps_per_frame"`
	Params        []string `yaml:"params"`
	SaveAs        string   `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Build resolves the step's run file: preset (default tower), then config
// file, then overrides. params entries are name=value pairs for the
// numeric fields listed in Fields.
func (s ScenarioStep) Build(registry *experiment.Registry) (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "tower"
	}
	cfg, err := registry.GetPreset(name)
	if err != nil {
		return nil, err
	}
	if s.Config != "" {
		if cfg, err = config.LoadOver(s.Config, cfg); err != nil {
			return nil, err
		}
	}

	if s.TimeStep != 0 {
		cfg.TimeStep = s.TimeStep
	}
	if s.Rotation != "" {
		cfg.Rotation = s.Rotation
	}
	if s.Wind != "" {
		cfg.Wind = s.Wind
	}
	if s.Perturbation != "" {
		cfg.Perturbation = s.Perturbation
	}
	if s.Wrap != nil {
		cfg.HorizontalWrap = *s.Wrap
	}
	if s.Frames != 0 {
		cfg.Frames = s.Frames
	}
	if s.StepsPerFrame != 0 {
		cfg.StepsPerFrame = s.StepsPerFrame
	}
	for _, kv := range s.Params {
		name, value, err := ParseAssignment(kv)
		if err != nil {
			return nil, err
		}
		if err := Set(cfg, name, value); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// With a non-nil store every result is saved and its run id returned.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store, log logrus.FieldLogger) ([]*dynamo.Result, []string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	results := make([]*dynamo.Result, 0, len(scenario.Steps))
	ids := make([]string, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Build(registry)
		if err != nil {
			return results, ids, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.WithFields(logrus.Fields{
			"scenario": scenario.Name,
			"step":     fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)),
			"run":      cfg.Name,
		}).Info("scenario step")

		exp := experiment.New(cfg)
		if err := exp.Setup(registry.DefaultMetrics(), log); err != nil {
			return results, ids, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, ids, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)

		if st != nil {
			id, err := st.Save(cfg, result)
			if err != nil {
				return results, ids, fmt.Errorf("step %d save: %w", i+1, err)
			}
			ids = append(ids, id)
		}
	}
	return results, ids, nil
}
