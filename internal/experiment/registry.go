package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/metrics"
)

// DivergenceThreshold is the peak |H| above which a frame counts as
// unstable for the stability metric.
const DivergenceThreshold = 10.0

type Registry struct {
	presets map[string]func() *config.Config
	metrics map[string]func() dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		presets: make(map[string]func() *config.Config),
		metrics: make(map[string]func() dynamo.Metric),
	}

	for _, name := range config.ListPresets() {
		name := name
		r.presets[name] = func() *config.Config { return config.GetPreset(name) }
	}

	r.metrics["energy"] = func() dynamo.Metric { return metrics.NewEnergy() }
	r.metrics["energy_growth"] = func() dynamo.Metric { return metrics.NewEnergyGrowth() }
	r.metrics["mass_drift"] = func() dynamo.Metric { return metrics.NewMassDrift() }
	r.metrics["stability"] = func() dynamo.Metric { return metrics.NewStability(DivergenceThreshold) }
	r.metrics["peak_height"] = func() dynamo.Metric { return metrics.NewPeakHeight() }

	return r
}

func (r *Registry) GetPreset(name string) (*config.Config, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListPresets() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh instances of every registered metric.
func (r *Registry) DefaultMetrics() []dynamo.Metric {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}
