package optim

import (
	"context"
	"math"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/experiment"
)

// GridSearch tries every combination of the given parameter values and
// keeps the one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated combination. Err is set when the run could not
// be built or failed; such trials never win.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search builds and runs one experiment per combination. NaN metric values
// never win. It returns every trial in evaluation order and the best one,
// whose Params is nil when nothing succeeded. A cancelled context stops the
// search and is returned as the error.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) ([]Trial, Trial, error) {
	var trials []Trial
	best := Trial{Value: math.Inf(1)}

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &trials, &best)
	return trials, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	trials *[]Trial,
	best *Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Value: math.NaN()}
		exp, err := build(current)
		if err == nil {
			result, runErr := exp.Run(ctx)
			if runErr != nil {
				err = runErr
			} else {
				trial.Value = result.Metrics[metricName]
			}
		}
		trial.Err = err
		*trials = append(*trials, trial)

		if err == nil && !math.IsNaN(trial.Value) && (best.Params == nil || trial.Value < best.Value) {
			*best = trial
		}
		return ctx.Err()
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, trials, best); err != nil {
			return err
		}
	}
	return nil
}

// ConfigBuilder returns a build function that applies each parameter to a
// copy of base through set.
func ConfigBuilder(base *config.Config, set func(*config.Config, string, float64) error) func(map[string]float64) (*experiment.Experiment, error) {
	registry := experiment.NewRegistry()
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := set(cfg, name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(registry.DefaultMetrics(), nil); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
