package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/san-kum/swsim/internal/sim"
	"github.com/sirupsen/logrus"
)

// Experiment is one configured run: an engine, its grid, and the
// simulator driving them.
type Experiment struct {
	cfg       *config.Config
	engine    *physics.Engine
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(metrics []dynamo.Metric, log logrus.FieldLogger) error {
	p, err := e.cfg.Params()
	if err != nil {
		return fmt.Errorf("experiment %s: %w", e.cfg.Name, err)
	}
	eng, err := physics.NewEngine(p)
	if err != nil {
		return err
	}
	grid, err := eng.NewGrid()
	if err != nil {
		return err
	}

	e.engine = eng
	e.simulator = sim.New(eng, grid)
	if log != nil {
		e.simulator.SetLogger(log.WithField("run", e.cfg.Name))
	}
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.RunWith(ctx, e.cfg.RunConfig())
}

// RunWith runs with an explicit loop configuration instead of the one in
// the run file.
func (e *Experiment) RunWith(ctx context.Context, rc dynamo.RunConfig) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, rc)
}

// Reset re-initializes the grid to the configured starting state.
func (e *Experiment) Reset() error {
	if e.engine == nil {
		return fmt.Errorf("experiment not setup")
	}
	return e.simulator.Grid().Initialize(e.engine.Params())
}

func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Engine() *physics.Engine      { return e.engine }
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }
