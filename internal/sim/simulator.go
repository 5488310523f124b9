package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/sirupsen/logrus"
)

// Stepper advances a grid by one time step. *physics.Engine implements it.
type Stepper interface {
	Advance(g *physics.Grid) error
	Params() physics.Params
}

// Simulator is the driving loop around a single grid. It owns the grid for
// the duration of a run and is not safe for concurrent use.
type Simulator struct {
	engine    Stepper
	grid      *physics.Grid
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       logrus.FieldLogger
}

func New(engine Stepper, grid *physics.Grid) *Simulator {
	return &Simulator{
		engine:    engine,
		grid:      grid,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		log:       logrus.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l logrus.FieldLogger) { s.log = l }
func (s *Simulator) Grid() *physics.Grid            { return s.grid }

// Run observes the initial state as frame 0, then takes cfg.Frames frames of
// cfg.StepsPerFrame steps each. Divergence is recorded in Result.Errors and
// only ends the run when cfg.StopOnDivergence is set.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.RunConfig) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if !s.grid.Ready() {
		return nil, dynamo.ErrNotInitialized
	}

	result := &dynamo.Result{
		Steps:   make([]int, 0, cfg.Frames+1),
		Times:   make([]float64, 0, cfg.Frames+1),
		Energy:  make([]float64, 0, cfg.Frames+1),
		Probe:   make([]float64, 0, cfg.Frames+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	p := s.engine.Params()
	log := s.log.WithFields(logrus.Fields{
		"grid":      fmt.Sprintf("%dx%d", p.Rows, p.Cols),
		"frames":    cfg.Frames,
		"per_frame": cfg.StepsPerFrame,
	})
	log.WithField("courant", p.Courant()).Info("run started")
	start := time.Now()

	s.record(result, s.grid.Snapshot(), cfg)

	diverged := false
	for frame := 1; frame <= cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		for k := 0; k < cfg.StepsPerFrame; k++ {
			if err := s.engine.Advance(s.grid); err != nil {
				result.Elapsed = time.Since(start)
				s.collect(result)
				return result, fmt.Errorf("frame %d: %w", frame, err)
			}
			result.StepsTaken++
		}

		snap := s.grid.Snapshot()
		s.record(result, snap, cfg)

		if cfg.ValidateState && !diverged && !snap.IsFinite() {
			diverged = true
			err := &dynamo.SimulationError{Step: snap.Step, Time: snap.Time, Wrapped: dynamo.ErrUnstable}
			result.Errors = append(result.Errors, err)
			log.WithFields(logrus.Fields{"step": snap.Step, "days": snap.Days()}).Warn("fields diverged")
			if cfg.StopOnDivergence {
				break
			}
		}
	}

	result.Elapsed = time.Since(start)
	s.collect(result)

	log.WithFields(logrus.Fields{
		"steps":   result.StepsTaken,
		"elapsed": result.Elapsed,
		"energy":  result.Energy[len(result.Energy)-1],
	}).Info("run finished")
	return result, nil
}

func (s *Simulator) record(result *dynamo.Result, snap dynamo.Snapshot, cfg dynamo.RunConfig) {
	energy := physics.Energy(snap)
	result.Steps = append(result.Steps, snap.Step)
	result.Times = append(result.Times, snap.Time)
	result.Energy = append(result.Energy, energy)
	result.Probe = append(result.Probe, physics.Probe(snap))
	if cfg.KeepSnapshots {
		result.Snapshots = append(result.Snapshots, snap)
	}

	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, obs := range s.observers {
		obs.OnStep(snap)
	}

	s.log.WithFields(logrus.Fields{
		"step":   snap.Step,
		"days":   snap.Days(),
		"energy": energy,
	}).Debug("frame")
}

func (s *Simulator) collect(result *dynamo.Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps cfg.StepsPerFrame at a time and hands each frame's
// snapshot to fn until fn returns false, cfg.Frames is reached (0 means no
// limit) or ctx is done.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg dynamo.RunConfig, fn func(dynamo.Snapshot) bool) error {
	if cfg.StepsPerFrame <= 0 {
		return &dynamo.ConfigError{Field: "steps_per_frame", Value: cfg.StepsPerFrame, Reason: "must be positive"}
	}
	if !s.grid.Ready() {
		return dynamo.ErrNotInitialized
	}

	if !fn(s.grid.Snapshot()) {
		return nil
	}
	for frame := 1; cfg.Frames <= 0 || frame <= cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for k := 0; k < cfg.StepsPerFrame; k++ {
			if err := s.engine.Advance(s.grid); err != nil {
				return err
			}
		}

		snap := s.grid.Snapshot()
		if cfg.ValidateState && !snap.IsFinite() {
			return &dynamo.SimulationError{Step: snap.Step, Time: snap.Time, Wrapped: dynamo.ErrUnstable}
		}
		if !fn(snap) {
			return nil
		}
	}
	return nil
}

func validateConfig(cfg dynamo.RunConfig) error {
	if cfg.Frames <= 0 {
		return &dynamo.ConfigError{Field: "frames", Value: cfg.Frames, Reason: "must be positive"}
	}
	if cfg.StepsPerFrame <= 0 {
		return &dynamo.ConfigError{Field: "steps_per_frame", Value: cfg.StepsPerFrame, Reason: "must be positive"}
	}
	return nil
}
