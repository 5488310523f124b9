package sim

import (
	"context"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Member is one independent configuration in an ensemble.
type Member struct {
	Name   string
	Engine Stepper
}

// Ensemble runs independent members concurrently. Every member gets its own
// grid and its own metric instances, so nothing is shared between goroutines.
type Ensemble struct {
	members    []Member
	newMetrics func() []dynamo.Metric
	log        logrus.FieldLogger
}

func NewEnsemble(newMetrics func() []dynamo.Metric, members ...Member) *Ensemble {
	return &Ensemble{
		members:    members,
		newMetrics: newMetrics,
		log:        logrus.StandardLogger(),
	}
}

func (e *Ensemble) SetLogger(l logrus.FieldLogger) { e.log = l }

// Run returns one result per member, in member order. The first failure
// cancels the remaining members.
func (e *Ensemble) Run(ctx context.Context, cfg dynamo.RunConfig) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range e.members {
		i, m := i, m
		g.Go(func() error {
			grid, err := physics.NewGrid(m.Engine.Params())
			if err != nil {
				return err
			}
			s := New(m.Engine, grid)
			s.SetLogger(e.log.WithField("member", m.Name))
			if e.newMetrics != nil {
				for _, metric := range e.newMetrics() {
					s.AddMetric(metric)
				}
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
