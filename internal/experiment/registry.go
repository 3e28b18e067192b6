package experiment

import (
	"fmt"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
)

type Factory func(cfg *config.Config, sess boundary.Session) (Experiment, error)

type Registry struct {
	factories map[string]Factory
	order     []string
}

func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register("projectile", func(cfg *config.Config, sess boundary.Session) (Experiment, error) {
		return NewProjectile(cfg.Projectile, cfg.TrailCapacity, sess), nil
	})
	r.Register("pendulum", func(cfg *config.Config, sess boundary.Session) (Experiment, error) {
		p, err := NewPendulum(cfg.Pendulum, cfg.Integrator, cfg.TrailCapacity, sess)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	r.Register("ohms-law", func(cfg *config.Config, sess boundary.Session) (Experiment, error) {
		return NewCircuit(cfg.Circuit, cfg.TrailCapacity, sess), nil
	})

	return r
}

func (r *Registry) Register(name string, f Factory) {
	if _, ok := r.factories[name]; !ok {
		r.order = append(r.order, name)
	}
	r.factories[name] = f
}

func (r *Registry) New(name string, cfg *config.Config, sess boundary.Session) (Experiment, error) {
	fn, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownExperiment, name)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return fn(cfg, sess)
}

// Names lists experiments in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Next returns the experiment after name, wrapping around.
func (r *Registry) Next(name string) string {
	for i, n := range r.order {
		if n == name {
			return r.order[(i+1)%len(r.order)]
		}
	}
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}
