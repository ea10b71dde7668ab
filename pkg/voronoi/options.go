package voronoi

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

type options struct {
	logger   *zap.Logger
	observer Observer
	eps      float64
}

// Option configures Build and New.
type Option func(*options) error

// WithLogger sets the logger used for sweep diagnostics. Per-event messages
// are written at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("voronoi: WithLogger: logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithObserver registers an observer notified after every processed event,
// after the sweep and after clipping.
func WithObserver(observer Observer) Option {
	return func(o *options) error {
		if observer == nil {
			return errors.New("voronoi: WithObserver: observer must not be nil")
		}
		o.observer = observer
		return nil
	}
}

// WithEpsilon sets the absolute tolerance used when scheduling circle events,
// clipping edges and merging points on the boundary. By default it scales
// with the size of the boundary.
func WithEpsilon(eps float64) Option {
	return func(o *options) error {
		if eps <= 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
			return errors.New("voronoi: WithEpsilon: eps must be positive and finite")
		}
		o.eps = eps
		return nil
	}
}
