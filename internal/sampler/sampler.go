// Package sampler advances the simulated state of every device by one tick.
package sampler

import (
	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/registry"
)

const ErrSamplingFault = errors.ErrSamplingFault

type Sampler struct {
	reg    *registry.Registry
	source Source
	logger logger.Logger
}

func New(reg *registry.Registry, source Source, log logger.Logger) *Sampler {
	return &Sampler{
		reg:    reg,
		source: source,
		logger: log,
	}
}

// Sample reads the next value of every device from the source and stores
// it, clamped to zero. Devices are updated independently of each other.
// All new readings are staged first; on error the registry is left as it was.
func (s *Sampler) Sample() (map[string]registry.Watts, error) {
	errFactory := errors.New()

	names := s.reg.Names()
	next := make(map[string]registry.Watts, len(names))

	for _, name := range names {
		current, err := s.reg.Get(name)
		if err != nil {
			return nil, errFactory.Wrap(ErrSamplingFault, err).WithData(struct {
				Operation string
				Device    string
			}{
				Operation: "read_device",
				Device:    name,
			})
		}

		value, err := s.source.Next(name, current)
		if err != nil {
			return nil, errFactory.Wrap(ErrSamplingFault, err).WithData(struct {
				Operation string
				Device    string
			}{
				Operation: "next_reading",
				Device:    name,
			})
		}

		next[name] = registry.Clamp(value)
	}

	if err := s.reg.Apply(next); err != nil {
		return nil, errFactory.Wrap(ErrSamplingFault, err).WithData(struct {
			Operation string
		}{
			Operation: "apply_readings",
		})
	}

	for _, name := range names {
		s.logger.Debug().
			Str("device", name).
			Int("power_w", int(next[name])).
			Msgf("%s: New power level is %dW", name, next[name])
	}

	return next, nil
}
