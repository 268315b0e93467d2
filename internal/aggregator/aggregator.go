// Package aggregator computes total consumption across all devices.
package aggregator

import (
	"math"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/registry"
)

const ErrAggregationFault = errors.ErrAggregationFault

type Aggregator struct {
	reg    *registry.Registry
	logger logger.Logger
}

func New(reg *registry.Registry, log logger.Logger) *Aggregator {
	return &Aggregator{
		reg:    reg,
		logger: log,
	}
}

// Total returns the sum of all current readings and logs it. The registry
// is not modified.
func (a *Aggregator) Total() (registry.Watts, error) {
	total, err := Sum(a.reg.Snapshot())
	if err != nil {
		return 0, err
	}

	a.logger.Info().
		Int("total_w", int(total)).
		Msgf("Total energy consumption: %dW", total)

	return total, nil
}

// Sum adds up readings, failing instead of overflowing.
func Sum(readings map[string]registry.Watts) (registry.Watts, error) {
	var total registry.Watts
	for name, power := range readings {
		if power < 0 {
			return 0, errors.New().WithData(ErrAggregationFault, struct {
				Operation string
				Device    string
				Power     registry.Watts
			}{
				Operation: "sum",
				Device:    name,
				Power:     power,
			})
		}
		if total > registry.Watts(math.MaxInt)-power {
			return 0, errors.New().WithData(ErrAggregationFault, struct {
				Operation string
				Device    string
			}{
				Operation: "sum_overflow",
				Device:    name,
			})
		}
		total += power
	}

	return total, nil
}
